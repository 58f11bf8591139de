package event

import (
	"errors"
	"net/http"
	"time"

	"github.com/quickcal/quickcal/internal/rest"
	"github.com/quickcal/quickcal/pkg/account"
	"github.com/quickcal/quickcal/pkg/calendar"
	"github.com/quickcal/quickcal/pkg/extraction"
	log "github.com/sirupsen/logrus"
)

type ProcessRequest struct {
	Text     string `json:"text" validate:"required"`
	Timezone string `json:"timezone"`
}

// EventRequest carries a (possibly user edited) candidate.
type EventRequest struct {
	Title       string    `json:"title" validate:"required"`
	Start       time.Time `json:"start" validate:"required"`
	End         time.Time `json:"end" validate:"required"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	Timezone    string    `json:"timezone"`
}

func (r EventRequest) candidate() extraction.CandidateEvent {
	return extraction.CandidateEvent{
		Title:       r.Title,
		Start:       r.Start,
		End:         r.End,
		Location:    r.Location,
		Description: r.Description,
	}
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Process(w http.ResponseWriter, r *http.Request) {
	acc, ok := currentAccount(w, r)
	if !ok {
		return
	}

	var req ProcessRequest
	if err := rest.DecodeJSON(r, &req); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Text is required", err.Error())
		return
	}
	log.Trace("Processing event text")

	result, err := h.service.Process(r.Context(), acc.Identity(), req.Text, req.Timezone)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	acc, ok := currentAccount(w, r)
	if !ok {
		return
	}

	var req EventRequest
	if err := rest.DecodeJSON(r, &req); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid event", err.Error())
		return
	}

	created, err := h.service.Create(r.Context(), acc.Identity(), req.candidate(), req.Timezone)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	acc, ok := currentAccount(w, r)
	if !ok {
		return
	}

	events, err := h.service.ListUpcoming(r.Context(), acc.Identity())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, events)
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	rest.WriteJSON(w, http.StatusOK, h.service.Status())
}

func (h *Handler) ExportICS(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if err := rest.DecodeJSON(r, &req); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid event", err.Error())
		return
	}

	body, err := h.service.ExportICS(req.candidate())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="event.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Errorf("failed to write calendar export: %v", err)
	}
}

func currentAccount(w http.ResponseWriter, r *http.Request) (account.Account, bool) {
	acc, err := account.CurrentAccount(r.Context())
	if err != nil {
		rest.WriteError(w, http.StatusUnauthorized, "Access token required", "")
		return account.Account{}, false
	}
	return acc, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	var storeErr *calendar.StoreError
	switch {
	case errors.Is(err, ErrInvalidInput):
		rest.WriteError(w, http.StatusBadRequest, "Invalid input", err.Error())
	case errors.Is(err, calendar.ErrUnauthenticated):
		rest.WriteError(w, http.StatusUnauthorized, "Google authentication required", err.Error())
	case errors.As(err, &storeErr):
		message := "Failed to fetch events"
		if storeErr.Op == calendar.OpCreate {
			message = "Failed to create event"
		}
		rest.WriteError(w, http.StatusBadGateway, message, storeErr.Err.Error())
	default:
		log.Errorf("unexpected event service error: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Internal server error", "")
	}
}
