package app

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/quickcal/quickcal/internal/config"
	"github.com/quickcal/quickcal/internal/rest"
	"github.com/quickcal/quickcal/internal/utils"
	"github.com/quickcal/quickcal/pkg/account"
)

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// NewHandler builds the router with every route plus the global middlewares.
func NewHandler(deps *Dependencies, cfg config.Application) http.Handler {
	r := mux.NewRouter()
	RegisterRoutes(r, deps)
	return SetupMiddleware(r, cfg)
}

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {
	r.HandleFunc("/api/health", health(deps.Clock)).Methods("GET")

	// Auth
	r.HandleFunc("/api/auth/google", deps.GoogleAuth.OAuthLogin).Methods("GET")
	r.HandleFunc("/api/auth/google/callback", deps.GoogleAuth.OAuthCallback).Methods("GET")
	r.Handle("/api/auth/verify", deps.AuthMiddleware(http.HandlerFunc(account.Verify))).Methods("GET")

	// Events, status is public
	r.HandleFunc("/api/events/status", deps.EventHandler.Status).Methods("GET")

	events := r.PathPrefix("/api/events").Subrouter()
	events.Use(deps.AuthMiddleware)
	events.HandleFunc("", deps.EventHandler.List).Methods("GET")
	events.HandleFunc("", deps.EventHandler.Create).Methods("POST")
	events.HandleFunc("/process", deps.EventHandler.Process).Methods("POST")
	events.HandleFunc("/ics", deps.EventHandler.ExportICS).Methods("POST")
}

func health(clock utils.Clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rest.WriteJSON(w, http.StatusOK, healthResponse{Status: "OK", Timestamp: clock.Now()})
	}
}
