package google

import (
	"errors"
	"net/http"

	"github.com/quickcal/quickcal/internal/rest"
	log "github.com/sirupsen/logrus"
)

type authUrlResponse struct {
	AuthUrl string `json:"authUrl"`
}

func (g *GoogleAuth) OAuthLogin(w http.ResponseWriter, r *http.Request) {
	rest.WriteJSON(w, http.StatusOK, authUrlResponse{AuthUrl: g.LoginURL()})
}

func (g *GoogleAuth) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if reason := query.Get("error"); reason != "" {
		log.Infof("Google consent was not granted: %s", reason)
		rest.WriteError(w, http.StatusBadRequest, "Authentication failed", reason)
		return
	}

	redirectUrl, err := g.Complete(r.Context(), query.Get("code"), query.Get("state"))
	switch {
	case errors.Is(err, ErrMissingCode):
		rest.WriteError(w, http.StatusBadRequest, "Authorization code not provided", "")
		return
	case errors.Is(err, ErrInvalidState):
		rest.WriteError(w, http.StatusBadRequest, "Authentication failed", err.Error())
		return
	case err != nil:
		log.Errorf("OAuth callback failed: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Authentication failed", "")
		return
	}

	log.Debug("OAuth callback succeeded, redirecting to frontend")
	http.Redirect(w, r, redirectUrl, http.StatusFound)
}
