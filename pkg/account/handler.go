package account

import (
	"net/http"

	"github.com/quickcal/quickcal/internal/rest"
)

type verifyResponse struct {
	Valid bool       `json:"valid"`
	User  ProfileDTO `json:"user"`
}

// Verify answers for a request that already passed Middleware.
func Verify(w http.ResponseWriter, r *http.Request) {
	acc, err := CurrentAccount(r.Context())
	if err != nil {
		rest.WriteError(w, http.StatusUnauthorized, "Invalid token", "")
		return
	}
	rest.WriteJSON(w, http.StatusOK, verifyResponse{Valid: true, User: acc.Profile()})
}
