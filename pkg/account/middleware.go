package account

import (
	"errors"
	"net/http"
	"strings"

	"github.com/quickcal/quickcal/internal/auth"
	"github.com/quickcal/quickcal/internal/rest"
	log "github.com/sirupsen/logrus"
)

// Middleware authenticates the bearer token and puts the matching account
// into the request context.
func Middleware(tokens auth.TokenValidator, repo Repository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				rest.WriteError(w, http.StatusUnauthorized, "Access token required", "")
				return
			}

			claims, err := tokens.Validate(raw)
			if err != nil {
				log.Debugf("rejected token: %v", err)
				rest.WriteError(w, http.StatusUnauthorized, "Invalid token", "")
				return
			}

			acc, err := repo.FindByUid(r.Context(), claims.Subject)
			if errors.Is(err, ErrNotFound) {
				rest.WriteError(w, http.StatusUnauthorized, "Invalid token", "unknown account")
				return
			} else if err != nil {
				log.Errorf("failed to load account %s: %v", claims.Subject, err)
				rest.WriteError(w, http.StatusInternalServerError, "Failed to load account", "")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAccount(r.Context(), acc)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
