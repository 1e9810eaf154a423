package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/kanban/internal/auth"
)

// SessionValidator resolves an access token to an active session.
// *auth.Service satisfies this interface.
type SessionValidator interface {
	GetSession(ctx context.Context, accessToken string) (*auth.Principal, error)
}

// Auth requires a valid access token bound to an active session. The token
// is read from the Authorization bearer header, or from the access_token
// query parameter for websocket upgrades that cannot set headers.
func Auth(sessions SessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := extractBearer(r)
			if tok == "" {
				tok = r.URL.Query().Get("access_token")
			}
			if tok == "" {
				unauthorized(w, "missing credentials")
				return
			}

			p, err := sessions.GetSession(r.Context(), tok)
			if err != nil {
				if !errors.Is(err, auth.ErrInvalidToken) && !errors.Is(err, auth.ErrSessionNotFound) {
					log.Error().Err(err).Msg("auth: session lookup failed")
				}
				unauthorized(w, "missing or invalid credentials")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), p.UserID, p.SessionID)))
		})
	}
}

func extractBearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return h[7:]
	}
	return ""
}

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"title":"Unauthorized","status":401,"detail":"` + detail + `"}`))
}
