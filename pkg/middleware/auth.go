package middleware

import (
	"net/http"
	"strings"

	"gymdesk/internal/auth"
	apperrors "gymdesk/pkg/errors"
	httputil "gymdesk/pkg/http"
	"gymdesk/pkg/logger"
)

// Authenticate resolves a bearer token into the request actor. Requests
// without a token pass through anonymous; handlers that need an actor
// reject them. A token that fails validation is always a 401.
func Authenticate(issuer *auth.Issuer, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				rejectUnauthorized(w, log, r, "malformed authorization header")
				return
			}

			claims, err := issuer.ValidateToken(strings.TrimSpace(token))
			if err != nil {
				rejectUnauthorized(w, log, r, err.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithActor(r.Context(), claims.Actor())))
		})
	}
}

func rejectUnauthorized(w http.ResponseWriter, log *logger.Logger, r *http.Request, reason string) {
	log.Warn("Rejected bearer token",
		"request_id", RequestID(r.Context()),
		"path", r.URL.Path,
		"reason", reason,
	)

	_ = httputil.WriteJSON(w, http.StatusUnauthorized, httputil.ErrorResponse{
		Error: "Invalid or expired token",
		Code:  apperrors.CodeUnauthorized,
	})
}
