package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/probuddy/api/internal/ctxkeys"
	"github.com/probuddy/api/internal/model"
	"github.com/probuddy/api/internal/service"
)

// AuthMiddleware requires a bearer JWT and adds its user to the context.
// When devUser is set, requests without an Authorization header run as that
// user; a token that is present must still be valid.
func AuthMiddleware(authService *service.AuthService, devUser *model.User) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				if devUser != nil {
					next.ServeHTTP(w, r.WithContext(ctxkeys.WithUser(r.Context(), devUser)))
					return
				}
				writeError(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				writeError(w, http.StatusUnauthorized, "Invalid authorization header")
				return
			}

			user, err := authService.VerifyJWT(strings.TrimSpace(token))
			if err != nil {
				slog.Debug("rejected token", "error", err, "path", r.URL.Path)
				writeError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(ctxkeys.WithUser(r.Context(), user)))
		})
	}
}
