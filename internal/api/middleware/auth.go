package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"jobtracker/internal/models"
	"jobtracker/internal/service"

	"go.uber.org/zap"
)

// TokenAuthenticator resolves an API token to a user.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// Authenticate requires an "Authorization: Bearer <token>" header.
func Authenticate(auth TokenAuthenticator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				fail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
				return
			}

			user, err := auth.Authenticate(r.Context(), token)
			if errors.Is(err, service.ErrNotFound) {
				fail(w, http.StatusUnauthorized, "Invalid token.")
				return
			}
			if err != nil {
				logger.Error("failed to authenticate", zap.Error(err))
				fail(w, http.StatusInternalServerError, "Internal server error.")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
