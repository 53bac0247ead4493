package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/nvoropaev/authkeeper/internal/apperrors"
	"github.com/nvoropaev/authkeeper/internal/handlers/render"
	"github.com/nvoropaev/authkeeper/internal/handlers/userctx"
	"github.com/nvoropaev/authkeeper/internal/models"
)

type authorizer interface {
	Authorize(ctx context.Context, token string) (models.User, error)
}

// Auth protects a handler behind the authorization gate
// Rejections are one generic 401, store failures become a 500:
// an infrastructure outage must never look like a bad token
func Auth(gate authorizer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			user, err := gate.Authorize(r.Context(), token)
			switch {
			case err == nil:
			case errors.Is(err, apperrors.ErrUnauthorized):
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			default:
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			ctx := userctx.New(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the access token from the Authorization header
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}

	return token, true
}
