package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nvoropaev/authkeeper/internal/apperrors"
	"github.com/nvoropaev/authkeeper/internal/handlers/render"
	"github.com/nvoropaev/authkeeper/internal/handlers/userctx"
	"github.com/nvoropaev/authkeeper/internal/logger"
)

func handleUserMe() http.Handler {
	type response struct {
		ID        uuid.UUID `json:"id"`
		Username  string    `json:"username"`
		CreatedAt time.Time `json:"created_at"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _ := userctx.FromContext(r.Context())
		render.JSON(w, response{ID: user.ID, Username: user.Username, CreatedAt: user.CreatedAt})
	})
}

func handleChangePassword(auth authService, l logger.Logger) http.Handler {
	type request struct {
		CurrentPassword string `json:"current_password" validate:"required"`
		NewPassword     string `json:"new_password" validate:"required"`
	}
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		user, _ := userctx.FromContext(r.Context())

		err = auth.ChangePassword(r.Context(), user.ID, data.CurrentPassword, data.NewPassword)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrInvalidCredentials):
				render.ServiceError(w, "Invalid username or password", http.StatusUnauthorized)
			case errors.Is(err, apperrors.ErrWeakPassword):
				render.ServiceError(w, "Password is too weak", http.StatusBadRequest)
			default:
				l.Error("failed to change password", "error", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, response{Message: "Password changed"})
	})
}

func handleLogoutAll(sessions sessionService, l logger.Logger) http.Handler {
	type response struct {
		Message  string `json:"message"`
		Sessions int64  `json:"sessions"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _ := userctx.FromContext(r.Context())

		revoked, err := sessions.LogoutEverywhere(r.Context(), user)
		if err != nil {
			l.Error("failed to logout everywhere", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, response{Message: "Logged out everywhere", Sessions: revoked})
	})
}
