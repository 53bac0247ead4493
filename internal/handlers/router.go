package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nvoropaev/authkeeper/internal/handlers/middleware"
	"github.com/nvoropaev/authkeeper/internal/logger"
	"github.com/nvoropaev/authkeeper/internal/models"
	"github.com/nvoropaev/authkeeper/internal/service/todo"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	auth authService,
	gate gateService,
	sessions sessionService,
	todos todoService,
	l logger.Logger,
) http.Handler {
	withAuth := middleware.Auth(gate)

	apiauth := http.NewServeMux()
	apiauth.Handle("POST /register", handleRegister(auth, l))
	apiauth.Handle("POST /login", handleLogin(auth, l))
	apiauth.Handle("POST /refresh", handleTokenRefresh(auth, l))
	apiauth.Handle("POST /logout", handleLogout(sessions, l))
	apiauth.Handle("POST /logout_all", withAuth(handleLogoutAll(sessions, l)))
	apiauth.Handle("POST /password", withAuth(handleChangePassword(auth, l)))

	root := http.NewServeMux()
	root.Handle("/api/auth/", http.StripPrefix("/api/auth", apiauth))
	root.Handle("GET /api/user/me", withAuth(handleUserMe()))

	root.Handle("POST /api/todos", withAuth(handleCreateTodo(todos, l)))
	root.Handle("GET /api/todos", withAuth(handleListTodos(todos, l)))
	root.Handle("GET /api/todos/{id}", withAuth(handleGetTodo(todos, l)))
	root.Handle("PATCH /api/todos/{id}", withAuth(handleUpdateTodo(todos, l)))
	root.Handle("DELETE /api/todos/{id}", withAuth(handleDeleteTodo(todos, l)))

	return chain(root,
		middleware.Logger(l),
	)
}

type authService interface {
	// Register user with username and password
	// Has to return apperrors.ErrUserAlreadyExists if username is taken
	// and apperrors.ErrWeakPassword if the password fails the policy
	Register(ctx context.Context, username string, password string) (models.User, error)

	// Login verifies credentials and mints a token pair
	// Every credential failure is apperrors.ErrInvalidCredentials, nothing more specific
	Login(ctx context.Context, username string, password string, userAgent string) (models.TokenPair, error)

	// Refresh mints a new access token from a valid refresh token
	Refresh(ctx context.Context, refresh string) (models.IssuedToken, error)

	// ChangePassword verifies the current password, sets the new one
	// and revokes every refresh token of the user
	ChangePassword(ctx context.Context, userID uuid.UUID, current string, newPassword string) error

	AccessTTL() time.Duration
}

type gateService interface {
	Authorize(ctx context.Context, token string) (models.User, error)
}

type sessionService interface {
	Logout(ctx context.Context, access string, refresh string) error
	LogoutEverywhere(ctx context.Context, user models.User) (int64, error)
}

type todoService interface {
	Create(ctx context.Context, owner models.User, title string, description string) (models.Todo, error)
	List(ctx context.Context, owner models.User) ([]models.Todo, error)
	Get(ctx context.Context, caller models.User, todoID uuid.UUID) (models.Todo, error)
	Update(ctx context.Context, caller models.User, todoID uuid.UUID, params todo.UpdateParams) (models.Todo, error)
	Delete(ctx context.Context, caller models.User, todoID uuid.UUID) error
}
