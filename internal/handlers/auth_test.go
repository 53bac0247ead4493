package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/nvoropaev/authkeeper/internal/apperrors"
	"github.com/nvoropaev/authkeeper/internal/logger"
	"github.com/nvoropaev/authkeeper/internal/models"
	"github.com/nvoropaev/authkeeper/internal/service/todo"
)

// authStub lets every test set only the calls it expects
type authStub struct {
	register       func(ctx context.Context, username, password string) (models.User, error)
	login          func(ctx context.Context, username, password, userAgent string) (models.TokenPair, error)
	refresh        func(ctx context.Context, refresh string) (models.IssuedToken, error)
	changePassword func(ctx context.Context, userID uuid.UUID, current, newPassword string) error
}

func (s *authStub) Register(ctx context.Context, username, password string) (models.User, error) {
	return s.register(ctx, username, password)
}

func (s *authStub) Login(ctx context.Context, username, password, userAgent string) (models.TokenPair, error) {
	return s.login(ctx, username, password, userAgent)
}

func (s *authStub) Refresh(ctx context.Context, refresh string) (models.IssuedToken, error) {
	return s.refresh(ctx, refresh)
}

func (s *authStub) ChangePassword(ctx context.Context, userID uuid.UUID, current, newPassword string) error {
	return s.changePassword(ctx, userID, current, newPassword)
}

func (s *authStub) AccessTTL() time.Duration { return time.Hour }

type gateStub struct{ user models.User }

func (s *gateStub) Authorize(ctx context.Context, token string) (models.User, error) {
	if token == "valid" {
		return s.user, nil
	}
	return models.User{}, apperrors.ErrUnauthorized
}

type sessionStub struct {
	logout func(ctx context.Context, access, refresh string) error
}

func (s *sessionStub) Logout(ctx context.Context, access, refresh string) error {
	return s.logout(ctx, access, refresh)
}

func (s *sessionStub) LogoutEverywhere(ctx context.Context, user models.User) (int64, error) {
	return 0, nil
}

type todoStub struct {
	get func(ctx context.Context, caller models.User, todoID uuid.UUID) (models.Todo, error)
}

func (s *todoStub) Create(ctx context.Context, owner models.User, title, description string) (models.Todo, error) {
	return models.Todo{}, nil
}

func (s *todoStub) List(ctx context.Context, owner models.User) ([]models.Todo, error) {
	return nil, nil
}

func (s *todoStub) Get(ctx context.Context, caller models.User, todoID uuid.UUID) (models.Todo, error) {
	return s.get(ctx, caller, todoID)
}

func (s *todoStub) Update(ctx context.Context, caller models.User, todoID uuid.UUID, params todo.UpdateParams) (models.Todo, error) {
	return models.Todo{}, nil
}

func (s *todoStub) Delete(ctx context.Context, caller models.User, todoID uuid.UUID) error {
	return nil
}

func serve(t *testing.T, auth *authStub, gate *gateStub, sessions *sessionStub, todos *todoStub) *httptest.Server {
	t.Helper()

	if gate == nil {
		gate = &gateStub{user: models.User{ID: uuid.New(), Username: "test-user"}}
	}

	router := NewRouter(auth, gate, sessions, todos, logger.NewNoOpLogger())
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return srv
}

func doJSON(t *testing.T, method string, url string, data string, token string) (*http.Response, string) {
	t.Helper()

	var reqBody io.Reader
	if data != "" {
		reqBody = strings.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer resp.Body.Close() // nolint:errcheck

	return resp, string(body)
}

func Test_RegisterValidation(t *testing.T) {
	auth := &authStub{
		register: func(ctx context.Context, username, password string) (models.User, error) {
			t.Fatal("service must not be called on invalid request")
			return models.User{}, nil
		},
	}
	srv := serve(t, auth, nil, nil, nil)

	t.Run("broken json", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", `{"username": `, "")

		require.Equalf(t, http.StatusBadRequest, resp.StatusCode, "not expected code. Body: %s", body)
		require.Contains(t, body, "decoding_failed")
	})

	t.Run("missing fields", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", `{"username": "nk"}`, "")

		require.Equalf(t, http.StatusBadRequest, resp.StatusCode, "not expected code. Body: %s", body)
		require.Contains(t, body, "validation_failed")
		require.Contains(t, body, "password", "failed field should be named by json tag")
	})

	t.Run("username too short", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", `{"username": "n", "password": "StrongEnoughPassword1"}`, "")

		require.Equalf(t, http.StatusBadRequest, resp.StatusCode, "not expected code. Body: %s", body)
		require.Contains(t, body, "validation_failed")
	})
}

func Test_LoginErrorMapping(t *testing.T) {
	t.Run("invalid credentials", func(t *testing.T) {
		auth := &authStub{
			login: func(ctx context.Context, username, password, userAgent string) (models.TokenPair, error) {
				return models.TokenPair{}, apperrors.ErrInvalidCredentials
			},
		}
		srv := serve(t, auth, nil, nil, nil)

		resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", `{"username": "nk", "password": "pass"}`, "")

		require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "not expected code. Body: %s", body)
		require.JSONEq(t, `
			{
				"error": "service_error",
				"message": "Invalid username or password"
			}`, body)
	})

	t.Run("store failure is 500 not 401", func(t *testing.T) {
		auth := &authStub{
			login: func(ctx context.Context, username, password, userAgent string) (models.TokenPair, error) {
				return models.TokenPair{}, apperrors.ErrStoreUnavailable
			},
		}
		srv := serve(t, auth, nil, nil, nil)

		resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", `{"username": "nk", "password": "pass"}`, "")

		require.Equalf(t, http.StatusInternalServerError, resp.StatusCode, "not expected code. Body: %s", body)
		require.JSONEq(t, `
			{
				"error": "service_error",
				"message": "Internal server error"
			}`, body)
	})
}

func Test_TodoIDParsing(t *testing.T) {
	todos := &todoStub{
		get: func(ctx context.Context, caller models.User, todoID uuid.UUID) (models.Todo, error) {
			t.Fatal("service must not be called with malformed id")
			return models.Todo{}, nil
		},
	}
	srv := serve(t, nil, nil, nil, todos)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/todos/not-a-uuid", "", "valid")

	require.Equalf(t, http.StatusNotFound, resp.StatusCode, "not expected code. Body: %s", body)
	require.JSONEq(t, `
		{
			"error": "service_error",
			"message": "Todo not found"
		}`, body)
}
