package middleware

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nvoropaev/authkeeper/internal/apperrors"
	"github.com/nvoropaev/authkeeper/internal/handlers/userctx"
	"github.com/nvoropaev/authkeeper/internal/models"
)

// Allow to use a function as the gate
type gateFunc func(ctx context.Context, token string) (models.User, error)

func (f gateFunc) Authorize(ctx context.Context, token string) (models.User, error) {
	return f(ctx, token)
}

func TestAuth(t *testing.T) {
	// Simple handler that writes the caller username from context
	// Must always find the user cause middleware either sets it or rejects
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		require.True(t, ok)

		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte(user.Username))
		require.NoError(t, err, "should write username to response")
	})

	get := func(t *testing.T, url string, token string) (*http.Response, string) {
		t.Helper()

		req, err := http.NewRequest(http.MethodGet, url+"/test", nil)
		require.NoError(t, err, "should create request")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err, "should make request to test server")
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err, "should read response body")
		defer resp.Body.Close() // nolint:errcheck

		return resp, string(body)
	}

	t.Run("auth ok", func(t *testing.T) {
		middleware := Auth(gateFunc(func(ctx context.Context, token string) (models.User, error) {
			require.Equal(t, "valid-token", token, "should pass the bearer token to the gate")
			return models.User{Username: "test-user"}, nil
		}))

		srv := httptest.NewServer(middleware(handler))
		defer srv.Close()

		resp, body := get(t, srv.URL, "valid-token")
		require.Equalf(t, http.StatusOK, resp.StatusCode, "should return status OK. Resp: %s", body)
		require.Equal(t, "test-user", body, "should return username in response")
	})

	t.Run("no authorization header", func(t *testing.T) {
		middleware := Auth(gateFunc(func(ctx context.Context, token string) (models.User, error) {
			t.Fatal("gate must not be called without a token")
			return models.User{}, nil
		}))

		srv := httptest.NewServer(middleware(handler))
		defer srv.Close()

		resp, body := get(t, srv.URL, "")
		require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "should return status Unauthorized. Resp: %s", body)
		require.JSONEq(t,
			`{
				"error": "service_error",
				"message": "Unauthorized"
			}`,
			body,
		)
	})

	t.Run("gate rejects", func(t *testing.T) {
		middleware := Auth(gateFunc(func(ctx context.Context, token string) (models.User, error) {
			return models.User{}, fmt.Errorf("authorize: %w", apperrors.ErrUnauthorized)
		}))

		srv := httptest.NewServer(middleware(handler))
		defer srv.Close()

		resp, body := get(t, srv.URL, "whatever")
		require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "should return status Unauthorized. Resp: %s", body)
		require.JSONEq(t,
			`{
				"error": "service_error",
				"message": "Unauthorized"
			}`,
			body,
		)
	})

	t.Run("malformed authorization header", func(t *testing.T) {
		middleware := Auth(gateFunc(func(ctx context.Context, token string) (models.User, error) {
			t.Fatal("gate must not be called with a malformed header")
			return models.User{}, nil
		}))

		srv := httptest.NewServer(middleware(handler))
		defer srv.Close()

		headers := []string{
			"Basic dXNlcjpwYXNz",
			"Bearer",
			"Bearer ",
			"sometoken",
		}

		for _, header := range headers {
			req, err := http.NewRequest(http.MethodGet, srv.URL+"/test", nil)
			require.NoError(t, err, "should create request")
			req.Header.Set("Authorization", header)

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err, "should make request to test server")
			_ = resp.Body.Close()

			require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "header %q should be rejected", header)
		}
	})

	t.Run("bearer scheme is case insensitive", func(t *testing.T) {
		middleware := Auth(gateFunc(func(ctx context.Context, token string) (models.User, error) {
			require.Equal(t, "valid-token", token)
			return models.User{Username: "test-user"}, nil
		}))

		srv := httptest.NewServer(middleware(handler))
		defer srv.Close()

		req, err := http.NewRequest(http.MethodGet, srv.URL+"/test", nil)
		require.NoError(t, err, "should create request")
		req.Header.Set("Authorization", "bearer valid-token")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err, "should make request to test server")
		_ = resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode, "lowercase bearer scheme should be accepted")
	})

	t.Run("store failure is not unauthorized", func(t *testing.T) {
		middleware := Auth(gateFunc(func(ctx context.Context, token string) (models.User, error) {
			return models.User{}, fmt.Errorf("db error: %w", apperrors.ErrStoreUnavailable)
		}))

		srv := httptest.NewServer(middleware(handler))
		defer srv.Close()

		resp, body := get(t, srv.URL, "whatever")
		require.Equalf(t, http.StatusInternalServerError, resp.StatusCode, "should return status 500. Resp: %s", body)
	})
}
