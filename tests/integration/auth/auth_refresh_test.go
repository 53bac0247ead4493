package auth

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nvoropaev/authkeeper/internal/testutil"
	"github.com/nvoropaev/authkeeper/tests/integration"
)

const (
	RefreshURL = "/api/auth/refresh"
	LogoutURL  = "/api/auth/logout"
)

func Test_AuthRefresh(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	login := func(t *testing.T, srvURL string, s integration.Services) (access string, refresh string) {
		t.Helper()

		_, err := s.AuthService.Register(t.Context(), "nk", "StrongEnoughPassword1")
		require.NoError(t, err)
		pair, err := s.AuthService.Login(t.Context(), "nk", "StrongEnoughPassword1", "tests")
		require.NoError(t, err)

		return pair.Access.Value, pair.Refresh.Value
	}

	post := func(t *testing.T, url string, data string) (*http.Response, string) {
		t.Helper()

		resp, err := http.Post(url, "application/json", strings.NewReader(data))
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		return resp, string(body)
	}

	t.Run("refresh token ok", func(t *testing.T) {
		integration.RunTx(pg.Pool, t, func(srvURL string, s integration.Services) {
			access, refresh := login(t, srvURL, s)

			resp, body := post(t, srvURL+RefreshURL, `{"refresh_token": "`+refresh+`"}`)
			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)

			var got struct {
				AccessToken string `json:"access_token"`
				ExpiresIn   int64  `json:"expires_in"`
			}
			require.NoError(t, json.Unmarshal([]byte(body), &got))
			require.NotEmpty(t, got.AccessToken, "new access token should be set")
			require.NotEqual(t, access, got.AccessToken, "access token should be fresh")
			require.Equal(t, int64(3600), got.ExpiresIn)

			// Refresh token is not rolled, the same one keeps working
			resp, body = post(t, srvURL+RefreshURL, `{"refresh_token": "`+refresh+`"}`)
			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)
		})
	})

	t.Run("refresh with garbage fails", func(t *testing.T) {
		integration.RunTx(pg.Pool, t, func(srvURL string, s integration.Services) {
			resp, body := post(t, srvURL+RefreshURL, `{"refresh_token": "not-even-a-jwt"}`)

			require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"error": "service_error",
					"message": "Invalid refresh token"
				}`, body)
		})
	})

	t.Run("access token can't refresh", func(t *testing.T) {
		integration.RunTx(pg.Pool, t, func(srvURL string, s integration.Services) {
			access, _ := login(t, srvURL, s)

			resp, body := post(t, srvURL+RefreshURL, `{"refresh_token": "`+access+`"}`)
			require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "not expected code. Body: %s", body)
		})
	})

	t.Run("refresh after logout fails", func(t *testing.T) {
		integration.RunTx(pg.Pool, t, func(srvURL string, s integration.Services) {
			access, refresh := login(t, srvURL, s)

			resp, body := post(t, srvURL+LogoutURL, `{"access_token": "`+access+`", "refresh_token": "`+refresh+`"}`)
			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"message": "Logged out"
				}`, body)

			resp, body = post(t, srvURL+RefreshURL, `{"refresh_token": "`+refresh+`"}`)
			require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"error": "service_error",
					"message": "Invalid refresh token"
				}`, body)
		})
	})

	t.Run("logout with nothing to revoke fails", func(t *testing.T) {
		integration.RunTx(pg.Pool, t, func(srvURL string, s integration.Services) {
			resp, body := post(t, srvURL+LogoutURL, `{"access_token": "bad", "refresh_token": "also bad"}`)

			require.Equalf(t, http.StatusBadRequest, resp.StatusCode, "not expected code. Body: %s", body)
		})
	})
}
