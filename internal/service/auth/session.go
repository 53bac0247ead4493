package auth

import (
	"context"
	"errors"

	"github.com/nvoropaev/authkeeper/internal/apperrors"
	"github.com/nvoropaev/authkeeper/internal/models"
	"github.com/nvoropaev/authkeeper/internal/repository"
	"github.com/nvoropaev/authkeeper/internal/service/auth/tokenmanager"
)

const reasonLogout = "logout"

// SessionManager handles explicit session teardown
type SessionManager struct {
	token   *tokenmanager.TokenManager
	storage repository.Storage
}

func NewSessionManager(token *tokenmanager.TokenManager, storage repository.Storage) (*SessionManager, error) {
	if token == nil {
		return nil, errors.New("token manager must not be nil")
	}
	if storage == nil {
		return nil, errors.New("storage must not be nil")
	}

	return &SessionManager{token: token, storage: storage}, nil
}

// Logout revokes both presented tokens, best effort
// Expired tokens are still accepted: revoking them costs nothing and
// the client gets a clean logout either way
// Fails with apperrors.ErrInvalidRequest only when neither token parses
func (m *SessionManager) Logout(ctx context.Context, access string, refresh string) error {
	revoked := 0

	for _, tokenString := range []string{access, refresh} {
		if tokenString == "" {
			continue
		}

		claims, err := m.token.ParseLenient(tokenString)
		if err != nil {
			// Unparseable token: nothing to revoke
			continue
		}

		userID := claims.UserID
		entry := models.RevocationEntry{
			TokenID:   claims.TokenID(),
			TokenKind: claims.Kind,
			UserID:    &userID,
			Reason:    reasonLogout,
			ExpiresAt: claims.ExpiresAt.Time,
		}
		if err := m.storage.Revocation().Revoke(ctx, entry); err != nil {
			return err
		}

		// Refresh tokens also carry a server side row to mark
		if claims.Kind == models.TokenKindRefresh {
			if err := m.storage.Refresh().Revoke(ctx, claims.TokenID()); err != nil {
				return err
			}
		}

		revoked++
	}

	if revoked == 0 {
		return apperrors.ErrInvalidRequest
	}

	return nil
}

// LogoutEverywhere revokes every live refresh token of the user
func (m *SessionManager) LogoutEverywhere(ctx context.Context, user models.User) (int64, error) {
	return m.storage.Refresh().RevokeAllForUser(ctx, user.ID)
}
