package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/nvoropaev/authkeeper/internal/apperrors"
	"github.com/nvoropaev/authkeeper/internal/models"
	"github.com/nvoropaev/authkeeper/internal/repository"
	"github.com/nvoropaev/authkeeper/internal/service/auth/tokenmanager"
)

// Gate runs on every protected request: verifies the presented access
// token, checks the revocation ledger and resolves the caller
// Resource level ownership checks stay with the resource services,
// which report apperrors.ErrForbidden, a failure distinct from
// apperrors.ErrUnauthorized
type Gate struct {
	token   *tokenmanager.TokenManager
	storage repository.Storage
}

func NewGate(token *tokenmanager.TokenManager, storage repository.Storage) (*Gate, error) {
	if token == nil {
		return nil, errors.New("token manager must not be nil")
	}
	if storage == nil {
		return nil, errors.New("storage must not be nil")
	}

	return &Gate{token: token, storage: storage}, nil
}

// Authorize resolves the caller identity from the presented token
// Every auth rejection is the same generic apperrors.ErrUnauthorized:
// the caller must not learn whether the token was malformed, expired,
// of the wrong kind or revoked
// Store failures propagate as is and are never downgraded to a rejection
func (g *Gate) Authorize(ctx context.Context, tokenString string) (models.User, error) {
	claims, err := g.token.Parse(tokenString)
	if err != nil {
		return models.User{}, fmt.Errorf("authorize: %w", apperrors.ErrUnauthorized)
	}

	// A refresh token must never authorize a resource request
	if claims.Kind != models.TokenKindAccess {
		return models.User{}, fmt.Errorf("authorize: %w", apperrors.ErrUnauthorized)
	}

	revoked, err := g.storage.Revocation().IsRevoked(ctx, claims.TokenID())
	if err != nil {
		return models.User{}, err
	}
	if revoked {
		return models.User{}, fmt.Errorf("authorize: %w", apperrors.ErrUnauthorized)
	}

	user, err := g.storage.User().GetUserByID(ctx, claims.UserID)
	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, apperrors.ErrUserNotFound):
		return models.User{}, fmt.Errorf("authorize: %w", apperrors.ErrUnauthorized)
	default:
		return models.User{}, err
	}
}
