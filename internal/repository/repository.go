package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nvoropaev/authkeeper/internal/models"
)

// User repository interface
type UserRepo interface {
	// Create user
	// If user with username exists already has to return error apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, username string, hashedPassword string) (models.User, error)

	// Get user by it's id or username
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)

	// Replace the stored password hash
	UpdatePassword(ctx context.Context, userID uuid.UUID, hashedPassword string) error
}

// RefreshToken repository interface
// Rows are keyed by the token id (jti) embedded in the signed token
type RefreshTokenRepo interface {
	// Persist a freshly issued token
	// Must return apperrors.ErrDuplicateToken if the id collides
	Save(ctx context.Context, token models.RefreshToken) error

	// Return the row even if it is revoked or expired
	// If not found must return apperrors.ErrTokenNotFound, how to present
	// a missing row is up to the caller
	Get(ctx context.Context, tokenID uuid.UUID) (models.RefreshToken, error)

	// Set revoked_at to now if not set yet
	// Revoking an already revoked token is a no-op, not an error
	Revoke(ctx context.Context, tokenID uuid.UUID) error

	// Revoke every live token of the user, returns how many were revoked
	// Used on password change and "log out everywhere"
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

// Revocation ledger interface
// Append-only record of token ids invalidated before their natural expiry
type RevocationRepo interface {
	// Record the entry, idempotent on token id
	Revoke(ctx context.Context, entry models.RevocationEntry) error

	IsRevoked(ctx context.Context, tokenID uuid.UUID) (bool, error)

	// Delete entries whose natural expiry passed: the codec rejects
	// expired tokens on its own, so the rows carry no information anymore
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}

// Todo repository interface
// Ownership checks live in the service layer, the repo returns rows as is
type TodoRepo interface {
	Create(ctx context.Context, todo models.Todo) (models.Todo, error)

	// If not found must return apperrors.ErrTodoNotFound
	Get(ctx context.Context, todoID uuid.UUID) (models.Todo, error)

	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Todo, error)
	Update(ctx context.Context, todo models.Todo) (models.Todo, error)
	Delete(ctx context.Context, todoID uuid.UUID) error
}

// Storage aggregates repositories over one db connection or transaction
type Storage interface {
	User() UserRepo
	Refresh() RefreshTokenRepo
	Revocation() RevocationRepo
	Todo() TodoRepo

	// Run fn inside a db transaction
	// The storage passed to fn operates on the transaction connection
	InTx(ctx context.Context, fn func(Storage) error) error
}
