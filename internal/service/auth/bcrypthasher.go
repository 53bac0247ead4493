package auth

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/nvoropaev/authkeeper/internal/apperrors"
)

// Default hasher used when service config doesn't provide one
var DefaultHasher = BcryptHasher{Cost: bcrypt.DefaultCost}

// Bcrypt password hasher
// Passwords are sha256-prehashed: lifts bcrypt's 72 byte input limit
type BcryptHasher struct {
	// Work factor. Zero means bcrypt.DefaultCost
	// Pick so a single hash costs on the order of 100ms on target hardware
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	sum := sha256.Sum256([]byte(password))
	hash, err := bcrypt.GenerateFromPassword(sum[:], cost)
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperrors.ErrHashing, err)
	}
	return string(hash), nil
}

// Compare known hashedPassword and user provided password
// bcrypt compare is constant time, so it's protected against timing attacks
// Mismatch is returned as is, a malformed digest maps to apperrors.ErrHashing
func (h BcryptHasher) Compare(hashedPassword string, password string) error {
	sum := sha256.Sum256([]byte(password))
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), sum[:])

	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return err
	default:
		return fmt.Errorf("%w: %w", apperrors.ErrHashing, err)
	}
}
