package models

import (
	"time"

	"github.com/google/uuid"
)

// Token kinds embedded in the signed claims
// A refresh token must never pass the authorization gate
const (
	TokenKindAccess  = "access"
	TokenKindRefresh = "refresh"
)

// Signed token as returned to the client
type IssuedToken struct {
	// Compact signed representation
	Value string

	// Token id (jti), the revocation and tracking key
	ID uuid.UUID

	ExpiresAt time.Time
}

// Token pair issued by TokenManager, AuthService
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}

// Server side row for an issued refresh token
type RefreshToken struct {
	ID        uuid.UUID // token id (jti), unique
	UserID    uuid.UUID
	IssuedAt  time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time // nil while the token is live
	UserAgent *string    // origin metadata, optional
}

// IsActive reports whether the token may still mint new access tokens
func (t RefreshToken) IsActive(now time.Time) bool {
	return t.RevokedAt == nil && t.ExpiresAt.After(now)
}

// Ledger entry for a token invalidated before its natural expiry
type RevocationEntry struct {
	TokenID   uuid.UUID
	TokenKind string
	UserID    *uuid.UUID // audit back-reference, optional
	RevokedAt time.Time
	Reason    string
	ExpiresAt time.Time // natural expiry, used for garbage collection
}
