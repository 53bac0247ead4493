package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nvoropaev/authkeeper/internal/models"
)

type RevocationRepo struct {
	DB DBTX
}

const revokeEntry = `-- name: RecordRevocation
INSERT INTO revoked_tokens (token_id, token_kind, user_id, revoked_at, reason, expires_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (token_id) DO NOTHING
`

// Revoke records the entry
// ON CONFLICT makes concurrent same-id revokes converge to "revoked"
func (r *RevocationRepo) Revoke(ctx context.Context, entry models.RevocationEntry) error {
	revokedAt := entry.RevokedAt
	if revokedAt.IsZero() {
		revokedAt = time.Now()
	}

	_, err := r.DB.Exec(ctx, revokeEntry,
		entry.TokenID, entry.TokenKind, entry.UserID, revokedAt, entry.Reason, entry.ExpiresAt)
	if err != nil {
		return dbErr(err)
	}
	return nil
}

const isRevoked = `-- name: IsTokenRevoked
SELECT EXISTS (
	SELECT 1 FROM revoked_tokens WHERE token_id = $1
)
`

func (r *RevocationRepo) IsRevoked(ctx context.Context, tokenID uuid.UUID) (bool, error) {
	rows, _ := r.DB.Query(ctx, isRevoked, tokenID)
	revoked, err := pgx.CollectOneRow(rows, pgx.RowTo[bool])
	if err != nil {
		return false, dbErr(err)
	}
	return revoked, nil
}

const purgeExpired = `-- name: PurgeExpiredRevocations
DELETE FROM revoked_tokens
WHERE expires_at <= $1
`

// PurgeExpired bounds ledger growth
// Safe: the token codec rejects expired tokens on its own
func (r *RevocationRepo) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.DB.Exec(ctx, purgeExpired, before)
	if err != nil {
		return 0, dbErr(err)
	}
	return tag.RowsAffected(), nil
}
