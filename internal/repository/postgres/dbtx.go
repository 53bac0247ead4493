package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nvoropaev/authkeeper/internal/apperrors"
)

// DBTX is the common surface of *pgxpool.Pool and pgx.Tx
// Repos work the same over a pool connection or inside a transaction
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// dbErr marks infrastructure failures so the services never report
// a db outage as "not found" or "unauthorized"
func dbErr(err error) error {
	return fmt.Errorf("db error (%v): %w", err, apperrors.ErrStoreUnavailable)
}
