package e2e

import (
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nvoropaev/authkeeper/internal/handlers"
	"github.com/nvoropaev/authkeeper/internal/logger"
	"github.com/nvoropaev/authkeeper/internal/repository/postgres"
	"github.com/nvoropaev/authkeeper/internal/service/auth"
	"github.com/nvoropaev/authkeeper/internal/service/auth/tokenmanager"
	"github.com/nvoropaev/authkeeper/internal/service/todo"
	"github.com/nvoropaev/authkeeper/internal/testutil"
)

type Services struct {
	AuthService    *auth.AuthService
	Gate           *auth.Gate
	SessionManager *auth.SessionManager
	TodoService    *todo.TodoService
}

// ServeWithTx runs the full router over one db transaction (one connection
// cause one transaction) and hands that transaction to the inner function:
// so you can safely nest testutil.WithTx with it for per-case savepoints
func ServeWithTx(dbpool *pgxpool.Pool, t *testing.T, fn func(tx pgx.Tx, srvURL string, s Services)) {
	testutil.WithTx(dbpool, t, func(tx pgx.Tx) {
		storage := postgres.NewStorage(tx)

		tokenManager, err := tokenmanager.New(tokenmanager.Config{SecretKey: "test-secret"})
		require.NoError(t, err, "token manager should be created without errors")

		as, err := auth.NewService(auth.Config{Hasher: auth.BcryptHasher{Cost: bcrypt.MinCost}}, tokenManager, storage)
		require.NoError(t, err, "auth service starting error")

		gate, err := auth.NewGate(tokenManager, storage)
		require.NoError(t, err, "gate starting error")

		sessions, err := auth.NewSessionManager(tokenManager, storage)
		require.NoError(t, err, "session manager starting error")

		ts, err := todo.NewService(storage.Todo())
		require.NoError(t, err, "todo service starting error")

		router := handlers.NewRouter(as, gate, sessions, ts, logger.NewNoOpLogger())

		srv := httptest.NewServer(router)
		defer srv.Close()

		fn(tx, srv.URL, Services{
			AuthService:    as,
			Gate:           gate,
			SessionManager: sessions,
			TodoService:    ts,
		})
	})
}
