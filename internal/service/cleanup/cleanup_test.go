package cleanup

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/nvoropaev/authkeeper/internal/logger"
	"github.com/nvoropaev/authkeeper/internal/models"
)

// revocationStub counts purge calls without a real database
type revocationStub struct {
	mu     sync.Mutex
	purges int
}

func (s *revocationStub) Revoke(ctx context.Context, entry models.RevocationEntry) error {
	return nil
}

func (s *revocationStub) IsRevoked(ctx context.Context, tokenID uuid.UUID) (bool, error) {
	return false, nil
}

func (s *revocationStub) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purges++
	return 1, nil
}

func (s *revocationStub) purgeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.purges
}

func Test_Janitor(t *testing.T) {
	t.Parallel()

	t.Run("purges on ticks and stops on cancel", func(t *testing.T) {
		stub := &revocationStub{}
		j := New(10*time.Millisecond, stub, logger.NewNoOpLogger())

		ctx, cancel := context.WithCancel(t.Context())
		stopped := j.Run(ctx)

		require.Eventually(t, func() bool {
			return stub.purgeCount() >= 2
		}, time.Second, 5*time.Millisecond, "janitor should purge on every tick")

		cancel()

		select {
		case <-stopped:
		case <-time.After(time.Second):
			t.Fatal("janitor did not stop after context cancellation")
		}
	})

	t.Run("default interval applied", func(t *testing.T) {
		j := New(0, &revocationStub{}, logger.NewNoOpLogger())
		require.Equal(t, defaultInterval, j.interval)
	})
}
