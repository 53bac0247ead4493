package cleanup

import (
	"context"
	"time"

	"github.com/nvoropaev/authkeeper/internal/logger"
	"github.com/nvoropaev/authkeeper/internal/repository"
)

const defaultInterval = 1 * time.Hour

// Janitor periodically purges revocation ledger entries whose natural
// expiry passed: an expired token is rejected by the codec anyway,
// keeping the rows would only grow the table
type Janitor struct {
	interval   time.Duration
	revocation repository.RevocationRepo
	logger     logger.Logger
}

func New(interval time.Duration, revocation repository.RevocationRepo, logger logger.Logger) *Janitor {
	if interval == 0 {
		interval = defaultInterval
	}

	return &Janitor{
		interval:   interval,
		revocation: revocation,
		logger:     logger,
	}
}

// Run purges on every tick until the context is cancelled
// Returned channel closes when the loop fully stops
func (j *Janitor) Run(ctx context.Context) <-chan struct{} {
	idleStopped := make(chan struct{})
	j.logger.Debug("Starting revocation janitor", "interval", j.interval)

	go func() {
		defer close(idleStopped)

		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				j.logger.Debug("Janitor stopped by context")
				return

			case <-ticker.C:
				purged, err := j.revocation.PurgeExpired(ctx, time.Now())
				if err != nil {
					j.logger.Error("Failed to purge expired revocations", "error", err)
					continue
				}

				if purged > 0 {
					j.logger.Info("Purged expired revocation entries", "count", purged)
				}
			}
		}
	}()

	return idleStopped
}
