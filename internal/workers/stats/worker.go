package stats

import (
	"adledger-server/internal/observability"
	"context"
	"sync"
	"time"
)

const activeWindow = 24 * time.Hour

// Repository is the slice of storage the worker needs
type Repository interface {
	CountActiveUsersSince(ctx context.Context, since time.Time) (int64, error)
	SetActiveUsers24h(ctx context.Context, count int64) error
}

// Worker keeps the active_users_24h counter in the settings record fresh
// between admin stats reads.
type Worker struct {
	repo     Repository
	logger   *observability.Logger
	interval time.Duration
	now      func() time.Time

	stopChan chan struct{}
	stopOnce sync.Once
}

// New creates a new Worker
func New(repo Repository, logger *observability.Logger, interval time.Duration) *Worker {
	return &Worker{
		repo:     repo,
		logger:   logger,
		interval: interval,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
}

// Start runs the worker until Stop is called or ctx is done
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info(ctx, "Starting active users worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Refresh immediately on start
	w.refresh(ctx)

	for {
		select {
		case <-ticker.C:
			w.refresh(ctx)
		case <-w.stopChan:
			w.logger.Info(ctx, "Stopping active users worker")
			return
		case <-ctx.Done():
			w.logger.Info(ctx, "Context cancelled, stopping active users worker")
			return
		}
	}
}

// Stop stops the worker. It is safe to call more than once.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stopChan) })
}

func (w *Worker) refresh(ctx context.Context) {
	count, err := w.repo.CountActiveUsersSince(ctx, w.now().Add(-activeWindow))
	if err != nil {
		w.logger.Error(ctx, "failed to count active users", err)
		return
	}
	if err := w.repo.SetActiveUsers24h(ctx, count); err != nil {
		w.logger.Error(ctx, "failed to store active users", err)
		return
	}
	w.logger.Debug(ctx, "refreshed active users", observability.Field{Key: "active_users_24h", Value: count})
}
