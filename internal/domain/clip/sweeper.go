package clip

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper runs the age-expiry sweep on a fixed cadence. It sweeps once at
// startup, then on every tick until the context is cancelled.
type Sweeper struct {
	service  *Service
	interval time.Duration
	logger   *slog.Logger
}

// NewSweeper creates a sweeper over the given archive service.
func NewSweeper(service *Service, interval time.Duration, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		service:  service,
		interval: interval,
		logger:   logger,
	}
}

// Run blocks until ctx is cancelled. Sweep failures are logged and the
// cadence continues; a wedged persistence layer should not kill the loop.
func (w *Sweeper) Run(ctx context.Context) {
	w.sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *Sweeper) sweep(ctx context.Context) {
	removed, err := w.service.SweepExpired(ctx, time.Now())
	if err != nil {
		w.logger.Error("expiry sweep failed", "removed", removed, "error", err)
	}
}
