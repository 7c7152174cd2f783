package workers

import (
	"context"
	"time"

	"careshift_backend/internal/logger"
	"careshift_backend/internal/repositories"
)

// ShiftSweeper cancels open and offered shifts whose window already ended
// without an assignment. Housekeeping only; no business operation depends on
// it having run.
type ShiftSweeper struct {
	store    repositories.Store
	interval time.Duration
}

func NewShiftSweeper(store repositories.Store, interval time.Duration) *ShiftSweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &ShiftSweeper{store: store, interval: interval}
}

func (w *ShiftSweeper) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *ShiftSweeper) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("shift sweeper stopped")
			return
		case <-ticker.C:
			expired, err := w.store.Shifts().ExpireUnassigned(ctx, time.Now().UTC())
			if err != nil {
				logger.WorkerLog("shift_sweeper", "expire unassigned", err)
				continue
			}
			if expired > 0 {
				logger.Info("expired unassigned shifts", "count", expired)
			}
		}
	}
}
