package queue

import (
	"context"
	"time"

	"github.com/go-kit/kit/log/level"
)

// RunMaintenance ticks every b.config.CleanupInterval, calling
// ProcessDelayed then CheckStalled on each tick, until ctx is cancelled.
func (b *Broker) RunMaintenance(ctx context.Context) error {
	ticker := time.NewTicker(b.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := b.ProcessDelayed(ctx); err != nil {
				b.events.error(ctx, err)
				_ = level.Warn(b.logger).Log("op", "processDelayed", "err", err)
			}
			if _, err := b.CheckStalled(ctx); err != nil {
				b.events.error(ctx, err)
				_ = level.Warn(b.logger).Log("op", "checkStalled", "err", err)
			}
		}
	}
}
