package session

import (
	"context"
	"log/slog"
	"time"
)

const defaultSweepInterval = time.Minute

// StartSweeper runs a background goroutine that periodically removes
// sessions idle past the registry timeout. getOrCreate already treats
// expired records as absent; the sweeper only reclaims memory for
// sessions that are never touched again.
func StartSweeper(ctx context.Context, registry *Registry, interval time.Duration) {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		slog.Info("Session sweeper started", "interval", interval)

		for {
			select {
			case <-ticker.C:
				if removed := registry.RemoveExpired(time.Now()); removed > 0 {
					slog.Info("Session sweeper removed expired sessions", "count", removed)
				}
			case <-ctx.Done():
				slog.Info("Session sweeper shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}
