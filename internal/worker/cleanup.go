// Package worker runs background maintenance of the URL registry.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DefaultCleanupInterval is how often expired URLs are reaped when no
// interval is configured.
const DefaultCleanupInterval = 5 * time.Minute

type expiredURLCleaner interface {
	CleanupExpiredURLs(ctx context.Context) (int, error)
}

// Cleanup periodically removes expired URLs. A failing or panicking sweep is
// logged and the next one runs as scheduled.
type Cleanup struct {
	cleaner  expiredURLCleaner
	interval time.Duration
	logger   *slog.Logger
}

func NewCleanup(cleaner expiredURLCleaner, interval time.Duration, logger *slog.Logger) *Cleanup {
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}

	return &Cleanup{
		cleaner:  cleaner,
		interval: interval,
		logger:   logger,
	}
}

// Run blocks until ctx is done. It always returns nil so that it can be
// placed in an errgroup without tearing the server down.
func (c *Cleanup) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.logger.Info("cleanup worker started", slog.Duration("interval", c.interval))

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("cleanup worker stopped")
			return nil
		case <-ticker.C:
			c.sweep(ctx)
		}
	}
}

func (c *Cleanup) sweep(ctx context.Context) {
	const op = "worker.Cleanup.sweep"

	defer func() {
		if v := recover(); v != nil {
			c.logger.Error("error during cleanup", slog.String("op", op), slog.Any("err", fmt.Errorf("panic: %v", v)))
		}
	}()

	start := time.Now()

	removed, err := c.cleaner.CleanupExpiredURLs(ctx)
	if err != nil {
		c.logger.Error("error during cleanup",
			slog.String("op", op),
			slog.Int("removed", removed),
			slog.Any("err", err),
		)
		return
	}

	if removed > 0 {
		c.logger.Info("cleaned up expired urls",
			slog.Int("removed", removed),
			slog.Duration("elapsed", time.Since(start)),
		)
	}
}
