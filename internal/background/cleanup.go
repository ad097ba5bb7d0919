package background

import (
	"context"
	"log/slog"
	"time"
)

// CodeSweeper is the slice of the one-time code service the sweeper drives.
type CodeSweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

// CleanupManager periodically retires expired one-time codes. Validation
// already ignores expired rows, so this is table hygiene, not correctness.
type CleanupManager struct {
	codes    CodeSweeper
	logger   *slog.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(codes CodeSweeper, logger *slog.Logger, interval time.Duration) *CleanupManager {
	return &CleanupManager{
		codes:    codes,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic sweep
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	// Run immediately on startup
	cm.runSweep(ctx)

	for {
		select {
		case <-ticker.C:
			cm.runSweep(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

func (cm *CleanupManager) runSweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	rowsDeleted, err := cm.codes.Sweep(sweepCtx)
	if err != nil {
		cm.logger.Error("failed to sweep expired one-time codes", slog.Any("error", err))
		return
	}

	if rowsDeleted > 0 {
		cm.logger.Info("expired one-time codes swept", slog.Int64("rows_deleted", rowsDeleted))
	}
}

// Stop signals the cleanup manager to stop
func (cm *CleanupManager) Stop() {
	close(cm.stopCh)
}
