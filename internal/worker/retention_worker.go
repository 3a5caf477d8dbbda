package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/El-Ikhsan/ktp-extractor/internal/repository"
)

// RetentionWorker periodically deletes extraction records older than the
// configured retention window.
type RetentionWorker struct {
	repo     *repository.ExtractionRepository
	interval time.Duration
	maxAge   time.Duration
}

// NewRetentionWorker constructs a RetentionWorker.
func NewRetentionWorker(repo *repository.ExtractionRepository, interval, maxAge time.Duration) *RetentionWorker {
	return &RetentionWorker{
		repo:     repo,
		interval: interval,
		maxAge:   maxAge,
	}
}

// Start begins the periodic cleanup loop and listens for context cancellation.
func (w *RetentionWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Dur("max_age", w.maxAge).Msg("Starting retention worker")

	// Run immediately on start
	w.run(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Retention worker stopped")
			return
		}
	}
}

func (w *RetentionWorker) run(ctx context.Context) {
	cutoff := time.Now().Add(-w.maxAge)

	start := time.Now()
	deleted, err := w.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		log.Error().Err(err).Msg("Failed to prune extraction records")
		return
	}

	if deleted > 0 {
		log.Info().Int64("deleted", deleted).Dur("duration", time.Since(start)).Msg("Extraction record cleanup completed")
	}
}
