package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/mindful-harmony/internal/database"
	"github.com/benvon/mindful-harmony/internal/queue"
	"go.uber.org/zap"
)

const (
	// DefaultSweepLookback is how far back the reprocessor looks for
	// fallback-analyzed entries.
	DefaultSweepLookback = 24 * time.Hour
	sweepBatchSize       = 200
)

// FallbackLister finds entries answered by the keyword fallback.
type FallbackLister interface {
	ListFallbackIDs(ctx context.Context, since time.Time, limit int) ([]database.FallbackEntry, error)
}

// Reprocessor periodically schedules re-analysis jobs for fallback entries
// whose publish at creation time was lost (queue down, process crash).
type Reprocessor struct {
	jobQueue queue.Publisher
	journal  FallbackLister
	lookback time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewReprocessor creates a new reprocessor
func NewReprocessor(jobQueue queue.Publisher, journal FallbackLister, lookback time.Duration, logger *zap.Logger) *Reprocessor {
	if lookback <= 0 {
		lookback = DefaultSweepLookback
	}
	return &Reprocessor{
		jobQueue: jobQueue,
		journal:  journal,
		lookback: lookback,
		logger:   logger,
		now:      time.Now,
	}
}

// ScheduleReanalysisJobs enqueues one job per fallback entry in the
// lookback window and returns how many were enqueued. Individual publish
// failures are logged and skipped.
func (r *Reprocessor) ScheduleReanalysisJobs(ctx context.Context) (int, error) {
	entries, err := r.journal.ListFallbackIDs(ctx, r.now().Add(-r.lookback), sweepBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list fallback entries: %w", err)
	}

	scheduled := 0
	for _, e := range entries {
		job := queue.NewJournalReanalyzeJob(e.ID, e.UserID)
		notAfter := r.now().Add(r.lookback)
		job.NotAfter = &notAfter
		if err := r.jobQueue.Enqueue(ctx, job); err != nil {
			r.logger.Warn("failed_to_schedule_reanalysis_job",
				zap.String("entry_id", e.ID.String()),
				zap.Error(err),
			)
			continue
		}
		scheduled++
	}

	r.logger.Info("scheduled_reanalysis_jobs",
		zap.Int("candidates", len(entries)),
		zap.Int("scheduled", scheduled),
	)
	return scheduled, nil
}

// Start runs ScheduleReanalysisJobs every interval until ctx is cancelled.
func (r *Reprocessor) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.ScheduleReanalysisJobs(ctx); err != nil {
				r.logger.Warn("reanalysis_sweep_failed", zap.Error(err))
			}
		}
	}
}
