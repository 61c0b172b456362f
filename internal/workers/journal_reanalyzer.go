package workers

import (
	"context"
	"errors"
	"fmt"

	"github.com/benvon/mindful-harmony/internal/database"
	"github.com/benvon/mindful-harmony/internal/models"
	"github.com/benvon/mindful-harmony/internal/queue"
	"github.com/benvon/mindful-harmony/internal/services/ai"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Analyzer is the slice of ai.Guard the worker needs.
type Analyzer interface {
	Analyze(ctx context.Context, text string) ai.Result
	HasProvider() bool
}

// JournalStore loads and updates journal analyses.
type JournalStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.JournalEntry, error)
	UpdateAnalysis(ctx context.Context, id uuid.UUID, a *models.Analysis, source models.AnalysisSource) error
}

// JournalReanalyzer retries the provider for entries that were answered
// by the keyword fallback.
type JournalReanalyzer struct {
	analyzer Analyzer
	journal  JournalStore
	jobQueue queue.Publisher // for delayed retries
	logger   *zap.Logger
}

// NewJournalReanalyzer creates a JournalReanalyzer. jobQueue may be nil, in
// which case failed jobs go straight to the dead letter queue.
func NewJournalReanalyzer(analyzer Analyzer, journal JournalStore, jobQueue queue.Publisher, logger *zap.Logger) *JournalReanalyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JournalReanalyzer{
		analyzer: analyzer,
		journal:  journal,
		jobQueue: jobQueue,
		logger:   logger,
	}
}

// ProcessJob handles one message and always settles it (ack, nack or
// re-enqueue). The returned error is for logging only.
func (a *JournalReanalyzer) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()

	if job.Type != queue.JobTypeJournalReanalyze {
		_ = msg.Nack(false) // unknown type: dead-letter
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	if job.EntryID == nil {
		_ = msg.Nack(false)
		return fmt.Errorf("entry_id is required for %s job", job.Type)
	}

	entry, err := a.journal.GetByID(ctx, *job.EntryID)
	if errors.Is(err, database.ErrNotFound) {
		a.logger.Info("journal_reanalyze_entry_gone", zap.String("entry_id", job.EntryID.String()))
		return ack(msg)
	}
	if err != nil {
		return a.retry(ctx, msg, job, fmt.Errorf("failed to load journal entry: %w", err))
	}

	if skip, reason := skipReanalysis(entry, a.analyzer.HasProvider()); skip {
		a.logger.Debug("journal_reanalyze_skipped",
			zap.String("entry_id", entry.ID.String()),
			zap.String("reason", reason),
		)
		return ack(msg)
	}

	actx := ai.WithEntryID(ctx, entry.ID)
	if entry.UserID != nil {
		actx = ai.WithUserID(actx, *entry.UserID)
	}
	actx = ai.WithRequestID(actx, job.ID.String())

	res := a.analyzer.Analyze(actx, entry.Text)
	if res.Source == models.AnalysisSourceFallback {
		return a.retry(ctx, msg, job, &ai.GenerationError{Kind: res.FailureKind, Provider: "guard"})
	}

	if err := a.journal.UpdateAnalysis(ctx, entry.ID, &res.Analysis, res.Source); err != nil {
		return a.retry(ctx, msg, job, fmt.Errorf("failed to store analysis: %w", err))
	}

	a.logger.Info("journal_entry_reanalyzed",
		zap.String("entry_id", entry.ID.String()),
		zap.String("ai_source", string(res.Source)),
		zap.Int("retry_count", job.RetryCount),
	)
	return ack(msg)
}

// skipReanalysis reports entries that must not or need not be re-run.
func skipReanalysis(entry *models.JournalEntry, hasProvider bool) (bool, string) {
	switch {
	case entry.AISource == models.AnalysisSourceCrisis:
		return true, "crisis"
	case entry.AI != nil && entry.AI.Risk == models.RiskCrisis:
		return true, "crisis"
	case entry.AISource == models.AnalysisSourceProvider:
		return true, "already_analyzed"
	case !hasProvider:
		return true, "no_provider"
	}
	return false, ""
}

// retry re-enqueues job with backoff while retries remain, otherwise
// dead-letters it. Failures a later attempt cannot fix, such as auth or
// quota, are dead-lettered at once; the sweep picks the entry up again.
func (a *JournalReanalyzer) retry(ctx context.Context, msg queue.MessageInterface, job *queue.Job, cause error) error {
	kind := ai.KindOf(cause)

	if ai.IsRetryable(cause) && job.CanRetry() && a.jobQueue != nil {
		delay := ai.GetRetryDelay(cause, job.RetryCount)
		next := job.Retry(delay)
		if err := a.jobQueue.Enqueue(ctx, next); err != nil {
			// Could not schedule the retry; let the broker redeliver.
			if nackErr := msg.Nack(true); nackErr != nil {
				a.logger.Warn("failed_to_nack_job", zap.String("job_id", job.ID.String()), zap.Error(nackErr))
			}
			return fmt.Errorf("failed to re-enqueue job %s: %w", job.ID, err)
		}
		if err := msg.Ack(); err != nil {
			a.logger.Warn("failed_to_ack_job_after_reenqueue", zap.String("job_id", job.ID.String()), zap.Error(err))
		}
		a.logger.Info("journal_reanalyze_retry_scheduled",
			zap.String("job_id", job.ID.String()),
			zap.String("kind", string(kind)),
			zap.Int("attempt", next.RetryCount),
			zap.Int("max_retries", job.MaxRetries),
			zap.Duration("delay", delay),
		)
		return fmt.Errorf("job %s will retry: %w", job.ID, cause)
	}

	if err := msg.Nack(false); err != nil {
		a.logger.Warn("failed_to_dead_letter_job", zap.String("job_id", job.ID.String()), zap.Error(err))
	}
	a.logger.Warn("journal_reanalyze_dead_lettered",
		zap.String("job_id", job.ID.String()),
		zap.String("kind", string(kind)),
		zap.Int("retry_count", job.RetryCount),
	)
	return fmt.Errorf("job %s dead-lettered: %w", job.ID, cause)
}

func ack(msg queue.MessageInterface) error {
	if err := msg.Ack(); err != nil {
		return fmt.Errorf("failed to ack job: %w", err)
	}
	return nil
}
