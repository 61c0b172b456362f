package queue

import (
	"time"

	"github.com/google/uuid"
)

// JobType represents the type of job
type JobType string

const (
	// JobTypeJournalReanalyze re-runs the analysis of a journal entry that
	// was answered by the keyword fallback.
	JobTypeJournalReanalyze JobType = "journal.reanalyze"
)

// DefaultMaxRetries bounds delayed retries before a job is dead-lettered.
const DefaultMaxRetries = 3

// Job represents a job in the queue
type Job struct {
	ID         uuid.UUID      `json:"id"`
	Type       JobType        `json:"type"`
	UserID     *uuid.UUID     `json:"user_id,omitempty"`
	EntryID    *uuid.UUID     `json:"entry_id,omitempty"`
	NotBefore  *time.Time     `json:"not_before,omitempty"` // nil = immediate
	NotAfter   *time.Time     `json:"not_after,omitempty"`  // nil = no expiration
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	RetryCount int            `json:"retry_count"`
	MaxRetries int            `json:"max_retries"`
}

// NewJob creates a new job
func NewJob(jobType JobType, userID *uuid.UUID, entryID *uuid.UUID) *Job {
	return &Job{
		ID:         uuid.New(),
		Type:       jobType,
		UserID:     userID,
		EntryID:    entryID,
		Metadata:   make(map[string]any),
		CreatedAt:  time.Now(),
		MaxRetries: DefaultMaxRetries,
	}
}

// NewJournalReanalyzeJob creates a re-analysis job for one entry. userID
// is nil for anonymous entries.
func NewJournalReanalyzeJob(entryID uuid.UUID, userID *uuid.UUID) *Job {
	return NewJob(JobTypeJournalReanalyze, userID, &entryID)
}

// ShouldProcess checks if the job should be processed now
func (j *Job) ShouldProcess() bool {
	now := time.Now()
	if j.NotBefore != nil && now.Before(*j.NotBefore) {
		return false
	}
	if j.NotAfter != nil && now.After(*j.NotAfter) {
		return false
	}
	return true
}

// IsExpired checks if the job has expired
func (j *Job) IsExpired() bool {
	if j.NotAfter == nil {
		return false
	}
	return time.Now().After(*j.NotAfter)
}

// CanRetry checks if the job can be retried
func (j *Job) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// Retry returns a copy scheduled no earlier than now+delay with the retry
// count incremented.
func (j *Job) Retry(delay time.Duration) *Job {
	next := *j
	notBefore := time.Now().Add(delay)
	next.NotBefore = &notBefore
	next.RetryCount = j.RetryCount + 1
	return &next
}
