package queue

import (
	"context"
	"time"
)

// MessageInterface defines the interface for queue messages
// This enables better testability by allowing mock implementations
type MessageInterface interface {
	Ack() error
	Nack(requeue bool) error
	GetJob() *Job
}

// Publisher enqueues jobs. HTTP handlers depend only on this.
type Publisher interface {
	Enqueue(ctx context.Context, job *Job) error
}

// JobQueue is the interface for job queues
type JobQueue interface {
	Publisher

	// Consume returns a channel of messages from the queue.
	// The caller is responsible for acknowledging each message.
	// Prefetch controls how many unacknowledged messages each consumer can hold.
	// The message channel is closed when ctx is cancelled or the connection drops.
	Consume(ctx context.Context, prefetchCount int) (<-chan *Message, <-chan error, error)

	// Close closes the queue connection
	Close() error

	// HealthCheck verifies the queue connection is healthy
	HealthCheck(ctx context.Context) error
}

// DLQPurger drops dead-lettered messages older than retention and reports
// how many were removed.
type DLQPurger interface {
	PurgeOlderThan(ctx context.Context, retention time.Duration) (int, error)
}
