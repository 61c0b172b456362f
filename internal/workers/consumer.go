package workers

import (
	"context"

	"github.com/benvon/mindful-harmony/internal/queue"
	"go.uber.org/zap"
)

// JobProcessor settles a single queue message.
type JobProcessor interface {
	ProcessJob(ctx context.Context, msg queue.MessageInterface) error
}

// Consume feeds messages to p until ctx is cancelled or the message
// channel closes. Queue errors are logged and do not stop the loop.
func Consume(ctx context.Context, msgs <-chan *queue.Message, errs <-chan error, p JobProcessor, logger *zap.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Error("queue_error", zap.Error(err))
		case msg, ok := <-msgs:
			if !ok {
				logger.Info("message_channel_closed")
				return
			}
			if err := p.ProcessJob(ctx, msg); err != nil {
				job := msg.GetJob()
				logger.Warn("job_processing_failed",
					zap.String("job_id", job.ID.String()),
					zap.String("job_type", string(job.Type)),
					zap.Error(err),
				)
			}
		}
	}
}
