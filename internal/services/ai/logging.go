package ai

import (
	"context"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// callLogger emits the llm_api_* debug events shared by every provider
// whenever the logger has debug level enabled. Response previews are
// truncated unless provider debug mode is on. The user's journal text is
// never logged, only its length.
type callLogger struct {
	logger   *zap.Logger
	debug    bool
	provider string
	model    string
}

func (l callLogger) enabled() bool {
	return l.logger != nil && (l.debug || l.logger.Core().Enabled(zapcore.DebugLevel))
}

func (l callLogger) fields(ctx context.Context) []zap.Field {
	return []zap.Field{
		zap.String("provider", l.provider),
		zap.String("model", l.model),
		zap.String("user_hash", HashUserID(ExtractUserID(ctx))),
		zap.String("entry_id", ExtractEntryID(ctx)),
		zap.String("request_id", ExtractRequestID(ctx)),
	}
}

func (l callLogger) request(ctx context.Context, textLength int) {
	if !l.enabled() {
		return
	}
	l.logger.Debug("llm_api_request", append(l.fields(ctx), zap.Int("text_length", textLength))...)
}

func (l callLogger) failure(ctx context.Context, err error, latency time.Duration) {
	if !l.enabled() {
		return
	}
	l.logger.Debug("llm_api_error", append(l.fields(ctx),
		zap.String("kind", string(KindOf(err))),
		zap.Error(err),
		zap.Int64("latency_ms", latency.Milliseconds()),
	)...)
}

func (l callLogger) response(ctx context.Context, content string, latency time.Duration) {
	if !l.enabled() {
		return
	}
	l.logger.Debug("llm_api_response", append(l.fields(ctx),
		zap.Int("response_length", len(content)),
		zap.String("response_preview", SanitizeResponse(content, l.debug)),
		zap.Int64("latency_ms", latency.Milliseconds()),
	)...)
}
