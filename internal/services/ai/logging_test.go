package ai

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestCallLoggerResponsePreview(t *testing.T) {
	t.Parallel()

	content := strings.Repeat("a", MaxPreviewLength*2)
	tests := []struct {
		name       string
		level      zapcore.Level
		debug      bool
		wantLogged bool
		wantLen    int
	}{
		{name: "info logger without debug mode", level: zapcore.InfoLevel},
		{name: "debug logger truncates preview", level: zapcore.DebugLevel, wantLogged: true, wantLen: MaxPreviewLength + len("...")},
		{name: "debug mode logs full response", level: zapcore.DebugLevel, debug: true, wantLogged: true, wantLen: len(content)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			core, logs := observer.New(tt.level)
			l := callLogger{logger: zap.New(core), debug: tt.debug, provider: "test", model: "m"}
			l.response(context.Background(), content, time.Millisecond)

			entries := logs.FilterMessage("llm_api_response").All()
			if !tt.wantLogged {
				if len(entries) != 0 {
					t.Fatalf("expected no response log, got %d", len(entries))
				}
				return
			}
			if len(entries) != 1 {
				t.Fatalf("expected one response log, got %d", len(entries))
			}
			preview, _ := entries[0].ContextMap()["response_preview"].(string)
			if len(preview) != tt.wantLen {
				t.Errorf("preview length = %d, want %d", len(preview), tt.wantLen)
			}
		})
	}
}
