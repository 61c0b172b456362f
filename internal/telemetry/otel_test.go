package telemetry

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestInitTracer(t *testing.T) {
	tests := []struct {
		name        string
		serviceName string
		endpoint    string
		environment string
	}{
		{name: "valid configuration", serviceName: "mindful-harmony", endpoint: "localhost:4318", environment: "development"},
		{name: "empty service name", serviceName: "", endpoint: "localhost:4318"},
		{name: "default endpoint", serviceName: "mindful-harmony-worker"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			tp, err := InitTracer(ctx, tt.serviceName, tt.endpoint, tt.environment)
			if err != nil {
				t.Fatalf("InitTracer() error = %v", err)
			}
			if err := Shutdown(ctx, tp); err != nil {
				t.Errorf("Shutdown() error = %v", err)
			}
		})
	}
}

func TestSetup(t *testing.T) {
	t.Run("disabled returns noop shutdown", func(t *testing.T) {
		shutdown, err := Setup(context.Background(), Config{}, zap.NewNop())
		if err != nil {
			t.Fatalf("Setup() error = %v", err)
		}
		if err := shutdown(context.Background()); err != nil {
			t.Errorf("noop shutdown error = %v", err)
		}
	})

	t.Run("enabled", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		shutdown, err := Setup(ctx, Config{Enabled: true, Endpoint: "localhost:4318", ServiceName: "test"}, zap.NewNop())
		if err != nil {
			t.Fatalf("Setup() error = %v", err)
		}
		if err := shutdown(ctx); err != nil {
			t.Errorf("shutdown error = %v", err)
		}
	})
}

func TestShutdown(t *testing.T) {
	if err := Shutdown(context.Background(), nil); err != nil {
		t.Errorf("Shutdown() with nil provider should not error, got: %v", err)
	}
}
