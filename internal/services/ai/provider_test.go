package ai

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/benvon/mindful-harmony/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDefaultRegistry(t *testing.T) {
	t.Parallel()
	r := NewDefaultRegistry()
	want := []string{ProviderAnthropic, ProviderGemini, ProviderNone, ProviderOpenAI}
	if got := r.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}

	gen, err := r.GetProvider(context.Background(), ProviderNone, ProviderConfig{})
	if err != nil {
		t.Fatalf("GetProvider(none) error: %v", err)
	}
	if _, err := gen.Generate(context.Background(), "", "x"); KindOf(err) != KindUnavailable {
		t.Errorf("NullGenerator error kind = %q, want unavailable", KindOf(err))
	}

	_, err = r.GetProvider(context.Background(), "mystery", ProviderConfig{})
	var notFound *ErrProviderNotFound
	if !errors.As(err, &notFound) {
		t.Errorf("expected ErrProviderNotFound, got %v", err)
	}
}

func TestProvidersRequireAPIKey(t *testing.T) {
	t.Parallel()
	r := NewDefaultRegistry()
	for _, name := range []string{ProviderOpenAI, ProviderGemini, ProviderAnthropic} {
		if _, err := r.GetProvider(context.Background(), name, ProviderConfig{}); err == nil {
			t.Errorf("GetProvider(%s) without key: expected error", name)
		}
	}
}

func TestNewGuardFromConfig_MissingKeyDegradesToNull(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{AIProvider: config.AIProviderOpenAI, AITimeout: time.Second}
	g := NewGuardFromConfig(context.Background(), NewDefaultRegistry(), cfg, zap.NewNop(), false)
	if g.HasProvider() {
		t.Errorf("expected null provider, got %s", g.ProviderName())
	}
}

func TestNewGuardFromConfig_OpenAI(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{AIProvider: config.AIProviderOpenAI, OpenAIKey: "sk-test-0123456789", OpenAIModel: "gpt-4o-mini", AITimeout: time.Second}
	core, logs := observer.New(zapcore.InfoLevel)
	g := NewGuardFromConfig(context.Background(), NewDefaultRegistry(), cfg, zap.New(core), false)
	if g.ProviderName() != ProviderOpenAI {
		t.Errorf("ProviderName() = %q, want openai", g.ProviderName())
	}

	entries := logs.FilterMessage("ai_provider_configured").All()
	if len(entries) != 1 {
		t.Fatalf("expected one ai_provider_configured log, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if got := fields["api_key"]; got != "sk-t"+RedactedValue+"6789" {
		t.Errorf("api_key = %v, want redacted key", got)
	}
	if strings.Contains(fmt.Sprint(fields), cfg.OpenAIKey) {
		t.Error("full API key leaked into logs")
	}
}

func TestSanitizeAPIKey(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"":                "",
		"short":           RedactedValue,
		"sk-1234567890ab": "sk-1" + RedactedValue + "90ab",
	}
	for in, want := range tests {
		if got := SanitizeAPIKey(in); got != want {
			t.Errorf("SanitizeAPIKey(%q) = %q, want %q", in, got, want)
		}
	}
}
