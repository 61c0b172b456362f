package ai

import (
	"context"
	"time"

	"github.com/benvon/mindful-harmony/internal/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// DefaultGuardTimeout bounds a single provider call.
const DefaultGuardTimeout = 15 * time.Second

// TracerName identifies spans started by this package.
const TracerName = "github.com/benvon/mindful-harmony/internal/services/ai"

// Result is a guarded analysis together with the path that produced it.
type Result struct {
	Analysis models.Analysis
	Source   models.AnalysisSource
	// FailureKind is set when the provider path was attempted and failed.
	FailureKind ErrorKind
}

// Guard turns an untrusted TextGenerator into an always-valid Analysis.
// It is safe for concurrent use.
type Guard struct {
	generator TextGenerator
	timeout   time.Duration
	logger    *zap.Logger
}

// NewGuard creates a Guard. A nil generator behaves like NullGenerator.
func NewGuard(generator TextGenerator, timeout time.Duration, logger *zap.Logger) *Guard {
	if generator == nil {
		generator = NullGenerator{}
	}
	if timeout <= 0 {
		timeout = DefaultGuardTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{generator: generator, timeout: timeout, logger: logger}
}

// ProviderName returns the name of the wrapped generator.
func (g *Guard) ProviderName() string { return g.generator.Name() }

// HasProvider reports whether a real provider is configured.
func (g *Guard) HasProvider() bool { return g.generator.Name() != ProviderNone }

// Analyze never fails. Crisis phrases short-circuit to the safety script
// without calling the provider; any provider failure or unparseable
// output yields the keyword fallback.
func (g *Guard) Analyze(ctx context.Context, text string) Result {
	ctx, span := otel.Tracer(TracerName).Start(ctx, "ai.analyze")
	defer span.End()

	res := g.analyze(ctx, text)
	span.SetAttributes(
		attribute.String("ai.provider", g.generator.Name()),
		attribute.String("ai.source", string(res.Source)),
		attribute.Int("ai.text_length", len(text)),
	)
	if res.FailureKind != "" {
		span.SetAttributes(attribute.String("ai.failure_kind", string(res.FailureKind)))
	}
	return res
}

func (g *Guard) analyze(ctx context.Context, text string) Result {
	if DetectCrisis(text) {
		g.logger.Warn("crisis_detected",
			zap.String("entry_id", ExtractEntryID(ctx)),
			zap.String("request_id", ExtractRequestID(ctx)),
		)
		return Result{Analysis: ApplyCrisisOverride(Fallback(text)), Source: models.AnalysisSourceCrisis}
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	raw, err := g.generator.Generate(callCtx, SystemPrompt, text)
	if err != nil {
		kind := KindOf(err)
		if kind != KindUnavailable {
			g.logger.Warn("ai_provider_failed",
				zap.String("provider", g.generator.Name()),
				zap.String("kind", string(kind)),
				zap.String("request_id", ExtractRequestID(ctx)),
				zap.Error(err),
			)
		}
		return Result{Analysis: Fallback(text), Source: models.AnalysisSourceFallback, FailureKind: kind}
	}

	analysis, err := ParseAnalysis(raw)
	if err != nil {
		g.logger.Warn("ai_response_unparseable",
			zap.String("provider", g.generator.Name()),
			zap.Int("response_length", len(raw)),
			zap.String("request_id", ExtractRequestID(ctx)),
			zap.Error(err),
		)
		return Result{Analysis: Fallback(text), Source: models.AnalysisSourceFallback, FailureKind: KindMalformed}
	}

	// A provider-flagged crisis still gets the fixed resources.
	if analysis.Risk == models.RiskCrisis && len(analysis.CrisisResources) == 0 {
		analysis.CrisisResources = DefaultCrisisResources()
	}
	return Result{Analysis: analysis, Source: models.AnalysisSourceProvider}
}
