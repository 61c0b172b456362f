package ai

import (
	"context"

	"github.com/benvon/mindful-harmony/internal/config"
	"go.uber.org/zap"
)

// ProviderConfigFor maps application config onto the named provider's settings.
func ProviderConfigFor(cfg *config.Config, logger *zap.Logger, debugMode bool) ProviderConfig {
	pc := ProviderConfig{Timeout: cfg.AITimeout, Logger: logger, DebugMode: debugMode}
	switch cfg.AIProvider {
	case ProviderOpenAI:
		pc.APIKey, pc.Model, pc.BaseURL = cfg.OpenAIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL
	case ProviderGemini:
		pc.APIKey, pc.Model = cfg.GeminiKey, cfg.GeminiModel
	case ProviderAnthropic:
		pc.APIKey, pc.Model = cfg.AnthropicKey, cfg.AnthropicModel
	}
	return pc
}

// NewGuardFromConfig builds a Guard for cfg.AIProvider. A provider that
// cannot be constructed is logged and replaced by NullGenerator, so the
// service still answers with heuristic analyses.
func NewGuardFromConfig(ctx context.Context, registry *ProviderRegistry, cfg *config.Config, logger *zap.Logger, debugMode bool) *Guard {
	pc := ProviderConfigFor(cfg, logger, debugMode)
	gen, err := registry.GetProvider(ctx, cfg.AIProvider, pc)
	if err != nil {
		logger.Error("ai_provider_unavailable",
			zap.String("provider", cfg.AIProvider),
			zap.Error(err),
		)
		gen = NullGenerator{}
	} else {
		logger.Info("ai_provider_configured",
			zap.String("provider", gen.Name()),
			zap.String("model", pc.Model),
			zap.String("api_key", SanitizeAPIKey(pc.APIKey)),
			zap.Duration("timeout", cfg.AITimeout),
		)
	}
	return NewGuard(gen, cfg.AITimeout, logger)
}
