package ai

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"
)

// TextGenerator produces raw text from a system prompt and user text.
// Implementations return a *GenerationError on failure.
type TextGenerator interface {
	Name() string
	Generate(ctx context.Context, systemPrompt, userText string) (string, error)
}

// ProviderConfig carries the settings a provider factory may need.
type ProviderConfig struct {
	APIKey    string
	Model     string
	BaseURL   string
	Timeout   time.Duration
	Logger    *zap.Logger
	DebugMode bool
}

// ProviderFactory creates a TextGenerator.
type ProviderFactory func(ctx context.Context, cfg ProviderConfig) (TextGenerator, error)

// ProviderRegistry stores available text-generation providers by name.
type ProviderRegistry struct {
	providers map[string]ProviderFactory
}

// NewProviderRegistry creates an empty registry.
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]ProviderFactory),
	}
}

// NewDefaultRegistry returns a registry with the built-in providers.
func NewDefaultRegistry() *ProviderRegistry {
	r := NewProviderRegistry()
	r.Register(ProviderOpenAI, newOpenAIFromConfig)
	r.Register(ProviderGemini, newGeminiFromConfig)
	r.Register(ProviderAnthropic, newAnthropicFromConfig)
	r.Register(ProviderNone, func(context.Context, ProviderConfig) (TextGenerator, error) {
		return NullGenerator{}, nil
	})
	return r
}

// Register registers a provider factory, replacing any previous one.
func (r *ProviderRegistry) Register(name string, factory ProviderFactory) {
	r.providers[name] = factory
}

// GetProvider builds the named provider.
func (r *ProviderRegistry) GetProvider(ctx context.Context, name string, cfg ProviderConfig) (TextGenerator, error) {
	factory, ok := r.providers[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}
	return factory(ctx, cfg)
}

// Names returns the registered provider names in sorted order.
func (r *ProviderRegistry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for n := range r.providers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ErrProviderNotFound is returned when a provider is not registered.
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return "AI provider not found: " + e.Name
}

// Provider names.
const (
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderNone      = "none"
)

// NullGenerator is used when no provider is configured. It always fails
// with KindUnavailable so callers take the heuristic path.
type NullGenerator struct{}

// Name implements TextGenerator.
func (NullGenerator) Name() string { return ProviderNone }

// Generate implements TextGenerator.
func (NullGenerator) Generate(context.Context, string, string) (string, error) {
	return "", &GenerationError{Kind: KindUnavailable, Provider: ProviderNone}
}
