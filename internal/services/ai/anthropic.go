package ai

import (
	"context"
	"errors"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultAnthropicModel is used when no model is configured.
const DefaultAnthropicModel = "claude-3-5-haiku-latest"

// AnthropicGenerator calls the Messages API.
type AnthropicGenerator struct {
	client anthropic.Client
	model  string
	log    callLogger
}

// NewAnthropicGenerator creates an Anthropic-backed TextGenerator.
func NewAnthropicGenerator(cfg ProviderConfig) *AnthropicGenerator {
	model := cfg.Model
	if model == "" {
		model = DefaultAnthropicModel
	}
	opts := []anthropicoption.RequestOption{
		anthropicoption.WithAPIKey(cfg.APIKey),
		anthropicoption.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, anthropicoption.WithBaseURL(cfg.BaseURL))
	}
	return &AnthropicGenerator{
		client: anthropic.NewClient(opts...),
		model:  model,
		log:    callLogger{logger: cfg.Logger, debug: cfg.DebugMode, provider: ProviderAnthropic, model: model},
	}
}

func newAnthropicFromConfig(_ context.Context, cfg ProviderConfig) (TextGenerator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY is required for the anthropic provider")
	}
	return NewAnthropicGenerator(cfg), nil
}

// Name implements TextGenerator.
func (g *AnthropicGenerator) Name() string { return ProviderAnthropic }

// Generate implements TextGenerator.
func (g *AnthropicGenerator) Generate(ctx context.Context, systemPrompt, userText string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: 1024,
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userText)),
		},
	}

	g.log.request(ctx, len(userText))
	start := time.Now()
	msg, err := g.client.Messages.New(ctx, params)
	latency := time.Since(start)
	if err != nil {
		status := 0
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			status = apiErr.StatusCode
		}
		genErr := newGenerationError(ProviderAnthropic, status, err)
		g.log.failure(ctx, genErr, latency)
		return "", genErr
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	text := b.String()
	if strings.TrimSpace(text) == "" {
		genErr := &GenerationError{Kind: KindEmpty, Provider: ProviderAnthropic}
		g.log.failure(ctx, genErr, latency)
		return "", genErr
	}
	g.log.response(ctx, text, latency)
	return text, nil
}
