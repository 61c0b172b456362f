package ai

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

const (
	// DefaultOpenAIModel is used when no model is configured.
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultOpenAIBaseURL is the public OpenAI API.
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout bounds the underlying HTTP client.
	DefaultTimeout = 30 * time.Second
)

// OpenAIGenerator calls the Chat Completions API in JSON object mode.
type OpenAIGenerator struct {
	client openai.Client
	model  string
	log    callLogger
}

// NewOpenAIGenerator creates an OpenAI-backed TextGenerator.
func NewOpenAIGenerator(cfg ProviderConfig) *OpenAIGenerator {
	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
		option.WithMaxRetries(0),
	)

	return &OpenAIGenerator{
		client: client,
		model:  model,
		log:    callLogger{logger: cfg.Logger, debug: cfg.DebugMode, provider: ProviderOpenAI, model: model},
	}
}

func newOpenAIFromConfig(_ context.Context, cfg ProviderConfig) (TextGenerator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OPENAI_API_KEY is required for the openai provider")
	}
	return NewOpenAIGenerator(cfg), nil
}

// Name implements TextGenerator.
func (g *OpenAIGenerator) Name() string { return ProviderOpenAI }

// Generate implements TextGenerator.
func (g *OpenAIGenerator) Generate(ctx context.Context, systemPrompt, userText string) (string, error) {
	req := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userText),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}

	g.log.request(ctx, len(userText))
	start := time.Now()
	resp, err := g.client.Chat.Completions.New(ctx, req)
	latency := time.Since(start)
	if err != nil {
		status := 0
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			status = apiErr.StatusCode
		}
		genErr := newGenerationError(ProviderOpenAI, status, err)
		g.log.failure(ctx, genErr, latency)
		return "", genErr
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		genErr := &GenerationError{Kind: KindEmpty, Provider: ProviderOpenAI}
		g.log.failure(ctx, genErr, latency)
		return "", genErr
	}

	content := resp.Choices[0].Message.Content
	g.log.response(ctx, content, latency)
	return content, nil
}
