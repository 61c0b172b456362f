package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiGenerator calls the Gemini API through the genai SDK.
type GeminiGenerator struct {
	client *genai.Client
	model  string
	log    callLogger
}

// NewGeminiGenerator creates a Gemini-backed TextGenerator.
func NewGeminiGenerator(ctx context.Context, cfg ProviderConfig) (*GeminiGenerator, error) {
	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &GeminiGenerator{
		client: client,
		model:  model,
		log:    callLogger{logger: cfg.Logger, debug: cfg.DebugMode, provider: ProviderGemini, model: model},
	}, nil
}

func newGeminiFromConfig(ctx context.Context, cfg ProviderConfig) (TextGenerator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("GEMINI_API_KEY is required for the gemini provider")
	}
	return NewGeminiGenerator(ctx, cfg)
}

// Name implements TextGenerator.
func (g *GeminiGenerator) Name() string { return ProviderGemini }

// Generate implements TextGenerator.
func (g *GeminiGenerator) Generate(ctx context.Context, systemPrompt, userText string) (string, error) {
	temp := float32(0.4)
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       &temp,
		MaxOutputTokens:   1024,
		ResponseMIMEType:  "application/json",
	}
	contents := []*genai.Content{genai.NewContentFromText(userText, genai.RoleUser)}

	g.log.request(ctx, len(userText))
	start := time.Now()
	res, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	latency := time.Since(start)
	if err != nil {
		genErr := newGenerationError(ProviderGemini, geminiStatus(err), err)
		g.log.failure(ctx, genErr, latency)
		return "", genErr
	}

	text := res.Text()
	if strings.TrimSpace(text) == "" {
		genErr := &GenerationError{Kind: KindEmpty, Provider: ProviderGemini}
		g.log.failure(ctx, genErr, latency)
		return "", genErr
	}
	g.log.response(ctx, text, latency)
	return text, nil
}

// geminiStatus returns the HTTP status carried by a genai.APIError, or 0.
func geminiStatus(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code
	}
	return 0
}
