package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Supported values for AI_PROVIDER.
const (
	AIProviderOpenAI    = "openai"
	AIProviderGemini    = "gemini"
	AIProviderAnthropic = "anthropic"
	AIProviderNone      = "none"
)

// Config holds application configuration
type Config struct {
	DatabaseURL      string
	ServerPort       string
	BaseURL          string
	FrontendURL      string
	Environment      string
	EnableHSTS       bool
	RedisURL         string
	RabbitMQURL      string
	RabbitMQPrefetch int
	WorkerDebugMode  bool
	ServerDebugMode  bool
	OTELEnabled      bool
	OTELEndpoint     string
	OTELServiceName  string
	RequestTimeout   time.Duration

	JWTSecret string
	JWTIssuer string
	JWTTTL    time.Duration
	// JWTSecretEphemeral is set when JWT_SECRET was empty outside
	// production and a random per-process secret was generated.
	JWTSecretEphemeral bool

	CatalogPath string

	AIProvider      string
	AITimeout       time.Duration
	OpenAIKey       string
	OpenAIModel     string
	OpenAIBaseURL   string
	GeminiKey       string
	GeminiModel     string
	AnthropicKey    string
	AnthropicModel  string

	SpotifyClientID     string
	SpotifyClientSecret string
	SpotifyAPIURL       string
	SpotifyTokenURL     string

	SpeechCredentialsFile string
	SpeechLanguage        string

	DLQRetention           time.Duration
	DLQGCInterval          time.Duration
	ReanalyzeSweepInterval time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		BaseURL:          getEnv("BASE_URL", "http://localhost:8080"),
		FrontendURL:      getEnv("FRONTEND_URL", "http://localhost:3000"),
		Environment:      getEnv("ENVIRONMENT", "development"),
		EnableHSTS:       getEnvBool("ENABLE_HSTS", false),
		RedisURL:         getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RabbitMQURL:      getEnv("RABBITMQ_URL", ""),
		RabbitMQPrefetch: getEnvInt("RABBITMQ_PREFETCH", 1),
		WorkerDebugMode:  getEnvBool("WORKER_DEBUG_MODE", false),
		ServerDebugMode:  getEnvBool("SERVER_DEBUG_MODE", false),
		OTELEnabled:      getEnvBool("ENABLE_OTEL", false),
		OTELEndpoint:     getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTELServiceName:  getEnv("OTEL_SERVICE_NAME", "mindful-harmony"),
		RequestTimeout:   getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "mindful-harmony"),
		JWTTTL:    getEnvDuration("JWT_TTL", 24*time.Hour),

		CatalogPath: getEnv("CATALOG_PATH", "seed/activities.yaml"),

		AIProvider:     strings.ToLower(getEnv("AI_PROVIDER", AIProviderNone)),
		AITimeout:      getEnvDuration("AI_TIMEOUT", 15*time.Second),
		OpenAIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:  getEnv("OPENAI_BASE_URL", ""),
		GeminiKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		AnthropicKey:   getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel: getEnv("ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),

		SpotifyClientID:     getEnv("SPOTIFY_CLIENT_ID", ""),
		SpotifyClientSecret: getEnv("SPOTIFY_CLIENT_SECRET", ""),
		SpotifyAPIURL:       getEnv("SPOTIFY_API_URL", "https://api.spotify.com/v1"),
		SpotifyTokenURL:     getEnv("SPOTIFY_TOKEN_URL", "https://accounts.spotify.com/api/token"),

		SpeechCredentialsFile: getEnv("SPEECH_CREDENTIALS_FILE", ""),
		SpeechLanguage:        getEnv("SPEECH_LANGUAGE", "en-US"),

		DLQRetention:           getEnvDuration("DLQ_RETENTION", 7*24*time.Hour),
		DLQGCInterval:          getEnvDuration("DLQ_GC_INTERVAL", time.Hour),
		ReanalyzeSweepInterval: getEnvDuration("REANALYZE_SWEEP_INTERVAL", 6*time.Hour),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return nil, fmt.Errorf("generating JWT secret: %w", err)
		}
		cfg.JWTSecret = secret
		cfg.JWTSecretEphemeral = true
	}

	return cfg, nil
}

// Validate checks cross-field constraints that defaults cannot express.
func (c *Config) Validate() error {
	switch c.AIProvider {
	case AIProviderOpenAI, AIProviderGemini, AIProviderAnthropic, AIProviderNone:
	default:
		return fmt.Errorf("unsupported AI_PROVIDER %q (want openai, gemini, anthropic or none)", c.AIProvider)
	}
	if c.IsProduction() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	if c.AITimeout <= 0 {
		return fmt.Errorf("AI_TIMEOUT must be positive")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	// The guard must give up on the provider and fall back before the
	// request deadline answers 503.
	if c.AITimeout >= c.RequestTimeout {
		return fmt.Errorf("AI_TIMEOUT (%s) must be shorter than REQUEST_TIMEOUT (%s)", c.AITimeout, c.RequestTimeout)
	}
	return nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// IsProduction reports whether ENVIRONMENT is production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// SpotifyConfigured reports whether both client credentials are set.
func (c *Config) SpotifyConfigured() bool {
	return c.SpotifyClientID != "" && c.SpotifyClientSecret != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
