package models

import "time"

// Config keys stored in the ratelimit_config and cors_config tables.
const (
	DefaultConfigKey = "default"
	// AIConfigKey limits the endpoints that call a text-generation provider.
	AIConfigKey = "ai"
)

// RatelimitConfig is a stored rate in ulule limiter notation ("5-S", "100-M").
type RatelimitConfig struct {
	ConfigKey string    `json:"config_key"`
	Rate      string    `json:"rate"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CorsConfig is the stored CORS policy. AllowedOrigins is comma-separated.
type CorsConfig struct {
	ConfigKey        string    `json:"config_key"`
	AllowedOrigins   string    `json:"allowed_origins"`
	AllowCredentials bool      `json:"allow_credentials"`
	MaxAge           int       `json:"max_age"`
	UpdatedAt        time.Time `json:"updated_at"`
}
