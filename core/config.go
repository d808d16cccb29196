// Package core provides shared types, configuration, and error handling
// for the icon generation backend.
//
// config.go loads configuration from environment variables with sensible
// defaults. The .env file itself is loaded by main via godotenv before
// LoadConfig is called.
package core

import (
	"crypto/tls"
	"net/http"
	"os"
	"time"
)

// Config holds all configuration values.
type Config struct {
	// Provider configuration
	OpenAIAPIKey     string // API key for the image provider (required)
	ImageLLMURL      string // Override endpoint for image generation
	OpenAIImageModel string // Image model identifier (default: dall-e-2)

	// Server configuration
	Host              string
	Port              int
	APIPasswordHash   string // Optional bcrypt hash guarding the API
	CORSAllowedOrigin string // Origin allowed by the CORS middleware

	// Generation configuration
	MaxRetries   int           // Retry attempts per generation call
	RetryDelay   time.Duration // Initial backoff delay
	AITimeout    time.Duration // Per-request timeout against the provider
	FetchTimeout time.Duration // Timeout for downloading generated images

	// Style presets
	StylesFile string // Optional YAML file overriding built-in presets

	// Transport
	AllowSelfSignedCerts bool

	// Logging
	DevMode bool
	LogFile string
}

// LoadConfig loads configuration from environment variables.
// Values not present in the environment fall back to defaults.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		ImageLLMURL:      GetEnvOrDefault("IMAGE_LLM_URL", "https://api.openai.com/v1"),
		OpenAIImageModel: GetEnvOrDefault("OPENAI_IMAGE_MODEL", "dall-e-2"),

		Host:              GetEnvOrDefault("HOST", "0.0.0.0"),
		Port:              ParseIntEnv("PORT", 8080),
		APIPasswordHash:   os.Getenv("API_PASSWORD_HASH"),
		CORSAllowedOrigin: GetEnvOrDefault("CORS_ALLOWED_ORIGIN", "*"),

		MaxRetries:   ParseIntEnv("MAX_RETRIES", 3),
		RetryDelay:   ParseMillisEnv("RETRY_DELAY_MS", time.Second),
		AITimeout:    ParseMillisEnv("AI_TIMEOUT_MS", 120*time.Second),
		FetchTimeout: ParseMillisEnv("FETCH_TIMEOUT_MS", 60*time.Second),

		StylesFile: os.Getenv("STYLES_FILE"),

		AllowSelfSignedCerts: ParseBoolEnv("ALLOW_SELF_SIGNED_CERTS", false),

		DevMode: ParseBoolEnv("DEV_MODE", false),
		LogFile: GetEnvOrDefault("LOG_FILE", "icon_backend.log"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values that would prevent startup.
func (c *Config) Validate() error {
	if c.OpenAIAPIKey == "" {
		return ErrMissingAuth()
	}
	if c.Port < 1 || c.Port > 65535 {
		return ErrInvalidPort(c.Port)
	}
	if c.MaxRetries < 1 {
		return ErrInvalidRetry("MAX_RETRIES must be at least 1")
	}
	if c.RetryDelay <= 0 {
		return ErrInvalidRetry("RETRY_DELAY_MS must be positive")
	}
	return nil
}

// GetHTTPClient returns an HTTP client honoring the TLS configuration.
func GetHTTPClient(cfg *Config, timeout time.Duration) *http.Client {
	client := &http.Client{
		Timeout: timeout,
	}

	if cfg != nil && cfg.AllowSelfSignedCerts {
		client.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	return client
}

// GetDefaultHTTPClient returns an HTTP client with a 30 second timeout.
func GetDefaultHTTPClient(cfg *Config) *http.Client {
	return GetHTTPClient(cfg, 30*time.Second)
}
