package validation

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"icon_backend/icongen"
)

// ValidationResult represents the result of a configuration check.
type ValidationResult struct {
	Valid   bool
	Message string
	Error   error
}

// ConfigValidator composes validation atoms to check the environment
// before the service starts serving traffic.
type ConfigValidator struct {
	envPath string
}

// NewConfigValidator creates a new ConfigValidator with default settings.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{
		envPath: ".env",
	}
}

// WithEnvPath sets a custom path for the .env file.
func (v *ConfigValidator) WithEnvPath(path string) *ConfigValidator {
	v.envPath = path
	return v
}

// CheckEnvFile validates that the .env file exists. A missing file is
// acceptable when the API key is already present in the environment,
// e.g. under a process supervisor.
func (v *ConfigValidator) CheckEnvFile() ValidationResult {
	if err := CheckFileExists(v.envPath); err != nil {
		if os.Getenv("OPENAI_API_KEY") != "" {
			return ValidationResult{
				Valid:   true,
				Message: "No .env file; using environment variables",
			}
		}
		return ValidationResult{
			Valid:   false,
			Message: "Configuration file not found. Copy .env.example to .env and set OPENAI_API_KEY.",
			Error:   err,
		}
	}
	return ValidationResult{Valid: true, Message: "Found " + v.envPath}
}

// CheckAPIKey validates that the provider API key is configured.
func (v *ConfigValidator) CheckAPIKey() ValidationResult {
	key := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if key == "" {
		return ValidationResult{
			Valid:   false,
			Message: "OPENAI_API_KEY is not set",
			Error:   fmt.Errorf("OPENAI_API_KEY is required for image generation"),
		}
	}
	if !strings.HasPrefix(key, "sk-") {
		return ValidationResult{
			Valid:   true,
			Message: "API key set (does not look like an OpenAI key)",
		}
	}
	return ValidationResult{Valid: true, Message: "API key configured"}
}

// CheckEndpoint validates the image endpoint URL. An empty value is
// valid and falls back to the hosted default; a local endpoint is
// rejected because it cannot serve image generation.
func (v *ConfigValidator) CheckEndpoint() ValidationResult {
	endpoint := strings.TrimSpace(os.Getenv("IMAGE_LLM_URL"))
	if endpoint == "" {
		return ValidationResult{Valid: true, Message: "Using default hosted endpoint"}
	}

	if err := ValidateEndpointURL(endpoint); err != nil {
		return ValidationResult{
			Valid:   false,
			Message: "IMAGE_LLM_URL is not a valid URL",
			Error:   err,
		}
	}
	if icongen.IsLocalEndpoint(endpoint) {
		return ValidationResult{
			Valid:   false,
			Message: "IMAGE_LLM_URL points at a local endpoint",
			Error:   fmt.Errorf("local endpoints do not support image generation; use a hosted provider"),
		}
	}
	return ValidationResult{Valid: true, Message: endpoint}
}

// CheckPort validates the PORT variable when set.
func (v *ConfigValidator) CheckPort() ValidationResult {
	raw := strings.TrimSpace(os.Getenv("PORT"))
	if raw == "" {
		return ValidationResult{Valid: true, Message: "Using default port 8080"}
	}

	port, err := strconv.Atoi(raw)
	if err != nil || port < 1 || port > 65535 {
		return ValidationResult{
			Valid:   false,
			Message: fmt.Sprintf("PORT %q is not a valid port number", raw),
			Error:   fmt.Errorf("PORT must be an integer between 1 and 65535"),
		}
	}
	return ValidationResult{Valid: true, Message: "Port " + raw}
}

// CheckRetryConfig validates the retry tuning variables when set.
func (v *ConfigValidator) CheckRetryConfig() ValidationResult {
	if raw := strings.TrimSpace(os.Getenv("MAX_RETRIES")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return ValidationResult{
				Valid:   false,
				Message: fmt.Sprintf("MAX_RETRIES %q is invalid", raw),
				Error:   fmt.Errorf("MAX_RETRIES must be a positive integer"),
			}
		}
	}
	if raw := strings.TrimSpace(os.Getenv("RETRY_DELAY_MS")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return ValidationResult{
				Valid:   false,
				Message: fmt.Sprintf("RETRY_DELAY_MS %q is invalid", raw),
				Error:   fmt.Errorf("RETRY_DELAY_MS must be a positive integer"),
			}
		}
	}
	return ValidationResult{Valid: true, Message: "Retry configuration valid"}
}

// CheckStyles validates the style preset source. An empty STYLES_FILE
// is valid and uses the built-in presets; otherwise the file must load.
func (v *ConfigValidator) CheckStyles() ValidationResult {
	path := strings.TrimSpace(os.Getenv("STYLES_FILE"))
	if path == "" {
		return ValidationResult{
			Valid:   true,
			Message: fmt.Sprintf("Using %d built-in presets", len(icongen.NewStyleRegistry().Styles())),
		}
	}

	registry, err := icongen.NewStyleRegistryFromFile(path)
	if err != nil {
		return ValidationResult{
			Valid:   false,
			Message: "STYLES_FILE could not be loaded",
			Error:   err,
		}
	}
	return ValidationResult{
		Valid:   true,
		Message: fmt.Sprintf("Loaded %d presets from %s", len(registry.Styles()), path),
	}
}
