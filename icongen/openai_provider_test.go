package icongen

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"syscall"
	"testing"
	"time"

	"icon_backend/core"

	"github.com/sashabaranov/go-openai"
)

func providerConfig(endpoint string) *core.Config {
	return &core.Config{
		OpenAIAPIKey: "sk-test",
		ImageLLMURL:  endpoint,
		AITimeout:    5 * time.Second,
	}
}

// TestNewOpenAIProvider_RequiresKey tests rejection of a missing key.
func TestNewOpenAIProvider_RequiresKey(t *testing.T) {
	if _, err := NewOpenAIProvider(&core.Config{}); err == nil {
		t.Error("expected error for missing API key")
	}
	if _, err := NewOpenAIProvider(nil); err == nil {
		t.Error("expected error for nil config")
	}
}

// TestNewOpenAIProvider_RejectsLocalEndpoint tests that local model
// endpoints are refused for image generation.
func TestNewOpenAIProvider_RejectsLocalEndpoint(t *testing.T) {
	cfg := providerConfig("http://localhost:11434/v1")
	if _, err := NewOpenAIProvider(cfg); err == nil {
		t.Error("expected error for local endpoint")
	}
}

// TestNewOpenAIProvider_DefaultModel tests the model fallback.
func TestNewOpenAIProvider_DefaultModel(t *testing.T) {
	p, err := NewOpenAIProvider(providerConfig("https://api.openai.com/v1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Model() != openai.CreateImageModelDallE2 {
		t.Errorf("expected default model %s, got %s", openai.CreateImageModelDallE2, p.Model())
	}
}

// TestOpenAIProvider_Generate tests a successful round trip against a
// stubbed API endpoint.
func TestOpenAIProvider_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/images/generations" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"created":1700000000,"data":[{"url":"https://img.example/result.png"}]}`)
	}))
	defer server.Close()

	p, err := NewOpenAIProvider(providerConfig(server.URL + "/v1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw, err := p.Generate(context.Background(), "a rocket icon")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := ExtractImageURL(raw)
	if err != nil {
		t.Fatalf("extraction failed: %v", err)
	}
	if got != "https://img.example/result.png" {
		t.Errorf("expected stubbed url, got %q", got)
	}
}

// TestOpenAIProvider_GenerateEmptyPrompt tests prompt validation.
func TestOpenAIProvider_GenerateEmptyPrompt(t *testing.T) {
	p, err := NewOpenAIProvider(providerConfig("https://api.openai.com/v1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.Generate(context.Background(), ""); err == nil {
		t.Error("expected error for empty prompt")
	}
}

// TestOpenAIProvider_GenerateAuthFailure tests that an upstream 401 is
// surfaced as a typed error carrying the status.
func TestOpenAIProvider_GenerateAuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`)
	}))
	defer server.Close()

	p, err := NewOpenAIProvider(providerConfig(server.URL + "/v1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = p.Generate(context.Background(), "a rocket icon")
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var apiErr *core.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected core.APIError, got %T: %v", err, err)
	}
	if apiErr.Status != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", apiErr.Status)
	}
}

// TestOpenAIProvider_GenerateEmptyData tests the provider error for a
// response carrying no images.
func TestOpenAIProvider_GenerateEmptyData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"created":1700000000,"data":[]}`)
	}))
	defer server.Close()

	p, err := NewOpenAIProvider(providerConfig(server.URL + "/v1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = p.Generate(context.Background(), "a rocket icon")
	var apiErr *core.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected core.APIError, got %T: %v", err, err)
	}
	if apiErr.Code != core.ErrCodeProviderError {
		t.Errorf("expected code %s, got %s", core.ErrCodeProviderError, apiErr.Code)
	}
}

// TestWrapProviderError tests the transport-to-typed-error mapping.
func TestWrapProviderError(t *testing.T) {
	t.Run("openai api error", func(t *testing.T) {
		wrapped := wrapProviderError(&openai.APIError{HTTPStatusCode: 429, Message: "rate limited"})
		var apiErr *core.APIError
		if !errors.As(wrapped, &apiErr) {
			t.Fatalf("expected core.APIError, got %T", wrapped)
		}
		if apiErr.Status != 429 || apiErr.Message != "rate limited" {
			t.Errorf("unexpected mapping: %+v", apiErr)
		}
	})

	t.Run("connection refused", func(t *testing.T) {
		wrapped := wrapProviderError(&url.Error{Op: "Post", URL: "https://x", Err: syscall.ECONNREFUSED})
		var netErr *core.NetworkError
		if !errors.As(wrapped, &netErr) {
			t.Fatalf("expected core.NetworkError, got %T", wrapped)
		}
		if netErr.Code != core.NetCodeConnectionRefused {
			t.Errorf("expected %s, got %s", core.NetCodeConnectionRefused, netErr.Code)
		}
	})

	t.Run("dns failure", func(t *testing.T) {
		wrapped := wrapProviderError(&url.Error{Op: "Post", URL: "https://x", Err: &net.DNSError{Err: "no such host", Name: "x"}})
		var netErr *core.NetworkError
		if !errors.As(wrapped, &netErr) {
			t.Fatalf("expected core.NetworkError, got %T", wrapped)
		}
		if netErr.Code != core.NetCodeHostNotFound {
			t.Errorf("expected %s, got %s", core.NetCodeHostNotFound, netErr.Code)
		}
	})

	t.Run("nil", func(t *testing.T) {
		if wrapProviderError(nil) != nil {
			t.Error("expected nil passthrough")
		}
	})
}
