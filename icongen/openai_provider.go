// Package icongen implements icon set generation against a hosted
// text-to-image provider.
//
// openai_provider.go implements Provider for the OpenAI image API.
// Failures are converted into typed core errors at this boundary so
// retry and classification never have to re-parse message strings.
package icongen

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"

	"icon_backend/core"

	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements Provider for OpenAI image generation.
//
// Generation parameters are fixed: one output, square aspect ratio,
// PNG, and a size tuned to yield 512x512 pixels.
//
// Thread Safety: safe for concurrent use; the underlying client
// handles connection pooling.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider creates a provider from the application config.
//
// Returns an error if the API key is empty or the endpoint is a local
// endpoint, which cannot serve hosted image generation.
func NewOpenAIProvider(cfg *core.Config) (*OpenAIProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("icongen: config cannot be nil")
	}
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("icongen: OpenAI API key is required for image generation")
	}

	endpoint := cfg.ImageLLMURL
	if endpoint == "" {
		endpoint = "https://api.openai.com/v1"
	}
	if IsLocalEndpoint(endpoint) {
		return nil, fmt.Errorf("icongen: local endpoint (%s) does not support image generation; "+
			"configure IMAGE_LLM_URL to use a hosted provider", endpoint)
	}

	clientConfig := openai.DefaultConfig(cfg.OpenAIAPIKey)
	clientConfig.BaseURL = endpoint
	clientConfig.HTTPClient = core.GetHTTPClient(cfg, cfg.AITimeout)

	model := cfg.OpenAIImageModel
	if model == "" {
		model = openai.CreateImageModelDallE2
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
	}, nil
}

// Generate creates one 512x512 PNG image from the prompt and returns
// the response data slice for URL extraction.
func (p *OpenAIProvider) Generate(ctx context.Context, prompt string) (any, error) {
	if prompt == "" {
		return nil, fmt.Errorf("icongen: prompt cannot be empty")
	}

	req := openai.ImageRequest{
		Prompt:         prompt,
		Model:          p.model,
		N:              1,
		Size:           openai.CreateImageSize512x512,
		ResponseFormat: openai.CreateImageResponseFormatURL,
	}
	// DALL-E 3 only accepts quality/style parameters.
	if p.model == openai.CreateImageModelDallE3 {
		req.Quality = openai.CreateImageQualityHD
		req.Style = openai.CreateImageStyleVivid
	}

	response, err := p.client.CreateImage(ctx, req)
	if err != nil {
		return nil, wrapProviderError(err)
	}

	if len(response.Data) == 0 {
		return nil, &core.APIError{
			Status:  502,
			Code:    core.ErrCodeProviderError,
			Message: "provider returned no image data",
		}
	}

	return response.Data, nil
}

// Model returns the configured image model name.
func (p *OpenAIProvider) Model() string {
	return p.model
}

// wrapProviderError converts client and transport failures into typed
// core errors carrying status or network codes.
func wrapProviderError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		code := ""
		if apiErr.Code != nil {
			code = fmt.Sprintf("%v", apiErr.Code)
		}
		return &core.APIError{
			Status:  apiErr.HTTPStatusCode,
			Code:    code,
			Message: apiErr.Message,
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &core.APIError{
			Status:  reqErr.HTTPStatusCode,
			Message: reqErr.Error(),
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &core.NetworkError{Code: networkCodeFor(urlErr), Message: urlErr.Error()}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		code := ""
		if netErr.Timeout() {
			code = core.NetCodeTimeout
		}
		return &core.NetworkError{Code: code, Message: err.Error()}
	}

	return err
}

// networkCodeFor maps a transport error onto a network error code.
func networkCodeFor(err error) string {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return core.NetCodeConnectionRefused
	}
	if errors.Is(err, syscall.ECONNRESET) {
		return core.NetCodeConnectionReset
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return core.NetCodeHostNotFound
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return core.NetCodeTimeout
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "connection refused"):
		return core.NetCodeConnectionRefused
	case strings.Contains(msg, "connection reset"):
		return core.NetCodeConnectionReset
	case strings.Contains(msg, "no such host"):
		return core.NetCodeHostNotFound
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "timed out"):
		return core.NetCodeTimeout
	}
	return ""
}

// Ensure OpenAIProvider implements Provider at compile time.
var _ Provider = (*OpenAIProvider)(nil)
