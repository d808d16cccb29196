// Package icongen implements icon set generation against a hosted
// text-to-image provider.
//
// client.go implements the GenerationClient molecule: one icon per
// call, with the prompt built once and the provider call retried on
// transient failures.
package icongen

import (
	"context"
	"fmt"

	"icon_backend/core"
	"icon_backend/logging"

	"go.uber.org/zap"
)

// GenerationClient generates a single icon per call.
//
// Thread Safety: stateless aside from the immutable retry policy; a
// single client may serve concurrent calls without synchronization.
type GenerationClient struct {
	provider Provider
	policy   RetryPolicy
	sleep    Sleeper
	logger   *logging.Logger
}

// NewGenerationClient creates a client with the given provider and
// retry policy. The wall clock is used for backoff delays.
func NewGenerationClient(provider Provider, policy RetryPolicy, logger *logging.Logger) (*GenerationClient, error) {
	return NewGenerationClientWithSleeper(provider, policy, nil, logger)
}

// NewGenerationClientWithSleeper creates a client with an explicit
// sleeper, letting tests drive backoff timing deterministically.
// A nil sleeper uses the wall clock.
func NewGenerationClientWithSleeper(provider Provider, policy RetryPolicy, sleep Sleeper, logger *logging.Logger) (*GenerationClient, error) {
	if provider == nil {
		return nil, fmt.Errorf("icongen: provider cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("icongen: logger cannot be nil")
	}

	return &GenerationClient{
		provider: provider,
		policy:   policy.withDefaults(),
		sleep:    sleep,
		logger:   logger.Named("client"),
	}, nil
}

// Policy returns the client's retry policy.
func (c *GenerationClient) Policy() RetryPolicy {
	return c.policy
}

// GenerateIcon builds the full prompt once, then calls the provider
// inside the retry loop, reusing the same prompt across attempts.
// Returns the URL of the generated image.
func (c *GenerationClient) GenerateIcon(ctx context.Context, userPrompt string, style *StylePreset, brandColors []string) (string, error) {
	fullPrompt, err := BuildPrompt(userPrompt, style, brandColors)
	if err != nil {
		return "", err
	}

	log := c.logger.With(zap.String("style", style.ID))
	log.Debug("generating icon", zap.String("prompt_preview", truncateText(fullPrompt, 80)))

	var imageURL string
	attempt := 0
	err = ExecuteWithRetry(ctx, c.policy, c.sleep, func() error {
		attempt++
		raw, genErr := c.provider.Generate(ctx, fullPrompt)
		if genErr != nil {
			log.Warn("generation attempt failed",
				zap.Int("attempt", attempt),
				zap.Error(genErr))
			return fmt.Errorf("icongen: image generation failed: %w", genErr)
		}

		url, extractErr := ExtractImageURL(raw)
		if extractErr != nil {
			log.Warn("response extraction failed",
				zap.Int("attempt", attempt),
				zap.Error(extractErr))
			return extractErr
		}

		imageURL = url
		return nil
	})
	if err != nil {
		return "", err
	}

	log.Debug("icon generated", zap.String("url", truncateText(imageURL, 100)))
	return imageURL, nil
}

// Ensure typed core errors satisfy the retry interfaces at compile time.
var (
	_ statusCoded = (*core.APIError)(nil)
	_ netCoded    = (*core.NetworkError)(nil)
)
