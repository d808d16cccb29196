// Package icongen implements icon set generation against a hosted
// text-to-image provider.
//
// orchestrator.go implements the Orchestrator organism: a 4-way
// concurrent fan-out over GenerationClient with strict all-or-nothing
// aggregation.
package icongen

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"icon_backend/core"
	"icon_backend/logging"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// IconsPerSet is the fixed number of icons generated per request.
const IconsPerSet = 4

// Orchestrator fans out identical-parameter generation calls and
// aggregates the outcome under an all-or-nothing policy: a request
// either yields a complete set or a single aggregate failure. Partial
// results are never delivered.
type Orchestrator struct {
	client *GenerationClient
	logger *logging.Logger
}

// NewOrchestrator creates an orchestrator over the given client.
func NewOrchestrator(client *GenerationClient, logger *logging.Logger) (*Orchestrator, error) {
	if client == nil {
		return nil, fmt.Errorf("icongen: client cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("icongen: logger cannot be nil")
	}

	return &Orchestrator{
		client: client,
		logger: logger.Named("orchestrator"),
	}, nil
}

// GenerateIconSet launches exactly IconsPerSet concurrent generation
// calls sharing the same prompt, style preset, and brand colors, and
// waits for every call to settle. A failure in one call does not cancel
// the others; each runs to its own completion or retry exhaustion.
//
// On full success the returned icons share identical prompt and style
// and differ only in id, url, and timestamp. On any shortfall all
// successful results are discarded and a single aggregate error is
// returned.
func (o *Orchestrator) GenerateIconSet(ctx context.Context, req *core.GenerationRequest, style *StylePreset) ([]core.GeneratedIcon, error) {
	if req == nil {
		return nil, fmt.Errorf("icongen: request cannot be nil")
	}
	if style == nil {
		return nil, fmt.Errorf("icongen: style cannot be nil")
	}

	log := o.logger.With(
		zap.String("style", style.ID),
		zap.String("prompt_preview", truncateText(req.Prompt, 50)),
	)
	log.Info("starting icon set generation", zap.Int("count", IconsPerSet))

	urls := make([]string, IconsPerSet)
	errs := make([]error, IconsPerSet)

	var wg sync.WaitGroup
	for i := 0; i < IconsPerSet; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			urls[i], errs[i] = o.client.GenerateIcon(ctx, req.Prompt, style, req.BrandColors)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	var failures []string
	for i, err := range errs {
		if err != nil {
			failures = append(failures, fmt.Sprintf("icon %d: %v", i+1, err))
		} else {
			succeeded++
		}
	}

	if succeeded < IconsPerSet {
		log.Warn("icon set incomplete, discarding partial results",
			zap.Int("succeeded", succeeded),
			zap.Int("failed", IconsPerSet-succeeded))
		return nil, &core.APIError{
			Status: http.StatusInternalServerError,
			Code:   core.ErrCodeGenerationFailed,
			Message: fmt.Sprintf(
				"Failed to generate complete icon set. Generated %d out of %d icons. Errors: %s",
				succeeded, IconsPerSet, strings.Join(failures, "; ")),
		}
	}

	now := time.Now().UnixMilli()
	icons := make([]core.GeneratedIcon, IconsPerSet)
	for i, url := range urls {
		icons[i] = core.GeneratedIcon{
			ID:          uuid.NewString(),
			URL:         url,
			Prompt:      req.Prompt,
			Style:       style.ID,
			GeneratedAt: now,
		}
	}

	log.Info("icon set generated", zap.Int("count", IconsPerSet))
	return icons, nil
}
