// Package handlers provides the HTTP API for the icon generation
// backend. This file contains the API organism and its route handlers.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"icon_backend/core"
	"icon_backend/icongen"
	"icon_backend/logging"
	"icon_backend/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxRequestBody caps the generation request body size.
const maxRequestBody = 1 << 20

// IconSetGenerator produces a complete icon set for a validated request.
// *icongen.Orchestrator implements it.
type IconSetGenerator interface {
	GenerateIconSet(ctx context.Context, req *core.GenerationRequest, style *icongen.StylePreset) ([]core.GeneratedIcon, error)
}

// API is the organism serving the public HTTP endpoints.
//
// Endpoints:
//   - POST /api/generate-icons - generate a set of four icons
//   - GET  /api/styles         - list available style presets
//   - GET  /api/status         - service health and generation metrics
//   - GET  /api/validate-icon  - audit a generated image
//   - GET  /health             - liveness probe
type API struct {
	generator IconSetGenerator
	registry  *icongen.StyleRegistry
	store     *metrics.Store
	logger    *logging.Logger
	version   string
	validator *icongen.ImageValidator
}

// NewAPI creates the API organism.
func NewAPI(generator IconSetGenerator, registry *icongen.StyleRegistry, store *metrics.Store, logger *logging.Logger, version string) (*API, error) {
	if generator == nil {
		return nil, fmt.Errorf("handlers: generator cannot be nil")
	}
	if registry == nil {
		return nil, fmt.Errorf("handlers: style registry cannot be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("handlers: metrics store cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("handlers: logger cannot be nil")
	}

	return &API{
		generator: generator,
		registry:  registry,
		store:     store,
		logger:    logger.Named("api"),
		version:   version,
	}, nil
}

// WithValidator attaches an image validator, enabling the
// /api/validate-icon auditing endpoint.
func (a *API) WithValidator(validator *icongen.ImageValidator) *API {
	a.validator = validator
	return a
}

// Register attaches all API routes to the given mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/generate-icons", a.HandleGenerateIcons)
	mux.HandleFunc("/api/styles", a.HandleStyles)
	mux.HandleFunc("/api/status", a.HandleStatus)
	mux.HandleFunc("/api/validate-icon", a.HandleValidateIcon)
	mux.HandleFunc("/health", a.HandleHealth)
}

// HandleGenerateIcons handles POST /api/generate-icons requests.
//
// The request body carries a prompt, a style preset id, and optional
// brand colors. The response is either a complete set of four icons or
// a single classified error; partial sets are never returned.
func (a *API) HandleGenerateIcons(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorStatus(w, methodNotAllowed(http.MethodPost))
		return
	}

	var req core.GenerationRequest
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		msg := "Request body must be valid JSON."
		if errors.As(err, &maxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
			msg = "Request body is too large or truncated."
		}
		writeError(w, &core.ValidationError{Field: "body", Message: msg})
		return
	}

	if err := core.ValidateGenerationRequest(&req, a.registry.IDs()); err != nil {
		writeError(w, err)
		return
	}

	style, ok := a.registry.Find(req.StyleID)
	if !ok {
		writeError(w, &core.ValidationError{
			Field:   "style",
			Message: fmt.Sprintf("Unknown style %q.", req.StyleID),
		})
		return
	}

	requestID := uuid.NewString()
	log := a.logger.With(
		zap.String("request_id", requestID),
		zap.String("style", style.ID),
	)
	log.Info("generation request accepted",
		zap.Int("brand_colors", len(req.BrandColors)))

	start := time.Now()
	icons, err := a.generator.GenerateIconSet(r.Context(), &req, style)
	duration := time.Since(start)

	if err != nil {
		classified := core.Classify(err)
		a.store.Record(metrics.GenerationRecord{
			ID:            requestID,
			Style:         style.ID,
			Status:        metrics.StatusError,
			StartTime:     start,
			Duration:      duration,
			ErrorCategory: string(classified.Category),
		})
		log.Warn("generation request failed",
			zap.String("category", string(classified.Category)),
			zap.Duration("duration", duration),
			zap.Error(err))
		writeErrorStatus(w, classified)
		return
	}

	a.store.Record(metrics.GenerationRecord{
		ID:        requestID,
		Style:     style.ID,
		Status:    metrics.StatusSuccess,
		StartTime: start,
		Duration:  duration,
		IconCount: len(icons),
	})
	log.Info("generation request complete",
		zap.Int("icons", len(icons)),
		zap.Duration("duration", duration))

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Icons: icons})
}

// StylesResponse represents the JSON response for /api/styles.
type StylesResponse struct {
	Styles []*icongen.StylePreset `json:"styles"`
	Count  int                    `json:"count"`
}

// HandleStyles handles GET /api/styles requests.
func (a *API) HandleStyles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorStatus(w, methodNotAllowed(http.MethodGet))
		return
	}

	styles := a.registry.Styles()
	writeJSON(w, http.StatusOK, StylesResponse{Styles: styles, Count: len(styles)})
}

// StatusResponse represents the JSON response for /api/status.
type StatusResponse struct {
	Health     string                     `json:"health"`
	Version    string                     `json:"version"`
	Uptime     string                     `json:"uptime"`
	UptimeSecs float64                    `json:"uptime_secs"`
	LastCheck  time.Time                  `json:"last_check"`
	Metrics    metrics.GenerationMetrics  `json:"metrics"`
	Recent     []metrics.GenerationRecord `json:"recent"`
}

// HandleStatus handles GET /api/status requests.
// Query parameters:
//   - limit: number of recent records to include (default 20, max 100)
func (a *API) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorStatus(w, methodNotAllowed(http.MethodGet))
		return
	}

	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > 100 {
		limit = 100
	}

	status := a.store.SystemStatus()
	response := StatusResponse{
		Health:     status.Health,
		Version:    a.version,
		Uptime:     status.Uptime.Round(time.Second).String(),
		UptimeSecs: status.Uptime.Seconds(),
		LastCheck:  status.LastCheck,
		Metrics:    a.store.Metrics(),
		Recent:     a.store.Recent(limit),
	}

	writeJSON(w, http.StatusOK, response)
}

// ValidateIconResponse represents the JSON response for /api/validate-icon.
type ValidateIconResponse struct {
	URL             string `json:"url"`
	PNG             bool   `json:"png"`
	DimensionsMatch bool   `json:"dimensions_match"`
	Width           int    `json:"width"`
	Height          int    `json:"height"`
}

// HandleValidateIcon handles GET /api/validate-icon requests.
//
// This is an auditing endpoint: it re-downloads an already generated
// image and checks the PNG signature and IHDR dimensions. It is not
// part of the generation path. Query parameters:
//   - url: the image URL to audit (required)
//   - width, height: expected dimensions (default 512)
func (a *API) HandleValidateIcon(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorStatus(w, methodNotAllowed(http.MethodGet))
		return
	}
	if a.validator == nil {
		writeErrorStatus(w, core.ClassifiedError{
			Category:    core.CategoryServer,
			Message:     "Image validation is not enabled.",
			StatusCode:  http.StatusServiceUnavailable,
			Code:        "VALIDATOR_DISABLED",
			Recoverable: core.Recoverable(core.CategoryServer),
		})
		return
	}

	rawURL := r.URL.Query().Get("url")
	parsed, err := url.Parse(rawURL)
	if rawURL == "" || err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		writeError(w, &core.ValidationError{
			Field:   "url",
			Message: "Query parameter url must be an http(s) URL.",
		})
		return
	}

	width := queryInt(r, "width", 512)
	height := queryInt(r, "height", 512)

	isPNG, err := a.validator.ValidateFormat(r.Context(), rawURL)
	if err != nil {
		writeError(w, err)
		return
	}

	match := false
	if isPNG {
		match, err = a.validator.ValidateDimensions(r.Context(), rawURL, width, height)
		if err != nil {
			writeError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, ValidateIconResponse{
		URL:             rawURL,
		PNG:             isPNG,
		DimensionsMatch: match,
		Width:           width,
		Height:          height,
	})
}

// queryInt parses a positive integer query parameter, falling back to a
// default.
func queryInt(r *http.Request, key string, defaultValue int) int {
	if raw := r.URL.Query().Get(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
	}
	return defaultValue
}

// HandleHealth handles GET /health liveness probes.
func (a *API) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorStatus(w, methodNotAllowed(http.MethodGet))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
