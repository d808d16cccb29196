// Package main wires the icon generation backend together.
//
// server.go builds the HTTP server from configuration: style registry,
// provider, generation client, orchestrator, metrics, and middleware.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"icon_backend/core"
	"icon_backend/handlers"
	"icon_backend/icongen"
	"icon_backend/logging"
	"icon_backend/metrics"

	"go.uber.org/zap"
)

// shutdownTimeout bounds graceful shutdown of in-flight requests.
const shutdownTimeout = 15 * time.Second

// application holds the assembled service.
type application struct {
	cfg    *core.Config
	logger *logging.Logger
	server *http.Server
}

// newApplication assembles the full request path from configuration.
func newApplication(cfg *core.Config, logger *logging.Logger) (*application, error) {
	registry, err := buildStyleRegistry(cfg)
	if err != nil {
		return nil, err
	}

	provider, err := icongen.NewOpenAIProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create image provider: %w", err)
	}

	policy := icongen.RetryPolicy{
		MaxRetries:   cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
	}
	client, err := icongen.NewGenerationClient(provider, policy, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation client: %w", err)
	}

	orchestrator, err := icongen.NewOrchestrator(client, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create orchestrator: %w", err)
	}

	store := metrics.NewStore(metrics.StoreConfig{
		HistoryCapacity: 100,
		Version:         core.GetVersion(),
	}, time.Now())

	api, err := handlers.NewAPI(orchestrator, registry, store, logger, core.GetVersion())
	if err != nil {
		return nil, fmt.Errorf("failed to create API: %w", err)
	}

	downloader := icongen.NewDownloader(core.GetHTTPClient(cfg, cfg.FetchTimeout))
	validator, err := icongen.NewImageValidator(downloader, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create image validator: %w", err)
	}
	api = api.WithValidator(validator)

	// The API routes sit behind the password middleware; the liveness
	// probe stays open so supervisors can always reach it.
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("/api/generate-icons", api.HandleGenerateIcons)
	apiMux.HandleFunc("/api/styles", api.HandleStyles)
	apiMux.HandleFunc("/api/status", api.HandleStatus)
	apiMux.HandleFunc("/api/validate-icon", api.HandleValidateIcon)

	auth := handlers.NewAuthMiddleware(cfg.APIPasswordHash, logger)

	root := http.NewServeMux()
	root.Handle("/api/", auth.Handler(apiMux))
	root.HandleFunc("/health", api.HandleHealth)

	handler := handlers.Chain(root,
		handlers.NewLoggingMiddleware(logger, "/health").Handler,
		handlers.NewCORSMiddleware(cfg.CORSAllowedOrigin).Handler,
	)

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// Generation requests can legitimately take minutes.
		WriteTimeout: cfg.AITimeout + 30*time.Second,
	}

	return &application{
		cfg:    cfg,
		logger: logger,
		server: server,
	}, nil
}

// buildStyleRegistry loads style presets from the configured file, or
// the built-in set when no file is configured.
func buildStyleRegistry(cfg *core.Config) (*icongen.StyleRegistry, error) {
	if cfg.StylesFile == "" {
		return icongen.NewStyleRegistry(), nil
	}

	registry, err := icongen.NewStyleRegistryFromFile(cfg.StylesFile)
	if err != nil {
		return nil, core.ErrStylesFile(cfg.StylesFile, err.Error())
	}
	return registry, nil
}

// run serves HTTP until the context is cancelled, then shuts down
// gracefully.
func (a *application) run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("HTTP server listening",
			zap.String("addr", a.server.Addr),
			zap.String("version", core.GetVersionInfo()))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down", zap.Duration("grace", shutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	a.logger.Info("shutdown complete")
	return nil
}
