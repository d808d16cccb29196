package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"icon_backend/core"
	"icon_backend/logging"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Use fmt here since logger isn't initialized yet
		fmt.Printf("Warning: .env file not found: %v\n", err)
	}

	isDevelopment := os.Getenv("DEV_MODE") == "true"
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "icon_backend.log"
	}

	logger, err := logging.NewLogger(isDevelopment, logFile)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(core.ExitCodeError)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Printf("Failed to sync logger: %v\n", syncErr)
		}
	}()

	// Service management commands (install/uninstall/start/stop/...)
	// exit before the server ever starts.
	if HandleServiceCommand(os.Args) {
		return
	}

	logger.Info("Icon generation backend starting",
		zap.String("version", core.GetVersionInfo()))

	exitCode := runStartupValidation(logger)
	if exitCode != core.ExitCodeSuccess {
		os.Exit(exitCode)
	}

	config, err := core.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Info("Configuration loaded",
		zap.String("endpoint", config.ImageLLMURL),
		zap.String("model", config.OpenAIImageModel),
		zap.String("host", config.Host),
		zap.Int("port", config.Port),
		zap.Int("max_retries", config.MaxRetries),
		zap.Duration("retry_delay", config.RetryDelay),
		zap.Duration("ai_timeout", config.AITimeout),
		zap.Duration("fetch_timeout", config.FetchTimeout),
		zap.Bool("auth_enabled", config.APIPasswordHash != ""),
		zap.Bool("allow_self_signed_certs", config.AllowSelfSignedCerts),
		zap.Bool("dev_mode", isDevelopment),
	)

	app, err := newApplication(config, logger)
	if err != nil {
		logger.Fatal("Failed to assemble application", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Track which signal arrived so the exit code reflects it.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	exit := core.ExitCodeSuccess
	go func() {
		sig := <-sigChan
		logger.Info("Received signal, shutting down", zap.String("signal", sig.String()))
		switch sig {
		case syscall.SIGTERM:
			exit = core.ExitCodeSIGTERM
		default:
			exit = core.ExitCodeSIGINT
		}
		cancel()
	}()

	if runErr := app.run(ctx); runErr != nil {
		logger.Error("Server exited with error", zap.Error(runErr))
		exit = core.ExitCodeError
	}

	logger.Info("Goodbye!")
	if syncErr := logger.Sync(); syncErr != nil {
		fmt.Printf("Failed to sync logger: %v\n", syncErr)
	}
	os.Exit(exit)
}
