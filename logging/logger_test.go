package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// TestNewLogger_CreatesLogFile tests that the file core writes to disk.
func TestNewLogger_CreatesLogFile(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "app.log")

	logger, err := NewLogger(false, logPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logger.Info("startup complete", zap.Int("port", 8080))
	logger.Sync()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "startup complete") {
		t.Errorf("expected log entry in file, got %q", string(data))
	}
}

// TestNewLogger_NoFile tests console-only operation with an empty path.
func TestNewLogger_NoFile(t *testing.T) {
	logger, err := NewLogger(true, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	logger.Debug("console only")
}

// TestLogger_RedactsSensitiveFields tests that field redaction is applied
// before output.
func TestLogger_RedactsSensitiveFields(t *testing.T) {
	core, observed := observer.New(zap.DebugLevel)
	logger := NewLoggerFromZap(zap.New(core))

	logger.Info("configured provider",
		zap.String("api_key", "sk-secretsecretsecretsecret1234"),
		zap.String("model", "dall-e-2"))

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["api_key"] != RedactedPlaceholder {
		t.Errorf("expected redacted api_key, got %v", fields["api_key"])
	}
	if fields["model"] != "dall-e-2" {
		t.Errorf("expected model untouched, got %v", fields["model"])
	}
}

// TestLogger_Named tests that named loggers carry the name segment.
func TestLogger_Named(t *testing.T) {
	core, observed := observer.New(zap.DebugLevel)
	logger := NewLoggerFromZap(zap.New(core)).Named("orchestrator")

	logger.Info("fan-out started")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].LoggerName != "orchestrator" {
		t.Errorf("expected logger name orchestrator, got %q", entries[0].LoggerName)
	}
}

// TestLogger_SyncNil tests that Sync on a nil logger is safe.
func TestLogger_SyncNil(t *testing.T) {
	var logger *Logger
	if err := logger.Sync(); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}
