package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// File rotation defaults.
const (
	// DefaultMaxSizeMB is the maximum log file size before rotation.
	DefaultMaxSizeMB = 50

	// DefaultMaxBackups is the number of rotated files to retain.
	DefaultMaxBackups = 5

	// DefaultMaxAgeDays is the maximum age of rotated files.
	DefaultMaxAgeDays = 30
)

// NewFileWriter returns a WriteSyncer that appends to path with
// automatic size-based rotation and gzip compression of rotated files.
// The parent directory is created if it does not exist.
func NewFileWriter(path string) (zapcore.WriteSyncer, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	logger := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    DefaultMaxSizeMB,
		MaxBackups: DefaultMaxBackups,
		MaxAge:     DefaultMaxAgeDays,
		Compress:   true,
	}

	return zapcore.AddSync(logger), nil
}
