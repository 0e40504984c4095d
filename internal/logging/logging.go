// Package logging builds the process logger. Output goes to stderr unless a
// file or writer is configured; stdout belongs to the result adapter.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// DefaultLevel is used when Config.Level is empty or unknown
const DefaultLevel = zerolog.WarnLevel

// Logger wraps zerolog.Logger with the file it may own
type Logger struct {
	zerolog.Logger
	file *os.File
}

// Config holds logger configuration
type Config struct {
	Level  string    // trace, debug, info, warn, error
	Pretty bool      // human readable console format
	File   string    // append to this file instead of Output
	Output io.Writer // default os.Stderr
}

// New creates a new logger
func New(cfg Config) (*Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = DefaultLevel
	}

	var writer io.Writer = os.Stderr
	if cfg.Output != nil {
		writer = cfg.Output
	}

	var file *os.File
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		file, err = os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		writer = file
	}

	if cfg.Pretty && file == nil {
		writer = zerolog.ConsoleWriter{Out: writer, TimeFormat: time.RFC3339}
	}

	logger := zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Logger()

	return &Logger{Logger: logger, file: file}, nil
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	return &Logger{Logger: zerolog.Nop()}
}

// Close closes the log file, if any
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
