// Package logging provides structured logging built on zerolog. Loggers are
// carried on a context.Context so that library code can pick up the caller's
// logger without threading it through every signature.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config controls logger construction.
type Config struct {
	// Level is a zerolog level name ("trace", "debug", "info", "warn",
	// "error"). Empty or unparseable levels fall back to "info".
	Level string
	// Format selects the encoder: "json" or "console".
	Format string
	// Output selects the sink: "stderr", "stdout" or "file".
	Output string
	// File is the log file path, used when Output is "file".
	File string
	// Caller adds the caller file:line to each event.
	Caller bool
}

const (
	FormatJSON    = "json"
	FormatConsole = "console"

	OutputStderr = "stderr"
	OutputStdout = "stdout"
	OutputFile   = "file"
)

//nolint:gochecknoglobals // package default logger, replaced via SetDefault
var (
	defaultMu     sync.RWMutex
	defaultLogger = newConsoleLogger(zerolog.InfoLevel)
)

// New builds a logger from cfg. Invalid format or output values are
// reported as errors rather than silently ignored; an unparseable level
// falls back to info.
func New(cfg Config) (zerolog.Logger, error) {
	level := parseLevel(cfg.Level)

	var out io.Writer
	switch cfg.Output {
	case OutputStderr, "":
		out = os.Stderr
	case OutputStdout:
		out = os.Stdout
	case OutputFile:
		if cfg.File == "" {
			return zerolog.Nop(), fmt.Errorf("log output %q requires a file path", OutputFile)
		}
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("opening log file: %w", err)
		}
		out = f
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log output %q", cfg.Output)
	}

	switch cfg.Format {
	case FormatConsole, "":
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	case FormatJSON:
		// raw writer
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q", cfg.Format)
	}

	lctx := zerolog.New(out).Level(level).With().Timestamp()
	if cfg.Caller {
		lctx = lctx.Caller()
	}
	return lctx.Logger(), nil
}

// Default returns the package default logger. It is used by FromContext
// when the context does not carry a logger.
func Default() zerolog.Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefault replaces the package default logger.
func SetDefault(logger zerolog.Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = logger
}

// WithContext returns a copy of ctx carrying logger, for retrieval with
// FromContext further down the call chain.
func WithContext(ctx context.Context, logger zerolog.Logger) context.Context {
	return logger.WithContext(ctx)
}

// FromContext returns the logger attached to ctx via WithContext, or the
// package default when ctx carries none.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
			return l
		}
	}
	l := Default()
	return &l
}

// ComponentLogger tags logger with a component name. Sub-systems use the
// component field to make interleaved output filterable.
func ComponentLogger(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}

func parseLevel(s string) zerolog.Level {
	if s == "" {
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

func newConsoleLogger(level zerolog.Level) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().
		Timestamp().
		Logger()
}
