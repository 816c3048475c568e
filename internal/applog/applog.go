// Package applog configures expando's process-wide structured logger.
// It wraps github.com/rs/zerolog the way the teacher's own internal/app
// package wraps its hand-rolled logger: a small Config struct, a level
// parser, and a package-level accessor set once at startup — just built
// on zerolog's field-oriented, leveled event API instead of a
// from-scratch Writer.
package applog

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Level mirrors zerolog.Level but gives expando its own stable,
// documented vocabulary independent of the logging library's own naming.
type Level = zerolog.Level

// Level constants re-exported for callers that don't want to import
// zerolog directly just to set a log level.
const (
	LevelDebug = zerolog.DebugLevel
	LevelInfo  = zerolog.InfoLevel
	LevelWarn  = zerolog.WarnLevel
	LevelError = zerolog.ErrorLevel
)

// ParseLevel parses a case-insensitive level name, defaulting to Info
// for anything unrecognized rather than failing startup over a typo in
// a config file.
func ParseLevel(s string) Level {
	lvl, err := zerolog.ParseLevel(s)
	if err != nil {
		return LevelInfo
	}
	return lvl
}

// Config configures the process-wide logger.
type Config struct {
	// Level is the minimum level that will be written.
	Level Level
	// Output is where logs are written. Defaults to os.Stderr.
	Output io.Writer
	// Pretty enables zerolog's human-readable console writer instead of
	// raw JSON lines; useful for --console demo mode, noisy for a real
	// daemon whose logs get aggregated elsewhere.
	Pretty bool
}

// DefaultConfig returns expando's baseline logging configuration: JSON
// lines at Info level to stderr, the shape a process supervisor or log
// collector expects.
func DefaultConfig() Config {
	return Config{Level: LevelInfo, Output: os.Stderr}
}

// Init installs cfg as the global zerolog logger and returns it, so
// callers that want a scoped sub-logger (e.g. .With().Str(...).Logger())
// can build on the configured base instead of zerolog's package default.
func Init(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	logger := zerolog.New(out).With().Timestamp().Logger().Level(cfg.Level)
	log.Logger = logger
	return logger
}
