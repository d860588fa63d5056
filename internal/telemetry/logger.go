// Where: internal/telemetry/logger.go
// What: Structured logger construction.
// Why: Share one zerolog setup across commands and components.
package telemetry

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the root logger for the process.
// format is "console" or "json"; level is a zerolog level name ("debug",
// "info", ...). Unknown values fall back to console/info.
func NewLogger(out io.Writer, level, format string) zerolog.Logger {
	writer := out
	if strings.ToLower(strings.TrimSpace(format)) != "json" {
		writer = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.Kitchen,
		}
	}

	logger := zerolog.New(writer).With().Timestamp().Logger()
	return logger.Level(parseLevel(level))
}

// Component returns a child logger tagged with a component name.
func Component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}

func parseLevel(level string) zerolog.Level {
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || parsed == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return parsed
}
