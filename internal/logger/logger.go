package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ytakada1021/video-convert-aws-lambda/internal/config"
)

// New creates the process logger. Lambda output stays JSON so CloudWatch
// Logs Insights can query fields; the dev server asks for console output.
func New(cfg *config.Config, service string) zerolog.Logger {
	return build(os.Stdout, cfg.LogLevel, cfg.LogFormat, service, cfg.Sentry.Environment)
}

func build(out io.Writer, level, format, service, environment string) zerolog.Logger {
	if strings.EqualFold(format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).
		With().
		Timestamp().
		Str("service", service).
		Str("environment", environment).
		Logger().
		Level(parseLevel(level))
}

func parseLevel(raw string) zerolog.Level {
	if raw == "" {
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(raw))
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}
