package observability

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// ServiceName tags every log line so immodash output can be told apart
// from the geocoder and database logs it is usually shipped with.
const ServiceName = "immodash"

// NewLogger returns the process logger writing to stdout.
// APP_ENV=dev (or development) uses a human-friendly console writer and
// defaults to debug; other environments emit JSON at info.
func NewLogger(env, level string) zerolog.Logger {
	return LoggerTo(os.Stdout, env, level)
}

// LoggerTo is NewLogger with an explicit sink. An unparsable level keeps the
// environment default.
func LoggerTo(w io.Writer, env, level string) zerolog.Logger {
	dev := env == "dev" || env == "development"
	if dev {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	lvl := zerolog.InfoLevel
	if dev {
		lvl = zerolog.DebugLevel
	}
	if l, err := zerolog.ParseLevel(level); err == nil && level != "" {
		lvl = l
	}
	return zerolog.New(w).Level(lvl).With().
		Timestamp().
		Str("service", ServiceName).
		Str("env", env).
		Logger()
}
