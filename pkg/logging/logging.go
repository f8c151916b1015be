package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a zerolog logger pre-configured with app and component metadata.
// An unparseable level falls back to info.
func New(appName, component, env, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).
		Level(lvl).
		With().
		Timestamp().
		Str("app", appName).
		Str("component", component).
		Str("env", env).
		Logger()

	return logger
}
