// Package logger builds the service-wide zerolog logger.
package logger

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// New creates a logger for the given environment. Production environments
// emit JSON to stdout; dev gets a human console writer on stderr.
func New(level, env, service string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("parsing log level %q: %w", level, err)
	}

	var log zerolog.Logger
	switch env {
	case "prod", "staging":
		log = zerolog.New(os.Stdout)
	default:
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	}

	log = log.Level(lvl).With().
		Timestamp().
		Str("service", service).
		Str("env", env).
		Logger()

	return log, nil
}
