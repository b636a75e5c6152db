package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitialiseLogger configures the global logger from LOG_LEVEL. Logs go to
// stderr; stdout carries the single monitoring status line.
func InitialiseLogger() error {
	return initialise(os.Stderr)
}

func initialise(w io.Writer) error {
	// Parse log level BEFORE creating the logger
	logLevel, ok := os.LookupEnv("LOG_LEVEL")
	if !ok {
		logLevel = "INFO"
	}

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		return err
	}

	// Set global level first
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	// Create logger with timestamp after level is set
	log.Logger = zerolog.New(w).With().Timestamp().Logger()

	return nil
}
