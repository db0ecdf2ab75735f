// Package obs sets up the process-wide zerolog logger.
package obs

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init sets the global level and output. An unparsable level falls back to info.
func Init(level string, out io.Writer) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	logLevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	if out == nil {
		out = os.Stderr
	}
	if os.Getenv("ENV") == "dev" {
		out = zerolog.ConsoleWriter{Out: out, NoColor: true}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}

// OpenFile opens (or creates) an append-only log file
func OpenFile(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

// Logger returns a logger tagged with the given component name
func Logger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}
