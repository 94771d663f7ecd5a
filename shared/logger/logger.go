package logger

import (
	"os"

	"github.com/rs/zerolog"
)

// New creates the root logger for a service. All components receive a
// *zerolog.Logger derived from it.
func New(service string) *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	logger := zerolog.New(os.Stderr).
		With().
		Timestamp().
		Str("service", service).
		Logger()

	return &logger
}
