// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LevelForVerbosity maps the -v count to a zerolog level.
func LevelForVerbosity(verbosity int) zerolog.Level {
	switch {
	case verbosity <= 0:
		return zerolog.WarnLevel
	case verbosity == 1:
		return zerolog.InfoLevel
	case verbosity == 2:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

// Setup configures the global logger. Output goes to w (stderr when nil)
// through a console writer; colour is disabled when noColor is set.
func Setup(verbosity int, w io.Writer, noColor bool) {
	if w == nil {
		w = os.Stderr
	}
	zerolog.SetGlobalLevel(LevelForVerbosity(verbosity))

	console := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.Kitchen,
		NoColor:    noColor,
	}
	logger := zerolog.New(console).With().Timestamp().Logger()
	if verbosity >= 2 {
		logger = logger.With().Caller().Logger()
	}
	log.Logger = logger

	log.Debug().Int("verbosity", verbosity).Msg("logger initialized")
}

// GetLogger returns a logger tagged with the component name.
func GetLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// LogOperationStart logs the start of an operation and returns a func that
// logs its completion with the elapsed time.
func LogOperationStart(logger zerolog.Logger, operation string) func() {
	start := time.Now()
	logger.Debug().Str("operation", operation).Msg("operation started")

	return func() {
		logger.Debug().
			Str("operation", operation).
			Dur("duration", time.Since(start)).
			Msg("operation completed")
	}
}
