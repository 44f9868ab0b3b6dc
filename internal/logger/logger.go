// Package logger configures the zerolog logger used for diagnostic output.
//
// Diagnostic logs go to stderr so that stdout stays reserved for command
// results (tables, JSON); scripts piping dockhand output are never polluted
// by log lines.
package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Setup builds the process logger. levelStr is one of zerolog's level
// names ("debug", "info", ...); unparseable values fall back to info.
// When verbose is true, the level is forced down to debug regardless of
// the configured level.
func Setup(levelStr string, verbose bool) zerolog.Logger {
	consoleWriter := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
	}

	level, err := zerolog.ParseLevel(strings.ToLower(levelStr))
	if err != nil {
		level = zerolog.InfoLevel
	}
	if verbose && level > zerolog.DebugLevel {
		level = zerolog.DebugLevel
	}

	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	return zerolog.New(consoleWriter).
		With().
		Timestamp().
		Logger()
}
