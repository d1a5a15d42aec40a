// Package sysutil wires process-level logging for the server binary.
package sysutil

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ConfigureLogging applies the configured level to the global zerolog state
// and, when pretty is set, swaps the default JSON output for a console
// writer. Meant to run once at startup, before the first log line.
func ConfigureLogging(level string, pretty bool) {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(ParseLevel(level))
	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

// ParseLevel maps a config string to a zerolog level, case-insensitively.
// "warning" is accepted as an alias for warn; empty or unrecognized values
// mean info, so a typo in LOG_LEVEL never silences the logs.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	default:
		return zerolog.InfoLevel
	}
}
