// Package logging configures the process-wide logrus logger used by every
// subsystem of this plugin. Logs are always written to stderr — stdout carries
// JSON-RPC responses and must never be polluted by log output.
package logging

import (
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Setup configures the global logrus logger's output and level. level is matched
// case-insensitively; an empty or unrecognized value defaults to Debug.
func Setup(level string) {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{
		DisableColors: true,
		FullTimestamp: true,
	})
	log.SetLevel(ResolveLevel(level))
}

// ResolveLevel maps a log-level directive onto a logrus.Level.
func ResolveLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "verbose":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "quiet", "silent":
		return log.FatalLevel
	default:
		return log.DebugLevel
	}
}
