// Package logger provides modifications to charmbracelet/log's default logger to be used in various files/packages.
package logger

import (
	"os"

	"github.com/charmbracelet/log"
)

// New creates a prefixed charm log that respects the global log level.
// Output goes to stderr so server mode never mixes logs into the
// msgpack stream on stdout.
func New(prefix string) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          prefix,
		ReportCaller:    false,
		ReportTimestamp: false,
		Formatter:       log.TextFormatter,
		Level:           log.GetLevel(),
	})
}

// SetDebug flips the global level between debug and warn. Server mode
// stays at warn so stderr is quiet unless something goes wrong.
func SetDebug(enabled bool) {
	if enabled {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
		return
	}
	log.SetLevel(log.WarnLevel)
}
