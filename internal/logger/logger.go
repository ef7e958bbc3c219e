// Package logger configures the process-wide zerolog logger.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init installs a JSON logger on stdout as the global logger and returns it.
func Init(service, level string) zerolog.Logger {
	return install(os.Stdout, service, level)
}

// Console installs a human-readable logger on stderr, for CLI tools.
func Console(service, level string) zerolog.Logger {
	return install(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}, service, level)
}

func install(w io.Writer, service, level string) zerolog.Logger {
	zerolog.SetGlobalLevel(ParseLevel(level))
	l := zerolog.New(w).With().Timestamp().Str("service", service).Logger()
	log.Logger = l
	return l
}

// ParseLevel maps a level name to a zerolog level; unknown names yield info.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
