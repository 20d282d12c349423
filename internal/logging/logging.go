// Package logging builds the structured loggers shared by the adapters and
// the CLI.
//
// Basic usage:
//
//	logger, err := logging.New(os.Stderr, "debug")
//	if err != nil {
//	    return err
//	}
//	tar := exectar.New(exectar.WithLogger(logger))
package logging

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultLevel is used when no level is configured.
const DefaultLevel = "warn"

// ErrInvalidLevel is returned when an invalid log level string is provided.
var ErrInvalidLevel = errors.New("invalid log level")

// ParseLevel parses a level name. The empty string means DefaultLevel.
func ParseLevel(s string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DebugLevel, nil
	case "info":
		return log.InfoLevel, nil
	case "", "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	default:
		return log.WarnLevel, fmt.Errorf("%w: %s", ErrInvalidLevel, s)
	}
}

// New returns a logger writing to w at the given level.
func New(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Prefix:          "tarwrap",
	}), nil
}

// Discard returns a logger that writes nothing. Components use it until a
// real logger is injected.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

// Component derives a sub-logger whose prefix names the component.
func Component(l *log.Logger, name string) *log.Logger {
	if l == nil {
		l = Discard()
	}
	prefix := name
	if p := l.GetPrefix(); p != "" {
		prefix = p + "/" + name
	}
	return l.WithPrefix(prefix)
}
