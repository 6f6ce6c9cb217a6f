// Package hh2log provides the engine's pluggable leveled logger hook.
// It wraps github.com/rs/zerolog the way bugVanisher-streamer wires zerolog
// into its command tree: one process-wide logger, installed once, consulted
// by level before any formatting work happens.
package hh2log

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Level is one of the four severities the engine's logger hook accepts.
type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func (l Level) zerolog() zerolog.Level {
	switch l {
	case Debug:
		return zerolog.DebugLevel
	case Info:
		return zerolog.InfoLevel
	case Warn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// Logger is the engine-wide log hook. The zero value discards everything,
// matching a release build with logging compiled out.
type Logger struct {
	zl      zerolog.Logger
	enabled bool
}

// New builds a Logger writing to w at minLevel and above.
func New(w io.Writer, minLevel Level) *Logger {
	zerolog.SetGlobalLevel(minLevel.zerolog())
	return &Logger{
		zl:      zerolog.New(w).With().Timestamp().Logger(),
		enabled: true,
	}
}

// Discard is a Logger that drops every message; the engine's default.
func Discard() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// Default writes INFO and above to stderr.
func Default() *Logger {
	return New(os.Stderr, Info)
}

// Logf logs a formatted message at level, tagged with the given component
// tag (e.g. "FST", "IMG", "SPT", "SND" in the original engine's convention).
func (l *Logger) Logf(level Level, tag, format string, args ...interface{}) {
	if l == nil {
		return
	}

	var evt *zerolog.Event
	switch level {
	case Debug:
		evt = l.zl.Debug()
	case Info:
		evt = l.zl.Info()
	case Warn:
		evt = l.zl.Warn()
	default:
		evt = l.zl.Error()
	}

	evt.Str("component", tag).Msgf(format, args...)
}
