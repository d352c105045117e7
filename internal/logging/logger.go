// Package logging provides structured logging for vidauth runs.
package logging

import (
	"log/slog"
	"os"
)

// Level aliases for slog levels.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Logger wraps slog.Logger and, for run logs, the file it writes to.
type Logger struct {
	*slog.Logger
	file     *os.File
	filePath string
}

// Discard returns a logger that drops every record.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.DiscardHandler)}
}

// Slog returns the underlying slog.Logger. A nil Logger yields a
// discarding logger so callers never need a nil check.
func (l *Logger) Slog() *slog.Logger {
	if l == nil || l.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return l.Logger
}
