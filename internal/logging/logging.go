package logging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// RunLogName returns the file name of a run log started at t, for example
// vidauth_verify_run_20260412_093000.log.
func RunLogName(mode string, t time.Time) string {
	return "vidauth_" + mode + "_run_" + t.Format("20060102_150405") + ".log"
}

// Setup opens a run log in logDir and returns a logger writing text
// records to it. With noLog set nothing is created and every record is
// dropped.
func Setup(logDir, mode string, verbose, noLog bool) (*Logger, error) {
	if noLog {
		return Discard(), nil
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", logDir, err)
	}

	path := filepath.Join(logDir, RunLogName(mode, time.Now()))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file %s: %w", path, err)
	}

	opts := &slog.HandlerOptions{Level: LevelInfo}
	if verbose {
		opts.Level = LevelDebug
	}
	l := &Logger{Logger: slog.New(slog.NewTextHandler(f, opts)), file: f, filePath: path}
	l.Info("vidauth starting", "mode", mode, "pid", os.Getpid(), "debug", verbose)
	return l, nil
}

// Close closes the run log. It is safe on nil and discarding loggers.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// FilePath returns the run log path, or "" when not logging to a file.
func (l *Logger) FilePath() string {
	if l == nil {
		return ""
	}
	return l.filePath
}
