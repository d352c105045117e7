package reporter

import (
	"context"
	"log/slog"
)

// AuditReporter records outcomes in a run log. Progress and cosmetic
// events are ignored.
type AuditReporter struct {
	NullReporter
	log *slog.Logger
}

// NewAuditReporter returns a reporter writing to log. A nil log yields nil
// so NewCompositeReporter drops it.
func NewAuditReporter(log *slog.Logger) Reporter {
	if log == nil {
		return nil
	}
	return &AuditReporter{log: log}
}

func (a *AuditReporter) BaselineStored(o StoreOutcome) {
	a.log.Info("baseline stored",
		"video_id", o.VideoID,
		"input", o.InputFile,
		"output", o.OutputFile,
		"watermark", o.Watermark,
		"hash_algorithm", o.HashAlgorithm,
		"hash", o.Hash,
		"subject", o.Subject)
}

func (a *AuditReporter) VerdictComplete(s VerdictSummary) {
	attrs := []any{"video_id", s.VideoID, "input", s.InputFile, "verdict", s.Verdict}
	for _, step := range s.Steps {
		attrs = append(attrs, slog.Group(step.Name, "passed", step.Passed, "details", step.Details))
	}
	if len(s.MetadataDiff) > 0 {
		attrs = append(attrs, "changed_fields", s.MetadataDiff)
	}
	level := slog.LevelInfo
	if !s.Authentic {
		level = slog.LevelWarn
	}
	a.log.Log(context.Background(), level, "verdict", attrs...)
}

func (a *AuditReporter) WatermarkExtracted(s ExtractionSummary) {
	a.log.Info("watermark extracted", "input", s.InputFile, "text", s.Text, "max_chars", s.MaxChars)
}

func (a *AuditReporter) Warning(msg string) {
	a.log.Warn(msg)
}

func (a *AuditReporter) Error(e ReporterError) {
	a.log.Error(e.Title, "message", e.Message, "context", e.Context)
}

func (a *AuditReporter) BatchComplete(s BatchSummary) {
	a.log.Info("batch complete",
		"mode", s.Mode,
		"succeeded", s.SuccessfulCount,
		"failed", s.FailedCount,
		"total", s.TotalFiles,
		"authentic", s.AuthenticCount,
		"tampered", s.TamperedCount,
		"duration", s.TotalDuration,
		"report", s.ReportPath)
}
