// Package processing runs store and verify over batches of files.
package processing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/five82/vidauth/internal/baseline"
	"github.com/five82/vidauth/internal/engine"
	vaerrors "github.com/five82/vidauth/internal/errors"
	"github.com/five82/vidauth/internal/report"
	"github.com/five82/vidauth/internal/reporter"
	"github.com/five82/vidauth/internal/util"
)

// Mode names a batch operation.
type Mode string

const (
	ModeStore  Mode = "store"
	ModeVerify Mode = "verify"
)

// staleTempAge is how old an abandoned pending output must be before a
// batch removes it.
const staleTempAge = 24 * time.Hour

// FileResult contains the outcome of one file in a batch.
type FileResult struct {
	File     string
	Duration time.Duration
	Stored   *engine.StoreResult
	Verdict  *engine.VerdictReport
	Err      error
}

// Outcome returns a short description of the result for summaries.
func (r FileResult) Outcome() string {
	switch {
	case r.Err != nil:
		return "failed: " + errorTitle(r.Err)
	case r.Verdict != nil:
		return string(r.Verdict.Verdict)
	case r.Stored != nil:
		return "stored as " + r.Stored.ID.String()
	default:
		return "skipped"
	}
}

// BatchResult contains every file outcome and where reports were written.
type BatchResult struct {
	Mode       Mode
	Files      []FileResult
	ReportPath string
	CSVPath    string
	Duration   time.Duration
}

// Succeeded returns the number of files that completed without error.
func (b *BatchResult) Succeeded() int {
	n := 0
	for _, f := range b.Files {
		if f.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the number of files that ended in an error.
func (b *BatchResult) Failed() int {
	return len(b.Files) - b.Succeeded()
}

// Tampered returns the number of TAMPERED verdicts.
func (b *BatchResult) Tampered() int {
	n := 0
	for _, f := range b.Files {
		if f.Verdict != nil && !f.Verdict.Authentic() {
			n++
		}
	}
	return n
}

// Runner executes batches against one engine.
type Runner struct {
	engine   *engine.Engine
	reporter reporter.Reporter
	logger   *slog.Logger
}

// NewRunner creates a batch runner. nil reporter and logger discard output.
func NewRunner(eng *engine.Engine, rep reporter.Reporter, logger *slog.Logger) *Runner {
	if rep == nil {
		rep = reporter.NullReporter{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{engine: eng, reporter: rep, logger: logger}
}

// StoreVideos seals each file and records its baseline. The store is loaded
// once and saved after every file, so a failure part way through keeps the
// baselines already recorded.
func (r *Runner) StoreVideos(ctx context.Context, files []string) (*BatchResult, error) {
	return r.run(ctx, ModeStore, files, func(ctx context.Context, s *baseline.Store, path string, fr *FileResult) error {
		res, err := r.engine.StoreWith(ctx, s, path)
		fr.Stored = res
		return err
	}, nil)
}

// VerifyVideos verifies each file against the store and writes the batch
// report. Files without a baseline are reported and skipped.
func (r *Runner) VerifyVideos(ctx context.Context, files []string) (*BatchResult, error) {
	rpt := report.New()
	return r.run(ctx, ModeVerify, files, func(ctx context.Context, s *baseline.Store, path string, fr *FileResult) error {
		v, err := r.engine.VerifyWith(ctx, s, path)
		if err != nil {
			return err
		}
		fr.Verdict = v
		rpt.Add(v)
		return nil
	}, func(b *BatchResult) error {
		return r.writeReports(rpt, b)
	})
}

type fileFunc func(ctx context.Context, s *baseline.Store, path string, fr *FileResult) error

func (r *Runner) run(ctx context.Context, mode Mode, files []string, each fileFunc, finish func(*BatchResult) error) (*BatchResult, error) {
	if len(files) == 0 {
		return nil, vaerrors.NewNoFilesFoundError("the given inputs")
	}
	cfg := r.engine.Config()
	start := time.Now()
	batch := &BatchResult{Mode: mode}

	sysInfo := util.GetSystemInfo()
	hw := reporter.HardwareSummary{
		Hostname: sysInfo.Hostname,
		OS:       sysInfo.OS,
		Arch:     sysInfo.Arch,
		NumCPU:   sysInfo.NumCPU,
	}
	if sysInfo.MemoryBytes > 0 {
		hw.Memory = util.FormatBytes(sysInfo.MemoryBytes) + " available"
	}
	r.reporter.Hardware(hw)

	if mode == ModeStore {
		r.prepareOutputDir(cfg.OutputDir, cfg.GetTempDir(), "."+cfg.Watermark.OutputPrefix)
	}

	s, err := r.engine.LoadStore()
	if err != nil {
		return nil, err
	}
	r.logger.Info("batch started", "mode", mode, "files", len(files), "store", s.Path(), "records", s.Len())

	if len(files) > 1 {
		names := make([]string, len(files))
		for i, f := range files {
			names[i] = filepath.Base(f)
		}
		r.reporter.BatchStarted(reporter.BatchStartInfo{
			Mode:       string(mode),
			TotalFiles: len(files),
			FileList:   names,
			OutputDir:  cfg.OutputDir,
		})
	}

	var cancelled bool
	for i, path := range files {
		if ctx.Err() != nil {
			r.reporter.Warning(fmt.Sprintf("Batch cancelled after %d of %d files", i, len(files)))
			r.logger.Warn("batch cancelled", "completed", i, "total", len(files))
			cancelled = true
			break
		}

		if len(files) > 1 {
			r.reporter.FileProgress(reporter.FileProgressContext{CurrentFile: i + 1, TotalFiles: len(files)})
		}

		fileStart := time.Now()
		fr := FileResult{File: path}
		if err := each(ctx, s, path, &fr); err != nil {
			fr.Err = err
			r.reportFileError(path, err)
		}
		fr.Duration = time.Since(fileStart)
		batch.Files = append(batch.Files, fr)
	}

	if finish != nil {
		if err := finish(batch); err != nil {
			return batch, err
		}
	}
	batch.Duration = time.Since(start)
	r.summarize(batch, len(files))

	if cancelled {
		return batch, vaerrors.NewCancelledError()
	}
	return batch, nil
}

// prepareOutputDir removes pending outputs abandoned by interrupted runs and
// warns when the output volume is low on space.
func (r *Runner) prepareOutputDir(dir, tempDir, pendingPrefix string) {
	if removed, err := util.CleanupStaleTempFiles(tempDir, pendingPrefix, staleTempAge); err != nil {
		r.logger.Warn("stale pending file cleanup failed", "dir", tempDir, "error", err)
	} else if removed > 0 {
		r.logger.Info("removed stale pending outputs", "dir", tempDir, "count", removed)
	}
	if util.IsDir(dir) {
		util.CheckDiskSpace(dir, func(format string, args ...any) {
			msg := fmt.Sprintf(format, args...)
			r.logger.Warn(msg)
			r.reporter.Warning(msg)
		})
	}
}

func (r *Runner) writeReports(rpt *report.Report, b *BatchResult) error {
	if rpt.Len() == 0 {
		r.logger.Info("no verdicts, report not written")
		return nil
	}
	cfg := r.engine.Config()

	b.ReportPath = cfg.GetReportPath()
	if err := rpt.WriteJSON(b.ReportPath); err != nil {
		return err
	}
	r.logger.Info("verification report written", "path", b.ReportPath, "entries", rpt.Len())

	if cfg.Report.CSVPath != "" {
		b.CSVPath = cfg.Report.CSVPath
		if err := rpt.WriteCSV(b.CSVPath); err != nil {
			return err
		}
		r.logger.Info("CSV report written", "path", b.CSVPath)
	}
	return nil
}

func (r *Runner) reportFileError(path string, err error) {
	filename := filepath.Base(path)
	r.logger.Error("file failed", "file", filename, "error", err)
	r.reporter.Error(reporter.ReporterError{
		Title:      errorTitle(err),
		Message:    err.Error(),
		Context:    fmt.Sprintf("File: %s", path),
		Suggestion: errorSuggestion(err),
	})
}

func (r *Runner) summarize(b *BatchResult, total int) {
	succeeded := b.Succeeded()
	switch {
	case succeeded == 0:
		r.reporter.Warning(fmt.Sprintf("No files were successfully processed (%s)", b.Mode))
	case total == 1 && b.Mode == ModeStore:
		r.reporter.OperationComplete(b.Files[0].Stored.Message())
	case total == 1:
		r.reporter.OperationComplete(fmt.Sprintf("Verification complete: %s", b.Files[0].Verdict.Verdict))
	default:
		results := make([]reporter.FileResult, len(b.Files))
		for i, f := range b.Files {
			results[i] = reporter.FileResult{Filename: filepath.Base(f.File), Outcome: f.Outcome()}
		}
		r.reporter.BatchComplete(reporter.BatchSummary{
			Mode:            string(b.Mode),
			SuccessfulCount: succeeded,
			TotalFiles:      total,
			AuthenticCount:  succeeded - b.Tampered() - storedCount(b),
			TamperedCount:   b.Tampered(),
			FailedCount:     b.Failed(),
			TotalDuration:   b.Duration,
			ReportPath:      b.ReportPath,
			FileResults:     results,
		})
	}
	r.logger.Info("batch complete", "mode", b.Mode, "succeeded", succeeded, "failed", b.Failed(), "tampered", b.Tampered())
}

func storedCount(b *BatchResult) int {
	n := 0
	for _, f := range b.Files {
		if f.Stored != nil && f.Err == nil {
			n++
		}
	}
	return n
}

func errorTitle(err error) string {
	var core *vaerrors.CoreError
	if errors.As(err, &core) {
		return core.Kind.String()
	}
	return "Error"
}

func errorSuggestion(err error) string {
	switch {
	case vaerrors.IsNoBaseline(err):
		return "Run store on the original video first"
	case vaerrors.IsKind(err, vaerrors.KindUnidentifiableVideo):
		return "Include the video ID digits in the filename, e.g. 042_unedited.mp4"
	case vaerrors.IsKind(err, vaerrors.KindPayloadTooLarge):
		return "Use a shorter watermark template"
	case vaerrors.IsKind(err, vaerrors.KindCommand):
		return "Check that ffmpeg, ffprobe and mediainfo are installed"
	default:
		return ""
	}
}
