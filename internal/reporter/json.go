package reporter

import (
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"
)

// event is one line of JSON output. emit adds the type and timestamp keys.
type event map[string]any

// JSONReporter writes one JSON object per line for machine consumers.
// Embed progress is thinned to whole-percent steps or one line every
// progressInterval, whichever comes first.
type JSONReporter struct {
	mu      sync.Mutex
	enc     *json.Encoder
	verbose bool

	lastPercent  int
	lastProgress time.Time
}

const progressInterval = 5 * time.Second

// NewJSONReporter returns a reporter writing to stdout.
func NewJSONReporter() *JSONReporter {
	return NewJSONReporterWithWriter(os.Stdout)
}

// NewJSONReporterWithWriter returns a reporter writing to w.
func NewJSONReporterWithWriter(w io.Writer) *JSONReporter {
	return &JSONReporter{enc: json.NewEncoder(w), lastPercent: -1}
}

// SetVerbose enables verbose events.
func (r *JSONReporter) SetVerbose(verbose bool) {
	r.mu.Lock()
	r.verbose = verbose
	r.mu.Unlock()
}

func (r *JSONReporter) emit(kind string, e event) {
	if e == nil {
		e = event{}
	}
	e["type"] = kind
	e["timestamp"] = time.Now().Unix()

	r.mu.Lock()
	defer r.mu.Unlock()
	_ = r.enc.Encode(e)
}

// progressDue reports whether a progress line for percent should be
// written now and records it if so.
func (r *JSONReporter) progressDue(percent float32) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	step := int(percent)
	due := step > r.lastPercent || percent >= 99 ||
		r.lastProgress.IsZero() || now.Sub(r.lastProgress) >= progressInterval
	if !due {
		return false
	}
	r.lastPercent = max(r.lastPercent, step)
	r.lastProgress = now
	return true
}

func (r *JSONReporter) Hardware(summary HardwareSummary) {
	r.emit("hardware", event{
		"hostname": summary.Hostname,
		"os":       summary.OS,
		"arch":     summary.Arch,
		"num_cpu":  summary.NumCPU,
		"memory":   summary.Memory,
	})
}

func (r *JSONReporter) VideoInfo(summary VideoInfoSummary) {
	r.emit("video_info", event{
		"mode":        summary.Mode,
		"input_file":  summary.InputFile,
		"output_file": summary.OutputFile,
		"video_id":    summary.VideoID,
		"resolution":  summary.Resolution,
		"frame_rate":  summary.FrameRate,
		"duration":    summary.Duration,
		"audio":       summary.Audio,
	})
}

func (r *JSONReporter) StageProgress(update StageProgress) {
	e := event{
		"stage":   update.Stage,
		"percent": update.Percent,
		"message": update.Message,
	}
	if update.ETA != nil {
		e["eta_seconds"] = int64(update.ETA.Seconds())
	}
	r.emit("stage_progress", e)
}

func (r *JSONReporter) EmbedStarted(totalFrames uint64) {
	r.mu.Lock()
	r.lastPercent = -1
	r.lastProgress = time.Time{}
	r.mu.Unlock()

	r.emit("embed_started", event{"total_frames": totalFrames})
}

func (r *JSONReporter) EmbedProgress(progress ProgressSnapshot) {
	if !r.progressDue(progress.Percent) {
		return
	}
	r.emit("embed_progress", event{
		"stage":         "embedding",
		"current_frame": progress.CurrentFrame,
		"total_frames":  progress.TotalFrames,
		"percent":       progress.Percent,
		"fps":           progress.FPS,
		"eta_seconds":   int64(progress.ETA.Seconds()),
	})
}

func (r *JSONReporter) BaselineStored(outcome StoreOutcome) {
	r.emit("baseline_stored", event{
		"input_file":       outcome.InputFile,
		"output_file":      outcome.OutputFile,
		"video_id":         outcome.VideoID,
		"watermark":        outcome.Watermark,
		"hash":             outcome.Hash,
		"hash_algorithm":   outcome.HashAlgorithm,
		"record_subject":   outcome.Subject,
		"store_path":       outcome.StorePath,
		"duration_seconds": int64(outcome.TotalTime.Seconds()),
	})
}

func (r *JSONReporter) VerdictComplete(summary VerdictSummary) {
	steps := make([]event, len(summary.Steps))
	for i, step := range summary.Steps {
		steps[i] = event{
			"step":    step.Name,
			"passed":  step.Passed,
			"details": step.Details,
		}
	}

	diff := summary.MetadataDiff
	if diff == nil {
		diff = []string{}
	}

	r.emit("verdict_complete", event{
		"input_file":    summary.InputFile,
		"video_id":      summary.VideoID,
		"verdict":       summary.Verdict,
		"authentic":     summary.Authentic,
		"signals":       steps,
		"metadata_diff": diff,
	})
}

func (r *JSONReporter) WatermarkExtracted(summary ExtractionSummary) {
	r.emit("watermark_extracted", event{
		"input_file": summary.InputFile,
		"text":       summary.Text,
		"max_chars":  summary.MaxChars,
	})
}

func (r *JSONReporter) Warning(message string) {
	r.emit("warning", event{
		"message": message,
	})
}

func (r *JSONReporter) Error(err ReporterError) {
	r.emit("error", event{
		"title":      err.Title,
		"message":    err.Message,
		"context":    err.Context,
		"suggestion": err.Suggestion,
	})
}

func (r *JSONReporter) OperationComplete(message string) {
	r.emit("operation_complete", event{
		"message": message,
	})
}

func (r *JSONReporter) BatchStarted(info BatchStartInfo) {
	r.emit("batch_started", event{
		"mode":        info.Mode,
		"total_files": info.TotalFiles,
		"file_list":   info.FileList,
		"output_dir":  info.OutputDir,
	})
}

func (r *JSONReporter) FileProgress(context FileProgressContext) {
	r.emit("file_progress", event{
		"current_file": context.CurrentFile,
		"total_files":  context.TotalFiles,
	})
}

func (r *JSONReporter) BatchComplete(summary BatchSummary) {
	results := make([]map[string]string, len(summary.FileResults))
	for i, fr := range summary.FileResults {
		results[i] = map[string]string{"file": fr.Filename, "outcome": fr.Outcome}
	}

	r.emit("batch_complete", event{
		"mode":                   summary.Mode,
		"successful_count":       summary.SuccessfulCount,
		"total_files":            summary.TotalFiles,
		"authentic_count":        summary.AuthenticCount,
		"tampered_count":         summary.TamperedCount,
		"failed_count":           summary.FailedCount,
		"total_duration_seconds": int64(summary.TotalDuration.Seconds()),
		"report_path":            summary.ReportPath,
		"file_results":           results,
	})
}

func (r *JSONReporter) Verbose(message string) {
	r.mu.Lock()
	verbose := r.verbose
	r.mu.Unlock()
	if !verbose {
		return
	}
	r.emit("verbose", event{
		"message": message,
	})
}
