package reporter

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/five82/vidauth/internal/util"
	"github.com/schollz/progressbar/v3"
)

// TerminalReporter outputs human-friendly text to the terminal.
type TerminalReporter struct {
	mu         sync.Mutex
	out        io.Writer
	errOut     io.Writer
	progress   *progressbar.ProgressBar
	maxPercent float32
	lastStage  string
	verbose    bool
	cyan       *color.Color
	green      *color.Color
	yellow     *color.Color
	red        *color.Color
	magenta    *color.Color
	bold       *color.Color
	faint      *color.Color
	success    *color.Color
}

// NewTerminalReporter creates a new terminal reporter.
func NewTerminalReporter() *TerminalReporter {
	return NewTerminalReporterWithWriters(os.Stdout, os.Stderr)
}

// NewTerminalReporterWithWriters creates a terminal reporter that prints
// events to out and errors and the progress bar to errOut.
func NewTerminalReporterWithWriters(out, errOut io.Writer) *TerminalReporter {
	return &TerminalReporter{
		out:     out,
		errOut:  errOut,
		cyan:    color.New(color.FgCyan, color.Bold),
		green:   color.New(color.FgGreen),
		yellow:  color.New(color.FgYellow, color.Bold),
		red:     color.New(color.FgRed, color.Bold),
		magenta: color.New(color.FgMagenta),
		bold:    color.New(color.Bold),
		faint:   color.New(color.Faint),
		success: color.New(color.FgGreen, color.Bold),
	}
}

// SetVerbose enables verbose messages.
func (r *TerminalReporter) SetVerbose(verbose bool) {
	r.mu.Lock()
	r.verbose = verbose
	r.mu.Unlock()
}

func (r *TerminalReporter) finishProgress() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.progress != nil {
		_ = r.progress.Finish()
		r.progress = nil
	}
	r.maxPercent = 0
}

func (r *TerminalReporter) section(title string) {
	_, _ = fmt.Fprintln(r.out)
	_, _ = r.cyan.Fprintln(r.out, title)
}

// printLabel prints a bold label with fixed width padding followed by a value.
// Width is applied to the plain text before styling to keep columns aligned.
func (r *TerminalReporter) printLabel(width int, label, value string) {
	paddedLabel := fmt.Sprintf("%-*s", width, label)
	_, _ = fmt.Fprintf(r.out, "  %s %s\n", r.bold.Sprint(paddedLabel), value)
}

func (r *TerminalReporter) Hardware(summary HardwareSummary) {
	r.section("HARDWARE")
	r.printLabel(10, "Hostname:", summary.Hostname)
	r.printLabel(10, "System:", fmt.Sprintf("%s/%s, %d CPUs", summary.OS, summary.Arch, summary.NumCPU))
	if summary.Memory != "" {
		r.printLabel(10, "Memory:", summary.Memory)
	}
}

func (r *TerminalReporter) VideoInfo(summary VideoInfoSummary) {
	r.section("VIDEO")
	r.printLabel(11, "File:", summary.InputFile)
	if summary.OutputFile != "" {
		r.printLabel(11, "Output:", summary.OutputFile)
	}
	r.printLabel(11, "Video ID:", summary.VideoID)
	if summary.Resolution != "" {
		r.printLabel(11, "Resolution:", fmt.Sprintf("%s @ %s fps", summary.Resolution, summary.FrameRate))
	}
	if summary.Duration != "" {
		r.printLabel(11, "Duration:", summary.Duration)
	}
	if summary.Audio != "" {
		r.printLabel(11, "Audio:", summary.Audio)
	}
}

func (r *TerminalReporter) StageProgress(update StageProgress) {
	r.mu.Lock()
	newStage := r.lastStage != update.Stage
	r.lastStage = update.Stage
	r.mu.Unlock()

	if newStage {
		r.section(strings.ToUpper(update.Stage))
	}
	_, _ = fmt.Fprintf(r.out, "  %s %s\n", r.magenta.Sprint("›"), update.Message)
}

func (r *TerminalReporter) EmbedStarted(totalFrames uint64) {
	r.finishProgress()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.progress = progressbar.NewOptions64(
		100,
		progressbar.OptionSetDescription(""),
		progressbar.OptionSetWidth(40),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(r.errOut),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "Sealing [",
			BarEnd:        "]",
		}),
	)
}

func (r *TerminalReporter) EmbedProgress(progress ProgressSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.progress == nil {
		return
	}

	clamped := progress.Percent
	if clamped > 100 {
		clamped = 100
	}
	if clamped < 0 {
		clamped = 0
	}

	if clamped >= r.maxPercent {
		r.maxPercent = clamped
		_ = r.progress.Set64(int64(clamped))
	}

	desc := fmt.Sprintf("frame %d/%d, fps %.1f, eta %s",
		progress.CurrentFrame, progress.TotalFrames, progress.FPS,
		util.FormatDuration(progress.ETA))
	r.progress.Describe(desc)
}

func (r *TerminalReporter) BaselineStored(outcome StoreOutcome) {
	r.finishProgress()

	r.section("BASELINE")
	r.printLabel(10, "Video ID:", outcome.VideoID)
	r.printLabel(10, "Watermark:", outcome.Watermark)
	r.printLabel(10, "Hash:", fmt.Sprintf("%s (%s of %s)", outcome.Hash, outcome.HashAlgorithm, outcome.Subject))
	r.printLabel(10, "Store:", outcome.StorePath)
	r.printLabel(10, "Time:", util.FormatDuration(outcome.TotalTime))
	_, _ = fmt.Fprintf(r.out, "  %s %s\n", r.bold.Sprint("Saved to"), r.green.Sprint(outcome.OutputFile))
}

func (r *TerminalReporter) VerdictComplete(summary VerdictSummary) {
	r.finishProgress()

	r.section("VERIFICATION")

	if summary.Authentic {
		_, _ = fmt.Fprintf(r.out, "  %s\n", r.success.Sprint(summary.Verdict))
	} else {
		_, _ = fmt.Fprintf(r.out, "  %s\n", r.red.Sprint(summary.Verdict))
	}

	maxLen := 0
	for _, step := range summary.Steps {
		if len(step.Name) > maxLen {
			maxLen = len(step.Name)
		}
	}

	for _, step := range summary.Steps {
		status := r.red.Sprint("✗")
		if step.Passed {
			status = r.green.Sprint("✓")
		}
		paddedName := fmt.Sprintf("%-*s", maxLen, step.Name)
		_, _ = fmt.Fprintf(r.out, "  - %s: %s (%s)\n", paddedName, status, step.Details)
	}

	if len(summary.MetadataDiff) > 0 {
		_, _ = fmt.Fprintf(r.out, "  %s %s\n", r.bold.Sprint("Changed fields:"), strings.Join(summary.MetadataDiff, ", "))
	}
}

func (r *TerminalReporter) WatermarkExtracted(summary ExtractionSummary) {
	r.section("WATERMARK")
	text := summary.Text
	if text == "" {
		text = r.faint.Sprint("(empty)")
	}
	r.printLabel(6, "File:", summary.InputFile)
	r.printLabel(6, "Text:", text)
}

func (r *TerminalReporter) Warning(message string) {
	_, _ = fmt.Fprintln(r.out)
	_, _ = r.yellow.Fprintf(r.out, "WARN: %s\n", message)
}

func (r *TerminalReporter) Error(err ReporterError) {
	r.finishProgress()

	_, _ = fmt.Fprintln(r.errOut)
	_, _ = r.red.Fprintf(r.errOut, "ERROR %s\n", err.Title)
	_, _ = fmt.Fprintf(r.errOut, "  %s\n", err.Message)
	if err.Context != "" {
		_, _ = fmt.Fprintf(r.errOut, "  Context: %s\n", err.Context)
	}
	if err.Suggestion != "" {
		_, _ = fmt.Fprintf(r.errOut, "  Suggestion: %s\n", err.Suggestion)
	}
}

func (r *TerminalReporter) OperationComplete(message string) {
	_, _ = fmt.Fprintln(r.out)
	_, _ = fmt.Fprintf(r.out, "%s %s\n", r.success.Sprint("✓"), r.bold.Sprint(message))
}

func (r *TerminalReporter) BatchStarted(info BatchStartInfo) {
	r.section("BATCH")
	verb := "Processing"
	switch info.Mode {
	case "store":
		verb = "Sealing"
	case "verify":
		verb = "Verifying"
	}
	_, _ = fmt.Fprintf(r.out, "  %s %d files -> %s\n", verb, info.TotalFiles, r.bold.Sprint(info.OutputDir))
	for i, name := range info.FileList {
		_, _ = fmt.Fprintf(r.out, "  %d. %s\n", i+1, name)
	}
}

func (r *TerminalReporter) FileProgress(context FileProgressContext) {
	_, _ = fmt.Fprintf(r.out, "\nFile %s of %d\n",
		r.bold.Sprint(context.CurrentFile),
		context.TotalFiles)
}

func (r *TerminalReporter) BatchComplete(summary BatchSummary) {
	r.section("BATCH SUMMARY")
	_, _ = fmt.Fprintf(r.out, "  %s\n", r.bold.Sprintf("%d of %d succeeded", summary.SuccessfulCount, summary.TotalFiles))
	if summary.Mode == "verify" {
		_, _ = fmt.Fprintf(r.out, "  Verdicts: %s authentic, %s tampered\n",
			r.green.Sprint(summary.AuthenticCount),
			r.red.Sprint(summary.TamperedCount))
	}
	if summary.FailedCount > 0 {
		_, _ = fmt.Fprintf(r.out, "  Failed: %s\n", r.red.Sprint(summary.FailedCount))
	}
	_, _ = fmt.Fprintf(r.out, "  Time: %s\n", util.FormatDuration(summary.TotalDuration))
	if summary.ReportPath != "" {
		_, _ = fmt.Fprintf(r.out, "  Report: %s\n", r.bold.Sprint(summary.ReportPath))
	}

	for _, result := range summary.FileResults {
		_, _ = fmt.Fprintf(r.out, "  - %s (%s)\n", result.Filename, result.Outcome)
	}
}

func (r *TerminalReporter) Verbose(message string) {
	r.mu.Lock()
	verbose := r.verbose
	r.mu.Unlock()
	if !verbose {
		return
	}
	_, _ = fmt.Fprintf(r.out, "  %s\n", r.faint.Sprint(message))
}
