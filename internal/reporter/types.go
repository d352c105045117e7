// Package reporter provides progress reporting interfaces and implementations.
package reporter

import "time"

// HardwareSummary contains host information.
type HardwareSummary struct {
	Hostname string
	OS       string
	Arch     string
	NumCPU   int
	Memory   string
}

// VideoInfoSummary describes the current file before it is processed.
type VideoInfoSummary struct {
	Mode       string
	InputFile  string
	OutputFile string
	VideoID    string
	Resolution string
	FrameRate  string
	Duration   string
	Audio      string
}

// ProgressSnapshot contains frame copy progress information.
type ProgressSnapshot struct {
	CurrentFrame uint64
	TotalFrames  uint64
	Percent      float32
	FPS          float32
	ETA          time.Duration
}

// StoreOutcome contains the result of sealing one video.
type StoreOutcome struct {
	InputFile     string
	OutputFile    string
	VideoID       string
	Watermark     string
	Hash          string
	HashAlgorithm string
	Subject       string
	StorePath     string
	TotalTime     time.Duration
}

// VerdictSummary contains verification results.
type VerdictSummary struct {
	InputFile    string
	VideoID      string
	Verdict      string
	Authentic    bool
	Steps        []VerdictStep
	MetadataDiff []string
}

// VerdictStep represents a single verification signal.
type VerdictStep struct {
	Name    string
	Passed  bool
	Details string
}

// ExtractionSummary contains a blind watermark read.
type ExtractionSummary struct {
	InputFile string
	Text      string
	MaxChars  int
}

// ReporterError contains error information.
type ReporterError struct {
	Title      string
	Message    string
	Context    string
	Suggestion string
}

// BatchStartInfo contains batch start metadata.
type BatchStartInfo struct {
	Mode       string
	TotalFiles int
	FileList   []string
	OutputDir  string
}

// FileProgressContext contains current file index within a batch.
type FileProgressContext struct {
	CurrentFile int
	TotalFiles  int
}

// BatchSummary contains batch completion information.
type BatchSummary struct {
	Mode            string
	SuccessfulCount int
	TotalFiles      int
	AuthenticCount  int
	TamperedCount   int
	FailedCount     int
	TotalDuration   time.Duration
	ReportPath      string
	FileResults     []FileResult
}

// FileResult contains the per-file outcome of a batch.
type FileResult struct {
	Filename string
	Outcome  string
}

// StageProgress represents a generic stage update.
type StageProgress struct {
	Stage   string
	Percent float32
	Message string
	ETA     *time.Duration
}
