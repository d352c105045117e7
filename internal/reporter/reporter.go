package reporter

// Reporter defines the interface for progress reporting.
type Reporter interface {
	Hardware(summary HardwareSummary)
	VideoInfo(summary VideoInfoSummary)
	StageProgress(update StageProgress)
	EmbedStarted(totalFrames uint64)
	EmbedProgress(progress ProgressSnapshot)
	BaselineStored(outcome StoreOutcome)
	VerdictComplete(summary VerdictSummary)
	WatermarkExtracted(summary ExtractionSummary)
	Warning(message string)
	Error(err ReporterError)
	OperationComplete(message string)
	BatchStarted(info BatchStartInfo)
	FileProgress(context FileProgressContext)
	BatchComplete(summary BatchSummary)
	Verbose(message string)
}

// NullReporter is a no-op reporter that discards all updates.
type NullReporter struct{}

func (NullReporter) Hardware(HardwareSummary)             {}
func (NullReporter) VideoInfo(VideoInfoSummary)           {}
func (NullReporter) StageProgress(StageProgress)          {}
func (NullReporter) EmbedStarted(uint64)                  {}
func (NullReporter) EmbedProgress(ProgressSnapshot)       {}
func (NullReporter) BaselineStored(StoreOutcome)          {}
func (NullReporter) VerdictComplete(VerdictSummary)       {}
func (NullReporter) WatermarkExtracted(ExtractionSummary) {}
func (NullReporter) Warning(string)                       {}
func (NullReporter) Error(ReporterError)                  {}
func (NullReporter) OperationComplete(string)             {}
func (NullReporter) BatchStarted(BatchStartInfo)          {}
func (NullReporter) FileProgress(FileProgressContext)     {}
func (NullReporter) BatchComplete(BatchSummary)           {}
func (NullReporter) Verbose(string)                       {}
