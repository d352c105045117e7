package reporter

// CompositeReporter forwards every event to each of its reporters in order.
type CompositeReporter []Reporter

// NewCompositeReporter joins reporters, skipping nil entries. A single
// reporter is returned unwrapped.
func NewCompositeReporter(reporters ...Reporter) Reporter {
	var c CompositeReporter
	for _, r := range reporters {
		if r != nil {
			c = append(c, r)
		}
	}
	switch len(c) {
	case 0:
		return NullReporter{}
	case 1:
		return c[0]
	}
	return c
}

func (c CompositeReporter) each(fn func(Reporter)) {
	for _, r := range c {
		fn(r)
	}
}

func (c CompositeReporter) Hardware(s HardwareSummary) {
	c.each(func(r Reporter) { r.Hardware(s) })
}

func (c CompositeReporter) VideoInfo(s VideoInfoSummary) {
	c.each(func(r Reporter) { r.VideoInfo(s) })
}

func (c CompositeReporter) StageProgress(u StageProgress) {
	c.each(func(r Reporter) { r.StageProgress(u) })
}

func (c CompositeReporter) EmbedStarted(totalFrames uint64) {
	c.each(func(r Reporter) { r.EmbedStarted(totalFrames) })
}

func (c CompositeReporter) EmbedProgress(p ProgressSnapshot) {
	c.each(func(r Reporter) { r.EmbedProgress(p) })
}

func (c CompositeReporter) BaselineStored(o StoreOutcome) {
	c.each(func(r Reporter) { r.BaselineStored(o) })
}

func (c CompositeReporter) VerdictComplete(s VerdictSummary) {
	c.each(func(r Reporter) { r.VerdictComplete(s) })
}

func (c CompositeReporter) WatermarkExtracted(s ExtractionSummary) {
	c.each(func(r Reporter) { r.WatermarkExtracted(s) })
}

func (c CompositeReporter) Warning(msg string) {
	c.each(func(r Reporter) { r.Warning(msg) })
}

func (c CompositeReporter) Error(e ReporterError) {
	c.each(func(r Reporter) { r.Error(e) })
}

func (c CompositeReporter) OperationComplete(msg string) {
	c.each(func(r Reporter) { r.OperationComplete(msg) })
}

func (c CompositeReporter) BatchStarted(info BatchStartInfo) {
	c.each(func(r Reporter) { r.BatchStarted(info) })
}

func (c CompositeReporter) FileProgress(fc FileProgressContext) {
	c.each(func(r Reporter) { r.FileProgress(fc) })
}

func (c CompositeReporter) BatchComplete(s BatchSummary) {
	c.each(func(r Reporter) { r.BatchComplete(s) })
}

func (c CompositeReporter) Verbose(msg string) {
	c.each(func(r Reporter) { r.Verbose(msg) })
}
