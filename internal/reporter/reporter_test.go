package reporter

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var events []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var ev map[string]interface{}
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			t.Fatalf("line %q is not JSON: %v", line, err)
		}
		events = append(events, ev)
	}
	return events
}

func TestJSONReporterVerdictEvent(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSONReporterWithWriter(&buf)

	r.VerdictComplete(VerdictSummary{
		InputFile: "042_processed.mp4",
		VideoID:   "042",
		Verdict:   "TAMPERED",
		Steps: []VerdictStep{
			{Name: "hash", Passed: false, Details: "digest differs"},
			{Name: "watermark", Passed: true, Details: "VIDWM_042_unedited.mp4"},
		},
		MetadataDiff: []string{"software"},
	})

	events := decodeLines(t, &buf)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	ev := events[0]
	if ev["type"] != "verdict_complete" {
		t.Errorf("type = %v", ev["type"])
	}
	if _, ok := ev["timestamp"]; !ok {
		t.Error("missing timestamp")
	}
	if ev["authentic"] != false {
		t.Errorf("authentic = %v", ev["authentic"])
	}

	want := []interface{}{
		map[string]interface{}{"step": "hash", "passed": false, "details": "digest differs"},
		map[string]interface{}{"step": "watermark", "passed": true, "details": "VIDWM_042_unedited.mp4"},
	}
	if diff := cmp.Diff(want, ev["signals"]); diff != "" {
		t.Errorf("signals mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]interface{}{"software"}, ev["metadata_diff"]); diff != "" {
		t.Errorf("metadata_diff mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONReporterEmptyDiffIsArray(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSONReporterWithWriter(&buf)
	r.VerdictComplete(VerdictSummary{Verdict: "AUTHENTIC", Authentic: true})

	if !strings.Contains(buf.String(), `"metadata_diff":[]`) {
		t.Errorf("expected empty array, got %s", buf.String())
	}
}

func TestJSONReporterThrottlesProgress(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSONReporterWithWriter(&buf)

	r.EmbedStarted(1000)
	for frame := uint64(0); frame <= 20; frame++ {
		r.EmbedProgress(ProgressSnapshot{
			CurrentFrame: frame,
			TotalFrames:  1000,
			Percent:      float32(frame) / 10,
		})
	}

	var progress int
	for _, ev := range decodeLines(t, &buf) {
		if ev["type"] == "embed_progress" {
			progress++
		}
	}
	// Percent runs 0.0..2.0: buckets 0, 1 and 2 each emit once.
	if progress != 3 {
		t.Errorf("got %d progress events, want 3", progress)
	}
}

func TestJSONReporterVerboseGated(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSONReporterWithWriter(&buf)

	r.Verbose("hidden")
	if buf.Len() != 0 {
		t.Fatalf("verbose event written while disabled: %s", buf.String())
	}

	r.SetVerbose(true)
	r.Verbose("shown")
	events := decodeLines(t, &buf)
	if len(events) != 1 || events[0]["message"] != "shown" {
		t.Errorf("unexpected events %v", events)
	}
}

type recordingReporter struct {
	NullReporter
	warnings []string
	stored   []StoreOutcome
}

func (r *recordingReporter) Warning(message string) { r.warnings = append(r.warnings, message) }

func (r *recordingReporter) BaselineStored(outcome StoreOutcome) {
	r.stored = append(r.stored, outcome)
}

func TestCompositeReporterFansOut(t *testing.T) {
	a, b := &recordingReporter{}, &recordingReporter{}
	c := NewCompositeReporter(a, b, NullReporter{})

	c.Warning("low disk")
	c.BaselineStored(StoreOutcome{VideoID: "042"})

	for i, r := range []*recordingReporter{a, b} {
		if diff := cmp.Diff([]string{"low disk"}, r.warnings); diff != "" {
			t.Errorf("reporter %d warnings (-want +got):\n%s", i, diff)
		}
		if len(r.stored) != 1 || r.stored[0].VideoID != "042" {
			t.Errorf("reporter %d stored = %v", i, r.stored)
		}
	}
}

func TestCompositeReporterCollapses(t *testing.T) {
	if _, ok := NewCompositeReporter().(NullReporter); !ok {
		t.Error("empty composite should be a NullReporter")
	}
	only := &recordingReporter{}
	if got := NewCompositeReporter(nil, only, NewAuditReporter(nil)); got != Reporter(only) {
		t.Errorf("single reporter wrapped as %T", got)
	}
}

func TestAuditReporterLogsOutcomes(t *testing.T) {
	var buf bytes.Buffer
	r := NewAuditReporter(slog.New(slog.NewTextHandler(&buf, nil)))

	r.EmbedProgress(ProgressSnapshot{CurrentFrame: 3, TotalFrames: 10})
	r.VerdictComplete(VerdictSummary{
		VideoID:      "042",
		Verdict:      "TAMPERED",
		Steps:        []VerdictStep{{Name: "hash", Passed: false, Details: "digest differs"}},
		MetadataDiff: []string{"software"},
	})
	r.BaselineStored(StoreOutcome{VideoID: "007", Watermark: "VIDWM_007.mp4"})

	got := buf.String()
	for _, want := range []string{
		"level=WARN", "msg=verdict", "video_id=042", "hash.passed=false",
		"changed_fields=[software]", "msg=\"baseline stored\"", "watermark=VIDWM_007.mp4",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("audit log missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "frame") {
		t.Errorf("progress events should not be logged:\n%s", got)
	}
}

func TestTerminalReporterVerdict(t *testing.T) {
	var out, errOut bytes.Buffer
	r := NewTerminalReporterWithWriters(&out, &errOut)

	r.VerdictComplete(VerdictSummary{
		Verdict: "TAMPERED",
		Steps: []VerdictStep{
			{Name: "hash", Passed: false, Details: "digest differs"},
			{Name: "metadata", Passed: true, Details: "all fields equal"},
		},
		MetadataDiff: []string{"software", "file_size"},
	})

	got := out.String()
	for _, want := range []string{"VERIFICATION", "TAMPERED", "hash    ", "digest differs", "software, file_size"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if errOut.Len() != 0 {
		t.Errorf("unexpected stderr output %q", errOut.String())
	}
}

func TestTerminalReporterErrorGoesToErrWriter(t *testing.T) {
	var out, errOut bytes.Buffer
	r := NewTerminalReporterWithWriters(&out, &errOut)

	r.Error(ReporterError{Title: "No baseline", Message: "no record for 042", Suggestion: "run store first"})

	if out.Len() != 0 {
		t.Errorf("unexpected stdout output %q", out.String())
	}
	if !strings.Contains(errOut.String(), "Suggestion: run store first") {
		t.Errorf("stderr missing suggestion: %q", errOut.String())
	}
}
