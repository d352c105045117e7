package processing

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/five82/vidauth/internal/baseline"
	"github.com/five82/vidauth/internal/config"
	"github.com/five82/vidauth/internal/engine"
	"github.com/five82/vidauth/internal/engine/enginetest"
	vaerrors "github.com/five82/vidauth/internal/errors"
	"github.com/five82/vidauth/internal/metadata"
	"github.com/five82/vidauth/internal/videoid"
)

func newRunner(t *testing.T, prober enginetest.StaticProber, mutate func(*config.Config)) (*Runner, *config.Config, *enginetest.Reporter) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.NewConfig()
	cfg.StorePath = filepath.Join(dir, "baselines", "baseline_data.json")
	cfg.OutputDir = filepath.Join(dir, "results")
	if mutate != nil {
		mutate(cfg)
	}

	media := &enginetest.Media{}
	rep := &enginetest.Reporter{}
	eng, err := engine.New(cfg,
		engine.WithFrameSource(media),
		engine.WithFrameSink(media),
		engine.WithProber(prober),
		engine.WithReporter(rep),
	)
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	return NewRunner(eng, rep, nil), cfg, rep
}

func videos(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
		enginetest.WriteVideo(t, paths[i], 16, 8, 3, byte(i+1))
	}
	return paths
}

func TestStoreVideosContinuesPastFailures(t *testing.T) {
	r, cfg, rep := newRunner(t, nil, nil)
	files := videos(t, t.TempDir(), "001_unedited.mp4", "clip_unedited.mp4", "002_unedited.mp4")

	batch, err := r.StoreVideos(context.Background(), files)
	if err != nil {
		t.Fatalf("StoreVideos: %v", err)
	}
	if batch.Succeeded() != 2 || batch.Failed() != 1 {
		t.Errorf("succeeded %d failed %d, want 2 and 1", batch.Succeeded(), batch.Failed())
	}
	if !vaerrors.IsKind(batch.Files[1].Err, vaerrors.KindUnidentifiableVideo) {
		t.Errorf("unexpected error %v", batch.Files[1].Err)
	}
	if len(rep.Errors) != 1 || rep.Errors[0].Title != "Unidentifiable video" {
		t.Errorf("unexpected reported errors %+v", rep.Errors)
	}

	s, err := baseline.Load(cfg.StorePath, nil)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]videoid.ID{"001", "002"}, s.IDs()); diff != "" {
		t.Errorf("stored IDs mismatch (-want +got):\n%s", diff)
	}
}

func TestVerifyVideosWritesReport(t *testing.T) {
	meta := metadata.Record{DeviceMake: metadata.String("Apple"), DeviceModel: metadata.String("iPhone 15")}
	prober := enginetest.StaticProber{
		"wm_001_unedited.mp4": meta,
		"wm_002_unedited.mp4": meta,
		"002_processed.mp4":   {DeviceMake: metadata.String("Apple"), DeviceModel: metadata.String("iPhone 12")},
	}
	r, cfg, _ := newRunner(t, prober, func(c *config.Config) {
		c.RecordSubject = config.SubjectOutput
		c.Report.CSVPath = filepath.Join(c.OutputDir, "verification_report.csv")
	})

	in := t.TempDir()
	stored, err := r.StoreVideos(context.Background(), videos(t, in, "001_unedited.mp4", "002_unedited.mp4"))
	if err != nil {
		t.Fatalf("StoreVideos: %v", err)
	}

	// The second candidate is the sealed copy under a new name.
	sealed2 := stored.Files[1].Stored.Output
	data, err := os.ReadFile(sealed2)
	if err != nil {
		t.Fatal(err)
	}
	processed := filepath.Join(in, "002_processed.mp4")
	if err := os.WriteFile(processed, data, 0o644); err != nil {
		t.Fatal(err)
	}
	unknown := videos(t, t.TempDir(), "999_processed.mp4")[0]

	batch, err := r.VerifyVideos(context.Background(), []string{stored.Files[0].Stored.Output, processed, unknown})
	if err != nil {
		t.Fatalf("VerifyVideos: %v", err)
	}
	if batch.Tampered() != 1 || batch.Failed() != 1 {
		t.Errorf("tampered %d failed %d, want 1 and 1", batch.Tampered(), batch.Failed())
	}
	if !vaerrors.IsNoBaseline(batch.Files[2].Err) {
		t.Errorf("expected NoBaseline for unknown ID, got %v", batch.Files[2].Err)
	}
	if batch.ReportPath != cfg.GetReportPath() {
		t.Errorf("ReportPath = %q", batch.ReportPath)
	}

	raw, err := os.ReadFile(batch.ReportPath)
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]struct {
		HashMatch      bool   `json:"hash_match"`
		MetadataMatch  bool   `json:"metadata_match"`
		WatermarkMatch bool   `json:"watermark_match"`
		DeviceMismatch bool   `json:"device_mismatch"`
		Verdict        string `json:"verdict"`
	}
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("report has %d entries, want 2", len(got))
	}
	if v := got["wm_001_unedited.mp4"]; v.Verdict != "AUTHENTIC" {
		t.Errorf("sealed copy verdict %+v", v)
	}
	if v := got["002_processed.mp4"]; v.Verdict != "TAMPERED" || !v.HashMatch || !v.WatermarkMatch || !v.DeviceMismatch || v.MetadataMatch {
		t.Errorf("processed verdict %+v", v)
	}

	if _, err := os.Stat(cfg.Report.CSVPath); err != nil {
		t.Errorf("CSV report missing: %v", err)
	}
}

func TestBatchStopsWhenCancelled(t *testing.T) {
	r, cfg, rep := newRunner(t, nil, nil)
	files := videos(t, t.TempDir(), "001_unedited.mp4", "002_unedited.mp4")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	batch, err := r.StoreVideos(ctx, files)
	if !vaerrors.IsCancelled(err) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if len(batch.Files) != 0 {
		t.Errorf("processed %d files after cancellation", len(batch.Files))
	}
	if len(rep.Warnings) == 0 {
		t.Error("cancellation not reported")
	}
	if _, err := os.Stat(cfg.StorePath); !os.IsNotExist(err) {
		t.Error("store written by a cancelled batch")
	}
}

func TestEmptyBatch(t *testing.T) {
	r, _, _ := newRunner(t, nil, nil)
	if _, err := r.VerifyVideos(context.Background(), nil); !vaerrors.IsNoFilesFound(err) {
		t.Errorf("expected no-files-found, got %v", err)
	}
}

func TestFileResultOutcome(t *testing.T) {
	tests := []struct {
		name string
		fr   FileResult
		want string
	}{
		{"failed", FileResult{Err: vaerrors.NewNoBaselineError("042")}, "failed: No baseline"},
		{"verdict", FileResult{Verdict: &engine.VerdictReport{Verdict: engine.Tampered}}, "TAMPERED"},
		{"stored", FileResult{Stored: &engine.StoreResult{ID: "042"}}, "stored as 042"},
		{"skipped", FileResult{}, "skipped"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fr.Outcome(); got != tt.want {
				t.Errorf("Outcome() = %q, want %q", got, tt.want)
			}
		})
	}
}
