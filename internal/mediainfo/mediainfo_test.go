package mediainfo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	vaerrors "github.com/five82/vidauth/internal/errors"
	"github.com/five82/vidauth/internal/metadata"
)

// loadTestData loads a JSON fixture from the testdata directory.
func loadTestData(t *testing.T, filename string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", filename))
	if err != nil {
		t.Fatalf("failed to load test data %s: %v", filename, err)
	}
	return data
}

func TestParseMediaInfoOutput_Tracks(t *testing.T) {
	data := loadTestData(t, "iphone_original.json")

	resp, err := parseMediaInfoOutput(data)
	if err != nil {
		t.Fatalf("parseMediaInfoOutput() error = %v", err)
	}

	if len(resp.Media.Track) != 3 {
		t.Fatalf("len(Track) = %d, want 3", len(resp.Media.Track))
	}

	g := resp.General()
	if g == nil {
		t.Fatal("no General track found")
	}
	if g.Format != "MPEG-4" {
		t.Errorf("General.Format = %q, want %q", g.Format, "MPEG-4")
	}

	var types []string
	for _, tr := range resp.Media.Track {
		types = append(types, tr.Type)
	}
	if diff := cmp.Diff([]string{"General", "Video", "Audio"}, types); diff != "" {
		t.Errorf("track types mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_AppleTags(t *testing.T) {
	resp, err := parseMediaInfoOutput(loadTestData(t, "iphone_original.json"))
	if err != nil {
		t.Fatal(err)
	}

	got := Normalize(resp.General())
	want := metadata.Record{
		Format:         metadata.String("MPEG-4"),
		Duration:       metadata.Float(12.345),
		FileSize:       metadata.Int(10485760),
		OverallBitRate: metadata.Int(6796000),
		EncodedDate:    metadata.String("2024-03-01 10:00:00 UTC"),
		TaggedDate:     metadata.String("2024-03-01 10:00:12 UTC"),
		DeviceMake:     metadata.String("Apple"),
		DeviceModel:    metadata.String("iPhone 13"),
		Software:       metadata.String("17.3.1"),
	}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("Normalize() mismatch (-want +got):\n%s", d)
	}
}

func TestNormalize_PlainTagsAndFractionalBitrate(t *testing.T) {
	resp, err := parseMediaInfoOutput(loadTestData(t, "ffmpeg_processed.json"))
	if err != nil {
		t.Fatal(err)
	}

	got := Normalize(resp.General())
	want := metadata.Record{
		Format:         metadata.String("MPEG-4"),
		Duration:       metadata.Float(12.345),
		FileSize:       metadata.Int(9876543),
		OverallBitRate: metadata.Int(6400415),
		DeviceModel:    metadata.String("Pixel 8"),
		Software:       metadata.String("Lavf60.16.100"),
	}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("Normalize() mismatch (-want +got):\n%s", d)
	}
}

func TestNormalize_IgnoresVolatileFields(t *testing.T) {
	original := []byte(`{"media":{"@ref":"/a/042_unedited.mp4","track":[{"@type":"General",
		"Format":"MPEG-4","FileSize":"100","CompleteName":"/a/042_unedited.mp4",
		"File_Modified_Date":"2024-03-02 08:15:00 UTC"}]}}`)
	moved := []byte(`{"media":{"@ref":"/b/renamed.mp4","track":[{"@type":"General",
		"Format":"MPEG-4","FileSize":"100","CompleteName":"/b/renamed.mp4",
		"File_Modified_Date":"2025-01-01 00:00:00 UTC"}]}}`)

	a, err := parseMediaInfoOutput(original)
	if err != nil {
		t.Fatal(err)
	}
	b, err := parseMediaInfoOutput(moved)
	if err != nil {
		t.Fatal(err)
	}

	if !metadata.Equal(Normalize(a.General()), Normalize(b.General())) {
		t.Error("path and modification date changes should not affect the record")
	}
}

func TestNormalize_BadNumbersLeftUnset(t *testing.T) {
	g := &GeneralTrack{Duration: "n/a", FileSize: "big", OverallBitRate: ""}
	got := Normalize(g)
	if !got.Empty() {
		t.Errorf("expected empty record, got %+v", got)
	}
	if !Normalize(nil).Empty() {
		t.Error("nil track should normalize to an empty record")
	}
}

func TestParseMediaInfoOutput_NoGeneral(t *testing.T) {
	resp, err := parseMediaInfoOutput(loadTestData(t, "no_general.json"))
	if err != nil {
		t.Fatal(err)
	}
	if resp.General() != nil {
		t.Error("expected no General track")
	}
}

func TestParseMediaInfoOutput_Invalid(t *testing.T) {
	_, err := parseMediaInfoOutput([]byte("{not json"))
	if !vaerrors.IsKind(err, vaerrors.KindJSONParse) {
		t.Errorf("expected JSON parse error, got %v", err)
	}
}
