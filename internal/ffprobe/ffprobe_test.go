package ffprobe

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	vaerrors "github.com/five82/vidauth/internal/errors"
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

func TestParseFFprobeOutput_Valid1080p(t *testing.T) {
	data := loadTestData(t, "video_1080p_audio.json")

	probe, err := parseFFprobeOutput(data)
	if err != nil {
		t.Fatalf("parseFFprobeOutput() error = %v", err)
	}

	if probe.Format.Duration != "12.345000" {
		t.Errorf("Duration = %q, want %q", probe.Format.Duration, "12.345000")
	}
	if len(probe.Streams) != 2 {
		t.Fatalf("len(Streams) = %d, want 2", len(probe.Streams))
	}
}

func TestExtractStreamInfo(t *testing.T) {
	probe, err := parseFFprobeOutput(loadTestData(t, "video_1080p_audio.json"))
	if err != nil {
		t.Fatal(err)
	}

	info, err := extractStreamInfo(probe, "042_unedited.mp4")
	if err != nil {
		t.Fatalf("extractStreamInfo() error = %v", err)
	}

	if info.Width != 1920 || info.Height != 1080 {
		t.Errorf("dimensions = %dx%d, want 1920x1080", info.Width, info.Height)
	}
	if info.FrameRate != "30000/1001" {
		t.Errorf("FrameRate = %q", info.FrameRate)
	}
	if math.Abs(info.FPS-29.97) > 0.01 {
		t.Errorf("FPS = %f, want ~29.97", info.FPS)
	}
	if info.TotalFrames != 370 {
		t.Errorf("TotalFrames = %d, want 370", info.TotalFrames)
	}
	if !info.HasAudio || info.AudioCodec != "aac" {
		t.Errorf("audio = %v/%q, want true/aac", info.HasAudio, info.AudioCodec)
	}
	if got := info.FrameBytes(3); got != 1920*1080*3 {
		t.Errorf("FrameBytes(3) = %d", got)
	}
}

func TestExtractStreamInfo_FallbackRateAndFrameCount(t *testing.T) {
	probe, err := parseFFprobeOutput(loadTestData(t, "video_no_frame_count.json"))
	if err != nil {
		t.Fatal(err)
	}

	info, err := extractStreamInfo(probe, "clip.webm")
	if err != nil {
		t.Fatalf("extractStreamInfo() error = %v", err)
	}
	if info.FrameRate != "25/1" || info.FPS != 25 {
		t.Errorf("rate = %q (%f), want 25/1", info.FrameRate, info.FPS)
	}
	if info.TotalFrames != 100 {
		t.Errorf("TotalFrames = %d, want 100 from duration", info.TotalFrames)
	}
	if info.HasAudio {
		t.Error("HasAudio = true for video-only file")
	}
}

func TestExtractStreamInfo_NoVideo(t *testing.T) {
	probe, err := parseFFprobeOutput(loadTestData(t, "audio_only.json"))
	if err != nil {
		t.Fatal(err)
	}
	_, err = extractStreamInfo(probe, "song.mp3")
	if !vaerrors.IsKind(err, vaerrors.KindVideoInfo) {
		t.Errorf("error = %v, want VideoInfo", err)
	}
}

func TestParseFFprobeOutput_Invalid(t *testing.T) {
	_, err := parseFFprobeOutput([]byte("not json"))
	if !vaerrors.IsKind(err, vaerrors.KindJSONParse) {
		t.Errorf("error = %v, want JSON parse error", err)
	}
}

func TestParseRate(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"30/1", 30, true},
		{"24000/1001", 24000.0 / 1001, true},
		{"25", 25, true},
		{"0/0", 0, false},
		{"", 0, false},
		{"30/0", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseRate(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Errorf("parseRate(%q) = %f, %v; want %f, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}
