package ffmpeg

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestArgsBuilder(t *testing.T) {
	tests := []struct {
		name  string
		build func() []string
		want  []string
	}{
		{
			name: "first frame decode",
			build: func() []string {
				return NewArgsBuilder().
					Input("in.mp4").
					Map("0:v:0").
					Frames(1).
					PixFmt(PixFmt).
					Output("rawvideo", "pipe:1").
					Build()
			},
			want: []string{"-hide_banner", "-nostdin", "-v", "error",
				"-i", "in.mp4", "-map", "0:v:0", "-frames:v", "1",
				"-pix_fmt", "bgr24", "-f", "rawvideo", "pipe:1"},
		},
		{
			name: "full decode has no frame limit",
			build: func() []string {
				return NewArgsBuilder().Input("in.mp4").Frames(0).Output("rawvideo", "pipe:1").Build()
			},
			want: []string{"-hide_banner", "-nostdin", "-v", "error",
				"-i", "in.mp4", "-f", "rawvideo", "pipe:1"},
		},
		{
			name: "lossless encode with audio",
			build: func() []string {
				return NewArgsBuilder().
					Overwrite().
					RawVideoInput("bgr24", 1920, 1080, "30000/1001").
					Input("src.mp4").
					Map("0:v:0").
					Map("1:a?").
					CopyAudio().
					VideoCodec("libx264rgb", "-qp", "0").
					Output("mp4", "/out/.wm_042.mp4123").
					Build()
			},
			want: []string{"-hide_banner", "-nostdin", "-v", "error", "-y",
				"-f", "rawvideo", "-pix_fmt", "bgr24", "-s", "1920x1080", "-r", "30000/1001", "-i", "pipe:0",
				"-i", "src.mp4", "-map", "0:v:0", "-map", "1:a?", "-c:a", "copy",
				"-c:v", "libx264rgb", "-qp", "0",
				"-f", "mp4", "/out/.wm_042.mp4123"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if d := cmp.Diff(tt.want, tt.build()); d != "" {
				t.Errorf("args mismatch (-want +got):\n%s", d)
			}
		})
	}
}

func TestArgsBuilderBuildCopies(t *testing.T) {
	b := NewArgsBuilder().NoAudio()
	first := b.Build()
	first[0] = "mutated"
	if got := strings.Join(b.Build(), " "); strings.Contains(got, "mutated") {
		t.Error("Build() returned the builder's backing slice")
	}
}

func TestProgressTracker(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start
	tr := &ProgressTracker{total: 200, start: start, now: func() time.Time { return now }}

	now = start.Add(10 * time.Second)
	p := tr.Update(50)
	if p.Percent != 25 {
		t.Errorf("Percent = %f, want 25", p.Percent)
	}
	if p.FPS != 5 {
		t.Errorf("FPS = %f, want 5", p.FPS)
	}
	if p.ETA != 30*time.Second {
		t.Errorf("ETA = %v, want 30s", p.ETA)
	}

	p = tr.Update(250)
	if p.Percent != 100 || p.ETA != 0 {
		t.Errorf("overrun progress = %+v, want capped at 100%% with no ETA", p)
	}

	unknown := &ProgressTracker{start: start, now: func() time.Time { return now }}
	if p := unknown.Update(10); p.Percent != 0 || p.ETA != 0 {
		t.Errorf("unknown total progress = %+v", p)
	}
}
