package watermark

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// noisyFrame returns a frame filled with deterministic pseudo-random pixels.
func noisyFrame(width, height int, seed int64) Frame {
	f := NewFrame(width, height, 3)
	rand.New(rand.NewSource(seed)).Read(f.Pix)
	return f
}

func TestTextToBits(t *testing.T) {
	got := TextToBits("A\x01")
	want := []byte{0, 1, 0, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 1}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("TextToBits mismatch (-want +got):\n%s", d)
	}
	if got := BitsToText(want); got != "A\x01" {
		t.Errorf("BitsToText = %q", got)
	}
	// Trailing partial group is dropped.
	if got := BitsToText(append(want, 1, 1, 1)); got != "A\x01" {
		t.Errorf("BitsToText with partial tail = %q", got)
	}
}

func TestRoundTrip(t *testing.T) {
	payloads := []string{
		"",
		"VIDWM_042_unedited.mp4",
		"auth:manish|id:042|ts:20250424",
		"\xff\x00\x80 binary bytes",
	}

	for _, text := range payloads {
		t.Run(text, func(t *testing.T) {
			frame := noisyFrame(64, 36, 7)
			marked, err := Embed(frame, text)
			if err != nil {
				t.Fatalf("Embed() error = %v", err)
			}

			ok, err := Verify(marked, text)
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if !ok {
				t.Error("Verify() = false after Embed")
			}
		})
	}
}

func TestEmbedTouchesOnlyPayloadLSBs(t *testing.T) {
	frame := noisyFrame(32, 16, 1)
	orig := frame.Clone()
	text := "VIDWM_007.mp4"

	marked, err := Embed(frame, text)
	if err != nil {
		t.Fatal(err)
	}

	if d := cmp.Diff(orig.Pix, frame.Pix); d != "" {
		t.Fatal("Embed modified its input frame")
	}

	n := len(text) * 8
	for i := range marked.Pix {
		diff := marked.Pix[i] ^ orig.Pix[i]
		if i >= n && diff != 0 {
			t.Fatalf("sample %d beyond payload changed", i)
		}
		if diff&^1 != 0 {
			t.Fatalf("sample %d changed above the LSB", i)
		}
	}
	if marked.Width != frame.Width || marked.Height != frame.Height || marked.Channels != frame.Channels {
		t.Error("Embed changed frame geometry")
	}
}

func TestEmbedCapacity(t *testing.T) {
	// 2x2 RGB frame has 12 samples: one character fits, two do not.
	frame := NewFrame(2, 2, 3)
	if got := Capacity(frame); got != 1 {
		t.Errorf("Capacity = %d, want 1", got)
	}

	if _, err := Embed(frame, "a"); err != nil {
		t.Errorf("one character should fit: %v", err)
	}

	_, err := Embed(frame, "ab")
	if !errors.Is(err, ErrPayloadTooLarge) {
		t.Errorf("Embed error = %v, want ErrPayloadTooLarge", err)
	}
}

func TestEmbedExactFit(t *testing.T) {
	frame := NewFrame(8, 1, 1)
	marked, err := Embed(frame, "Z")
	if err != nil {
		t.Fatalf("exact fit failed: %v", err)
	}
	if ok, _ := Verify(marked, "Z"); !ok {
		t.Error("exact fit did not verify")
	}
}

func TestVerifyMismatch(t *testing.T) {
	marked, err := Embed(noisyFrame(16, 16, 3), "VIDWM_042_a.mp4")
	if err != nil {
		t.Fatal(err)
	}

	ok, err := Verify(marked, "VIDWM_042_b.mp4")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("Verify() accepted a different payload")
	}
}

func TestVerifyFrameTooSmall(t *testing.T) {
	_, err := Verify(NewFrame(1, 1, 3), "ab")
	if !errors.Is(err, ErrFrameTooSmall) {
		t.Errorf("Verify error = %v, want ErrFrameTooSmall", err)
	}
}

func TestExtractBlind(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		maxChars int
		want     string
	}{
		{"nul padded", "VIDWM_042.mp4", 64, "VIDWM_042.mp4"},
		{"trailing whitespace", "  hello \t", 32, "hello"},
		{"truncated by max", "VIDWM_042.mp4", 5, "VIDWM"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// A zeroed frame yields NUL bytes after the payload.
			frame := NewFrame(64, 8, 3)
			marked, err := Embed(frame, tt.payload)
			if err != nil {
				t.Fatal(err)
			}
			got, err := ExtractBlind(marked, tt.maxChars)
			if err != nil {
				t.Fatalf("ExtractBlind() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ExtractBlind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractBlindDefaultLength(t *testing.T) {
	// Default reads 256 characters, 2048 samples.
	small := NewFrame(10, 10, 3)
	if _, err := ExtractBlind(small, 0); !errors.Is(err, ErrFrameTooSmall) {
		t.Errorf("ExtractBlind on 300-sample frame error = %v, want ErrFrameTooSmall", err)
	}

	big := noisyFrame(40, 20, 9)
	if _, err := ExtractBlind(big, 0); err != nil {
		t.Errorf("ExtractBlind on garbage should not fail: %v", err)
	}
}

func TestFrameValidate(t *testing.T) {
	if err := NewFrame(4, 3, 3).Validate(); err != nil {
		t.Errorf("valid frame rejected: %v", err)
	}
	bad := Frame{Width: 4, Height: 3, Channels: 3, Pix: make([]byte, 10)}
	if err := bad.Validate(); err == nil {
		t.Error("short frame accepted")
	}
	if err := (Frame{}).Validate(); err == nil {
		t.Error("zero frame accepted")
	}
}
