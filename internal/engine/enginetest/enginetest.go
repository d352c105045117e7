// Package enginetest provides in-memory collaborators for exercising the
// engine without ffmpeg, ffprobe or MediaInfo.
package enginetest

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/five82/vidauth/internal/engine"
	"github.com/five82/vidauth/internal/ffprobe"
	"github.com/five82/vidauth/internal/metadata"
	"github.com/five82/vidauth/internal/reporter"
	"github.com/five82/vidauth/internal/watermark"
)

// Videos written by this package store raw bgr24 frames behind a small
// header:
//
//	"FVID" | width uint32 | height uint32 | frames uint32 | frame data
var magic = []byte("FVID")

const headerSize = 16

// Encode serializes frames of the given geometry.
func Encode(width, height int, frames [][]byte) []byte {
	var buf bytes.Buffer
	buf.Write(magic)
	_ = binary.Write(&buf, binary.BigEndian, uint32(width))
	_ = binary.Write(&buf, binary.BigEndian, uint32(height))
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(frames)))
	for _, f := range frames {
		buf.Write(f)
	}
	return buf.Bytes()
}

// Decode parses a video produced by Encode.
func Decode(data []byte) (width, height int, frames [][]byte, err error) {
	if len(data) < headerSize || !bytes.Equal(data[:4], magic) {
		return 0, 0, nil, fmt.Errorf("missing FVID header")
	}
	width = int(binary.BigEndian.Uint32(data[4:8]))
	height = int(binary.BigEndian.Uint32(data[8:12]))
	n := int(binary.BigEndian.Uint32(data[12:16]))
	size := width * height * 3
	body := data[headerSize:]
	if len(body) != n*size {
		return 0, 0, nil, fmt.Errorf("video body is %d bytes, want %d", len(body), n*size)
	}
	for i := 0; i < n; i++ {
		frames = append(frames, body[i*size:(i+1)*size])
	}
	return width, height, frames, nil
}

// WriteVideo writes a video whose samples follow a simple pattern that
// differs per frame and per seed.
func WriteVideo(t testing.TB, path string, width, height, count int, seed byte) {
	t.Helper()
	frames := make([][]byte, count)
	for i := range frames {
		f := make([]byte, width*height*3)
		for j := range f {
			f[j] = byte(j*7) ^ byte(i*31) ^ seed
		}
		frames[i] = f
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, Encode(width, height, frames), 0o644); err != nil {
		t.Fatal(err)
	}
}

// ReadFrames returns the raw frames of a video written by this package.
func ReadFrames(t testing.TB, path string) [][]byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	_, _, frames, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	return frames
}

// Media implements engine.FrameSource and engine.FrameSink over the
// package's file format.
type Media struct {
	// Created lists every path an encoder was opened for.
	Created []string
	// DecodeErr, when set, is returned by Close of every full-length
	// reader after its frames are read, like a decoder failing mid-file.
	DecodeErr error
}

func (m *Media) Probe(_ context.Context, path string) (*ffprobe.StreamInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	w, h, frames, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return &ffprobe.StreamInfo{
		Width:       w,
		Height:      h,
		FrameRate:   "25/1",
		FPS:         25,
		TotalFrames: uint64(len(frames)),
		CodecName:   "rawvideo",
	}, nil
}

func (m *Media) Open(_ context.Context, path string, info *ffprobe.StreamInfo, maxFrames int) (engine.FrameReader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	_, _, frames, err := Decode(data)
	if err != nil {
		return nil, err
	}
	r := &frameReader{width: info.Width, height: info.Height, frames: frames}
	if maxFrames > 0 && len(frames) > maxFrames {
		r.frames = frames[:maxFrames]
	} else if maxFrames == 0 {
		r.closeErr = m.DecodeErr
	}
	return r, nil
}

func (m *Media) Create(_ context.Context, path string, info *ffprobe.StreamInfo, _ string) (engine.FrameWriter, error) {
	m.Created = append(m.Created, path)
	return &frameWriter{path: path, width: info.Width, height: info.Height}, nil
}

type frameReader struct {
	width, height int
	frames        [][]byte
	next          int
	closeErr      error
}

func (r *frameReader) ReadFrame() (watermark.Frame, error) {
	if r.next >= len(r.frames) {
		return watermark.Frame{}, io.EOF
	}
	f := watermark.NewFrame(r.width, r.height, 3)
	copy(f.Pix, r.frames[r.next])
	r.next++
	return f, nil
}

func (r *frameReader) Close() error { return r.closeErr }
func (r *frameReader) Abort()       {}

type frameWriter struct {
	path          string
	width, height int
	frames        [][]byte
}

func (w *frameWriter) WriteFrame(frame watermark.Frame) error {
	w.frames = append(w.frames, bytes.Clone(frame.Pix))
	return nil
}

func (w *frameWriter) Close() error {
	return os.WriteFile(w.path, Encode(w.width, w.height, w.frames), 0o644)
}

func (w *frameWriter) Abort() {}

// StaticProber returns fixed metadata per base filename and an empty
// record for unknown names.
type StaticProber map[string]metadata.Record

func (p StaticProber) Probe(_ context.Context, path string) (metadata.Record, error) {
	return p[filepath.Base(path)], nil
}

// Reporter records the events tests assert on and drops the rest.
type Reporter struct {
	reporter.NullReporter
	Warnings []string
	Errors   []reporter.ReporterError
	Verdicts []reporter.VerdictSummary
	Stored   []reporter.StoreOutcome
}

func (r *Reporter) Warning(message string) { r.Warnings = append(r.Warnings, message) }

func (r *Reporter) VerdictComplete(s reporter.VerdictSummary) {
	r.Verdicts = append(r.Verdicts, s)
}

func (r *Reporter) BaselineStored(o reporter.StoreOutcome) {
	r.Stored = append(r.Stored, o)
}

func (r *Reporter) Error(err reporter.ReporterError) { r.Errors = append(r.Errors, err) }
