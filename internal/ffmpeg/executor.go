package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	vaerrors "github.com/five82/vidauth/internal/errors"
	"github.com/five82/vidauth/internal/watermark"
)

// Channels is the sample count per pixel of the bgr24 frames exchanged
// with FFmpeg.
const Channels = 3

// PixFmt is the packed pixel format of frames exchanged with FFmpeg. Its
// channel order matches OpenCV's default BGR layout.
const PixFmt = "bgr24"

// maxStderr bounds the stderr kept for error messages.
const maxStderr = 4096

// FrameReader decodes a video into packed bgr24 frames.
type FrameReader struct {
	cmd       *exec.Cmd
	stdout    io.ReadCloser
	stderr    *bytes.Buffer
	width     int
	height    int
	frameSize int
	frames    uint64
	maxFrames int
}

// OpenReader starts decoding the first video stream of inputPath. A
// positive maxFrames stops the decoder after that many frames.
func OpenReader(ctx context.Context, inputPath string, width, height, maxFrames int) (*FrameReader, error) {
	args := NewArgsBuilder().
		Input(inputPath).
		Map("0:v:0").
		Frames(maxFrames).
		PixFmt(PixFmt).
		Output("rawvideo", "pipe:1").
		Build()

	cmd := exec.CommandContext(ctx, Binary, args...)
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, vaerrors.NewCommandStartError("ffmpeg", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, vaerrors.NewCommandStartError("ffmpeg", err)
	}

	return &FrameReader{
		cmd:       cmd,
		stdout:    stdout,
		stderr:    stderr,
		width:     width,
		height:    height,
		frameSize: width * height * Channels,
		maxFrames: maxFrames,
	}, nil
}

// ReadFrame returns the next decoded frame, or io.EOF after the last one.
func (r *FrameReader) ReadFrame() (watermark.Frame, error) {
	frame := watermark.NewFrame(r.width, r.height, Channels)
	n, err := io.ReadFull(r.stdout, frame.Pix)
	switch {
	case err == io.EOF:
		return watermark.Frame{}, io.EOF
	case err == io.ErrUnexpectedEOF:
		return watermark.Frame{}, vaerrors.NewFFmpegError(fmt.Sprintf("truncated frame %d: got %d of %d bytes", r.frames, n, r.frameSize))
	case err != nil:
		return watermark.Frame{}, vaerrors.NewIOError("failed to read decoded frame", err)
	}
	r.frames++
	return frame, nil
}

// Close waits for the decoder to exit and reports a failed decode. A
// non-zero exit is ignored only once a frame-limited reader has delivered
// every frame it asked for.
func (r *FrameReader) Close() error {
	// Drain so a decoder stopped by -frames:v can flush and exit cleanly.
	_, _ = io.Copy(io.Discard, r.stdout)
	err := r.cmd.Wait()
	if err == nil || (r.maxFrames > 0 && r.frames >= uint64(r.maxFrames)) {
		return nil
	}
	return vaerrors.WrapExecError("ffmpeg", err, tail(r.stderr))
}

// Abort kills the decoder without reading the remaining frames.
func (r *FrameReader) Abort() {
	if r.cmd.Process != nil {
		_ = r.cmd.Process.Kill()
	}
	_ = r.cmd.Wait()
}

// WriterOptions describes a lossless encode of raw frames.
type WriterOptions struct {
	Width     int
	Height    int
	FrameRate string
	Encoder   string
	CodecArgs []string
	OutPixFmt string
	Muxer     string
	// AudioSource, when set, is muxed in as the audio source with streams copied.
	AudioSource string
}

// FrameWriter encodes packed bgr24 frames written to it.
type FrameWriter struct {
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stderr    *bytes.Buffer
	frameSize int
	frames    uint64
	closed    bool
}

// OpenWriter starts an encoder that writes outputPath.
func OpenWriter(ctx context.Context, outputPath string, opts WriterOptions) (*FrameWriter, error) {
	b := NewArgsBuilder().
		Overwrite().
		RawVideoInput(PixFmt, opts.Width, opts.Height, opts.FrameRate)
	if opts.AudioSource != "" {
		b.Input(opts.AudioSource).Map("0:v:0").Map("1:a?").CopyAudio()
	} else {
		b.NoAudio()
	}
	b.VideoCodec(opts.Encoder, opts.CodecArgs...)
	if opts.OutPixFmt != "" {
		b.PixFmt(opts.OutPixFmt)
	}
	args := b.Output(opts.Muxer, outputPath).Build()

	cmd := exec.CommandContext(ctx, Binary, args...)
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, vaerrors.NewCommandStartError("ffmpeg", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, vaerrors.NewCommandStartError("ffmpeg", err)
	}

	return &FrameWriter{
		cmd:       cmd,
		stdin:     stdin,
		stderr:    stderr,
		frameSize: opts.Width * opts.Height * Channels,
	}, nil
}

// WriteFrame sends one frame to the encoder.
func (w *FrameWriter) WriteFrame(frame watermark.Frame) error {
	if len(frame.Pix) != w.frameSize {
		return vaerrors.NewFFmpegError(fmt.Sprintf("frame has %d bytes, encoder expects %d", len(frame.Pix), w.frameSize))
	}
	if _, err := w.stdin.Write(frame.Pix); err != nil {
		// The encoder went away; its exit status explains why.
		w.closed = true
		_ = w.stdin.Close()
		if werr := w.cmd.Wait(); werr != nil {
			return vaerrors.WrapExecError("ffmpeg", werr, tail(w.stderr))
		}
		return vaerrors.NewIOError(fmt.Sprintf("failed to write frame %d to encoder", w.frames), err)
	}
	w.frames++
	return nil
}

// Close finishes the stream and waits for the encoder to exit.
func (w *FrameWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.stdin.Close(); err != nil {
		return vaerrors.NewIOError("failed to close encoder input", err)
	}
	if err := w.cmd.Wait(); err != nil {
		return vaerrors.WrapExecError("ffmpeg", err, tail(w.stderr))
	}
	return nil
}

// Abort kills the encoder without finishing the output.
func (w *FrameWriter) Abort() {
	if w.closed {
		return
	}
	w.closed = true
	_ = w.stdin.Close()
	if w.cmd.Process != nil {
		_ = w.cmd.Process.Kill()
	}
	_ = w.cmd.Wait()
}

func tail(buf *bytes.Buffer) string {
	s := strings.TrimSpace(buf.String())
	if len(s) > maxStderr {
		s = s[len(s)-maxStderr:]
	}
	return s
}
