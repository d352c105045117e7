package engine

import (
	"context"

	"github.com/five82/vidauth/internal/config"
	"github.com/five82/vidauth/internal/ffmpeg"
	"github.com/five82/vidauth/internal/ffprobe"
	"github.com/five82/vidauth/internal/watermark"
)

// FrameReader yields decoded frames until io.EOF.
type FrameReader interface {
	ReadFrame() (watermark.Frame, error)
	Close() error
	Abort()
}

// FrameWriter encodes frames into an output file.
type FrameWriter interface {
	WriteFrame(frame watermark.Frame) error
	Close() error
	Abort()
}

// FrameSource probes and decodes videos.
type FrameSource interface {
	Probe(ctx context.Context, path string) (*ffprobe.StreamInfo, error)
	// Open decodes path. A positive maxFrames stops after that many frames.
	Open(ctx context.Context, path string, info *ffprobe.StreamInfo, maxFrames int) (FrameReader, error)
}

// FrameSink creates encoders for sealed copies. audioSource, when set, is
// the file whose audio streams are carried over unchanged.
type FrameSink interface {
	Create(ctx context.Context, path string, info *ffprobe.StreamInfo, audioSource string) (FrameWriter, error)
}

// FFmpegSource decodes with ffmpeg and probes with ffprobe.
type FFmpegSource struct{}

func (FFmpegSource) Probe(ctx context.Context, path string) (*ffprobe.StreamInfo, error) {
	return ffprobe.GetStreamInfo(ctx, path)
}

func (FFmpegSource) Open(ctx context.Context, path string, info *ffprobe.StreamInfo, maxFrames int) (FrameReader, error) {
	return ffmpeg.OpenReader(ctx, path, info.Width, info.Height, maxFrames)
}

// FFmpegSink encodes sealed copies with a lossless ffmpeg codec.
type FFmpegSink struct {
	Codec config.Codec
}

func (s FFmpegSink) Create(ctx context.Context, path string, info *ffprobe.StreamInfo, audioSource string) (FrameWriter, error) {
	cv := config.GetCodecValues(s.Codec)
	if !info.HasAudio {
		audioSource = ""
	}
	return ffmpeg.OpenWriter(ctx, path, ffmpeg.WriterOptions{
		Width:       info.Width,
		Height:      info.Height,
		FrameRate:   info.FrameRate,
		Encoder:     cv.Encoder,
		CodecArgs:   cv.Args,
		OutPixFmt:   cv.PixFmt,
		Muxer:       cv.Muxer,
		AudioSource: audioSource,
	})
}
