// Package ffmpeg decodes and encodes raw video frames through FFmpeg pipes.
package ffmpeg

import "fmt"

// ArgsBuilder builds FFmpeg argument lists with method chaining.
type ArgsBuilder struct {
	args []string
}

// NewArgsBuilder creates a builder preloaded with quiet, non-interactive
// global options.
func NewArgsBuilder() *ArgsBuilder {
	return &ArgsBuilder{args: []string{"-hide_banner", "-nostdin", "-v", "error"}}
}

// Overwrite allows FFmpeg to replace an existing output file.
func (b *ArgsBuilder) Overwrite() *ArgsBuilder {
	b.args = append(b.args, "-y")
	return b
}

// Input adds a file input.
func (b *ArgsBuilder) Input(path string) *ArgsBuilder {
	b.args = append(b.args, "-i", path)
	return b
}

// RawVideoInput adds a packed raw video input read from stdin.
func (b *ArgsBuilder) RawVideoInput(pixFmt string, width, height int, rate string) *ArgsBuilder {
	b.args = append(b.args,
		"-f", "rawvideo",
		"-pix_fmt", pixFmt,
		"-s", fmt.Sprintf("%dx%d", width, height),
		"-r", rate,
		"-i", "pipe:0",
	)
	return b
}

// Map selects a stream for the output.
func (b *ArgsBuilder) Map(spec string) *ArgsBuilder {
	b.args = append(b.args, "-map", spec)
	return b
}

// Frames limits the number of video frames written.
func (b *ArgsBuilder) Frames(n int) *ArgsBuilder {
	if n > 0 {
		b.args = append(b.args, "-frames:v", fmt.Sprintf("%d", n))
	}
	return b
}

// VideoCodec sets the video encoder and its options.
func (b *ArgsBuilder) VideoCodec(encoder string, opts ...string) *ArgsBuilder {
	b.args = append(b.args, "-c:v", encoder)
	b.args = append(b.args, opts...)
	return b
}

// CopyAudio copies audio streams without re-encoding.
func (b *ArgsBuilder) CopyAudio() *ArgsBuilder {
	b.args = append(b.args, "-c:a", "copy")
	return b
}

// NoAudio drops audio streams.
func (b *ArgsBuilder) NoAudio() *ArgsBuilder {
	b.args = append(b.args, "-an")
	return b
}

// PixFmt sets the output pixel format.
func (b *ArgsBuilder) PixFmt(pixFmt string) *ArgsBuilder {
	b.args = append(b.args, "-pix_fmt", pixFmt)
	return b
}

// Output adds the output with an explicit muxer. The muxer is always given
// so outputs may be written to paths without a meaningful extension.
func (b *ArgsBuilder) Output(muxer, path string) *ArgsBuilder {
	b.args = append(b.args, "-f", muxer, path)
	return b
}

// Build returns the accumulated argument list.
func (b *ArgsBuilder) Build() []string {
	return append([]string(nil), b.args...)
}
