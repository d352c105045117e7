// Package ffprobe provides functions for extracting stream geometry using ffprobe.
package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	vaerrors "github.com/five82/vidauth/internal/errors"
)

// StreamInfo describes the first video stream of a file and whether the
// file carries audio.
type StreamInfo struct {
	Width        int
	Height       int
	FrameRate    string // Rational as reported, e.g. "30000/1001"
	FPS          float64
	TotalFrames  uint64 // Zero when the container does not record it
	CodecName    string
	PixFmt       string
	DurationSecs float64
	HasAudio     bool
	AudioCodec   string
}

// FrameBytes returns the size of one packed frame with the given channel count.
func (s *StreamInfo) FrameBytes(channels int) int {
	return s.Width * s.Height * channels
}

// ffprobeOutput represents the JSON output from ffprobe.
type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
}

type ffprobeStream struct {
	CodecType    string `json:"codec_type"`
	CodecName    string `json:"codec_name"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	NbFrames     string `json:"nb_frames"`
	PixFmt       string `json:"pix_fmt"`
	RFrameRate   string `json:"r_frame_rate"`
	AvgFrameRate string `json:"avg_frame_rate"`
}

// runFFprobe executes ffprobe and returns the parsed output.
func runFFprobe(ctx context.Context, inputPath string) (*ffprobeOutput, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		inputPath,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		return nil, vaerrors.WrapExecError("ffprobe", err, strings.TrimSpace(stderr.String()))
	}

	return parseFFprobeOutput(output)
}

// parseFFprobeOutput parses ffprobe JSON output.
func parseFFprobeOutput(data []byte) (*ffprobeOutput, error) {
	var result ffprobeOutput
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, vaerrors.NewJSONParseError("failed to parse ffprobe output", err)
	}
	return &result, nil
}

// GetStreamInfo probes inputPath and returns its video stream properties.
func GetStreamInfo(ctx context.Context, inputPath string) (*StreamInfo, error) {
	probe, err := runFFprobe(ctx, inputPath)
	if err != nil {
		return nil, err
	}
	return extractStreamInfo(probe, inputPath)
}

// extractStreamInfo picks the first video stream out of a probe result.
func extractStreamInfo(probe *ffprobeOutput, inputPath string) (*StreamInfo, error) {
	info := &StreamInfo{}

	if probe.Format.Duration != "" {
		if d, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil {
			info.DurationSecs = d
		}
	}

	var video *ffprobeStream
	for i := range probe.Streams {
		s := &probe.Streams[i]
		switch s.CodecType {
		case "video":
			if video == nil {
				video = s
			}
		case "audio":
			if !info.HasAudio {
				info.HasAudio = true
				info.AudioCodec = s.CodecName
			}
		}
	}

	if video == nil {
		return nil, vaerrors.NewVideoInfoError(fmt.Sprintf("no video stream found in %s", inputPath))
	}
	if video.Width <= 0 || video.Height <= 0 {
		return nil, vaerrors.NewFFprobeParseError(fmt.Sprintf("invalid dimensions in %s: %dx%d", inputPath, video.Width, video.Height))
	}

	info.Width = video.Width
	info.Height = video.Height
	info.CodecName = video.CodecName
	info.PixFmt = video.PixFmt

	rate := video.RFrameRate
	fps, ok := parseRate(rate)
	if !ok {
		rate = video.AvgFrameRate
		fps, ok = parseRate(rate)
	}
	if !ok {
		return nil, vaerrors.NewFFprobeParseError(fmt.Sprintf("no usable frame rate in %s", inputPath))
	}
	info.FrameRate = rate
	info.FPS = fps

	if video.NbFrames != "" {
		if frames, err := strconv.ParseUint(video.NbFrames, 10, 64); err == nil {
			info.TotalFrames = frames
		}
	}
	if info.TotalFrames == 0 && info.DurationSecs > 0 {
		info.TotalFrames = uint64(info.DurationSecs*fps + 0.5)
	}

	return info, nil
}

// parseRate parses an ffprobe rational such as "30000/1001" or "25".
func parseRate(s string) (float64, bool) {
	num, den, found := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	if !found {
		return n, true
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d <= 0 {
		return 0, false
	}
	return n / d, true
}
