package ffmpeg

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// ErrFFmpegNotFound is returned when no FFmpeg binary can be located.
var ErrFFmpegNotFound = errors.New("ffmpeg not found")

// Binary is the FFmpeg executable used by readers and writers. It is
// resolved by Locate and may be overridden before use.
var Binary = "ffmpeg"

// Locate resolves the FFmpeg binary, preferring FFMPEG_PATH over PATH.
func Locate() (string, error) {
	if envPath := os.Getenv("FFMPEG_PATH"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
		return "", fmt.Errorf("%w: FFMPEG_PATH %s not found", ErrFFmpegNotFound, envPath)
	}

	execName := "ffmpeg"
	if runtime.GOOS == "windows" {
		execName = "ffmpeg.exe"
	}
	path, err := exec.LookPath(execName)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFFmpegNotFound, err)
	}
	return path, nil
}
