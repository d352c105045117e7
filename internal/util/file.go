// Package util provides file, formatting and system helpers.
package util

import (
	"os"
	"path/filepath"
	"strings"
)

// videoExtensions lists the containers ffmpeg can decode to raw frames
// and remux without loss of the first frame.
var videoExtensions = map[string]struct{}{
	".mp4": {}, ".m4v": {}, ".mov": {},
	".mkv": {}, ".webm": {}, ".avi": {},
	".ts": {}, ".m2ts": {}, ".mpg": {}, ".mpeg": {},
}

// IsVideoFile reports whether path is a regular file with a known video
// extension. The check is case-insensitive.
func IsVideoFile(path string) bool {
	if _, ok := videoExtensions[strings.ToLower(filepath.Ext(path))]; !ok {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// FileStem returns the base name of path without its extension.
func FileStem(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}

// FileSize returns the size of path in bytes.
func FileSize(path string) (uint64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return uint64(info.Size()), nil
}

// EnsureDirectory creates path and any missing parents.
func EnsureDirectory(path string) error {
	return os.MkdirAll(path, 0o755)
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
