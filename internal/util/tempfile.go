package util

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// MinFreeSpace is the free space below which CheckDiskSpace warns.
const MinFreeSpace = 1 * GiB

// EnsureDirectoryWritable checks that path is an existing directory that
// accepts new files.
func EnsureDirectoryWritable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}

	f, err := os.CreateTemp(path, ".vidauth_write_test_")
	if err != nil {
		return fmt.Errorf("directory %s is not writable: %w", path, err)
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

// CleanupStaleTempFiles removes files in dir whose names start with prefix
// and that are older than maxAge. A missing directory is not an error.
func CleanupStaleTempFiles(dir, prefix string, maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}

// CheckDiskSpace returns the free space at path and logs a warning through
// logger when it is below MinFreeSpace.
func CheckDiskSpace(path string, logger func(format string, args ...any)) uint64 {
	free := GetAvailableSpace(path)
	if logger != nil && free > 0 && free < MinFreeSpace {
		logger("low disk space at %s: %s available", path, FormatBytes(free))
	}
	return free
}

// HasSpaceFor reports whether path has at least need bytes free. Unknown
// free space counts as enough.
func HasSpaceFor(path string, need uint64) bool {
	free := GetAvailableSpace(path)
	return free == 0 || free >= need
}
