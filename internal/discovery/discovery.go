// Package discovery finds the video files a batch run should process.
package discovery

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	vaerrors "github.com/five82/vidauth/internal/errors"
	"github.com/five82/vidauth/internal/util"
)

// Filter narrows which video files are picked up from a directory.
type Filter struct {
	// StemSuffix keeps only files whose stem ends with this text,
	// e.g. "_unedited" when sealing originals.
	StemSuffix string
	// SkipPrefix drops files whose name starts with this text,
	// e.g. the watermarked output prefix.
	SkipPrefix string
}

func (f Filter) match(name string) bool {
	if f.SkipPrefix != "" && strings.HasPrefix(name, f.SkipPrefix) {
		return false
	}
	if f.StemSuffix != "" && !strings.HasSuffix(util.FileStem(name), f.StemSuffix) {
		return false
	}
	return true
}

// Result contains the results of file discovery.
type Result struct {
	Files        []string
	SkippedCount int
}

// FindVideoFiles finds video files in the given directory.
// Returns files sorted alphabetically by filename.
func FindVideoFiles(inputDir string, filter Filter, logger *slog.Logger) (*Result, error) {
	info, err := os.Stat(inputDir)
	if err != nil {
		return nil, vaerrors.NewIOError(fmt.Sprintf("directory does not exist: %s", inputDir), err)
	}
	if !info.IsDir() {
		return nil, vaerrors.NewIOError(fmt.Sprintf("%s is not a directory", inputDir), nil)
	}

	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, vaerrors.NewIOError(fmt.Sprintf("cannot read directory %s", inputDir), err)
	}

	result := &Result{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()

		// Skip hidden files
		if strings.HasPrefix(name, ".") {
			continue
		}

		fullPath := filepath.Join(inputDir, name)
		if util.IsVideoFile(fullPath) && filter.match(name) {
			result.Files = append(result.Files, fullPath)
		} else {
			result.SkippedCount++
		}
	}

	if len(result.Files) == 0 {
		return nil, vaerrors.NewNoFilesFoundError(inputDir)
	}

	sortByName(result.Files)

	if logger != nil {
		logDiscoveredFiles(result, logger)
	}

	return result, nil
}

// ResolveInputs expands a mix of file and directory arguments into a list of
// video files. Directories are scanned with filter; files named explicitly
// are taken as-is.
func ResolveInputs(inputs []string, filter Filter, logger *slog.Logger) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil {
			return nil, vaerrors.NewIOError(fmt.Sprintf("input does not exist: %s", input), err)
		}
		if !info.IsDir() {
			add(input)
			continue
		}
		result, err := FindVideoFiles(input, filter, logger)
		if err != nil {
			return nil, err
		}
		for _, f := range result.Files {
			add(f)
		}
	}

	if len(files) == 0 {
		return nil, vaerrors.NewNoFilesFoundError(strings.Join(inputs, ", "))
	}
	return files, nil
}

func sortByName(files []string) {
	sort.Slice(files, func(i, j int) bool {
		return strings.ToLower(filepath.Base(files[i])) < strings.ToLower(filepath.Base(files[j]))
	})
}

// logDiscoveredFiles logs the first 5 discovered files plus a count.
func logDiscoveredFiles(result *Result, logger *slog.Logger) {
	logger.Info("found video files", "count", len(result.Files), "skipped", result.SkippedCount)

	maxToLog := min(5, len(result.Files))
	for i := range maxToLog {
		logger.Debug("discovered", "file", filepath.Base(result.Files[i]))
	}

	if len(result.Files) > 5 {
		logger.Debug("more files discovered", "count", len(result.Files)-5)
	}
}
