package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	vaerrors "github.com/five82/vidauth/internal/errors"
)

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func baseNames(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}

func TestFindVideoFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "042_processed.mp4")
	touch(t, dir, "007_unedited.MOV")
	touch(t, dir, "042_unedited.mp4")
	touch(t, dir, "wm_042_unedited.mp4")
	touch(t, dir, "notes.txt")
	touch(t, dir, ".hidden.mp4")
	if err := os.Mkdir(filepath.Join(dir, "sub.mp4"), 0o755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"all", Filter{}, []string{"007_unedited.MOV", "042_processed.mp4", "042_unedited.mp4", "wm_042_unedited.mp4"}},
		{"suffix", Filter{StemSuffix: "_unedited"}, []string{"007_unedited.MOV", "042_unedited.mp4", "wm_042_unedited.mp4"}},
		{"suffix and skip", Filter{StemSuffix: "_unedited", SkipPrefix: "wm_"}, []string{"007_unedited.MOV", "042_unedited.mp4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := FindVideoFiles(dir, tt.filter, nil)
			if err != nil {
				t.Fatalf("FindVideoFiles: %v", err)
			}
			if diff := cmp.Diff(tt.want, baseNames(result.Files)); diff != "" {
				t.Errorf("files mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFindVideoFilesNoMatches(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "readme.md")

	_, err := FindVideoFiles(dir, Filter{}, nil)
	if !vaerrors.IsNoFilesFound(err) {
		t.Errorf("expected no-files-found error, got %v", err)
	}
}

func TestFindVideoFilesNotADirectory(t *testing.T) {
	file := touch(t, t.TempDir(), "042_unedited.mp4")
	if _, err := FindVideoFiles(file, Filter{}, nil); !vaerrors.IsKind(err, vaerrors.KindIO) {
		t.Errorf("expected I/O error, got %v", err)
	}
}

func TestResolveInputs(t *testing.T) {
	dir := t.TempDir()
	a := touch(t, dir, "001_unedited.mp4")
	touch(t, dir, "002_unedited.mp4")
	other := touch(t, t.TempDir(), "009_clip.mkv")

	files, err := ResolveInputs([]string{other, dir, a}, Filter{}, nil)
	if err != nil {
		t.Fatalf("ResolveInputs: %v", err)
	}
	want := []string{"009_clip.mkv", "001_unedited.mp4", "002_unedited.mp4"}
	if diff := cmp.Diff(want, baseNames(files)); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}

	if _, err := ResolveInputs([]string{filepath.Join(dir, "missing.mp4")}, Filter{}, nil); err == nil {
		t.Error("expected error for missing input")
	}
}
