package util

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"
)

func TestEnsureDirectoryWritable(t *testing.T) {
	dir := t.TempDir()
	if err := EnsureDirectoryWritable(dir); err != nil {
		t.Fatalf("writable dir: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("probe file left behind: %v", entries)
	}

	if err := EnsureDirectoryWritable(filepath.Join(dir, "absent")); err == nil {
		t.Error("missing directory accepted")
	}

	store := filepath.Join(dir, "baselines.json")
	if err := os.WriteFile(store, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := EnsureDirectoryWritable(store); err == nil {
		t.Error("regular file accepted as directory")
	}
}

func TestCleanupStaleTempFilesRemovesOnlyOldPendingCopies(t *testing.T) {
	dir := t.TempDir()
	old := time.Now().Add(-2 * time.Hour)

	create := func(name string, mtime time.Time) {
		t.Helper()
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte("frame"), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := os.Chtimes(p, mtime, mtime); err != nil {
			t.Fatal(err)
		}
	}
	create(".wm_001.mp4123456", old)
	create(".wm_002.mp4654321", old)
	create(".wm_003.mp4999999", time.Now())
	create("wm_001.mp4", old)
	if err := os.Mkdir(filepath.Join(dir, ".wm_dir"), 0o755); err != nil {
		t.Fatal(err)
	}

	removed, err := CleanupStaleTempFiles(dir, ".wm_", time.Hour)
	if err != nil {
		t.Fatalf("CleanupStaleTempFiles: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}

	var left []string
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		left = append(left, e.Name())
	}
	sort.Strings(left)
	want := []string{".wm_003.mp4999999", ".wm_dir", "wm_001.mp4"}
	if len(left) != len(want) {
		t.Fatalf("remaining = %v, want %v", left, want)
	}
	for i := range want {
		if left[i] != want[i] {
			t.Errorf("remaining = %v, want %v", left, want)
			break
		}
	}
}

func TestCleanupStaleTempFilesMissingDir(t *testing.T) {
	removed, err := CleanupStaleTempFiles(filepath.Join(t.TempDir(), "never-created"), ".wm_", 0)
	if err != nil || removed != 0 {
		t.Errorf("CleanupStaleTempFiles() = %d, %v; want 0, nil", removed, err)
	}
}

func TestDiskSpaceHelpers(t *testing.T) {
	dir := t.TempDir()
	if GetAvailableSpace(filepath.Join(dir, "absent")) != 0 {
		t.Error("missing path should report 0 free bytes")
	}

	var warned bool
	free := CheckDiskSpace(dir, func(string, ...any) { warned = true })
	if free > 0 && free >= MinFreeSpace && warned {
		t.Error("warned despite enough free space")
	}

	if !HasSpaceFor(dir, 1) {
		t.Error("expected room for a single byte")
	}
	if free > 0 && HasSpaceFor(dir, free*2) {
		t.Error("expected no room for twice the free space")
	}
}
