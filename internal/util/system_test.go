package util

import (
	"runtime"
	"strings"
	"testing"
)

func TestGetSystemInfo(t *testing.T) {
	info := GetSystemInfo()
	if info.NumCPU != runtime.NumCPU() {
		t.Errorf("NumCPU = %d, want %d", info.NumCPU, runtime.NumCPU())
	}
	if info.OS != runtime.GOOS || info.Arch != runtime.GOARCH {
		t.Errorf("platform = %s/%s", info.OS, info.Arch)
	}
	if runtime.GOOS != "linux" && info.MemoryBytes != 0 {
		t.Errorf("MemoryBytes = %d on %s, want 0", info.MemoryBytes, runtime.GOOS)
	}
}

func TestMemAvailable(t *testing.T) {
	const listing = `MemTotal:       16311448 kB
MemFree:         1022428 kB
MemAvailable:    8123456 kB
Buffers:          402112 kB
`
	if got := memAvailable(strings.NewReader(listing)); got != 8123456*KiB {
		t.Errorf("memAvailable() = %d", got)
	}
	if got := memAvailable(strings.NewReader("MemTotal: 1 kB\n")); got != 0 {
		t.Errorf("missing field = %d, want 0", got)
	}
	if got := memAvailable(strings.NewReader("MemAvailable: lots kB\n")); got != 0 {
		t.Errorf("malformed field = %d, want 0", got)
	}
}
