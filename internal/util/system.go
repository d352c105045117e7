package util

import (
	"bufio"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// SystemInfo describes the host in batch headers.
type SystemInfo struct {
	Hostname    string
	NumCPU      int
	OS          string
	Arch        string
	MemoryBytes uint64 // zero when unknown
}

// GetSystemInfo collects host details. Memory is read from /proc/meminfo
// and left at zero elsewhere.
func GetSystemInfo() SystemInfo {
	info := SystemInfo{
		NumCPU: runtime.NumCPU(),
		OS:     runtime.GOOS,
		Arch:   runtime.GOARCH,
	}
	info.Hostname, _ = os.Hostname()
	if f, err := os.Open("/proc/meminfo"); err == nil {
		info.MemoryBytes = memAvailable(f)
		_ = f.Close()
	}
	return info
}

// memAvailable returns the MemAvailable line of a meminfo listing in bytes.
func memAvailable(r io.Reader) uint64 {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		rest, ok := strings.CutPrefix(sc.Text(), "MemAvailable:")
		if !ok {
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			return 0
		}
		kb, err := strconv.ParseUint(fields[0], 10, 64)
		if err != nil {
			return 0
		}
		return kb * KiB
	}
	return 0
}
