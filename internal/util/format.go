package util

import (
	"fmt"
	"time"
)

const (
	KiB = 1 << 10
	MiB = 1 << 20
	GiB = 1 << 30
)

var byteUnits = []struct {
	size uint64
	name string
}{
	{GiB, "GiB"},
	{MiB, "MiB"},
	{KiB, "KiB"},
}

// FormatBytes renders n with the largest binary unit that keeps the value
// at or above one, using two decimals.
func FormatBytes(n uint64) string {
	for _, u := range byteUnits {
		if n >= u.size {
			return fmt.Sprintf("%.2f %s", float64(n)/float64(u.size), u.name)
		}
	}
	return fmt.Sprintf("%d B", n)
}

// FormatDuration renders d as HH:MM:SS, truncating fractional seconds.
// Negative durations, such as an ETA that is not known yet, print as
// placeholders.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		return "--:--:--"
	}
	s := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, s/60%60, s%60)
}

// SecondsToDuration converts a probe duration in seconds. NaN and negative
// inputs map to -1 so FormatDuration prints placeholders.
func SecondsToDuration(secs float64) time.Duration {
	if secs != secs || secs < 0 {
		return -1
	}
	return time.Duration(secs * float64(time.Second))
}

// ShortDigest truncates a hex digest for display.
func ShortDigest(hex string) string {
	const keep = 12
	if len(hex) <= keep {
		return hex
	}
	return hex[:keep]
}
