//go:build !(linux || darwin || freebsd)

package util

// GetAvailableSpace is not implemented on this platform and returns 0.
func GetAvailableSpace(path string) uint64 {
	return 0
}
