// Package videoid derives the identifier that keys baseline records.
package videoid

import (
	"path/filepath"
	"regexp"
	"strings"

	vaerrors "github.com/five82/vidauth/internal/errors"
)

// MinWidth is the minimum number of digits in a derived ID.
const MinWidth = 3

var digitsRE = regexp.MustCompile(`[0-9]+`)

// ID identifies a video across its original and candidate copies.
type ID string

// Derive returns the first run of ASCII digits in the file name of path,
// left-padded with zeros to MinWidth. Parent directories and the
// extension are ignored, so "clip.mp4" has no ID. Runs longer than
// MinWidth are kept unchanged.
func Derive(path string) (ID, error) {
	base := filepath.Base(path)
	run := digitsRE.FindString(strings.TrimSuffix(base, filepath.Ext(base)))
	if run == "" {
		return "", vaerrors.NewUnidentifiableVideoError(base)
	}
	if pad := MinWidth - len(run); pad > 0 {
		run = strings.Repeat("0", pad) + run
	}
	return ID(run), nil
}

// String returns the ID as a plain string.
func (id ID) String() string {
	return string(id)
}
