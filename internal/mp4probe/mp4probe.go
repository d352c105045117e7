// Package mp4probe reads container metadata from ISO-BMFF files without
// external tools. It backs metadata extraction when MediaInfo is not
// installed.
package mp4probe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Eyevinn/mp4ff/mp4"

	vaerrors "github.com/five82/vidauth/internal/errors"
	"github.com/five82/vidauth/internal/metadata"
)

// mp4Epoch is 1904-01-01 00:00:00 UTC, the origin of mvhd timestamps.
var mp4Epoch = time.Date(1904, time.January, 1, 0, 0, 0, 0, time.UTC)

// dateLayout matches the date strings MediaInfo emits.
const dateLayout = "2006-01-02 15:04:05 UTC"

var supportedExtensions = map[string]bool{
	".mp4": true,
	".m4v": true,
	".mov": true,
	".3gp": true,
}

// Supports reports whether path has an ISO-BMFF extension.
func Supports(path string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(path))]
}

// Prober implements metadata.Prober using the movie header box.
type Prober struct{}

// Probe decodes the container structure of path and builds a record from
// the ftyp and mvhd boxes. Device and software tags are not read.
func (Prober) Probe(ctx context.Context, path string) (metadata.Record, error) {
	if err := ctx.Err(); err != nil {
		return metadata.Record{}, err
	}
	if !Supports(path) {
		return metadata.Record{}, vaerrors.NewVideoInfoError(fmt.Sprintf("container probe does not support %s", filepath.Ext(path)))
	}

	f, err := os.Open(path)
	if err != nil {
		return metadata.Record{}, vaerrors.NewIOError("failed to open file for container probe", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return metadata.Record{}, vaerrors.NewIOError("failed to stat file", err)
	}

	mp4File, err := decode(f)
	if err != nil {
		return metadata.Record{}, vaerrors.NewVideoInfoError(fmt.Sprintf("failed to decode MP4 structure of %s: %v", path, err))
	}

	return fromFile(mp4File, info.Size())
}

// decode parses the box tree. mp4ff panics on some malformed trees, such
// as a moov without a trak, so panics are returned as errors.
func decode(f *os.File) (mp4File *mp4.File, err error) {
	defer func() {
		if r := recover(); r != nil {
			mp4File, err = nil, fmt.Errorf("malformed box structure: %v", r)
		}
	}()
	return mp4.DecodeFile(f, mp4.WithDecodeMode(mp4.DecModeLazyMdat))
}

func fromFile(mp4File *mp4.File, size int64) (metadata.Record, error) {
	moov := mp4File.Moov
	if moov == nil && mp4File.IsFragmented() && mp4File.Init != nil {
		moov = mp4File.Init.Moov
	}
	if moov == nil || moov.Mvhd == nil {
		return metadata.Record{}, vaerrors.NewVideoInfoError("no movie header found")
	}

	rec := metadata.Record{
		Format:   metadata.String("MPEG-4"),
		FileSize: metadata.Int(size),
	}

	mvhd := moov.Mvhd
	if mvhd.Timescale > 0 && mvhd.Duration > 0 {
		seconds := float64(mvhd.Duration) / float64(mvhd.Timescale)
		rec.Duration = metadata.Float(seconds)
		rec.OverallBitRate = metadata.Int(int64(float64(size) * 8 / seconds))
	}
	rec.EncodedDate = formatMP4Time(mvhd.CreationTime)
	rec.TaggedDate = formatMP4Time(mvhd.ModificationTime)

	return rec, nil
}

// formatMP4Time converts seconds since the MP4 epoch. Zero means unset.
func formatMP4Time(secs uint64) *string {
	if secs == 0 {
		return nil
	}
	t := mp4Epoch.Add(time.Duration(secs) * time.Second)
	return metadata.String(t.Format(dateLayout))
}
