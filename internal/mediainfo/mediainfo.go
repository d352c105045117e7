// Package mediainfo extracts normalized container metadata using MediaInfo.
package mediainfo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	vaerrors "github.com/five82/vidauth/internal/errors"
	"github.com/five82/vidauth/internal/metadata"
)

// GeneralTrack contains the container-level fields of a MediaInfo report.
type GeneralTrack struct {
	Format             string `json:"Format"`
	Duration           string `json:"Duration"`
	FileSize           string `json:"FileSize"`
	OverallBitRate     string `json:"OverallBitRate"`
	EncodedDate        string `json:"Encoded_Date"`
	TaggedDate         string `json:"Tagged_Date"`
	EncodedApplication string `json:"Encoded_Application"`
	Make               string `json:"Make"`
	Model              string `json:"Model"`
	// Extra holds vendor tags such as com_apple_quicktime_make.
	Extra map[string]json.RawMessage `json:"extra"`
}

// Track is one MediaInfo track. Only General tracks are decoded; the
// other track types keep just their type.
type Track struct {
	Type    string `json:"@type"`
	General GeneralTrack
}

// UnmarshalJSON implements custom JSON unmarshaling for Track.
func (t *Track) UnmarshalJSON(data []byte) error {
	// First, get the track type
	var typeOnly struct {
		Type string `json:"@type"`
	}
	if err := json.Unmarshal(data, &typeOnly); err != nil {
		return err
	}
	t.Type = typeOnly.Type

	if t.Type != "General" {
		return nil
	}
	return json.Unmarshal(data, &t.General)
}

// Media contains the track array.
type Media struct {
	Track []Track `json:"track"`
}

// Response is the root MediaInfo response structure.
type Response struct {
	Media Media `json:"media"`
}

// General returns the General track, or nil when the report has none.
func (r *Response) General() *GeneralTrack {
	for i := range r.Media.Track {
		if r.Media.Track[i].Type == "General" {
			return &r.Media.Track[i].General
		}
	}
	return nil
}

// IsAvailable checks if MediaInfo is available on the system.
func IsAvailable() bool {
	cmd := exec.Command("mediainfo", "--Version")
	err := cmd.Run()
	return err == nil
}

// GetMediaInfo runs MediaInfo and returns parsed output.
func GetMediaInfo(ctx context.Context, inputPath string) (*Response, error) {
	cmd := exec.CommandContext(ctx, "mediainfo", "--Output=JSON", inputPath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		return nil, vaerrors.WrapExecError("mediainfo", err, strings.TrimSpace(stderr.String()))
	}

	return parseMediaInfoOutput(output)
}

// parseMediaInfoOutput parses MediaInfo JSON output into the Response structure.
func parseMediaInfoOutput(data []byte) (*Response, error) {
	var result Response
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, vaerrors.NewJSONParseError("failed to parse mediainfo output", err)
	}

	return &result, nil
}

// Normalize maps the General track onto the allow-listed metadata record.
// Empty values and unparsable numbers are left unset.
func Normalize(g *GeneralTrack) metadata.Record {
	if g == nil {
		return metadata.Record{}
	}

	return metadata.Record{
		Format:         metadata.String(strings.TrimSpace(g.Format)),
		Duration:       parseFloat(g.Duration),
		FileSize:       parseInt(g.FileSize),
		OverallBitRate: parseInt(g.OverallBitRate),
		EncodedDate:    metadata.String(strings.TrimSpace(g.EncodedDate)),
		TaggedDate:     metadata.String(strings.TrimSpace(g.TaggedDate)),
		DeviceMake:     metadata.String(firstNonEmpty(g.extra("com_apple_quicktime_make"), g.Make)),
		DeviceModel:    metadata.String(firstNonEmpty(g.extra("com_apple_quicktime_model"), g.Model)),
		Software:       metadata.String(firstNonEmpty(g.EncodedApplication, g.extra("com_apple_quicktime_software"))),
	}
}

// extra returns a vendor tag as a string. Non-string values are ignored.
func (g *GeneralTrack) extra(key string) string {
	raw, ok := g.Extra[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// Prober implements metadata.Prober by running MediaInfo.
type Prober struct{}

// Probe runs MediaInfo on path and normalizes its General track.
func (Prober) Probe(ctx context.Context, path string) (metadata.Record, error) {
	resp, err := GetMediaInfo(ctx, path)
	if err != nil {
		return metadata.Record{}, err
	}
	g := resp.General()
	if g == nil {
		return metadata.Record{}, vaerrors.NewVideoInfoError(fmt.Sprintf("mediainfo reported no General track for %s", path))
	}
	return Normalize(g), nil
}

func parseFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseInt(s string) *int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// Some builds report bitrates with a fractional part.
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return nil
		}
		v = int64(f)
	}
	return &v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
