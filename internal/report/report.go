// Package report writes batch verification results to JSON and CSV files.
package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/google/renameio/v2"

	"github.com/five82/vidauth/internal/engine"
	vaerrors "github.com/five82/vidauth/internal/errors"
)

// Entry is the report line for one candidate file.
type Entry struct {
	ID string `json:"id"`
	engine.Signals
	Verdict      engine.Verdict `json:"verdict"`
	MetadataDiff []string       `json:"metadata_diff,omitempty"`
}

// Report collects verdicts keyed by candidate filename.
type Report struct {
	entries map[string]Entry
}

// New returns an empty report.
func New() *Report {
	return &Report{entries: make(map[string]Entry)}
}

// Add records a verdict. A later verdict for the same filename replaces
// the earlier one.
func (r *Report) Add(v *engine.VerdictReport) {
	r.entries[filepath.Base(v.File)] = Entry{
		ID:           v.ID.String(),
		Signals:      v.Signals,
		Verdict:      v.Verdict,
		MetadataDiff: v.MetadataDiff,
	}
}

// Len returns the number of entries.
func (r *Report) Len() int {
	return len(r.entries)
}

// Entries returns a copy of the entries keyed by filename.
func (r *Report) Entries() map[string]Entry {
	out := make(map[string]Entry, len(r.entries))
	for k, v := range r.entries {
		out[k] = v
	}
	return out
}

func (r *Report) filenames() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EncodeJSON writes the report as an indented JSON object keyed by filename.
func (r *Report) EncodeJSON(w io.Writer) error {
	data, err := json.MarshalIndent(r.entries, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// csvHeader lists the CSV columns in order.
var csvHeader = []string{
	"file", "id", "verdict",
	"hash_match", "metadata_match", "watermark_match", "device_mismatch",
	"metadata_diff",
}

// EncodeCSV writes one row per file, sorted by filename. Mismatching
// metadata fields are joined with ';'.
func (r *Report) EncodeCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, name := range r.filenames() {
		e := r.entries[name]
		row := []string{
			name,
			e.ID,
			string(e.Verdict),
			strconv.FormatBool(e.HashMatch),
			strconv.FormatBool(e.MetadataMatch),
			strconv.FormatBool(e.WatermarkMatch),
			strconv.FormatBool(e.DeviceMismatch),
			strings.Join(e.MetadataDiff, ";"),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON atomically replaces path with the JSON report.
func (r *Report) WriteJSON(path string) error {
	return writeAtomic(path, r.EncodeJSON)
}

// WriteCSV atomically replaces path with the CSV report.
func (r *Report) WriteCSV(path string) error {
	return writeAtomic(path, r.EncodeCSV)
}

func writeAtomic(path string, encode func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := encode(&buf); err != nil {
		return vaerrors.NewIOError("failed to encode report", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return vaerrors.NewIOError("failed to create report directory", err)
	}

	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return vaerrors.NewIOError("failed to create pending report file", err)
	}
	defer func() { _ = pending.Cleanup() }()

	if _, err := pending.Write(buf.Bytes()); err != nil {
		return vaerrors.NewIOError("failed to write report", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return vaerrors.NewIOError("failed to replace report", err)
	}
	return nil
}
