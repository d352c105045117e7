// Package metadata defines the normalized container metadata record used
// for baseline comparison.
package metadata

import (
	"context"
	"strconv"
)

// Record is the allow-listed subset of container metadata. A nil field
// means the source did not provide it. Volatile values such as the file
// path or modification time are never part of a Record.
type Record struct {
	Format         *string  `json:"format,omitempty"`
	Duration       *float64 `json:"duration,omitempty"`
	FileSize       *int64   `json:"file_size,omitempty"`
	OverallBitRate *int64   `json:"overall_bit_rate,omitempty"`
	EncodedDate    *string  `json:"encoded_date,omitempty"`
	TaggedDate     *string  `json:"tagged_date,omitempty"`
	DeviceMake     *string  `json:"device_make,omitempty"`
	DeviceModel    *string  `json:"device_model,omitempty"`
	Software       *string  `json:"software,omitempty"`
}

// Prober extracts a Record from a media file.
type Prober interface {
	Probe(ctx context.Context, path string) (Record, error)
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(ctx context.Context, path string) (Record, error)

// Probe calls f.
func (f ProberFunc) Probe(ctx context.Context, path string) (Record, error) {
	return f(ctx, path)
}

// String returns a pointer to s, or nil when s is empty.
func String(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int64) *int64 { return &v }

// Field is one named record value in display form.
type Field struct {
	Name  string
	Set   bool
	Value string
}

// Fields lists every record field in declaration order.
func (r Record) Fields() []Field {
	return []Field{
		strField("format", r.Format),
		floatField("duration", r.Duration),
		intField("file_size", r.FileSize),
		intField("overall_bit_rate", r.OverallBitRate),
		strField("encoded_date", r.EncodedDate),
		strField("tagged_date", r.TaggedDate),
		strField("device_make", r.DeviceMake),
		strField("device_model", r.DeviceModel),
		strField("software", r.Software),
	}
}

// Empty reports whether no field is set.
func (r Record) Empty() bool {
	for _, f := range r.Fields() {
		if f.Set {
			return false
		}
	}
	return true
}

func strField(name string, v *string) Field {
	if v == nil {
		return Field{Name: name}
	}
	return Field{Name: name, Set: true, Value: *v}
}

func floatField(name string, v *float64) Field {
	if v == nil {
		return Field{Name: name}
	}
	return Field{Name: name, Set: true, Value: strconv.FormatFloat(*v, 'g', -1, 64)}
}

func intField(name string, v *int64) Field {
	if v == nil {
		return Field{Name: name}
	}
	return Field{Name: name, Set: true, Value: strconv.FormatInt(*v, 10)}
}
