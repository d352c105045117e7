package engine

import (
	"fmt"
	"strings"

	"github.com/five82/vidauth/internal/hashing"
	"github.com/five82/vidauth/internal/metadata"
	"github.com/five82/vidauth/internal/util"
	"github.com/five82/vidauth/internal/videoid"
)

// Verdict is the outcome of a verification.
type Verdict string

const (
	Authentic Verdict = "AUTHENTIC"
	Tampered  Verdict = "TAMPERED"
)

// Signals are the four independent checks behind a verdict.
type Signals struct {
	HashMatch      bool `json:"hash_match"`
	MetadataMatch  bool `json:"metadata_match"`
	WatermarkMatch bool `json:"watermark_match"`
	DeviceMismatch bool `json:"device_mismatch"`
}

// Decide returns Authentic only when every signal passes.
func Decide(s Signals) Verdict {
	if s.HashMatch && s.MetadataMatch && s.WatermarkMatch && !s.DeviceMismatch {
		return Authentic
	}
	return Tampered
}

// Step is one named signal result for display.
type Step struct {
	Name    string
	Passed  bool
	Details string
}

// VerdictReport is the full result of verifying one candidate file.
type VerdictReport struct {
	ID            videoid.ID
	File          string
	Signals       Signals
	Verdict       Verdict
	MetadataDiff  []string
	CandidateHash hashing.Digest
	BaselineHash  string
	HashAlgorithm hashing.Algorithm

	baselineMeta  metadata.Record
	candidateMeta metadata.Record
}

// Authentic reports whether the verdict is AUTHENTIC.
func (r *VerdictReport) Authentic() bool {
	return r.Verdict == Authentic
}

// Steps returns the signals as display lines in a fixed order.
func (r *VerdictReport) Steps() []Step {
	hashDetails := "content digest matches baseline"
	if !r.Signals.HashMatch {
		hashDetails = fmt.Sprintf("%s %s, baseline %s", r.HashAlgorithm, util.ShortDigest(string(r.CandidateHash)), util.ShortDigest(r.BaselineHash))
	}

	metaDetails := "all fields equal"
	if !r.Signals.MetadataMatch {
		metaDetails = "changed: " + strings.Join(r.MetadataDiff, ", ")
	}

	wmDetails := "first frame carries the baseline watermark"
	if !r.Signals.WatermarkMatch {
		wmDetails = "watermark missing or altered"
	}

	deviceDetails := "no conflicting device tags"
	if r.Signals.DeviceMismatch {
		deviceDetails = fmt.Sprintf("baseline %s, candidate %s",
			deviceString(r.baselineMeta), deviceString(r.candidateMeta))
	}

	return []Step{
		{Name: "Hash", Passed: r.Signals.HashMatch, Details: hashDetails},
		{Name: "Metadata", Passed: r.Signals.MetadataMatch, Details: metaDetails},
		{Name: "Watermark", Passed: r.Signals.WatermarkMatch, Details: wmDetails},
		{Name: "Device", Passed: !r.Signals.DeviceMismatch, Details: deviceDetails},
	}
}

func deviceString(r metadata.Record) string {
	var parts []string
	if r.DeviceMake != nil {
		parts = append(parts, *r.DeviceMake)
	}
	if r.DeviceModel != nil {
		parts = append(parts, *r.DeviceModel)
	}
	if len(parts) == 0 {
		return "unknown"
	}
	return strings.Join(parts, " ")
}
