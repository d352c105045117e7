// Package config provides configuration types and defaults for vidauth.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Default constants
const (
	// DefaultStorePath is where baseline records are kept.
	DefaultStorePath = "baselines/baseline_data.json"

	// DefaultOutputDir receives watermarked copies and reports.
	DefaultOutputDir = "results"

	// DefaultReportName is the batch verification report file name.
	DefaultReportName = "verification_report.json"

	// DefaultTemplate is the watermark text template.
	DefaultTemplate = "VIDWM_{filename}"

	// DefaultOutputPrefix is prepended to the input filename for sealed copies.
	DefaultOutputPrefix = "wm_"

	// DefaultBlindMaxChars is the number of characters read by blind extraction.
	DefaultBlindMaxChars = 256

	// MaxBlindMaxChars bounds blind extraction reads.
	MaxBlindMaxChars = 1 << 16

	// DefaultHashAlgorithm is the content digest algorithm.
	DefaultHashAlgorithm = "sha256"
)

// Codec selects the lossless encoder used to write sealed copies. The
// watermark lives in pixel LSBs, so only lossless RGB encoders are offered.
type Codec string

const (
	CodecX264RGB Codec = "libx264rgb"
	CodecFFV1    Codec = "ffv1"
)

// ParseCodec parses a string into a Codec.
func ParseCodec(s string) (Codec, error) {
	switch strings.ToLower(s) {
	case "libx264rgb", "x264rgb":
		return CodecX264RGB, nil
	case "ffv1":
		return CodecFFV1, nil
	default:
		return "", fmt.Errorf("%w: '%s', valid options: libx264rgb, ffv1", ErrInvalidCodec, s)
	}
}

// String returns the string representation of the codec.
func (c Codec) String() string {
	return string(c)
}

// CodecValues contains the encoder settings bundled with a codec.
type CodecValues struct {
	Encoder   string
	Args      []string
	PixFmt    string
	Muxer     string
	Extension string // Empty keeps the input extension
}

// GetCodecValues returns the values for a given codec.
func GetCodecValues(c Codec) CodecValues {
	switch c {
	case CodecFFV1:
		return CodecValues{
			Encoder:   "ffv1",
			Args:      []string{"-level", "3"},
			PixFmt:    "bgr0",
			Muxer:     "matroska",
			Extension: ".mkv",
		}
	default:
		return CodecValues{
			Encoder: "libx264rgb",
			Args:    []string{"-qp", "0", "-preset", "ultrafast"},
			PixFmt:  "bgr24",
			Muxer:   "mp4",
		}
	}
}

// Subject selects which file a store run fingerprints.
type Subject string

const (
	// SubjectInput records the hash and metadata of the original file.
	SubjectInput Subject = "input"
	// SubjectOutput records the hash and metadata of the sealed copy.
	SubjectOutput Subject = "output"
)

// ProbeMode selects the metadata extractor.
type ProbeMode string

const (
	ProbeAuto      ProbeMode = "auto"
	ProbeMediaInfo ProbeMode = "mediainfo"
	ProbeContainer ProbeMode = "container"
)

// WatermarkConfig controls watermark text and sealed copy output.
type WatermarkConfig struct {
	Template      string `yaml:"template"`
	BlindMaxChars int    `yaml:"blind_max_chars"`
	Codec         Codec  `yaml:"codec"`
	CopyAudio     bool   `yaml:"copy_audio"`
	OutputPrefix  string `yaml:"output_prefix"`
}

// MetadataConfig controls metadata extraction.
type MetadataConfig struct {
	Probe ProbeMode `yaml:"probe"`
}

// ReportConfig controls batch verification reports.
type ReportConfig struct {
	Path    string `yaml:"path"`
	CSVPath string `yaml:"csv_path"`
}

// Config holds all configuration for baseline storage and verification.
type Config struct {
	StorePath string `yaml:"store_path"`
	OutputDir string `yaml:"output_dir"`
	LogDir    string `yaml:"log_dir"`  // Optional, defaults to <OutputDir>/logs
	TempDir   string `yaml:"temp_dir"` // Pending sealed copies, defaults to OutputDir

	HashAlgorithm string  `yaml:"hash_algorithm"`
	RecordSubject Subject `yaml:"record_subject"`

	Metadata  MetadataConfig  `yaml:"metadata"`
	Watermark WatermarkConfig `yaml:"watermark"`
	Report    ReportConfig    `yaml:"report"`
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		StorePath:     DefaultStorePath,
		OutputDir:     DefaultOutputDir,
		HashAlgorithm: DefaultHashAlgorithm,
		RecordSubject: SubjectInput,
		Metadata: MetadataConfig{
			Probe: ProbeAuto,
		},
		Watermark: WatermarkConfig{
			Template:      DefaultTemplate,
			BlindMaxChars: DefaultBlindMaxChars,
			Codec:         CodecX264RGB,
			CopyAudio:     true,
			OutputPrefix:  DefaultOutputPrefix,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.StorePath == "" {
		return fmt.Errorf("%w: store_path", ErrMissingPath)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("%w: output_dir", ErrMissingPath)
	}

	switch strings.ToLower(c.HashAlgorithm) {
	case "sha256", "blake3":
	default:
		return fmt.Errorf("%w: '%s', valid options: sha256, blake3", ErrInvalidHashAlgorithm, c.HashAlgorithm)
	}

	switch c.RecordSubject {
	case SubjectInput, SubjectOutput:
	default:
		return fmt.Errorf("%w: '%s', valid options: input, output", ErrInvalidSubject, c.RecordSubject)
	}

	switch c.Metadata.Probe {
	case ProbeAuto, ProbeMediaInfo, ProbeContainer:
	default:
		return fmt.Errorf("%w: '%s', valid options: auto, mediainfo, container", ErrInvalidProbe, c.Metadata.Probe)
	}

	if _, err := ParseCodec(string(c.Watermark.Codec)); err != nil {
		return err
	}

	if strings.TrimSpace(c.Watermark.Template) == "" {
		return fmt.Errorf("%w: template is empty", ErrInvalidTemplate)
	}

	if c.Watermark.BlindMaxChars < 1 || c.Watermark.BlindMaxChars > MaxBlindMaxChars {
		return fmt.Errorf("%w: must be 1-%d, got %d", ErrInvalidMaxChars, MaxBlindMaxChars, c.Watermark.BlindMaxChars)
	}

	return nil
}

// WatermarkText expands the watermark template for a video. Supported
// placeholders are {id}, {filename} and {stem}.
func (c *Config) WatermarkText(id, filename string) string {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	r := strings.NewReplacer("{id}", id, "{filename}", filename, "{stem}", stem)
	return r.Replace(c.Watermark.Template)
}

// OutputPath returns where the sealed copy of inputPath is written.
func (c *Config) OutputPath(inputPath string) string {
	name := c.Watermark.OutputPrefix + filepath.Base(inputPath)
	if ext := GetCodecValues(c.Watermark.Codec).Extension; ext != "" {
		name = strings.TrimSuffix(name, filepath.Ext(name)) + ext
	}
	return filepath.Join(c.OutputDir, name)
}

// GetLogDir returns the log directory, falling back to <OutputDir>/logs.
func (c *Config) GetLogDir() string {
	if c.LogDir != "" {
		return c.LogDir
	}
	return filepath.Join(c.OutputDir, "logs")
}

// GetTempDir returns the temp directory, falling back to OutputDir if not set.
func (c *Config) GetTempDir() string {
	if c.TempDir != "" {
		return c.TempDir
	}
	return c.OutputDir
}

// GetReportPath returns the JSON report path, falling back to
// <OutputDir>/verification_report.json.
func (c *Config) GetReportPath() string {
	if c.Report.Path != "" {
		return c.Report.Path
	}
	return filepath.Join(c.OutputDir, DefaultReportName)
}
