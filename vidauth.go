// Package vidauth provides a Go library for sealing videos against a
// recorded baseline and verifying candidates against it.
//
// A stored baseline holds a content digest, normalized container metadata
// and the text embedded in the least significant bits of the first frame.
// Verification recomputes all three and reports AUTHENTIC only when every
// signal matches and the device tags agree.
//
// Basic usage:
//
//	auth, err := vidauth.New(
//	    vidauth.WithStorePath("baselines/baseline_data.json"),
//	    vidauth.WithOutputDir("results"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	msg, err := auth.StoreBaseline(ctx, "videos/042_unedited.mp4")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(msg)
//
//	report, err := auth.VerifyAgainstBaseline(ctx, "incoming/042_processed.mp4")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(report.Verdict)
package vidauth

import (
	"context"
	"log/slog"

	"github.com/five82/vidauth/internal/config"
	"github.com/five82/vidauth/internal/discovery"
	"github.com/five82/vidauth/internal/engine"
	vaerrors "github.com/five82/vidauth/internal/errors"
	"github.com/five82/vidauth/internal/metadata"
	"github.com/five82/vidauth/internal/processing"
	"github.com/five82/vidauth/internal/reporter"
)

// Re-exported types
type (
	Config        = config.Config
	Subject       = config.Subject
	Verdict       = engine.Verdict
	Signals       = engine.Signals
	VerdictReport = engine.VerdictReport
	StoreResult   = engine.StoreResult
	Inspection    = engine.Inspection
	BatchResult   = processing.BatchResult
	FileResult    = processing.FileResult
	Reporter      = reporter.Reporter
	FrameSource   = engine.FrameSource
	FrameSink     = engine.FrameSink
	Metadata      = metadata.Record
	Prober        = metadata.Prober
)

const (
	Authentic = engine.Authentic
	Tampered  = engine.Tampered

	SubjectInput  = config.SubjectInput
	SubjectOutput = config.SubjectOutput
)

// LoadConfig reads a YAML configuration file over the defaults.
func LoadConfig(path string) (*Config, error) {
	return config.LoadFile(path)
}

// Authenticator is the main entry point for storing and verifying videos.
type Authenticator struct {
	config *config.Config
	engine *engine.Engine
	runner *processing.Runner
}

type settings struct {
	cfg        *config.Config
	engineOpts []engine.Option
	logger     *slog.Logger
	reporter   reporter.Reporter
}

// Option configures the authenticator.
type Option func(*settings)

// New creates an Authenticator with the given options applied over the
// default configuration.
func New(opts ...Option) (*Authenticator, error) {
	s := &settings{cfg: config.NewConfig()}
	for _, opt := range opts {
		opt(s)
	}

	engineOpts := s.engineOpts
	if s.logger != nil {
		engineOpts = append(engineOpts, engine.WithLogger(s.logger))
	}
	if s.reporter != nil {
		engineOpts = append(engineOpts, engine.WithReporter(s.reporter))
	}

	eng, err := engine.New(s.cfg, engineOpts...)
	if err != nil {
		return nil, err
	}
	return &Authenticator{
		config: s.cfg,
		engine: eng,
		runner: processing.NewRunner(eng, s.reporter, s.logger),
	}, nil
}

// WithConfig replaces the default configuration. Options applied after it
// modify the given value.
func WithConfig(cfg *Config) Option {
	return func(s *settings) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithStorePath sets the baseline store file.
func WithStorePath(path string) Option {
	return func(s *settings) {
		s.cfg.StorePath = path
	}
}

// WithOutputDir sets where sealed copies and reports are written.
func WithOutputDir(dir string) Option {
	return func(s *settings) {
		s.cfg.OutputDir = dir
	}
}

// WithHashAlgorithm selects the content digest for new baselines
// ("sha256" or "blake3").
func WithHashAlgorithm(name string) Option {
	return func(s *settings) {
		s.cfg.HashAlgorithm = name
	}
}

// WithRecordSubject selects whether a baseline fingerprints the original
// file or the sealed copy.
func WithRecordSubject(subject Subject) Option {
	return func(s *settings) {
		s.cfg.RecordSubject = subject
	}
}

// WithWatermarkTemplate sets the watermark text template. Supported
// placeholders are {id}, {filename} and {stem}.
func WithWatermarkTemplate(template string) Option {
	return func(s *settings) {
		s.cfg.Watermark.Template = template
	}
}

// WithLogger sets the structured logger. Logs are discarded by default.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithReporter receives progress and result events.
func WithReporter(rep Reporter) Option {
	return func(s *settings) {
		s.reporter = rep
	}
}

// WithMedia replaces the ffmpeg based frame source and sink.
func WithMedia(source FrameSource, sink FrameSink) Option {
	return func(s *settings) {
		s.engineOpts = append(s.engineOpts, engine.WithFrameSource(source), engine.WithFrameSink(sink))
	}
}

// WithMetadataProber replaces the MediaInfo or container metadata prober.
func WithMetadataProber(p Prober) Option {
	return func(s *settings) {
		s.engineOpts = append(s.engineOpts, engine.WithProber(p))
	}
}

// Config returns the configuration the authenticator runs with.
func (a *Authenticator) Config() *Config {
	return a.config
}

// StoreBaseline seals path and records its baseline, returning a
// confirmation message naming the video ID.
func (a *Authenticator) StoreBaseline(ctx context.Context, path string) (string, error) {
	res, err := a.Store(ctx, path)
	if err != nil {
		return "", err
	}
	return res.Message(), nil
}

// Store seals path and records its baseline.
func (a *Authenticator) Store(ctx context.Context, path string) (*StoreResult, error) {
	return a.engine.Store(ctx, path)
}

// VerifyAgainstBaseline compares path with the baseline recorded for its
// video ID. A missing baseline is reported with an error for which
// IsNoBaseline returns true.
func (a *Authenticator) VerifyAgainstBaseline(ctx context.Context, path string) (*VerdictReport, error) {
	return a.engine.Verify(ctx, path)
}

// StoreBatch stores every input. Per-file failures are recorded in the
// result and do not stop the batch.
func (a *Authenticator) StoreBatch(ctx context.Context, inputs []string) (*BatchResult, error) {
	return a.runner.StoreVideos(ctx, inputs)
}

// VerifyBatch verifies every input and writes the verification report.
func (a *Authenticator) VerifyBatch(ctx context.Context, inputs []string) (*BatchResult, error) {
	return a.runner.VerifyVideos(ctx, inputs)
}

// ExtractWatermark reads up to maxChars characters of embedded text from
// the first frame of path. A non-positive maxChars uses the configured
// default.
func (a *Authenticator) ExtractWatermark(ctx context.Context, path string, maxChars int) (string, error) {
	return a.engine.ExtractWatermark(ctx, path, maxChars)
}

// Inspect summarizes path and any baseline recorded for it.
func (a *Authenticator) Inspect(ctx context.Context, path string) (*Inspection, error) {
	return a.engine.Inspect(ctx, path)
}

// FindVideos finds video files in a directory.
func FindVideos(dir string) ([]string, error) {
	res, err := discovery.FindVideoFiles(dir, discovery.Filter{}, nil)
	if err != nil {
		return nil, err
	}
	return res.Files, nil
}

// IsNoBaseline reports whether err means the store has no record for the
// video ID.
func IsNoBaseline(err error) bool {
	return vaerrors.IsNoBaseline(err)
}

// IsCancelled reports whether err means the operation was cancelled.
func IsCancelled(err error) bool {
	return vaerrors.IsCancelled(err)
}
