// Package engine seals videos against a baseline and verifies candidates
// against it.
//
// A store run derives the video ID from the filename, fingerprints the
// file, embeds the watermark text into the first frame and writes a sealed
// copy before recording the baseline. A verify run recomputes the same
// fingerprints for a candidate and combines four signals into a verdict.
// Runs are synchronous. Once started a run is not interrupted; callers
// check for cancellation between runs.
package engine

import (
	"context"
	"log/slog"

	"github.com/five82/vidauth/internal/baseline"
	"github.com/five82/vidauth/internal/config"
	vaerrors "github.com/five82/vidauth/internal/errors"
	"github.com/five82/vidauth/internal/hashing"
	"github.com/five82/vidauth/internal/mediainfo"
	"github.com/five82/vidauth/internal/metadata"
	"github.com/five82/vidauth/internal/mp4probe"
	"github.com/five82/vidauth/internal/reporter"
)

// Engine runs store, verify, extract and inspect operations.
type Engine struct {
	cfg      *config.Config
	algo     hashing.Algorithm
	prober   metadata.Prober
	source   FrameSource
	sink     FrameSink
	logger   *slog.Logger
	reporter reporter.Reporter
}

// Option configures an Engine.
type Option func(*Engine)

// WithProber overrides metadata probe selection.
func WithProber(p metadata.Prober) Option {
	return func(e *Engine) { e.prober = p }
}

// WithFrameSource overrides the ffmpeg decoder.
func WithFrameSource(s FrameSource) Option {
	return func(e *Engine) { e.source = s }
}

// WithFrameSink overrides the ffmpeg encoder.
func WithFrameSink(s FrameSink) Option {
	return func(e *Engine) { e.sink = s }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithReporter sets the progress reporter.
func WithReporter(r reporter.Reporter) Option {
	return func(e *Engine) { e.reporter = r }
}

// New validates cfg and builds an engine. Collaborators not supplied by
// options default to ffmpeg, ffprobe and the prober chosen by
// cfg.Metadata.Probe.
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, vaerrors.NewConfigError(err.Error())
	}
	algo, err := hashing.ParseAlgorithm(cfg.HashAlgorithm)
	if err != nil {
		return nil, err
	}

	e := &Engine{cfg: cfg, algo: algo}
	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	if e.reporter == nil {
		e.reporter = reporter.NullReporter{}
	}
	if e.source == nil {
		e.source = FFmpegSource{}
	}
	if e.sink == nil {
		e.sink = FFmpegSink{Codec: cfg.Watermark.Codec}
	}
	if e.prober == nil {
		e.prober = e.selectProber()
	}
	return e, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

func (e *Engine) selectProber() metadata.Prober {
	switch e.cfg.Metadata.Probe {
	case config.ProbeMediaInfo:
		return mediainfo.Prober{}
	case config.ProbeContainer:
		return mp4probe.Prober{}
	}

	if mediainfo.IsAvailable() {
		e.logger.Debug("metadata probe selected", "probe", "mediainfo")
		return mediainfo.Prober{}
	}
	msg := "mediainfo not found, reading metadata from the MP4 container; device and software tags will be empty"
	e.logger.Warn(msg)
	e.reporter.Warning(msg)
	return mp4probe.Prober{}
}

// LoadStore loads the configured baseline store. A corrupt store is reset
// and reported as a warning.
func (e *Engine) LoadStore() (*baseline.Store, error) {
	s, err := baseline.Load(e.cfg.StorePath, e.logger)
	if err != nil {
		return nil, err
	}
	if rec := s.Recovered(); rec != nil {
		e.reporter.Warning(rec.Error())
	}
	return s, nil
}

// begin rejects an already cancelled context and detaches the run from
// later cancellation.
func begin(ctx context.Context) (context.Context, error) {
	if ctx.Err() != nil {
		return nil, vaerrors.NewCancelledError()
	}
	return context.WithoutCancel(ctx), nil
}
