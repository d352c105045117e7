package engine

import (
	"context"
	"errors"
	"path/filepath"

	vaerrors "github.com/five82/vidauth/internal/errors"
	"github.com/five82/vidauth/internal/ffmpeg"
	"github.com/five82/vidauth/internal/hashing"
	"github.com/five82/vidauth/internal/metadata"
	"github.com/five82/vidauth/internal/reporter"
	"github.com/five82/vidauth/internal/videoid"
	"github.com/five82/vidauth/internal/watermark"
)

// ExtractWatermark reads up to maxChars characters of watermark text from
// the first frame of path without consulting the store. A non-positive
// maxChars uses the configured blind read length.
func (e *Engine) ExtractWatermark(ctx context.Context, path string, maxChars int) (string, error) {
	ctx, err := begin(ctx)
	if err != nil {
		return "", err
	}
	if maxChars <= 0 {
		maxChars = e.cfg.Watermark.BlindMaxChars
	}

	info, err := e.source.Probe(ctx, path)
	if err != nil {
		return "", err
	}
	frame0, err := e.firstFrame(ctx, path, info)
	if err != nil {
		return "", err
	}
	text, err := watermark.ExtractBlind(frame0, maxChars)
	if err != nil {
		if errors.Is(err, watermark.ErrFrameTooSmall) {
			return "", vaerrors.NewFrameTooSmallError(path, err)
		}
		return "", err
	}

	e.logger.Info("watermark extracted", "file", filepath.Base(path), "chars", len(text))
	e.reporter.WatermarkExtracted(reporter.ExtractionSummary{InputFile: path, Text: text, MaxChars: maxChars})
	return text, nil
}

// Inspection is a read-only summary of a video.
type Inspection struct {
	File          string            `json:"file"`
	ID            videoid.ID        `json:"id,omitempty"`
	Hash          hashing.Digest    `json:"hash"`
	HashAlgorithm hashing.Algorithm `json:"hash_algorithm"`
	Metadata      metadata.Record   `json:"metadata"`
	Width         int               `json:"width"`
	Height        int               `json:"height"`
	FrameRate     string            `json:"frame_rate"`
	TotalFrames   uint64            `json:"total_frames"`
	HasAudio      bool              `json:"has_audio"`
	CapacityChars int               `json:"capacity_chars"`
	Baseline      bool              `json:"has_baseline"`
}

// Inspect fingerprints path and reports its geometry and watermark capacity.
// The store is read to note whether a baseline exists but never written.
func (e *Engine) Inspect(ctx context.Context, path string) (*Inspection, error) {
	ctx, err := begin(ctx)
	if err != nil {
		return nil, err
	}

	info, err := e.source.Probe(ctx, path)
	if err != nil {
		return nil, err
	}
	digest, meta, err := e.fingerprint(ctx, path, e.algo)
	if err != nil {
		return nil, err
	}

	ins := &Inspection{
		File:          path,
		Hash:          digest,
		HashAlgorithm: e.algo,
		Metadata:      meta,
		Width:         info.Width,
		Height:        info.Height,
		FrameRate:     info.FrameRate,
		TotalFrames:   info.TotalFrames,
		HasAudio:      info.HasAudio,
		CapacityChars: info.FrameBytes(ffmpeg.Channels) / 8,
	}

	if id, err := videoid.Derive(path); err == nil {
		ins.ID = id
		if s, err := e.LoadStore(); err == nil {
			_, gerr := s.Get(id)
			ins.Baseline = gerr == nil
		}
	}
	return ins, nil
}
