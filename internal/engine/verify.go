package engine

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/five82/vidauth/internal/baseline"
	vaerrors "github.com/five82/vidauth/internal/errors"
	"github.com/five82/vidauth/internal/hashing"
	"github.com/five82/vidauth/internal/metadata"
	"github.com/five82/vidauth/internal/reporter"
	"github.com/five82/vidauth/internal/videoid"
	"github.com/five82/vidauth/internal/watermark"
)

// Verify checks path against the configured baseline store.
func (e *Engine) Verify(ctx context.Context, path string) (*VerdictReport, error) {
	if ctx.Err() != nil {
		return nil, vaerrors.NewCancelledError()
	}
	if _, err := videoid.Derive(path); err != nil {
		return nil, err
	}
	s, err := e.LoadStore()
	if err != nil {
		return nil, err
	}
	return e.VerifyWith(ctx, s, path)
}

// VerifyWith checks path against the baseline recorded in s for the video
// ID in its filename. A missing record is a NoBaseline error. s is never
// modified.
func (e *Engine) VerifyWith(ctx context.Context, s *baseline.Store, path string) (*VerdictReport, error) {
	ctx, err := begin(ctx)
	if err != nil {
		return nil, err
	}
	filename := filepath.Base(path)
	log := e.logger.With("file", filename)

	id, err := videoid.Derive(path)
	if err != nil {
		return nil, err
	}
	rec, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	log.Info("verifying against baseline", "id", id, "source", rec.Source)

	algo, err := hashing.ParseAlgorithm(rec.HashAlgorithm)
	if err != nil {
		return nil, err
	}

	info, err := e.source.Probe(ctx, path)
	if err != nil {
		return nil, err
	}
	e.reporter.VideoInfo(videoInfoSummary("verify", path, "", id, info))

	e.stage("fingerprint", "Hashing and probing candidate")
	digest, meta, err := e.fingerprint(ctx, path, algo)
	if err != nil {
		return nil, err
	}

	e.stage("watermark", "Reading first frame")
	frame0, err := e.firstFrame(ctx, path, info)
	if err != nil {
		return nil, err
	}
	wmMatch, err := watermark.Verify(frame0, rec.Watermark)
	if err != nil {
		if errors.Is(err, watermark.ErrFrameTooSmall) {
			return nil, vaerrors.NewFrameTooSmallError(path, err)
		}
		return nil, err
	}

	report := buildReport(id, path, rec, algo, digest, meta, wmMatch)
	log.Info("verification complete",
		"verdict", report.Verdict,
		"hash_match", report.Signals.HashMatch,
		"metadata_match", report.Signals.MetadataMatch,
		"watermark_match", report.Signals.WatermarkMatch,
		"device_mismatch", report.Signals.DeviceMismatch,
		"metadata_diff", report.MetadataDiff)

	e.reporter.VerdictComplete(verdictSummary(report))
	return report, nil
}

func buildReport(id videoid.ID, path string, rec baseline.Record, algo hashing.Algorithm, digest hashing.Digest, meta metadata.Record, wmMatch bool) *VerdictReport {
	signals := Signals{
		HashMatch:      string(digest) == rec.Hash,
		MetadataMatch:  metadata.Equal(rec.Metadata, meta),
		WatermarkMatch: wmMatch,
		DeviceMismatch: metadata.DeviceMismatch(rec.Metadata, meta),
	}
	return &VerdictReport{
		ID:            id,
		File:          path,
		Signals:       signals,
		Verdict:       Decide(signals),
		MetadataDiff:  metadata.Diff(rec.Metadata, meta),
		CandidateHash: digest,
		BaselineHash:  rec.Hash,
		HashAlgorithm: algo,
		baselineMeta:  rec.Metadata,
		candidateMeta: meta,
	}
}

func verdictSummary(r *VerdictReport) reporter.VerdictSummary {
	steps := r.Steps()
	out := make([]reporter.VerdictStep, len(steps))
	for i, s := range steps {
		out[i] = reporter.VerdictStep{Name: s.Name, Passed: s.Passed, Details: s.Details}
	}
	return reporter.VerdictSummary{
		InputFile:    r.File,
		VideoID:      r.ID.String(),
		Verdict:      string(r.Verdict),
		Authentic:    r.Authentic(),
		Steps:        out,
		MetadataDiff: r.MetadataDiff,
	}
}
