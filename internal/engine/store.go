package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio/v2"

	"github.com/five82/vidauth/internal/baseline"
	"github.com/five82/vidauth/internal/config"
	vaerrors "github.com/five82/vidauth/internal/errors"
	"github.com/five82/vidauth/internal/ffmpeg"
	"github.com/five82/vidauth/internal/ffprobe"
	"github.com/five82/vidauth/internal/hashing"
	"github.com/five82/vidauth/internal/metadata"
	"github.com/five82/vidauth/internal/reporter"
	"github.com/five82/vidauth/internal/util"
	"github.com/five82/vidauth/internal/videoid"
	"github.com/five82/vidauth/internal/watermark"
)

// progressInterval is how many frames pass between progress events.
const progressInterval = 10

// sealedSizeFactor estimates the size of a lossless RGB copy relative to
// its source for the free space pre-flight.
const sealedSizeFactor = 3

// StoreResult describes a completed store run.
type StoreResult struct {
	ID        videoid.ID
	Input     string
	Output    string
	Watermark string
	Record    baseline.Record
	Frames    uint64
	Duration  time.Duration
}

// Message returns the one-line confirmation for the run.
func (r *StoreResult) Message() string {
	return fmt.Sprintf("stored baseline for video ID %s", r.ID)
}

// Store seals path against the configured baseline store.
func (e *Engine) Store(ctx context.Context, path string) (*StoreResult, error) {
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
	return e.StoreWith(ctx, s, path)
}

// StoreWith seals path and records its baseline in s, saving s on success.
// A watermark that does not fit the first frame fails before any output is
// written or s is changed. If s cannot be saved the sealed copy is removed
// and s keeps its previous record for the ID.
func (e *Engine) StoreWith(ctx context.Context, s *baseline.Store, path string) (*StoreResult, error) {
	ctx, err := begin(ctx)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	filename := filepath.Base(path)
	log := e.logger.With("file", filename)

	id, err := videoid.Derive(path)
	if err != nil {
		return nil, err
	}
	log.Info("storing baseline", "id", id)

	info, err := e.source.Probe(ctx, path)
	if err != nil {
		return nil, err
	}
	outPath := e.cfg.OutputPath(path)
	e.reporter.VideoInfo(videoInfoSummary("store", path, outPath, id, info))

	var digest hashing.Digest
	var meta metadata.Record
	if e.cfg.RecordSubject != config.SubjectOutput {
		e.stage("fingerprint", "Hashing and probing input")
		if digest, meta, err = e.fingerprint(ctx, path, e.algo); err != nil {
			return nil, err
		}
	}

	text := e.cfg.WatermarkText(id.String(), filename)
	frame0, err := e.firstFrame(ctx, path, info)
	if err != nil {
		return nil, err
	}
	marked, err := watermark.Embed(frame0, text)
	if err != nil {
		if errors.Is(err, watermark.ErrPayloadTooLarge) {
			return nil, vaerrors.NewPayloadTooLargeError(path, err)
		}
		return nil, err
	}
	log.Debug("watermark embedded", "text", text, "bits", len(text)*8, "capacity_chars", watermark.Capacity(frame0))

	if size, err := util.FileSize(path); err == nil {
		outDir := filepath.Dir(outPath)
		if err := util.EnsureDirectory(outDir); err != nil {
			return nil, vaerrors.NewIOError("failed to create output directory", err)
		}
		if !util.HasSpaceFor(outDir, size*sealedSizeFactor) {
			msg := fmt.Sprintf("free space in %s may not hold the sealed copy of %s (about %s)",
				outDir, filename, util.FormatBytes(size*sealedSizeFactor))
			log.Warn(msg)
			e.reporter.Warning(msg)
		}
	}

	e.stage("seal", "Writing sealed copy")
	frames, err := e.writeSealed(ctx, path, outPath, info, marked)
	if err != nil {
		return nil, err
	}
	log.Info("sealed copy written", "output", outPath, "frames", frames)

	if e.cfg.RecordSubject == config.SubjectOutput {
		e.stage("fingerprint", "Hashing and probing sealed copy")
		if digest, meta, err = e.fingerprint(ctx, outPath, e.algo); err != nil {
			return nil, err
		}
	}

	storedAt := time.Now().UTC().Truncate(time.Second)
	rec := baseline.Record{
		Hash:            string(digest),
		HashAlgorithm:   string(e.algo),
		Metadata:        meta,
		Watermark:       text,
		Source:          filename,
		WatermarkedPath: outPath,
		StoredAt:        &storedAt,
	}
	if err := s.Commit(id, rec); err != nil {
		if rmErr := os.Remove(outPath); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			log.Warn("failed to remove sealed copy without baseline", "output", outPath, "error", rmErr)
			e.reporter.Warning(fmt.Sprintf("sealed copy %s has no stored baseline and could not be removed", outPath))
		}
		return nil, err
	}

	res := &StoreResult{
		ID:        id,
		Input:     path,
		Output:    outPath,
		Watermark: text,
		Record:    rec,
		Frames:    frames,
		Duration:  time.Since(start),
	}
	log.Info(res.Message(), "hash", digest, "algorithm", e.algo)
	e.reporter.BaselineStored(reporter.StoreOutcome{
		InputFile:     path,
		OutputFile:    outPath,
		VideoID:       id.String(),
		Watermark:     text,
		Hash:          string(digest),
		HashAlgorithm: string(e.algo),
		Subject:       string(e.cfg.RecordSubject),
		StorePath:     s.Path(),
		TotalTime:     res.Duration,
	})
	return res, nil
}

func (e *Engine) stage(name, message string) {
	e.reporter.StageProgress(reporter.StageProgress{Stage: name, Message: message})
}

func (e *Engine) fingerprint(ctx context.Context, path string, algo hashing.Algorithm) (hashing.Digest, metadata.Record, error) {
	digest, err := hashing.File(path, algo)
	if err != nil {
		return "", metadata.Record{}, err
	}
	meta, err := e.prober.Probe(ctx, path)
	if err != nil {
		return "", metadata.Record{}, err
	}
	return digest, meta, nil
}

// firstFrame decodes only the first frame of path.
func (e *Engine) firstFrame(ctx context.Context, path string, info *ffprobe.StreamInfo) (watermark.Frame, error) {
	r, err := e.source.Open(ctx, path, info, 1)
	if err != nil {
		return watermark.Frame{}, err
	}
	frame, err := r.ReadFrame()
	if err != nil {
		r.Abort()
		if errors.Is(err, io.EOF) {
			return watermark.Frame{}, vaerrors.NewVideoInfoError(fmt.Sprintf("%s has no decodable frames", path))
		}
		return watermark.Frame{}, err
	}
	if err := r.Close(); err != nil {
		return watermark.Frame{}, err
	}
	return frame, nil
}

// writeSealed re-encodes inPath into outPath with marked as frame 0. The
// encoder writes a pending file in the temp directory that only replaces
// outPath once every frame has been encoded. The temp directory must be on
// the same filesystem as outPath.
func (e *Engine) writeSealed(ctx context.Context, inPath, outPath string, info *ffprobe.StreamInfo, marked watermark.Frame) (uint64, error) {
	if err := util.EnsureDirectory(filepath.Dir(outPath)); err != nil {
		return 0, vaerrors.NewIOError("failed to create output directory", err)
	}
	tempDir := e.cfg.GetTempDir()
	if err := util.EnsureDirectory(tempDir); err != nil {
		return 0, vaerrors.NewIOError("failed to create temp directory", err)
	}
	if err := util.EnsureDirectoryWritable(tempDir); err != nil {
		return 0, vaerrors.NewIOError("temp directory is not writable", err)
	}
	pending, err := renameio.NewPendingFile(outPath, renameio.WithTempDir(tempDir), renameio.WithPermissions(0o644))
	if err != nil {
		return 0, vaerrors.NewIOError("failed to create pending output file", err)
	}
	defer func() { _ = pending.Cleanup() }()

	audio := ""
	if e.cfg.Watermark.CopyAudio {
		audio = inPath
	}

	reader, err := e.source.Open(ctx, inPath, info, 0)
	if err != nil {
		return 0, err
	}
	writer, err := e.sink.Create(ctx, pending.Name(), info, audio)
	if err != nil {
		reader.Abort()
		return 0, err
	}
	abort := func() {
		reader.Abort()
		writer.Abort()
	}

	tracker := ffmpeg.NewProgressTracker(info.TotalFrames)
	e.reporter.EmbedStarted(info.TotalFrames)

	var n uint64
	for {
		frame, err := reader.ReadFrame()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			abort()
			return 0, err
		}
		if n == 0 {
			frame = marked
		}
		if err := writer.WriteFrame(frame); err != nil {
			abort()
			return 0, err
		}
		n++
		if n%progressInterval == 0 {
			e.reportProgress(tracker.Update(n))
		}
	}
	e.reportProgress(tracker.Update(n))

	if n == 0 {
		abort()
		return 0, vaerrors.NewVideoInfoError(fmt.Sprintf("%s has no decodable frames", inPath))
	}
	if err := reader.Close(); err != nil {
		writer.Abort()
		return 0, err
	}
	if err := writer.Close(); err != nil {
		return 0, err
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return 0, vaerrors.NewIOError("failed to move sealed copy into place", err)
	}
	return n, nil
}

func (e *Engine) reportProgress(p ffmpeg.Progress) {
	e.reporter.EmbedProgress(reporter.ProgressSnapshot{
		CurrentFrame: p.CurrentFrame,
		TotalFrames:  p.TotalFrames,
		Percent:      p.Percent,
		FPS:          p.FPS,
		ETA:          p.ETA,
	})
}

func videoInfoSummary(mode, path, outPath string, id videoid.ID, info *ffprobe.StreamInfo) reporter.VideoInfoSummary {
	audio := "none"
	if info.HasAudio {
		audio = info.AudioCodec
	}
	return reporter.VideoInfoSummary{
		Mode:       mode,
		InputFile:  path,
		OutputFile: outPath,
		VideoID:    id.String(),
		Resolution: fmt.Sprintf("%dx%d", info.Width, info.Height),
		FrameRate:  fmt.Sprintf("%.2f", info.FPS),
		Duration:   util.FormatDuration(util.SecondsToDuration(info.DurationSecs)),
		Audio:      audio,
	}
}
