package ffmpeg

import "time"

// Progress represents frame copy progress information.
type Progress struct {
	CurrentFrame uint64
	TotalFrames  uint64
	Percent      float32
	FPS          float32
	ETA          time.Duration
	ElapsedSecs  float64
}

// ProgressCallback is called with progress updates while frames are copied.
type ProgressCallback func(Progress)

// ProgressTracker turns frame counts into Progress values.
type ProgressTracker struct {
	total uint64
	start time.Time
	now   func() time.Time
}

// NewProgressTracker starts tracking a copy of total frames. A zero total
// leaves Percent and ETA at zero.
func NewProgressTracker(total uint64) *ProgressTracker {
	return &ProgressTracker{total: total, start: time.Now(), now: time.Now}
}

// Update returns the progress after frame frames have been handled.
func (t *ProgressTracker) Update(frame uint64) Progress {
	elapsed := t.now().Sub(t.start).Seconds()

	var fps float32
	if elapsed > 0 {
		fps = float32(float64(frame) / elapsed)
	}

	var percent float32
	if t.total > 0 {
		percent = float32(float64(frame) / float64(t.total) * 100)
		if percent > 100 {
			percent = 100
		}
	}

	var eta time.Duration
	if fps > 0 && t.total > frame {
		eta = time.Duration(float64(t.total-frame)/float64(fps)) * time.Second
	}

	return Progress{
		CurrentFrame: frame,
		TotalFrames:  t.total,
		Percent:      percent,
		FPS:          fps,
		ETA:          eta,
		ElapsedSecs:  elapsed,
	}
}
