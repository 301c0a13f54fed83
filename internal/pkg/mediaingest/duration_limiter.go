package mediaingest

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2/log"
)

// DurationLimiter trims videos down to a maximum length. Trimming prefers
// stream-copy for speed and falls back to a full re-encode for codecs the
// muxer cannot stream-copy.
type DurationLimiter struct {
	MaxSeconds int
}

// NewDurationLimiter creates a limiter with the policy default
func NewDurationLimiter() *DurationLimiter {
	return &DurationLimiter{MaxSeconds: MaxVideoSeconds}
}

func (l *DurationLimiter) limit() int {
	if l.MaxSeconds > 0 {
		return l.MaxSeconds
	}
	return MaxVideoSeconds
}

// Apply probes the video at path and, if it exceeds the limit, replaces it
// with its first MaxSeconds seconds. Returns the resulting duration in whole
// seconds. The original file is only touched once a complete trimmed copy
// exists; the swap is a rename.
func (l *DurationLimiter) Apply(ctx context.Context, path string) (int, error) {
	duration, err := ProbeDuration(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrProbe, err)
	}

	limit := l.limit()
	if duration <= float64(limit) {
		return int(math.Round(duration)), nil
	}

	log.Infof("[DurationLimiter] Video duration %.1fs exceeds %ds limit, trimming", duration, limit)

	trimmedPath := sidePath(path, "trimmed_")
	defer os.Remove(trimmedPath)

	if err := l.trimStreamCopy(ctx, path, trimmedPath); err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		log.Warnf("[DurationLimiter] Stream-copy trim failed (%v), falling back to re-encode", err)
		os.Remove(trimmedPath)
		if err := l.trimReencode(ctx, path, trimmedPath); err != nil {
			if ctx.Err() != nil {
				return 0, ctx.Err()
			}
			return 0, fmt.Errorf("%w: %v", ErrTrim, err)
		}
	}

	if fi, err := os.Stat(trimmedPath); err != nil || fi.Size() == 0 {
		return 0, fmt.Errorf("%w: trimmed file was not produced", ErrTrim)
	}

	if err := os.Rename(trimmedPath, path); err != nil {
		return 0, fmt.Errorf("%w: replacing original: %v", ErrTrim, err)
	}

	return limit, nil
}

// trimStreamCopy cuts the first N seconds without re-encoding
func (l *DurationLimiter) trimStreamCopy(ctx context.Context, inPath, outPath string) error {
	return runFFmpeg(ctx,
		"-i", inPath,
		"-t", fmt.Sprintf("%d", l.limit()),
		"-c:v", "copy",
		"-c:a", "copy",
		"-y", outPath)
}

// trimReencode cuts the first N seconds with a full re-encode
func (l *DurationLimiter) trimReencode(ctx context.Context, inPath, outPath string) error {
	return runFFmpeg(ctx,
		"-i", inPath,
		"-t", fmt.Sprintf("%d", l.limit()),
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-crf", "23",
		"-c:a", "aac",
		"-y", outPath)
}

// sidePath returns a sibling path with the given prefix on the base name,
// e.g. /a/b/video.mp4 -> /a/b/trimmed_video.mp4
func sidePath(path, prefix string) string {
	return filepath.Join(filepath.Dir(path), prefix+filepath.Base(path))
}
