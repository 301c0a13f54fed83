package mediaingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2/log"
)

// transcodeLevel is one step of the monotonically more aggressive preset
// table. Levels are tried in order against the original input; the first one
// that produces a file within budget wins.
type transcodeLevel struct {
	crf    int
	preset string
	width  int
}

var transcodeLevels = []transcodeLevel{
	{crf: 28, preset: "medium", width: 1280},
	{crf: 30, preset: "faster", width: 854},
	{crf: 32, preset: "veryfast", width: 640},
	{crf: 35, preset: "superfast", width: 426},
}

const audioBitrate = "64k"

// VideoTranscoder shrinks videos until they fit the size budget. Each
// attempt writes to a side path so a failed encode can never corrupt the
// input of the next attempt.
type VideoTranscoder struct {
	// MaxBytes overrides the policy budget; zero means MaxAssetBytes.
	MaxBytes int64
}

// NewVideoTranscoder creates a transcoder with the policy budget
func NewVideoTranscoder() *VideoTranscoder {
	return &VideoTranscoder{}
}

func (t *VideoTranscoder) budget() int64 {
	if t.MaxBytes > 0 {
		return t.MaxBytes
	}
	return MaxAssetBytes
}

// Compress re-encodes the video at path until it fits the budget and returns
// the resulting byte size. A file already within budget is returned
// untouched. Encode failures at a level advance to the next level; only
// exhausting all levels is reported, as ErrCompressionBudget.
func (t *VideoTranscoder) Compress(ctx context.Context, path string) (int64, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("%w: stat %s: %v", ErrStorage, path, err)
	}
	if fi.Size() <= t.budget() {
		return fi.Size(), nil
	}

	compressedPath := sidePath(path, "compressed_")
	defer os.Remove(compressedPath)

	for level, lvl := range transcodeLevels {
		os.Remove(compressedPath)

		err := runFFmpeg(ctx,
			"-i", path,
			"-c:v", "libx264",
			"-preset", lvl.preset,
			"-crf", fmt.Sprintf("%d", lvl.crf),
			// -2 keeps the auto height even, which libx264 requires
			"-vf", fmt.Sprintf("scale=%d:-2", lvl.width),
			"-c:a", "aac",
			"-b:a", audioBitrate,
			"-movflags", "+faststart",
			"-y", compressedPath)
		if err != nil {
			if ctx.Err() != nil {
				return 0, ctx.Err()
			}
			log.Warnf("[VideoTranscoder] Encode failed at level %d: %v", level, err)
			continue
		}

		out, err := os.Stat(compressedPath)
		if err != nil {
			log.Warnf("[VideoTranscoder] No output produced at level %d", level)
			continue
		}

		if out.Size() <= t.budget() {
			if err := os.Rename(compressedPath, path); err != nil {
				return 0, fmt.Errorf("%w: replacing original: %v", ErrStorage, err)
			}
			log.Infof("[VideoTranscoder] Compressed %s to %d bytes at level %d (crf=%d, %dpx)",
				filepath.Base(path), out.Size(), level, lvl.crf, lvl.width)
			return out.Size(), nil
		}

		log.Debugf("[VideoTranscoder] Level %d output %d bytes still over budget", level, out.Size())
	}

	return 0, fmt.Errorf("%w: video %s (%d bytes)", ErrCompressionBudget, filepath.Base(path), fi.Size())
}
