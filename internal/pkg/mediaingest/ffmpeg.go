package mediaingest

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Encoder binaries. Package-level so tests can point them at stubs.
var (
	FFmpegBin  = "ffmpeg"
	FFprobeBin = "ffprobe"
)

const probeTimeout = 10 * time.Second

// IsFFmpegAvailable checks if ffmpeg is available on PATH
func IsFFmpegAvailable() bool {
	_, err := exec.LookPath(FFmpegBin)
	return err == nil
}

// runFFmpeg executes ffmpeg with the given arguments. The process dies with
// the context, so a canceled ingestion never leaves an orphaned encode behind.
func runFFmpeg(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, FFmpegBin, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("ffmpeg %s: %v\noutput: %s", strings.Join(args, " "), err, truncateOutput(output))
	}
	return nil
}

// ProbeDuration returns the duration of a media file in seconds via ffprobe
func ProbeDuration(ctx context.Context, filePath string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, FFprobeBin,
		"-v", "quiet",
		"-show_entries", "format=duration",
		"-of", "csv=p=0",
		filePath)
	output, err := cmd.Output()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return 0, fmt.Errorf("ffprobe timed out after %v", probeTimeout)
		}
		return 0, fmt.Errorf("failed to probe duration: %v", err)
	}

	durationStr := strings.TrimSpace(string(output))
	duration, err := strconv.ParseFloat(durationStr, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration %q: %v", durationStr, err)
	}

	return duration, nil
}

// ExtractFrame grabs a single high-quality JPEG frame at the given offset
func ExtractFrame(ctx context.Context, videoPath, outPath string, atSeconds float64) error {
	return runFFmpeg(ctx,
		"-ss", fmt.Sprintf("%.2f", atSeconds),
		"-i", videoPath,
		"-vframes", "1",
		"-q:v", "2",
		"-y", outPath)
}

// truncateOutput caps encoder stderr/stdout in error messages to keep logs sane
func truncateOutput(output []byte) string {
	const maxLen = 500
	s := string(output)
	if len(s) > maxLen {
		return s[:maxLen] + "... (truncated)"
	}
	return s
}
