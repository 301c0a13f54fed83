package mediaingest_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsefeed/pulsefeed/internal/pkg/mediaingest"
)

func writeTempVideo(t *testing.T, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp4")
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0644))
	return path
}

func TestDurationLimiterWithinLimit(t *testing.T) {
	useFFprobe(t, "42.4", 0)

	path := writeTempVideo(t, 100)
	limiter := mediaingest.NewDurationLimiter()

	seconds, err := limiter.Apply(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 42, seconds)

	// File is untouched
	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(100), fi.Size())
}

func TestDurationLimiterTrimsOverlongVideo(t *testing.T) {
	useFFprobe(t, "75.0", 0)
	useFFmpeg(t, "printf trimmed > \"$last\"\n")

	path := writeTempVideo(t, 100)
	limiter := mediaingest.NewDurationLimiter()

	seconds, err := limiter.Apply(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, mediaingest.MaxVideoSeconds, seconds)

	// Trimmed output replaced the original in place
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "trimmed", string(data))

	// No side file left behind
	_, err = os.Stat(filepath.Join(filepath.Dir(path), "trimmed_"+filepath.Base(path)))
	assert.True(t, os.IsNotExist(err))
}

func TestDurationLimiterProbeFailure(t *testing.T) {
	useFFprobe(t, "", 1)

	path := writeTempVideo(t, 100)
	limiter := mediaingest.NewDurationLimiter()

	_, err := limiter.Apply(context.Background(), path)
	assert.ErrorIs(t, err, mediaingest.ErrProbe)
}

func TestDurationLimiterTrimFailure(t *testing.T) {
	useFFprobe(t, "90.0", 0)
	// Both stream-copy and re-encode fail
	useFFmpeg(t, "exit 1\n")

	path := writeTempVideo(t, 100)
	limiter := mediaingest.NewDurationLimiter()

	_, err := limiter.Apply(context.Background(), path)
	assert.ErrorIs(t, err, mediaingest.ErrTrim)
}

func TestDurationLimiterCustomLimit(t *testing.T) {
	useFFprobe(t, "9.7", 0)

	path := writeTempVideo(t, 100)
	limiter := &mediaingest.DurationLimiter{MaxSeconds: 15}

	seconds, err := limiter.Apply(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 10, seconds)
}
