package mediaingest_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsefeed/pulsefeed/internal/pkg/mediaingest"
)

func TestTranscoderPassthroughWithinBudget(t *testing.T) {
	path := writeTempVideo(t, 100)
	tr := &mediaingest.VideoTranscoder{MaxBytes: 200}

	size, err := tr.Compress(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, int64(100), size)
}

func TestTranscoderCompressesOverBudgetVideo(t *testing.T) {
	useFFmpeg(t, ffmpegWritingBytes(40))

	path := writeTempVideo(t, 100)
	tr := &mediaingest.VideoTranscoder{MaxBytes: 50}

	size, err := tr.Compress(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, int64(40), size)

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(40), fi.Size())
}

func TestTranscoderExhaustsLevels(t *testing.T) {
	// Every level produces output that is still over budget
	useFFmpeg(t, ffmpegWritingBytes(90))

	path := writeTempVideo(t, 100)
	tr := &mediaingest.VideoTranscoder{MaxBytes: 50}

	_, err := tr.Compress(context.Background(), path)
	assert.ErrorIs(t, err, mediaingest.ErrCompressionBudget)

	// Original is preserved on failure
	fi, statErr := os.Stat(path)
	require.NoError(t, statErr)
	assert.Equal(t, int64(100), fi.Size())
}

func TestTranscoderEncodeFailuresAdvanceLevels(t *testing.T) {
	// Encoder always fails; exhaustion is reported as a budget error
	useFFmpeg(t, "exit 1\n")

	path := writeTempVideo(t, 100)
	tr := &mediaingest.VideoTranscoder{MaxBytes: 50}

	_, err := tr.Compress(context.Background(), path)
	assert.ErrorIs(t, err, mediaingest.ErrCompressionBudget)
}

func TestTranscoderStartsAtFirstLevel(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "args.log")
	useFFmpeg(t, fmt.Sprintf("echo \"$@\" >> %q\n", logPath)+ffmpegWritingBytes(40))

	path := writeTempVideo(t, 100)
	tr := &mediaingest.VideoTranscoder{MaxBytes: 50}

	_, err := tr.Compress(context.Background(), path)
	require.NoError(t, err)

	// A fitting first encode means exactly one invocation, at the mildest level
	lines := ffmpegInvocations(t, logPath)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "-crf 28")
	assert.Contains(t, lines[0], "-preset medium")
	assert.Contains(t, lines[0], "scale=1280:-2")
}

func TestTranscoderAdvancesOneLevelAtATime(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "args.log")
	countPath := filepath.Join(dir, "count")

	// First two encodes fail; the third succeeds within budget
	body := fmt.Sprintf(`echo "$@" >> %q
count=$(cat %q 2>/dev/null || echo 0)
count=$((count+1))
echo $count > %q
if [ "$count" -lt 3 ]; then exit 1; fi
`, logPath, countPath, countPath) + ffmpegWritingBytes(40)
	useFFmpeg(t, body)

	path := writeTempVideo(t, 100)
	tr := &mediaingest.VideoTranscoder{MaxBytes: 50}

	size, err := tr.Compress(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, int64(40), size)

	lines := ffmpegInvocations(t, logPath)
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "-crf 28")
	assert.Contains(t, lines[1], "-crf 30")
	assert.Contains(t, lines[1], "-preset faster")
	assert.Contains(t, lines[1], "scale=854:-2")
	assert.Contains(t, lines[2], "-crf 32")
	assert.Contains(t, lines[2], "-preset veryfast")
	assert.Contains(t, lines[2], "scale=640:-2")
}

// ffmpegInvocations returns one argv line per recorded stub invocation
func ffmpegInvocations(t *testing.T, logPath string) []string {
	t.Helper()
	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestTranscoderCanceledContext(t *testing.T) {
	useFFmpeg(t, ffmpegWritingBytes(40))

	path := writeTempVideo(t, 100)
	tr := &mediaingest.VideoTranscoder{MaxBytes: 50}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tr.Compress(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
}
