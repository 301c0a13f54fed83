package mediaingest_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsefeed/pulsefeed/internal/pkg/mediaingest"
)

func TestThumbnailForImageFitsInsideBound(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "wide.jpg")
	require.NoError(t, imaging.Save(gradientImage(1200, 400), srcPath, imaging.JPEGQuality(85)))

	destPath := filepath.Join(dir, "thumb.jpg")
	g := mediaingest.NewThumbnailGenerator()
	require.NoError(t, g.ForImage(srcPath, destPath))

	thumb, err := imaging.Open(destPath)
	require.NoError(t, err)
	assert.Equal(t, mediaingest.ThumbnailMaxEdge, thumb.Bounds().Dx())
	assert.Equal(t, 100, thumb.Bounds().Dy())
}

func TestThumbnailForImageDoesNotUpscale(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "tiny.jpg")
	require.NoError(t, imaging.Save(gradientImage(80, 60), srcPath, imaging.JPEGQuality(85)))

	destPath := filepath.Join(dir, "thumb.jpg")
	g := mediaingest.NewThumbnailGenerator()
	require.NoError(t, g.ForImage(srcPath, destPath))

	thumb, err := imaging.Open(destPath)
	require.NoError(t, err)
	assert.Equal(t, 80, thumb.Bounds().Dx())
	assert.Equal(t, 60, thumb.Bounds().Dy())
}

func TestThumbnailForImageUndecodableSource(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "broken.jpg")
	require.NoError(t, os.WriteFile(srcPath, []byte("not an image"), 0644))

	destPath := filepath.Join(dir, "thumb.jpg")
	g := mediaingest.NewThumbnailGenerator()
	err := g.ForImage(srcPath, destPath)
	assert.ErrorIs(t, err, mediaingest.ErrThumbnail)

	_, statErr := os.Stat(destPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestThumbnailForVideoUsesExtractedFrame(t *testing.T) {
	dir := t.TempDir()

	// Frame the ffmpeg stub will hand back
	framePath := filepath.Join(dir, "frame.jpg")
	require.NoError(t, imaging.Save(gradientImage(640, 480), framePath, imaging.JPEGQuality(90)))
	useFFmpeg(t, fmt.Sprintf("cp %q \"$last\"\n", framePath))

	srcPath := writeTempVideo(t, 100)
	destPath := filepath.Join(dir, "thumb.jpg")

	g := mediaingest.NewThumbnailGenerator()
	require.NoError(t, g.ForVideo(context.Background(), srcPath, destPath))

	thumb, err := imaging.Open(destPath)
	require.NoError(t, err)
	assert.Equal(t, mediaingest.ThumbnailMaxEdge, thumb.Bounds().Dx())
	assert.Equal(t, 225, thumb.Bounds().Dy())

	// Intermediate frame file is cleaned up
	_, statErr := os.Stat(destPath + ".frame.jpg")
	assert.True(t, os.IsNotExist(statErr))
}

func TestThumbnailForVideoFrameExtractionFailure(t *testing.T) {
	useFFmpeg(t, "exit 1\n")

	dir := t.TempDir()
	srcPath := writeTempVideo(t, 100)
	destPath := filepath.Join(dir, "thumb.jpg")

	g := mediaingest.NewThumbnailGenerator()
	err := g.ForVideo(context.Background(), srcPath, destPath)
	assert.ErrorIs(t, err, mediaingest.ErrThumbnail)
}
