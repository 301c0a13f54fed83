package mediaingest_test

import (
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsefeed/pulsefeed/internal/pkg/mediaingest"
)

func TestExtractImageMetadataWithoutExif(t *testing.T) {
	t.Parallel()

	// Encoder output carries no EXIF block
	path := filepath.Join(t.TempDir(), "plain.jpg")
	require.NoError(t, imaging.Save(gradientImage(100, 100), path, imaging.JPEGQuality(85)))

	meta := mediaingest.ExtractImageMetadata(path)
	assert.Nil(t, meta.CameraModel)
	assert.Nil(t, meta.TakenAt)
}

func TestExtractImageMetadataMissingFile(t *testing.T) {
	t.Parallel()

	meta := mediaingest.ExtractImageMetadata(filepath.Join(t.TempDir(), "missing.jpg"))
	assert.Nil(t, meta.CameraModel)
	assert.Nil(t, meta.TakenAt)
}
