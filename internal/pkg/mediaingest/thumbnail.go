package mediaingest

import (
	"context"
	"fmt"
	"os"

	"github.com/disintegration/imaging"
)

// ThumbnailGenerator derives fixed-bound previews from normalized media.
// Previews fit inside MaxEdge x MaxEdge and are never upscaled.
type ThumbnailGenerator struct {
	// MaxEdge overrides the policy bound; zero means ThumbnailMaxEdge.
	MaxEdge int
}

// NewThumbnailGenerator creates a generator with the policy bound
func NewThumbnailGenerator() *ThumbnailGenerator {
	return &ThumbnailGenerator{}
}

func (g *ThumbnailGenerator) edge() int {
	if g.MaxEdge > 0 {
		return g.MaxEdge
	}
	return ThumbnailMaxEdge
}

// ForImage writes a JPEG preview of the image at srcPath to destPath
func (g *ThumbnailGenerator) ForImage(srcPath, destPath string) error {
	img, err := DecodeImage(srcPath)
	if err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrThumbnail, srcPath, err)
	}

	thumb := imaging.Fit(img, g.edge(), g.edge(), imaging.Lanczos)
	if err := imaging.Save(thumb, destPath, imaging.JPEGQuality(85)); err != nil {
		os.Remove(destPath)
		return fmt.Errorf("%w: save %s: %v", ErrThumbnail, destPath, err)
	}
	return nil
}

// ForVideo extracts a frame shortly after the start of the video at srcPath
// and writes its preview to destPath.
func (g *ThumbnailGenerator) ForVideo(ctx context.Context, srcPath, destPath string) error {
	framePath := destPath + ".frame.jpg"
	defer os.Remove(framePath)

	if err := ExtractFrame(ctx, srcPath, framePath, ThumbnailFrameOffset); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: frame extraction: %v", ErrThumbnail, err)
	}

	return g.ForImage(framePath, destPath)
}
