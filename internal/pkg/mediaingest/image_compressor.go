package mediaingest

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gofiber/fiber/v2/log"
	"github.com/kolesa-team/go-webp/decoder"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"

	"github.com/pulsefeed/pulsefeed/internal/pkg/storage"
)

// Quality descent policy: start high, step down to the floor.
const (
	startQuality = 80
	floorQuality = 10
	qualityStep  = 10
)

// Scale descent policy: JPEG re-encode at fixed quality, shrinking width.
const (
	scaleQuality   = 70
	startScalePct  = 90
	floorScalePct  = 30
	scaleStepPct   = 10
	gifShrinkRatio = 0.8
)

// ImageCompressor shrinks images until they fit the size budget. Every
// attempt re-derives from the original decode, never from a previous
// attempt's output, so quality loss does not compound.
type ImageCompressor struct {
	// MaxBytes overrides the policy budget; zero means MaxAssetBytes.
	MaxBytes int64
}

// NewImageCompressor creates a compressor with the policy budget
func NewImageCompressor() *ImageCompressor {
	return &ImageCompressor{}
}

func (c *ImageCompressor) budget() int64 {
	if c.MaxBytes > 0 {
		return c.MaxBytes
	}
	return MaxAssetBytes
}

// Compress rewrites the file at path so it fits the budget and returns the
// resulting byte size. A file already within budget is returned untouched.
// Exhausting the quality-then-scale search space yields ErrCompressionBudget.
func (c *ImageCompressor) Compress(path string) (int64, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("%w: stat %s: %v", ErrStorage, path, err)
	}
	if fi.Size() <= c.budget() {
		return fi.Size(), nil
	}

	img, err := DecodeImage(path)
	if err != nil {
		return 0, fmt.Errorf("%w: decode: %v", ErrCompressionBudget, err)
	}

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	origWidth := img.Bounds().Dx()

	// Phase 1: quality descent. GIF has no quality knob; its single policy
	// step is a proportional width reduction, after which the scale descent
	// takes over if the budget is still missed.
	if format == "gif" {
		buf, err := encodeGIFScaled(img, origWidth)
		if err == nil && int64(buf.Len()) <= c.budget() {
			return c.finish(path, buf.Bytes(), "gif width x0.8")
		}
	} else {
		for quality := startQuality; quality >= floorQuality; quality -= qualityStep {
			buf, err := encodeAtQuality(img, format, quality)
			if err != nil {
				log.Warnf("[ImageCompressor] Encode attempt at quality %d failed: %v", quality, err)
				continue
			}
			if int64(buf.Len()) <= c.budget() {
				return c.finish(path, buf.Bytes(), fmt.Sprintf("quality %d", quality))
			}
		}
	}

	// Phase 2: scale descent, always JPEG at fixed quality.
	for pct := startScalePct; pct >= floorScalePct; pct -= scaleStepPct {
		width := origWidth * pct / 100
		if width < 1 {
			break
		}
		resized := imaging.Resize(img, width, 0, imaging.Lanczos)
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: scaleQuality}); err != nil {
			log.Warnf("[ImageCompressor] Encode attempt at scale %d%% failed: %v", pct, err)
			continue
		}
		if int64(buf.Len()) <= c.budget() {
			return c.finish(path, buf.Bytes(), fmt.Sprintf("scale %d%%", pct))
		}
	}

	return 0, fmt.Errorf("%w: image %s (%d bytes)", ErrCompressionBudget, filepath.Base(path), fi.Size())
}

// finish atomically replaces the file contents with the winning attempt
func (c *ImageCompressor) finish(path string, data []byte, attempt string) (int64, error) {
	if err := storage.WriteFileAtomic(path, data); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	log.Infof("[ImageCompressor] Compressed %s to %d bytes (%s)", filepath.Base(path), len(data), attempt)
	return int64(len(data)), nil
}

// encodeAtQuality re-encodes one attempt in the image's own format
func encodeAtQuality(img image.Image, format string, quality int) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	switch format {
	case "png":
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(&buf, img); err != nil {
			return nil, err
		}
	case "webp":
		options, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, float32(quality))
		if err != nil {
			return nil, err
		}
		if err := webp.Encode(&buf, img, options); err != nil {
			return nil, err
		}
	default:
		// JPEG re-encoding for jpg/jpeg and anything unrecognized
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, err
		}
	}
	return &buf, nil
}

// encodeGIFScaled shrinks a GIF by the fixed width ratio, preserving aspect
func encodeGIFScaled(img image.Image, origWidth int) (*bytes.Buffer, error) {
	width := int(float64(origWidth) * gifShrinkRatio)
	if width < 1 {
		width = 1
	}
	resized := imaging.Resize(img, width, 0, imaging.Lanczos)
	var buf bytes.Buffer
	if err := gif.Encode(&buf, resized, nil); err != nil {
		return nil, err
	}
	return &buf, nil
}

// DecodeImage opens an image file, handling WebP separately since the
// standard decoders do not cover it.
func DecodeImage(path string) (image.Image, error) {
	if strings.ToLower(filepath.Ext(path)) == ".webp" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return webp.Decode(f, &decoder.Options{})
	}
	return imaging.Open(path)
}

// ImageDimensions returns the pixel width and height of an image file
func ImageDimensions(path string) (int, int, error) {
	img, err := DecodeImage(path)
	if err != nil {
		return 0, 0, err
	}
	b := img.Bounds()
	return b.Dx(), b.Dy(), nil
}
