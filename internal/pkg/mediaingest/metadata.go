package mediaingest

import (
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
)

func init() {
	// Register Nikon and Canon maker notes
	exif.RegisterParsers(mknote.All...)
}

// ImageMetadata holds the EXIF fields captured from an uploaded image.
// Missing EXIF data is normal; all fields are optional.
type ImageMetadata struct {
	CameraModel *string
	TakenAt     *time.Time
}

// ExtractImageMetadata reads EXIF data from an image file. It never fails:
// images without EXIF data simply yield an empty result. Must run before
// compression, which strips the metadata.
func ExtractImageMetadata(path string) ImageMetadata {
	var meta ImageMetadata

	f, err := os.Open(path)
	if err != nil {
		log.Warnf("[MediaIngest] Could not open %s for EXIF extraction: %v", path, err)
		return meta
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		// Most screenshots and re-encoded images carry no EXIF block
		return meta
	}

	if m, err := x.Get(exif.Model); err == nil {
		model := strings.TrimSpace(strings.Trim(m.String(), `"`))
		if model != "" {
			meta.CameraModel = &model
		}
	}

	if dt, err := x.DateTime(); err == nil {
		meta.TakenAt = &dt
	}

	return meta
}
