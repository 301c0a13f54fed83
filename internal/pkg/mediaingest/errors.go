package mediaingest

import (
	"errors"
	"fmt"
)

// Failure taxonomy for one ingestion. Every error leaving this package wraps
// exactly one of these sentinels so the boundary layer can map failures to
// user-facing responses with errors.Is.
var (
	// ErrUnsupportedMediaType is a client error: the declared MIME type is not
	// in the accepted image/video lists. Nothing has been written to disk yet.
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// ErrProbe means the duration of an uploaded video could not be determined.
	ErrProbe = errors.New("media probe failed")

	// ErrTrim means truncating an over-long video failed, including the
	// re-encode fallback.
	ErrTrim = errors.New("video trim failed")

	// ErrCompressionBudget means the quality/scale (image) or level (video)
	// search space was exhausted without meeting the size budget.
	ErrCompressionBudget = errors.New("could not compress media below size limit")

	// ErrThumbnail means preview generation failed; no asset is published
	// without its thumbnail.
	ErrThumbnail = errors.New("thumbnail generation failed")

	// ErrStorage covers infrastructure failures (disk full, permissions).
	// Details are logged, clients get a generic message.
	ErrStorage = errors.New("storage failure")
)

// wrapStorage tags an infrastructure error with the storage sentinel unless it
// already carries one of the pipeline sentinels.
func wrapStorage(err error) error {
	if err == nil {
		return nil
	}
	for _, sentinel := range []error{ErrUnsupportedMediaType, ErrProbe, ErrTrim, ErrCompressionBudget, ErrThumbnail, ErrStorage} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", ErrStorage, err)
}
