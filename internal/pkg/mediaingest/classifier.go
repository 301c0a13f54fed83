package mediaingest

import (
	"fmt"
	"net/http"
	"strings"
)

// MediaKind distinguishes the two accepted media families
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

var allowedImageMime = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

var allowedVideoMime = map[string]bool{
	"video/mp4":       true,
	"video/quicktime": true,
	"video/x-msvideo": true,
	"video/webm":      true,
}

// Classify maps a declared MIME type onto a media kind. Classification is
// pure; content that lies about its type is caught later by the probe or
// decode steps.
func Classify(declaredMime string) (MediaKind, error) {
	mime := strings.ToLower(strings.TrimSpace(declaredMime))
	// Strip optional parameters like "; codecs=..."
	if idx := strings.Index(mime, ";"); idx >= 0 {
		mime = strings.TrimSpace(mime[:idx])
	}

	switch {
	case allowedImageMime[mime]:
		return MediaImage, nil
	case allowedVideoMime[mime]:
		return MediaVideo, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedMediaType, declaredMime)
	}
}

// SniffHead inspects the first bytes of an upload and blocks obviously
// scriptable content regardless of the declared type. This is defense in
// depth, not a contract: binary content that merely mismatches its declared
// type passes here and fails downstream.
func SniffHead(head []byte) error {
	detected := http.DetectContentType(head)

	if strings.HasPrefix(detected, "text/html") || strings.HasPrefix(detected, "application/xhtml") {
		return fmt.Errorf("%w: HTML content is not allowed", ErrUnsupportedMediaType)
	}
	if strings.HasPrefix(detected, "text/xml") || strings.HasPrefix(detected, "application/xml") || detected == "image/svg+xml" {
		return fmt.Errorf("%w: SVG/XML content is not allowed", ErrUnsupportedMediaType)
	}

	return nil
}
