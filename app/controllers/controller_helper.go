package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/pulsefeed/pulsefeed/internal/pkg/mediaingest"
)

// mapIngestError translates a pipeline failure into the HTTP response the
// client sees. Client-side problems (bad media, over budget) get 4xx with a
// concrete message; infrastructure failures stay generic.
func mapIngestError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, mediaingest.ErrUnsupportedMediaType):
		return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
			"error":   "unsupported_media_type",
			"message": "Only JPEG, PNG, GIF, WebP images and MP4, MOV, AVI, WebM videos are accepted",
		})
	case errors.Is(err, mediaingest.ErrCompressionBudget):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "file_too_large",
			"message": "File could not be reduced to the size limit",
		})
	case errors.Is(err, mediaingest.ErrProbe):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "unreadable_media",
			"message": "Video could not be analyzed",
		})
	case errors.Is(err, mediaingest.ErrTrim):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "unprocessable_video",
			"message": "Video could not be trimmed to the 60 second limit",
		})
	case errors.Is(err, mediaingest.ErrThumbnail):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "thumbnail_failed",
			"message": "A thumbnail could not be generated from the file",
		})
	default:
		// ErrStorage and anything unexpected
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "internal_server_error",
			"message": "Media processing failed",
		})
	}
}
