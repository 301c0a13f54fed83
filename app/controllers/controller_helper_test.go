package controllers

import (
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsefeed/pulsefeed/internal/pkg/mediaingest"
)

func TestMapIngestError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "unsupported media type", err: mediaingest.ErrUnsupportedMediaType, wantStatus: fiber.StatusUnsupportedMediaType},
		{name: "wrapped unsupported media type", err: fmt.Errorf("%w: image/tiff", mediaingest.ErrUnsupportedMediaType), wantStatus: fiber.StatusUnsupportedMediaType},
		{name: "compression budget", err: mediaingest.ErrCompressionBudget, wantStatus: fiber.StatusBadRequest},
		{name: "probe failure", err: mediaingest.ErrProbe, wantStatus: fiber.StatusBadRequest},
		{name: "trim failure", err: mediaingest.ErrTrim, wantStatus: fiber.StatusBadRequest},
		{name: "wrapped trim failure", err: fmt.Errorf("%w: stream copy and re-encode failed", mediaingest.ErrTrim), wantStatus: fiber.StatusBadRequest},
		{name: "thumbnail failure", err: mediaingest.ErrThumbnail, wantStatus: fiber.StatusBadRequest},
		{name: "storage failure", err: mediaingest.ErrStorage, wantStatus: fiber.StatusInternalServerError},
		{name: "unknown error", err: fmt.Errorf("boom"), wantStatus: fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				return mapIngestError(c, tt.err)
			})

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}
