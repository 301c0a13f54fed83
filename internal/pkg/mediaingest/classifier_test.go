package mediaingest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pulsefeed/pulsefeed/internal/pkg/mediaingest"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mime     string
		wantKind mediaingest.MediaKind
		wantErr  bool
	}{
		{name: "jpeg", mime: "image/jpeg", wantKind: mediaingest.MediaImage},
		{name: "png", mime: "image/png", wantKind: mediaingest.MediaImage},
		{name: "gif", mime: "image/gif", wantKind: mediaingest.MediaImage},
		{name: "webp", mime: "image/webp", wantKind: mediaingest.MediaImage},
		{name: "mp4", mime: "video/mp4", wantKind: mediaingest.MediaVideo},
		{name: "quicktime", mime: "video/quicktime", wantKind: mediaingest.MediaVideo},
		{name: "avi", mime: "video/x-msvideo", wantKind: mediaingest.MediaVideo},
		{name: "webm", mime: "video/webm", wantKind: mediaingest.MediaVideo},
		{name: "uppercase is normalized", mime: "IMAGE/JPEG", wantKind: mediaingest.MediaImage},
		{name: "surrounding whitespace is ignored", mime: "  image/png  ", wantKind: mediaingest.MediaImage},
		{name: "codec parameters are stripped", mime: "video/mp4; codecs=avc1", wantKind: mediaingest.MediaVideo},
		{name: "svg is rejected", mime: "image/svg+xml", wantErr: true},
		{name: "pdf is rejected", mime: "application/pdf", wantErr: true},
		{name: "plain text is rejected", mime: "text/plain", wantErr: true},
		{name: "empty is rejected", mime: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, err := mediaingest.Classify(tt.mime)
			if tt.wantErr {
				assert.ErrorIs(t, err, mediaingest.ErrUnsupportedMediaType)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantKind, kind)
		})
	}
}

func TestSniffHead(t *testing.T) {
	t.Parallel()

	jpegHead := append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, make([]byte, 100)...)
	assert.NoError(t, mediaingest.SniffHead(jpegHead))

	assert.ErrorIs(t, mediaingest.SniffHead([]byte("<!DOCTYPE html><html><body>x</body></html>")), mediaingest.ErrUnsupportedMediaType)
	assert.ErrorIs(t, mediaingest.SniffHead([]byte(`<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg"></svg>`)), mediaingest.ErrUnsupportedMediaType)
}
