package mediaingest_test

import (
	"fmt"
	"image"
	"image/color"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pulsefeed/pulsefeed/internal/pkg/mediaingest"
)

// writeStub drops an executable shell script and returns its path
func writeStub(t *testing.T, name, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755))
	return path
}

// useFFprobe swaps in an ffprobe stub that prints the given stdout and exits
// with the given code.
func useFFprobe(t *testing.T, stdout string, exitCode int) {
	t.Helper()
	original := mediaingest.FFprobeBin
	t.Cleanup(func() { mediaingest.FFprobeBin = original })
	mediaingest.FFprobeBin = writeStub(t, "ffprobe",
		fmt.Sprintf("printf '%%s' %q\nexit %d\n", stdout, exitCode))
}

// useFFmpeg swaps in an ffmpeg stub running the given script body. The body
// can rely on $last holding the output path (ffmpeg's final argument).
func useFFmpeg(t *testing.T, body string) {
	t.Helper()
	original := mediaingest.FFmpegBin
	t.Cleanup(func() { mediaingest.FFmpegBin = original })
	mediaingest.FFmpegBin = writeStub(t, "ffmpeg", "for last; do :; done\n"+body)
}

// ffmpegWritingBytes is a stub body producing an output file of n bytes
func ffmpegWritingBytes(n int) string {
	return fmt.Sprintf("head -c %d /dev/zero > \"$last\"\n", n)
}

// noiseImage is incompressible content, guaranteed to blow small budgets
func noiseImage(w, h int) *image.NRGBA {
	rng := rand.New(rand.NewSource(1))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{
				R: uint8(rng.Intn(256)),
				G: uint8(rng.Intn(256)),
				B: uint8(rng.Intn(256)),
				A: 255,
			})
		}
	}
	return img
}

// gradientImage compresses extremely well in every format
func gradientImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	return img
}
