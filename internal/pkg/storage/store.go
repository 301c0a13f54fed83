package storage

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/pulsefeed/pulsefeed/internal/pkg/env"
)

// Directory names under the base uploads directory
const (
	ImagesDir     = "images"
	VideosDir     = "videos"
	ThumbnailsDir = "thumbnails"
	StagingDir    = "tmp"
)

// MediaStore manages the on-disk layout for uploaded media. Staged files live
// under tmp/ until the ingestion pipeline promotes them; promotion is a rename
// so a destination path either holds a complete file or nothing.
type MediaStore struct {
	BaseDir string
}

// NewMediaStore creates a media store rooted at the given base directory.
// An empty baseDir falls back to the UPLOADS_DIR environment variable.
func NewMediaStore(baseDir string) *MediaStore {
	if baseDir == "" {
		baseDir = env.GetEnv("UPLOADS_DIR", "uploads")
	}
	return &MediaStore{BaseDir: baseDir}
}

// EnsureLayout creates the uploads directory tree
func (s *MediaStore) EnsureLayout() error {
	for _, dir := range []string{ImagesDir, VideosDir, ThumbnailsDir, StagingDir} {
		if err := os.MkdirAll(filepath.Join(s.BaseDir, dir), 0755); err != nil {
			return fmt.Errorf("error creating directory %s: %w", dir, err)
		}
	}
	return nil
}

// UniqueFileName derives a collision-free file name, keeping the original
// extension. Timestamp plus random suffix is the only coordination needed
// between concurrent uploads.
func (s *MediaStore) UniqueFileName(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return fmt.Sprintf("file-%d-%09d%s", time.Now().UnixMilli(), rand.Intn(1_000_000_000), ext)
}

// Stage writes an incoming upload into the staging area and returns its path.
// A partially written file is removed before the error is returned.
func (s *MediaStore) Stage(src io.Reader, fileName string) (string, error) {
	if err := s.EnsureLayout(); err != nil {
		return "", err
	}

	stagedPath := filepath.Join(s.BaseDir, StagingDir, fileName)
	dst, err := os.Create(stagedPath)
	if err != nil {
		return "", fmt.Errorf("failed to create staged file %s: %w", stagedPath, err)
	}

	written, err := io.Copy(dst, src)
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(stagedPath)
		return "", fmt.Errorf("failed to write staged file %s: %w", stagedPath, err)
	}

	log.Debugf("[MediaStore] Staged %s (%d bytes)", fileName, written)
	return stagedPath, nil
}

// Promote moves a staged file into its final directory (images/ or videos/)
// and returns the destination path. Rename keeps the swap atomic on the same
// filesystem.
func (s *MediaStore) Promote(stagedPath, destDir string) (string, error) {
	destPath := filepath.Join(s.BaseDir, destDir, filepath.Base(stagedPath))
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", destPath, err)
	}
	if err := os.Rename(stagedPath, destPath); err != nil {
		return "", fmt.Errorf("failed to promote %s: %w", stagedPath, err)
	}
	log.Infof("[MediaStore] Promoted %s -> %s", filepath.Base(stagedPath), destPath)
	return destPath, nil
}

// ThumbnailPath returns the destination path for a thumbnail derived from the
// given media file name.
func (s *MediaStore) ThumbnailPath(mediaFileName string) string {
	base := strings.TrimSuffix(mediaFileName, filepath.Ext(mediaFileName))
	return filepath.Join(s.BaseDir, ThumbnailsDir, "thumbnail-"+base+".jpg")
}

// Remove deletes a file, treating a missing file as success
func (s *MediaStore) Remove(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file %s: %w", path, err)
	}
	return nil
}

// PublicURL converts a stored path into the URL path clients use
func (s *MediaStore) PublicURL(storedPath string) string {
	rel, err := filepath.Rel(s.BaseDir, storedPath)
	if err != nil {
		return "/" + filepath.ToSlash(storedPath)
	}
	return "/uploads/" + filepath.ToSlash(rel)
}

// WriteFileAtomic replaces the contents of path via a sibling temp file and
// rename, so readers never observe a half-written file.
func WriteFileAtomic(path string, data []byte) error {
	tmp := path + ".part"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
