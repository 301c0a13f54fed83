package s3backup

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

// Object key prefixes inside the backup bucket
const (
	MediaPrefix     = "media"
	ThumbnailPrefix = "thumbnails"
)

var (
	defaultClient     *Client
	defaultClientOnce sync.Once
)

// getDefaultClient lazily initializes the shared backup client. A nil return
// means backup is disabled or misconfigured; both are logged once.
func getDefaultClient() *Client {
	defaultClientOnce.Do(func() {
		cfg, err := LoadConfig()
		if err != nil {
			log.Errorf("[S3Backup] Invalid configuration, backup disabled: %v", err)
			return
		}
		if !cfg.IsEnabled() {
			log.Debugf("[S3Backup] Backup disabled")
			return
		}
		client, err := NewClient(cfg)
		if err != nil {
			log.Errorf("[S3Backup] Client initialization failed, backup disabled: %v", err)
			return
		}
		defaultClient = client
	})
	return defaultClient
}

// BackupAsset copies a finalized media file and its thumbnail to the backup
// bucket in the background. Serving never waits on or fails because of the
// backup; errors are logged only.
func BackupAsset(mediaPath, thumbnailPath string) {
	client := getDefaultClient()
	if client == nil {
		return
	}

	go func() {
		now := time.Now()
		if _, err := client.UploadFile(mediaPath, client.config.GetObjectKey(MediaPrefix, mediaPath, now)); err != nil {
			log.Errorf("[S3Backup] Media backup failed for %s: %v", mediaPath, err)
		}
		if thumbnailPath == "" {
			return
		}
		if _, err := client.UploadFile(thumbnailPath, client.config.GetObjectKey(ThumbnailPrefix, thumbnailPath, now)); err != nil {
			log.Errorf("[S3Backup] Thumbnail backup failed for %s: %v", thumbnailPath, err)
		}
	}()
}
