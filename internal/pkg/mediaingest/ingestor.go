package mediaingest

import (
	"context"
	"io"
	"runtime"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/pulsefeed/pulsefeed/internal/pkg/storage"
)

// RawUpload is an incoming file as received from the transport layer
type RawUpload struct {
	Reader       io.Reader
	FileName     string
	DeclaredMIME string
	DeclaredSize int64
}

// NormalizedAsset is the result of a successful ingestion: the media file in
// its final location, within policy, with its derived preview and metadata.
type NormalizedAsset struct {
	UploadID        string
	Kind            MediaKind
	StoragePath     string
	ByteSize        int64
	ThumbnailPath   string
	DurationSeconds *int
	Width           int
	Height          int
	CameraModel     *string
	TakenAt         *time.Time
}

// Ingestor runs uploads through the full normalization pipeline: classify,
// stage, enforce duration and size policy, derive a thumbnail, promote. Any
// failure removes everything the attempt wrote; the uploads tree only ever
// holds finalized assets.
type Ingestor struct {
	Store      *storage.MediaStore
	Compressor *ImageCompressor
	Transcoder *VideoTranscoder
	Limiter    *DurationLimiter
	Thumbnails *ThumbnailGenerator

	// encodeSlots bounds concurrent ffmpeg work so parallel video uploads
	// cannot oversubscribe the host.
	encodeSlots chan struct{}
}

// NewIngestor creates an ingestor with policy defaults, bounding concurrent
// video encodes to the number of CPUs.
func NewIngestor(store *storage.MediaStore) *Ingestor {
	return &Ingestor{
		Store:       store,
		Compressor:  NewImageCompressor(),
		Transcoder:  NewVideoTranscoder(),
		Limiter:     NewDurationLimiter(),
		Thumbnails:  NewThumbnailGenerator(),
		encodeSlots: make(chan struct{}, runtime.NumCPU()),
	}
}

// Ingest runs one upload through the pipeline and returns the normalized
// asset. The returned error carries the pipeline sentinel that caused the
// failure, so callers can map it to a response status.
func (ing *Ingestor) Ingest(ctx context.Context, raw RawUpload) (*NormalizedAsset, error) {
	uploadID := uuid.New().String()
	ing.setStatus(uploadID, StatusReceived)

	kind, err := Classify(raw.DeclaredMIME)
	if err != nil {
		ing.setStatus(uploadID, StatusFailed)
		return nil, err
	}
	ing.setStatus(uploadID, StatusClassified)

	fileName := ing.Store.UniqueFileName(raw.FileName)
	stagedPath, err := ing.Store.Stage(raw.Reader, fileName)
	if err != nil {
		ing.setStatus(uploadID, StatusFailed)
		return nil, wrapStorage(err)
	}

	asset := &NormalizedAsset{UploadID: uploadID, Kind: kind}

	switch kind {
	case MediaVideo:
		err = ing.normalizeVideo(ctx, stagedPath, asset)
	default:
		err = ing.normalizeImage(stagedPath, asset)
	}
	if err != nil {
		ing.cleanup(uploadID, stagedPath, "")
		return nil, err
	}
	ing.setStatus(uploadID, StatusSizeCompliant)

	thumbPath := ing.Store.ThumbnailPath(fileName)
	if kind == MediaVideo {
		err = ing.Thumbnails.ForVideo(ctx, stagedPath, thumbPath)
	} else {
		err = ing.Thumbnails.ForImage(stagedPath, thumbPath)
	}
	if err != nil {
		ing.cleanup(uploadID, stagedPath, thumbPath)
		return nil, err
	}
	ing.setStatus(uploadID, StatusThumbnailed)

	destDir := storage.ImagesDir
	if kind == MediaVideo {
		destDir = storage.VideosDir
	}
	finalPath, err := ing.Store.Promote(stagedPath, destDir)
	if err != nil {
		ing.cleanup(uploadID, stagedPath, thumbPath)
		return nil, wrapStorage(err)
	}

	asset.StoragePath = finalPath
	asset.ThumbnailPath = thumbPath
	ing.setStatus(uploadID, StatusFinalized)
	log.Infof("[Ingestor] Finalized %s upload %s as %s (%d bytes)", kind, uploadID, fileName, asset.ByteSize)
	return asset, nil
}

// normalizeVideo enforces the duration cap, then the size budget. Both steps
// rewrite the staged file in place. An encode slot is held for the whole
// sequence since trim fallback and transcoding are the expensive parts.
func (ing *Ingestor) normalizeVideo(ctx context.Context, stagedPath string, asset *NormalizedAsset) error {
	select {
	case ing.encodeSlots <- struct{}{}:
		defer func() { <-ing.encodeSlots }()
	case <-ctx.Done():
		return ctx.Err()
	}

	seconds, err := ing.Limiter.Apply(ctx, stagedPath)
	if err != nil {
		return err
	}
	asset.DurationSeconds = &seconds
	ing.setStatus(asset.UploadID, StatusDurationChecked)

	size, err := ing.Transcoder.Compress(ctx, stagedPath)
	if err != nil {
		return err
	}
	asset.ByteSize = size
	return nil
}

// normalizeImage captures EXIF metadata before compression strips it, then
// enforces the size budget.
func (ing *Ingestor) normalizeImage(stagedPath string, asset *NormalizedAsset) error {
	meta := ExtractImageMetadata(stagedPath)
	asset.CameraModel = meta.CameraModel
	asset.TakenAt = meta.TakenAt

	size, err := ing.Compressor.Compress(stagedPath)
	if err != nil {
		return err
	}
	asset.ByteSize = size

	if w, h, err := ImageDimensions(stagedPath); err == nil {
		asset.Width = w
		asset.Height = h
	}
	return nil
}

// cleanup removes everything a failed attempt wrote and marks the upload failed
func (ing *Ingestor) cleanup(uploadID, stagedPath, thumbPath string) {
	if err := ing.Store.Remove(stagedPath); err != nil {
		log.Errorf("[Ingestor] Cleanup of staged file failed: %v", err)
	}
	if err := ing.Store.Remove(thumbPath); err != nil {
		log.Errorf("[Ingestor] Cleanup of thumbnail failed: %v", err)
	}
	ing.setStatus(uploadID, StatusFailed)
}

func (ing *Ingestor) setStatus(uploadID, status string) {
	if err := SetIngestStatus(uploadID, status); err != nil {
		// Status tracking is advisory; the pipeline outcome is what counts
		log.Warnf("[Ingestor] Could not record status %s for %s: %v", status, uploadID, err)
	}
}
