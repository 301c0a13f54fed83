package mediaingest

import (
	"fmt"
	"time"

	"github.com/pulsefeed/pulsefeed/internal/pkg/cache"
)

// Cache key format for ingestion status
const (
	IngestStatusKeyFormat = "ingest:status:%s" // Format: ingest:status:<uuid>
	ingestStatusTTL       = 24 * time.Hour
)

// Pipeline states for one upload. Failed is terminal and reachable from any
// step; the others occur in order (DurationChecked only for videos).
const (
	StatusReceived        = "received"
	StatusClassified      = "classified"
	StatusDurationChecked = "duration_checked"
	StatusSizeCompliant   = "size_compliant"
	StatusThumbnailed     = "thumbnailed"
	StatusFinalized       = "finalized"
	StatusFailed          = "failed"
)

// Cache implementations are variables so tests can swap in mocks
var (
	SetCacheImplementation    = cache.Set
	GetCacheImplementation    = cache.Get
	DeleteCacheImplementation = cache.Delete
)

// SetIngestStatus records the pipeline state of an upload in the cache
func SetIngestStatus(uploadID, status string) error {
	key := fmt.Sprintf(IngestStatusKeyFormat, uploadID)
	return SetCacheImplementation(key, status, ingestStatusTTL)
}

// GetIngestStatus retrieves the pipeline state of an upload from the cache
func GetIngestStatus(uploadID string) (string, error) {
	key := fmt.Sprintf(IngestStatusKeyFormat, uploadID)
	return GetCacheImplementation(key)
}

// ClearIngestStatus removes the pipeline state of an upload from the cache
func ClearIngestStatus(uploadID string) error {
	key := fmt.Sprintf(IngestStatusKeyFormat, uploadID)
	return DeleteCacheImplementation(key)
}
