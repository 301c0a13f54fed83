package mediaingest_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pulsefeed/pulsefeed/internal/pkg/mediaingest"
)

func TestIngestStatusRoundTrip(t *testing.T) {
	store := map[string]string{}

	originalSet := mediaingest.SetCacheImplementation
	originalGet := mediaingest.GetCacheImplementation
	originalDelete := mediaingest.DeleteCacheImplementation
	t.Cleanup(func() {
		mediaingest.SetCacheImplementation = originalSet
		mediaingest.GetCacheImplementation = originalGet
		mediaingest.DeleteCacheImplementation = originalDelete
	})

	mediaingest.SetCacheImplementation = func(key string, value interface{}, expiration time.Duration) error {
		store[key] = value.(string)
		return nil
	}
	mediaingest.GetCacheImplementation = func(key string) (string, error) {
		v, ok := store[key]
		if !ok {
			return "", fmt.Errorf("cache miss")
		}
		return v, nil
	}
	mediaingest.DeleteCacheImplementation = func(key string) error {
		delete(store, key)
		return nil
	}

	t.Run("set and get", func(t *testing.T) {
		assert.NoError(t, mediaingest.SetIngestStatus("upload-1", mediaingest.StatusClassified))

		status, err := mediaingest.GetIngestStatus("upload-1")
		assert.NoError(t, err)
		assert.Equal(t, mediaingest.StatusClassified, status)

		// Key uses the documented format
		_, ok := store[fmt.Sprintf(mediaingest.IngestStatusKeyFormat, "upload-1")]
		assert.True(t, ok)
	})

	t.Run("clear removes the entry", func(t *testing.T) {
		assert.NoError(t, mediaingest.SetIngestStatus("upload-2", mediaingest.StatusFinalized))
		assert.NoError(t, mediaingest.ClearIngestStatus("upload-2"))

		_, err := mediaingest.GetIngestStatus("upload-2")
		assert.Error(t, err)
	})

	t.Run("unknown upload misses", func(t *testing.T) {
		_, err := mediaingest.GetIngestStatus("nope")
		assert.Error(t, err)
	})
}
