package mediaingest

// Media policy constants. These values are part of the client contract and
// must not drift.
const (
	// MaxAssetBytes is the post-processing size ceiling for images and videos.
	MaxAssetBytes = 2 * 1024 * 1024

	// MaxVideoSeconds is the maximum video duration; longer uploads are
	// trimmed to their first MaxVideoSeconds seconds.
	MaxVideoSeconds = 60

	// ThumbnailMaxEdge bounds the long edge of generated previews.
	ThumbnailMaxEdge = 300

	// ThumbnailFrameOffset is where the preview frame is taken from a video,
	// in seconds.
	ThumbnailFrameOffset = 0.5
)
