package models

import (
	"time"

	"gorm.io/gorm"
)

// Media type values stored in Post.FileType
const (
	FileTypeImage = "image"
	FileTypeVideo = "video"
)

// Post is a published entry in a topic. The media columns are filled verbatim
// from the normalized asset the ingestion pipeline emits; a post row never
// references a file that has not passed every media policy.
type Post struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	UUID        string `gorm:"type:char(36) CHARACTER SET utf8 COLLATE utf8_bin;uniqueIndex;not null" json:"uuid"`
	UserID      uint   `gorm:"index;not null" json:"user_id"`
	User        User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	TopicID     uint   `gorm:"index;not null" json:"topic_id"`
	Topic       Topic  `gorm:"foreignKey:TopicID" json:"topic,omitempty"`
	Description string `gorm:"type:text" json:"description"`

	FileURL         string `gorm:"type:varchar(255);not null" json:"file_url"`
	FileType        string `gorm:"type:varchar(10);not null" json:"file_type"`
	FileSize        int64  `gorm:"type:bigint" json:"file_size"`
	ThumbnailURL    string `gorm:"type:varchar(255);not null" json:"thumbnail_url"`
	DurationSeconds *int   `gorm:"type:int" json:"duration_seconds,omitempty"`
	Width           int    `gorm:"type:int" json:"width"`
	Height          int    `gorm:"type:int" json:"height"`

	// optional EXIF capture for image posts
	CameraModel *string    `gorm:"type:varchar(255)" json:"camera_model,omitempty"`
	TakenAt     *time.Time `json:"taken_at,omitempty"`

	// aggregated from Redis by the counter flusher
	ViewCount int64 `gorm:"type:bigint;not null;default:0" json:"view_count"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsVideo reports whether the post carries a video asset
func (p *Post) IsVideo() bool {
	return p.FileType == FileTypeVideo
}

// FindPostByUUID looks up a post by its public UUID
func FindPostByUUID(db *gorm.DB, uuid string) (*Post, error) {
	var post Post
	if err := db.Preload("Topic").First(&post, "uuid = ?", uuid).Error; err != nil {
		return nil, err
	}
	return &post, nil
}
