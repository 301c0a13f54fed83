package models

import (
	"time"

	"gorm.io/gorm"
)

// Topic is a posting channel; posts must reference an existing topic.
type Topic struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// FindTopicByID looks up a topic by primary key
func FindTopicByID(db *gorm.DB, id uint) (*Topic, error) {
	var topic Topic
	if err := db.First(&topic, id).Error; err != nil {
		return nil, err
	}
	return &topic, nil
}

// FindAllTopics returns all topics ordered by name
func FindAllTopics(db *gorm.DB) ([]Topic, error) {
	var topics []Topic
	if err := db.Order("name ASC").Find(&topics).Error; err != nil {
		return nil, err
	}
	return topics, nil
}
