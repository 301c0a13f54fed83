package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/pulsefeed/pulsefeed/app/models"
)

// topicRepository implements the TopicRepository interface
type topicRepository struct {
	db *gorm.DB
}

// NewTopicRepository creates a new topic repository instance
func NewTopicRepository(db *gorm.DB) TopicRepository {
	return &topicRepository{db: db}
}

// Create creates a new topic in the database
func (r *topicRepository) Create(topic *models.Topic) error {
	return r.db.Create(topic).Error
}

// GetByID retrieves a topic by its ID
func (r *topicRepository) GetByID(id uint) (*models.Topic, error) {
	return models.FindTopicByID(r.db, id)
}

// Exists reports whether a topic with the given ID exists
func (r *topicRepository) Exists(id uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Topic{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return count > 0, nil
}

// List returns all topics
func (r *topicRepository) List() ([]models.Topic, error) {
	return models.FindAllTopics(r.db)
}
