package repository

import (
	"github.com/pulsefeed/pulsefeed/app/models"
)

// PostRepository defines the interface for post-related database operations
type PostRepository interface {
	Create(post *models.Post) error
	GetByID(id uint) (*models.Post, error)
	GetByUUID(uuid string) (*models.Post, error)
	GetByTopicID(topicID uint, offset, limit int) ([]models.Post, error)
	GetByUserID(userID uint, offset, limit int) ([]models.Post, error)
	Update(post *models.Post) error
	Delete(id uint) error
	Count() (int64, error)
}

// TopicRepository defines the interface for topic-related database operations
type TopicRepository interface {
	Create(topic *models.Topic) error
	GetByID(id uint) (*models.Topic, error)
	Exists(id uint) (bool, error)
	List() ([]models.Topic, error)
}

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	Ensure(user *models.User) error
}

// Repositories bundles all repository instances
type Repositories struct {
	Post  PostRepository
	Topic TopicRepository
	User  UserRepository
}
