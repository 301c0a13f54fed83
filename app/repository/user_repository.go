package repository

import (
	"gorm.io/gorm"

	"github.com/pulsefeed/pulsefeed/app/models"
)

// userRepository implements the UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository instance
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user in the database
func (r *userRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// GetByID retrieves a user by its ID
func (r *userRepository) GetByID(id uint) (*models.User, error) {
	return models.FindUserByID(r.db, id)
}

// GetByUsername retrieves a user by username
func (r *userRepository) GetByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Ensure mirrors a verified identity into the local users table. Accounts are
// owned by the identity service; this row only anchors foreign keys.
func (r *userRepository) Ensure(user *models.User) error {
	return r.db.Where(models.User{ID: user.ID}).
		Assign(models.User{Username: user.Username}).
		FirstOrCreate(user).Error
}
