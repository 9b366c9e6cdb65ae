package repositories

import (
	"errors"

	"artfolio_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEmptyUserFilter = errors.New("user filter is empty")
)

type UserRepository interface {
	Create(db *gorm.DB, user *models.User) error
	FindByID(db *gorm.DB, id string) (*models.User, error)
	FindOne(db *gorm.DB, filter models.UserFilter) (*models.User, error)
}

type UserRepositoryImpl struct{}

func NewUserRepository() UserRepository {
	return &UserRepositoryImpl{}
}

func (r *UserRepositoryImpl) Create(db *gorm.DB, user *models.User) error {
	return db.Create(user).Error
}

func (r *UserRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.User, error) {
	var user models.User
	err := db.First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindOne ищет первого пользователя по непустым полям фильтра.
func (r *UserRepositoryImpl) FindOne(db *gorm.DB, filter models.UserFilter) (*models.User, error) {
	if filter.IsEmpty() {
		return nil, ErrEmptyUserFilter
	}

	query := db.Model(&models.User{})
	if filter.Username != "" {
		query = query.Where("username = ?", filter.Username)
	}
	if filter.UID != "" {
		query = query.Where("uid = ?", filter.UID)
	}
	if filter.Email != "" {
		query = query.Where("email = ?", filter.Email)
	}

	var user models.User
	if err := query.Order("created_at ASC").First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
