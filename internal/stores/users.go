package stores

import (
	"errors"

	"tareas-api/internal/models"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

type UserStore interface {
	Create(db *gorm.DB, email, hashedPassword string) (*models.User, error)
	FindByEmail(db *gorm.DB, email string) (*models.User, error)
	FindByID(db *gorm.DB, id uint) (*models.User, error)
}

type UserStoreImpl struct{}

func NewUserStore() *UserStoreImpl {
	return &UserStoreImpl{}
}

func (s *UserStoreImpl) Create(db *gorm.DB, email, hashedPassword string) (*models.User, error) {
	user := models.User{
		Email:          email,
		HashedPassword: hashedPassword,
	}
	if err := db.Create(&user).Error; err != nil {
		// The unique index on email settles the race two concurrent
		// registrations would otherwise win together.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserStoreImpl) FindByEmail(db *gorm.DB, email string) (*models.User, error) {
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserStoreImpl) FindByID(db *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
