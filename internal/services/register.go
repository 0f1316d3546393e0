package services

import (
	"errors"

	"tareas-api/internal/models"
	"tareas-api/internal/stores"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegistrationRequest struct {
	Email    string `form:"email" json:"email" binding:"required,email"`
	Password string `form:"password" json:"password" binding:"required,min=8"`
}

type RegisterService interface {
	RegisterUser(db *gorm.DB, req RegistrationRequest) (*models.User, error)
}

type RegisterServiceImpl struct {
	users      stores.UserStore
	bcryptCost int
}

func NewRegisterService(users stores.UserStore, bcryptCost int) *RegisterServiceImpl {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &RegisterServiceImpl{users: users, bcryptCost: bcryptCost}
}

func (s *RegisterServiceImpl) RegisterUser(db *gorm.DB, req RegistrationRequest) (*models.User, error) {
	// Fast path only: the unique index on users.email is what actually
	// guarantees no duplicate survives a concurrent registration.
	if _, err := s.users.FindByEmail(db, req.Email); err == nil {
		return nil, stores.ErrEmailTaken
	} else if !errors.Is(err, stores.ErrUserNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	return s.users.Create(db, req.Email, string(hashedPassword))
}
