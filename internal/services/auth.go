package services

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"tareas-api/internal/models"
	"tareas-api/internal/stores"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const tokenIssuer = "tareas-api"

// AuthService is the session issuer: it verifies credentials, mints
// bearer tokens and resolves the acting user from a presented token.
type AuthService interface {
	Login(db *gorm.DB, email, password string) (*models.User, error)
	GenerateToken(userID uint) (string, error)
	ResolveActor(tokenString string) (uint, error)
}

type AuthServiceImpl struct {
	users  stores.UserStore
	secret string
	ttl    time.Duration
}

func NewAuthService(users stores.UserStore, secret string, ttl time.Duration) *AuthServiceImpl {
	return &AuthServiceImpl{users: users, secret: secret, ttl: ttl}
}

func VerifyPassword(hashedPassword, plainPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	return err == nil
}

func (s *AuthServiceImpl) Login(db *gorm.DB, email, password string) (*models.User, error) {
	user, err := s.users.FindByEmail(db, email)
	if err != nil {
		if errors.Is(err, stores.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !VerifyPassword(user.HashedPassword, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *AuthServiceImpl) GenerateToken(userID uint) (string, error) {
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iss": tokenIssuer,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(s.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

func (s *AuthServiceImpl) ResolveActor(tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.secret), nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired())
	if err != nil {
		return 0, fmt.Errorf("token validation failed: %w", err)
	}
	if !token.Valid {
		return 0, jwt.ErrTokenUnverifiable
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("unexpected token claims")
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return 0, fmt.Errorf("token has no subject: %w", err)
	}
	userID, err := strconv.ParseUint(sub, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("token subject is not a user id: %w", err)
	}
	return uint(userID), nil
}
