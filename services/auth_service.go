package services

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

const operatorTokenTTL = 24 * time.Hour

// AuthService — вход оператора консоли. Учётная запись одна и задаётся
// конфигурацией: управление пользователями в этот сервис не входит.
type AuthService interface {
	Login(password string) (string, error)
}

type authService struct {
	passwordHash []byte
	jwtSecret    []byte
}

func NewAuthService(passwordHash, jwtSecret string) AuthService {
	return &authService{
		passwordHash: []byte(passwordHash),
		jwtSecret:    []byte(jwtSecret),
	}
}

// Login сверяет пароль с bcrypt-хэшем из конфигурации и выдаёт HS256-токен.
func (s *authService) Login(password string) (string, error) {
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"role": "operator",
		"iat":  now.Unix(),
		"exp":  now.Add(operatorTokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
