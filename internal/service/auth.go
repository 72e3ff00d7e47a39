package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidAPIKey = errors.New("invalid api key")

// AuthService guards the dashboard API. Clients either present the raw API
// key on every request, or exchange it once for a short-lived JWT session
// token.
type AuthService struct {
	apiKeyHash string
	jwtSecret  string
	jwtExpiry  time.Duration
}

func NewAuthService(apiKeyHash, jwtSecret string, jwtExpiry time.Duration) *AuthService {
	return &AuthService{
		apiKeyHash: apiKeyHash,
		jwtSecret:  jwtSecret,
		jwtExpiry:  jwtExpiry,
	}
}

// VerifyAPIKey checks the presented key against the configured bcrypt hash.
func (s *AuthService) VerifyAPIKey(key string) error {
	if key == "" {
		return ErrInvalidAPIKey
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.apiKeyHash), []byte(key)); err != nil {
		return ErrInvalidAPIKey
	}
	return nil
}

// IssueToken exchanges a valid API key for a session JWT.
func (s *AuthService) IssueToken(key string) (string, time.Time, error) {
	if err := s.VerifyAPIKey(key); err != nil {
		return "", time.Time{}, err
	}

	expiry := time.Now().Add(s.jwtExpiry)
	claims := jwt.MapClaims{
		"sub": "dashboard",
		"exp": expiry.Unix(),
		"iat": time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiry, nil
}

// VerifyToken validates a session JWT.
func (s *AuthService) VerifyToken(tokenString string) error {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return err
	}
	if !token.Valid {
		return fmt.Errorf("invalid token")
	}
	return nil
}
