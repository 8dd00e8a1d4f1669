package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"talentsearch/internal/pkg/jwtutil"
)

var ErrInvalidCredential = errors.New("invalid username or password")

// AuthService authenticates the single operator account that guards the
// mutating endpoints (ingestion, store reset). Credentials come from
// configuration; the password is hashed once at construction.
type AuthService struct {
	username      string
	passwordHash  []byte
	jwtSecret     string
	jwtExpiration time.Duration
}

func NewAuthService(username, password, jwtSecret string, jwtExpiration time.Duration) (*AuthService, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return nil, errors.New("operator credentials must be configured")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash operator password failed: %w", err)
	}
	return &AuthService{
		username:      username,
		passwordHash:  hash,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}, nil
}

// Login checks the operator credentials and returns a signed JWT.
func (s *AuthService) Login(username, password string) (string, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return "", ErrInvalidInput
	}
	if username != s.username {
		return "", ErrInvalidCredential
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return "", ErrInvalidCredential
	}
	return jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, username)
}
