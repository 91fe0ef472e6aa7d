// Package services – AuthService
//
// This file implements account registration, credential verification, and
// bearer-token issuance/resolution. Passwords are stored as bcrypt hashes;
// sessions are stateless HS256 JWTs whose subject is the username, so token
// resolution always re-reads the user row and re-checks the ban flag.
package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/medassist/llm-chat-backend/internal/domain"
	"github.com/medassist/llm-chat-backend/internal/repo"
)

// AuthService issues and verifies credentials.
type AuthService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// JWTSecret signs and verifies access tokens (HS256).
	JWTSecret []byte
	// TokenTTL bounds access-token lifetime.
	TokenTTL time.Duration
}

// NewAuthService constructs an AuthService with a default token lifetime.
func NewAuthService(db *gorm.DB, secret []byte) *AuthService {
	return &AuthService{
		DB:        db,
		JWTSecret: secret,
		TokenTTL:  30 * time.Minute,
	}
}

// Register creates a new non-admin account. Usernames are trimmed and must
// be 3–64 runes; passwords must be at least 6 runes.
func (s *AuthService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if n := utf8.RuneCountInString(username); n < 3 || n > 64 {
		return nil, ErrInvalidCredentials
	}
	if utf8.RuneCountInString(password) < 6 {
		return nil, ErrInvalidCredentials
	}

	if _, err := repo.GetUserByUsername(ctx, s.DB, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return repo.CreateUser(ctx, s.DB, username, string(hash), domain.RoleUser)
}

// Login verifies the credentials and returns a signed access token together
// with the account it belongs to. Banned accounts cannot log in.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	user, err := repo.GetUserByUsername(ctx, s.DB, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}
	if user.IsBanned {
		return "", nil, ErrUserBanned
	}

	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   user.Username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.TokenTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.JWTSecret)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// ResolveToken verifies a bearer token and loads the current user. The ban
// flag is re-checked on every call so a ban takes effect immediately, not at
// token expiry.
func (s *AuthService) ResolveToken(ctx context.Context, token string) (*domain.User, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.JWTSecret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidCredentials
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := repo.GetUserByUsername(ctx, s.DB, claims.Subject)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if user.IsBanned {
		return nil, ErrUserBanned
	}
	return user, nil
}
