// Package services – AuthService
//
// This file implements the AuthService, which handles account creation and
// login. Passwords are stored as bcrypt hashes; successful logins are issued
// a signed HS256 JWT whose subject is the member ID. Token parsing for the
// HTTP middleware lives here too so the signing and verification logic stays
// in one place.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/jeiu/caffeine-backend/internal/domain"
	"github.com/jeiu/caffeine-backend/internal/repo"
)

// Default profile settings applied at signup. 400mg matches the common
// adult guideline; weight is a placeholder until the member fills in their
// profile.
const (
	defaultWeightKg     = 70.0
	defaultDailyLimitMg = 400.0
)

// AuthService implements signup and login.
type AuthService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Secret signs and verifies JWTs.
	Secret []byte
	// TokenTTL bounds token validity. Zero falls back to 72h.
	TokenTTL time.Duration
}

// Signup creates a member plus their default caffeine profile in one
// transaction. Returns ErrUsernameTaken when the handle is in use.
func (s *AuthService) Signup(ctx context.Context, username, name, password string) (*domain.Member, error) {
	username = strings.TrimSpace(username)
	name = strings.TrimSpace(name)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	if name == "" {
		name = username
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	var member *domain.Member
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := repo.CreateMember(ctx, tx, username, name, string(hash))
		if err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return ErrUsernameTaken
			}
			return err
		}
		if _, err := repo.CreateProfile(ctx, tx, m.ID, defaultWeightKg, defaultDailyLimitMg); err != nil {
			return err
		}
		member = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

// Login verifies the credentials and returns a signed token plus the member.
// Wrong username and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.Member, error) {
	m, err := repo.GetMemberByUsername(ctx, s.DB, strings.TrimSpace(username))
	if err != nil {
		if isNotFound(err) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}
	tok, err := s.issueToken(m.ID)
	if err != nil {
		return "", nil, err
	}
	return tok, m, nil
}

func (s *AuthService) issueToken(memberID string) (string, error) {
	ttl := s.TokenTTL
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   memberID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
}

// ParseToken verifies a token string and returns the member ID it was issued
// to. Any verification failure yields ErrInvalidCredentials.
func (s *AuthService) ParseToken(tokenString string) (string, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidCredentials
		}
		return s.Secret, nil
	})
	if err != nil || !tok.Valid {
		return "", ErrInvalidCredentials
	}
	claims, ok := tok.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalidCredentials
	}
	return claims.Subject, nil
}
