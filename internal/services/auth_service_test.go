package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jeiu/caffeine-backend/internal/domain"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	return &AuthService{
		DB:       newSvcDB(t),
		Secret:   []byte("test-secret"),
		TokenTTL: time.Hour,
	}
}

func TestSignup_CreatesMemberAndProfile(t *testing.T) {
	s := newAuthService(t)

	m, err := s.Signup(context.Background(), "  alice  ", "", "pw123456")
	if err != nil {
		t.Fatalf("Signup error: %v", err)
	}
	if m.Username != "alice" {
		t.Fatalf("username not trimmed: %q", m.Username)
	}
	if m.Name != "alice" {
		t.Fatalf("blank name should default to username, got %q", m.Name)
	}
	if m.PasswordHash == "pw123456" || m.PasswordHash == "" {
		t.Fatalf("password stored unhashed")
	}

	var p domain.CaffeineProfile
	if err := s.DB.First(&p, "member_id = ?", m.ID).Error; err != nil {
		t.Fatalf("default profile missing: %v", err)
	}
	if p.WeightKg != 70 || p.DailyLimitMg != 400 {
		t.Fatalf("unexpected profile defaults: %+v", p)
	}
}

func TestSignup_Validation(t *testing.T) {
	s := newAuthService(t)

	if _, err := s.Signup(context.Background(), "   ", "x", "pw"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("blank username should be rejected, got %v", err)
	}
	if _, err := s.Signup(context.Background(), "bob", "x", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("blank password should be rejected, got %v", err)
	}
}

func TestSignup_DuplicateUsername(t *testing.T) {
	s := newAuthService(t)

	if _, err := s.Signup(context.Background(), "carol", "Carol", "pw123456"); err != nil {
		t.Fatalf("first signup error: %v", err)
	}
	if _, err := s.Signup(context.Background(), "carol", "Other", "pw654321"); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}

	// The failed transaction must not leave an orphan profile behind.
	var cnt int64
	if err := s.DB.Model(&domain.CaffeineProfile{}).Count(&cnt).Error; err != nil {
		t.Fatalf("count profiles: %v", err)
	}
	if cnt != 1 {
		t.Fatalf("expected exactly one profile, got %d", cnt)
	}
}

func TestLogin_RoundTrip(t *testing.T) {
	s := newAuthService(t)
	if _, err := s.Signup(context.Background(), "dave", "Dave", "hunter22"); err != nil {
		t.Fatalf("signup: %v", err)
	}

	tok, m, err := s.Login(context.Background(), "dave", "hunter22")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if tok == "" || m == nil || m.Username != "dave" {
		t.Fatalf("unexpected login result: tok=%q m=%+v", tok, m)
	}

	sub, err := s.ParseToken(tok)
	if err != nil {
		t.Fatalf("ParseToken error: %v", err)
	}
	if sub != m.ID {
		t.Fatalf("token subject = %q; want %q", sub, m.ID)
	}
}

func TestLogin_WrongCredentialsIndistinguishable(t *testing.T) {
	s := newAuthService(t)
	if _, err := s.Signup(context.Background(), "erin", "Erin", "correct-pw"); err != nil {
		t.Fatalf("signup: %v", err)
	}

	if _, _, err := s.Login(context.Background(), "erin", "wrong-pw"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: got %v", err)
	}
	if _, _, err := s.Login(context.Background(), "nobody", "correct-pw"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user: got %v", err)
	}
}

func TestParseToken_Garbage(t *testing.T) {
	s := newAuthService(t)

	if _, err := s.ParseToken("not-a-token"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	// Token signed with a different secret must fail verification.
	other := &AuthService{DB: s.DB, Secret: []byte("other-secret"), TokenTTL: time.Hour}
	tok, err := other.issueToken("member-x")
	if err != nil {
		t.Fatalf("issueToken: %v", err)
	}
	if _, err := s.ParseToken(tok); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("foreign-signed token accepted: %v", err)
	}
}

func TestParseToken_Expired(t *testing.T) {
	s := newAuthService(t)
	s.TokenTTL = time.Millisecond

	tok, err := s.issueToken("member-y")
	if err != nil {
		t.Fatalf("issueToken: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, err := s.ParseToken(tok); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expired token accepted: %v", err)
	}
}
