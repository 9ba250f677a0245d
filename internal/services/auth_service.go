package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wardenlock/warden/internal/auth"
	"github.com/wardenlock/warden/internal/rules"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

const tokenLifetime = 24 * time.Hour

// AuthService runs the application-level login: the shared credential
// verifier behind the login lockout, issuing a session token on success. It
// also owns password changes, persisting the new digest through the config
// store.
type AuthService struct {
	verifier *auth.Verifier
	lockout  *auth.Lockout
	registry *rules.Registry
	store    *rules.Store
	secret   []byte
}

func NewAuthService(verifier *auth.Verifier, lockout *auth.Lockout, registry *rules.Registry, store *rules.Store, jwtSecret string) *AuthService {
	return &AuthService{
		verifier: verifier,
		lockout:  lockout,
		registry: registry,
		store:    store,
		secret:   []byte(jwtSecret),
	}
}

// Login checks the password through the lockout state machine and returns a
// signed session token. Lockout rejections pass through as *auth.LockedError
// so the handler can report the remaining seconds.
func (s *AuthService) Login(password string) (string, error) {
	if err := s.lockout.Attempt(password); err != nil {
		var locked *auth.LockedError
		if errors.As(err, &locked) {
			return "", locked
		}
		return "", ErrInvalidCredentials
	}

	claims := jwt.MapClaims{
		"sub": "owner",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(tokenLifetime).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a session token.
func (s *AuthService) ValidateToken(tokenString string) error {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}

// ChangePassword verifies the old password, swaps the stored digest, and
// persists the configuration.
func (s *AuthService) ChangePassword(oldPassword, newPassword string) error {
	if !s.verifier.Verify(oldPassword) {
		return ErrInvalidCredentials
	}
	if newPassword == "" {
		return errors.New("new password must not be empty")
	}
	s.verifier.SetHash(auth.HashPassword(newPassword))
	return s.store.Save(rules.File{
		Rules:        s.registry.Snapshot(),
		PasswordHash: s.verifier.Hash(),
	})
}
