package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stemsi/kumpul-tugas/internal/config"
	"github.com/stemsi/kumpul-tugas/internal/model"
	"golang.org/x/crypto/bcrypt"
)

// Common auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionInvalid     = errors.New("session is not active")
	ErrNotAuthenticated   = errors.New("admin session required")
)

// TokenTypeAdmin marks admin tokens.
const TokenTypeAdmin = "admin"

// Claims extends JWT standard claims with the token type. The JWT ID is the
// server-side session id.
type Claims struct {
	jwt.RegisteredClaims
	TokenType string `json:"token_type"`
}

// AuthService owns the admin login state. Login and Logout are the only
// transitions; everything else only reads a resolved *model.AdminSession.
type AuthService struct {
	cfg          *config.Config
	sessions     SessionStore
	passwordHash []byte
	now          func() time.Time
}

// NewAuthService creates a new AuthService. When no bcrypt hash is
// configured the plaintext ADMIN_PASSWORD is hashed once here.
func NewAuthService(cfg *config.Config, sessions SessionStore) (*AuthService, error) {
	hash := []byte(cfg.AdminPasswordHash)
	if len(hash) == 0 {
		if cfg.AdminPassword == "" {
			return nil, errors.New("admin password is not configured")
		}
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), cfg.BcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
	} else if _, err := bcrypt.Cost(hash); err != nil {
		return nil, fmt.Errorf("invalid ADMIN_PASSWORD_HASH: %w", err)
	}

	return &AuthService{
		cfg:          cfg,
		sessions:     sessions,
		passwordHash: hash,
		now:          time.Now,
	}, nil
}

// Login checks the shared admin password and opens a new session.
func (s *AuthService) Login(ctx context.Context, password string) (string, *model.AdminSession, error) {
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := s.now()
	sess := &model.AdminSession{
		ID:        uuid.New().String(),
		IssuedAt:  now,
		ExpiresAt: now.Add(s.cfg.JWTExpiry),
	}

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.ID,
			Subject:   TokenTypeAdmin,
			IssuedAt:  jwt.NewNumericDate(sess.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
		TokenType: TokenTypeAdmin,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}

	if err := s.sessions.Save(ctx, sess.ID, s.cfg.JWTExpiry); err != nil {
		return "", nil, fmt.Errorf("store session: %w", err)
	}

	return signed, sess, nil
}

// Authenticate resolves a token to its live session.
func (s *AuthService) Authenticate(ctx context.Context, tokenStr string) (*model.AdminSession, error) {
	claims, err := s.ValidateToken(tokenStr)
	if err != nil {
		return nil, err
	}

	ok, err := s.sessions.Exists(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check session: %w", err)
	}
	if !ok {
		return nil, ErrSessionInvalid
	}

	return &model.AdminSession{
		ID:        claims.ID,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Logout ends the session. Tokens bound to it stop working immediately.
func (s *AuthService) Logout(ctx context.Context, sess *model.AdminSession) error {
	if sess == nil {
		return ErrNotAuthenticated
	}
	return s.sessions.Delete(ctx, sess.ID)
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.TokenType != TokenTypeAdmin || claims.ID == "" {
		return nil, errors.New("invalid token claims")
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, errors.New("token missing timestamps")
	}

	return claims, nil
}
