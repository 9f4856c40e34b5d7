// Package auth signs in the club administrator and guards the back office.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/courts/domain"
	"github.com/fastygo/courts/pkg/logger"
	"github.com/fastygo/courts/repository"
)

var (
	ErrInvalidCredentials = domain.NewError(domain.ErrCodeUnauthorized, "invalid credentials")
	ErrInvalidToken       = domain.NewError(domain.ErrCodeUnauthorized, "invalid or expired token")
)

type Config struct {
	Username     string
	PasswordHash string
	Secret       string
	Issuer       string
	TTL          time.Duration
}

type UseCase struct {
	sessions repository.SessionRepository
	cfg      Config
	logger   *zap.Logger
	now      func() time.Time
}

func New(sessions repository.SessionRepository, cfg Config, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	return &UseCase{
		sessions: sessions,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Login checks the admin credentials and opens a session.
func (uc *UseCase) Login(ctx context.Context, username, password string) (*domain.Token, error) {
	log := logger.WithRequestID(ctx, uc.logger)
	if uc.cfg.PasswordHash == "" {
		log.Warn("admin login attempted but no password is configured")
		return nil, ErrInvalidCredentials
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(uc.cfg.Username)) == 1
	passErr := bcrypt.CompareHashAndPassword([]byte(uc.cfg.PasswordHash), []byte(password))
	if !userOK || passErr != nil {
		log.Info("admin login rejected", zap.String("username", username))
		return nil, ErrInvalidCredentials
	}

	now := uc.now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		Username:  uc.cfg.Username,
		CreatedAt: now,
		ExpiresAt: now.Add(uc.cfg.TTL),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, domain.Unavailable("save session failed", err)
	}

	log.Info("admin logged in", zap.String("session_id", session.ID))
	return uc.issue(session)
}

// Refresh extends a live session and returns a fresh token for it.
func (uc *UseCase) Refresh(ctx context.Context, sessionID string) (*domain.Token, error) {
	if _, err := uc.session(ctx, sessionID); err != nil {
		return nil, err
	}
	session, err := uc.sessions.Extend(ctx, sessionID, uc.now().Add(uc.cfg.TTL))
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, domain.Unavailable("extend session failed", err)
	}
	return uc.issue(session)
}

// Logout revokes the session; tokens bound to it stop working immediately.
func (uc *UseCase) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return domain.ErrInvalidPayload
	}
	if err := uc.sessions.Delete(ctx, sessionID); err != nil {
		return domain.Unavailable("delete session failed", err)
	}
	logger.WithRequestID(ctx, uc.logger).Info("admin logged out", zap.String("session_id", sessionID))
	return nil
}

// Verify parses an HS256 token and confirms its session is still open.
func (uc *UseCase) Verify(ctx context.Context, tokenString string) (*domain.Session, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(uc.cfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if uc.cfg.Issuer != "" && !claims.VerifyIssuer(uc.cfg.Issuer, true) {
		return nil, ErrInvalidToken
	}
	session, err := uc.session(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if session.Username != claims.Subject {
		return nil, ErrInvalidToken
	}
	return session, nil
}

func (uc *UseCase) session(ctx context.Context, sessionID string) (*domain.Session, error) {
	if sessionID == "" {
		return nil, ErrInvalidToken
	}
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, domain.Unavailable("load session failed", err)
	}
	if session.IsExpired(uc.now()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return nil, ErrInvalidToken
	}
	return session, nil
}

func (uc *UseCase) issue(session *domain.Session) (*domain.Token, error) {
	claims := jwt.RegisteredClaims{
		Subject:   session.Username,
		ID:        session.ID,
		Issuer:    uc.cfg.Issuer,
		IssuedAt:  jwt.NewNumericDate(uc.now()),
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(uc.cfg.Secret))
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "sign token failed", err)
	}
	return &domain.Token{
		AccessToken: signed,
		SessionID:   session.ID,
		ExpiresAt:   session.ExpiresAt,
	}, nil
}
