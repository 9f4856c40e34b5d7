package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/courts/domain"
)

type memSessions struct {
	mu   sync.Mutex
	data map[string]domain.Session
}

func newMemSessions() *memSessions {
	return &memSessions{data: make(map[string]domain.Session)}
}

func (m *memSessions) Get(_ context.Context, id string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.data[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &s, nil
}

func (m *memSessions) Save(_ context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[s.ID] = *s
	return nil
}

func (m *memSessions) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}

func (m *memSessions) Extend(_ context.Context, id string, expiresAt time.Time) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.data[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	s.ExpiresAt = expiresAt
	m.data[id] = s
	return &s, nil
}

func newUseCase(t *testing.T) (*UseCase, *memSessions) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	sessions := newMemSessions()
	return New(sessions, Config{
		Username:     "admin",
		PasswordHash: string(hash),
		Secret:       "test-secret",
		Issuer:       "courts",
		TTL:          time.Hour,
	}, nil), sessions
}

func TestLoginAndVerify(t *testing.T) {
	uc, sessions := newUseCase(t)
	ctx := context.Background()

	token, err := uc.Login(ctx, "admin", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, token.AccessToken)
	assert.Contains(t, sessions.data, token.SessionID)

	session, err := uc.Verify(ctx, token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", session.Username)
	assert.Equal(t, token.SessionID, session.ID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	uc, sessions := newUseCase(t)
	for _, tc := range []struct{ user, pass string }{
		{"admin", "wrong"},
		{"root", "s3cret"},
		{"", ""},
	} {
		_, err := uc.Login(context.Background(), tc.user, tc.pass)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}
	assert.Empty(t, sessions.data)
}

func TestLoginDisabledWithoutPassword(t *testing.T) {
	uc := New(newMemSessions(), Config{Username: "admin", Secret: "x"}, nil)
	_, err := uc.Login(context.Background(), "admin", "")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnauthorized))
}

func TestLogoutRevokesToken(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()

	token, err := uc.Login(ctx, "admin", "s3cret")
	require.NoError(t, err)
	require.NoError(t, uc.Logout(ctx, token.SessionID))

	_, err = uc.Verify(ctx, token.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = uc.Refresh(ctx, token.SessionID)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshIssuesNewToken(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()

	token, err := uc.Login(ctx, "admin", "s3cret")
	require.NoError(t, err)

	refreshed, err := uc.Refresh(ctx, token.SessionID)
	require.NoError(t, err)
	assert.Equal(t, token.SessionID, refreshed.SessionID)

	_, err = uc.Verify(ctx, refreshed.AccessToken)
	assert.NoError(t, err)
}

func TestVerifyRejectsForeignTokens(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()
	token, err := uc.Login(ctx, "admin", "s3cret")
	require.NoError(t, err)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "admin",
		ID:        token.SessionID,
		Issuer:    "courts",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	otherIssuer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "admin",
		ID:        token.SessionID,
		Issuer:    "elsewhere",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "admin",
		ID:        token.SessionID,
		Issuer:    "courts",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	for _, tok := range []string{"", "garbage", forged, otherIssuer, expired} {
		_, err := uc.Verify(ctx, tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestRefreshMovesStoredDeadline(t *testing.T) {
	uc, sessions := newUseCase(t)
	ctx := context.Background()
	start := time.Now().Add(-90 * time.Minute)

	uc.now = func() time.Time { return start }
	token, err := uc.Login(ctx, "admin", "s3cret")
	require.NoError(t, err)

	uc.now = func() time.Time { return start.Add(50 * time.Minute) }
	refreshed, err := uc.Refresh(ctx, token.SessionID)
	require.NoError(t, err)
	assert.Equal(t, start.Add(110*time.Minute), sessions.data[token.SessionID].ExpiresAt)

	uc.now = time.Now
	_, err = uc.Verify(ctx, refreshed.AccessToken)
	assert.NoError(t, err)
}
