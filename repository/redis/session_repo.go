package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/courts/domain"
	"github.com/fastygo/courts/repository"
)

const sessionPrefix = "courts:session:"

type sessionRepository struct {
	client *redislib.Client
	ttl    time.Duration
}

// NewSessionRepository keeps admin sessions as JSON values that Redis expires
// at the session's own deadline. ttl applies when a session has none.
func NewSessionRepository(client *redislib.Client, ttl time.Duration) repository.SessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &sessionRepository{client: client, ttl: ttl}
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	raw, err := r.client.Get(ctx, sessionPrefix+id).Bytes()
	if errors.Is(err, redislib.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) Save(ctx context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" {
		return domain.ErrInvalidPayload
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	if !session.ExpiresAt.After(session.CreatedAt) {
		session.ExpiresAt = session.CreatedAt.Add(r.ttl)
	}
	return r.write(ctx, session, "")
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, sessionPrefix+id).Err()
}

// Extend moves the deadline of an existing session. The stored value and the
// key expiry change together so readers never see the old deadline.
func (r *sessionRepository) Extend(ctx context.Context, id string, expiresAt time.Time) (*domain.Session, error) {
	session, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	session.ExpiresAt = expiresAt
	if err := r.write(ctx, session, "XX"); err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

// write stores session with a key expiry equal to its deadline. mode "XX"
// refuses to resurrect a session deleted in the meantime.
func (r *sessionRepository) write(ctx context.Context, session *domain.Session, mode string) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return r.client.SetArgs(ctx, sessionPrefix+session.ID, payload, redislib.SetArgs{
		Mode:     mode,
		ExpireAt: session.ExpiresAt,
	}).Err()
}
