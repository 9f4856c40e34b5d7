package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/courts/domain"
	"github.com/fastygo/courts/repository"
)

const (
	gridPrefix       = "courts:grid:"
	generationPrefix = "courts:grid:gen:"
	generationTTL    = 48 * time.Hour
)

type gridCache struct {
	client *redislib.Client
	ttl    time.Duration
}

// NewGridCache caches slot tables in Redis for ttl. Each date has a
// generation counter; writes bump it and a grid built under an older
// generation is never stored.
func NewGridCache(client *redislib.Client, ttl time.Duration) repository.GridCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &gridCache{client: client, ttl: ttl}
}

func (c *gridCache) Get(ctx context.Context, date string) (*domain.Grid, bool, error) {
	raw, err := c.client.Get(ctx, gridPrefix+date).Bytes()
	if errors.Is(err, redislib.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var grid domain.Grid
	if err := json.Unmarshal(raw, &grid); err != nil {
		if delErr := c.client.Del(ctx, gridPrefix+date).Err(); delErr != nil {
			return nil, false, fmt.Errorf("drop corrupt grid %s: %w", date, delErr)
		}
		return nil, false, nil
	}
	return &grid, true, nil
}

// Generation returns zero for dates that were never written or whose
// counter expired.
func (c *gridCache) Generation(ctx context.Context, date string) (int64, error) {
	gen, err := c.client.Get(ctx, generationPrefix+date).Int64()
	if errors.Is(err, redislib.Nil) {
		return 0, nil
	}
	return gen, err
}

// Set writes grid under WATCH on the generation key. A concurrent
// Invalidate aborts the transaction and the grid is silently dropped.
func (c *gridCache) Set(ctx context.Context, grid *domain.Grid, generation int64) error {
	if grid == nil {
		return nil
	}
	payload, err := json.Marshal(grid)
	if err != nil {
		return err
	}

	genKey := generationPrefix + grid.Date
	err = c.client.Watch(ctx, func(tx *redislib.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redislib.Nil) {
			return err
		}
		if current != generation {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
			pipe.Set(ctx, gridPrefix+grid.Date, payload, c.ttl)
			return nil
		})
		return err
	}, genKey)
	if errors.Is(err, redislib.TxFailedErr) {
		return nil
	}
	return err
}

// Invalidate bumps the generation and drops the cached grid in one transaction.
func (c *gridCache) Invalidate(ctx context.Context, date string) error {
	genKey := generationPrefix + date
	_, err := c.client.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, generationTTL)
		pipe.Del(ctx, gridPrefix+date)
		return nil
	})
	return err
}
