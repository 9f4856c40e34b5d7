package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/courts/internal/infrastructure/outbox"
)

// Publisher delivers one encoded event to the broker.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// ConnectionHealth abstracts the broker health check from the monitor.
type ConnectionHealth interface {
	IsOnline() bool
}

// RelayConfig controls how often the outbox is drained and how long entries live.
type RelayConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
	Retention  time.Duration
}

// OutboxRelay forwards outbox entries to the broker on a schedule.
type OutboxRelay struct {
	store     *outbox.Store
	publisher Publisher
	health    ConnectionHealth
	logger    *zap.Logger
	cron      *cron.Cron
	cfg       RelayConfig
}

func NewOutboxRelay(
	store *outbox.Store,
	publisher Publisher,
	health ConnectionHealth,
	logger *zap.Logger,
	cfg RelayConfig,
) (*OutboxRelay, error) {
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 72 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &OutboxRelay{
		store:     store,
		publisher: publisher,
		health:    health,
		logger:    logger.Named("outbox"),
		cfg:       cfg,
		cron:      cron.New(cron.WithSeconds()),
	}

	if _, err := r.cron.AddFunc("@every "+cfg.Interval.String(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if _, err := r.Drain(ctx); err != nil {
			r.logger.Error("outbox drain failed", zap.Error(err))
		}
	}); err != nil {
		return nil, err
	}
	if _, err := r.cron.AddFunc("@hourly", func() {
		if _, err := r.Prune(time.Now()); err != nil {
			r.logger.Error("outbox prune failed", zap.Error(err))
		}
	}); err != nil {
		return nil, err
	}

	return r, nil
}

// Start launches the cron scheduler.
func (r *OutboxRelay) Start() {
	if r == nil || r.cron == nil {
		return
	}
	r.cron.Start()
	r.logger.Info("outbox relay started", zap.Duration("interval", r.cfg.Interval))
}

// Stop waits for a running drain to finish or ctx to expire.
func (r *OutboxRelay) Stop(ctx context.Context) error {
	if r == nil || r.cron == nil {
		return nil
	}
	stopCtx := r.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	r.logger.Info("outbox relay stopped")
	return nil
}

// Drain publishes one batch and reports how many entries were delivered.
// It stops at the first publish failure so entries leave in order.
func (r *OutboxRelay) Drain(ctx context.Context) (int, error) {
	if r == nil || r.store == nil || r.publisher == nil {
		return 0, nil
	}
	if r.health != nil && !r.health.IsOnline() {
		r.logger.Debug("skipping outbox drain (broker offline)")
		return 0, nil
	}

	entries, err := r.store.Peek(r.cfg.BatchSize)
	if err != nil {
		return 0, err
	}

	var sent int
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		if err := r.publisher.Publish(ctx, entry.RoutingKey, entry.Payload); err != nil {
			r.fail(entry, err)
			return sent, nil
		}
		if err := r.store.Ack(entry); err != nil {
			r.logger.Warn("failed to ack published entry", zap.String("entry_id", entry.ID), zap.Error(err))
		}
		sent++
	}
	if sent > 0 {
		r.logger.Debug("outbox drained", zap.Int("published", sent))
	}
	return sent, nil
}

// Prune drops entries older than the retention window.
func (r *OutboxRelay) Prune(now time.Time) (int, error) {
	removed, err := r.store.Prune(now.Add(-r.cfg.Retention))
	if removed > 0 {
		r.logger.Warn("pruned stale outbox entries", zap.Int("count", removed))
	}
	return removed, err
}

func (r *OutboxRelay) fail(entry outbox.Entry, cause error) {
	log := r.logger.With(zap.String("entry_id", entry.ID), zap.String("routing_key", entry.RoutingKey))
	if entry.Attempts+1 >= r.cfg.MaxRetries {
		log.Warn("dropping outbox entry (max retries reached)", zap.Error(cause))
		if err := r.store.Ack(entry); err != nil {
			log.Error("failed to drop outbox entry", zap.Error(err))
		}
		return
	}
	log.Warn("publish failed, will retry", zap.Int("attempt", entry.Attempts+1), zap.Error(cause))
	if _, err := r.store.Retry(entry, cause); err != nil {
		log.Error("failed to record retry", zap.Error(err))
	}
}
