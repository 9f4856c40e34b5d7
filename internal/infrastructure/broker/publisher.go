// Package broker publishes reservation events to a RabbitMQ topic exchange.
package broker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	dialTimeout      = 5 * time.Second
	defaultRedialGap = 5 * time.Second
)

var (
	// ErrClosed is returned once Close has been called.
	ErrClosed = errors.New("broker: publisher closed")
	// ErrRedialBackoff is returned while a failed dial is too recent to retry.
	ErrRedialBackoff = errors.New("broker: waiting before next dial")
)

// Publisher sends JSON bodies to one durable topic exchange. The connection
// is opened on first use and reopened after the broker drops it, at most once
// per redial gap.
type Publisher struct {
	url      string
	exchange string
	logger   *zap.Logger
	gap      time.Duration

	dial func(url string) (*amqp.Connection, error)
	now  func() time.Time

	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	lastDial time.Time
	closed   bool
}

// NewPublisher returns a publisher for exchange. It does not dial; call
// Ping or Publish to connect.
func NewPublisher(url, exchange string, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		url:      url,
		exchange: exchange,
		logger:   logger,
		gap:      defaultRedialGap,
		dial: func(url string) (*amqp.Connection, error) {
			return amqp.DialConfig(url, amqp.Config{Dial: amqp.DefaultDial(dialTimeout)})
		},
		now: time.Now,
	}
}

// Publish sends an already encoded JSON body under routing key.
func (p *Publisher) Publish(ctx context.Context, key string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ensure(); err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}

// Ping reports whether the broker is reachable, reconnecting if needed.
// The monitor calls it on every tick, so a broker that comes up late is
// picked up without a restart.
func (p *Publisher) Ping(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ensure()
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return p.drop()
}

// ensure must be called with mu held.
func (p *Publisher) ensure() error {
	if p.closed {
		return ErrClosed
	}
	if p.conn != nil && !p.conn.IsClosed() && p.ch != nil && !p.ch.IsClosed() {
		return nil
	}
	_ = p.drop()

	now := p.now()
	if !p.lastDial.IsZero() && now.Sub(p.lastDial) < p.gap {
		return ErrRedialBackoff
	}
	p.lastDial = now

	conn, err := p.dial(p.url)
	if err != nil {
		return fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("declare exchange: %w", err)
	}

	closes := conn.NotifyClose(make(chan *amqp.Error, 1))
	go func() {
		if reason, ok := <-closes; ok && reason != nil {
			p.logger.Warn("rabbitmq connection lost", zap.String("reason", reason.Reason), zap.Int("code", reason.Code))
		}
	}()

	p.conn, p.ch = conn, ch
	p.logger.Info("connected to rabbitmq", zap.String("exchange", p.exchange))
	return nil
}

// drop must be called with mu held.
func (p *Publisher) drop() error {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn = nil
	if errors.Is(err, amqp.ErrClosed) {
		return nil
	}
	return err
}
