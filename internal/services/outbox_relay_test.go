package services

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/courts/domain"
	"github.com/fastygo/courts/internal/infrastructure/monitor"
	"github.com/fastygo/courts/internal/infrastructure/outbox"
)

type published struct {
	key  string
	body []byte
}

type fakePublisher struct {
	mu   sync.Mutex
	err  error
	sent []published
}

func (p *fakePublisher) Publish(_ context.Context, key string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, published{key: key, body: body})
	return nil
}

type staticHealth bool

func (h staticHealth) IsOnline() bool { return bool(h) }

func newOutbox(t *testing.T) *outbox.Store {
	t.Helper()
	store, err := outbox.Open(filepath.Join(t.TempDir(), "outbox.db"), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func record(t *testing.T, sink *OutboxSink, name string, id int64) {
	t.Helper()
	require.NoError(t, sink.RecordReservation(context.Background(), name, &domain.Reservation{
		ID:         id,
		ResourceID: "1",
		Date:       "2025-06-01",
		Slot:       "10:00-11:00",
		Label:      "Ana",
		Status:     domain.StatusActive,
	}))
}

func TestRelayPublishesInOrder(t *testing.T) {
	store := newOutbox(t)
	sink := NewOutboxSink(store)
	record(t, sink, domain.EventReservationCreated, 1)
	time.Sleep(time.Millisecond)
	record(t, sink, domain.EventReservationCancelled, 1)

	pub := &fakePublisher{}
	relay, err := NewOutboxRelay(store, pub, staticHealth(true), nil, RelayConfig{})
	require.NoError(t, err)

	sent, err := relay.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	require.Len(t, pub.sent, 2)
	assert.Equal(t, domain.EventReservationCreated, pub.sent[0].key)
	assert.Equal(t, domain.EventReservationCancelled, pub.sent[1].key)

	var event domain.ReservationEvent
	require.NoError(t, json.Unmarshal(pub.sent[0].body, &event))
	assert.Equal(t, int64(1), event.ReservationID)
	assert.Equal(t, "Ana", event.Label)
	assert.Equal(t, "active", event.Status)

	n, err := store.Len()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRelaySkipsWhenBrokerOffline(t *testing.T) {
	store := newOutbox(t)
	record(t, NewOutboxSink(store), domain.EventReservationCreated, 1)

	pub := &fakePublisher{}
	relay, err := NewOutboxRelay(store, pub, staticHealth(false), nil, RelayConfig{})
	require.NoError(t, err)

	sent, err := relay.Drain(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Empty(t, pub.sent)
}

func TestRelayRetriesThenDrops(t *testing.T) {
	store := newOutbox(t)
	record(t, NewOutboxSink(store), domain.EventReservationCreated, 7)

	pub := &fakePublisher{err: errors.New("channel closed")}
	relay, err := NewOutboxRelay(store, pub, nil, nil, RelayConfig{MaxRetries: 2})
	require.NoError(t, err)

	_, err = relay.Drain(context.Background())
	require.NoError(t, err)
	entries, err := store.Peek(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].Attempts)
	assert.Equal(t, "channel closed", entries[0].LastError)

	_, err = relay.Drain(context.Background())
	require.NoError(t, err)
	n, err := store.Len()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRelayPrune(t *testing.T) {
	store := newOutbox(t)
	require.NoError(t, store.Append(outbox.Entry{
		RoutingKey: domain.EventReservationCreated,
		Payload:    json.RawMessage(`{}`),
		EnqueuedAt: time.Now().Add(-100 * time.Hour),
	}))

	relay, err := NewOutboxRelay(store, &fakePublisher{}, nil, nil, RelayConfig{Retention: 24 * time.Hour})
	require.NoError(t, err)

	removed, err := relay.Prune(time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}

func TestSinkRejectsNil(t *testing.T) {
	sink := NewOutboxSink(newOutbox(t))
	err := sink.RecordReservation(context.Background(), domain.EventReservationCreated, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
}

func TestRelayDrainsBacklogOnceBrokerAppears(t *testing.T) {
	store := newOutbox(t)
	sink := NewOutboxSink(store)
	record(t, sink, domain.EventReservationCreated, 1)
	time.Sleep(time.Millisecond)
	record(t, sink, domain.EventReservationRenamed, 1)

	pub := &fakePublisher{err: errors.New("connection refused")}
	mon := monitor.New(time.Hour, nil, monitor.Probe{
		Name: "rabbitmq",
		Check: func(context.Context) error {
			pub.mu.Lock()
			defer pub.mu.Unlock()
			return pub.err
		},
	})
	relay, err := NewOutboxRelay(store, pub, mon.Component("rabbitmq"), nil, RelayConfig{})
	require.NoError(t, err)
	ctx := context.Background()

	mon.Refresh(ctx)
	sent, err := relay.Drain(ctx)
	require.NoError(t, err)
	assert.Zero(t, sent)
	n, err := store.Len()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	pub.mu.Lock()
	pub.err = nil
	pub.mu.Unlock()
	mon.Refresh(ctx)

	sent, err = relay.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	n, err = store.Len()
	require.NoError(t, err)
	assert.Zero(t, n)
	require.Len(t, pub.sent, 2)
	assert.Equal(t, domain.EventReservationCreated, pub.sent[0].key)
}
