// Package availability decides which court slots can be booked.
//
// The engine is stateless: slot uniqueness is enforced by the storage layer at
// insertion time, so any number of engines, in any number of processes, may
// share one reservation store.
package availability

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/courts/domain"
	"github.com/fastygo/courts/pkg/logger"
	"github.com/fastygo/courts/repository"
	"github.com/fastygo/courts/usecase"
)

// Clock supplies the current calendar day as YYYY-MM-DD.
type Clock interface {
	Today() string
}

// Config carries the fixed enumerations and limits the engine validates against.
type Config struct {
	Slots          []string
	Resources      []string
	LabelMaxLength int
	StorageTimeout time.Duration
}

// Option customises optional collaborators.
type Option func(*Engine)

// WithCache lets SlotTable and AvailableSlots reuse recently built grids.
func WithCache(cache repository.GridCache) Option {
	return func(e *Engine) { e.cache = cache }
}

// WithEvents records a domain event after every successful write.
func WithEvents(sink usecase.EventSink) Option {
	return func(e *Engine) { e.events = sink }
}

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

type Engine struct {
	store  repository.ReservationRepository
	clock  Clock
	cache  repository.GridCache
	events usecase.EventSink
	logger *zap.Logger

	slots       []string
	slotSet     map[string]struct{}
	resources   []string
	resourceSet map[string]struct{}
	labelMax    int
	timeout     time.Duration
}

func New(store repository.ReservationRepository, clock Clock, cfg Config, opts ...Option) *Engine {
	if cfg.LabelMaxLength <= 0 {
		cfg.LabelMaxLength = 255
	}
	if cfg.StorageTimeout <= 0 {
		cfg.StorageTimeout = 3 * time.Second
	}
	e := &Engine{
		store:       store,
		clock:       clock,
		logger:      zap.NewNop(),
		slots:       slices.Clone(cfg.Slots),
		slotSet:     toSet(cfg.Slots),
		resources:   slices.Clone(cfg.Resources),
		resourceSet: toSet(cfg.Resources),
		labelMax:    cfg.LabelMaxLength,
		timeout:     cfg.StorageTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Slots returns the configured slot enumeration in canonical order.
func (e *Engine) Slots() []string { return slices.Clone(e.slots) }

// Resources returns the configured court enumeration.
func (e *Engine) Resources() []string { return slices.Clone(e.resources) }

// Reserve books (resource, date, slot) for label. The pre-check only produces
// a friendly error early; the storage insert is the authority, and a rejected
// insert is reported the same way as a failed pre-check.
func (e *Engine) Reserve(ctx context.Context, req ReserveRequest) (*domain.Reservation, error) {
	res, err := e.validateReserve(req)
	if err != nil {
		return nil, err
	}

	log := logger.WithRequestID(ctx, e.logger).With(
		zap.String("resource_id", res.ResourceID),
		zap.String("date", res.Date),
		zap.String("slot", res.Slot),
	)

	holder, err := e.findActive(ctx, res.ResourceID, res.Date, res.Slot)
	if err != nil {
		log.Error("slot pre-check failed", zap.Error(err))
		return nil, err
	}
	if holder != nil {
		return nil, domain.NewSlotTakenError(res.ResourceID, res.Date, res.Slot, holder.Label)
	}

	err = e.call(ctx, "insert reservation", func(ctx context.Context) error {
		_, err := e.store.InsertActive(ctx, res)
		return err
	})
	if errors.Is(err, domain.ErrSlotConflict) {
		log.Info("slot taken by concurrent reservation")
		return nil, domain.NewSlotTakenError(res.ResourceID, res.Date, res.Slot, e.holderLabel(ctx, res))
	}
	if err != nil {
		log.Error("reservation insert failed", zap.Error(err))
		return nil, err
	}

	log.Info("reservation created", zap.Int64("reservation_id", res.ID))
	e.afterWrite(ctx, domain.EventReservationCreated, res)
	return res, nil
}

// Cancel moves a reservation to cancelled. Cancelling twice is a no-op.
func (e *Engine) Cancel(ctx context.Context, id int64) error {
	if id <= 0 {
		return domain.Invalid("reservation id must be positive")
	}

	res, err := e.Get(ctx, id)
	if err != nil {
		return err
	}
	if res.Status == domain.StatusCancelled {
		return nil
	}

	err = e.call(ctx, "cancel reservation", func(ctx context.Context) error {
		_, err := e.store.UpdateStatus(ctx, id, domain.StatusCancelled)
		return err
	})
	if err != nil {
		return err
	}

	res.Status = domain.StatusCancelled
	logger.WithRequestID(ctx, e.logger).Info("reservation cancelled", zap.Int64("reservation_id", id))
	e.afterWrite(ctx, domain.EventReservationCancelled, res)
	return nil
}

// Rename changes the display label. The (resource, date, slot) triple never changes.
func (e *Engine) Rename(ctx context.Context, id int64, label string) (*domain.Reservation, error) {
	label = strings.TrimSpace(label)
	var p problems
	if id <= 0 {
		p.add("reservation id must be positive")
	}
	e.checkLabel(&p, label)
	if err := p.err(); err != nil {
		return nil, err
	}

	var res *domain.Reservation
	err := e.call(ctx, "rename reservation", func(ctx context.Context) error {
		var err error
		res, err = e.store.UpdateLabel(ctx, id, label)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.afterWrite(ctx, domain.EventReservationRenamed, res)
	return res, nil
}

// Get loads one reservation of any status.
func (e *Engine) Get(ctx context.Context, id int64) (*domain.Reservation, error) {
	if id <= 0 {
		return nil, domain.Invalid("reservation id must be positive")
	}
	var res *domain.Reservation
	err := e.call(ctx, "load reservation", func(ctx context.Context) error {
		var err error
		res, err = e.store.GetByID(ctx, id)
		return err
	})
	return res, err
}

// List returns reservations matching filter, newest day first.
func (e *Engine) List(ctx context.Context, filter repository.ReservationFilter) ([]domain.Reservation, error) {
	var p problems
	if filter.Date != "" {
		e.checkDate(&p, filter.Date)
	}
	if filter.Status != "" && !filter.Status.Valid() {
		p.add("status must be active or cancelled")
	}
	if filter.Offset < 0 {
		p.add("offset must not be negative")
	}
	if err := p.err(); err != nil {
		return nil, err
	}
	filter.Limit = repository.PageLimit(filter.Limit)

	var out []domain.Reservation
	err := e.call(ctx, "list reservations", func(ctx context.Context) error {
		var err error
		out, err = e.store.List(ctx, filter)
		return err
	})
	return out, err
}

// CheckSlot reports whether one triple is currently free, reading storage directly.
func (e *Engine) CheckSlot(ctx context.Context, date, resourceID, slot string) (*domain.SlotCheck, error) {
	var p problems
	e.checkDate(&p, date)
	e.checkResource(&p, resourceID)
	e.checkSlot(&p, slot)
	if err := p.err(); err != nil {
		return nil, err
	}

	holder, err := e.findActive(ctx, resourceID, date, slot)
	if err != nil {
		return nil, err
	}
	check := &domain.SlotCheck{Date: date, ResourceID: resourceID, Slot: slot, Available: holder == nil}
	if holder != nil {
		check.ReservationID = holder.ID
		check.Label = holder.Label
	}
	return check, nil
}

// findActive returns (nil, nil) when the triple is free.
func (e *Engine) findActive(ctx context.Context, resourceID, date, slot string) (*domain.Reservation, error) {
	var holder *domain.Reservation
	err := e.call(ctx, "find active reservation", func(ctx context.Context) error {
		var err error
		holder, err = e.store.FindActive(ctx, resourceID, date, slot)
		return err
	})
	return holder, err
}

// holderLabel re-reads the reservation that won a race. The label is
// informational, so a failed read degrades to an empty label.
func (e *Engine) holderLabel(ctx context.Context, res *domain.Reservation) string {
	holder, err := e.findActive(ctx, res.ResourceID, res.Date, res.Slot)
	if err != nil || holder == nil {
		return ""
	}
	return holder.Label
}

// call runs one storage operation under the storage timeout. Errors that
// storage already classified pass through; anything else is an
// infrastructure failure. Nothing is retried here.
func (e *Engine) call(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	err := fn(callCtx)
	if err == nil {
		return nil
	}
	var dErr *domain.Error
	if errors.As(err, &dErr) {
		return err
	}
	return domain.Unavailable(op+" failed", err)
}

func (e *Engine) afterWrite(ctx context.Context, event string, res *domain.Reservation) {
	if res == nil {
		return
	}
	log := logger.WithRequestID(ctx, e.logger)
	if e.cache != nil {
		if err := e.cache.Invalidate(ctx, res.Date); err != nil {
			log.Warn("grid cache invalidation failed", zap.String("date", res.Date), zap.Error(err))
		}
	}
	if e.events != nil {
		if err := e.events.RecordReservation(ctx, event, res); err != nil {
			log.Error("failed to record reservation event",
				zap.String("event", event),
				zap.Int64("reservation_id", res.ID),
				zap.Error(err))
		}
	}
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
