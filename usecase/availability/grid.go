package availability

import (
	"context"
	"slices"

	"go.uber.org/zap"

	"github.com/fastygo/courts/domain"
	"github.com/fastygo/courts/pkg/logger"
)

// SlotTable builds the slot × court grid of date from its active reservations.
// Past dates are allowed so the back office can look at history.
func (e *Engine) SlotTable(ctx context.Context, date string) (*domain.Grid, error) {
	var p problems
	e.checkDate(&p, date)
	if err := p.err(); err != nil {
		return nil, err
	}

	if grid := e.cachedGrid(ctx, date); grid != nil {
		return grid, nil
	}
	generation, cacheable := e.cacheGeneration(ctx, date)

	var rows []domain.Reservation
	err := e.call(ctx, "list active reservations", func(ctx context.Context) error {
		var err error
		rows, err = e.store.ListActive(ctx, date)
		return err
	})
	if err != nil {
		return nil, err
	}

	log := logger.WithRequestID(ctx, e.logger)
	grid := domain.NewGrid(date, e.slots, e.resources)
	for _, r := range rows {
		if !r.IsActive() {
			continue
		}
		if !grid.Place(r) {
			log.Debug("reservation outside configured schedule",
				zap.Int64("reservation_id", r.ID),
				zap.String("resource_id", r.ResourceID),
				zap.String("slot", r.Slot))
		}
	}

	if cacheable {
		if err := e.cache.Set(ctx, grid, generation); err != nil {
			log.Warn("grid cache store failed", zap.String("date", date), zap.Error(err))
		}
	}
	return grid, nil
}

// AvailableSlots lists the free slots of one court on date in canonical order.
func (e *Engine) AvailableSlots(ctx context.Context, date, resourceID string) ([]string, error) {
	var p problems
	e.checkDate(&p, date)
	e.checkResource(&p, resourceID)
	if err := p.err(); err != nil {
		return nil, err
	}

	grid, err := e.SlotTable(ctx, date)
	if err != nil {
		return nil, err
	}
	return grid.Free(resourceID), nil
}

// cachedGrid returns a cached grid only when it was built for the current
// enumerations; cache failures fall back to storage.
func (e *Engine) cachedGrid(ctx context.Context, date string) *domain.Grid {
	if e.cache == nil {
		return nil
	}
	grid, ok, err := e.cache.Get(ctx, date)
	if err != nil {
		logger.WithRequestID(ctx, e.logger).Warn("grid cache read failed", zap.String("date", date), zap.Error(err))
		return nil
	}
	if !ok || grid == nil {
		return nil
	}
	if !slices.Equal(grid.Slots, e.slots) || !slices.Equal(grid.Resources, e.resources) {
		return nil
	}
	return grid
}

// cacheGeneration reads the write generation of date before storage is
// queried. A grid is only cacheable when that read succeeds.
func (e *Engine) cacheGeneration(ctx context.Context, date string) (int64, bool) {
	if e.cache == nil {
		return 0, false
	}
	generation, err := e.cache.Generation(ctx, date)
	if err != nil {
		logger.WithRequestID(ctx, e.logger).Warn("grid cache generation read failed", zap.String("date", date), zap.Error(err))
		return 0, false
	}
	return generation, true
}
