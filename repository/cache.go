package repository

import (
	"context"

	"github.com/fastygo/courts/domain"
)

// GridCache stores slot tables keyed by date. Implementations may drop
// entries at any time; callers treat a miss as a cue to rebuild.
//
// Every date carries a write generation. Invalidate bumps it, and Set stores
// a grid only while the generation still equals the one read before the grid
// was built, so a grid read before a write never outlives that write.
type GridCache interface {
	Get(ctx context.Context, date string) (*domain.Grid, bool, error)
	Generation(ctx context.Context, date string) (int64, error)
	Set(ctx context.Context, grid *domain.Grid, generation int64) error
	Invalidate(ctx context.Context, date string) error
}
