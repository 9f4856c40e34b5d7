package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGridSeedsEveryCell(t *testing.T) {
	slots := []string{"08:00-09:00", "09:00-10:00"}
	courts := []string{"1", "2", "3"}
	g := NewGrid("2025-06-01", slots, courts)

	require.Len(t, g.Cells, len(slots))
	for _, slot := range slots {
		require.Len(t, g.Cells[slot], len(courts))
		for _, court := range courts {
			cell, ok := g.Cell(slot, court)
			assert.True(t, ok)
			assert.Nil(t, cell)
		}
	}
}

func TestGridPlaceAndComplement(t *testing.T) {
	slots := []string{"08:00-09:00", "09:00-10:00", "10:00-11:00"}
	g := NewGrid("2025-06-01", slots, []string{"1", "2"})

	assert.True(t, g.Place(Reservation{ID: 4, ResourceID: "1", Slot: "09:00-10:00", Label: "Ana", Status: StatusActive}))
	assert.False(t, g.Place(Reservation{ID: 5, ResourceID: "9", Slot: "09:00-10:00"}))
	assert.False(t, g.Place(Reservation{ID: 6, ResourceID: "1", Slot: "22:00-23:00"}))

	assert.Equal(t, []string{"09:00-10:00"}, g.Occupied("1"))
	assert.Equal(t, []string{"08:00-09:00", "10:00-11:00"}, g.Free("1"))
	assert.Equal(t, slots, g.Free("2"))
	assert.Empty(t, g.Free("9"))

	cell, ok := g.Cell("09:00-10:00", "1")
	require.True(t, ok)
	assert.Equal(t, "Ana", cell.Label)
	assert.Equal(t, int64(4), cell.ReservationID)
}

func TestGridJSONKeepsFreeCells(t *testing.T) {
	g := NewGrid("2025-06-01", []string{"08:00-09:00"}, []string{"1"})
	body, err := json.Marshal(g)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2025-06-01","slots":["08:00-09:00"],"resources":["1"],"cells":{"08:00-09:00":{"1":null}}}`, string(body))
}
