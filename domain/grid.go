package domain

// Cell is an occupied position on the slot table.
type Cell struct {
	ReservationID int64             `json:"reservation_id"`
	Label         string            `json:"label"`
	Status        ReservationStatus `json:"status"`
}

// Grid is the dense slot × court projection of one day. Every configured
// (slot, resource) pair has an entry; a nil cell means the position is free.
type Grid struct {
	Date      string                      `json:"date"`
	Slots     []string                    `json:"slots"`
	Resources []string                    `json:"resources"`
	Cells     map[string]map[string]*Cell `json:"cells"`
}

// NewGrid returns a grid with every cell seeded to free.
func NewGrid(date string, slots, resources []string) *Grid {
	g := &Grid{
		Date:      date,
		Slots:     append([]string(nil), slots...),
		Resources: append([]string(nil), resources...),
		Cells:     make(map[string]map[string]*Cell, len(slots)),
	}
	for _, slot := range slots {
		row := make(map[string]*Cell, len(resources))
		for _, res := range resources {
			row[res] = nil
		}
		g.Cells[slot] = row
	}
	return g
}

// Place occupies the cell of r. It returns false when r's slot or resource
// is not part of the grid.
func (g *Grid) Place(r Reservation) bool {
	row, ok := g.Cells[r.Slot]
	if !ok {
		return false
	}
	if _, ok := row[r.ResourceID]; !ok {
		return false
	}
	row[r.ResourceID] = &Cell{
		ReservationID: r.ID,
		Label:         r.Label,
		Status:        r.Status,
	}
	return true
}

// Cell returns the cell at (slot, resource) and whether the position exists.
func (g *Grid) Cell(slot, resourceID string) (*Cell, bool) {
	row, ok := g.Cells[slot]
	if !ok {
		return nil, false
	}
	cell, ok := row[resourceID]
	return cell, ok
}

// Occupied lists the occupied slots of a resource in canonical slot order.
func (g *Grid) Occupied(resourceID string) []string {
	out := make([]string, 0)
	for _, slot := range g.Slots {
		if cell, _ := g.Cell(slot, resourceID); cell != nil {
			out = append(out, slot)
		}
	}
	return out
}

// Free lists the free slots of a resource in canonical slot order.
func (g *Grid) Free(resourceID string) []string {
	out := make([]string, 0, len(g.Slots))
	for _, slot := range g.Slots {
		cell, ok := g.Cell(slot, resourceID)
		if ok && cell == nil {
			out = append(out, slot)
		}
	}
	return out
}
