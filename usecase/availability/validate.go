package availability

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fastygo/courts/domain"
)

// ReserveRequest carries the caller's booking intent.
type ReserveRequest struct {
	ResourceID string
	Date       string
	Slot       string
	Label      string
	CustomerID *int64
}

type problems []string

func (p *problems) add(msg string) { *p = append(*p, msg) }

func (p problems) err() error {
	if len(p) == 0 {
		return nil
	}
	return domain.Invalid("%s", strings.Join(p, "; "))
}

func validDate(date string) bool {
	parsed, err := time.Parse(domain.DateLayout, date)
	return err == nil && parsed.Format(domain.DateLayout) == date
}

func (e *Engine) checkDate(p *problems, date string) {
	if !validDate(date) {
		p.add("date must be a calendar day formatted YYYY-MM-DD")
	}
}

func (e *Engine) checkResource(p *problems, resourceID string) {
	if _, ok := e.resourceSet[resourceID]; !ok {
		p.add(fmt.Sprintf("unknown court %q", resourceID))
	}
}

func (e *Engine) checkSlot(p *problems, slot string) {
	if _, ok := e.slotSet[slot]; !ok {
		p.add(fmt.Sprintf("unknown slot %q", slot))
	}
}

func (e *Engine) checkLabel(p *problems, label string) {
	switch n := utf8.RuneCountInString(label); {
	case n == 0:
		p.add("label is required")
	case n > e.labelMax:
		p.add("label is too long")
	}
}

// validateReserve normalises req into a reservation or reports every
// precondition it breaks.
func (e *Engine) validateReserve(req ReserveRequest) (*domain.Reservation, error) {
	res := &domain.Reservation{
		ResourceID: strings.TrimSpace(req.ResourceID),
		Date:       strings.TrimSpace(req.Date),
		Slot:       strings.TrimSpace(req.Slot),
		Label:      strings.TrimSpace(req.Label),
		CustomerID: req.CustomerID,
		Status:     domain.StatusActive,
	}

	var p problems
	if !validDate(res.Date) {
		p.add("date must be a calendar day formatted YYYY-MM-DD")
	} else if res.Date < e.clock.Today() {
		p.add("date " + res.Date + " is in the past")
	}
	e.checkSlot(&p, res.Slot)
	e.checkResource(&p, res.ResourceID)
	e.checkLabel(&p, res.Label)
	if res.CustomerID != nil && *res.CustomerID <= 0 {
		p.add("customer id must be positive")
	}

	if err := p.err(); err != nil {
		return nil, err
	}
	return res, nil
}
