package clock

import (
	"time"
	_ "time/tzdata"

	"github.com/fastygo/courts/domain"
)

// Venue reports the current calendar day in the venue's time zone.
type Venue struct {
	loc *time.Location
	now func() time.Time
}

// NewVenue builds a clock for the named IANA zone, falling back to UTC.
func NewVenue(zone string) *Venue {
	loc, err := time.LoadLocation(zone)
	if err != nil || zone == "" {
		loc = time.UTC
	}
	return &Venue{loc: loc, now: time.Now}
}

// Today returns the current date as YYYY-MM-DD.
func (v *Venue) Today() string {
	return v.now().In(v.loc).Format(domain.DateLayout)
}

// Location returns the zone the clock reports in.
func (v *Venue) Location() *time.Location {
	return v.loc
}

// Fixed always reports the same day.
type Fixed string

func (f Fixed) Today() string { return string(f) }
