// Package clock is the single source of truth for "today" in valuation-date
// computations. Every business-date boundary (active-symbol checks, grace
// periods, sync windows) must derive from a Clock rather than calling
// time.Now() directly, so they all agree on the same configured timezone.
package clock

import "time"

// Clock projects the current UTC instant onto a configured IANA timezone.
// A zero Clock (nil Location) behaves as UTC.
type Clock struct {
	loc *time.Location
}

// New builds a Clock for the given IANA timezone name, e.g.
// "America/New_York". An empty name yields UTC; an unrecognized name is
// returned as an error.
func New(timezone string) (*Clock, error) {
	if timezone == "" {
		return &Clock{loc: time.UTC}, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, err
	}
	return &Clock{loc: loc}, nil
}

// Now returns the current instant projected onto the configured timezone.
func (c *Clock) Now() time.Time {
	return time.Now().UTC().In(c.location())
}

// Today returns the current date at midnight in the configured timezone,
// the value every sync-planning and grace-period computation treats as
// "today".
func (c *Clock) Today() time.Time {
	now := c.Now()
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.location())
}

func (c *Clock) location() *time.Location {
	if c == nil || c.loc == nil {
		return time.UTC
	}
	return c.loc
}
