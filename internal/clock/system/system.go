// Package system stamps audits, scrape sessions and leads, and supplies the
// "now" that session expiry is checked against.
package system

import "time"

// Clock implements reporter.Clock. Times are UTC at microsecond precision,
// the resolution Postgres timestamps keep, so memory and Postgres stores
// return identical created_at values.
type Clock struct{}

// New creates a new Clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current UTC time truncated to the microsecond.
func (Clock) Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
