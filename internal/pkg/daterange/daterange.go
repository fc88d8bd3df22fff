// Package daterange models stays as half-open ranges of calendar days.
package daterange

import (
	"fmt"
	"time"

	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/apperror"
)

// Layout is the wire format of a calendar date.
const Layout = "2006-01-02"

var (
	ErrInvalidDate  = apperror.Validation("invalid date format, expected YYYY-MM-DD")
	ErrInvalidRange = apperror.Validation("check_out must be after check_in")
)

// Range is the half-open interval [CheckIn, CheckOut) of calendar days.
// Both bounds are UTC midnight.
type Range struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// Day truncates t to its calendar day at UTC midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// New builds a range, failing with ErrInvalidRange unless checkIn < checkOut.
func New(checkIn, checkOut time.Time) (Range, error) {
	r := Range{CheckIn: Day(checkIn), CheckOut: Day(checkOut)}
	if !r.CheckIn.Before(r.CheckOut) {
		return Range{}, ErrInvalidRange
	}
	return r, nil
}

// Parse builds a range from two YYYY-MM-DD strings.
func Parse(checkIn, checkOut string) (Range, error) {
	in, err := ParseDate(checkIn)
	if err != nil {
		return Range{}, err
	}
	out, err := ParseDate(checkOut)
	if err != nil {
		return Range{}, err
	}
	return New(in, out)
}

const secondsPerDay = 24 * 60 * 60

// Nights is the number of nights covered. It is zero or negative for a
// malformed range built without New. Counting whole days from the Unix epoch
// keeps ranges longer than time.Duration can hold exact.
func (r Range) Nights() int {
	return int((Day(r.CheckOut).Unix() - Day(r.CheckIn).Unix()) / secondsPerDay)
}

// Overlaps reports whether the two half-open ranges share at least one night.
// A range ending on day D does not overlap one starting on D.
func (r Range) Overlaps(o Range) bool {
	return r.CheckIn.Before(o.CheckOut) && r.CheckOut.After(o.CheckIn)
}

func (r Range) String() string {
	return fmt.Sprintf("[%s, %s)", r.CheckIn.Format(Layout), r.CheckOut.Format(Layout))
}
