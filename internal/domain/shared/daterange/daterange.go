package daterange

import (
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

var (
	ErrInvalidRange = errors.New("daterange: end must not be before start")
	ErrInvalidDate  = errors.New("daterange: invalid calendar date")
)

// Layout is the canonical day format used on the wire and as set keys.
const Layout = "2006-01-02"

// Range is an inclusive span of calendar days [Start, End].
type Range struct {
	Start civil.Date
	End   civil.Date
}

func New(start, end civil.Date) (Range, error) {
	r := Range{Start: start, End: end}
	if err := r.Validate(); err != nil {
		return Range{}, err
	}
	return r, nil
}

// Single returns the one-day range [d, d].
func Single(d civil.Date) Range {
	return Range{Start: d, End: d}
}

func (r Range) Validate() error {
	if !r.Start.IsValid() || !r.End.IsValid() {
		return ErrInvalidDate
	}
	if r.End.Before(r.Start) {
		return ErrInvalidRange
	}
	return nil
}

// Days is the number of calendar days covered, zero for an inverted range.
func (r Range) Days() int {
	if r.End.Before(r.Start) {
		return 0
	}
	return r.End.DaysSince(r.Start) + 1
}

func (r Range) Contains(d civil.Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

func (r Range) Overlaps(other Range) bool {
	return !r.End.Before(other.Start) && !other.End.Before(r.Start)
}

// Adjacent reports whether the ranges touch without sharing a day.
func (r Range) Adjacent(other Range) bool {
	return Next(r.End) == other.Start || Next(other.End) == r.Start
}

// Each calls fn for every day in the range in ascending order and stops early
// when fn returns false.
func (r Range) Each(fn func(civil.Date) bool) {
	for d := r.Start; !d.After(r.End); d = Next(d) {
		if !fn(d) {
			return
		}
	}
}

func (r Range) String() string {
	return r.Start.String() + ".." + r.End.String()
}

// Next returns the successor day.
func Next(d civil.Date) civil.Date {
	return d.AddDays(1)
}

// Compare returns -1, 0 or +1 ordering a before, equal to, or after b.
func Compare(a, b civil.Date) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}

// Parse reads a YYYY-MM-DD day. RFC 3339 timestamps are accepted and reduced
// to their UTC calendar day.
func Parse(value string) (civil.Date, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return civil.Date{}, ErrInvalidDate
	}
	if d, err := civil.ParseDate(value); err == nil {
		return d, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return civil.DateOf(t.UTC()), nil
	}
	return civil.Date{}, ErrInvalidDate
}

// MustParse is Parse for literals known to be valid.
func MustParse(value string) civil.Date {
	d, err := Parse(value)
	if err != nil {
		panic(err)
	}
	return d
}

// Today returns the current UTC calendar day.
func Today(now time.Time) civil.Date {
	return civil.DateOf(now.UTC())
}
