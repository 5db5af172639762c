package availability

import (
	"errors"

	"cloud.google.com/go/civil"

	"venuedash/internal/domain/shared/daterange"
)

// MaxCalendarDays bounds a single calendar window.
const MaxCalendarDays = 366

var ErrCalendarWindow = errors.New("availability: calendar window must be between 1 and 366 days")

// Day is one cell of the availability calendar.
type Day struct {
	Date       civil.Date
	Blocked    bool
	Confirmed  bool
	Selectable bool
	Selected   bool
}

// Calendar renders the days of window for display. Selected marks days
// present in selection, which may be empty.
func Calendar(existing BlockedRangeSet, window daterange.Range, mode Mode, selection SelectionSet) ([]Day, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}
	if window.Days() > MaxCalendarDays {
		return nil, ErrCalendarWindow
	}
	days := make([]Day, 0, window.Days())
	window.Each(func(d civil.Date) bool {
		br, blocked := existing.RangeFor(d)
		days = append(days, Day{
			Date:       d,
			Blocked:    blocked,
			Confirmed:  blocked && br.IsConfirmed,
			Selectable: Selectable(existing, d, mode),
			Selected:   selection.Has(d),
		})
		return true
	})
	return days, nil
}
