package availability

import (
	"errors"
	"fmt"

	"cloud.google.com/go/civil"

	"venuedash/internal/domain/shared/daterange"
)

var (
	ErrInvertedRange = errors.New("availability: blocked range ends before it starts")
	ErrOverlap       = errors.New("availability: blocked ranges overlap")
)

// BlockedRange is an inclusive span of days on which a venue cannot be booked.
// IsConfirmed marks ranges that came from a confirmed booking or a manual block
// made through the dashboard.
type BlockedRange struct {
	StartDate   civil.Date `json:"startDate"`
	EndDate     civil.Date `json:"endDate"`
	IsConfirmed bool       `json:"isConfirmed"`
}

func NewBlockedRange(start, end civil.Date, confirmed bool) (BlockedRange, error) {
	br := BlockedRange{StartDate: start, EndDate: end, IsConfirmed: confirmed}
	if err := br.Validate(); err != nil {
		return BlockedRange{}, err
	}
	return br, nil
}

func (br BlockedRange) Span() daterange.Range {
	return daterange.Range{Start: br.StartDate, End: br.EndDate}
}

func (br BlockedRange) Contains(d civil.Date) bool {
	return br.Span().Contains(d)
}

func (br BlockedRange) Days() int {
	return br.Span().Days()
}

func (br BlockedRange) Validate() error {
	if !br.StartDate.IsValid() || !br.EndDate.IsValid() {
		return daterange.ErrInvalidDate
	}
	if br.EndDate.Before(br.StartDate) {
		return fmt.Errorf("%w: %s", ErrInvertedRange, br.Span())
	}
	return nil
}

// BlockedRangeSet is the ordered list of blocked ranges stored on a venue.
type BlockedRangeSet []BlockedRange

// Clone returns a copy that shares no backing array with s.
func (s BlockedRangeSet) Clone() BlockedRangeSet {
	if s == nil {
		return nil
	}
	out := make(BlockedRangeSet, len(s))
	copy(out, s)
	return out
}

// IsBlocked reports whether d falls inside any range, bounds included.
func (s BlockedRangeSet) IsBlocked(d civil.Date) bool {
	_, ok := s.RangeFor(d)
	return ok
}

// RangeFor returns the first range containing d.
func (s BlockedRangeSet) RangeFor(d civil.Date) (BlockedRange, bool) {
	for _, br := range s {
		if br.Contains(d) {
			return br, true
		}
	}
	return BlockedRange{}, false
}

// Days counts covered days, counting overlapping days once per range.
func (s BlockedRangeSet) Days() int {
	total := 0
	for _, br := range s {
		total += br.Days()
	}
	return total
}

// Validate checks that every range is well formed and that no two ranges
// share a day.
func (s BlockedRangeSet) Validate() error {
	for _, br := range s {
		if err := br.Validate(); err != nil {
			return err
		}
	}
	for i := 0; i < len(s); i++ {
		for j := i + 1; j < len(s); j++ {
			if s[i].Span().Overlaps(s[j].Span()) {
				return fmt.Errorf("%w: %s and %s", ErrOverlap, s[i].Span(), s[j].Span())
			}
		}
	}
	return nil
}

// AdjacentPairs lists index pairs of ranges that touch and carry the same
// IsConfirmed flag. Block mode does not merge them, so this is reported for
// diagnostics only.
func (s BlockedRangeSet) AdjacentPairs() [][2]int {
	var pairs [][2]int
	for i := 0; i < len(s); i++ {
		for j := i + 1; j < len(s); j++ {
			if s[i].IsConfirmed == s[j].IsConfirmed && s[i].Span().Adjacent(s[j].Span()) {
				pairs = append(pairs, [2]int{i, j})
			}
		}
	}
	return pairs
}
