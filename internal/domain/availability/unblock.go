package availability

import "cloud.google.com/go/civil"

// ApplyUnblock removes the selected days from the existing ranges. A range
// whose interior loses a day is split, and every piece keeps the parent's
// IsConfirmed flag. Ranges without a selected day are copied as they are.
// existing is not modified.
func ApplyUnblock(existing BlockedRangeSet, selection SelectionSet) BlockedRangeSet {
	out := make(BlockedRangeSet, 0, len(existing))
	for _, br := range existing {
		if !touches(br, selection) {
			out = append(out, br)
			continue
		}
		out = append(out, split(br, selection)...)
	}
	return out
}

func touches(br BlockedRange, selection SelectionSet) bool {
	// Walk whichever side is smaller.
	if selection.Len() < br.Days() {
		for d := range selection.days {
			if br.Contains(d) {
				return true
			}
		}
		return false
	}
	hit := false
	br.Span().Each(func(d civil.Date) bool {
		hit = selection.Has(d)
		return !hit
	})
	return hit
}

func split(br BlockedRange, selection SelectionSet) []BlockedRange {
	var (
		pieces []BlockedRange
		open   bool
		start  civil.Date
		prev   civil.Date
	)
	br.Span().Each(func(d civil.Date) bool {
		if selection.Has(d) {
			if open {
				pieces = append(pieces, BlockedRange{StartDate: start, EndDate: prev, IsConfirmed: br.IsConfirmed})
				open = false
			}
		} else if !open {
			start = d
			open = true
		}
		prev = d
		return true
	})
	if open {
		pieces = append(pieces, BlockedRange{StartDate: start, EndDate: br.EndDate, IsConfirmed: br.IsConfirmed})
	}
	return pieces
}

// unblockedDays counts how many selected days actually fall inside a range.
func unblockedDays(existing BlockedRangeSet, selection SelectionSet) int {
	n := 0
	for d := range selection.days {
		if existing.IsBlocked(d) {
			n++
		}
	}
	return n
}
