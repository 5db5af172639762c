package availability

import (
	"venuedash/internal/domain/shared/daterange"
)

// MergeConsecutive groups the selected days into maximal runs of consecutive
// days, sorted ascending.
func MergeConsecutive(selection SelectionSet) []daterange.Range {
	dates := selection.Dates()
	if len(dates) == 0 {
		return nil
	}
	runs := make([]daterange.Range, 0, len(dates))
	current := daterange.Single(dates[0])
	for _, d := range dates[1:] {
		if d == daterange.Next(current.End) {
			current.End = d
			continue
		}
		runs = append(runs, current)
		current = daterange.Single(d)
	}
	return append(runs, current)
}

// ApplyBlock appends each run as a confirmed range after the existing ones.
//
// Runs are neither checked against nor merged with existing ranges, even when
// a run touches a confirmed range. Callers keep already blocked days out of
// the selection (see Selectable).
func ApplyBlock(existing BlockedRangeSet, runs []daterange.Range) BlockedRangeSet {
	out := make(BlockedRangeSet, 0, len(existing)+len(runs))
	out = append(out, existing...)
	for _, run := range runs {
		out = append(out, BlockedRange{StartDate: run.Start, EndDate: run.End, IsConfirmed: true})
	}
	return out
}
