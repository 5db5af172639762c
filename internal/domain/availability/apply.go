package availability

import (
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
)

var (
	ErrUnknownMode       = errors.New("availability: unknown blocking mode")
	ErrSelectionConflict = errors.New("availability: selected day is not selectable in this mode")
)

// Mode selects which side of the calendar a commit changes.
type Mode string

const (
	ModeBlock   Mode = "block"
	ModeUnblock Mode = "unblock"
)

func ParseMode(value string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case ModeBlock:
		return ModeBlock, nil
	case ModeUnblock:
		return ModeUnblock, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, value)
}

func (m Mode) Valid() bool {
	return m == ModeBlock || m == ModeUnblock
}

// Apply computes the blocked ranges that result from committing selection in
// the given mode.
//
// PRE: selection holds only free days in block mode and only blocked days in
// unblock mode. Apply does not re-check this; use CheckSelection first.
func Apply(existing BlockedRangeSet, selection SelectionSet, mode Mode) (BlockedRangeSet, error) {
	switch mode {
	case ModeBlock:
		return ApplyBlock(existing, MergeConsecutive(selection)), nil
	case ModeUnblock:
		return ApplyUnblock(existing, selection), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
}

// Selectable is the calendar rule for picking a day: free days in block mode,
// blocked days in unblock mode.
func Selectable(existing BlockedRangeSet, d civil.Date, mode Mode) bool {
	blocked := existing.IsBlocked(d)
	switch mode {
	case ModeBlock:
		return !blocked
	case ModeUnblock:
		return blocked
	}
	return false
}

// CheckSelection returns ErrSelectionConflict for the earliest selected day
// that Selectable rejects.
func CheckSelection(existing BlockedRangeSet, selection SelectionSet, mode Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	for _, d := range selection.Dates() {
		if !Selectable(existing, d, mode) {
			return fmt.Errorf("%w: %s (%s)", ErrSelectionConflict, d, mode)
		}
	}
	return nil
}
