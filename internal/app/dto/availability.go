package dto

import (
	"time"

	"venuedash/internal/domain/availability"
)

type BlockedRange struct {
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	IsConfirmed bool   `json:"isConfirmed"`
}

func MapBlockedRanges(ranges availability.BlockedRangeSet) []BlockedRange {
	out := make([]BlockedRange, 0, len(ranges))
	for _, r := range ranges {
		out = append(out, BlockedRange{
			StartDate:   r.StartDate.String(),
			EndDate:     r.EndDate.String(),
			IsConfirmed: r.IsConfirmed,
		})
	}
	return out
}

type Session struct {
	ID           string         `json:"id"`
	VenueID      string         `json:"venue_id"`
	Mode         string         `json:"mode"`
	State        string         `json:"state"`
	Selection    []string       `json:"selection"`
	BlockedDates []BlockedRange `json:"blockedDates"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func MapSession(s availability.Session) Session {
	return Session{
		ID:           s.ID,
		VenueID:      s.VenueID,
		Mode:         string(s.Mode),
		State:        string(s.State),
		Selection:    s.Selection.Strings(),
		BlockedDates: MapBlockedRanges(s.Existing),
		UpdatedAt:    s.UpdatedAt,
	}
}

// CommitResult is returned by both the one-shot and the session commit.
type CommitResult struct {
	VenueID      string         `json:"venue_id"`
	Mode         string         `json:"mode"`
	Noop         bool           `json:"noop"`
	Message      string         `json:"message,omitempty"`
	Days         int            `json:"days"`
	BlockedDates []BlockedRange `json:"blockedDates"`
	Session      *Session       `json:"session,omitempty"`
}
