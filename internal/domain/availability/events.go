package availability

import (
	"time"

	"cloud.google.com/go/civil"
)

type DatesBlocked struct {
	VenueID string         `json:"venue_id"`
	Ranges  []BlockedRange `json:"ranges"`
	Days    int            `json:"days"`
	At      time.Time      `json:"at"`
}

func (e DatesBlocked) EventName() string     { return "availability.dates_blocked" }
func (e DatesBlocked) AggregateID() string   { return e.VenueID }
func (e DatesBlocked) OccurredAt() time.Time { return e.At }

type DatesUnblocked struct {
	VenueID string       `json:"venue_id"`
	Dates   []civil.Date `json:"dates"`
	Days    int          `json:"days"`
	At      time.Time    `json:"at"`
}

func (e DatesUnblocked) EventName() string     { return "availability.dates_unblocked" }
func (e DatesUnblocked) AggregateID() string   { return e.VenueID }
func (e DatesUnblocked) OccurredAt() time.Time { return e.At }

func datesBlockedEvent(venueID string, before, after BlockedRangeSet, at time.Time) DatesBlocked {
	added := after[len(before):].Clone()
	return DatesBlocked{VenueID: venueID, Ranges: added, Days: added.Days(), At: at.UTC()}
}

func datesUnblockedEvent(venueID string, before BlockedRangeSet, selection SelectionSet, at time.Time) DatesUnblocked {
	return DatesUnblocked{VenueID: venueID, Dates: selection.Dates(), Days: unblockedDays(before, selection), At: at.UTC()}
}
