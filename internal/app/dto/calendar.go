package dto

import (
	"venuedash/internal/domain/availability"
)

type CalendarDay struct {
	Date       string `json:"date"`
	Blocked    bool   `json:"blocked"`
	Confirmed  bool   `json:"confirmed"`
	Selectable bool   `json:"selectable"`
	Selected   bool   `json:"selected"`
}

type Calendar struct {
	VenueID string        `json:"venue_id"`
	From    string        `json:"from"`
	To      string        `json:"to"`
	Mode    string        `json:"mode"`
	Days    []CalendarDay `json:"days"`
	Blocked int           `json:"blocked_days"`
}

func MapCalendar(venueID string, mode availability.Mode, days []availability.Day) Calendar {
	cal := Calendar{VenueID: venueID, Mode: string(mode), Days: make([]CalendarDay, 0, len(days))}
	for _, d := range days {
		if d.Blocked {
			cal.Blocked++
		}
		cal.Days = append(cal.Days, CalendarDay{
			Date:       d.Date.String(),
			Blocked:    d.Blocked,
			Confirmed:  d.Confirmed,
			Selectable: d.Selectable,
			Selected:   d.Selected,
		})
	}
	if len(days) > 0 {
		cal.From = days[0].Date.String()
		cal.To = days[len(days)-1].Date.String()
	}
	return cal
}
