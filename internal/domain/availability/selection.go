package availability

import (
	"encoding/json"
	"sort"

	"cloud.google.com/go/civil"

	"venuedash/internal/domain/shared/daterange"
)

// SelectionSet holds the days an operator picked before committing. The zero
// value is an empty selection.
type SelectionSet struct {
	days map[civil.Date]struct{}
}

func NewSelection(days ...civil.Date) SelectionSet {
	s := SelectionSet{days: make(map[civil.Date]struct{}, len(days))}
	for _, d := range days {
		s.days[d] = struct{}{}
	}
	return s
}

// ParseSelection builds a selection from YYYY-MM-DD strings. Duplicates
// collapse into one entry.
func ParseSelection(values []string) (SelectionSet, error) {
	days := make([]civil.Date, 0, len(values))
	for _, v := range values {
		d, err := daterange.Parse(v)
		if err != nil {
			return SelectionSet{}, err
		}
		days = append(days, d)
	}
	return NewSelection(days...), nil
}

func (s SelectionSet) Len() int {
	return len(s.days)
}

func (s SelectionSet) IsEmpty() bool {
	return len(s.days) == 0
}

func (s SelectionSet) Has(d civil.Date) bool {
	_, ok := s.days[d]
	return ok
}

// Toggle returns a new selection with d added when absent and removed when
// present. s itself is left untouched.
func (s SelectionSet) Toggle(d civil.Date) SelectionSet {
	out := s.clone()
	if _, ok := out.days[d]; ok {
		delete(out.days, d)
	} else {
		out.days[d] = struct{}{}
	}
	return out
}

// Dates returns the selected days in ascending order.
func (s SelectionSet) Dates() []civil.Date {
	out := make([]civil.Date, 0, len(s.days))
	for d := range s.days {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Strings returns the sorted days in canonical form.
func (s SelectionSet) Strings() []string {
	dates := s.Dates()
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.String()
	}
	return out
}

func (s SelectionSet) clone() SelectionSet {
	out := SelectionSet{days: make(map[civil.Date]struct{}, len(s.days)+1)}
	for d := range s.days {
		out.days[d] = struct{}{}
	}
	return out
}

func (s SelectionSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Strings())
}

func (s *SelectionSet) UnmarshalJSON(data []byte) error {
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	parsed, err := ParseSelection(values)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
