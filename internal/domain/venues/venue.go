package venues

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"venuedash/internal/domain/availability"
)

var (
	ErrVenueNotFound = errors.New("venues: venue not found")
	ErrNameRequired  = errors.New("venues: name is required")
	ErrNotOwner      = errors.New("venues: operator does not own this venue")
	ErrUpdateFailed  = errors.New("venues: update rejected")
)

const blockedDatesKey = "blockedDates"

type VenueID string

type Capacity struct {
	Min         int `json:"min" bson:"min"`
	Max         int `json:"max" bson:"max"`
	Recommended int `json:"recommended" bson:"recommended"`
}

// Metadata is the open-ended metadata object of a venue. BlockedDates is typed;
// any other key is carried through untouched.
type Metadata struct {
	BlockedDates availability.BlockedRangeSet
	Extra        map[string]any
}

// WithBlockedDates returns a copy of m whose blocked dates are replaced by
// ranges, mirroring {...metadata, blockedDates}.
func (m Metadata) WithBlockedDates(ranges availability.BlockedRangeSet) Metadata {
	out := Metadata{BlockedDates: ranges.Clone()}
	if len(m.Extra) > 0 {
		out.Extra = make(map[string]any, len(m.Extra))
		for k, v := range m.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

func (m Metadata) MarshalJSON() ([]byte, error) {
	obj := make(map[string]any, len(m.Extra)+1)
	for k, v := range m.Extra {
		obj[k] = v
	}
	blocked := m.BlockedDates
	if blocked == nil {
		blocked = availability.BlockedRangeSet{}
	}
	obj[blockedDatesKey] = blocked
	return json.Marshal(obj)
}

func (m *Metadata) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := Metadata{}
	for k, v := range raw {
		if k == blockedDatesKey {
			if err := json.Unmarshal(v, &out.BlockedDates); err != nil {
				return err
			}
			continue
		}
		var value any
		if err := json.Unmarshal(v, &value); err != nil {
			return err
		}
		if out.Extra == nil {
			out.Extra = make(map[string]any)
		}
		out.Extra[k] = value
	}
	*m = out
	return nil
}

type Venue struct {
	ID        VenueID
	OwnerID   string
	Name      string
	Type      string
	City      string
	Capacity  Capacity
	Metadata  Metadata
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int64
}

func (v *Venue) Validate() error {
	if strings.TrimSpace(v.Name) == "" {
		return ErrNameRequired
	}
	return nil
}

// OwnedBy reports whether operatorID may manage the venue. Venues without a
// recorded owner are open to any operator.
func (v *Venue) OwnedBy(operatorID string) bool {
	if v.OwnerID == "" {
		return true
	}
	return v.OwnerID == strings.TrimSpace(operatorID)
}

// BlockedDates is a copy of the venue's stored blocked ranges.
func (v *Venue) BlockedDates() availability.BlockedRangeSet {
	return v.Metadata.BlockedDates.Clone()
}

// UpdateResult is the outcome reported by the venue update collaborator.
type UpdateResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Err converts a failed result into an error wrapping ErrUpdateFailed.
func (r UpdateResult) Err() error {
	if r.Success {
		return nil
	}
	msg := strings.TrimSpace(r.Error)
	if msg == "" {
		msg = "failed to update venue"
	}
	return fmt.Errorf("%w: %s", ErrUpdateFailed, msg)
}

type Repository interface {
	ByID(ctx context.Context, id VenueID) (*Venue, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*Venue, error)
	// UpdateMetadata replaces the whole metadata object of the venue.
	UpdateMetadata(ctx context.Context, id VenueID, metadata Metadata) error
}
