package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"venuedash/internal/domain/availability"
	"venuedash/internal/domain/shared/daterange"
	domainvenues "venuedash/internal/domain/venues"
)

type VenueRepository struct {
	col *mongo.Collection
	now func() time.Time
}

func NewVenueRepository(db *mongo.Database) *VenueRepository {
	return &VenueRepository{col: db.Collection(venuesCollection), now: time.Now}
}

func (r *VenueRepository) ByID(ctx context.Context, id domainvenues.VenueID) (*domainvenues.Venue, error) {
	var doc venueDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainvenues.ErrVenueNotFound
		}
		return nil, err
	}
	return doc.toAggregate()
}

// ListByOwner returns the operator's venues plus the ones without an owner.
func (r *VenueRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domainvenues.Venue, error) {
	filter := bson.M{}
	if ownerID != "" {
		filter = bson.M{"owner_id": bson.M{"$in": []string{ownerID, ""}}}
	}
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*domainvenues.Venue
	for cur.Next(ctx) {
		var doc venueDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		venue, err := doc.toAggregate()
		if err != nil {
			return nil, err
		}
		out = append(out, venue)
	}
	return out, cur.Err()
}

// UpdateMetadata replaces both the blocked dates and the free-form metadata.
func (r *VenueRepository) UpdateMetadata(ctx context.Context, id domainvenues.VenueID, metadata domainvenues.Metadata) error {
	update := bson.M{
		"$set": bson.M{
			"blocked_dates": newBlockedDocuments(metadata.BlockedDates),
			"metadata":      extraDocument(metadata.Extra),
			"updated_at":    r.now().UTC(),
		},
		"$inc": bson.M{"version": 1},
	}
	res, err := r.col.UpdateByID(ctx, string(id), update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domainvenues.ErrVenueNotFound
	}
	return nil
}

// Save upserts a venue guarded by its version.
func (r *VenueRepository) Save(ctx context.Context, v *domainvenues.Venue) error {
	doc := newVenueDocument(v)
	filter := bson.M{"_id": doc.ID, "version": v.Version}
	doc.Version = v.Version + 1
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	v.Version = doc.Version
	return nil
}

type venueDocument struct {
	ID           string                 `bson:"_id"`
	OwnerID      string                 `bson:"owner_id"`
	Name         string                 `bson:"name"`
	Type         string                 `bson:"type"`
	City         string                 `bson:"city"`
	Capacity     domainvenues.Capacity  `bson:"capacity"`
	BlockedDates []blockedRangeDocument `bson:"blocked_dates"`
	Metadata     bson.M                 `bson:"metadata"`
	CreatedAt    time.Time              `bson:"created_at"`
	UpdatedAt    time.Time              `bson:"updated_at"`
	Version      int64                  `bson:"version"`
}

type blockedRangeDocument struct {
	StartDate   string `bson:"start_date"`
	EndDate     string `bson:"end_date"`
	IsConfirmed bool   `bson:"is_confirmed"`
}

func newVenueDocument(v *domainvenues.Venue) venueDocument {
	return venueDocument{
		ID:           string(v.ID),
		OwnerID:      v.OwnerID,
		Name:         v.Name,
		Type:         v.Type,
		City:         v.City,
		Capacity:     v.Capacity,
		BlockedDates: newBlockedDocuments(v.Metadata.BlockedDates),
		Metadata:     extraDocument(v.Metadata.Extra),
		CreatedAt:    v.CreatedAt.UTC(),
		UpdatedAt:    v.UpdatedAt.UTC(),
		Version:      v.Version,
	}
}

func newBlockedDocuments(ranges availability.BlockedRangeSet) []blockedRangeDocument {
	out := make([]blockedRangeDocument, 0, len(ranges))
	for _, br := range ranges {
		out = append(out, blockedRangeDocument{
			StartDate:   br.StartDate.String(),
			EndDate:     br.EndDate.String(),
			IsConfirmed: br.IsConfirmed,
		})
	}
	return out
}

func extraDocument(extra map[string]any) bson.M {
	out := bson.M{}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func (d venueDocument) toAggregate() (*domainvenues.Venue, error) {
	ranges := make(availability.BlockedRangeSet, 0, len(d.BlockedDates))
	for _, doc := range d.BlockedDates {
		start, err := daterange.Parse(doc.StartDate)
		if err != nil {
			return nil, fmt.Errorf("mongo: venue %s: %w", d.ID, err)
		}
		end, err := daterange.Parse(doc.EndDate)
		if err != nil {
			return nil, fmt.Errorf("mongo: venue %s: %w", d.ID, err)
		}
		ranges = append(ranges, availability.BlockedRange{StartDate: start, EndDate: end, IsConfirmed: doc.IsConfirmed})
	}
	var extra map[string]any
	if len(d.Metadata) > 0 {
		extra = make(map[string]any, len(d.Metadata))
		for k, v := range d.Metadata {
			extra[k] = v
		}
	}
	return &domainvenues.Venue{
		ID:        domainvenues.VenueID(d.ID),
		OwnerID:   d.OwnerID,
		Name:      d.Name,
		Type:      d.Type,
		City:      d.City,
		Capacity:  d.Capacity,
		Metadata:  domainvenues.Metadata{BlockedDates: ranges, Extra: extra},
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
		Version:   d.Version,
	}, nil
}

var _ domainvenues.Repository = (*VenueRepository)(nil)
