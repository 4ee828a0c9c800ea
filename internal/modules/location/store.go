// README: Journal store backed by Cloud Firestore (trips, entries, custom pins per user).
package location

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"wayfarer/internal/types"
)

const (
	tripsCollection       = "trips"
	entriesCollection     = "entries"
	usersCollection       = "users"
	customPinsSubcollName = "customLocations"
)

// FirestoreStore reads the documents written by the journal app. Queries are
// scoped by the owning user's uid.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) Trips(ctx context.Context, uid types.ID) ([]Trip, error) {
	docs, err := s.client.Collection(tripsCollection).
		Where("userId", "==", string(uid)).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("querying trips: %w", err)
	}
	out := make([]Trip, 0, len(docs))
	for _, d := range docs {
		var t Trip
		if err := d.DataTo(&t); err != nil {
			return nil, fmt.Errorf("decoding trip %s: %w", d.Ref.ID, err)
		}
		t.ID = types.ID(d.Ref.ID)
		out = append(out, t)
	}
	return out, nil
}

func (s *FirestoreStore) Entries(ctx context.Context, uid types.ID) ([]Entry, error) {
	docs, err := s.client.Collection(entriesCollection).
		Where("userId", "==", string(uid)).
		OrderBy("timestamp", firestore.Asc).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	out := make([]Entry, 0, len(docs))
	for _, d := range docs {
		var e Entry
		if err := d.DataTo(&e); err != nil {
			return nil, fmt.Errorf("decoding entry %s: %w", d.Ref.ID, err)
		}
		e.ID = types.ID(d.Ref.ID)
		out = append(out, e)
	}
	return out, nil
}

func (s *FirestoreStore) CustomPins(ctx context.Context, uid types.ID) ([]CustomPin, error) {
	docs, err := s.pins(uid).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("querying custom locations: %w", err)
	}
	out := make([]CustomPin, 0, len(docs))
	for _, d := range docs {
		var p CustomPin
		if err := d.DataTo(&p); err != nil {
			return nil, fmt.Errorf("decoding custom location %s: %w", d.Ref.ID, err)
		}
		p.ID = types.ID(d.Ref.ID)
		out = append(out, p)
	}
	return out, nil
}

func (s *FirestoreStore) SaveCustomPin(ctx context.Context, uid types.ID, p CustomPin) error {
	if _, err := s.pins(uid).Doc(string(p.ID)).Set(ctx, p); err != nil {
		return fmt.Errorf("saving custom location %s: %w", p.ID, err)
	}
	return nil
}

func (s *FirestoreStore) pins(uid types.ID) *firestore.CollectionRef {
	return s.client.Collection(usersCollection).Doc(string(uid)).Collection(customPinsSubcollName)
}
