// Package store provides whole-collection load/save persistence for
// named collections of JSON records.
package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// Collection names used by the service.
const (
	Users       = "users"
	Bookings    = "bookings"
	AuthUsers   = "auth_users"
	AuthSession = "auth_session"
)

// Store persists one JSON document per collection. Load returns nil data
// without error when the collection does not exist yet; Save overwrites
// the whole collection atomically from the caller's point of view.
type Store interface {
	Load(ctx context.Context, collection string) ([]byte, error)
	Save(ctx context.Context, collection string, data []byte) error
}

// LoadRecords loads a collection and decodes it into a slice of T.
// An absent or empty collection decodes to an empty slice.
func LoadRecords[T any](ctx context.Context, s Store, collection string) ([]T, error) {
	data, err := s.Load(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", collection, err)
	}
	if len(data) == 0 {
		return []T{}, nil
	}
	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		// Undecodable content reads as an empty collection. Store I/O
		// failures, by contrast, surface as errors above.
		return []T{}, nil
	}
	return records, nil
}

// SaveRecords encodes records and overwrites the collection.
func SaveRecords[T any](ctx context.Context, s Store, collection string, records []T) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", collection, err)
	}
	if err := s.Save(ctx, collection, data); err != nil {
		return fmt.Errorf("save %s: %w", collection, err)
	}
	return nil
}
