package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loungebook/internal/models"
)

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)

	// Absent collection loads as nil without error.
	data, err := s.Load(ctx, Bookings)
	require.NoError(t, err)
	assert.Nil(t, data)

	bookings := []models.Booking{
		{ID: "booking_1", UserEmail: "a@x.com", Date: "2025-06-01", TimeSlot: "09:00-10:00", Status: models.StatusConfirmed},
	}
	require.NoError(t, SaveRecords(ctx, s, Bookings, bookings))

	loaded, err := LoadRecords[models.Booking](ctx, s, Bookings)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "booking_1", loaded[0].ID)
	assert.Equal(t, "a@x.com", loaded[0].UserEmail)

	// Save is a whole-file overwrite.
	require.NoError(t, SaveRecords(ctx, s, Bookings, []models.Booking{}))
	loaded, err = LoadRecords[models.Booking](ctx, s, Bookings)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestFileStore_NoTempFilesLeftBehind(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewFileStore(dir, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, SaveRecords(ctx, s, Users, []models.User{{ID: "user_1", Email: "a@x.com"}}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "users.json", entries[0].Name())
}

func TestFileStore_UnreadableContentLoadsEmpty(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewFileStore(dir, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "users.json"), []byte("{not json"), 0o644))

	loaded, err := LoadRecords[models.User](ctx, s, Users)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

type brokenStore struct {
	err error
}

func (b *brokenStore) Load(context.Context, string) ([]byte, error) {
	return nil, b.err
}

func (b *brokenStore) Save(context.Context, string, []byte) error {
	return b.err
}

// A store I/O failure must surface as an error, unlike undecodable
// content, which reads as an empty collection.
func TestLoadRecords_PropagatesStoreError(t *testing.T) {
	ctx := context.Background()
	s := &brokenStore{err: errors.New("io failure")}

	_, err := LoadRecords[models.User](ctx, s, Users)
	assert.ErrorIs(t, err, s.err)
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	data, err := s.Load(ctx, Users)
	require.NoError(t, err)
	assert.Nil(t, data)

	users := []models.User{{ID: "user_1", Email: "a@x.com", Name: "Alice"}}
	require.NoError(t, SaveRecords(ctx, s, Users, users))

	loaded, err := LoadRecords[models.User](ctx, s, Users)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "Alice", loaded[0].Name)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Save(ctx, Users, []byte(`[{"id":"user_1"}]`)))

	data, err := s.Load(ctx, Users)
	require.NoError(t, err)
	data[0] = 'X'

	again, err := s.Load(ctx, Users)
	require.NoError(t, err)
	assert.Equal(t, byte('['), again[0])
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer s.Close()

	data, err := s.Load(ctx, Bookings)
	require.NoError(t, err)
	assert.Nil(t, data)

	bookings := []models.Booking{
		{ID: "booking_1", Date: "2025-06-01", TimeSlot: "09:00-10:00", Status: models.StatusConfirmed},
	}
	require.NoError(t, SaveRecords(ctx, s, Bookings, bookings))

	loaded, err := LoadRecords[models.Booking](ctx, s, Bookings)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "booking_1", loaded[0].ID)

	// Second save overwrites the row.
	bookings[0].Status = models.StatusCancelled
	require.NoError(t, SaveRecords(ctx, s, Bookings, bookings))

	loaded, err = LoadRecords[models.Booking](ctx, s, Bookings)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, models.StatusCancelled, loaded[0].Status)
}
