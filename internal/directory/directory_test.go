package directory

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loungebook/internal/events"
	"loungebook/internal/models"
	"loungebook/internal/store"
)

func newTestDirectory(t *testing.T) (*Directory, store.Store) {
	t.Helper()
	s := store.NewMemoryStore()
	return New(s, events.NewBus(), zerolog.Nop()), s
}

func TestLoginOrRegister_Validation(t *testing.T) {
	d, _ := newTestDirectory(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		email   string
		user    string
		contact string
		wantMsg string
	}{
		{"missing email", "", "Alice", "555", "Email is required"},
		{"missing name", "a@x.com", "", "555", "Name is required"},
		{"missing contact", "a@x.com", "Alice", "", "Contact info is required"},
		{"malformed email", "not-an-email", "Alice", "555", "Invalid email format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := d.LoginOrRegister(ctx, tt.email, tt.user, tt.contact)
			var validationErr *models.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.wantMsg, validationErr.Message)
		})
	}
}

func TestLoginOrRegister_CreatesThenUpdates(t *testing.T) {
	d, s := newTestDirectory(t)
	ctx := context.Background()

	user, isNew, err := d.LoginOrRegister(ctx, "a@x.com", "Alice", "555-0001")
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "a@x.com", user.Email)
	assert.Equal(t, user.CreatedAt, user.LastLogin)

	again, isNew, err := d.LoginOrRegister(ctx, "a@x.com", "Alice B", "555-0002")
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, user.ID, again.ID)
	assert.Equal(t, user.CreatedAt, again.CreatedAt)
	assert.Equal(t, "Alice B", again.Name)
	assert.Equal(t, "555-0002", again.Contact)

	// Exactly one record per email in the collection.
	users, err := store.LoadRecords[models.User](ctx, s, store.Users)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Alice B", users[0].Name)
}

func TestLoginOrRegister_EmailIsCaseSensitive(t *testing.T) {
	d, _ := newTestDirectory(t)
	ctx := context.Background()

	_, isNew, err := d.LoginOrRegister(ctx, "a@x.com", "Alice", "555")
	require.NoError(t, err)
	assert.True(t, isNew)

	_, isNew, err = d.LoginOrRegister(ctx, "A@x.com", "Alice", "555")
	require.NoError(t, err)
	assert.True(t, isNew)
}
