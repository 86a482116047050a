// Package directory implements upsert-on-login over the users collection.
package directory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"loungebook/internal/events"
	"loungebook/internal/models"
	"loungebook/internal/store"
)

// EventPublisher publishes domain events.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// Directory manages user records. Login is identity-by-email: there is
// no password, token, or session concept on this surface.
type Directory struct {
	store  store.Store
	bus    EventPublisher
	logger zerolog.Logger
	now    func() string

	// Serializes read-modify-write cycles over the users collection so
	// two concurrent logins cannot both create a record for one email.
	mu sync.Mutex
}

// New builds a Directory backed by the given store.
func New(s store.Store, bus EventPublisher, logger zerolog.Logger) *Directory {
	return &Directory{
		store:  s,
		bus:    bus,
		logger: logger.With().Str("component", "directory").Logger(),
		now:    models.Now,
	}
}

// LoginOrRegister finds the user with the given email, creating it on
// first login. Existing users get name, contact and lastLogin updated
// in place; id, email and createdAt are never touched. The returned
// bool is true when a new record was created.
func (d *Directory) LoginOrRegister(ctx context.Context, email, name, contact string) (*models.User, bool, error) {
	if email == "" {
		return nil, false, models.NewValidationError("Email is required")
	}
	if name == "" {
		return nil, false, models.NewValidationError("Name is required")
	}
	if contact == "" {
		return nil, false, models.NewValidationError("Contact info is required")
	}
	if !models.ValidEmail(email) {
		return nil, false, models.NewValidationError("Invalid email format")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	users, err := store.LoadRecords[models.User](ctx, d.store, store.Users)
	if err != nil {
		return nil, false, err
	}

	for i := range users {
		if users[i].Email != email {
			continue
		}
		users[i].Name = name
		users[i].Contact = contact
		users[i].LastLogin = d.now()
		if err := store.SaveRecords(ctx, d.store, store.Users, users); err != nil {
			return nil, false, err
		}

		user := users[i]
		d.logger.Info().Str("email", email).Msg("user logged in")
		_ = d.bus.PublishJSON(events.UserLoggedIn, user)
		return &user, false, nil
	}

	now := d.now()
	user := models.User{
		ID:        "user_" + uuid.NewString(),
		Email:     email,
		Name:      name,
		Contact:   contact,
		CreatedAt: now,
		LastLogin: now,
	}
	users = append(users, user)
	if err := store.SaveRecords(ctx, d.store, store.Users, users); err != nil {
		return nil, false, err
	}

	d.logger.Info().Str("email", email).Str("id", user.ID).Msg("user registered")
	_ = d.bus.PublishJSON(events.UserLoggedIn, user)
	return &user, true, nil
}
