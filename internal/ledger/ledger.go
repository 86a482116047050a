// Package ledger implements create/list/update/cancel over the bookings
// collection, including the slot-conflict check.
package ledger

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"loungebook/internal/events"
	"loungebook/internal/metrics"
	"loungebook/internal/models"
	"loungebook/internal/store"
)

// EventPublisher publishes domain events.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// Filter narrows List results. Empty fields match everything.
type Filter struct {
	Email string
	Date  string
}

// Update carries a partial-field booking update. Nil fields are left
// unchanged on the record.
type Update struct {
	Status    *string
	GuestName *string
	Purpose   *string
}

// Ledger manages booking records. Bookings are never physically
// deleted; cancellation flips Status and stamps CancelledAt.
type Ledger struct {
	store  store.Store
	bus    EventPublisher
	logger zerolog.Logger
	now    func() string

	// Serializes read-modify-write cycles over the bookings collection,
	// closing the create/create race on a slot.
	mu sync.Mutex
}

// New builds a Ledger backed by the given store.
func New(s store.Store, bus EventPublisher, logger zerolog.Logger) *Ledger {
	return &Ledger{
		store:  s,
		bus:    bus,
		logger: logger.With().Str("component", "ledger").Logger(),
		now:    models.Now,
	}
}

// List returns bookings matching the filter, in stored order.
func (l *Ledger) List(ctx context.Context, filter Filter) ([]models.Booking, error) {
	bookings, err := store.LoadRecords[models.Booking](ctx, l.store, store.Bookings)
	if err != nil {
		return nil, err
	}

	result := make([]models.Booking, 0, len(bookings))
	for _, b := range bookings {
		if filter.Email != "" && b.UserEmail != filter.Email {
			continue
		}
		if filter.Date != "" && b.Date != filter.Date {
			continue
		}
		result = append(result, b)
	}
	return result, nil
}

// Create appends a confirmed booking after checking that no active
// booking holds the same (date, timeSlot) pair. Cancelled bookings do
// not count, so a slot can be rebooked after cancellation.
func (l *Ledger) Create(ctx context.Context, userEmail, date, timeSlot, guestName, purpose string) (*models.Booking, error) {
	if userEmail == "" || date == "" || timeSlot == "" {
		return nil, models.NewValidationError("Email, date, and time slot are required")
	}
	if !models.ValidEmail(userEmail) {
		return nil, models.NewValidationError("Invalid email format")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	bookings, err := store.LoadRecords[models.Booking](ctx, l.store, store.Bookings)
	if err != nil {
		return nil, err
	}

	for i := range bookings {
		if bookings[i].SameSlot(date, timeSlot) && bookings[i].IsActive() {
			metrics.IncBookingConflict()
			return nil, &models.ConflictError{Date: date, TimeSlot: timeSlot}
		}
	}

	booking := models.Booking{
		ID:        "booking_" + uuid.NewString(),
		UserEmail: userEmail,
		Date:      date,
		TimeSlot:  timeSlot,
		GuestName: guestName,
		Purpose:   purpose,
		Status:    models.StatusConfirmed,
		CreatedAt: l.now(),
	}
	bookings = append(bookings, booking)
	if err := store.SaveRecords(ctx, l.store, store.Bookings, bookings); err != nil {
		return nil, err
	}

	metrics.IncBookingCreated()
	l.logger.Info().
		Str("id", booking.ID).
		Str("email", userEmail).
		Str("date", date).
		Str("time_slot", timeSlot).
		Msg("booking created")
	_ = l.bus.PublishJSON(events.BookingCreated, booking)

	return &booking, nil
}

// ApplyUpdate applies the fields present in upd to the booking with the
// given id and stamps UpdatedAt. Status accepts any string, including
// moving a cancelled booking back to confirmed without re-running the
// slot conflict check; see DESIGN.md for why that is left as is.
func (l *Ledger) ApplyUpdate(ctx context.Context, id string, upd Update) (*models.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	bookings, err := store.LoadRecords[models.Booking](ctx, l.store, store.Bookings)
	if err != nil {
		return nil, err
	}

	for i := range bookings {
		if bookings[i].ID != id {
			continue
		}
		if upd.Status != nil {
			bookings[i].Status = *upd.Status
		}
		if upd.GuestName != nil {
			bookings[i].GuestName = *upd.GuestName
		}
		if upd.Purpose != nil {
			bookings[i].Purpose = *upd.Purpose
		}
		bookings[i].UpdatedAt = l.now()

		if err := store.SaveRecords(ctx, l.store, store.Bookings, bookings); err != nil {
			return nil, err
		}

		booking := bookings[i]
		l.logger.Info().Str("id", id).Str("status", booking.Status).Msg("booking updated")
		_ = l.bus.PublishJSON(events.BookingUpdated, booking)
		return &booking, nil
	}

	return nil, &models.NotFoundError{ID: id}
}

// Cancel sets the booking's status to cancelled and stamps CancelledAt.
// Cancelling an already-cancelled booking re-stamps without error.
func (l *Ledger) Cancel(ctx context.Context, id string) (*models.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	bookings, err := store.LoadRecords[models.Booking](ctx, l.store, store.Bookings)
	if err != nil {
		return nil, err
	}

	for i := range bookings {
		if bookings[i].ID != id {
			continue
		}
		bookings[i].Status = models.StatusCancelled
		bookings[i].CancelledAt = l.now()

		if err := store.SaveRecords(ctx, l.store, store.Bookings, bookings); err != nil {
			return nil, err
		}

		booking := bookings[i]
		metrics.IncBookingCancelled()
		l.logger.Info().Str("id", id).Msg("booking cancelled")
		_ = l.bus.PublishJSON(events.BookingCancelled, booking)
		return &booking, nil
	}

	return nil, &models.NotFoundError{ID: id}
}
