package models

import "fmt"

// ValidationError reports a missing or malformed required field.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError builds a ValidationError with the given message.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ConflictError reports a duplicate active booking for a slot.
type ConflictError struct {
	Date     string
	TimeSlot string
}

func (e *ConflictError) Error() string {
	return "This time slot is already booked"
}

// NotFoundError reports an unknown booking id.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return "Booking not found"
}
