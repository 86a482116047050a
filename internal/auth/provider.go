// Package auth models the identity-provider capability the frontend
// consumes: one interface with interchangeable local and Firebase
// implementations, selected by configuration.
package auth

import (
	"context"
	"errors"
)

// Account is an authenticated identity as seen by the provider.
type Account struct {
	UID           string `json:"uid"`
	Email         string `json:"email"`
	DisplayName   string `json:"displayName"`
	EmailVerified bool   `json:"emailVerified"`
	CreatedAt     string `json:"createdAt"`
}

// Provider is the auth capability: login, register, logout, password
// reset, current-user lookup and auth-state subscription.
type Provider interface {
	Register(ctx context.Context, email, password, name string) (*Account, error)
	Login(ctx context.Context, email, password string) (*Account, error)
	Logout(ctx context.Context) error
	ResetPassword(ctx context.Context, email string) error
	CurrentUser(ctx context.Context) (*Account, error)
	// OnAuthStateChanged registers a callback fired with the current
	// account (possibly nil) now and after every login/logout. The
	// returned function unsubscribes.
	OnAuthStateChanged(callback func(*Account)) (unsubscribe func())
}

// Error carries a Firebase-style error code alongside the message.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

// Provider error codes, matching the Firebase auth error catalog.
var (
	ErrUserNotFound = &Error{
		Code:    "auth/user-not-found",
		Message: "No user found with this email address.",
	}
	ErrWrongPassword = &Error{
		Code:    "auth/wrong-password",
		Message: "Incorrect password.",
	}
	ErrEmailInUse = &Error{
		Code:    "auth/email-already-in-use",
		Message: "The email address is already in use by another account.",
	}
	ErrNotSignedIn = &Error{
		Code:    "auth/no-current-user",
		Message: "No user is currently signed in.",
	}
)

// AsError extracts a provider *Error from err, if present.
func AsError(err error) (*Error, bool) {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr, true
	}
	return nil, false
}
