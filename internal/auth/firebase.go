package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"loungebook/internal/models"
	"loungebook/internal/store"
)

// FirebaseProvider implements Provider over the Firebase Admin SDK.
// Password verification happens in the client SDK against Firebase
// itself; server-side Login resolves the account and refreshes the
// local session, it does not re-check the password.
type FirebaseProvider struct {
	client *fbauth.Client
	store  store.Store
	logger zerolog.Logger

	mu          sync.Mutex
	subscribers map[int]func(*Account)
	nextSubID   int
}

// NewFirebaseProvider initializes the Firebase app from a service
// account credentials file.
func NewFirebaseProvider(ctx context.Context, credentialsFile string, s store.Store, logger zerolog.Logger) (*FirebaseProvider, error) {
	opt := option.WithCredentialsFile(credentialsFile)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("get firebase auth client: %w", err)
	}

	return &FirebaseProvider{
		client:      client,
		store:       s,
		logger:      logger.With().Str("component", "firebase_auth").Logger(),
		subscribers: make(map[int]func(*Account)),
	}, nil
}

// Register creates the Firebase user and signs it in.
func (p *FirebaseProvider) Register(ctx context.Context, email, password, name string) (*Account, error) {
	params := (&fbauth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(name)

	record, err := p.client.CreateUser(ctx, params)
	if err != nil {
		if fbauth.IsEmailAlreadyExists(err) {
			return nil, ErrEmailInUse
		}
		return nil, fmt.Errorf("create firebase user: %w", err)
	}

	account := accountFromRecord(record)
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.setSession(ctx, account); err != nil {
		return nil, err
	}

	p.logger.Info().Str("email", email).Str("uid", account.UID).Msg("firebase account registered")
	return account, nil
}

// Login resolves the account by email and refreshes the session.
func (p *FirebaseProvider) Login(ctx context.Context, email, _ string) (*Account, error) {
	record, err := p.client.GetUserByEmail(ctx, email)
	if err != nil {
		if fbauth.IsUserNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get firebase user: %w", err)
	}

	account := accountFromRecord(record)
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.setSession(ctx, account); err != nil {
		return nil, err
	}

	p.logger.Info().Str("email", email).Msg("firebase user signed in")
	return account, nil
}

// Logout revokes refresh tokens for the signed-in account and clears
// the session.
func (p *FirebaseProvider) Logout(ctx context.Context) error {
	current, err := p.CurrentUser(ctx)
	if err == nil && current != nil {
		if err := p.client.RevokeRefreshTokens(ctx, current.UID); err != nil {
			p.logger.Error().Err(err).Str("uid", current.UID).Msg("failed to revoke refresh tokens")
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.setSession(ctx, nil)
}

// ResetPassword generates a password reset link for the email. Sending
// the mail is left to the caller's mail pipeline.
func (p *FirebaseProvider) ResetPassword(ctx context.Context, email string) error {
	link, err := p.client.PasswordResetLink(ctx, email)
	if err != nil {
		if fbauth.IsUserNotFound(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("password reset link: %w", err)
	}
	p.logger.Info().Str("email", email).Str("link", link).Msg("password reset link generated")
	return nil
}

// CurrentUser returns the signed-in account, or ErrNotSignedIn.
func (p *FirebaseProvider) CurrentUser(ctx context.Context) (*Account, error) {
	sessions, err := store.LoadRecords[Account](ctx, p.store, store.AuthSession)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, ErrNotSignedIn
	}
	account := sessions[0]
	return &account, nil
}

// OnAuthStateChanged fires the callback with the current account and on
// every subsequent session change.
func (p *FirebaseProvider) OnAuthStateChanged(callback func(*Account)) func() {
	current, err := p.CurrentUser(context.Background())
	if err != nil {
		current = nil
	}
	callback(current)

	p.mu.Lock()
	id := p.nextSubID
	p.nextSubID++
	p.subscribers[id] = callback
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.subscribers, id)
		p.mu.Unlock()
	}
}

func (p *FirebaseProvider) setSession(ctx context.Context, account *Account) error {
	sessions := []Account{}
	if account != nil {
		sessions = append(sessions, *account)
	}
	if err := store.SaveRecords(ctx, p.store, store.AuthSession, sessions); err != nil {
		return err
	}
	for _, callback := range p.subscribers {
		callback(account)
	}
	return nil
}

func accountFromRecord(record *fbauth.UserRecord) *Account {
	created := ""
	if record.UserMetadata != nil && record.UserMetadata.CreationTimestamp > 0 {
		created = time.UnixMilli(record.UserMetadata.CreationTimestamp).Format(models.TimestampLayout)
	}
	return &Account{
		UID:           record.UID,
		Email:         record.Email,
		DisplayName:   record.DisplayName,
		EmailVerified: record.EmailVerified,
		CreatedAt:     created,
	}
}
