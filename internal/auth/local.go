package auth

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"loungebook/internal/models"
	"loungebook/internal/store"
)

// credential is the persisted shape of a local-provider account. The
// password is stored as-is, matching the mock this provider replaces;
// it never leaves the package.
type credential struct {
	Account
	Password string `json:"password"`
}

// LocalProvider implements Provider on top of the record store, as a
// stand-in for a real identity provider in development setups.
type LocalProvider struct {
	store  store.Store
	logger zerolog.Logger
	now    func() string

	mu          sync.Mutex
	subscribers map[int]func(*Account)
	nextSubID   int
}

// NewLocalProvider builds a store-backed provider.
func NewLocalProvider(s store.Store, logger zerolog.Logger) *LocalProvider {
	return &LocalProvider{
		store:       s,
		logger:      logger.With().Str("component", "local_auth").Logger(),
		now:         models.Now,
		subscribers: make(map[int]func(*Account)),
	}
}

// Register creates an account and signs it in.
func (p *LocalProvider) Register(ctx context.Context, email, password, name string) (*Account, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	creds, err := store.LoadRecords[credential](ctx, p.store, store.AuthUsers)
	if err != nil {
		return nil, err
	}

	for i := range creds {
		if creds[i].Email == email {
			return nil, ErrEmailInUse
		}
	}

	cred := credential{
		Account: Account{
			UID:         uuid.NewString(),
			Email:       email,
			DisplayName: name,
			CreatedAt:   p.now(),
		},
		Password: password,
	}
	creds = append(creds, cred)
	if err := store.SaveRecords(ctx, p.store, store.AuthUsers, creds); err != nil {
		return nil, err
	}

	account := cred.Account
	if err := p.setSession(ctx, &account); err != nil {
		return nil, err
	}

	p.logger.Info().Str("email", email).Msg("account registered")
	return &account, nil
}

// Login checks the password and signs the account in.
func (p *LocalProvider) Login(ctx context.Context, email, password string) (*Account, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	creds, err := store.LoadRecords[credential](ctx, p.store, store.AuthUsers)
	if err != nil {
		return nil, err
	}

	for i := range creds {
		if creds[i].Email != email {
			continue
		}
		if creds[i].Password != password {
			return nil, ErrWrongPassword
		}
		account := creds[i].Account
		if err := p.setSession(ctx, &account); err != nil {
			return nil, err
		}
		p.logger.Info().Str("email", email).Msg("signed in")
		return &account, nil
	}

	return nil, ErrUserNotFound
}

// Logout clears the current session.
func (p *LocalProvider) Logout(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.setSession(ctx, nil)
}

// ResetPassword verifies the account exists. No mail is sent; the
// original mock only logged the request.
func (p *LocalProvider) ResetPassword(ctx context.Context, email string) error {
	creds, err := store.LoadRecords[credential](ctx, p.store, store.AuthUsers)
	if err != nil {
		return err
	}
	for i := range creds {
		if creds[i].Email == email {
			p.logger.Info().Str("email", email).Msg("password reset requested")
			return nil
		}
	}
	return ErrUserNotFound
}

// CurrentUser returns the signed-in account, or ErrNotSignedIn.
func (p *LocalProvider) CurrentUser(ctx context.Context) (*Account, error) {
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
func (p *LocalProvider) OnAuthStateChanged(callback func(*Account)) func() {
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

// setSession persists the session and notifies subscribers. Callers
// hold p.mu.
func (p *LocalProvider) setSession(ctx context.Context, account *Account) error {
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
