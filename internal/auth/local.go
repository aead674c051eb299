package auth

import (
	"context"

	"github.com/mitradev/ssogate/internal/store"

	"golang.org/x/crypto/bcrypt"
)

// dummyHash is a bcrypt hash of a random throwaway value, compared
// against when the user does not exist.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// LocalAuthProvider verifies email/password credentials against the
// user table. Disabled users fail closed even with a correct password.
type LocalAuthProvider struct {
	store *store.Store
}

// NewLocalAuthProvider creates a new local authentication provider
func NewLocalAuthProvider(s *store.Store) *LocalAuthProvider {
	return &LocalAuthProvider{store: s}
}

// Authenticate verifies credentials against the local database
func (p *LocalAuthProvider) Authenticate(
	ctx context.Context,
	email, password string,
) (*Result, error) {
	user, err := p.store.GetUserByEmail(ctx, email)
	if err != nil {
		// Burn a bcrypt round anyway so a missing user costs the same
		// as a wrong password.
		_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
		return nil, ErrInvalidCredentials
	}

	if user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(
		[]byte(user.PasswordHash),
		[]byte(password),
	); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive() {
		return nil, ErrUserDisabled
	}

	return &Result{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		AvatarURL: user.AvatarURL,
		Provider:  p.Name(),
		Success:   true,
	}, nil
}

// Name returns provider name for logging
func (p *LocalAuthProvider) Name() string {
	return "local"
}
