package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserDisabled       = errors.New("user account is disabled")

	// Upstream OAuth errors
	ErrOAuthNoEmail      = errors.New("upstream account has no verified email address")
	ErrOAuthUnlinked     = errors.New("upstream identity does not match any user")
	ErrOAuthExchangeFail = errors.New("upstream code exchange failed")
)
