package auth

import (
	"errors"
	"strings"
)

// Error is an auth failure carrying a message fit for display
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// providerMessager is implemented by adapter errors that carry the raw
// provider message separately from their wrapping
type providerMessager interface {
	ProviderMessage() string
}

var friendlyMessages = map[string]string{
	ErrUserAlreadyRegistered.Error(): "This email is already registered.",
	ErrInvalidCredentials.Error():    "Incorrect email or password.",
	ErrEmailNotConfirmed.Error():     "Please confirm your email address first.",
	ErrWeakPassword.Error():          "Password must be at least 6 characters.",
}

const (
	msgUnknown       = "An unknown error occurred."
	msgSignInFailed  = "An error occurred while signing in."
	msgSignOutFailed = "An error occurred while signing out."
	msgSessionFailed = "An error occurred while loading your account."
)

// Message converts a provider error into display text. Known provider
// messages are translated, other messages pass through, and an empty
// message falls back to fallback.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr.Message
	}

	raw := err.Error()
	var pm providerMessager
	if errors.As(err, &pm) {
		raw = pm.ProviderMessage()
	}
	raw = strings.TrimSpace(raw)

	if friendly, ok := friendlyMessages[raw]; ok {
		return friendly
	}
	if raw == "" {
		if fallback == "" {
			return msgUnknown
		}
		return fallback
	}
	return raw
}

func wrap(err error, fallback string) *Error {
	return &Error{Message: Message(err, fallback), Err: err}
}
