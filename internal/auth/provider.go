// Package auth mirrors the backend's authentication session into an explicit,
// observable session object that handlers pass to their dependents.
package auth

import (
	"context"
	"errors"

	"aitutor/internal/models"
)

// Canonical provider failures. Both backend adapters report these messages
// verbatim so they map to the same user-facing text.
var (
	ErrUserAlreadyRegistered = errors.New("User already registered")
	ErrInvalidCredentials    = errors.New("Invalid login credentials")
	ErrEmailNotConfirmed     = errors.New("Email not confirmed")
	ErrWeakPassword          = errors.New("Password should be at least 6 characters")
	ErrSessionNotFound       = errors.New("Session not found")
	ErrOAuthUnsupported      = errors.New("OAuth sign-in is not supported by this backend")
)

// Provider is the external identity service
type Provider interface {
	// SignUp registers an account. The returned session has no access token
	// when the provider requires email confirmation first.
	SignUp(ctx context.Context, email, password string, role models.Role) (*models.Session, error)
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	SignOut(ctx context.Context, accessToken string) error
	// GetUser resolves the identity behind an access token
	GetUser(ctx context.Context, accessToken string) (*models.Session, error)
}

// OAuthIdentity is a verified identity returned by an OAuth provider
type OAuthIdentity struct {
	Provider string
	Subject  string
	Email    string
	Name     string
}

// OAuthProvider is implemented by identity services that can establish a
// session from an external OAuth identity
type OAuthProvider interface {
	SignInWithOAuth(ctx context.Context, identity OAuthIdentity) (*models.Session, error)
}
