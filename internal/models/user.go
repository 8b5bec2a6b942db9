package models

import "time"

// User is an authenticated identity as reported by the auth provider
type User struct {
	ID    string
	Email string
	Name  string
	Role  Role
}

// DisplayName returns the metadata name, falling back to the email address
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// Session represents an established authentication session. Role is resolved
// once when the session is built and never re-read from metadata afterwards.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         User
}

// IsExpired checks if the session has expired
func (s *Session) IsExpired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// Role returns the role resolved at session establishment
func (s *Session) Role() Role {
	return s.User.Role
}

// Credential is a locally stored password login for the self-hosted backend
type Credential struct {
	ID            string
	Email         string
	PasswordHash  string
	Name          string
	Role          Role
	OAuthProvider string
	OAuthSubject  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// StoredSession is a session row of the self-hosted backend
type StoredSession struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired checks if the stored session has expired
func (s *StoredSession) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
