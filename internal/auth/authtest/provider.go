// Package authtest provides an in-memory auth.Provider for tests.
package authtest

import (
	"context"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"aitutor/internal/auth"
	"aitutor/internal/models"
)

type account struct {
	password string
	user     models.User
}

// Provider is an in-memory identity service that records every call
type Provider struct {
	mu       sync.Mutex
	accounts map[string]account
	tokens   map[string]models.User
	seq      int

	// RequireConfirmation makes SignUp return a session without a token
	RequireConfirmation bool
	// Err, when set, is returned by every call
	Err error

	Calls []string
}

// NewProvider creates an empty provider
func NewProvider() *Provider {
	return &Provider{
		accounts: make(map[string]account),
		tokens:   make(map[string]models.User),
	}
}

// AddUser registers an account directly and returns its user
func (p *Provider) AddUser(email, password string, role models.Role) models.User {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seq++
	u := models.User{ID: fmt.Sprintf("user-%d", p.seq), Email: email, Role: role}
	p.accounts[email] = account{password: password, user: u}
	return u
}

// IssueToken returns a valid access token for an existing account
func (p *Provider) IssueToken(email string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.issueLocked(p.accounts[email].user)
}

// CallCount returns the number of recorded calls
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Calls)
}

func (p *Provider) issueLocked(u models.User) string {
	p.seq++
	token := fmt.Sprintf("token-%d", p.seq)
	p.tokens[token] = u
	return token
}

func (p *Provider) session(token string, u models.User) *models.Session {
	return &models.Session{AccessToken: token, ExpiresAt: time.Now().Add(time.Hour), User: u}
}

func (p *Provider) SignUp(ctx context.Context, email, password string, role models.Role) (*models.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls = append(p.Calls, "SignUp")
	if p.Err != nil {
		return nil, p.Err
	}
	if _, exists := p.accounts[email]; exists {
		return nil, auth.ErrUserAlreadyRegistered
	}
	if utf8.RuneCountInString(password) < 6 {
		return nil, auth.ErrWeakPassword
	}
	p.seq++
	u := models.User{ID: fmt.Sprintf("user-%d", p.seq), Email: email, Role: role}
	p.accounts[email] = account{password: password, user: u}
	if p.RequireConfirmation {
		return &models.Session{User: u}, nil
	}
	return p.session(p.issueLocked(u), u), nil
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls = append(p.Calls, "SignIn")
	if p.Err != nil {
		return nil, p.Err
	}
	acc, ok := p.accounts[email]
	if !ok || acc.password != password {
		return nil, auth.ErrInvalidCredentials
	}
	return p.session(p.issueLocked(acc.user), acc.user), nil
}

func (p *Provider) SignOut(ctx context.Context, accessToken string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls = append(p.Calls, "SignOut")
	if p.Err != nil {
		return p.Err
	}
	delete(p.tokens, accessToken)
	return nil
}

func (p *Provider) GetUser(ctx context.Context, accessToken string) (*models.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls = append(p.Calls, "GetUser")
	if p.Err != nil {
		return nil, p.Err
	}
	u, ok := p.tokens[accessToken]
	if !ok {
		return nil, auth.ErrSessionNotFound
	}
	return p.session(accessToken, u), nil
}

var _ auth.Provider = (*Provider)(nil)
