package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"aitutor/internal/auth"
	"aitutor/internal/models"
	"aitutor/internal/security"
)

const minPasswordLength = 6

// AuthProvider is the self-hosted identity service: bcrypt credentials,
// database-backed sessions and signed access tokens that carry the session id.
type AuthProvider struct {
	users           *UserRepository
	signer          *security.TokenSigner
	sessionDuration time.Duration
}

// NewAuthProvider creates an identity service over the users table
func NewAuthProvider(users *UserRepository, signer *security.TokenSigner, sessionDuration time.Duration) *AuthProvider {
	return &AuthProvider{
		users:           users,
		signer:          signer,
		sessionDuration: sessionDuration,
	}
}

// SignUp registers an account and signs it in. No email confirmation step exists here.
func (p *AuthProvider) SignUp(ctx context.Context, email, password string, role models.Role) (*models.Session, error) {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return nil, auth.ErrWeakPassword
	}
	if !role.Valid() {
		role = models.RoleParent
	}

	existing, err := p.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, auth.ErrUserAlreadyRegistered
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := p.users.CreateUser(ctx, email, hash, "", role)
	if errors.Is(err, ErrEmailTaken) {
		return nil, auth.ErrUserAlreadyRegistered
	}
	if err != nil {
		return nil, err
	}

	return p.startSession(ctx, user)
}

// SignIn authenticates with email and password
func (p *AuthProvider) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	user, err := p.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !security.CheckPassword(password, user.PasswordHash) {
		return nil, auth.ErrInvalidCredentials
	}
	return p.startSession(ctx, user)
}

// SignOut deletes the session behind accessToken. Unknown or expired tokens
// have nothing left to revoke.
func (p *AuthProvider) SignOut(ctx context.Context, accessToken string) error {
	claims, err := p.signer.Verify(accessToken)
	if err != nil || claims.SessionID == "" {
		return nil
	}
	return p.users.DeleteSession(ctx, claims.SessionID)
}

// GetUser resolves the identity behind an access token
func (p *AuthProvider) GetUser(ctx context.Context, accessToken string) (*models.Session, error) {
	claims, err := p.signer.Verify(accessToken)
	if err != nil {
		return nil, auth.ErrSessionNotFound
	}

	stored, err := p.users.GetSession(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if stored == nil || stored.UserID != claims.Subject {
		return nil, auth.ErrSessionNotFound
	}
	if stored.IsExpired() {
		_ = p.users.DeleteSession(ctx, stored.ID)
		return nil, auth.ErrSessionNotFound
	}

	user, err := p.users.GetUserByID(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, auth.ErrSessionNotFound
	}

	return &models.Session{
		AccessToken: accessToken,
		ExpiresAt:   stored.ExpiresAt,
		User:        sessionUser(user),
	}, nil
}

// SignInWithOAuth signs in the user linked to identity, linking by email or
// creating a parent account when none is linked yet
func (p *AuthProvider) SignInWithOAuth(ctx context.Context, identity auth.OAuthIdentity) (*models.Session, error) {
	if identity.Provider == "" || identity.Subject == "" {
		return nil, errors.New("missing oauth provider information")
	}
	if identity.Email == "" {
		return nil, errors.New("oauth identity has no email address")
	}

	user, err := p.users.GetUserByOAuth(ctx, identity.Provider, identity.Subject)
	if err != nil {
		return nil, err
	}

	if user == nil {
		existing, err := p.users.GetUserByEmail(ctx, identity.Email)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			if existing.OAuthProvider != "" && existing.OAuthProvider != identity.Provider {
				return nil, auth.ErrUserAlreadyRegistered
			}
			if err := p.users.LinkOAuthProvider(ctx, existing.ID, identity.Provider, identity.Subject); err != nil {
				return nil, err
			}
			user = existing
		} else {
			name := identity.Name
			if name == "" {
				name = strings.Split(identity.Email, "@")[0]
			}
			// OAuth-only accounts get an unguessable password
			randomHash, err := security.HashPassword(security.GenerateSessionID())
			if err != nil {
				return nil, fmt.Errorf("failed to generate oauth password hash: %w", err)
			}
			user, err = p.users.CreateUser(ctx, identity.Email, randomHash, name, models.RoleParent)
			if err != nil {
				return nil, err
			}
			if err := p.users.LinkOAuthProvider(ctx, user.ID, identity.Provider, identity.Subject); err != nil {
				return nil, err
			}
		}
	}

	return p.startSession(ctx, user)
}

// CleanupExpiredSessions removes expired sessions from the database
func (p *AuthProvider) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	n, err := p.users.DeleteExpiredSessions(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup sessions: %w", err)
	}
	return n, nil
}

func (p *AuthProvider) startSession(ctx context.Context, user *models.Credential) (*models.Session, error) {
	sessionID := security.GenerateSessionID()
	expiresAt := time.Now().Add(p.sessionDuration)

	if _, err := p.users.CreateSession(ctx, sessionID, user.ID, expiresAt); err != nil {
		return nil, err
	}

	token, err := p.signer.Issue(user.ID, user.Email, sessionID, security.UserMetadata{
		UserType: string(user.Role),
		Name:     user.Name,
	}, expiresAt)
	if err != nil {
		return nil, err
	}

	return &models.Session{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		User:        sessionUser(user),
	}, nil
}

func sessionUser(c *models.Credential) models.User {
	return models.User{ID: c.ID, Email: c.Email, Name: c.Name, Role: c.Role}
}
