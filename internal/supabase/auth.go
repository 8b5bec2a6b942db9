package supabase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"aitutor/internal/auth"
	"aitutor/internal/models"
	"aitutor/internal/security"
)

type gotrueUser struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	UserMetadata struct {
		UserType string `json:"user_type"`
		Name     string `json:"name"`
		FullName string `json:"full_name"`
	} `json:"user_metadata"`
}

func (u gotrueUser) toModel() models.User {
	name := u.UserMetadata.Name
	if name == "" {
		name = u.UserMetadata.FullName
	}
	return models.User{
		ID:    u.ID,
		Email: u.Email,
		Name:  name,
		Role:  models.ParseRole(u.UserMetadata.UserType),
	}
}

type gotrueSession struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresIn    int64      `json:"expires_in"`
	ExpiresAt    int64      `json:"expires_at"`
	User         gotrueUser `json:"user"`
}

func (s gotrueSession) toModel() *models.Session {
	session := &models.Session{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		User:         s.User.toModel(),
	}
	switch {
	case s.ExpiresAt > 0:
		session.ExpiresAt = time.Unix(s.ExpiresAt, 0)
	case s.ExpiresIn > 0:
		session.ExpiresAt = time.Now().Add(time.Duration(s.ExpiresIn) * time.Second)
	}
	return session
}

// AuthProvider implements auth.Provider over GoTrue
type AuthProvider struct {
	client   *Client
	verifier *security.TokenSigner
}

// NewAuthProvider creates the GoTrue identity service. When jwtSecret is set,
// access tokens are checked locally before GetUser calls out.
func NewAuthProvider(client *Client, jwtSecret string) *AuthProvider {
	p := &AuthProvider{client: client}
	if jwtSecret != "" {
		p.verifier = security.NewTokenSigner(jwtSecret, "")
	}
	return p
}

type credentials struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Data     map[string]any `json:"data,omitempty"`
}

// SignUp registers an account with user_type metadata. When the project
// requires email confirmation the returned session has no access token.
func (p *AuthProvider) SignUp(ctx context.Context, email, password string, role models.Role) (*models.Session, error) {
	var resp struct {
		gotrueSession
		// without auto-confirm GoTrue answers with the bare user
		gotrueUser
	}
	err := p.client.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/signup",
		body: credentials{
			Email:    email,
			Password: password,
			Data:     map[string]any{"user_type": string(role)},
		},
	}, &resp)
	if err != nil {
		return nil, err
	}

	if resp.AccessToken != "" {
		return resp.gotrueSession.toModel(), nil
	}
	return &models.Session{User: resp.gotrueUser.toModel()}, nil
}

// SignIn uses the password grant
func (p *AuthProvider) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	var resp gotrueSession
	err := p.client.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/token",
		query:  url.Values{"grant_type": {"password"}},
		body:   credentials{Email: email, Password: password},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, auth.ErrInvalidCredentials
	}
	return resp.toModel(), nil
}

// SignOut revokes the session behind accessToken
func (p *AuthProvider) SignOut(ctx context.Context, accessToken string) error {
	err := p.client.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/logout",
		token:  accessToken,
	}, nil)

	// an already revoked token leaves nothing to sign out of
	var apiErr *APIError
	if errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden) {
		return nil
	}
	return err
}

// GetUser resolves the identity behind an access token
func (p *AuthProvider) GetUser(ctx context.Context, accessToken string) (*models.Session, error) {
	var expiresAt time.Time
	if p.verifier != nil {
		claims, err := p.verifier.Verify(accessToken)
		if err != nil {
			return nil, auth.ErrSessionNotFound
		}
		expiresAt = claims.ExpiresAt.Time
	}

	var user gotrueUser
	err := p.client.do(ctx, request{
		method: http.MethodGet,
		path:   "/auth/v1/user",
		token:  accessToken,
	}, &user)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			return nil, auth.ErrSessionNotFound
		}
		return nil, err
	}
	if user.ID == "" {
		return nil, auth.ErrSessionNotFound
	}

	return &models.Session{
		AccessToken: accessToken,
		ExpiresAt:   expiresAt,
		User:        user.toModel(),
	}, nil
}

// AdminCreateUser creates a confirmed account with the service role key.
// It returns auth.ErrUserAlreadyRegistered when the email is taken.
func (p *AuthProvider) AdminCreateUser(ctx context.Context, email, password, name string, role models.Role) (*models.User, error) {
	if p.client.serviceKey == "" {
		return nil, fmt.Errorf("SUPABASE_SERVICE_ROLE_KEY is required for admin calls")
	}
	var user gotrueUser
	err := p.client.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/admin/users",
		token:  p.client.serviceKey,
		body: map[string]any{
			"email":         email,
			"password":      password,
			"email_confirm": true,
			"user_metadata": map[string]any{"user_type": string(role), "name": name},
		},
	}, &user)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.Code == "email_exists" || apiErr.Status == http.StatusUnprocessableEntity) {
			return nil, auth.ErrUserAlreadyRegistered
		}
		return nil, err
	}
	u := user.toModel()
	return &u, nil
}

var _ auth.Provider = (*AuthProvider)(nil)
