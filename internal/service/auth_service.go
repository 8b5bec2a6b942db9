package service

import (
	"context"

	"aitutor/internal/auth"
	"aitutor/internal/logger"
	"aitutor/internal/models"
	"aitutor/internal/validation"
)

// AuthService validates auth forms locally and forwards them to a client's
// auth mirror. Invalid forms never reach the identity provider.
type AuthService struct {
	log       *logger.Logger
	validator *validation.Validator
}

// NewAuthService creates a new auth service
func NewAuthService(log *logger.Logger, validator *validation.Validator) *AuthService {
	return &AuthService{
		log:       log.With("service", "AuthService"),
		validator: validator,
	}
}

// SignUp checks the form and registers the account through m
func (s *AuthService) SignUp(ctx context.Context, m *auth.Mirror, form validation.SignupForm) (*models.Session, error) {
	if err := s.validator.Signup(form); err != nil {
		return nil, err
	}
	session, err := m.SignUp(ctx, form.Email, form.Password, form.Role())
	if err != nil {
		s.log.Info("Sign up rejected", "email", form.Email, "error", err.Error())
		return nil, err
	}
	s.log.Info("User signed up", "user_id", session.User.ID, "role", string(session.User.Role))
	return session, nil
}

// SignIn checks the form and signs in through m
func (s *AuthService) SignIn(ctx context.Context, m *auth.Mirror, form validation.LoginForm) (*models.Session, error) {
	if err := s.validator.Login(form); err != nil {
		return nil, err
	}
	session, err := m.SignIn(ctx, form.Email, form.Password)
	if err != nil {
		s.log.Info("Sign in rejected", "email", form.Email, "error", err.Error())
		return nil, err
	}
	return session, nil
}

// SignInWithOAuth signs in an identity verified by an OAuth provider
func (s *AuthService) SignInWithOAuth(ctx context.Context, m *auth.Mirror, identity auth.OAuthIdentity) (*models.Session, error) {
	session, err := m.SignInWithOAuth(ctx, identity)
	if err != nil {
		s.log.Warn("OAuth sign in failed", "provider", identity.Provider, "error", err.Error())
		return nil, err
	}
	return session, nil
}

// SignOut ends the session held by m
func (s *AuthService) SignOut(ctx context.Context, m *auth.Mirror) error {
	return m.SignOut(ctx)
}
