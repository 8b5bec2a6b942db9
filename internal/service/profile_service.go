package service

import (
	"context"
	"errors"
	"fmt"

	"aitutor/internal/backend"
	"aitutor/internal/logger"
	"aitutor/internal/models"
	"aitutor/internal/validation"
)

var (
	ErrNotSignedIn        = errors.New("please sign in first")
	ErrParentOnly         = errors.New("only parent accounts can manage children")
	ErrLearnerOnly        = errors.New("only learner accounts have learning information")
	ErrChildNotFound      = errors.New("child not found")
	ErrDeleteNotConfirmed = errors.New("deletion was not confirmed")
)

// ProfileService handles profile and child management
type ProfileService struct {
	log       *logger.Logger
	profiles  backend.ProfileStore
	children  backend.ChildStore
	validator *validation.Validator
}

// NewProfileService creates a new profile service
func NewProfileService(log *logger.Logger, profiles backend.ProfileStore, children backend.ChildStore, validator *validation.Validator) *ProfileService {
	return &ProfileService{
		log:       log.With("service", "ProfileService"),
		profiles:  profiles,
		children:  children,
		validator: validator,
	}
}

// withSession attaches the caller's access token for row level security
func withSession(ctx context.Context, session *models.Session) context.Context {
	return backend.WithAccessToken(ctx, session.AccessToken)
}

// LoadProfile fetches the session's profile. When none exists yet a default
// profile is created from the session and returned.
func (s *ProfileService) LoadProfile(ctx context.Context, session *models.Session) (*models.Profile, error) {
	if session == nil {
		return nil, ErrNotSignedIn
	}
	ctx = withSession(ctx, session)

	profile, err := s.profiles.GetProfile(ctx, session.User.ID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, backend.ErrNotFound) {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	profile, err = s.profiles.CreateProfile(ctx, &models.Profile{
		ID:       session.User.ID,
		FullName: session.User.DisplayName(),
		UserType: session.Role(),
		IsActive: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	s.log.Info("Created default profile", "user_id", session.User.ID, "role", string(session.Role()))
	return profile, nil
}

// UpdateProfile saves the name and birth date
func (s *ProfileService) UpdateProfile(ctx context.Context, session *models.Session, update models.ProfileUpdate) (*models.Profile, error) {
	if err := s.validator.Struct(update); err != nil {
		return nil, err
	}
	profile, err := s.LoadProfile(ctx, session)
	if err != nil {
		return nil, err
	}

	profile.FullName = update.FullName
	profile.BirthDate = update.BirthDate
	if err := s.profiles.UpdateProfile(withSession(ctx, session), profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return profile, nil
}

// UpdateLearningInfo saves a learner's grade and school
func (s *ProfileService) UpdateLearningInfo(ctx context.Context, session *models.Session, update models.LearningInfoUpdate) (*models.Profile, error) {
	if session != nil && session.Role() != models.RoleChild {
		return nil, ErrLearnerOnly
	}
	if err := s.validator.Struct(update); err != nil {
		return nil, err
	}
	profile, err := s.LoadProfile(ctx, session)
	if err != nil {
		return nil, err
	}

	profile.GradeLevel = update.GradeLevel
	profile.SchoolName = update.SchoolName
	if err := s.profiles.UpdateProfile(withSession(ctx, session), profile); err != nil {
		return nil, fmt.Errorf("failed to update learning info: %w", err)
	}
	return profile, nil
}

func requireParent(session *models.Session) error {
	if session == nil {
		return ErrNotSignedIn
	}
	if session.Role() == models.RoleChild {
		return ErrParentOnly
	}
	return nil
}

// ListChildren lists the children registered by a parent
func (s *ProfileService) ListChildren(ctx context.Context, session *models.Session) ([]models.Child, error) {
	if err := requireParent(session); err != nil {
		return nil, err
	}
	children, err := s.children.ListChildren(withSession(ctx, session), session.User.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}
	return children, nil
}

// AddChild registers a child under the session's parent
func (s *ProfileService) AddChild(ctx context.Context, session *models.Session, req models.NewChildRequest) (*models.Child, error) {
	if err := requireParent(session); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	child, err := s.children.CreateChild(withSession(ctx, session), &models.Child{
		ParentID:   session.User.ID,
		FullName:   req.FullName,
		BirthDate:  req.BirthDate,
		GradeLevel: req.GradeLevel,
		SchoolName: req.SchoolName,
		IsActive:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add child: %w", err)
	}
	return child, nil
}

// DeleteChild removes a child. Nothing is deleted unless confirmed is set.
func (s *ProfileService) DeleteChild(ctx context.Context, session *models.Session, childID string, confirmed bool) error {
	if err := requireParent(session); err != nil {
		return err
	}
	if !confirmed {
		return ErrDeleteNotConfirmed
	}

	err := s.children.DeleteChild(withSession(ctx, session), session.User.ID, childID)
	if errors.Is(err, backend.ErrNotFound) {
		return ErrChildNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete child: %w", err)
	}
	s.log.Info("Deleted child", "parent_id", session.User.ID, "child_id", childID)
	return nil
}

// FindChild returns one of the parent's children
func (s *ProfileService) FindChild(ctx context.Context, session *models.Session, childID string) (*models.Child, error) {
	children, err := s.ListChildren(ctx, session)
	if err != nil {
		return nil, err
	}
	for i := range children {
		if children[i].ID == childID {
			return &children[i], nil
		}
	}
	return nil, ErrChildNotFound
}
