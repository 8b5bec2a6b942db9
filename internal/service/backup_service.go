package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"aitutor/internal/backend"
	"aitutor/internal/logger"
	"aitutor/internal/models"
)

const backupVersion = "1.0"

// BackupData represents the complete database backup structure
type BackupData struct {
	Version      string           `json:"version"`
	ExportedAt   time.Time        `json:"exported_at"`
	DatabaseType string           `json:"database_type"`
	Users        []UserBackup     `json:"users"`
	Profiles     []models.Profile `json:"profiles"`
	Children     []models.Child   `json:"children"`
	Goals        []models.Goal    `json:"goals"`
}

// UserBackup represents a user record for backup
type UserBackup struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"password_hash"`
	Name          string    `json:"name"`
	Role          string    `json:"role"`
	OAuthProvider string    `json:"oauth_provider"`
	OAuthSubject  string    `json:"oauth_subject"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// UserLister lists every stored account
type UserLister interface {
	ListUsers(ctx context.Context) ([]models.Credential, error)
}

// BackupService exports the self-hosted database
type BackupService struct {
	log          *logger.Logger
	users        UserLister
	stores       backend.Stores
	databaseType string
	now          func() time.Time
}

// NewBackupService creates a new backup service
func NewBackupService(log *logger.Logger, users UserLister, stores backend.Stores, databaseType string) *BackupService {
	return &BackupService{
		log:          log.With("service", "BackupService"),
		users:        users,
		stores:       stores,
		databaseType: databaseType,
		now:          time.Now,
	}
}

// Export collects every user with their profile, children and goals
func (s *BackupService) Export(ctx context.Context) (*BackupData, error) {
	s.log.Info("Starting database export")

	backup := &BackupData{
		Version:      backupVersion,
		ExportedAt:   s.now().UTC(),
		DatabaseType: s.databaseType,
		Users:        []UserBackup{},
		Profiles:     []models.Profile{},
		Children:     []models.Child{},
		Goals:        []models.Goal{},
	}

	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export users: %w", err)
	}

	for _, u := range users {
		backup.Users = append(backup.Users, UserBackup{
			ID:            u.ID,
			Email:         u.Email,
			PasswordHash:  u.PasswordHash,
			Name:          u.Name,
			Role:          string(u.Role),
			OAuthProvider: u.OAuthProvider,
			OAuthSubject:  u.OAuthSubject,
			CreatedAt:     u.CreatedAt,
			UpdatedAt:     u.UpdatedAt,
		})

		profile, err := s.stores.Profiles.GetProfile(ctx, u.ID)
		switch {
		case errors.Is(err, backend.ErrNotFound):
		case err != nil:
			return nil, fmt.Errorf("failed to export profile %s: %w", u.ID, err)
		default:
			backup.Profiles = append(backup.Profiles, *profile)
		}

		children, err := s.stores.Children.ListChildren(ctx, u.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to export children of %s: %w", u.ID, err)
		}
		backup.Children = append(backup.Children, children...)

		goals, err := s.stores.Goals.ListGoals(ctx, u.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to export goals of %s: %w", u.ID, err)
		}
		backup.Goals = append(backup.Goals, goals...)
	}

	s.log.Info("Export complete",
		"users", len(backup.Users),
		"profiles", len(backup.Profiles),
		"children", len(backup.Children),
		"goals", len(backup.Goals),
	)
	return backup, nil
}

// WriteExport writes the export as indented JSON
func (s *BackupService) WriteExport(ctx context.Context, w io.Writer) error {
	backup, err := s.Export(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(backup); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	return nil
}
