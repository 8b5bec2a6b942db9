package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"aitutor/internal/backend"
	"aitutor/internal/database"
	"aitutor/internal/models"
)

// ProfileRepository handles database operations for profiles
type ProfileRepository struct {
	db database.DBTX
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db database.DBTX) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetProfile retrieves a profile by identity id, returning backend.ErrNotFound when absent
func (r *ProfileRepository) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	query := `
		SELECT id, full_name, user_type, birth_date, grade_level, school_name, parent_id,
		       profile_image_url, is_active, created_at, updated_at
		FROM profiles
		WHERE id = ?
	`
	profile := &models.Profile{}
	var userType string
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&profile.ID,
		&profile.FullName,
		&userType,
		&profile.BirthDate,
		&profile.GradeLevel,
		&profile.SchoolName,
		&profile.ParentID,
		&profile.ProfileImageURL,
		&profile.IsActive,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, backend.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	profile.UserType = models.ParseRole(userType)
	return profile, nil
}

// CreateProfile inserts a profile row
func (r *ProfileRepository) CreateProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	created := *profile
	now := time.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	query := `
		INSERT INTO profiles (id, full_name, user_type, birth_date, grade_level, school_name, parent_id,
		                      profile_image_url, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		created.ID,
		created.FullName,
		string(created.UserType),
		created.BirthDate,
		created.GradeLevel,
		created.SchoolName,
		created.ParentID,
		created.ProfileImageURL,
		created.IsActive,
		created.CreatedAt,
		created.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return &created, nil
}

// UpdateProfile writes the editable fields of a profile
func (r *ProfileRepository) UpdateProfile(ctx context.Context, profile *models.Profile) error {
	query := `
		UPDATE profiles
		SET full_name = ?, birth_date = ?, grade_level = ?, school_name = ?, profile_image_url = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		profile.FullName,
		profile.BirthDate,
		profile.GradeLevel,
		profile.SchoolName,
		profile.ProfileImageURL,
		time.Now().UTC(),
		profile.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return backend.ErrNotFound
	}
	return nil
}
