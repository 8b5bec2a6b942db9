package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"aitutor/internal/backend"
	"aitutor/internal/database"
	"aitutor/internal/models"
)

// ChildRepository handles database operations for children
type ChildRepository struct {
	db database.DBTX
}

// NewChildRepository creates a new child repository
func NewChildRepository(db database.DBTX) *ChildRepository {
	return &ChildRepository{db: db}
}

// ListChildren retrieves all children of a parent in registration order
func (r *ChildRepository) ListChildren(ctx context.Context, parentID string) ([]models.Child, error) {
	query := `
		SELECT id, parent_id, full_name, birth_date, grade_level, school_name, is_active, created_at, updated_at
		FROM children
		WHERE parent_id = ?
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}
	defer rows.Close()

	children := []models.Child{}
	for rows.Next() {
		var c models.Child
		if err := rows.Scan(
			&c.ID,
			&c.ParentID,
			&c.FullName,
			&c.BirthDate,
			&c.GradeLevel,
			&c.SchoolName,
			&c.IsActive,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan child: %w", err)
		}
		children = append(children, c)
	}
	return children, rows.Err()
}

// CreateChild inserts a child, assigning its id
func (r *ChildRepository) CreateChild(ctx context.Context, child *models.Child) (*models.Child, error) {
	created := *child
	if created.ID == "" {
		created.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	created.UpdatedAt = now

	query := `
		INSERT INTO children (id, parent_id, full_name, birth_date, grade_level, school_name, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		created.ID,
		created.ParentID,
		created.FullName,
		created.BirthDate,
		created.GradeLevel,
		created.SchoolName,
		created.IsActive,
		created.CreatedAt,
		created.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create child: %w", err)
	}
	return &created, nil
}

// DeleteChild removes a child owned by parentID
func (r *ChildRepository) DeleteChild(ctx context.Context, parentID, childID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM children WHERE id = ? AND parent_id = ?`, childID, parentID)
	if err != nil {
		return fmt.Errorf("failed to delete child: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return backend.ErrNotFound
	}
	return nil
}
