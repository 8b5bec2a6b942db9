package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"aitutor/internal/backend"
	"aitutor/internal/database"
	"aitutor/internal/models"
)

// GoalRepository handles database operations for goals
type GoalRepository struct {
	db database.DBTX
}

// NewGoalRepository creates a new goal repository
func NewGoalRepository(db database.DBTX) *GoalRepository {
	return &GoalRepository{db: db}
}

const goalColumns = `id, user_id, title, description, goal_type, target_date, created_at, updated_at`

func scanGoal(row interface{ Scan(...interface{}) error }) (*models.Goal, error) {
	g := &models.Goal{}
	var goalType string
	if err := row.Scan(
		&g.ID,
		&g.UserID,
		&g.Title,
		&g.Description,
		&goalType,
		&g.TargetDate,
		&g.CreatedAt,
		&g.UpdatedAt,
	); err != nil {
		return nil, err
	}
	g.GoalType = models.GoalType(goalType)
	return g, nil
}

// CreateGoal inserts a goal, assigning its id and timestamps
func (r *GoalRepository) CreateGoal(ctx context.Context, goal *models.Goal) (*models.Goal, error) {
	created := *goal
	if created.ID == "" {
		created.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	created.UpdatedAt = created.CreatedAt

	query := `INSERT INTO goals (` + goalColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		created.ID,
		created.UserID,
		created.Title,
		created.Description,
		string(created.GoalType),
		created.TargetDate,
		created.CreatedAt,
		created.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}
	return &created, nil
}

// ListGoals returns an owner's goals, newest first
func (r *GoalRepository) ListGoals(ctx context.Context, ownerID string) ([]models.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE user_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	goals := []models.Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, *g)
	}
	return goals, rows.Err()
}

// GetGoal retrieves one of the owner's goals
func (r *GoalRepository) GetGoal(ctx context.Context, ownerID, goalID string) (*models.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE id = ? AND user_id = ?`
	g, err := scanGoal(r.db.QueryRowContext(ctx, query, goalID, ownerID))
	if err == sql.ErrNoRows {
		return nil, backend.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}
	return g, nil
}

// Stores returns the SQL adapter for the backend ports
func Stores(db database.DBTX) backend.Stores {
	return backend.Stores{
		Profiles: NewProfileRepository(db),
		Children: NewChildRepository(db),
		Goals:    NewGoalRepository(db),
	}
}
