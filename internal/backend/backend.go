// Package backend declares the storage ports the application depends on.
// The hosted adapter lives in internal/supabase and the self-hosted SQL
// adapter in internal/repository.
package backend

import (
	"context"
	"errors"

	"aitutor/internal/models"
)

// ErrNotFound is returned when a single-row lookup matches nothing
var ErrNotFound = errors.New("row not found")

// ProfileStore reads and writes rows of the profiles table
type ProfileStore interface {
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	CreateProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error)
	UpdateProfile(ctx context.Context, profile *models.Profile) error
}

// ChildStore reads and writes rows of the children table
type ChildStore interface {
	ListChildren(ctx context.Context, parentID string) ([]models.Child, error)
	CreateChild(ctx context.Context, child *models.Child) (*models.Child, error)
	DeleteChild(ctx context.Context, parentID, childID string) error
}

// GoalStore reads and writes rows of the goals table
type GoalStore interface {
	CreateGoal(ctx context.Context, goal *models.Goal) (*models.Goal, error)
	// ListGoals returns the owner's goals, newest first
	ListGoals(ctx context.Context, ownerID string) ([]models.Goal, error)
	GetGoal(ctx context.Context, ownerID, goalID string) (*models.Goal, error)
}

// Stores bundles the table ports of one backend adapter
type Stores struct {
	Profiles ProfileStore
	Children ChildStore
	Goals    GoalStore
}

type accessTokenKey struct{}

// WithAccessToken attaches the caller's access token so adapters that enforce
// row level security can forward it
func WithAccessToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, accessTokenKey{}, token)
}

// AccessToken returns the token attached by WithAccessToken
func AccessToken(ctx context.Context) string {
	token, _ := ctx.Value(accessTokenKey{}).(string)
	return token
}
