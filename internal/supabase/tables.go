package supabase

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"aitutor/internal/backend"
	"aitutor/internal/models"
)

const (
	tableProfiles = "profiles"
	tableChildren = "children"
	tableGoals    = "goals"

	preferRepresentation = "return=representation"
	acceptSingleObject   = "application/vnd.pgrst.object+json"
)

// Tables implements the backend stores over PostgREST. The caller's access
// token is read from the context so row level security applies.
type Tables struct {
	client *Client
}

// NewTables creates the PostgREST stores
func NewTables(client *Client) *Tables {
	return &Tables{client: client}
}

// Stores returns the hosted adapter for the backend ports
func (t *Tables) Stores() backend.Stores {
	return backend.Stores{Profiles: t, Children: t, Goals: t}
}

func eq(v string) string {
	return "eq." + v
}

func (t *Tables) rest(ctx context.Context, method, table string, query url.Values, body any, headers map[string]string, out any) error {
	return t.client.do(ctx, request{
		method:  method,
		path:    "/rest/v1/" + table,
		query:   query,
		body:    body,
		token:   backend.AccessToken(ctx),
		headers: headers,
	}, out)
}

// selectOne fetches a single row, mapping PGRST116 to backend.ErrNotFound
func (t *Tables) selectOne(ctx context.Context, table string, query url.Values, out any) error {
	query.Set("select", "*")
	err := t.rest(ctx, http.MethodGet, table, query, nil, map[string]string{"Accept": acceptSingleObject}, out)
	if errors.Is(err, backend.ErrNotFound) {
		return backend.ErrNotFound
	}
	return err
}

// insertOne inserts body and decodes the created row
func (t *Tables) insertOne(ctx context.Context, table string, body any, out any) error {
	headers := map[string]string{"Prefer": preferRepresentation, "Accept": acceptSingleObject}
	return t.rest(ctx, http.MethodPost, table, nil, body, headers, out)
}

// GetProfile fetches the profile row of an identity
func (t *Tables) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	var p models.Profile
	if err := t.selectOne(ctx, tableProfiles, url.Values{"id": {eq(id)}}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

type profileRow struct {
	ID              string      `json:"id"`
	FullName        string      `json:"full_name"`
	UserType        models.Role `json:"user_type"`
	BirthDate       *string     `json:"birth_date"`
	GradeLevel      *string     `json:"grade_level"`
	SchoolName      *string     `json:"school_name"`
	ParentID        *string     `json:"parent_id,omitempty"`
	ProfileImageURL *string     `json:"profile_image_url,omitempty"`
	IsActive        bool        `json:"is_active"`
}

// nullable maps the empty string to SQL NULL for date and optional columns
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// CreateProfile inserts a profile row
func (t *Tables) CreateProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	row := profileRow{
		ID:              profile.ID,
		FullName:        profile.FullName,
		UserType:        profile.UserType,
		BirthDate:       nullable(profile.BirthDate),
		GradeLevel:      nullable(profile.GradeLevel),
		SchoolName:      nullable(profile.SchoolName),
		ParentID:        nullable(profile.ParentID),
		ProfileImageURL: nullable(profile.ProfileImageURL),
		IsActive:        profile.IsActive,
	}
	var created models.Profile
	if err := t.insertOne(ctx, tableProfiles, row, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateProfile writes the editable fields of a profile
func (t *Tables) UpdateProfile(ctx context.Context, profile *models.Profile) error {
	body := map[string]any{
		"full_name":   profile.FullName,
		"birth_date":  nullable(profile.BirthDate),
		"grade_level": nullable(profile.GradeLevel),
		"school_name": nullable(profile.SchoolName),
		"updated_at":  time.Now().UTC().Format(time.RFC3339),
	}
	var updated []models.Profile
	err := t.rest(ctx, http.MethodPatch, tableProfiles, url.Values{"id": {eq(profile.ID)}}, body,
		map[string]string{"Prefer": preferRepresentation}, &updated)
	if err != nil {
		return err
	}
	if len(updated) == 0 {
		return backend.ErrNotFound
	}
	return nil
}

// ListChildren lists a parent's children in registration order
func (t *Tables) ListChildren(ctx context.Context, parentID string) ([]models.Child, error) {
	children := []models.Child{}
	query := url.Values{
		"select":    {"*"},
		"parent_id": {eq(parentID)},
		"order":     {"created_at.asc"},
	}
	if err := t.rest(ctx, http.MethodGet, tableChildren, query, nil, nil, &children); err != nil {
		return nil, err
	}
	return children, nil
}

type childRow struct {
	ParentID   string `json:"parent_id"`
	FullName   string `json:"full_name"`
	BirthDate  string `json:"birth_date"`
	GradeLevel string `json:"grade_level"`
	SchoolName string `json:"school_name"`
	IsActive   bool   `json:"is_active"`
}

// CreateChild inserts a child row; the database assigns its id
func (t *Tables) CreateChild(ctx context.Context, child *models.Child) (*models.Child, error) {
	row := childRow{
		ParentID:   child.ParentID,
		FullName:   child.FullName,
		BirthDate:  child.BirthDate,
		GradeLevel: child.GradeLevel,
		SchoolName: child.SchoolName,
		IsActive:   child.IsActive,
	}
	var created models.Child
	if err := t.insertOne(ctx, tableChildren, row, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteChild removes a child owned by parentID
func (t *Tables) DeleteChild(ctx context.Context, parentID, childID string) error {
	var deleted []models.Child
	query := url.Values{"id": {eq(childID)}, "parent_id": {eq(parentID)}}
	err := t.rest(ctx, http.MethodDelete, tableChildren, query, nil, map[string]string{"Prefer": preferRepresentation}, &deleted)
	if err != nil {
		return err
	}
	if len(deleted) == 0 {
		return backend.ErrNotFound
	}
	return nil
}

type goalRow struct {
	UserID      string          `json:"user_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	GoalType    models.GoalType `json:"goal_type"`
	TargetDate  *string         `json:"target_date"`
}

// CreateGoal inserts a goal row; the database assigns id and timestamps
func (t *Tables) CreateGoal(ctx context.Context, goal *models.Goal) (*models.Goal, error) {
	row := goalRow{
		UserID:      goal.UserID,
		Title:       goal.Title,
		Description: goal.Description,
		GoalType:    goal.GoalType,
		TargetDate:  nullable(goal.TargetDate),
	}
	var created models.Goal
	if err := t.insertOne(ctx, tableGoals, row, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// ListGoals lists an owner's goals, newest first
func (t *Tables) ListGoals(ctx context.Context, ownerID string) ([]models.Goal, error) {
	goals := []models.Goal{}
	query := url.Values{
		"select":  {"*"},
		"user_id": {eq(ownerID)},
		"order":   {"created_at.desc"},
	}
	if err := t.rest(ctx, http.MethodGet, tableGoals, query, nil, nil, &goals); err != nil {
		return nil, err
	}
	return goals, nil
}

// GetGoal fetches one of the owner's goals
func (t *Tables) GetGoal(ctx context.Context, ownerID, goalID string) (*models.Goal, error) {
	var g models.Goal
	query := url.Values{"id": {eq(goalID)}, "user_id": {eq(ownerID)}}
	if err := t.selectOne(ctx, tableGoals, query, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

var (
	_ backend.ProfileStore = (*Tables)(nil)
	_ backend.ChildStore   = (*Tables)(nil)
	_ backend.GoalStore    = (*Tables)(nil)
)
