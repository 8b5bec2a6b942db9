package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"aitutor/internal/backend"
	"aitutor/internal/models"
)

// fakeBackend is an in-memory backend.Stores implementation that records calls
type fakeBackend struct {
	mu       sync.Mutex
	calls    []string
	tokens   []string
	profiles map[string]models.Profile
	children []models.Child
	goals    []models.Goal
	seq      int
	err      error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{profiles: make(map[string]models.Profile)}
}

func (f *fakeBackend) stores() backend.Stores {
	return backend.Stores{Profiles: f, Children: f, Goals: f}
}

func (f *fakeBackend) record(ctx context.Context, call string) error {
	f.calls = append(f.calls, call)
	f.tokens = append(f.tokens, backend.AccessToken(ctx))
	return f.err
}

func (f *fakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakeBackend) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(ctx, "GetProfile"); err != nil {
		return nil, err
	}
	p, ok := f.profiles[id]
	if !ok {
		return nil, backend.ErrNotFound
	}
	return &p, nil
}

func (f *fakeBackend) CreateProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(ctx, "CreateProfile"); err != nil {
		return nil, err
	}
	p := *profile
	f.profiles[p.ID] = p
	return &p, nil
}

func (f *fakeBackend) UpdateProfile(ctx context.Context, profile *models.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(ctx, "UpdateProfile"); err != nil {
		return err
	}
	if _, ok := f.profiles[profile.ID]; !ok {
		return backend.ErrNotFound
	}
	f.profiles[profile.ID] = *profile
	return nil
}

func (f *fakeBackend) ListChildren(ctx context.Context, parentID string) ([]models.Child, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(ctx, "ListChildren"); err != nil {
		return nil, err
	}
	out := []models.Child{}
	for _, c := range f.children {
		if c.ParentID == parentID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeBackend) CreateChild(ctx context.Context, child *models.Child) (*models.Child, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(ctx, "CreateChild"); err != nil {
		return nil, err
	}
	c := *child
	c.ID = f.nextID("child")
	f.children = append(f.children, c)
	return &c, nil
}

func (f *fakeBackend) DeleteChild(ctx context.Context, parentID, childID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(ctx, "DeleteChild"); err != nil {
		return err
	}
	for i, c := range f.children {
		if c.ID == childID && c.ParentID == parentID {
			f.children = append(f.children[:i], f.children[i+1:]...)
			return nil
		}
	}
	return backend.ErrNotFound
}

func (f *fakeBackend) CreateGoal(ctx context.Context, goal *models.Goal) (*models.Goal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(ctx, "CreateGoal"); err != nil {
		return nil, err
	}
	g := *goal
	g.ID = f.nextID("goal")
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Date(2024, 1, 1, 0, 0, f.seq, 0, time.UTC)
	}
	f.goals = append(f.goals, g)
	return &g, nil
}

func (f *fakeBackend) ListGoals(ctx context.Context, ownerID string) ([]models.Goal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(ctx, "ListGoals"); err != nil {
		return nil, err
	}
	out := []models.Goal{}
	for _, g := range f.goals {
		if g.UserID == ownerID {
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeBackend) GetGoal(ctx context.Context, ownerID, goalID string) (*models.Goal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(ctx, "GetGoal"); err != nil {
		return nil, err
	}
	for _, g := range f.goals {
		if g.ID == goalID && g.UserID == ownerID {
			return &g, nil
		}
	}
	return nil, backend.ErrNotFound
}

// fakeStructurer returns canned responses and records its inputs
type fakeStructurer struct {
	mu         sync.Mutex
	inputs     []string
	roles      []models.Role
	roadmapFor []string
	roadmapErr error
}

func (s *fakeStructurer) StructureGoals(ctx context.Context, input string, role models.Role) *models.GoalStructureResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs = append(s.inputs, input)
	s.roles = append(s.roles, role)
	return &models.GoalStructureResponse{
		StructuredGoals: []models.GoalSuggestion{{Title: input, GoalType: models.GoalShortTerm, Subject: "Math"}},
		Message:         "ok",
	}
}

func (s *fakeStructurer) GenerateRoadmap(ctx context.Context, goal *models.Goal) (*models.RoadmapResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roadmapFor = append(s.roadmapFor, goal.ID)
	if s.roadmapErr != nil {
		return nil, s.roadmapErr
	}
	return &models.RoadmapResponse{
		Roadmap: []models.RoadmapStep{{Step: 1, Title: "Start: " + goal.Title, Status: "pending"}},
	}, nil
}

// failingStore is a goalstore.Store whose every call fails
type failingStore struct{}

var errCacheDown = errors.New("cache down")

func (failingStore) Load(ctx context.Context, visitorID string) ([]models.Goal, error) {
	return nil, errCacheDown
}
func (failingStore) Save(ctx context.Context, visitorID string, goals []models.Goal) error {
	return errCacheDown
}
func (failingStore) Close() error { return nil }

func parentSession() *models.Session {
	return &models.Session{
		AccessToken: "parent-token",
		User:        models.User{ID: "parent-1", Email: "parent@test.com", Name: "Pat", Role: models.RoleParent},
	}
}

func childSession() *models.Session {
	return &models.Session{
		AccessToken: "child-token",
		User:        models.User{ID: "child-1", Email: "kid@test.com", Role: models.RoleChild},
	}
}
