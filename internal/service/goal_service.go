package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"aitutor/internal/backend"
	"aitutor/internal/goalstore"
	"aitutor/internal/logger"
	"aitutor/internal/models"
	"aitutor/internal/validation"
)

var ErrGoalNotFound = errors.New("goal not found")

// Principal identifies who is acting on goals. A request without a session
// acts as the anonymous visitor behind VisitorID.
type Principal struct {
	Session   *models.Session
	VisitorID string
}

// Authenticated reports whether goals go to the persistent backend
func (p Principal) Authenticated() bool {
	return p.Session != nil && p.Session.User.ID != ""
}

// GoalStructurer turns free text into goal suggestions and goals into roadmaps
type GoalStructurer interface {
	StructureGoals(ctx context.Context, input string, role models.Role) *models.GoalStructureResponse
	GenerateRoadmap(ctx context.Context, goal *models.Goal) (*models.RoadmapResponse, error)
}

// GoalService stores goals in the backend for signed-in users and in the
// ephemeral cache for anonymous visitors
type GoalService struct {
	log        *logger.Logger
	goals      backend.GoalStore
	temp       goalstore.Store
	structurer GoalStructurer
	validator  *validation.Validator

	// serializes read-modify-write of the ephemeral cache
	tempMu sync.Mutex
	now    func() time.Time
}

// NewGoalService creates a new goal service
func NewGoalService(log *logger.Logger, goals backend.GoalStore, temp goalstore.Store, structurer GoalStructurer, validator *validation.Validator) *GoalService {
	return &GoalService{
		log:        log.With("service", "GoalService"),
		goals:      goals,
		temp:       temp,
		structurer: structurer,
		validator:  validator,
		now:        time.Now,
	}
}

// CreateGoal validates and stores a goal for p
func (s *GoalService) CreateGoal(ctx context.Context, p Principal, req models.CreateGoalRequest) (*models.Goal, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	if !p.Authenticated() {
		return s.createTempGoal(ctx, p.VisitorID, req), nil
	}

	goal, err := s.goals.CreateGoal(withSession(ctx, p.Session), &models.Goal{
		UserID:      p.Session.User.ID,
		Title:       req.Title,
		Description: req.Description,
		GoalType:    req.GoalType,
		TargetDate:  req.TargetDate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}
	return goal, nil
}

func (s *GoalService) createTempGoal(ctx context.Context, visitorID string, req models.CreateGoalRequest) *models.Goal {
	s.tempMu.Lock()
	defer s.tempMu.Unlock()

	existing, err := s.temp.Load(ctx, visitorID)
	if err != nil {
		s.log.Warn("Failed to read temp goals", "visitor", visitorID, "error", err)
		existing = nil
	}

	now := s.now().UTC()
	goal := models.Goal{
		ID:          tempGoalID(now, existing),
		UserID:      models.AnonymousOwner,
		Title:       req.Title,
		Description: req.Description,
		GoalType:    req.GoalType,
		TargetDate:  req.TargetDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	goals := append([]models.Goal{goal}, existing...)
	if err := s.temp.Save(ctx, visitorID, goals); err != nil {
		s.log.Warn("Failed to cache temp goal", "visitor", visitorID, "error", err)
	}
	return &goal
}

// tempGoalID returns temp_<unix millis>, stepping forward past ids already taken
func tempGoalID(now time.Time, existing []models.Goal) string {
	taken := make(map[string]bool, len(existing))
	for _, g := range existing {
		taken[g.ID] = true
	}
	millis := now.UnixMilli()
	for {
		id := models.TempGoalPrefix + strconv.FormatInt(millis, 10)
		if !taken[id] {
			return id
		}
		millis++
	}
}

// ListGoals returns the signed-in user's goals newest first. Anonymous
// visitors get an empty list; their goals are exposed by TempGoals.
func (s *GoalService) ListGoals(ctx context.Context, p Principal) ([]models.Goal, error) {
	if !p.Authenticated() {
		return []models.Goal{}, nil
	}
	goals, err := s.goals.ListGoals(withSession(ctx, p.Session), p.Session.User.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	return goals, nil
}

// TempGoals returns the anonymous visitor's cached goals. Cache failures read
// as an empty list.
func (s *GoalService) TempGoals(ctx context.Context, visitorID string) []models.Goal {
	if visitorID == "" {
		return []models.Goal{}
	}
	goals, err := s.temp.Load(ctx, visitorID)
	if err != nil {
		s.log.Warn("Failed to read temp goals", "visitor", visitorID, "error", err)
		return []models.Goal{}
	}
	return goals
}

// StructureGoals asks the structuring service for suggestions. It always
// returns a usable response.
func (s *GoalService) StructureGoals(ctx context.Context, p Principal, input string) *models.GoalStructureResponse {
	role := models.RoleParent
	if p.Authenticated() {
		role = p.Session.Role()
	}
	return s.structurer.StructureGoals(ctx, strings.TrimSpace(input), role)
}

// GenerateRoadmap builds a study roadmap for one of p's goals
func (s *GoalService) GenerateRoadmap(ctx context.Context, p Principal, goalID string) (*models.RoadmapResponse, error) {
	goal, err := s.findGoal(ctx, p, goalID)
	if err != nil {
		return nil, err
	}
	return s.structurer.GenerateRoadmap(ctx, goal)
}

func (s *GoalService) findGoal(ctx context.Context, p Principal, goalID string) (*models.Goal, error) {
	if strings.HasPrefix(goalID, models.TempGoalPrefix) {
		for _, g := range s.TempGoals(ctx, p.VisitorID) {
			if g.ID == goalID {
				return &g, nil
			}
		}
		return nil, ErrGoalNotFound
	}
	if !p.Authenticated() {
		return nil, ErrGoalNotFound
	}

	goal, err := s.goals.GetGoal(withSession(ctx, p.Session), p.Session.User.ID, goalID)
	if errors.Is(err, backend.ErrNotFound) {
		return nil, ErrGoalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load goal: %w", err)
	}
	return goal, nil
}
