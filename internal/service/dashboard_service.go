package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"aitutor/internal/logger"
	"aitutor/internal/models"
)

// ChildDashboard is the data behind the learner dashboard
type ChildDashboard struct {
	Profile   *models.Profile
	Pending   []models.Task
	Completed []models.Task
	Progress  int
	Goals     []models.Goal
}

// ParentDashboard is the data behind the parent dashboard
type ParentDashboard struct {
	Profile       *models.Profile
	Children      []models.Child
	ChildProgress models.ChildProgress
	Goals         []models.Goal
}

// DashboardService assembles dashboard pages
type DashboardService struct {
	log      *logger.Logger
	profiles *ProfileService
	goals    *GoalService
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(log *logger.Logger, profiles *ProfileService, goals *GoalService) *DashboardService {
	return &DashboardService{
		log:      log.With("service", "DashboardService"),
		profiles: profiles,
		goals:    goals,
	}
}

// sampleTasks are placeholder study tasks until task tracking exists
func sampleTasks() []models.Task {
	return []models.Task{
		{ID: "1", Title: "Math problems", Description: "Textbook pages 45-47, problems 1-10", DueDate: "2024-01-15"},
		{ID: "2", Title: "English vocabulary", Description: "Memorize the 20 words of Unit 3", Completed: true, DueDate: "2024-01-15"},
		{ID: "3", Title: "Science lab report", Description: "Write up the water state change experiment", DueDate: "2024-01-16"},
	}
}

func sampleChildProgress(name string) models.ChildProgress {
	return models.ChildProgress{
		Name:           name,
		TotalTasks:     15,
		CompletedTasks: 12,
		RecentActivity: []models.Activity{
			{Task: "Math problems", Completed: true, When: "2 hours ago"},
			{Task: "English vocabulary", Completed: true, When: "1 hour ago"},
			{Task: "Science lab report", When: "Today"},
		},
	}
}

// SplitTasks separates pending from completed tasks, keeping their order
func SplitTasks(tasks []models.Task) (pending, completed []models.Task) {
	for _, t := range tasks {
		if t.Completed {
			completed = append(completed, t)
		} else {
			pending = append(pending, t)
		}
	}
	return pending, completed
}

// Child loads the learner dashboard. Profile and goals load concurrently.
func (s *DashboardService) Child(ctx context.Context, p Principal) (*ChildDashboard, error) {
	d := &ChildDashboard{}
	tasks := sampleTasks()
	d.Pending, d.Completed = SplitTasks(tasks)
	d.Progress = models.Percent(len(d.Completed), len(tasks))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		profile, err := s.profiles.LoadProfile(gctx, p.Session)
		if err != nil {
			return err
		}
		d.Profile = profile
		return nil
	})
	g.Go(func() error {
		goals, err := s.goals.ListGoals(gctx, p)
		if err != nil {
			return err
		}
		d.Goals = goals
		return nil
	})
	if err := g.Wait(); err != nil {
		s.log.Warn("Child dashboard load failed", "error", err)
		return nil, err
	}
	return d, nil
}

// Parent loads the parent dashboard. Profile, children and goals load
// concurrently.
func (s *DashboardService) Parent(ctx context.Context, p Principal) (*ParentDashboard, error) {
	d := &ParentDashboard{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		profile, err := s.profiles.LoadProfile(gctx, p.Session)
		if err != nil {
			return err
		}
		d.Profile = profile
		return nil
	})
	g.Go(func() error {
		children, err := s.profiles.ListChildren(gctx, p.Session)
		if err != nil {
			return err
		}
		d.Children = children
		return nil
	})
	g.Go(func() error {
		goals, err := s.goals.ListGoals(gctx, p)
		if err != nil {
			return err
		}
		d.Goals = goals
		return nil
	})
	if err := g.Wait(); err != nil {
		s.log.Warn("Parent dashboard load failed", "error", err)
		return nil, err
	}

	name := "Your learner"
	if len(d.Children) > 0 {
		name = d.Children[0].FullName
	}
	d.ChildProgress = sampleChildProgress(name)
	return d, nil
}
