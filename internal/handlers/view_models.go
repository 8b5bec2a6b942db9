package handlers

import (
	"aitutor/internal/models"
	"aitutor/internal/service"
)

// Layout is shared by every page. Error renders as a dismissable banner.
type Layout struct {
	Title     string
	User      *models.User
	CSRFToken string
	Error     string
	Success   string
}

type LoginViewData struct {
	Layout
	Email        string
	OAuthEnabled bool
}

type SignupViewData struct {
	Layout
	Email        string
	UserType     string
	Roles        []models.Role
	OAuthEnabled bool
}

type ProfileViewData struct {
	Layout
	Profile       *models.Profile
	IsChild       bool
	Children      []models.Child
	GradeOptions  []string
	ConfirmDelete *models.Child
}

type GoalsViewData struct {
	Layout
	Authenticated bool
	Goals         []models.Goal
	TempGoals     []models.Goal
	GoalTypes     []models.GoalType
	Suggestions   *models.GoalStructureResponse
	Roadmap       *models.RoadmapResponse
	RoadmapGoalID string
}

type ParentDashboardViewData struct {
	Layout
	Dashboard *service.ParentDashboard
	GoalTypes []models.GoalType
}

type ChildDashboardViewData struct {
	Layout
	Dashboard *service.ChildDashboard
}
