package models

import "time"

// GoalType is the planning horizon of a goal
type GoalType string

const (
	GoalShortTerm  GoalType = "short_term"
	GoalMediumTerm GoalType = "medium_term"
	GoalLongTerm   GoalType = "long_term"
)

// GoalTypes lists the goal types in form order
func GoalTypes() []GoalType {
	return []GoalType{GoalShortTerm, GoalMediumTerm, GoalLongTerm}
}

// Valid reports whether t is a known goal type
func (t GoalType) Valid() bool {
	return t == GoalShortTerm || t == GoalMediumTerm || t == GoalLongTerm
}

// Label returns the display label for a goal type
func (t GoalType) Label() string {
	switch t {
	case GoalShortTerm:
		return "Short term"
	case GoalMediumTerm:
		return "Medium term"
	case GoalLongTerm:
		return "Long term"
	default:
		return string(t)
	}
}

const (
	// TempGoalPrefix marks goals that only exist in the anonymous cache
	TempGoalPrefix = "temp_"
	// AnonymousOwner is the owner id of anonymous goals
	AnonymousOwner = "anonymous"
)

// Goal is a learning goal owned by an identity
type Goal struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	GoalType    GoalType  `json:"goal_type"`
	TargetDate  string    `json:"target_date,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsTemporary reports whether the goal lives only in the anonymous cache
func (g *Goal) IsTemporary() bool {
	return len(g.ID) >= len(TempGoalPrefix) && g.ID[:len(TempGoalPrefix)] == TempGoalPrefix
}

// CreateGoalRequest is the goal form
type CreateGoalRequest struct {
	Title       string   `json:"title" validate:"required,notblank,max=200"`
	Description string   `json:"description,omitempty" validate:"max=2000"`
	GoalType    GoalType `json:"goal_type" validate:"required,oneof=short_term medium_term long_term"`
	TargetDate  string   `json:"target_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// GoalSuggestion is one goal proposed by the structuring service
type GoalSuggestion struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	GoalType    GoalType `json:"goal_type"`
	Subject     string   `json:"subject"`
}

// GoalStructureResponse is the structuring service payload
type GoalStructureResponse struct {
	StructuredGoals []GoalSuggestion `json:"structured_goals"`
	Message         string           `json:"message"`
}

// RoadmapStep is one step of a generated study roadmap
type RoadmapStep struct {
	Step        int    `json:"step"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Duration    string `json:"duration"`
	Status      string `json:"status"`
}

// RoadmapResponse is the roadmap service payload
type RoadmapResponse struct {
	Roadmap []RoadmapStep `json:"roadmap"`
	Message string        `json:"message"`
}
