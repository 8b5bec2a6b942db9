package models

import "time"

// Profile is the per-identity record kept next to the auth account
type Profile struct {
	ID              string    `json:"id"`
	FullName        string    `json:"full_name"`
	UserType        Role      `json:"user_type"`
	BirthDate       string    `json:"birth_date,omitempty"`
	GradeLevel      string    `json:"grade_level,omitempty"`
	SchoolName      string    `json:"school_name,omitempty"`
	ParentID        string    `json:"parent_id,omitempty"`
	ProfileImageURL string    `json:"profile_image_url,omitempty"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Initial returns the first character of the full name for avatars
func (p *Profile) Initial() string {
	for _, r := range p.FullName {
		return string(r)
	}
	return "?"
}

// ProfileUpdate carries the editable profile fields
type ProfileUpdate struct {
	FullName  string `json:"full_name" validate:"required,notblank,max=100"`
	BirthDate string `json:"birth_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// LearningInfoUpdate carries a learner's grade and school
type LearningInfoUpdate struct {
	GradeLevel string `json:"grade_level" validate:"omitempty,grade"`
	SchoolName string `json:"school_name" validate:"max=100"`
}

// Child is a learner record owned by a parent identity
type Child struct {
	ID         string    `json:"id"`
	ParentID   string    `json:"parent_id"`
	FullName   string    `json:"full_name"`
	BirthDate  string    `json:"birth_date"`
	GradeLevel string    `json:"grade_level"`
	SchoolName string    `json:"school_name"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewChildRequest is the child registration form
type NewChildRequest struct {
	FullName   string `json:"full_name" validate:"required,notblank,max=100"`
	BirthDate  string `json:"birth_date" validate:"required,datetime=2006-01-02"`
	GradeLevel string `json:"grade_level" validate:"required,grade"`
	SchoolName string `json:"school_name" validate:"required,max=100"`
}

// GradeOptions lists the selectable grade levels in school order
var GradeOptions = []string{
	"Kindergarten",
	"Elementary 1", "Elementary 2", "Elementary 3", "Elementary 4", "Elementary 5", "Elementary 6",
	"Middle 1", "Middle 2", "Middle 3",
	"High 1", "High 2", "High 3",
}

// IsGradeOption reports whether g is one of GradeOptions
func IsGradeOption(g string) bool {
	for _, opt := range GradeOptions {
		if opt == g {
			return true
		}
	}
	return false
}
