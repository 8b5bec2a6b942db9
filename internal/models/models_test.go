package models

import (
	"testing"
	"time"
)

func TestSessionIsExpired(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{
			name:      "future expiration",
			expiresAt: time.Now().Add(1 * time.Hour),
			want:      false,
		},
		{
			name:      "just expired",
			expiresAt: time.Now().Add(-1 * time.Second),
			want:      true,
		},
		{
			name:      "no expiry recorded",
			expiresAt: time.Time{},
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := Session{AccessToken: "tok", ExpiresAt: tt.expiresAt}
			if got := session.IsExpired(); got != tt.want {
				t.Errorf("Session.IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		input string
		want  Role
	}{
		{"parent", RoleParent},
		{"child", RoleChild},
		{"CHILD ", RoleChild},
		{"admin", RoleAdmin},
		{"", RoleParent},
		{"coach", RoleParent},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseRole(tt.input); got != tt.want {
				t.Errorf("ParseRole(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestGoalIsTemporary(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"temp_1700000000000", true},
		{"temp_", true},
		{"8a1f3c52-6d4e-4a55-9b7e-0c2d1e3f4a5b", false},
		{"tem", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			g := Goal{ID: tt.id}
			if got := g.IsTemporary(); got != tt.want {
				t.Errorf("Goal{ID: %q}.IsTemporary() = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestChildProgress(t *testing.T) {
	tests := []struct {
		name     string
		progress ChildProgress
		want     int
	}{
		{"no tasks", ChildProgress{}, 0},
		{"partial", ChildProgress{TotalTasks: 15, CompletedTasks: 12}, 80},
		{"one third", ChildProgress{TotalTasks: 3, CompletedTasks: 1}, 33},
		{"rounds to nearest", ChildProgress{TotalTasks: 3, CompletedTasks: 2}, 67},
		{"complete", ChildProgress{TotalTasks: 4, CompletedTasks: 4}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.progress.Progress(); got != tt.want {
				t.Errorf("Progress() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestProfileInitial(t *testing.T) {
	p := Profile{FullName: "Jisoo Kim"}
	if got := p.Initial(); got != "J" {
		t.Errorf("Initial() = %q, want %q", got, "J")
	}
	empty := Profile{}
	if got := empty.Initial(); got != "?" {
		t.Errorf("Initial() on empty name = %q, want %q", got, "?")
	}
}

func TestIsGradeOption(t *testing.T) {
	if !IsGradeOption("Middle 2") {
		t.Error("expected Middle 2 to be a grade option")
	}
	if IsGradeOption("Middle 4") {
		t.Error("expected Middle 4 to be rejected")
	}
}
