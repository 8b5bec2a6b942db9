// Package pages decides which top-level page a client sees from its auth state.
package pages

import "aitutor/internal/models"

// Page is a top-level screen
type Page string

const (
	Loading         Page = "loading"
	Login           Page = "login"
	Signup          Page = "signup"
	ParentDashboard Page = "parent_dashboard"
	ChildDashboard  Page = "child_dashboard"
	Profile         Page = "profile"
)

// State is everything the page choice depends on
type State struct {
	Initialized bool
	Session     *models.Session
	Requested   Page
}

// Select picks the page to show. It is a pure function of s.
func Select(s State) Page {
	if !s.Initialized {
		return Loading
	}
	if s.Session == nil {
		if s.Requested == Signup {
			return Signup
		}
		return Login
	}
	if s.Requested == Profile {
		return Profile
	}
	return Dashboard(s.Session.Role())
}

// Dashboard returns the dashboard for a role
func Dashboard(role models.Role) Page {
	if role == models.RoleChild {
		return ChildDashboard
	}
	return ParentDashboard
}

var paths = map[Page]string{
	Loading:         "/",
	Login:           "/login",
	Signup:          "/signup",
	ParentDashboard: "/parent/dashboard",
	ChildDashboard:  "/child/dashboard",
	Profile:         "/profile",
}

// Path returns the URL path serving p
func Path(p Page) string {
	if path, ok := paths[p]; ok {
		return path
	}
	return "/"
}
