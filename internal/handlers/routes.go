package handlers

import (
	"net/http"

	"aitutor/internal/pages"
)

// Handlers bundles the page handlers served by Routes
type Handlers struct {
	Middleware *Middleware
	Auth       *AuthHandler
	Profile    *ProfileHandler
	Goals      *GoalHandler
	Dashboard  *DashboardHandler
}

// Routes builds the application router
func Routes(h Handlers) http.Handler {
	mw := h.Middleware
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("GET /", h.Auth.Home)
	mux.HandleFunc("GET /login", mw.Page(pages.Login, h.Auth.ShowLogin))
	mux.HandleFunc("POST /login", mw.RateLimit(mw.CSRFProtect(mw.Page(pages.Login, h.Auth.Login))))
	mux.HandleFunc("GET /signup", mw.Page(pages.Signup, h.Auth.ShowSignup))
	mux.HandleFunc("POST /signup", mw.RateLimit(mw.CSRFProtect(mw.Page(pages.Signup, h.Auth.Signup))))
	mux.HandleFunc("POST /logout", mw.CSRFProtect(h.Auth.Logout))
	mux.HandleFunc("GET /auth/google/start", mw.Page(pages.Login, h.Auth.StartOAuth))
	mux.HandleFunc("GET /auth/google/callback", mw.RateLimit(mw.Page(pages.Login, h.Auth.OAuthCallback)))

	// Dashboards
	mux.HandleFunc("GET /parent/dashboard", mw.Page(pages.ParentDashboard, h.Dashboard.Parent))
	mux.HandleFunc("GET /child/dashboard", mw.Page(pages.ChildDashboard, h.Dashboard.Child))

	// Profile and children
	mux.HandleFunc("GET /profile", mw.Page(pages.Profile, h.Profile.ShowProfile))
	mux.HandleFunc("POST /profile", mw.CSRFProtect(mw.Page(pages.Profile, h.Profile.UpdateProfile)))
	mux.HandleFunc("POST /profile/learning", mw.CSRFProtect(mw.Page(pages.Profile, h.Profile.UpdateLearningInfo)))
	mux.HandleFunc("POST /profile/children", mw.CSRFProtect(mw.Page(pages.Profile, h.Profile.AddChild)))
	mux.HandleFunc("GET /profile/children/{id}/delete", mw.Page(pages.Profile, h.Profile.ConfirmDeleteChild))
	mux.HandleFunc("POST /profile/children/{id}/delete", mw.CSRFProtect(mw.Page(pages.Profile, h.Profile.DeleteChild)))

	// Goals are open to anonymous visitors
	mux.HandleFunc("GET /goals", h.Goals.ShowGoals)
	mux.HandleFunc("POST /goals", mw.CSRFProtect(h.Goals.CreateGoal))
	mux.HandleFunc("POST /goals/structure", mw.CSRFProtect(h.Goals.StructureGoals))
	mux.HandleFunc("POST /goals/{id}/roadmap", mw.CSRFProtect(h.Goals.GenerateRoadmap))

	return mw.Logging(mw.WithAuth(mux))
}
