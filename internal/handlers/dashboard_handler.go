package handlers

import (
	"html/template"
	"net/http"

	"aitutor/internal/logger"
	"aitutor/internal/models"
	"aitutor/internal/service"
)

// DashboardHandler renders the role dashboards
type DashboardHandler struct {
	log              *logger.Logger
	dashboardService *service.DashboardService
	middleware       *Middleware
	templates        *template.Template
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(log *logger.Logger, dashboardService *service.DashboardService, middleware *Middleware, templates *template.Template) *DashboardHandler {
	return &DashboardHandler{
		log:              log.With("handler", "DashboardHandler"),
		dashboardService: dashboardService,
		middleware:       middleware,
		templates:        templates,
	}
}

func (h *DashboardHandler) layout(r *http.Request, title string) Layout {
	l := Layout{Title: title, CSRFToken: h.middleware.GetCSRFToken(r)}
	if s := principal(r).Session; s != nil {
		l.User = &s.User
	}
	return l
}

// Parent renders the parent dashboard
func (h *DashboardHandler) Parent(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.dashboardService.Parent(r.Context(), principal(r))
	if err != nil {
		respondWithError(h.log, w, http.StatusInternalServerError, ErrInternalServerError, "Error loading parent dashboard", err)
		return
	}

	render(h.log, h.templates, w, http.StatusOK, "parent_dashboard.tmpl", ParentDashboardViewData{
		Layout:    h.layout(r, "Dashboard - AI Tutor"),
		Dashboard: dashboard,
		GoalTypes: models.GoalTypes(),
	})
}

// Child renders the learner dashboard
func (h *DashboardHandler) Child(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.dashboardService.Child(r.Context(), principal(r))
	if err != nil {
		respondWithError(h.log, w, http.StatusInternalServerError, ErrInternalServerError, "Error loading child dashboard", err)
		return
	}

	render(h.log, h.templates, w, http.StatusOK, "child_dashboard.tmpl", ChildDashboardViewData{
		Layout:    h.layout(r, "My dashboard - AI Tutor"),
		Dashboard: dashboard,
	})
}
