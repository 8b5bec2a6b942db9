package handlers

import (
	"errors"
	"html/template"
	"net/http"

	"aitutor/internal/logger"
	"aitutor/internal/models"
	"aitutor/internal/service"
)

// GoalHandler handles goal pages for signed-in users and anonymous visitors
type GoalHandler struct {
	log         *logger.Logger
	goalService *service.GoalService
	middleware  *Middleware
	templates   *template.Template
}

// NewGoalHandler creates a new goal handler
func NewGoalHandler(log *logger.Logger, goalService *service.GoalService, middleware *Middleware, templates *template.Template) *GoalHandler {
	return &GoalHandler{
		log:         log.With("handler", "GoalHandler"),
		goalService: goalService,
		middleware:  middleware,
		templates:   templates,
	}
}

func (h *GoalHandler) renderGoals(w http.ResponseWriter, r *http.Request, status int, data GoalsViewData) {
	p := principal(r)
	data.Title = "Goals - AI Tutor"
	data.CSRFToken = h.middleware.GetCSRFToken(r)
	data.GoalTypes = models.GoalTypes()
	data.Authenticated = p.Authenticated()
	if p.Session != nil {
		data.User = &p.Session.User
	}

	goals, err := h.goalService.ListGoals(r.Context(), p)
	if err != nil {
		h.log.Error("Error listing goals", "error", err.Error())
		if data.Error == "" {
			data.Error = pageErrorMessage(err)
		}
		if status < http.StatusBadRequest {
			status = http.StatusInternalServerError
		}
	}
	data.Goals = goals
	if !p.Authenticated() {
		data.TempGoals = h.goalService.TempGoals(r.Context(), p.VisitorID)
	}

	render(h.log, h.templates, w, status, "goals.tmpl", data)
}

// ShowGoals renders the goal page
func (h *GoalHandler) ShowGoals(w http.ResponseWriter, r *http.Request) {
	h.renderGoals(w, r, http.StatusOK, GoalsViewData{})
}

// CreateGoal handles the goal form
func (h *GoalHandler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWithError(h.log, w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	_, err := h.goalService.CreateGoal(r.Context(), principal(r), models.CreateGoalRequest{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		GoalType:    models.GoalType(r.FormValue("goal_type")),
		TargetDate:  r.FormValue("target_date"),
	})
	if err != nil {
		data := GoalsViewData{}
		data.Error = pageErrorMessage(err)
		h.renderGoals(w, r, http.StatusUnprocessableEntity, data)
		return
	}
	http.Redirect(w, r, "/goals", http.StatusSeeOther)
}

// StructureGoals shows suggestions for the free-text learning wish
func (h *GoalHandler) StructureGoals(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWithError(h.log, w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	data := GoalsViewData{}
	input := r.FormValue("user_input")
	if input == "" {
		data.Error = "Please describe what you want to learn."
		h.renderGoals(w, r, http.StatusUnprocessableEntity, data)
		return
	}
	data.Suggestions = h.goalService.StructureGoals(r.Context(), principal(r), input)
	h.renderGoals(w, r, http.StatusOK, data)
}

// GenerateRoadmap shows a study roadmap for one goal
func (h *GoalHandler) GenerateRoadmap(w http.ResponseWriter, r *http.Request) {
	goalID := r.PathValue("id")
	data := GoalsViewData{RoadmapGoalID: goalID}

	roadmap, err := h.goalService.GenerateRoadmap(r.Context(), principal(r), goalID)
	if errors.Is(err, service.ErrGoalNotFound) {
		data.Error = "Goal not found."
		h.renderGoals(w, r, http.StatusNotFound, data)
		return
	}
	if err != nil {
		h.log.Warn("Roadmap generation failed", "goal_id", goalID, "error", err.Error())
		data.Error = "Could not generate a roadmap right now. Please try again later."
		h.renderGoals(w, r, http.StatusBadGateway, data)
		return
	}
	data.Roadmap = roadmap
	h.renderGoals(w, r, http.StatusOK, data)
}
