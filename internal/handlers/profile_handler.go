package handlers

import (
	"errors"
	"html/template"
	"net/http"
	"strings"

	"aitutor/internal/logger"
	"aitutor/internal/models"
	"aitutor/internal/service"
)

// ProfileHandler handles the profile page and child management
type ProfileHandler struct {
	log            *logger.Logger
	profileService *service.ProfileService
	middleware     *Middleware
	templates      *template.Template
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(log *logger.Logger, profileService *service.ProfileService, middleware *Middleware, templates *template.Template) *ProfileHandler {
	return &ProfileHandler{
		log:            log.With("handler", "ProfileHandler"),
		profileService: profileService,
		middleware:     middleware,
		templates:      templates,
	}
}

// renderProfile shows the profile page with an optional banner. Failures
// loading the page itself are reported as the banner too.
func (h *ProfileHandler) renderProfile(w http.ResponseWriter, r *http.Request, status int, banner, success string, confirmDelete *models.Child) {
	session := principal(r).Session
	data := ProfileViewData{
		Layout: Layout{
			Title:     "Profile - AI Tutor",
			User:      &session.User,
			CSRFToken: h.middleware.GetCSRFToken(r),
			Error:     banner,
			Success:   success,
		},
		IsChild:       session.Role() == models.RoleChild,
		GradeOptions:  models.GradeOptions,
		ConfirmDelete: confirmDelete,
	}

	profile, err := h.profileService.LoadProfile(r.Context(), session)
	if err != nil {
		h.log.Error("Error loading profile", "user_id", session.User.ID, "error", err.Error())
		data.Error = pageErrorMessage(err)
		profile = &models.Profile{ID: session.User.ID, FullName: session.User.DisplayName(), UserType: session.Role()}
		status = http.StatusInternalServerError
	}
	data.Profile = profile

	if !data.IsChild {
		children, err := h.profileService.ListChildren(r.Context(), session)
		if err != nil {
			h.log.Error("Error listing children", "user_id", session.User.ID, "error", err.Error())
			if data.Error == "" {
				data.Error = pageErrorMessage(err)
			}
		}
		data.Children = children
	}

	render(h.log, h.templates, w, status, "profile.tmpl", data)
}

// ShowProfile renders the profile page
func (h *ProfileHandler) ShowProfile(w http.ResponseWriter, r *http.Request) {
	h.renderProfile(w, r, http.StatusOK, "", "", nil)
}

// UpdateProfile saves the profile form
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWithError(h.log, w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	_, err := h.profileService.UpdateProfile(r.Context(), principal(r).Session, models.ProfileUpdate{
		FullName:  strings.TrimSpace(r.FormValue("full_name")),
		BirthDate: r.FormValue("birth_date"),
	})
	if err != nil {
		h.renderProfile(w, r, http.StatusUnprocessableEntity, pageErrorMessage(err), "", nil)
		return
	}
	h.renderProfile(w, r, http.StatusOK, "", "Profile saved.", nil)
}

// UpdateLearningInfo saves a learner's grade and school
func (h *ProfileHandler) UpdateLearningInfo(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWithError(h.log, w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	_, err := h.profileService.UpdateLearningInfo(r.Context(), principal(r).Session, models.LearningInfoUpdate{
		GradeLevel: r.FormValue("grade_level"),
		SchoolName: strings.TrimSpace(r.FormValue("school_name")),
	})
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, service.ErrLearnerOnly) {
			status = http.StatusForbidden
		}
		h.renderProfile(w, r, status, pageErrorMessage(err), "", nil)
		return
	}
	h.renderProfile(w, r, http.StatusOK, "", "Learning information saved.", nil)
}

// AddChild registers a child
func (h *ProfileHandler) AddChild(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWithError(h.log, w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	child, err := h.profileService.AddChild(r.Context(), principal(r).Session, models.NewChildRequest{
		FullName:   strings.TrimSpace(r.FormValue("full_name")),
		BirthDate:  r.FormValue("birth_date"),
		GradeLevel: r.FormValue("grade_level"),
		SchoolName: strings.TrimSpace(r.FormValue("school_name")),
	})
	if err != nil {
		h.renderProfile(w, r, childErrorStatus(err), pageErrorMessage(err), "", nil)
		return
	}
	h.renderProfile(w, r, http.StatusOK, "", child.FullName+" was added.", nil)
}

// ConfirmDeleteChild asks for confirmation before a child is deleted
func (h *ProfileHandler) ConfirmDeleteChild(w http.ResponseWriter, r *http.Request) {
	child, err := h.profileService.FindChild(r.Context(), principal(r).Session, r.PathValue("id"))
	if err != nil {
		h.renderProfile(w, r, childErrorStatus(err), pageErrorMessage(err), "", nil)
		return
	}
	h.renderProfile(w, r, http.StatusOK, "", "", child)
}

// DeleteChild deletes a child once the confirmation form was submitted
func (h *ProfileHandler) DeleteChild(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWithError(h.log, w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	childID := r.PathValue("id")
	confirmed := r.FormValue("confirm") == "yes"
	err := h.profileService.DeleteChild(r.Context(), principal(r).Session, childID, confirmed)
	if errors.Is(err, service.ErrDeleteNotConfirmed) {
		h.ConfirmDeleteChild(w, r)
		return
	}
	if err != nil {
		h.renderProfile(w, r, childErrorStatus(err), pageErrorMessage(err), "", nil)
		return
	}
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

func childErrorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrParentOnly):
		return http.StatusForbidden
	case errors.Is(err, service.ErrChildNotFound):
		return http.StatusNotFound
	default:
		return http.StatusUnprocessableEntity
	}
}
