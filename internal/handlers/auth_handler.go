package handlers

import (
	"errors"
	"html/template"
	"net/http"
	"strings"

	"aitutor/internal/auth"
	"aitutor/internal/logger"
	"aitutor/internal/models"
	"aitutor/internal/pages"
	"aitutor/internal/service"
	"aitutor/internal/validation"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	log         *logger.Logger
	authService *service.AuthService
	middleware  *Middleware
	templates   *template.Template
	oauth       *OAuthProvider
	// oauthRedirectBaseURL overrides the callback host when set
	oauthRedirectBaseURL string
}

// NewAuthHandler creates a new auth handler. oauth may be nil when Google
// sign-in is not configured.
func NewAuthHandler(log *logger.Logger, authService *service.AuthService, middleware *Middleware, templates *template.Template, oauth *OAuthProvider, oauthRedirectBaseURL string) *AuthHandler {
	return &AuthHandler{
		log:                  log.With("handler", "AuthHandler"),
		authService:          authService,
		middleware:           middleware,
		templates:            templates,
		oauth:                oauth,
		oauthRedirectBaseURL: oauthRedirectBaseURL,
	}
}

func (h *AuthHandler) oauthEnabled(r *http.Request) bool {
	mirror := GetMirrorFromContext(r.Context())
	return h.oauth.configured() && mirror != nil && mirror.SupportsOAuth()
}

func (h *AuthHandler) layout(r *http.Request, title string) Layout {
	return Layout{Title: title, CSRFToken: h.middleware.GetCSRFToken(r)}
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, status int, email, errMsg string) {
	data := LoginViewData{
		Layout:       h.layout(r, "Log in - AI Tutor"),
		Email:        email,
		OAuthEnabled: h.oauthEnabled(r),
	}
	data.Error = errMsg
	render(h.log, h.templates, w, status, "login.tmpl", data)
}

func (h *AuthHandler) renderSignup(w http.ResponseWriter, r *http.Request, status int, form validation.SignupForm, errMsg string) {
	data := SignupViewData{
		Layout:       h.layout(r, "Sign up - AI Tutor"),
		Email:        form.Email,
		UserType:     string(form.Role()),
		Roles:        models.SignupRoles(),
		OAuthEnabled: h.oauthEnabled(r),
	}
	data.Error = errMsg
	render(h.log, h.templates, w, status, "signup.tmpl", data)
}

// Home sends the client to whichever page its auth state selects
func (h *AuthHandler) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.Error(w, ErrPageNotFound, http.StatusNotFound)
		return
	}
	state := pages.State{}
	if mirror := GetMirrorFromContext(r.Context()); mirror != nil {
		state.Initialized = mirror.Initialized()
		state.Session = mirror.Session()
	}
	http.Redirect(w, r, pages.Path(pages.Select(state)), http.StatusSeeOther)
}

// ShowLogin renders the login page
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	h.renderLogin(w, r, http.StatusOK, "", "")
}

// Login handles login form submission
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWithError(h.log, w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	form := validation.LoginForm{
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
	}
	session, err := h.authService.SignIn(r.Context(), GetMirrorFromContext(r.Context()), form)
	if err != nil {
		h.renderLogin(w, r, http.StatusUnprocessableEntity, form.Email, authErrorMessage(err))
		return
	}

	http.Redirect(w, r, pages.Path(pages.Dashboard(session.Role())), http.StatusSeeOther)
}

// ShowSignup renders the signup page
func (h *AuthHandler) ShowSignup(w http.ResponseWriter, r *http.Request) {
	h.renderSignup(w, r, http.StatusOK, validation.SignupForm{UserType: r.URL.Query().Get("user_type")}, "")
}

// Signup handles signup form submission
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWithError(h.log, w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	form := validation.SignupForm{
		Email:           strings.TrimSpace(r.FormValue("email")),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirm_password"),
		UserType:        r.FormValue("user_type"),
	}
	session, err := h.authService.SignUp(r.Context(), GetMirrorFromContext(r.Context()), form)
	if err != nil {
		h.renderSignup(w, r, http.StatusUnprocessableEntity, form, authErrorMessage(err))
		return
	}

	if session.AccessToken == "" {
		data := LoginViewData{Layout: h.layout(r, "Log in - AI Tutor"), Email: form.Email, OAuthEnabled: h.oauthEnabled(r)}
		data.Success = "Account created. Check your email to confirm it, then log in."
		render(h.log, h.templates, w, http.StatusOK, "login.tmpl", data)
		return
	}
	http.Redirect(w, r, pages.Path(pages.Dashboard(session.Role())), http.StatusSeeOther)
}

// Logout handles logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.SignOut(r.Context(), GetMirrorFromContext(r.Context())); err != nil {
		h.log.Warn("Sign out failed", "error", err.Error())
	}
	http.Redirect(w, r, pages.Path(pages.Login), http.StatusSeeOther)
}

// authErrorMessage returns display text for a sign-in or sign-up failure
func authErrorMessage(err error) string {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return verr.Message
	}
	return auth.Message(err, "")
}
