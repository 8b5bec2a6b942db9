package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"aitutor/internal/auth"
	"aitutor/internal/pages"
	"aitutor/internal/security"
)

const (
	oauthStateCookie = "oauth_state"
	oauthCookieTTL   = 10 * time.Minute
	oauthTimeout     = 10 * time.Second

	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// OAuthProvider defines provider configuration and metadata
type OAuthProvider struct {
	Name        string
	Config      *oauth2.Config
	UserInfoURL string
}

// NewGoogleProvider returns the Google sign-in provider, or nil without
// client credentials
func NewGoogleProvider(clientID, clientSecret string) *OAuthProvider {
	if clientID == "" || clientSecret == "" {
		return nil
	}
	return &OAuthProvider{
		Name: "google",
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		UserInfoURL: googleUserInfoURL,
	}
}

func (p *OAuthProvider) configured() bool {
	return p != nil && p.Config != nil && p.Config.ClientID != "" && p.Config.ClientSecret != ""
}

// StartOAuth initiates the Google OAuth flow
func (h *AuthHandler) StartOAuth(w http.ResponseWriter, r *http.Request) {
	if !h.oauthEnabled(r) {
		h.renderLogin(w, r, http.StatusBadRequest, "", "Google sign-in is not available.")
		return
	}

	state := security.GenerateSessionID()
	h.setTempCookie(w, r, oauthStateCookie, state)

	config := *h.oauth.Config
	config.RedirectURL = h.oauthRedirectURL(r)
	http.Redirect(w, r, config.AuthCodeURL(state, oauth2.AccessTypeOnline), http.StatusFound)
}

// OAuthCallback handles the Google OAuth callback
func (h *AuthHandler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	if !h.oauthEnabled(r) {
		h.renderLogin(w, r, http.StatusBadRequest, "", "Google sign-in is not available.")
		return
	}

	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if code == "" {
		h.renderLogin(w, r, http.StatusBadRequest, "", "Missing authorization code")
		return
	}
	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != state {
		h.renderLogin(w, r, http.StatusBadRequest, "", "Invalid OAuth state")
		return
	}
	http.SetCookie(w, security.CreateDeleteCookie(r, oauthStateCookie))

	ctx, cancel := context.WithTimeout(r.Context(), oauthTimeout)
	defer cancel()

	config := *h.oauth.Config
	config.RedirectURL = h.oauthRedirectURL(r)
	token, err := config.Exchange(ctx, code)
	if err != nil {
		h.log.Warn("OAuth code exchange failed", "error", err.Error())
		h.renderLogin(w, r, http.StatusBadRequest, "", "Failed to exchange OAuth code")
		return
	}

	identity, err := h.fetchGoogleUser(ctx, token)
	if err != nil {
		h.renderLogin(w, r, http.StatusBadRequest, "", err.Error())
		return
	}

	session, err := h.authService.SignInWithOAuth(r.Context(), GetMirrorFromContext(r.Context()), identity)
	if err != nil {
		h.renderLogin(w, r, http.StatusBadRequest, "", authErrorMessage(err))
		return
	}
	http.Redirect(w, r, pages.Path(pages.Dashboard(session.Role())), http.StatusSeeOther)
}

func (h *AuthHandler) fetchGoogleUser(ctx context.Context, token *oauth2.Token) (auth.OAuthIdentity, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
	resp, err := client.Get(h.oauth.UserInfoURL)
	if err != nil {
		return auth.OAuthIdentity{}, fmt.Errorf("failed to fetch Google user info")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return auth.OAuthIdentity{}, fmt.Errorf("failed to fetch Google user info")
	}

	var payload struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return auth.OAuthIdentity{}, fmt.Errorf("failed to parse Google user info")
	}
	if payload.ID == "" || payload.Email == "" {
		return auth.OAuthIdentity{}, errors.New("Google account has no email address")
	}

	return auth.OAuthIdentity{
		Provider: h.oauth.Name,
		Subject:  payload.ID,
		Email:    payload.Email,
		Name:     payload.Name,
	}, nil
}

func (h *AuthHandler) oauthRedirectURL(r *http.Request) string {
	baseURL := strings.TrimSpace(h.oauthRedirectBaseURL)
	if baseURL == "" {
		scheme := "http"
		if security.IsSecureRequest(r) {
			scheme = "https"
		}
		baseURL = fmt.Sprintf("%s://%s", scheme, r.Host)
	}
	return fmt.Sprintf("%s/auth/%s/callback", strings.TrimRight(baseURL, "/"), h.oauth.Name)
}

func (h *AuthHandler) setTempCookie(w http.ResponseWriter, r *http.Request, name, value string) {
	cookie := security.CreateSessionCookie(r, name, value, time.Now().Add(oauthCookieTTL))
	cookie.MaxAge = int(oauthCookieTTL.Seconds())
	http.SetCookie(w, cookie)
}
