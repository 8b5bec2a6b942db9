package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"aitutor/internal/auth"
	"aitutor/internal/logger"
	"aitutor/internal/pages"
	"aitutor/internal/security"
	"aitutor/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	MirrorContextKey  ContextKey = "auth_mirror"
	VisitorContextKey ContextKey = "visitor"
)

const visitorCookieTTL = 365 * 24 * time.Hour

// Middleware holds dependencies for middleware functions
type Middleware struct {
	log       *logger.Logger
	provider  auth.Provider
	csrf      *security.CSRFGenerator
	limiter   *security.RateLimiter
	listeners []auth.Listener
}

// NewMiddleware creates a new middleware instance. Every per-request auth
// mirror gets listeners subscribed in order.
func NewMiddleware(log *logger.Logger, provider auth.Provider, csrf *security.CSRFGenerator, limiter *security.RateLimiter, listeners ...auth.Listener) *Middleware {
	return &Middleware{
		log:       log.With("component", "middleware"),
		provider:  provider,
		csrf:      csrf,
		limiter:   limiter,
		listeners: listeners,
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Logging middleware logs HTTP requests
func (m *Middleware) Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		m.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).String(),
		)
	})
}

// WithAuth builds the request's auth mirror from the session cookie and makes
// sure the client carries a visitor id. Session cookie changes follow the
// mirror's events.
func (m *Middleware) WithAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mirror := auth.NewMirror(m.provider)
		mirror.Subscribe(func(c auth.Change) {
			switch c.Event {
			case auth.EventSignedIn:
				http.SetCookie(w, security.CreateSessionCookie(r, SessionCookieName, c.Session.AccessToken, c.Session.ExpiresAt))
			case auth.EventSignedOut:
				http.SetCookie(w, security.CreateDeleteCookie(r, SessionCookieName))
			}
		})
		for _, l := range m.listeners {
			mirror.Subscribe(l)
		}

		token := ""
		if cookie, err := r.Cookie(SessionCookieName); err == nil {
			token = cookie.Value
		}
		if err := mirror.Restore(r.Context(), token); err != nil {
			m.log.Debug("Session restore failed", "error", err.Error())
			// keep the cookie through provider outages
			if errors.Is(err, auth.ErrSessionNotFound) {
				http.SetCookie(w, security.CreateDeleteCookie(r, SessionCookieName))
			}
		}

		visitor := ""
		if cookie, err := r.Cookie(VisitorCookieName); err == nil && cookie.Value != "" {
			visitor = cookie.Value
		} else {
			visitor = security.GenerateSessionID()
			http.SetCookie(w, security.CreateSessionCookie(r, VisitorCookieName, visitor, time.Now().Add(visitorCookieTTL)))
		}

		ctx := context.WithValue(r.Context(), MirrorContextKey, mirror)
		ctx = context.WithValue(ctx, VisitorContextKey, visitor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Page runs a top-level page through the page selector and redirects when
// the client should be looking at a different page
func (m *Middleware) Page(requested pages.Page, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mirror := GetMirrorFromContext(r.Context())
		state := pages.State{Requested: requested}
		if mirror != nil {
			state.Initialized = mirror.Initialized()
			state.Session = mirror.Session()
		}

		selected := pages.Select(state)
		if selected == requested {
			next(w, r)
			return
		}
		if selected == pages.Loading {
			w.Header().Set("Refresh", "1")
			http.Error(w, "Loading...", http.StatusServiceUnavailable)
			return
		}
		http.Redirect(w, r, pages.Path(selected), http.StatusSeeOther)
	}
}

// CSRFProtect rejects state-changing requests without a valid form token
func (m *Middleware) CSRFProtect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
			next(w, r)
			return
		}

		token := r.FormValue(security.CSRFFormField)
		if token == "" {
			token = r.Header.Get("X-CSRF-Token")
		}
		if !m.csrf.ValidateToken(csrfSubject(r), token) {
			m.log.Warn("CSRF validation failed", "path", r.URL.Path, "ip", security.GetClientIP(r))
			http.Error(w, ErrInvalidCSRFToken, http.StatusForbidden)
			return
		}
		next(w, r)
	}
}

// GetCSRFToken returns the form token for the request's client
func (m *Middleware) GetCSRFToken(r *http.Request) string {
	token, err := m.csrf.GenerateToken(csrfSubject(r))
	if err != nil {
		return ""
	}
	return token
}

// csrfSubject binds form tokens to the session when there is one and to the
// visitor otherwise
func csrfSubject(r *http.Request) string {
	if mirror := GetMirrorFromContext(r.Context()); mirror != nil {
		if s := mirror.Session(); s != nil {
			return s.AccessToken
		}
	}
	return GetVisitorFromContext(r.Context())
}

// RateLimit limits requests per client IP
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := security.GetClientIP(r)
		if !m.limiter.Allow(ip) {
			m.log.Warn("Rate limit exceeded", "ip", ip, "path", r.URL.Path)
			http.Error(w, ErrTooManyRequests, http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

// GetMirrorFromContext retrieves the auth mirror from the request context
func GetMirrorFromContext(ctx context.Context) *auth.Mirror {
	mirror, ok := ctx.Value(MirrorContextKey).(*auth.Mirror)
	if !ok {
		return nil
	}
	return mirror
}

// GetVisitorFromContext retrieves the visitor id from the request context
func GetVisitorFromContext(ctx context.Context) string {
	visitor, _ := ctx.Value(VisitorContextKey).(string)
	return visitor
}

// principal describes who is acting in r
func principal(r *http.Request) service.Principal {
	p := service.Principal{VisitorID: GetVisitorFromContext(r.Context())}
	if mirror := GetMirrorFromContext(r.Context()); mirror != nil {
		p.Session = mirror.Session()
	}
	return p
}
