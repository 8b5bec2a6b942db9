package auth

import (
	"context"
	"slices"
	"sync"

	"aitutor/internal/models"
)

// Event identifies an auth state change
type Event int

const (
	EventSignedUp Event = iota + 1
	EventSignedIn
	EventSignedOut
)

func (e Event) String() string {
	switch e {
	case EventSignedUp:
		return "SIGNED_UP"
	case EventSignedIn:
		return "SIGNED_IN"
	case EventSignedOut:
		return "SIGNED_OUT"
	default:
		return "UNKNOWN"
	}
}

// Change is delivered to subscribers. Session is nil for EventSignedOut.
type Change struct {
	Event   Event
	Session *models.Session
}

// Listener receives auth state changes
type Listener func(Change)

// Mirror holds the auth state visible to one client: the current session and
// whether the initial session check has completed. State only changes when a
// provider call succeeds.
type Mirror struct {
	provider Provider

	mu          sync.RWMutex
	session     *models.Session
	initialized bool

	listenersMu sync.Mutex
	listeners   map[int]Listener
	nextID      int
}

// NewMirror creates an uninitialized mirror over provider
func NewMirror(provider Provider) *Mirror {
	return &Mirror{
		provider:  provider,
		listeners: make(map[int]Listener),
	}
}

// Subscribe registers a listener and returns its unsubscribe function
func (m *Mirror) Subscribe(l Listener) func() {
	m.listenersMu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = l
	m.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.listenersMu.Lock()
			delete(m.listeners, id)
			m.listenersMu.Unlock()
		})
	}
}

func (m *Mirror) emit(c Change) {
	m.listenersMu.Lock()
	ids := make([]int, 0, len(m.listeners))
	for id := range m.listeners {
		ids = append(ids, id)
	}
	m.listenersMu.Unlock()

	// deliver in subscription order
	slices.Sort(ids)
	for _, id := range ids {
		m.listenersMu.Lock()
		l, ok := m.listeners[id]
		m.listenersMu.Unlock()
		if ok {
			l(c)
		}
	}
}

// Restore checks for an existing session behind accessToken. The mirror is
// initialized afterwards whatever the outcome; the returned error is only
// informational since a failed check means "logged out".
func (m *Mirror) Restore(ctx context.Context, accessToken string) error {
	defer m.markInitialized()

	if accessToken == "" {
		return nil
	}
	session, err := m.provider.GetUser(ctx, accessToken)
	if err != nil {
		return wrap(err, msgSessionFailed)
	}
	if session.AccessToken == "" {
		session.AccessToken = accessToken
	}
	m.setSession(session)
	return nil
}

// SignUp registers and, when the provider returns a usable session, signs in
func (m *Mirror) SignUp(ctx context.Context, email, password string, role models.Role) (*models.Session, error) {
	session, err := m.provider.SignUp(ctx, email, password, role)
	if err != nil {
		return nil, wrap(err, msgUnknown)
	}
	m.emit(Change{Event: EventSignedUp, Session: session})
	if session.AccessToken != "" {
		m.setSession(session)
		m.emit(Change{Event: EventSignedIn, Session: session})
	}
	return session, nil
}

// SignIn authenticates with email and password
func (m *Mirror) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	session, err := m.provider.SignIn(ctx, email, password)
	if err != nil {
		return nil, wrap(err, msgSignInFailed)
	}
	m.setSession(session)
	m.emit(Change{Event: EventSignedIn, Session: session})
	return session, nil
}

// SignInWithOAuth establishes a session from an OAuth identity when the
// provider supports it
func (m *Mirror) SignInWithOAuth(ctx context.Context, identity OAuthIdentity) (*models.Session, error) {
	op, ok := m.provider.(OAuthProvider)
	if !ok {
		return nil, wrap(ErrOAuthUnsupported, msgSignInFailed)
	}
	session, err := op.SignInWithOAuth(ctx, identity)
	if err != nil {
		return nil, wrap(err, msgSignInFailed)
	}
	m.setSession(session)
	m.emit(Change{Event: EventSignedIn, Session: session})
	return session, nil
}

// SignOut ends the current session. Signing out while logged out is a no-op.
func (m *Mirror) SignOut(ctx context.Context) error {
	current := m.Session()
	if current == nil {
		return nil
	}
	if err := m.provider.SignOut(ctx, current.AccessToken); err != nil {
		return wrap(err, msgSignOutFailed)
	}
	m.setSession(nil)
	m.emit(Change{Event: EventSignedOut})
	return nil
}

// SupportsOAuth reports whether the provider can sign in OAuth identities
func (m *Mirror) SupportsOAuth() bool {
	_, ok := m.provider.(OAuthProvider)
	return ok
}

// Session returns the current session or nil
func (m *Mirror) Session() *models.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session
}

// Initialized reports whether the initial session check has completed
func (m *Mirror) Initialized() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.initialized
}

// IsAuthenticated reports whether a session is present
func (m *Mirror) IsAuthenticated() bool {
	return m.Session() != nil
}

// Role returns the role of the current session, or "" when logged out
func (m *Mirror) Role() models.Role {
	if s := m.Session(); s != nil {
		return s.Role()
	}
	return ""
}

func (m *Mirror) setSession(s *models.Session) {
	m.mu.Lock()
	m.session = s
	m.initialized = true
	m.mu.Unlock()
}

func (m *Mirror) markInitialized() {
	m.mu.Lock()
	m.initialized = true
	m.mu.Unlock()
}
