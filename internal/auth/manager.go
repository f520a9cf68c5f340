package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"carrete-admin/internal/apperr"
	"carrete-admin/internal/identity"
	"carrete-admin/internal/models"
)

const msgNotAdmin = "No tienes permisos de administrador"

var errNotEstablished = errors.New("auth: session was not established")

// Session is an identity that passed the admin check, with its profile.
type Session struct {
	identity.Identity
	Profile models.Admin `json:"profile"`
}

// Manager holds the admin sessions of this process. Sessions are only created
// and dropped from the identity-change subscription; callers read them.
type Manager struct {
	provider identity.Provider
	resolver *Resolver
	admins   AdminDirectory
	log      *zap.Logger
	now      func() time.Time

	mu          sync.Mutex
	sessions    map[string]Session
	outcomes    map[string]error
	unsubscribe func()
}

func NewManager(provider identity.Provider, admins AdminDirectory, log *zap.Logger) *Manager {
	return &Manager{
		provider: provider,
		resolver: NewResolver(admins),
		admins:   admins,
		log:      log,
		now:      time.Now,
		sessions: make(map[string]Session),
		outcomes: make(map[string]error),
	}
}

// Start subscribes to identity changes. It must run before any sign-in.
func (m *Manager) Start() {
	unsubscribe := m.provider.OnIdentityChanged(m.handle)
	m.mu.Lock()
	m.unsubscribe = unsubscribe
	m.mu.Unlock()
}

// Close unsubscribes and forgets every session held in memory.
func (m *Manager) Close() {
	m.mu.Lock()
	unsubscribe := m.unsubscribe
	m.unsubscribe = nil
	m.sessions = make(map[string]Session)
	m.outcomes = make(map[string]error)
	m.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func (m *Manager) handle(ctx context.Context, change identity.Change) {
	id := change.Identity
	switch change.Kind {
	case identity.SignedIn, identity.Restored:
		if _, err := m.establish(ctx, id); err != nil {
			m.mu.Lock()
			m.outcomes[id.SessionID] = err
			m.mu.Unlock()
		}
	case identity.SignedOut:
		m.mu.Lock()
		delete(m.sessions, id.SessionID)
		m.mu.Unlock()
		m.log.Debug("admin session closed", zap.String("uid", id.UID), zap.String("sid", id.SessionID))
	}
}

// establish runs the role check for id. An identity that does not pass it,
// for whatever reason, is signed out again before the error is returned.
func (m *Manager) establish(ctx context.Context, id identity.Identity) (Session, error) {
	role, err := m.resolver.Resolve(ctx, id)
	if err != nil {
		m.log.Error("role resolution failed", zap.String("uid", id.UID), zap.Error(err))
		m.reject(ctx, id)
		return Session{}, err
	}
	if !role.IsAdmin {
		m.log.Warn("non-admin identity rejected", zap.String("uid", id.UID), zap.String("email", id.Email))
		m.reject(ctx, id)
		return Session{}, apperr.Authorization(msgNotAdmin, nil)
	}

	session := Session{Identity: id, Profile: role.Profile}
	m.mu.Lock()
	m.pruneLocked()
	m.sessions[id.SessionID] = session
	delete(m.outcomes, id.SessionID)
	m.mu.Unlock()

	m.log.Info("admin session established", zap.String("uid", id.UID), zap.String("sid", id.SessionID))
	return session, nil
}

func (m *Manager) reject(ctx context.Context, id identity.Identity) {
	if err := m.provider.SignOut(ctx, id); err != nil {
		m.log.Error("sign out after rejection failed", zap.String("uid", id.UID), zap.Error(err))
	}
}

// pruneLocked drops sessions past their expiry. Callers hold m.mu.
func (m *Manager) pruneLocked() {
	now := m.now()
	for sid, s := range m.sessions {
		if !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt) {
			delete(m.sessions, sid)
		}
	}
}

func (m *Manager) takeOutcome(sid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	err := m.outcomes[sid]
	delete(m.outcomes, sid)
	return err
}

func (m *Manager) Current(sid string) (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sid]
	return s, ok
}

// SignIn authenticates against the identity service and returns the admin
// session. Valid credentials of a non-admin yield an authorization error.
func (m *Manager) SignIn(ctx context.Context, email, password string) (Session, error) {
	id, err := m.provider.SignIn(ctx, email, password)
	if err != nil {
		return Session{}, err
	}
	if err := m.takeOutcome(id.SessionID); err != nil {
		return Session{}, err
	}
	session, ok := m.Current(id.SessionID)
	if !ok {
		return Session{}, errNotEstablished
	}
	return session, nil
}

// Authenticate resolves a bearer token to an admin session.
func (m *Manager) Authenticate(ctx context.Context, token string) (Session, error) {
	id, err := m.provider.Verify(ctx, token)
	if err != nil {
		return Session{}, err
	}
	if err := m.takeOutcome(id.SessionID); err != nil {
		return Session{}, err
	}
	if session, ok := m.Current(id.SessionID); ok {
		return session, nil
	}
	// The provider already knew the session but this manager has no record
	// of it, e.g. after Close or once the entry was pruned.
	return m.establish(ctx, id)
}

func (m *Manager) SignOut(ctx context.Context, session Session) error {
	return m.provider.SignOut(ctx, session.Identity)
}

func (m *Manager) ChangePassword(ctx context.Context, session Session, newPassword string) error {
	return m.provider.ChangePassword(ctx, session.Identity, newPassword)
}

// RevokeUser ends every session of uid, here and in the identity service.
func (m *Manager) RevokeUser(ctx context.Context, uid string) error {
	err := m.provider.RevokeSessions(ctx, uid)

	m.mu.Lock()
	for sid, s := range m.sessions {
		if s.UID == uid {
			delete(m.sessions, sid)
		}
	}
	m.mu.Unlock()
	return err
}

type Registration struct {
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
	Username        string `json:"username"`
	Telefono        string `json:"telefono"`
	ProfileURL      string `json:"profileUrl"`
}

// Register creates the account and its admin document, then signs in. The
// password confirmation is checked before anything is created.
func (m *Manager) Register(ctx context.Context, reg Registration) (Session, error) {
	if reg.Password != reg.ConfirmPassword {
		return Session{}, apperr.Validation("Las contraseñas no coinciden")
	}

	uid, err := m.provider.CreateAccount(ctx, reg.Email, reg.Password)
	if err != nil {
		return Session{}, err
	}

	_, err = m.admins.Create(ctx, models.Admin{
		ID:         uid,
		UserID:     uid,
		Email:      strings.ToLower(strings.TrimSpace(reg.Email)),
		Username:   strings.TrimSpace(reg.Username),
		Telefono:   models.LenientString(strings.TrimSpace(reg.Telefono)),
		ProfileURL: reg.ProfileURL,
	})
	if err != nil {
		return Session{}, err
	}
	return m.SignIn(ctx, reg.Email, reg.Password)
}
