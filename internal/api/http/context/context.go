package context

import (
	"context"

	"github.com/dtroode/signdesk-server/internal/model"
)

type contextKey int

const (
	identityKey contextKey = iota
	sessionKey
)

// Manager stores the resolved caller on request contexts.
type Manager struct{}

// NewManager creates a new context manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// SetIdentityToContext returns a copy of ctx carrying identity.
func (m *Manager) SetIdentityToContext(ctx context.Context, identity model.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// GetIdentityFromContext returns the identity set by SetIdentityToContext.
// A zero identity is reported as missing.
func (m *Manager) GetIdentityFromContext(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(model.Identity)
	if !ok || identity.IsZero() {
		return model.Identity{}, false
	}
	return identity, true
}

// SetSessionToContext stores the validated session together with its identity.
func (m *Manager) SetSessionToContext(ctx context.Context, session model.Session) context.Context {
	ctx = context.WithValue(ctx, sessionKey, session)
	return m.SetIdentityToContext(ctx, session.Identity)
}

// GetSessionFromContext returns the session set by SetSessionToContext.
func (m *Manager) GetSessionFromContext(ctx context.Context) (model.Session, bool) {
	session, ok := ctx.Value(sessionKey).(model.Session)
	if !ok || session.TokenID == "" {
		return model.Session{}, false
	}
	return session, true
}
