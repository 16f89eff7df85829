package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dtroode/signdesk-server/internal/logger"
	"github.com/dtroode/signdesk-server/internal/model"
)

// SessionCookieName is the cookie carrying the session token for browser clients.
const SessionCookieName = "session"

// Authenticator resolves a session token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (model.Session, error)
}

// SessionContextManager stores a validated session on the request context.
type SessionContextManager interface {
	SetSessionToContext(ctx context.Context, session model.Session) context.Context
}

// Authenticate rejects requests without a valid session token and injects the
// resolved session into the request context.
type Authenticate struct {
	authenticator  Authenticator
	contextManager SessionContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(authenticator Authenticator, contextManager SessionContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{authenticator: authenticator, contextManager: contextManager, logger: logger}
}

// Handler wraps next with the session check.
func (m *Authenticate) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := TokenFromRequest(r)
		if token == "" {
			WriteUnauthorized(w)
			return
		}

		session, err := m.authenticator.Authenticate(r.Context(), token)
		if err != nil {
			if !errors.Is(err, model.ErrUnauthorized) {
				m.logger.Error("failed to authenticate request", "error", err)
			}
			WriteUnauthorized(w)
			return
		}

		annotateUserID(r.Context(), session.Identity.UserID.String())
		ctx := m.contextManager.SetSessionToContext(r.Context(), session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TokenFromRequest returns the bearer token, falling back to the session cookie.
func TokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}

	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}
