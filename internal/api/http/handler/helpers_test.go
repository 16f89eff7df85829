package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	httpctx "github.com/dtroode/signdesk-server/internal/api/http/context"
	"github.com/dtroode/signdesk-server/internal/model"
)

var (
	aliceID = uuid.MustParse("3f1c2a44-8d2b-4f8e-9d51-0a6f2b7c9e10")
	alice   = model.Identity{UserID: aliceID, Email: "alice@example.com", Name: "Alice"}

	aliceSession = model.Session{
		Identity:  alice,
		TokenID:   "jti-alice",
		ExpiresAt: time.Now().Add(time.Hour),
	}

	createdAt = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
)

// withSession stands in for the authentication middleware.
func withSession(session model.Session) func(http.Handler) http.Handler {
	manager := httpctx.NewManager()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(manager.SetSessionToContext(r.Context(), session)))
		})
	}
}
