package model

import (
	"context"
	"time"
)

// Session is a validated session token.
type Session struct {
	Identity  Identity
	TokenID   string
	ExpiresAt time.Time
}

// TokenManager issues and validates session tokens.
type TokenManager interface {
	Generate(identity Identity) (token string, session Session, err error)
	Parse(token string) (Session, error)
}

// SessionRevoker tracks tokens revoked before their expiry.
type SessionRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
