package model

import (
	"context"

	"github.com/google/uuid"
)

// Identity is the caller resolved for the current request.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Name   string
}

// IsZero reports whether no caller was resolved.
func (i Identity) IsZero() bool {
	return i.UserID == uuid.Nil && i.Email == ""
}

// ContextManager stores and retrieves the resolved caller on a request context.
type ContextManager interface {
	SetIdentityToContext(ctx context.Context, identity Identity) context.Context
	GetIdentityFromContext(ctx context.Context) (Identity, bool)
}
