package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserStore defines persistence operations for users.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	Create(ctx context.Context, user User) (User, error)
	GetByExternalIdentity(ctx context.Context, provider, providerUserID string) (User, error)
	CreateWithExternalIdentity(ctx context.Context, user User, identity ExternalIdentity) (User, error)
	LinkExternalIdentity(ctx context.Context, identity ExternalIdentity) error
}

// User represents a registered account. PasswordHash is nil for accounts
// that only ever signed in through an OAuth provider.
type User struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ExternalIdentity links a user to an account at an OAuth provider.
type ExternalIdentity struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	Provider       string
	ProviderUserID string
	CreatedAt      time.Time
}

// RegisterParams contains the fields accepted by credential registration.
type RegisterParams struct {
	Name     string
	Email    string
	Password string
}
