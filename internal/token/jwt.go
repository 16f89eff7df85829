package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dtroode/signdesk-server/internal/model"
)

// Claims represents session JWT claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Name   string    `json:"name"`
}

// JWT implements TokenManager backed by symmetric HMAC.
type JWT struct {
	secretKey string
	ttl       time.Duration
	now       func() time.Time
}

var _ model.TokenManager = (*JWT)(nil)

// NewJWT creates a new JWT token manager issuing tokens valid for ttl.
func NewJWT(secretKey string, ttl time.Duration) *JWT {
	return &JWT{secretKey: secretKey, ttl: ttl, now: time.Now}
}

// Generate signs a session token for identity. Every token carries a unique ID
// so it can be revoked individually.
func (j *JWT) Generate(identity model.Identity) (string, model.Session, error) {
	now := j.now()
	session := model.Session{
		Identity:  identity,
		TokenID:   uuid.NewString(),
		ExpiresAt: now.Add(j.ttl).Truncate(time.Second),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.TokenID,
			Subject:   identity.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
		UserID: identity.UserID,
		Email:  identity.Email,
		Name:   identity.Name,
	})

	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", model.Session{}, fmt.Errorf("failed to sign session token: %w", err)
	}

	return tokenString, session, nil
}

// Parse validates the token signature and expiry.
func (j *JWT) Parse(tokenString string) (model.Session, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(j.secretKey), nil
	}, jwt.WithTimeFunc(j.now))
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to parse session token: %w", err)
	}
	if !token.Valid {
		return model.Session{}, fmt.Errorf("session token is invalid")
	}
	if claims.ID == "" || claims.UserID == uuid.Nil {
		return model.Session{}, fmt.Errorf("session token is missing claims")
	}

	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	return model.Session{
		Identity: model.Identity{
			UserID: claims.UserID,
			Email:  claims.Email,
			Name:   claims.Name,
		},
		TokenID:   claims.ID,
		ExpiresAt: expiresAt,
	}, nil
}
