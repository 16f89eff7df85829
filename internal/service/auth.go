package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dtroode/signdesk-server/internal/logger"
	"github.com/dtroode/signdesk-server/internal/model"
)

const (
	passwordHashCost  = 12
	minNameLength     = 3
	minPasswordLength = 8
)

type Auth struct {
	userStore    model.UserStore
	tokenManager model.TokenManager
	revoker      model.SessionRevoker
	providers    map[string]model.OAuthProvider
	logger       *logger.Logger
	hashCost     int
	now          func() time.Time
}

func NewAuth(
	userStore model.UserStore,
	tokenManager model.TokenManager,
	revoker model.SessionRevoker,
	logger *logger.Logger,
	providers ...model.OAuthProvider,
) *Auth {
	byName := make(map[string]model.OAuthProvider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &Auth{
		userStore:    userStore,
		tokenManager: tokenManager,
		revoker:      revoker,
		providers:    byName,
		logger:       logger,
		hashCost:     passwordHashCost,
		now:          time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateRegistration(params model.RegisterParams) error {
	if utf8.RuneCountInString(strings.TrimSpace(params.Name)) < minNameLength {
		return fmt.Errorf("%w: name must be at least %d characters", model.ErrInvalidInput, minNameLength)
	}
	addr, err := mail.ParseAddress(params.Email)
	if err != nil || addr.Address != params.Email {
		return fmt.Errorf("%w: invalid email", model.ErrInvalidInput)
	}
	if len(params.Password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", model.ErrInvalidInput, minPasswordLength)
	}
	return nil
}

// Register creates a credential account.
func (a *Auth) Register(ctx context.Context, params model.RegisterParams) (model.User, error) {
	params.Email = normalizeEmail(params.Email)
	params.Name = strings.TrimSpace(params.Name)

	a.logger.Debug("Auth service: starting user registration",
		"email", params.Email)

	if err := validateRegistration(params); err != nil {
		return model.User{}, err
	}

	_, err := a.userStore.GetByEmail(ctx, params.Email)
	if err == nil {
		a.logger.Info("Auth service: user already exists",
			"email", params.Email)
		return model.User{}, model.ErrEmailTaken
	}
	if !errors.Is(err, model.ErrNotFound) {
		a.logger.Error("Auth service: failed to get user by email",
			"email", params.Email,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), a.hashCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return model.User{}, fmt.Errorf("%w: password is too long", model.ErrInvalidInput)
		}
		return model.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := a.now()
	user, err := a.userStore.Create(ctx, model.User{
		ID:           uuid.New(),
		Email:        params.Email,
		Name:         params.Name,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, model.ErrEmailTaken) {
			return model.User{}, err
		}
		a.logger.Error("Auth service: failed to create user",
			"email", params.Email,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	a.logger.Info("Auth service: user registered",
		"user_id", user.ID)

	return user, nil
}

// Login checks credentials and issues a session token.
func (a *Auth) Login(ctx context.Context, email, password string) (string, model.Session, error) {
	email = normalizeEmail(email)

	user, err := a.userStore.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return "", model.Session{}, model.ErrInvalidCredentials
		}
		return "", model.Session{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if len(user.PasswordHash) == 0 {
		a.logger.Info("Auth service: password login for oauth only account",
			"user_id", user.ID)
		return "", model.Session{}, model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		a.logger.Info("Auth service: wrong password",
			"user_id", user.ID)
		return "", model.Session{}, model.ErrInvalidCredentials
	}

	return a.issue(user)
}

// OAuthLoginURL returns the provider consent page URL carrying state.
func (a *Auth) OAuthLoginURL(provider, state string) (string, error) {
	p, ok := a.providers[provider]
	if !ok {
		return "", fmt.Errorf("oauth provider %q: %w", provider, model.ErrNotFound)
	}
	return p.LoginURL(state), nil
}

// LoginWithOAuth completes the authorization-code flow. The user is found by
// provider identity first, then by email; otherwise a new account is created.
func (a *Auth) LoginWithOAuth(ctx context.Context, provider, code string) (string, model.Session, error) {
	p, ok := a.providers[provider]
	if !ok {
		return "", model.Session{}, fmt.Errorf("oauth provider %q: %w", provider, model.ErrNotFound)
	}
	if code == "" {
		return "", model.Session{}, fmt.Errorf("%w: missing authorization code", model.ErrInvalidInput)
	}

	info, err := p.Exchange(ctx, code)
	if err != nil {
		a.logger.Warn("Auth service: oauth exchange failed",
			"provider", provider,
			"error", err.Error())
		return "", model.Session{}, fmt.Errorf("%w: %w", model.ErrUnauthorized, err)
	}
	info.Email = normalizeEmail(info.Email)

	user, err := a.resolveOAuthUser(ctx, info)
	if err != nil {
		return "", model.Session{}, err
	}

	return a.issue(user)
}

func (a *Auth) resolveOAuthUser(ctx context.Context, info model.OAuthUserInfo) (model.User, error) {
	user, err := a.userStore.GetByExternalIdentity(ctx, info.Provider, info.ProviderUserID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return model.User{}, fmt.Errorf("failed to get user by external identity: %w", err)
	}

	now := a.now()
	identity := model.ExternalIdentity{
		ID:             uuid.New(),
		Provider:       info.Provider,
		ProviderUserID: info.ProviderUserID,
		CreatedAt:      now,
	}

	user, err = a.userStore.GetByEmail(ctx, info.Email)
	switch {
	case err == nil:
		identity.UserID = user.ID
		if err := a.userStore.LinkExternalIdentity(ctx, identity); err != nil {
			return model.User{}, fmt.Errorf("failed to link external identity: %w", err)
		}
		a.logger.Info("Auth service: linked oauth identity",
			"user_id", user.ID,
			"provider", info.Provider)
		return user, nil
	case !errors.Is(err, model.ErrNotFound):
		return model.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	name := strings.TrimSpace(info.Name)
	if name == "" {
		name, _, _ = strings.Cut(info.Email, "@")
	}
	user = model.User{
		ID:        uuid.New(),
		Email:     info.Email,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	identity.UserID = user.ID

	user, err = a.userStore.CreateWithExternalIdentity(ctx, user, identity)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to create oauth user: %w", err)
	}

	a.logger.Info("Auth service: oauth user registered",
		"user_id", user.ID,
		"provider", info.Provider)

	return user, nil
}

// Authenticate validates a session token and returns its session.
func (a *Auth) Authenticate(ctx context.Context, token string) (model.Session, error) {
	if token == "" {
		return model.Session{}, model.ErrUnauthorized
	}

	session, err := a.tokenManager.Parse(token)
	if err != nil {
		a.logger.Debug("Auth service: invalid session token",
			"error", err.Error())
		return model.Session{}, fmt.Errorf("%w: %w", model.ErrUnauthorized, err)
	}

	revoked, err := a.revoker.IsRevoked(ctx, session.TokenID)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to check session: %w", err)
	}
	if revoked {
		return model.Session{}, fmt.Errorf("%w: %w", model.ErrUnauthorized, model.ErrTokenRevoked)
	}

	return session, nil
}

// Logout revokes the session until its token would have expired anyway.
func (a *Auth) Logout(ctx context.Context, session model.Session) error {
	ttl := session.ExpiresAt.Sub(a.now())
	if err := a.revoker.Revoke(ctx, session.TokenID, ttl); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	a.logger.Info("Auth service: user logged out",
		"user_id", session.Identity.UserID)

	return nil
}

func (a *Auth) issue(user model.User) (string, model.Session, error) {
	token, session, err := a.tokenManager.Generate(model.Identity{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
	})
	if err != nil {
		return "", model.Session{}, fmt.Errorf("failed to generate session token: %w", err)
	}

	a.logger.Info("Auth service: session issued",
		"user_id", user.ID)

	return token, session, nil
}
