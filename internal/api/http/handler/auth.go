package handler

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dtroode/signdesk-server/internal/api/http/middleware"
	"github.com/dtroode/signdesk-server/internal/logger"
	"github.com/dtroode/signdesk-server/internal/model"
)

const (
	oauthStateCookie = "oauth_state"
	oauthStateMaxAge = 10 * time.Minute
	authBodyLimit    = 64 << 10
)

// AuthService defines credential and OAuth login operations.
type AuthService interface {
	Register(ctx context.Context, params model.RegisterParams) (model.User, error)
	Login(ctx context.Context, email, password string) (string, model.Session, error)
	Logout(ctx context.Context, session model.Session) error
	OAuthLoginURL(provider, state string) (string, error)
	LoginWithOAuth(ctx context.Context, provider, code string) (string, model.Session, error)
}

// SessionGetter reads the session stored by the authentication middleware.
type SessionGetter interface {
	GetSessionFromContext(ctx context.Context) (model.Session, bool)
}

// AuthConfig contains cookie and redirect settings of the auth handler.
type AuthConfig struct {
	CookieSecure bool
	// LoginRedirectURL is where a finished OAuth login is sent. When empty
	// the callback answers with the session as JSON.
	LoginRedirectURL string
}

// Auth handles authentication endpoints.
type Auth struct {
	authService AuthService
	sessions    SessionGetter
	config      AuthConfig
	logger      *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(authService AuthService, sessions SessionGetter, config AuthConfig, logger *logger.Logger) *Auth {
	return &Auth{
		authService: authService,
		sessions:    sessions,
		config:      config,
		logger:      logger,
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /auth/register.
func (h *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, authBodyLimit, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if _, err := h.authService.Register(r.Context(), model.RegisterParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, successResponse{Success: true})
}

// Login handles POST /auth/login.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, authBodyLimit, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	token, session, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.writeSession(w, token, session)
}

// Logout handles POST /auth/logout. It runs behind the authentication
// middleware.
func (h *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessions.GetSessionFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, model.ErrUnauthorized)
		return
	}

	if err := h.authService.Logout(r.Context(), session); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.setCookie(w, middleware.SessionCookieName, "", -1)
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// Me handles GET /auth/me.
func (h *Auth) Me(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessions.GetSessionFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, model.ErrUnauthorized)
		return
	}

	writeJSON(w, http.StatusOK, newUserResponse(session.Identity))
}

// OAuthLogin handles GET /auth/{provider}/login by redirecting to the provider.
func (h *Auth) OAuthLogin(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")

	state, err := generateState()
	if err != nil {
		writeError(w, h.logger, fmt.Errorf("failed to generate oauth state: %w", err))
		return
	}

	url, err := h.authService.OAuthLoginURL(provider, state)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.setCookie(w, oauthStateCookie, state, int(oauthStateMaxAge.Seconds()))
	http.Redirect(w, r, url, http.StatusFound)
}

// OAuthCallback handles GET /auth/{provider}/callback.
func (h *Auth) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	query := r.URL.Query()

	state := query.Get("state")
	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || state == "" || subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(state)) != 1 {
		h.logger.Warn("Auth handler: oauth state mismatch",
			"provider", provider)
		writeError(w, h.logger, model.ErrInvalidInput)
		return
	}
	h.setCookie(w, oauthStateCookie, "", -1)

	if providerErr := query.Get("error"); providerErr != "" {
		h.logger.Warn("Auth handler: provider denied login",
			"provider", provider,
			"error", providerErr)
		writeError(w, h.logger, model.ErrUnauthorized)
		return
	}

	code := query.Get("code")
	if code == "" {
		writeError(w, h.logger, model.ErrInvalidInput)
		return
	}

	token, session, err := h.authService.LoginWithOAuth(r.Context(), provider, code)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if h.config.LoginRedirectURL != "" {
		h.setSessionCookie(w, token, session)
		http.Redirect(w, r, h.config.LoginRedirectURL, http.StatusFound)
		return
	}
	h.writeSession(w, token, session)
}

func (h *Auth) writeSession(w http.ResponseWriter, token string, session model.Session) {
	h.setSessionCookie(w, token, session)
	writeJSON(w, http.StatusOK, sessionResponse{
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		User:      newUserResponse(session.Identity),
	})
}

func (h *Auth) setSessionCookie(w http.ResponseWriter, token string, session model.Session) {
	maxAge := int(time.Until(session.ExpiresAt).Seconds())
	if maxAge <= 0 {
		maxAge = -1
	}
	h.setCookie(w, middleware.SessionCookieName, token, maxAge)
}

func (h *Auth) setCookie(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
