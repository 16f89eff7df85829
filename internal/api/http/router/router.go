package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	httpctx "github.com/dtroode/signdesk-server/internal/api/http/context"
	"github.com/dtroode/signdesk-server/internal/api/http/handler"
	"github.com/dtroode/signdesk-server/internal/api/http/middleware"
	"github.com/dtroode/signdesk-server/internal/logger"
)

// AuthService is what the router needs from the auth service: the handler
// operations and token validation for the access guard.
type AuthService interface {
	handler.AuthService
	middleware.Authenticator
}

// Instrumenter wraps handlers with request metrics.
type Instrumenter interface {
	Middleware(next http.Handler) http.Handler
}

// Deps contains the services and settings the router wires together.
type Deps struct {
	AuthService     AuthService
	DocumentService handler.DocumentService
	SigningService  handler.SigningService
	HealthChecks    map[string]handler.Pinger
	// RateLimiter is optional; nil disables per-user limits.
	RateLimiter *middleware.RateLimiter
	// Metrics is optional.
	Metrics        Instrumenter
	AuthConfig     handler.AuthConfig
	MaxUploadBytes int64
}

// Router builds the HTTP API.
type Router struct {
	deps           Deps
	contextManager *httpctx.Manager
	logger         *logger.Logger
}

// New creates new Router instance.
func New(deps Deps, contextManager *httpctx.Manager, logger *logger.Logger) *Router {
	return &Router{deps: deps, contextManager: contextManager, logger: logger}
}

// Register returns the handler serving every API route.
func (rt *Router) Register() http.Handler {
	authHandler := handler.NewAuth(rt.deps.AuthService, rt.contextManager, rt.deps.AuthConfig, rt.logger)
	documentHandler := handler.NewDocument(
		rt.deps.DocumentService,
		rt.deps.SigningService,
		rt.contextManager,
		rt.logger,
		rt.deps.MaxUploadBytes,
	)
	healthHandler := handler.NewHealth(rt.deps.HealthChecks, rt.logger)
	authenticate := middleware.NewAuthenticate(rt.deps.AuthService, rt.contextManager, rt.logger)

	r := chi.NewRouter()
	r.Use(middleware.NewLogging(rt.logger))
	if rt.deps.Metrics != nil {
		r.Use(rt.deps.Metrics.Middleware)
	}
	r.Use(middleware.NewRecovery(rt.logger))
	r.Use(middleware.NewSecurityHeaders())

	r.Get("/healthz", healthHandler.Check)
	r.Get("/uploads/{name}", documentHandler.Blob)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Get("/{provider}/login", authHandler.OAuthLogin)
		r.Get("/{provider}/callback", authHandler.OAuthCallback)

		r.Group(func(r chi.Router) {
			r.Use(authenticate.Handler)
			r.Post("/logout", authHandler.Logout)
			r.Get("/me", authHandler.Me)
		})
	})

	r.Route("/documents", func(r chi.Router) {
		r.Use(authenticate.Handler)

		upload := http.Handler(http.HandlerFunc(documentHandler.Upload))
		if rl := rt.deps.RateLimiter; rl != nil {
			r.Use(rl.General)
			upload = rl.Upload(upload)
		}

		r.Post("/", documentHandler.Create)
		r.Get("/", documentHandler.List)
		r.Method(http.MethodPost, "/upload", upload)
		r.Get("/{id}", documentHandler.Get)
		r.Post("/{id}/sign", documentHandler.Sign)
		r.Get("/{id}/file", documentHandler.File)
	})

	return r
}
