package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	httpctx "github.com/dtroode/signdesk-server/internal/api/http/context"
	"github.com/dtroode/signdesk-server/internal/api/http/handler"
	"github.com/dtroode/signdesk-server/internal/api/http/middleware"
	"github.com/dtroode/signdesk-server/internal/api/http/router"
	"github.com/dtroode/signdesk-server/internal/config"
	"github.com/dtroode/signdesk-server/internal/logger"
	"github.com/dtroode/signdesk-server/internal/metrics"
	"github.com/dtroode/signdesk-server/internal/model"
	"github.com/dtroode/signdesk-server/internal/oauth"
	"github.com/dtroode/signdesk-server/internal/repository/postgres"
	"github.com/dtroode/signdesk-server/internal/server"
	"github.com/dtroode/signdesk-server/internal/service"
	"github.com/dtroode/signdesk-server/internal/session"
	"github.com/dtroode/signdesk-server/internal/storage/disk"
	"github.com/dtroode/signdesk-server/internal/storage/minio"
	"github.com/dtroode/signdesk-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	logger.Info("starting signdesk server",
		"version", buildVersion,
		"date", buildDate,
		"commit", buildCommit)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped with error", "error", err)
	}
	logger.Info("shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, logger *logger.Logger) error {
	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	blobStore, err := newBlobStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize blob store: %w", err)
	}

	healthChecks := map[string]handler.Pinger{"database": db}

	var revoker model.SessionRevoker
	if cfg.Redis.Addr != "" {
		redisRevoker := session.NewRedisRevoker(cfg.Redis.Addr, cfg.Redis.Password)
		defer redisRevoker.Close()
		if err := redisRevoker.Ping(ctx); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		healthChecks["sessions"] = redisRevoker
		revoker = redisRevoker
	} else {
		logger.Warn("REDIS_ADDR is not set, session revocations are kept in memory")
		revoker = session.NewMemoryRevoker()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	userRepo := postgres.NewUserRepository(db)
	documentRepo := postgres.NewDocumentRepository(db)
	signatureRepo := postgres.NewSignatureRepository(db)
	signingRepo := postgres.NewSigningRepository(db)
	tokenManager := token.NewJWT(cfg.JWT.Secret, cfg.JWT.TTL)

	authService := service.NewAuth(userRepo, tokenManager, revoker, logger, oauthProviders(cfg)...)
	documentService := service.NewDocument(documentRepo, signatureRepo, userRepo, blobStore, logger).
		WithRecorder(collector)
	signingService := service.NewSigning(documentRepo, signingRepo, logger).
		WithRecorder(collector)

	ctxMgr := httpctx.NewManager()

	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimit.General > 0 && cfg.RateLimit.Upload > 0 {
		rateLimiter = middleware.NewRateLimiter(
			middleware.RateLimiterConfigPerMinute(cfg.RateLimit.General, cfg.RateLimit.Upload),
			ctxMgr,
			logger,
		)
		defer rateLimiter.Stop()
	}

	r := router.New(router.Deps{
		AuthService:     authService,
		DocumentService: documentService,
		SigningService:  signingService,
		HealthChecks:    healthChecks,
		RateLimiter:     rateLimiter,
		Metrics:         collector,
		AuthConfig: handler.AuthConfig{
			CookieSecure:     cfg.HTTP.CookieSecure,
			LoginRedirectURL: cfg.HTTP.LoginRedirectURL,
		},
		MaxUploadBytes: cfg.HTTP.MaxUploadBytes,
	}, ctxMgr, logger)

	apiServer := server.NewHTTPServer(r.Register(), cfg.HTTP.Address)
	sl := server.NewSecurityLayer(cfg.HTTP.EnableHTTPS, cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)

	g, gctx := errgroup.WithContext(ctx)
	servers := []model.Server{apiServer}
	startServer(g, logger, apiServer, sl)

	if cfg.Metrics.Address != "" {
		metricsServer := server.NewHTTPServer(metrics.SetupMetricsRoute(registry), cfg.Metrics.Address)
		servers = append(servers, metricsServer)
		startServer(g, logger, metricsServer, server.NewPlainListener())
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down servers")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		for _, s := range servers {
			if err := s.Stop(shutdownCtx); err != nil {
				logger.Error("error during server shutdown", "error", err, "address", s.Address())
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}

func startServer(g *errgroup.Group, logger *logger.Logger, s model.Server, sl model.SecurityLayer) {
	g.Go(func() error {
		logger.Info("starting server", "address", s.Address())
		if err := s.Start(sl); err != nil {
			return fmt.Errorf("server %s: %w", s.Address(), err)
		}
		return nil
	})
}

func newBlobStore(ctx context.Context, cfg *config.Config) (model.BlobStore, error) {
	switch cfg.Storage.Backend {
	case config.StorageBackendMinio:
		return minio.Connect(ctx, minio.Options{
			Endpoint:  cfg.Minio.Endpoint,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: cfg.Minio.SecretKey,
			Bucket:    cfg.Minio.Bucket,
			UseSSL:    cfg.Minio.UseSSL,
		})
	default:
		return disk.NewStore(cfg.Storage.Dir)
	}
}

func oauthProviders(cfg *config.Config) []model.OAuthProvider {
	var providers []model.OAuthProvider
	if c := cfg.OAuth.Google; c.Enabled() {
		providers = append(providers, oauth.NewGoogle(oauth.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			RedirectURL:  c.RedirectURL,
		}))
	}
	if c := cfg.OAuth.GitHub; c.Enabled() {
		providers = append(providers, oauth.NewGitHub(oauth.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			RedirectURL:  c.RedirectURL,
		}))
	}
	return providers
}
