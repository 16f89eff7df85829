package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/dtroode/signdesk-server/internal/logger"
	"github.com/dtroode/signdesk-server/internal/model"
)

// IdentityGetter reads the authenticated caller from a request context.
type IdentityGetter interface {
	GetIdentityFromContext(ctx context.Context) (model.Identity, bool)
}

// RateLimiterConfig configures per-user token buckets.
type RateLimiterConfig struct {
	GeneralRate     rate.Limit
	GeneralBurst    int
	UploadRate      rate.Limit
	UploadBurst     int
	CleanupInterval time.Duration
}

// RateLimiterConfigPerMinute builds a config from requests-per-minute limits.
// Bursts equal the per-minute limit.
func RateLimiterConfigPerMinute(general, upload int) RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(float64(general) / 60.0),
		GeneralBurst:    general,
		UploadRate:      rate.Limit(float64(upload) / 60.0),
		UploadBurst:     upload,
		CleanupInterval: 5 * time.Minute,
	}
}

type userLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

type limiterSet struct {
	name  string
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*userLimiter
}

func newLimiterSet(name string, limit rate.Limit, burst int) *limiterSet {
	return &limiterSet{
		name:     name,
		limit:    limit,
		burst:    burst,
		limiters: make(map[string]*userLimiter),
	}
}

func (s *limiterSet) get(userID string, now time.Time) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ul, ok := s.limiters[userID]; ok {
		ul.lastAccess = now
		return ul.limiter
	}

	limiter := rate.NewLimiter(s.limit, s.burst)
	s.limiters[userID] = &userLimiter{limiter: limiter, lastAccess: now}
	return limiter
}

func (s *limiterSet) prune(now time.Time, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for userID, ul := range s.limiters {
		if now.Sub(ul.lastAccess) > ttl {
			delete(s.limiters, userID)
		}
	}
}

func (s *limiterSet) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.limiters)
}

// RateLimiter limits requests per authenticated user. It must run after
// Authenticate.
type RateLimiter struct {
	config     RateLimiterConfig
	identities IdentityGetter
	logger     *logger.Logger

	general *limiterSet
	upload  *limiterSet

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewRateLimiter creates a RateLimiter and starts its cleanup loop.
func NewRateLimiter(config RateLimiterConfig, identities IdentityGetter, logger *logger.Logger) *RateLimiter {
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = 5 * time.Minute
	}

	rl := &RateLimiter{
		config:     config,
		identities: identities,
		logger:     logger,
		general:    newLimiterSet("general", config.GeneralRate, config.GeneralBurst),
		upload:     newLimiterSet("upload", config.UploadRate, config.UploadBurst),
		stopCh:     make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop ends the cleanup loop.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// General limits every authenticated request.
func (rl *RateLimiter) General(next http.Handler) http.Handler {
	return rl.middleware(rl.general, next)
}

// Upload limits document uploads.
func (rl *RateLimiter) Upload(next http.Handler) http.Handler {
	return rl.middleware(rl.upload, next)
}

// GeneralLimiterCount returns the number of tracked users for General.
func (rl *RateLimiter) GeneralLimiterCount() int {
	return rl.general.len()
}

// UploadLimiterCount returns the number of tracked users for Upload.
func (rl *RateLimiter) UploadLimiterCount() int {
	return rl.upload.len()
}

func (rl *RateLimiter) middleware(set *limiterSet, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := rl.identities.GetIdentityFromContext(r.Context())
		if !ok {
			WriteUnauthorized(w)
			return
		}
		userID := identity.UserID.String()

		if !set.get(userID, time.Now()).Allow() {
			rl.logger.Warn("rate limit exceeded",
				"user_id", userID,
				"limit_type", set.name)
			writeRateLimitResponse(w, set.limit)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup(time.Now())
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *RateLimiter) cleanup(now time.Time) {
	ttl := rl.config.CleanupInterval * 2
	rl.general.prune(now, ttl)
	rl.upload.prune(now, ttl)
}

func writeRateLimitResponse(w http.ResponseWriter, limit rate.Limit) {
	retryAfter := 1
	if limit > 0 {
		retryAfter = max(1, int(math.Ceil(1.0/float64(limit))))
	}

	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	WriteError(w, http.StatusTooManyRequests, CodeTooManyRequests, "Too many requests")
}
