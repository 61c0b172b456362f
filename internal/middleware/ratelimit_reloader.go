package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/benvon/mindful-harmony/internal/database"
	"github.com/benvon/mindful-harmony/internal/models"
	"github.com/benvon/mindful-harmony/internal/request"
	"github.com/ulule/limiter/v3"
	stdlibmw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"go.uber.org/zap"
)

// DefaultRatelimitRate applies when neither the database nor the caller
// supplies a rate.
const DefaultRatelimitRate = "100-M"

// RateLimitReloader wraps ulule/limiter and periodically reloads the rate
// stored under configKey.
type RateLimitReloader struct {
	store       limiter.Store
	repo        database.RatelimitConfigStore
	configKey   string
	defaultRate string
	log         *zap.Logger
	interval    time.Duration
	mu          sync.RWMutex
	current     *stdlibmw.Middleware
	rate        string
}

// NewRateLimitReloader creates a rate limit middleware that loads config from the DB and hot-reloads it.
func NewRateLimitReloader(store limiter.Store, repo database.RatelimitConfigStore, configKey, defaultRate string, log *zap.Logger, reloadInterval time.Duration) *RateLimitReloader {
	if defaultRate == "" {
		defaultRate = DefaultRatelimitRate
	}
	if configKey == "" {
		configKey = models.DefaultConfigKey
	}
	return &RateLimitReloader{
		store:       store,
		repo:        repo,
		configKey:   configKey,
		defaultRate: defaultRate,
		log:         log,
		interval:    reloadInterval,
	}
}

// Middleware loads the initial rate and returns a middleware that applies
// whichever limiter is current when each request arrives. The same
// reloader may be mounted on several routers; they share one budget per
// client.
func (r *RateLimitReloader) Middleware() func(http.Handler) http.Handler {
	r.load(context.Background())
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			r.mu.RLock()
			mw := r.current
			r.mu.RUnlock()
			if mw == nil {
				next.ServeHTTP(w, req)
				return
			}
			mw.Handler(next).ServeHTTP(w, req)
		})
	}
}

// Start runs the reload loop until ctx is cancelled. Call after Middleware() is applied.
func (r *RateLimitReloader) Start(ctx context.Context) {
	if r.interval <= 0 {
		return
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.load(ctx)
		}
	}
}

// Rate returns the rate currently enforced.
func (r *RateLimitReloader) Rate() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rate
}

func (r *RateLimitReloader) load(ctx context.Context) {
	rateStr := r.defaultRate
	cfg, err := r.repo.Get(ctx, r.configKey)
	switch {
	case err != nil:
		r.log.Warn("failed_to_load_ratelimit_config_from_db_using_default",
			zap.String("config_key", r.configKey),
			zap.Error(err),
			zap.String("default_rate", r.defaultRate),
		)
	case cfg != nil && cfg.Rate != "":
		rateStr = cfg.Rate
	default:
		// Save default config if none exists
		if err := r.repo.Set(ctx, &models.RatelimitConfig{ConfigKey: r.configKey, Rate: r.defaultRate}); err != nil {
			r.log.Error("failed_to_save_default_ratelimit_config",
				zap.String("config_key", r.configKey),
				zap.Error(err),
			)
		}
	}

	rate, err := limiter.NewRateFromFormatted(rateStr)
	if err != nil {
		r.log.Error("failed_to_parse_rate_limit_using_default",
			zap.Error(err),
			zap.String("rate_str", rateStr),
			zap.String("default_rate", r.defaultRate),
		)
		rateStr = r.defaultRate
		rate, err = limiter.NewRateFromFormatted(r.defaultRate)
		if err != nil {
			r.log.Error("failed_to_parse_default_rate_limit",
				zap.Error(err),
				zap.String("default_rate", r.defaultRate),
			)
			return
		}
	}

	// Reuse the existing store, only create a new limiter instance with the new rate
	instance := limiter.New(r.store, rate)
	mw := stdlibmw.NewMiddleware(instance,
		stdlibmw.WithKeyGetter(request.ClientIP),
		stdlibmw.WithLimitReachedHandler(func(w http.ResponseWriter, req *http.Request) {
			respondErrorJSON(w, req, http.StatusTooManyRequests, "Too Many Requests", "Rate limit exceeded, please try again later", r.log)
		}),
		stdlibmw.WithErrorHandler(func(w http.ResponseWriter, req *http.Request, err error) {
			r.log.Error("rate_limiter_store_error", zap.String("config_key", r.configKey), zap.Error(err))
			respondErrorJSON(w, req, http.StatusInternalServerError, "Internal Server Error", "Rate limiter unavailable", r.log)
		}),
	)

	r.mu.Lock()
	r.current = mw
	r.rate = rateStr
	r.mu.Unlock()
}
