package http

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"rewards/internal/cache"
	"rewards/internal/core"
	applog "rewards/internal/log"
	"rewards/internal/middleware/ratelimit"
	"rewards/internal/middleware/security"
	"rewards/internal/middleware/trace"
)

const (
	defaultCacheSize       = 256
	defaultCacheTTL        = 5 * time.Minute
	defaultCleanupInterval = time.Minute
	requestTimeout         = 30 * time.Second
	readinessTimeout       = 5 * time.Second
)

// RewardReader is the read side of the reward service.
type RewardReader interface {
	CustomerRewards(ctx context.Context, customerID int64, r *core.DateRange) (core.CustomerRewardSummary, error)
	AllCustomerRewards(ctx context.Context, r *core.DateRange) ([]core.CustomerRewardSummary, error)
}

// Pinger reports whether the transaction source is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Addr    string
	Rewards RewardReader
	// Readiness is optional; without it /readyz only reports the cache.
	Readiness          Pinger
	Logger             *applog.Logger
	CacheSize          int
	CacheTTL           time.Duration
	RateLimitPerMinute int
}

type Server struct {
	http.Server
	rewards   RewardReader
	readiness Pinger
	logger    *applog.Logger
	events    *applog.StructuredLogger

	summaryCache *cache.LRUCache[core.CustomerRewardSummary]
	batchCache   *cache.LRUCache[[]core.CustomerRewardSummary]
	cacheManager *cache.Manager

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware

	appMetrics   *appMetrics
	shutdownOnce sync.Once
}

type appMetrics struct {
	summariesComputed atomic.Int64
	batchesComputed   atomic.Int64
	uptime            time.Time
}

// NewServer wires the router, caches and middleware. Background cleanup
// goroutines run until Shutdown.
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = defaultCacheSize
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}
	logger := opts.Logger.WithComponent(applog.ComponentHTTP)

	s := &Server{
		rewards:          opts.Rewards,
		readiness:        opts.Readiness,
		logger:           logger,
		events:           applog.NewStructuredLogger(logger),
		summaryCache:     cache.NewLRUCache[core.CustomerRewardSummary](opts.CacheSize, opts.CacheTTL),
		batchCache:       cache.NewLRUCache[[]core.CustomerRewardSummary](opts.CacheSize/8+1, opts.CacheTTL),
		cacheManager:     cache.NewManager(),
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		securityDetector: security.NewDetector(),
		appMetrics:       &appMetrics{uptime: time.Now()},
	}
	s.traceMiddleware = trace.NewMiddleware(logger, s.securityDetector.ExtractClientIP)

	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.Register(s.batchCache)
	s.cacheManager.StartCleanup(defaultCleanupInterval)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      requestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(s.traceMiddleware.Middleware)
	r.Use(chimw.Recoverer)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(s.flagSuspicious)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "No route for "+r.Method+" "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "Method "+r.Method+" not allowed on "+r.URL.Path)
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", s.handleMetrics)

	r.Route("/api/rewards", func(r chi.Router) {
		r.Use(s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
			writeError(w, r, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
		}))
		r.Use(chimw.Timeout(requestTimeout))

		r.Get("/", s.handleAllRewards)
		r.Get("/{customerId}", s.handleCustomerRewards)
	})

	return r
}

// flagSuspicious logs probing requests; they still get routed, and 404.
func (s *Server) flagSuspicious(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.securityDetector.DetectSuspiciousRequest(r) {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Suspicious request",
				applog.FieldPath, r.URL.Path,
				applog.FieldClientIP, s.securityDetector.ExtractClientIP(r))
		}
		next.ServeHTTP(w, r)
	})
}

// InvalidateCache drops every cached summary, e.g. after the underlying data
// changed.
func (s *Server) InvalidateCache() {
	s.summaryCache.Purge()
	s.batchCache.Purge()
	s.logger.Info("Reward cache invalidated")
}

// Shutdown stops background goroutines and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
