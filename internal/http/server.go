package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"plenio/internal/identity"
	"plenio/internal/log"
	"plenio/internal/middleware/cors"
	"plenio/internal/middleware/ratelimit"
	"plenio/internal/middleware/security"
	"plenio/internal/middleware/trace"
	"plenio/internal/services"
)

// Config holds the HTTP surface settings.
type Config struct {
	Addr               string
	AllowedOrigins     []string
	RateLimitPerMinute int
	Logger             *log.Logger
}

type Server struct {
	http.Server
	ledger   *services.Ledger
	verifier identity.Verifier
	logger   *log.Logger

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(cfg Config, ledger *services.Ledger, verifier identity.Verifier) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	s := &Server{
		Server: http.Server{
			Addr:              cfg.Addr,
			ReadTimeout:       10 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
			MaxHeaderBytes:    64 << 10,
		},
		ledger:   ledger,
		verifier: verifier,
		logger:   logger,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute}),
		detector: security.NewDetector(),
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	mux := http.NewServeMux()
	s.routes(mux)

	var h http.Handler = mux
	h = s.limiter.Middleware(s.detector.ExtractClientIP, s.onLimit)(h)
	h = cors.New(cors.Config{AllowedOrigins: cfg.AllowedOrigins, MaxAge: 600})(h)
	h = security.NewHeadersMiddleware(security.APIHeadersConfig()).Middleware(h)
	h = s.detector.Middleware(h)
	h = s.tracer.Middleware(h)
	s.Handler = h

	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	auth := func(h authenticated) http.HandlerFunc { return requireAuth(s.verifier, h) }
	l := s.ledger

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /api/{$}", s.handleBanner)

	mux.HandleFunc("POST /api/users/profile", auth(s.handleUpsertProfile))
	mux.HandleFunc("GET /api/users/profile", auth(s.handleGetProfile))

	mux.HandleFunc("POST /api/payment-methods", auth(createResource(l.PaymentMethods)))
	mux.HandleFunc("GET /api/payment-methods", auth(listResources(l.PaymentMethods)))
	mux.HandleFunc("PUT /api/payment-methods/{id}", auth(updateResource(l.PaymentMethods)))
	mux.HandleFunc("DELETE /api/payment-methods/{id}", auth(deleteResource(l.PaymentMethods)))

	mux.HandleFunc("POST /api/categories", auth(createResource(l.Categories)))
	mux.HandleFunc("GET /api/categories", auth(listResources(l.Categories)))
	mux.HandleFunc("PUT /api/categories/{id}", auth(updateResource(l.Categories)))
	mux.HandleFunc("DELETE /api/categories/{id}", auth(deleteResource(l.Categories)))

	mux.HandleFunc("POST /api/budgets", auth(createResource(l.Budgets)))
	mux.HandleFunc("GET /api/budgets", auth(listResources(l.Budgets)))
	mux.HandleFunc("PUT /api/budgets/{id}", auth(updateResource(l.Budgets)))
	mux.HandleFunc("DELETE /api/budgets/{id}", auth(deleteResource(l.Budgets)))

	mux.HandleFunc("POST /api/transactions", auth(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions", auth(s.handleListTransactions))
	mux.HandleFunc("DELETE /api/transactions/{id}", auth(s.handleDeleteTransaction))

	mux.HandleFunc("POST /api/suggest-icon", auth(s.handleSuggestIcon))
	mux.HandleFunc("GET /api/stats/summary", auth(s.handleSummary))
}

func (s *Server) onLimit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log.FromContext(ctx).WithComponent(log.ComponentRateLimit).WarnContext(ctx, "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.").Write(w)
}

// Metrics aggregates the middleware counters.
type Metrics struct {
	Requests              int64 `json:"requests"`
	AverageResponseMicros int64 `json:"averageResponseMicros"`
	RateLimited           int64 `json:"rateLimited"`
	ActiveClients         int64 `json:"activeClients"`
	SuspiciousRequests    int64 `json:"suspiciousRequests"`
}

func (s *Server) Metrics() Metrics {
	traced := s.tracer.GetMetrics()
	limited := s.limiter.GetMetrics()
	return Metrics{
		Requests:              traced.TotalRequests,
		AverageResponseMicros: traced.AverageResponseTime,
		RateLimited:           limited.TotalHits,
		ActiveClients:         limited.ClientCount,
		SuspiciousRequests:    s.detector.GetMetrics().SuspiciousRequests,
	}
}

// Shutdown gracefully shuts down the server and cleanup routines, then
// logs the request counters.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		shutdownErr = s.Server.Shutdown(ctx)
		m := s.Metrics()
		s.limiter.Stop()
		s.logger.Info("HTTP server stopped",
			"requests", m.Requests,
			"avg_response_us", m.AverageResponseMicros,
			"rate_limited", m.RateLimited,
			"active_clients", m.ActiveClients,
			"suspicious_requests", m.SuspiciousRequests)
	})
	return shutdownErr
}

// Close stops background work without waiting for in-flight requests.
func (s *Server) Close() error {
	s.limiter.Stop()
	return s.Server.Close()
}
