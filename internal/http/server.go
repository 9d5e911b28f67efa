package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"ledger/internal/log"
	"ledger/internal/middleware/ratelimit"
	"ledger/internal/middleware/security"
	"ledger/internal/middleware/trace"
)

// Config holds the transport settings of the server.
type Config struct {
	Addr string
	// Production redacts unexpected error messages and marks cookies Secure.
	Production    bool
	SessionMaxAge time.Duration
	// RateLimitPerMinute bounds writes per client, 0 disables it.
	RateLimitPerMinute int
}

type Server struct {
	http.Server

	ledger      TransactionService
	diagnostics Diagnostics
	logger      *log.Logger

	validator   *RequestValidator
	sessions    *SessionCookies
	errors      *ErrorTranslator
	detector    *security.Detector
	rateLimiter *ratelimit.Limiter
	tracer      *trace.Middleware

	startedAt    time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(cfg Config, ledger TransactionService, diagnostics Diagnostics, logger *log.Logger) *Server {
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
			MaxHeaderBytes:    1 << 16, // 64KB
		},
		ledger:      ledger,
		diagnostics: diagnostics,
		logger:      logger.WithComponent(log.ComponentHTTP),
		validator:   NewRequestValidator(),
		sessions:    NewSessionCookies(cfg.SessionMaxAge, cfg.Production),
		errors:      NewErrorTranslator(cfg.Production),
		detector:    security.NewDetector(),
		startedAt:   time.Now(),
	}
	s.tracer = trace.NewMiddleware(s.logger, s.detector.ExtractClientIP)

	if cfg.RateLimitPerMinute > 0 {
		s.rateLimiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute})
	}

	s.Handler = s.middleware(s.routes())
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = s.errors.NotFound()
	r.MethodNotAllowedHandler = s.errors.MethodNotAllowed()

	handle := s.errors.Handle

	r.Handle("/healthz", handle(s.handleHealth)).Methods(http.MethodGet)
	r.Handle("/readyz", handle(s.handleReady)).Methods(http.MethodGet)
	r.Handle("/db", handle(s.handleSchema)).Methods(http.MethodGet)

	// Kept on the root router; a PathPrefix subrouter answers wrong methods with 404.
	for _, root := range []string{"/transactions", "/transactions/"} {
		r.Handle(root, handle(s.sessions.Require(s.handleListTransactions))).Methods(http.MethodGet)
		r.Handle(root, s.limitWrites(handle(s.handleCreateTransaction))).Methods(http.MethodPost)
	}
	// summary must be registered before the id route
	r.Handle("/transactions/summary", handle(s.sessions.Require(s.handleSummary))).Methods(http.MethodGet)
	r.Handle("/transactions/{transactionId}", handle(s.sessions.Require(s.handleGetTransaction))).Methods(http.MethodGet)

	return r
}

// middleware wraps the router so that unmatched routes are traced too.
func (s *Server) middleware(h http.Handler) http.Handler {
	h = s.detector.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.errors.Recover(h)
	return s.tracer.Middleware(h)
}

func (s *Server) limitWrites(next http.Handler) http.Handler {
	if s.rateLimiter == nil {
		return next
	}
	return s.rateLimiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, s.detector.ExtractClientIP(r),
			log.FieldPath, r.URL.Path)
		s.errors.send(w, r, http.StatusTooManyRequests, applicationErrorBody{
			ErrorMessage: "Rate limit exceeded. Please try again later.",
		})
	})(next)
}

// Shutdown gracefully shuts down the server and its background routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}
