package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"moneytracker/internal/amqp"
	"moneytracker/internal/log"
	"moneytracker/internal/metrics"
	"moneytracker/internal/middleware/ratelimit"
	"moneytracker/internal/middleware/security"
	"moneytracker/internal/services"
)

// AlertHistory lists the spending alerts received from the broker.
type AlertHistory interface {
	Recent(ctx context.Context) ([]amqp.AlertMessage, error)
}

type Server struct {
	http.Server
	tracker *services.TrackerService
	alerts  AlertHistory
	limiter *ratelimit.Limiter
	logger  *log.Logger

	shutdownOnce sync.Once
}

type Option func(*Server)

// WithAlertHistory enables GET /api/alerts.
func WithAlertHistory(h AlertHistory) Option {
	return func(s *Server) { s.alerts = h }
}

// WithRateLimit replaces the default per-client limit on mutating requests.
func WithRateLimit(cfg ratelimit.Config) Option {
	return func(s *Server) {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		s.limiter = ratelimit.NewLimiter(cfg)
	}
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, tracker *services.TrackerService, logger *log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = log.Discard()
	}
	s := &Server{
		tracker: tracker,
		limiter: ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		logger:  logger.WithComponent(log.ComponentHTTP),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(log.Middleware(s.logger, func(r *http.Request) string { return middleware.GetReqID(r.Context()) }))
	r.Use(middleware.Recoverer)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)

	r.Get("/healthz", handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	limited := s.limiter.Middleware(clientIP, s.onRateLimited)

	r.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/daily", s.handleDailySpending)
		r.Get("/calendar", s.handleCalendar)
		r.Get("/days/{date}", s.handleDayDetails)
		r.Get("/goals", s.handleListGoals)
		r.Get("/limits", s.handleGetLimits)
		r.Get("/limits/check", s.handleCheckLimits)
		r.Get("/reports/preview", s.handleGetPreview)
		r.Get("/reports/{period}", s.handleReport)
		r.Get("/reports/{period}/csv", s.handleReportCSV)
		r.Get("/alerts", s.handleAlerts)

		r.Group(func(r chi.Router) {
			r.Use(limited)
			r.Post("/expenses", s.handleCreateExpense)
			r.Post("/expenses/quick", s.handleQuickExpense)
			r.Post("/income", s.handleCreateIncome)
			r.Post("/goals", s.handleCreateGoal)
			r.Post("/goals/{id}/progress", s.handleAddGoalProgress)
			r.Put("/goals/{id}/progress", s.handleSetGoalProgress)
			r.Delete("/goals/{id}", s.handleDeleteGoal)
			r.Put("/limits", s.handleSaveLimits)
			r.Post("/reports/preview/select", s.handleSelectPreview)
			r.Post("/reports/preview/generate", s.handleGeneratePreview)
			r.Post("/prune", s.handlePrune)
			r.Post("/reset", s.handleReset)
		})
	})

	return r
}

// clientIP keys the limiter; RealIP has already rewritten RemoteAddr.
func clientIP(r *http.Request) string {
	return r.RemoteAddr
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	metrics.RateLimited.Inc()
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, r.RemoteAddr, log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.").Write(w)
}

// Shutdown gracefully shuts down the server and the limiter's cleanup loop.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
