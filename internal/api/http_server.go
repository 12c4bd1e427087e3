package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"zaimka/internal/config"
	"zaimka/internal/database"
	"zaimka/internal/metrics"
	"zaimka/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// ExportEnqueuer accepts export tasks for background processing.
type ExportEnqueuer interface {
	EnqueueExport(companySlug string, from, to time.Time) (string, error)
}

// HTTPServer exposes the public booking API and the owner dashboard API.
type HTTPServer struct {
	cfg      *config.Config
	db       *database.DB
	sessions repository.SessionRepository
	exports  ExportEnqueuer
	logger   *zerolog.Logger
	server   *http.Server
	limiters sync.Map // map[string]*rate.Limiter
}

func NewHTTPServer(cfg *config.Config, db *database.DB, sessions repository.SessionRepository, exports ExportEnqueuer, logger *zerolog.Logger) *HTTPServer {
	srv := &HTTPServer{
		cfg:      cfg,
		db:       db,
		sessions: sessions,
		exports:  exports,
		logger:   logger,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", srv.handleHealthz)
	mux.HandleFunc("GET /readyz", srv.handleReadyz)

	// Public booking surface.
	mux.HandleFunc("GET /v1/cabins/{slug}", srv.handleGetCabin)
	mux.HandleFunc("GET /v1/cabins/{slug}/calendar", srv.handleGetCalendar)
	mux.HandleFunc("POST /v1/cabins/{slug}/book", srv.handleBook)
	mux.HandleFunc("GET /v1/legends/company/{slug}", srv.handlePublicLegends)

	// Owner surface, bearer-token auth.
	mux.HandleFunc("POST /v1/auth/login", srv.handleLogin)
	mux.HandleFunc("POST /v1/auth/logout", srv.withSession(srv.handleLogout))
	mux.HandleFunc("GET /v1/cabins", srv.withSession(srv.handleListCabins))
	mux.HandleFunc("POST /v1/cabins", srv.withSession(srv.handleCreateCabin))
	mux.HandleFunc("PUT /v1/cabins/{slug}", srv.withSession(srv.handleUpdateCabin))
	mux.HandleFunc("GET /v1/cabins/{slug}/bookings", srv.withSession(srv.handleListBookings))
	mux.HandleFunc("POST /v1/cabins/{slug}/block", srv.withSession(srv.handleBlockDate))
	mux.HandleFunc("DELETE /v1/cabins/{slug}/block", srv.withSession(srv.handleUnblockDate))
	mux.HandleFunc("POST /v1/bookings/{id}/approve", srv.withSession(srv.handleApproveBooking))
	mux.HandleFunc("POST /v1/bookings/{id}/reject", srv.withSession(srv.handleRejectBooking))
	mux.HandleFunc("GET /v1/legends", srv.withSession(srv.handleListLegends))
	mux.HandleFunc("POST /v1/legends", srv.withSession(srv.handleCreateLegend))
	mux.HandleFunc("PUT /v1/legends/{id}", srv.withSession(srv.handleUpdateLegend))
	mux.HandleFunc("DELETE /v1/legends/{id}", srv.withSession(srv.handleDeleteLegend))
	mux.HandleFunc("POST /v1/exports/bookings", srv.withSession(srv.handleExportBookings))

	handler := srv.loggingMiddleware(srv.rateLimitMiddleware(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

// Handler returns the root handler with middleware applied. Tests mount it
// on httptest servers.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		dur := time.Since(start)

		metrics.IncHTTP(r.Method + " " + r.URL.Path)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", dur).
			Msg("http request")
	})
}

func (s *HTTPServer) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.RateLimit.RPS > 0 {
			lim := s.getLimiter(s.clientKey(r))
			if !lim.Allow() {
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// clientKey identifies a caller for rate limiting: the bearer token when
// present, the remote host otherwise.
func (s *HTTPServer) clientKey(r *http.Request) string {
	if auth := strings.TrimSpace(r.Header.Get("Authorization")); auth != "" {
		return auth
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return "unknown"
}

func (s *HTTPServer) getLimiter(key string) *rate.Limiter {
	if v, ok := s.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}

	burst := s.cfg.RateLimit.Burst
	if burst <= 0 {
		burst = 5
	}

	lim := rate.NewLimiter(rate.Limit(s.cfg.RateLimit.RPS), burst)
	actual, loaded := s.limiters.LoadOrStore(key, lim)
	if loaded {
		return actual.(*rate.Limiter)
	}
	return lim
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"message": message})
}

func writeErrorDetails(w http.ResponseWriter, statusCode int, message string, details any) {
	writeJSON(w, statusCode, map[string]any{"message": message, "details": details})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
