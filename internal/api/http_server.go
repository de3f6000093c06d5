// Package api exposes the booking engine over HTTP.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"appointd/internal/config"
	"appointd/internal/domain"
	"appointd/internal/metrics"
	"appointd/internal/worker"

	"github.com/rs/zerolog"
)

// HTTPServer wires the booking services into HTTP routes.
type HTTPServer struct {
	cfg             config.ServerConfig
	bookings        domain.BookingService
	travel          domain.TravelService
	store           domain.Store
	watcher         *worker.ReconnectWatcher
	emailConfigured bool
	logger          *zerolog.Logger
	server          *http.Server
	limiter         *rateLimiter
}

type Options struct {
	Config          config.ServerConfig
	Bookings        domain.BookingService
	Travel          domain.TravelService
	Store           domain.Store
	Watcher         *worker.ReconnectWatcher
	EmailConfigured bool
	Logger          *zerolog.Logger
}

func NewHTTPServer(opts Options) *HTTPServer {
	srv := &HTTPServer{
		cfg:             opts.Config,
		bookings:        opts.Bookings,
		travel:          opts.Travel,
		store:           opts.Store,
		watcher:         opts.Watcher,
		emailConfigured: opts.EmailConfigured,
		logger:          opts.Logger,
		limiter:         newRateLimiter(opts.Config.RateLimit),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/bookings", srv.handleBookings)
	mux.HandleFunc("/api/v1/bookings/available-slots", srv.handleSlots)
	mux.HandleFunc("/api/v1/bookings/export", srv.handleExport)
	mux.HandleFunc("/api/v1/bookings/", srv.handleBookingByID)
	mux.HandleFunc("/api/v1/travel-bookings", srv.handleTravelBookings)
	mux.HandleFunc("/api/v1/travel-bookings/", srv.handleTravelBookingByID)
	mux.HandleFunc("/api/v1/health", srv.handleHealth)
	mux.HandleFunc("/api/v1/reconnect", srv.handleReconnect)
	mux.HandleFunc("/healthz", srv.handleLiveness)
	mux.HandleFunc("/readyz", srv.handleReadiness)

	handler := srv.loggingMiddleware(srv.limiter.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Config.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

// Handler exposes the composed handler for tests.
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

// handleHealth reports overall health plus per-dependency detail. A
// broken database arms the reconnect supervisor so probing the endpoint
// doubles as the recovery trigger.
func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	dbStatus := s.store.Status(r.Context())
	if dbStatus != "connected" && s.watcher != nil {
		if s.watcher.Arm() {
			s.logger.Warn().Str("database", dbStatus).Msg("health probe armed the reconnect supervisor")
		}
	}

	status := "healthy"
	if dbStatus != "connected" {
		status = "degraded"
	}

	email := "configured"
	if !s.emailConfigured {
		email = "not_configured"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":        status,
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
		"database":      dbStatus,
		"email_service": email,
	})
}

// handleReconnect forces an immediate reconnect attempt outside the
// watcher's schedule.
func (s *HTTPServer) handleReconnect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if s.store.IsConnected() && s.store.Ping(r.Context()) == nil {
		writeJSON(w, http.StatusOK, map[string]any{"status": "connected"})
		return
	}

	if s.store.Connect(r.Context(), 1, time.Second) {
		metrics.IncStoreReconnect()
		writeJSON(w, http.StatusOK, map[string]any{"status": "reconnected"})
		return
	}

	if s.watcher != nil {
		s.watcher.Arm()
	}
	writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable"})
}

func (s *HTTPServer) handleLiveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReadiness answers ready only with a live database; the service
// still serves degraded traffic either way.
func (s *HTTPServer) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if !s.store.IsConnected() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		metrics.IncHTTP(endpointLabel(r.URL.Path))
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

// endpointLabel collapses id-bearing paths to keep metric cardinality flat.
func endpointLabel(path string) string {
	switch {
	case path == "/api/v1/bookings/export", path == "/api/v1/bookings/available-slots":
		return path
	case strings.HasPrefix(path, "/api/v1/bookings/"):
		return "/api/v1/bookings/{id}"
	case strings.HasPrefix(path, "/api/v1/travel-bookings/"):
		return "/api/v1/travel-bookings/{id}"
	default:
		return path
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
