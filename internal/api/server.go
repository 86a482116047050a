// Package api exposes the booking service over HTTP with JSON bodies.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"loungebook/internal/auth"
	"loungebook/internal/config"
	"loungebook/internal/directory"
	"loungebook/internal/ledger"
	"loungebook/internal/models"
)

// Server routes HTTP requests to the directory and the booking ledger.
type Server struct {
	directory *directory.Directory
	ledger    *ledger.Ledger
	provider  auth.Provider
	config    config.ServerConfig
	server    *http.Server
	limiter   *rate.Limiter
	log       zerolog.Logger
}

// NewServer builds the HTTP server with all routes registered.
func NewServer(dir *directory.Directory, led *ledger.Ledger, provider auth.Provider, cfg config.ServerConfig, logger zerolog.Logger) *Server {
	s := &Server{
		directory: dir,
		ledger:    led,
		provider:  provider,
		config:    cfg,
		log:       logger.With().Str("component", "api").Logger(),
	}

	if cfg.RateLimit.Enabled {
		rps := cfg.RateLimit.RPS
		if rps <= 0 {
			rps = 50
		}
		burst := cfg.RateLimit.Burst
		if burst <= 0 {
			burst = 100
		}
		s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/auth", s.handleAuth)
	mux.HandleFunc("/bookings", s.handleBookings)
	mux.HandleFunc("/bookings/export", s.handleBookingsExport)
	mux.HandleFunc("/session", s.handleSession)
	mux.HandleFunc("/session/", s.handleSession)

	s.server = &http.Server{
		Addr:              cfg.Address,
		Handler:           s.middleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the root handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start serves until the context is cancelled, then shuts down.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(ctxShutdown)
	}()

	s.log.Info().Str("address", s.config.Address).Msg("HTTP server started")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// middleware applies CORS headers, preflight handling and rate limiting
// to every route.
func (s *Server) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := s.config.CORSOrigin
		if origin == "" {
			origin = "*"
		}
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		if s.limiter != nil && !s.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeDomainError maps directory/ledger errors onto HTTP statuses.
// Anything that is not a known domain error is a storage fault and
// surfaces as a generic 500.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	var (
		validationErr *models.ValidationError
		conflictErr   *models.ConflictError
		notFoundErr   *models.NotFoundError
	)
	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, validationErr.Message)
	case errors.As(err, &conflictErr):
		writeError(w, http.StatusConflict, conflictErr.Error())
	case errors.As(err, &notFoundErr):
		writeError(w, http.StatusNotFound, notFoundErr.Error())
	default:
		s.log.Error().Err(err).Msg("internal error")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
