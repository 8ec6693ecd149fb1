package gameserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"tiergate/internal/application"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the HTTP surface gameservers talk to.
type Server struct {
	cfg      *Config
	services *application.Service
	db       Pinger
	registry *prometheus.Registry
	metrics  *Metrics
	logger   application.Logger

	handler http.Handler
	srv     *http.Server
}

func NewServer(cfg *Config, services *application.Service, db Pinger, registry *prometheus.Registry, logger application.Logger) *Server {
	return &Server{
		cfg:      cfg,
		services: services,
		db:       db,
		registry: registry,
		metrics:  NewMetrics(registry),
		logger:   logger,
	}
}

func (s *Server) Init() error {
	if s.cfg.APIToken == "" {
		return fmt.Errorf("gameserver: API token is not configured")
	}

	limiter := newClientLimiter(s.cfg.RateLimitRPS, s.cfg.RateLimitBurst)
	// authorization runs before the body is read, the body before any lookup
	api := func(h http.HandlerFunc) http.Handler {
		return chain(h,
			RateLimit(limiter),
			Authorize(s.cfg.APIToken),
			MaxBodyBytes(s.cfg.MaxBodyBytes),
			RequirePlayerID,
		)
	}

	mux := http.NewServeMux()
	mux.Handle("POST /isValidPlayer", api(s.handleIsValidPlayer))
	mux.Handle("POST /requestCode", api(s.handleRequestCode))
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	s.handler = chain(mux, s.metrics.Instrument, Logging(s.logger), Recover(s.logger))
	writeTimeout := s.cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}
	s.srv = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
	}
	return nil
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("Gameserver API listening on %s", s.cfg.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Stop() {
	if s.srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		s.logger.Error("Gameserver API shutdown: %v", err)
	}
}
