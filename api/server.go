package api

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"stpaul-crime/config"
	"stpaul-crime/core/incidents"
	"stpaul-crime/core/store"
	"stpaul-crime/core/utils"

	"github.com/go-chi/chi/v5"
)

// BackgroundWorker is started with the server and stopped during shutdown.
type BackgroundWorker interface {
	StartWithContext(ctx context.Context)
	StopWithContext(ctx context.Context) error
}

type ServerDeps struct {
	DB            *sql.DB
	Codes         store.CodesStore
	Neighborhoods store.NeighborhoodsStore
	Audits        store.AuditStore
	IncidentsSvc  *incidents.Service
}

type Server struct {
	cfg           *config.AppConfig
	logger        *utils.Logger
	db            *sql.DB
	codes         store.CodesStore
	neighborhoods store.NeighborhoodsStore
	audits        store.AuditStore
	incidentsSvc  *incidents.Service
	metrics       *httpMetrics
	router        chi.Router
	httpServer    *http.Server
}

func NewServer(cfg *config.AppConfig, deps ServerDeps, logger *utils.Logger) *Server {
	if cfg == nil {
		cfg = &config.AppConfig{}
	}
	s := &Server{
		cfg:           cfg,
		logger:        logger,
		db:            deps.DB,
		codes:         deps.Codes,
		neighborhoods: deps.Neighborhoods,
		audits:        deps.Audits,
		incidentsSvc:  deps.IncidentsSvc,
	}
	if cfg.Server.MetricsEnabled {
		s.metrics = newHTTPMetrics()
	}
	s.router = s.routes()
	addr := cfg.ListenAddr
	if addr == "" {
		addr = "0.0.0.0:8000"
	}
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// ListenAndServe blocks until the server stops. A graceful Shutdown is not
// reported as an error.
func (s *Server) ListenAndServe() error {
	if s.logger != nil {
		s.logger.Printf("listening on %s", s.httpServer.Addr)
	}
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
