package api

import (
	"net/http"

	"stpaul-crime/api/handlers"

	"github.com/go-chi/chi/v5"
)

type routeHandlers struct {
	codes         *handlers.CodesHandler
	neighborhoods *handlers.NeighborhoodsHandler
	incidents     *handlers.IncidentsHandler
	health        *handlers.HealthHandler
	audit         *handlers.AuditHandler
}

func (s *Server) newRouteHandlers() routeHandlers {
	h := routeHandlers{
		codes:         handlers.NewCodesHandler(s.codes, s.logger),
		neighborhoods: handlers.NewNeighborhoodsHandler(s.neighborhoods, s.logger),
		incidents:     handlers.NewIncidentsHandler(&s.cfg.Incidents, s.incidentsSvc, s.logger),
		audit:         handlers.NewAuditHandler(s.audits, s.logger),
	}
	if s.db != nil {
		h.health = handlers.NewHealthHandler(s.db, s.logger)
	} else {
		h.health = handlers.NewHealthHandler(nil, s.logger)
	}
	return h
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.recoverMiddleware)
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	if s.metrics != nil {
		r.Use(s.metrics.middleware)
	}
	r.Use(s.securityHeadersMiddleware)
	r.Use(s.bodyLimitMiddleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteError(w, http.StatusNotFound, "route.not_found", "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteError(w, http.StatusMethodNotAllowed, "route.method_not_allowed", r.Method+" is not allowed on "+r.URL.Path)
	})

	h := s.newRouteHandlers()
	r.MethodFunc("GET", "/codes", h.codes.List)
	r.MethodFunc("GET", "/neighborhoods", h.neighborhoods.List)
	r.MethodFunc("GET", "/incidents", h.incidents.List)
	r.MethodFunc("PUT", "/new-incident", h.incidents.Create)
	r.MethodFunc("DELETE", "/remove-incident", h.incidents.Remove)
	r.MethodFunc("GET", "/healthz", h.health.Check)
	if s.audits != nil {
		r.MethodFunc("GET", "/audit", h.audit.List)
		r.MethodFunc("GET", "/audit/export", h.audit.Export)
	}
	if s.metrics != nil {
		r.Method("GET", "/metrics", s.metrics.handler())
	}
	return r
}
