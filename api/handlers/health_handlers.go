package handlers

import (
	"context"
	"net/http"
	"time"

	"stpaul-crime/core/utils"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db      Pinger
	logger  *utils.Logger
	timeout time.Duration
}

func NewHealthHandler(db Pinger, logger *utils.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger, timeout: 2 * time.Second}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		WriteError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "database not configured")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		if h.logger != nil {
			h.logger.Errorf("health ping: %v", err)
		}
		WriteError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "database unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
