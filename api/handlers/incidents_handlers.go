package handlers

import (
	"net/http"

	"stpaul-crime/config"
	"stpaul-crime/core/incidents"
	"stpaul-crime/core/store"
	"stpaul-crime/core/utils"
)

const (
	createdMessage = "Success!"
	removedMessage = "You successfully deleted the incident"
)

type IncidentsHandler struct {
	cfg    *config.IncidentsConfig
	svc    *incidents.Service
	logger *utils.Logger
}

func NewIncidentsHandler(cfg *config.IncidentsConfig, svc *incidents.Service, logger *utils.Logger) *IncidentsHandler {
	return &IncidentsHandler{cfg: cfg, svc: svc, logger: logger}
}

func (h *IncidentsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parseFilter(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}
	items, err := h.svc.List(r.Context(), filter)
	if err != nil {
		writeStoreError(w, h.logger, "list incidents", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *IncidentsHandler) parseFilter(r *http.Request) (store.IncidentFilter, error) {
	var (
		filter store.IncidentFilter
		err    error
	)
	if filter.Neighborhoods, err = parseIntList(r, "neighborhood"); err != nil {
		return filter, err
	}
	if filter.Codes, err = parseIntList(r, "code"); err != nil {
		return filter, err
	}
	if filter.Grids, err = parseIntList(r, "grid"); err != nil {
		return filter, err
	}
	q := r.URL.Query()
	if filter.StartDate, err = incidents.ParseDateBound("start_date", q.Get("start_date")); err != nil {
		return filter, err
	}
	if filter.EndDate, err = incidents.ParseDateBound("end_date", q.Get("end_date")); err != nil {
		return filter, err
	}
	limit, err := parseLimit(r)
	if err != nil {
		return filter, err
	}
	filter.Limit = h.cfg.EffectiveLimit(limit)
	return filter, nil
}

func (h *IncidentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req incidents.NewIncidentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if _, err := h.svc.Create(r.Context(), req); err != nil {
		writeStoreError(w, h.logger, "create incident", err)
		return
	}
	writeText(w, http.StatusOK, createdMessage)
}

func (h *IncidentsHandler) Remove(w http.ResponseWriter, r *http.Request) {
	var req incidents.RemoveIncidentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.svc.Remove(r.Context(), string(req.CaseNumber)); err != nil {
		writeStoreError(w, h.logger, "remove incident", err)
		return
	}
	writeText(w, http.StatusOK, removedMessage)
}
