package handlers

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"
	"time"

	"stpaul-crime/core/store"
	"stpaul-crime/core/utils"
)

const (
	auditDefaultLimit = 100
	auditMaxLimit     = 5000
)

type AuditHandler struct {
	audits store.AuditStore
	logger *utils.Logger
}

func NewAuditHandler(audits store.AuditStore, logger *utils.Logger) *AuditHandler {
	return &AuditHandler{audits: audits, logger: logger}
}

func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseAuditFilter(r, auditDefaultLimit)
	if err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}
	items, err := h.audits.List(r.Context(), filter)
	if err != nil {
		writeStoreError(w, h.logger, "list audit log", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *AuditHandler) Export(w http.ResponseWriter, r *http.Request) {
	filter, err := parseAuditFilter(r, auditMaxLimit)
	if err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}
	items, err := h.audits.List(r.Context(), filter)
	if err != nil {
		writeStoreError(w, h.logger, "export audit log", err)
		return
	}
	filename := "audit_log_" + time.Now().UTC().Format("20060102_150405") + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.WriteHeader(http.StatusOK)
	writer := csv.NewWriter(w)
	_ = writer.Write([]string{"id", "time", "action", "details"})
	for i := range items {
		_ = writer.Write([]string{
			strconv.FormatInt(items[i].ID, 10),
			items[i].CreatedAt.UTC().Format(time.RFC3339),
			items[i].Action,
			items[i].Details,
		})
	}
	writer.Flush()
}

func parseAuditFilter(r *http.Request, defaultLimit int) (store.AuditFilter, error) {
	q := r.URL.Query()
	filter := store.AuditFilter{
		Action: strings.ToLower(strings.TrimSpace(q.Get("action"))),
		Limit:  defaultLimit,
	}
	if rawSince := strings.TrimSpace(q.Get("since")); rawSince != "" {
		parsed, err := parseDateTime(rawSince)
		if err != nil {
			return filter, err
		}
		filter.Since = parsed.UTC()
	}
	if rawLimit := strings.TrimSpace(q.Get("limit")); rawLimit != "" {
		limit, err := parseLimit(r)
		if err != nil {
			return filter, err
		}
		filter.Limit = limit
	}
	if filter.Limit > auditMaxLimit {
		filter.Limit = auditMaxLimit
	}
	return filter, nil
}

func parseDateTime(raw string) (time.Time, error) {
	val := strings.TrimSpace(raw)
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, val); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, &parseError{field: "since", value: val}
}

type parseError struct {
	field string
	value string
}

func (e *parseError) Error() string {
	return e.field + ": unrecognized date/time " + strconv.Quote(e.value)
}
