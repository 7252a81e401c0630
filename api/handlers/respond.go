package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"stpaul-crime/core/incidents"
	"stpaul-crime/core/store"
	"stpaul-crime/core/utils"
)

const (
	ErrCodeInvalidRequest   = "request.invalid"
	ErrCodeTooLarge         = "request.too_large"
	ErrCodeDuplicate        = "incidents.duplicate"
	ErrCodeInvalidReference = "incidents.invalid_reference"
	ErrCodeNotFound         = "incidents.not_found"
	ErrCodeInternal         = "server.internal"
	ErrCodeUnavailable      = "server.unavailable"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// WriteError writes the {"error":{"code","message"}} body used by every
// failing response.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]errorBody{"error": {Code: code, Message: message}})
}

// writeStoreError maps domain errors to client statuses. Anything else is
// logged and reported as a generic 500.
func writeStoreError(w http.ResponseWriter, logger *utils.Logger, op string, err error) {
	var verr *incidents.ValidationError
	switch {
	case errors.As(err, &verr):
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, verr.Error())
	case errors.Is(err, store.ErrDuplicate):
		WriteError(w, http.StatusConflict, ErrCodeDuplicate, "an incident with this case number already exists")
	case errors.Is(err, store.ErrInvalidReference):
		WriteError(w, http.StatusUnprocessableEntity, ErrCodeInvalidReference, "code or neighborhood_number does not exist")
	case errors.Is(err, store.ErrNotFound):
		WriteError(w, http.StatusNotFound, ErrCodeNotFound, "no incident with this case number")
	default:
		if logger != nil {
			logger.Errorf("%s: %v", op, err)
		}
		WriteError(w, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
	}
}

// decodeBody reads a JSON request body. It returns false after writing the
// error response.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil || r.Body == http.NoBody {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "request body is required")
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, http.StatusRequestEntityTooLarge, ErrCodeTooLarge, "request body too large")
			return false
		}
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}
