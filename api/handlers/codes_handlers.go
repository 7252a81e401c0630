package handlers

import (
	"net/http"

	"stpaul-crime/core/store"
	"stpaul-crime/core/utils"
)

type CodesHandler struct {
	codes  store.CodesStore
	logger *utils.Logger
}

func NewCodesHandler(codes store.CodesStore, logger *utils.Logger) *CodesHandler {
	return &CodesHandler{codes: codes, logger: logger}
}

func (h *CodesHandler) List(w http.ResponseWriter, r *http.Request) {
	codes, err := parseIntList(r, "code")
	if err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}
	items, err := h.codes.ListCodes(r.Context(), codes)
	if err != nil {
		writeStoreError(w, h.logger, "list codes", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}
