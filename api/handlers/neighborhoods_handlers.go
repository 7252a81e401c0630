package handlers

import (
	"net/http"

	"stpaul-crime/core/store"
	"stpaul-crime/core/utils"
)

type NeighborhoodsHandler struct {
	neighborhoods store.NeighborhoodsStore
	logger        *utils.Logger
}

func NewNeighborhoodsHandler(neighborhoods store.NeighborhoodsStore, logger *utils.Logger) *NeighborhoodsHandler {
	return &NeighborhoodsHandler{neighborhoods: neighborhoods, logger: logger}
}

func (h *NeighborhoodsHandler) List(w http.ResponseWriter, r *http.Request) {
	ids, err := parseIntList(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}
	items, err := h.neighborhoods.ListNeighborhoods(r.Context(), ids)
	if err != nil {
		writeStoreError(w, h.logger, "list neighborhoods", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}
