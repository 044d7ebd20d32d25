package handler

import (
	"encoding/json"
	"net/http"

	"github.com/xenking/bartab/internal/domain/product"
)

func (h *Handler) listMenu(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.store.Catalog().List())
}

// addProduct appends a new product to the catalog. Existing entries can
// never be edited or removed, so historical order snapshots stay valid.
func (h *Handler) addProduct(w http.ResponseWriter, r *http.Request) {
	var p product.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.store.Catalog().Add(p); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, p)
}
