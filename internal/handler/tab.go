package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/xenking/bartab/internal/domain/tab"
)

type createTabRequest struct {
	TableNumber  string `json:"tableNumber"`
	CustomerName string `json:"customerName"`
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	// Quantity defaults to 1 when omitted.
	Quantity *int `json:"quantity"`
}

// tabDetailResponse is a tab plus its derived views. Totals are rounded
// to two decimal places here, at the presentation boundary only.
type tabDetailResponse struct {
	tab.Tab
	Total        decimal.Decimal   `json:"total"`
	GroupedItems []tab.GroupedLine `json:"groupedItems"`
}

func detailOf(t tab.Tab) tabDetailResponse {
	grouped := t.GroupItems()
	for i := range grouped {
		grouped[i].LineTotal = grouped[i].LineTotal.Round(2)
	}
	return tabDetailResponse{
		Tab:          t,
		Total:        t.Total().Round(2),
		GroupedItems: grouped,
	}
}

func (h *Handler) createTab(w http.ResponseWriter, r *http.Request) {
	var req createTabRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.store.CreateTab(r.Context(), req.TableNumber, req.CustomerName)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, t)
}

func (h *Handler) listTabs(w http.ResponseWriter, r *http.Request) {
	switch view := r.URL.Query().Get("view"); view {
	case "", "active":
		writeJSON(w, r, http.StatusOK, h.store.ActiveTabs())
	case "history":
		writeJSON(w, r, http.StatusOK, h.store.History())
	default:
		writeError(w, r, http.StatusBadRequest, "view must be active or history")
	}
}

func (h *Handler) getTab(w http.ResponseWriter, r *http.Request) {
	t, err := h.store.GetTab(chi.URLParam(r, "tabID"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, detailOf(t))
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	item, err := h.store.AddItem(r.Context(), chi.URLParam(r, "tabID"), req.ProductID, quantity)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, item)
}

func (h *Handler) closeTab(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, tab.StatusClosed)
}

func (h *Handler) payTab(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, tab.StatusPaid)
}

func (h *Handler) reopenTab(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, tab.StatusOpen)
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request, status tab.Status) {
	t, err := h.store.SetStatus(r.Context(), chi.URLParam(r, "tabID"), status)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, t)
}

func (h *Handler) deleteTab(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteTab(r.Context(), chi.URLParam(r, "tabID")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
