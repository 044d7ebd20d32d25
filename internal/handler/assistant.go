package handler

import (
	"encoding/json"
	"net/http"
)

type assistantRequest struct {
	Message string `json:"message"`
}

type assistantResponse struct {
	Reply string `json:"reply"`
}

// askAssistant forwards the staff query together with a point-in-time
// snapshot of the menu and the active tabs. The snapshot may be stale by
// one mutation if a tab changes while the request is in flight; that is
// acceptable for advisory text.
func (h *Handler) askAssistant(w http.ResponseWriter, r *http.Request) {
	var req assistantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		writeError(w, r, http.StatusBadRequest, "message required")
		return
	}

	reply := h.assistant.Ask(r.Context(), req.Message, h.store.Catalog().List(), h.store.ActiveTabs())
	writeJSON(w, r, http.StatusOK, assistantResponse{Reply: reply})
}
