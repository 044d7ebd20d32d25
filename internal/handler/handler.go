// Package handler is the REST presentation adapter over the tab store.
// It owns no business state: every route decodes input, delegates to the
// store or the assistant, and maps domain errors to status codes.
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/bartab/internal/domain/product"
	"github.com/xenking/bartab/internal/domain/tab"
)

// Assistant is the chat collaborator the /api/assistant route forwards
// to. It returns displayable text and never fails.
type Assistant interface {
	Ask(ctx context.Context, query string, menu []product.Product, tabs []tab.Tab) string
}

// Handler wires the tab store and the assistant into an HTTP router.
type Handler struct {
	store     *tab.Store
	assistant Assistant
}

// New constructs a Handler with the required collaborators.
func New(store *tab.Store, assistant Assistant) *Handler {
	return &Handler{
		store:     store,
		assistant: assistant,
	}
}

// Router mounts all API routes.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/menu", h.listMenu)
		r.Post("/menu", h.addProduct)

		r.Route("/tabs", func(r chi.Router) {
			r.Get("/", h.listTabs)
			r.Post("/", h.createTab)
			r.Route("/{tabID}", func(r chi.Router) {
				r.Get("/", h.getTab)
				r.Delete("/", h.deleteTab)
				r.Post("/items", h.addItem)
				r.Post("/close", h.closeTab)
				r.Post("/pay", h.payTab)
				r.Post("/reopen", h.reopenTab)
			})
		})

		r.Post("/assistant", h.askAssistant)
	})
	return r
}

// errorResponse is the uniform error body.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zctx.From(r.Context()).Error("Encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, errorResponse{Code: status, Message: msg})
}

// writeDomainError maps store and catalog errors to HTTP responses.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, tab.ErrTabNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, product.ErrNotFound):
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, tab.ErrTableNumberRequired),
		errors.Is(err, tab.ErrInvalidQuantity),
		errors.Is(err, tab.ErrInvalidStatus),
		errors.Is(err, product.ErrInvalidProduct):
		writeError(w, r, http.StatusBadRequest, err.Error())
	default:
		zctx.From(r.Context()).Error("Request failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
