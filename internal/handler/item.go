package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/gift-registry/internal/repository"
	"github.com/sakif/gift-registry/internal/service"
)

// ItemHandler serves single-item reads and writes. Items are created via
// the wishlist sub-route; everything else is addressed by item ID.
type ItemHandler struct {
	wishlists *service.WishlistService
	users     repository.UserRepository
	logger    *slog.Logger
}

// NewItemHandler creates an ItemHandler.
func NewItemHandler(wishlists *service.WishlistService, users repository.UserRepository, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{wishlists: wishlists, users: users, logger: logger}
}

// HandleGet returns one item as the caller sees it.
//
// HTTP: GET /api/items/{id}
func (h *ItemHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r, h.users)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	item, err := h.wishlists.GetItem(r.Context(), viewer, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// HandleUpdate modifies an item.
//
// HTTP: PUT /api/items/{id}
func (h *ItemHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r, h.users)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	item, err := h.wishlists.UpdateItem(r.Context(), viewer, id, req.Name, req.Description, req.URL, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// HandleDelete removes an item.
//
// HTTP: DELETE /api/items/{id}
func (h *ItemHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r, h.users)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.wishlists.DeleteItem(r.Context(), viewer, id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
