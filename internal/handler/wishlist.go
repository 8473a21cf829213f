package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/gift-registry/internal/apperror"
	"github.com/sakif/gift-registry/internal/model"
	"github.com/sakif/gift-registry/internal/repository"
	"github.com/sakif/gift-registry/internal/service"
)

// WishlistHandler serves wishlist CRUD and the item sub-routes under a
// wishlist.
type WishlistHandler struct {
	wishlists *service.WishlistService
	users     repository.UserRepository
	logger    *slog.Logger
}

// NewWishlistHandler creates a WishlistHandler.
func NewWishlistHandler(wishlists *service.WishlistService, users repository.UserRepository, logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{wishlists: wishlists, users: users, logger: logger}
}

type wishlistRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Visibility  model.Visibility `json:"visibility"`
}

// HandleCreate creates a wishlist owned by the caller.
//
// HTTP: POST /api/wishlists
func (h *WishlistHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r, h.users)
	if !ok {
		return
	}

	var req wishlistRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	list, err := h.wishlists.Create(r.Context(), viewer, req.Name, req.Description, req.Visibility)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, list)
}

// HandleList returns wishlists. With ?owner=<id> it lists another user's
// visible lists; without it, the caller's own.
//
// HTTP: GET /api/wishlists[?owner=123]
func (h *WishlistHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r, h.users)
	if !ok {
		return
	}

	ownerID := viewer.ID
	if raw := r.URL.Query().Get("owner"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			writeError(w, apperror.ValidationFailed("owner", "must be a positive integer"))
			return
		}
		ownerID = parsed
	}

	lists, err := h.wishlists.ListByOwner(r.Context(), viewer, ownerID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, lists)
}

// HandleListByUser returns another user's wishlists, filtered to what the
// caller may see.
//
// HTTP: GET /api/users/{id}/wishlists
func (h *WishlistHandler) HandleListByUser(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r, h.users)
	if !ok {
		return
	}

	ownerID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	lists, err := h.wishlists.ListByOwner(r.Context(), viewer, ownerID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, lists)
}

// HandleGet returns a single wishlist.
//
// HTTP: GET /api/wishlists/{id}
func (h *WishlistHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r, h.users)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	list, err := h.wishlists.Get(r.Context(), viewer, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// HandleUpdate modifies a wishlist.
//
// HTTP: PUT /api/wishlists/{id}
func (h *WishlistHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r, h.users)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req wishlistRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	list, err := h.wishlists.Update(r.Context(), viewer, id, req.Name, req.Description, req.Visibility)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// HandleDelete removes a wishlist and everything under it.
//
// HTTP: DELETE /api/wishlists/{id}
func (h *WishlistHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r, h.users)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.wishlists.Delete(r.Context(), viewer, id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type itemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Amount      int64  `json:"amount"`
}

// HandleAddItem creates an item on the wishlist.
//
// HTTP: POST /api/wishlists/{id}/items
func (h *WishlistHandler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r, h.users)
	if !ok {
		return
	}

	wishlistID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	item, err := h.wishlists.AddItem(r.Context(), viewer, wishlistID, req.Name, req.Description, req.URL, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

// HandleListItems returns the wishlist's items as the caller sees them.
//
// HTTP: GET /api/wishlists/{id}/items
func (h *WishlistHandler) HandleListItems(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r, h.users)
	if !ok {
		return
	}

	wishlistID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	items, err := h.wishlists.GetItems(r.Context(), viewer, wishlistID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, items)
}
