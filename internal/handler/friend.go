package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/gift-registry/internal/repository"
	"github.com/sakif/gift-registry/internal/service"
)

// FriendHandler serves the caller's friendship edges.
type FriendHandler struct {
	friends *service.FriendService
	users   repository.UserRepository
	logger  *slog.Logger
}

// NewFriendHandler creates a FriendHandler.
func NewFriendHandler(friends *service.FriendService, users repository.UserRepository, logger *slog.Logger) *FriendHandler {
	return &FriendHandler{friends: friends, users: users, logger: logger}
}

type friendRequest struct {
	UserID int64 `json:"userId"`
}

// HandleAdd befriends the caller with another user.
//
// HTTP: POST /api/friends
func (h *FriendHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r, h.users)
	if !ok {
		return
	}

	var req friendRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.friends.Add(r.Context(), viewer, req.UserID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// HandleList returns the caller's friends.
//
// HTTP: GET /api/friends
func (h *FriendHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r, h.users)
	if !ok {
		return
	}

	friends, err := h.friends.List(r.Context(), viewer)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, friends)
}

// HandleRemove dissolves a friendship.
//
// HTTP: DELETE /api/friends/{id}
func (h *FriendHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r, h.users)
	if !ok {
		return
	}

	otherID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.friends.Remove(r.Context(), viewer, otherID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
