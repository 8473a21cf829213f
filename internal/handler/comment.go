package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/gift-registry/internal/repository"
	"github.com/sakif/gift-registry/internal/service"
)

// CommentHandler serves item comments. Listing always goes through the
// anonymization engine, so author identities come back annotated, never raw.
type CommentHandler struct {
	comments *service.CommentService
	users    repository.UserRepository
	logger   *slog.Logger
}

// NewCommentHandler creates a CommentHandler.
func NewCommentHandler(comments *service.CommentService, users repository.UserRepository, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, users: users, logger: logger}
}

type commentRequest struct {
	Body    string `json:"body"`
	AsAdmin bool   `json:"asAdmin,omitempty"`
}

// HandleList returns an item's comments as the caller sees them.
//
// HTTP: GET /api/items/{id}/comments
func (h *CommentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r, h.users)
	if !ok {
		return
	}

	itemID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	comments, err := h.comments.ListByItem(r.Context(), viewer, itemID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, comments)
}

// HandleCreate adds a comment to an item.
//
// HTTP: POST /api/items/{id}/comments
func (h *CommentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r, h.users)
	if !ok {
		return
	}

	itemID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	comment, err := h.comments.Create(r.Context(), viewer, itemID, req.Body, req.AsAdmin)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}

// HandleUpdate edits a comment's body.
//
// HTTP: PUT /api/comments/{id}
func (h *CommentHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r, h.users)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	comment, err := h.comments.Update(r.Context(), viewer, id, req.Body)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, comment)
}

// HandleDelete removes a comment.
//
// HTTP: DELETE /api/comments/{id}
func (h *CommentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r, h.users)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.comments.Delete(r.Context(), viewer, id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
