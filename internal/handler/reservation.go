package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/gift-registry/internal/repository"
	"github.com/sakif/gift-registry/internal/service"
)

// ReservationHandler serves reservations. Reservations are created under
// an item and listed per user; owners never see reservations on their own
// items through any of these routes.
type ReservationHandler struct {
	reservations *service.ReservationService
	users        repository.UserRepository
	logger       *slog.Logger
}

// NewReservationHandler creates a ReservationHandler.
func NewReservationHandler(reservations *service.ReservationService, users repository.UserRepository, logger *slog.Logger) *ReservationHandler {
	return &ReservationHandler{reservations: reservations, users: users, logger: logger}
}

type reserveRequest struct {
	Amount int64 `json:"amount"`
}

// HandleCreate reserves some quantity of an item for the caller.
//
// HTTP: POST /api/items/{id}/reservations
func (h *ReservationHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r, h.users)
	if !ok {
		return
	}

	itemID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req reserveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.reservations.Reserve(r.Context(), viewer, itemID, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, res)
}

// HandleListMine returns the caller's reservations.
//
// HTTP: GET /api/reservations
func (h *ReservationHandler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r, h.users)
	if !ok {
		return
	}

	reservations, err := h.reservations.ListByUser(r.Context(), viewer, viewer.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reservations)
}

// HandleListForUser returns a user's reservations. The service allows only
// the user themselves or an admin through.
//
// HTTP: GET /api/users/{id}/reservations
func (h *ReservationHandler) HandleListForUser(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r, h.users)
	if !ok {
		return
	}

	userID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	reservations, err := h.reservations.ListByUser(r.Context(), viewer, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reservations)
}

// HandleClearForUser releases every reservation a user holds, same access
// rule as listing.
//
// HTTP: DELETE /api/users/{id}/reservations
func (h *ReservationHandler) HandleClearForUser(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r, h.users)
	if !ok {
		return
	}

	userID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.reservations.ClearByUser(r.Context(), viewer, userID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleDelete releases a reservation.
//
// HTTP: DELETE /api/reservations/{id}
func (h *ReservationHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r, h.users)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.reservations.Remove(r.Context(), viewer, id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleClearMine releases every reservation the caller holds.
//
// HTTP: DELETE /api/reservations
func (h *ReservationHandler) HandleClearMine(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r, h.users)
	if !ok {
		return
	}

	if err := h.reservations.ClearByUser(r.Context(), viewer, viewer.ID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
