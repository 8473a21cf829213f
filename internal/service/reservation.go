package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/gift-registry/internal/apperror"
	"github.com/sakif/gift-registry/internal/model"
	"github.com/sakif/gift-registry/internal/repository"
)

// ReservationService admits, lists, and removes reservations.
//
// Admission order matters: visibility first (outsiders get the same
// NotFound a missing item would give), then the self-reservation ban, then
// input validation, then capacity. The final INSERT re-checks capacity
// atomically in the store, so the pre-checks here exist for precise error
// classification, not for correctness under concurrency.
type ReservationService struct {
	access       *AccessService
	items        repository.ItemRepository
	wishlists    repository.WishlistRepository
	reservations repository.ReservationRepository
	logger       *slog.Logger
}

// NewReservationService creates a ReservationService.
func NewReservationService(
	access *AccessService,
	items repository.ItemRepository,
	wishlists repository.WishlistRepository,
	reservations repository.ReservationRepository,
	logger *slog.Logger,
) *ReservationService {
	return &ReservationService{
		access:       access,
		items:        items,
		wishlists:    wishlists,
		reservations: reservations,
		logger:       logger,
	}
}

// Reserve claims amount units of the item for the viewer and returns the new
// reservation.
//
// Error kinds, in check order:
//   - NotFound    — item invisible to the viewer (or truly missing)
//   - Forbidden   — viewer owns the item; owners never reserve their own
//     wishes, admins included
//   - Validation  — amount < 1, or more than the remaining quantity
//   - Conflict    — viewer already holds a reservation on this item; the
//     capacity check wins when both apply
func (s *ReservationService) Reserve(ctx context.Context, viewer *model.User, itemID, amount int64) (*model.Reservation, error) {
	dec, err := s.access.CanViewItem(ctx, viewer, itemID)
	if err != nil {
		s.logger.Error("reservation admission failed", slog.Int64("itemID", itemID), slog.String("error", err.Error()))
		return nil, apperror.Internal(err)
	}
	if !dec.Allowed() {
		return nil, apperror.NotFound("item", itemID)
	}

	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		// The access check just saw it; treat a miss here as the same
		// NotFound rather than a server fault.
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFound("item", itemID)
		}
		return nil, apperror.Internal(err)
	}

	list, err := s.wishlists.GetByID(ctx, item.WishlistID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	// This ban binds regardless of role: an admin who owns the wishlist is
	// still its owner.
	if list.OwnerID == viewer.ID {
		return nil, apperror.Forbidden("you cannot reserve an item on your own wishlist")
	}

	if amount < 1 {
		return nil, apperror.ValidationFailed("amount", "amount must be at least 1")
	}

	existing, err := s.reservations.ListByItem(ctx, itemID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	// Capacity is judged before the duplicate conflict: an oversized request
	// is rejected as oversized even when the viewer already holds a
	// reservation on this item.
	var reserved int64
	alreadyHolds := false
	for _, r := range existing {
		if r.UserID == viewer.ID {
			alreadyHolds = true
		}
		reserved += r.Amount
	}
	if item.Amount < reserved+amount {
		return nil, apperror.ValidationFailed("amount",
			fmt.Sprintf("only %d of this item can still be reserved", item.Amount-reserved))
	}
	if alreadyHolds {
		return nil, apperror.Conflict("you already have a reservation on this item; remove it to change the amount")
	}

	res := &model.Reservation{
		UserID: viewer.ID,
		ItemID: itemID,
		Amount: amount,
	}
	if err := s.reservations.Insert(ctx, res); err != nil {
		// The atomic guard can still reject under a race the pre-checks
		// didn't see; those rejections are already typed.
		if errors.Is(err, apperror.ErrConflict) || errors.Is(err, apperror.ErrValidation) {
			return nil, err
		}
		s.logger.Error("failed to insert reservation",
			slog.Int64("itemID", itemID),
			slog.Int64("userID", viewer.ID),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Internal(err)
	}

	s.logger.Info("reservation created",
		slog.Int64("reservationID", res.ID),
		slog.Int64("itemID", itemID),
		slog.Int64("amount", amount),
	)
	return res, nil
}

// Remove deletes a reservation. Only the reserver or an admin can see one,
// so anyone else gets NotFound — including the item's owner.
func (s *ReservationService) Remove(ctx context.Context, viewer *model.User, reservationID int64) error {
	dec, err := s.access.CanViewReservation(ctx, viewer, reservationID)
	if err != nil {
		return apperror.Internal(err)
	}
	if !dec.Allowed() {
		return apperror.NotFound("reservation", reservationID)
	}

	dec, err = s.access.CanManageReservation(ctx, viewer, reservationID)
	if err != nil {
		return apperror.Internal(err)
	}
	if !dec.Allowed() {
		return apperror.Forbidden(dec.Reason())
	}

	if err := s.reservations.Delete(ctx, reservationID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.NotFound("reservation", reservationID)
		}
		return apperror.Internal(err)
	}

	s.logger.Info("reservation removed", slog.Int64("reservationID", reservationID))
	return nil
}

// ListByUser returns all reservations held by userID. Visible only to that
// user and admins; everyone else gets NotFound for the user.
func (s *ReservationService) ListByUser(ctx context.Context, viewer *model.User, userID int64) ([]model.Reservation, error) {
	dec, err := s.access.CanViewUser(ctx, viewer, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if !dec.Allowed() {
		return nil, apperror.NotFound("user", userID)
	}

	reservations, err := s.reservations.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return reservations, nil
}

// ClearByUser deletes every reservation held by userID. Self or admin only.
func (s *ReservationService) ClearByUser(ctx context.Context, viewer *model.User, userID int64) error {
	dec, err := s.access.CanViewUser(ctx, viewer, userID)
	if err != nil {
		return apperror.Internal(err)
	}
	if !dec.Allowed() {
		return apperror.NotFound("user", userID)
	}

	if err := s.reservations.DeleteByUser(ctx, userID); err != nil {
		return apperror.Internal(err)
	}

	s.logger.Info("reservations cleared", slog.Int64("userID", userID))
	return nil
}
