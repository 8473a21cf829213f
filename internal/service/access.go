// Package service contains the business logic layer of the application.
//
// The layering follows the usual three-tier shape:
//
//	Handler (HTTP)     → parses requests, writes responses
//	Service (rules)    → authorization, admission, projection
//	Repository (data)  → reads/writes SQLite
//
// Services receive repository interfaces, never concrete stores, so every
// rule in this package is testable against in-memory fakes.
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

// Decision is the tagged result of a capability check: allowed, or denied
// with a reason.
//
// WHY NOT A BARE BOOL?
// A bool at a call site reads as "is X true" and is easy to invert or drop
// silently. A Decision forces the caller to acknowledge the deny branch, and
// the reason travels with it — view denials become NotFound (so outsiders
// can't distinguish "hidden" from "missing"), manage denials become
// Forbidden with the reason as the message.
type Decision struct {
	allowed bool
	reason  string
}

// Allow returns an allowing decision.
func Allow() Decision {
	return Decision{allowed: true}
}

// Deny returns a denying decision with the given reason.
func Deny(reason string) Decision {
	return Decision{reason: reason}
}

// Allowed reports whether the check passed.
func (d Decision) Allowed() bool {
	return d.allowed
}

// Reason returns the denial reason; empty for allowing decisions.
func (d Decision) Reason() string {
	return d.reason
}

// AccessService answers "may viewer V do action A on entity E".
//
// Every check is fail-closed: a nil viewer, a non-positive id, or a missing
// entity all come back as Deny. A store failure is the only error return —
// callers convert it to apperror.ErrInternal.
//
// Admins bypass every visibility and management rule here. The one rule
// that binds even admins — nobody reserves their own item — lives in the
// reservation service, because it is an admission rule, not a visibility one.
type AccessService struct {
	wishlists    repository.WishlistRepository
	items        repository.ItemRepository
	reservations repository.ReservationRepository
	friends      repository.FriendRepository
	comments     repository.CommentRepository
	logger       *slog.Logger
}

// NewAccessService creates an AccessService.
func NewAccessService(
	wishlists repository.WishlistRepository,
	items repository.ItemRepository,
	reservations repository.ReservationRepository,
	friends repository.FriendRepository,
	comments repository.CommentRepository,
	logger *slog.Logger,
) *AccessService {
	return &AccessService{
		wishlists:    wishlists,
		items:        items,
		reservations: reservations,
		friends:      friends,
		comments:     comments,
		logger:       logger,
	}
}

// CanViewWishlist decides whether viewer may see the wishlist.
//
// A wishlist that does not exist is treated exactly like one with hidden
// visibility: Deny. Callers turn that into NotFound, which makes "missing"
// and "hidden" indistinguishable from the outside — hidden wishlist ids
// cannot be probed for.
func (s *AccessService) CanViewWishlist(ctx context.Context, viewer *model.User, wishlistID int64) (Decision, error) {
	if viewer == nil || wishlistID <= 0 {
		return Deny("wishlist is not visible"), nil
	}
	if viewer.IsAdmin() {
		return Allow(), nil
	}

	list, err := s.wishlists.GetByID(ctx, wishlistID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return Deny("wishlist is not visible"), nil
		}
		return Decision{}, fmt.Errorf("checking wishlist visibility: %w", err)
	}

	if list.OwnerID == viewer.ID {
		return Allow(), nil
	}

	switch list.Visibility {
	case model.VisibilityPublic:
		return Allow(), nil
	case model.VisibilityFriends:
		friends, err := s.friends.Exists(ctx, viewer.ID, list.OwnerID)
		if err != nil {
			return Decision{}, fmt.Errorf("checking friendship: %w", err)
		}
		if friends {
			return Allow(), nil
		}
		return Deny("wishlist is not visible"), nil
	default: // invite, hidden
		return Deny("wishlist is not visible"), nil
	}
}

// CanManageWishlist decides whether viewer may update or delete the wishlist
// or add items to it: the owner or an admin.
func (s *AccessService) CanManageWishlist(ctx context.Context, viewer *model.User, wishlistID int64) (Decision, error) {
	if viewer == nil || wishlistID <= 0 {
		return Deny("wishlist is not visible"), nil
	}
	if viewer.IsAdmin() {
		return Allow(), nil
	}

	list, err := s.wishlists.GetByID(ctx, wishlistID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return Deny("wishlist is not visible"), nil
		}
		return Decision{}, fmt.Errorf("checking wishlist ownership: %w", err)
	}

	if list.OwnerID == viewer.ID {
		return Allow(), nil
	}
	return Deny("only the owner may manage this wishlist"), nil
}

// CanViewItem delegates to the parent wishlist's visibility.
func (s *AccessService) CanViewItem(ctx context.Context, viewer *model.User, itemID int64) (Decision, error) {
	item, dec, err := s.itemParent(ctx, viewer, itemID)
	if err != nil || !dec.Allowed() {
		return dec, err
	}
	return s.CanViewWishlist(ctx, viewer, item.WishlistID)
}

// CanManageItem delegates to the parent wishlist's ownership.
func (s *AccessService) CanManageItem(ctx context.Context, viewer *model.User, itemID int64) (Decision, error) {
	item, dec, err := s.itemParent(ctx, viewer, itemID)
	if err != nil || !dec.Allowed() {
		return dec, err
	}
	return s.CanManageWishlist(ctx, viewer, item.WishlistID)
}

// itemParent loads the item, mapping "missing item" to a deny so items are
// as unenumerable as wishlists.
func (s *AccessService) itemParent(ctx context.Context, viewer *model.User, itemID int64) (*model.WishlistItem, Decision, error) {
	if viewer == nil || itemID <= 0 {
		return nil, Deny("item is not visible"), nil
	}
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, Deny("item is not visible"), nil
		}
		return nil, Decision{}, fmt.Errorf("loading item: %w", err)
	}
	return item, Allow(), nil
}

// CanViewReservation decides whether viewer may see the reservation: the
// reserving user or an admin. Never the item's owner — owners must not learn
// who reserved their wishes.
func (s *AccessService) CanViewReservation(ctx context.Context, viewer *model.User, reservationID int64) (Decision, error) {
	if viewer == nil || reservationID <= 0 {
		return Deny("reservation is not visible"), nil
	}
	if viewer.IsAdmin() {
		return Allow(), nil
	}

	res, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return Deny("reservation is not visible"), nil
		}
		return Decision{}, fmt.Errorf("checking reservation visibility: %w", err)
	}

	if res.UserID == viewer.ID {
		return Allow(), nil
	}
	return Deny("reservation is not visible"), nil
}

// CanManageReservation decides whether viewer may delete the reservation.
// Same rule as viewing: the reserver or an admin.
func (s *AccessService) CanManageReservation(ctx context.Context, viewer *model.User, reservationID int64) (Decision, error) {
	return s.CanViewReservation(ctx, viewer, reservationID)
}

// CanViewUser decides whether viewer may read userID's data (their
// reservation list, for instance): the user themselves or an admin.
func (s *AccessService) CanViewUser(ctx context.Context, viewer *model.User, userID int64) (Decision, error) {
	if viewer == nil || userID <= 0 {
		return Deny("user is not visible"), nil
	}
	if viewer.IsAdmin() || viewer.ID == userID {
		return Allow(), nil
	}
	return Deny("user is not visible"), nil
}

// CanManageComment decides whether viewer may edit or delete the comment:
// the author or an admin.
func (s *AccessService) CanManageComment(ctx context.Context, viewer *model.User, commentID int64) (Decision, error) {
	if viewer == nil || commentID <= 0 {
		return Deny("comment is not visible"), nil
	}
	if viewer.IsAdmin() {
		return Allow(), nil
	}

	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return Deny("comment is not visible"), nil
		}
		return Decision{}, fmt.Errorf("checking comment ownership: %w", err)
	}

	if comment.AuthorID == viewer.ID {
		return Allow(), nil
	}
	return Deny("only the author may manage this comment"), nil
}
