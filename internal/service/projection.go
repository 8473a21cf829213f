package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/gift-registry/internal/model"
	"github.com/sakif/gift-registry/internal/repository"
)

// ErrNotAvailable is returned by Project when an item is fully reserved and
// the viewer has no stake in it. Listings drop such items silently; a direct
// fetch turns it into NotFound. It never reaches a client as its own kind.
var ErrNotAvailable = errors.New("item not available")

// ProjectionService computes the viewer-specific view of an item.
//
// The projection is where the registry's central promise is kept: the owner
// always sees the quantity they asked for, everyone else sees what is left,
// and an item that is fully claimed simply vanishes for bystanders — so an
// owner browsing as themselves never learns that anything was reserved, and
// a bystander never learns that a gift was fully claimed.
type ProjectionService struct {
	wishlists    repository.WishlistRepository
	reservations repository.ReservationRepository
	logger       *slog.Logger
}

// NewProjectionService creates a ProjectionService.
func NewProjectionService(
	wishlists repository.WishlistRepository,
	reservations repository.ReservationRepository,
	logger *slog.Logger,
) *ProjectionService {
	return &ProjectionService{
		wishlists:    wishlists,
		reservations: reservations,
		logger:       logger,
	}
}

// Project returns the viewer's view of the item.
//
// Rules, in order:
//   - a non-admin owner gets the item unchanged: their requested amount,
//     no originalAmount, no reservation pressure of any kind
//   - a fully reserved item raises ErrNotAvailable for viewers who neither
//     reserved it nor are admins
//   - everyone else gets amount = requested − reserved (never negative),
//     and admins additionally get the true original amount
//
// Note the asymmetry: a viewer who reserved the item keeps seeing it even at
// zero remaining, so their own reservation remains visible in listings.
func (s *ProjectionService) Project(ctx context.Context, viewer *model.User, item *model.WishlistItem) (*model.ProjectedItem, error) {
	if viewer == nil || item == nil {
		return nil, ErrNotAvailable
	}

	list, err := s.wishlists.GetByID(ctx, item.WishlistID)
	if err != nil {
		return nil, fmt.Errorf("loading wishlist for projection: %w", err)
	}

	projected := &model.ProjectedItem{
		ID:          item.ID,
		WishlistID:  item.WishlistID,
		Name:        item.Name,
		Description: item.Description,
		URL:         item.URL,
		Amount:      item.Amount,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}

	// The owner's own view is untouched by reservations. Admins fall
	// through even for their own items so they can audit reservation
	// pressure anywhere.
	if !viewer.IsAdmin() && list.OwnerID == viewer.ID {
		return projected, nil
	}

	reservations, err := s.reservations.ListByItem(ctx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("loading reservations for projection: %w", err)
	}

	var reserved int64
	reservedByViewer := false
	for _, r := range reservations {
		reserved += r.Amount
		if r.UserID == viewer.ID {
			reservedByViewer = true
		}
	}

	if reserved >= item.Amount && !reservedByViewer && !viewer.IsAdmin() {
		return nil, ErrNotAvailable
	}

	remaining := item.Amount - reserved
	if remaining < 0 {
		// Only possible if historical data predates the atomic admission
		// guard; never show a negative quantity.
		remaining = 0
	}
	projected.Amount = remaining

	if viewer.IsAdmin() {
		original := item.Amount
		projected.OriginalAmount = &original
	}

	return projected, nil
}

// ProjectAll projects each item for the viewer and silently drops the ones
// that come back ErrNotAvailable. Any other error aborts the listing.
func (s *ProjectionService) ProjectAll(ctx context.Context, viewer *model.User, items []model.WishlistItem) ([]model.ProjectedItem, error) {
	projected := make([]model.ProjectedItem, 0, len(items))
	for i := range items {
		p, err := s.Project(ctx, viewer, &items[i])
		if err != nil {
			if errors.Is(err, ErrNotAvailable) {
				continue
			}
			return nil, err
		}
		projected = append(projected, *p)
	}
	return projected, nil
}
