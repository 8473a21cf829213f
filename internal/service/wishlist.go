package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/gift-registry/internal/apperror"
	"github.com/sakif/gift-registry/internal/model"
	"github.com/sakif/gift-registry/internal/repository"
)

// Validation bounds for wishlists and items.
const (
	MaxWishlistNameLength = 120
	MaxItemNameLength     = 200
	MaxDescriptionLength  = 2000
)

// WishlistService handles wishlist and item CRUD. Reads go through the
// access checks and, for items, the projection engine, so no handler ever
// returns a raw item to a non-owner.
type WishlistService struct {
	access     *AccessService
	projection *ProjectionService
	wishlists  repository.WishlistRepository
	items      repository.ItemRepository
	logger     *slog.Logger
}

// NewWishlistService creates a WishlistService.
func NewWishlistService(
	access *AccessService,
	projection *ProjectionService,
	wishlists repository.WishlistRepository,
	items repository.ItemRepository,
	logger *slog.Logger,
) *WishlistService {
	return &WishlistService{
		access:     access,
		projection: projection,
		wishlists:  wishlists,
		items:      items,
		logger:     logger,
	}
}

func validateWishlistInput(name string, visibility model.Visibility) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperror.ValidationFailed("name", "wishlist name is required")
	}
	if len(name) > MaxWishlistNameLength {
		return "", apperror.ValidationFailed("name",
			fmt.Sprintf("wishlist name must be %d characters or less", MaxWishlistNameLength))
	}
	if !visibility.Valid() {
		return "", apperror.ValidationFailed("visibility",
			fmt.Sprintf("unknown visibility %q", visibility))
	}
	return name, nil
}

// Create makes a new wishlist owned by the viewer.
func (s *WishlistService) Create(ctx context.Context, viewer *model.User, name, description string, visibility model.Visibility) (*model.Wishlist, error) {
	if viewer == nil {
		return nil, apperror.Forbidden("authentication required")
	}

	name, err := validateWishlistInput(name, visibility)
	if err != nil {
		return nil, err
	}
	if len(description) > MaxDescriptionLength {
		return nil, apperror.ValidationFailed("description", "description is too long")
	}

	list := &model.Wishlist{
		OwnerID:     viewer.ID,
		Name:        name,
		Description: strings.TrimSpace(description),
		Visibility:  visibility,
	}
	if err := s.wishlists.Create(ctx, list); err != nil {
		s.logger.Error("failed to create wishlist", slog.String("error", err.Error()))
		return nil, apperror.Internal(err)
	}

	s.logger.Info("wishlist created",
		slog.Int64("wishlistID", list.ID),
		slog.Int64("ownerID", viewer.ID),
	)
	return list, nil
}

// Get returns a wishlist the viewer may see; anything else is NotFound.
func (s *WishlistService) Get(ctx context.Context, viewer *model.User, id int64) (*model.Wishlist, error) {
	dec, err := s.access.CanViewWishlist(ctx, viewer, id)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if !dec.Allowed() {
		return nil, apperror.NotFound("wishlist", id)
	}

	list, err := s.wishlists.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFound("wishlist", id)
		}
		return nil, apperror.Internal(err)
	}
	return list, nil
}

// ListByOwner returns ownerID's wishlists, filtered down to the ones the
// viewer may see. An unknown owner and an owner whose lists are all hidden
// produce the same empty result.
func (s *WishlistService) ListByOwner(ctx context.Context, viewer *model.User, ownerID int64) ([]model.Wishlist, error) {
	lists, err := s.wishlists.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	visible := make([]model.Wishlist, 0, len(lists))
	for _, list := range lists {
		dec, err := s.access.CanViewWishlist(ctx, viewer, list.ID)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		if dec.Allowed() {
			visible = append(visible, list)
		}
	}
	return visible, nil
}

// Update modifies a wishlist's name, description, or visibility.
// Owner or admin only.
func (s *WishlistService) Update(ctx context.Context, viewer *model.User, id int64, name, description string, visibility model.Visibility) (*model.Wishlist, error) {
	list, err := s.manageableWishlist(ctx, viewer, id)
	if err != nil {
		return nil, err
	}

	name, err = validateWishlistInput(name, visibility)
	if err != nil {
		return nil, err
	}
	if len(description) > MaxDescriptionLength {
		return nil, apperror.ValidationFailed("description", "description is too long")
	}

	list.Name = name
	list.Description = strings.TrimSpace(description)
	list.Visibility = visibility
	if err := s.wishlists.Update(ctx, list); err != nil {
		return nil, apperror.Internal(err)
	}

	s.logger.Info("wishlist updated", slog.Int64("wishlistID", id))
	return list, nil
}

// Delete removes a wishlist and everything under it. Owner or admin only.
func (s *WishlistService) Delete(ctx context.Context, viewer *model.User, id int64) error {
	if _, err := s.manageableWishlist(ctx, viewer, id); err != nil {
		return err
	}

	if err := s.wishlists.Delete(ctx, id); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.NotFound("wishlist", id)
		}
		return apperror.Internal(err)
	}

	s.logger.Info("wishlist deleted", slog.Int64("wishlistID", id))
	return nil
}

// AddItem creates an item on the wishlist. Owner or admin only.
func (s *WishlistService) AddItem(ctx context.Context, viewer *model.User, wishlistID int64, name, description, url string, amount int64) (*model.WishlistItem, error) {
	if _, err := s.manageableWishlist(ctx, viewer, wishlistID); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "item name is required")
	}
	if len(name) > MaxItemNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("item name must be %d characters or less", MaxItemNameLength))
	}
	if amount < 1 {
		return nil, apperror.ValidationFailed("amount", "amount must be at least 1")
	}

	item := &model.WishlistItem{
		WishlistID:  wishlistID,
		Name:        name,
		Description: strings.TrimSpace(description),
		URL:         strings.TrimSpace(url),
		Amount:      amount,
	}
	if err := s.items.Create(ctx, item); err != nil {
		s.logger.Error("failed to create item",
			slog.Int64("wishlistID", wishlistID),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Internal(err)
	}

	s.logger.Info("item created", slog.Int64("itemID", item.ID), slog.Int64("wishlistID", wishlistID))
	return item, nil
}

// GetItem returns one projected item. A fully reserved item the viewer has
// no stake in is NotFound, exactly like one that never existed.
func (s *WishlistService) GetItem(ctx context.Context, viewer *model.User, itemID int64) (*model.ProjectedItem, error) {
	dec, err := s.access.CanViewItem(ctx, viewer, itemID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if !dec.Allowed() {
		return nil, apperror.NotFound("item", itemID)
	}

	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFound("item", itemID)
		}
		return nil, apperror.Internal(err)
	}

	projected, err := s.projection.Project(ctx, viewer, item)
	if err != nil {
		if errors.Is(err, ErrNotAvailable) {
			return nil, apperror.NotFound("item", itemID)
		}
		return nil, apperror.Internal(err)
	}
	return projected, nil
}

// GetItems lists the wishlist's items as the viewer sees them. Depleted
// items the viewer has no stake in are dropped without a trace.
func (s *WishlistService) GetItems(ctx context.Context, viewer *model.User, wishlistID int64) ([]model.ProjectedItem, error) {
	dec, err := s.access.CanViewWishlist(ctx, viewer, wishlistID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if !dec.Allowed() {
		return nil, apperror.NotFound("wishlist", wishlistID)
	}

	items, err := s.items.ListByWishlist(ctx, wishlistID)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	projected, err := s.projection.ProjectAll(ctx, viewer, items)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return projected, nil
}

// UpdateItem modifies an item. Owner or admin only. Changing amount never
// touches existing reservations, even if it drops below the reserved sum —
// the projection clamps at zero in that case.
func (s *WishlistService) UpdateItem(ctx context.Context, viewer *model.User, itemID int64, name, description, url string, amount int64) (*model.WishlistItem, error) {
	item, err := s.manageableItem(ctx, viewer, itemID)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "item name is required")
	}
	if len(name) > MaxItemNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("item name must be %d characters or less", MaxItemNameLength))
	}
	if amount < 1 {
		return nil, apperror.ValidationFailed("amount", "amount must be at least 1")
	}

	item.Name = name
	item.Description = strings.TrimSpace(description)
	item.URL = strings.TrimSpace(url)
	item.Amount = amount
	if err := s.items.Update(ctx, item); err != nil {
		return nil, apperror.Internal(err)
	}

	s.logger.Info("item updated", slog.Int64("itemID", itemID))
	return item, nil
}

// DeleteItem removes an item; its reservations and comments cascade away.
// Owner or admin only.
func (s *WishlistService) DeleteItem(ctx context.Context, viewer *model.User, itemID int64) error {
	if _, err := s.manageableItem(ctx, viewer, itemID); err != nil {
		return err
	}

	if err := s.items.Delete(ctx, itemID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.NotFound("item", itemID)
		}
		return apperror.Internal(err)
	}

	s.logger.Info("item deleted", slog.Int64("itemID", itemID))
	return nil
}

// manageableWishlist runs the view-then-manage gate: invisible → NotFound,
// visible but not owned → Forbidden.
func (s *WishlistService) manageableWishlist(ctx context.Context, viewer *model.User, id int64) (*model.Wishlist, error) {
	dec, err := s.access.CanViewWishlist(ctx, viewer, id)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if !dec.Allowed() {
		return nil, apperror.NotFound("wishlist", id)
	}

	dec, err = s.access.CanManageWishlist(ctx, viewer, id)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if !dec.Allowed() {
		return nil, apperror.Forbidden(dec.Reason())
	}

	list, err := s.wishlists.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFound("wishlist", id)
		}
		return nil, apperror.Internal(err)
	}
	return list, nil
}

// manageableItem is the item-level equivalent of manageableWishlist.
func (s *WishlistService) manageableItem(ctx context.Context, viewer *model.User, itemID int64) (*model.WishlistItem, error) {
	dec, err := s.access.CanViewItem(ctx, viewer, itemID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if !dec.Allowed() {
		return nil, apperror.NotFound("item", itemID)
	}

	dec, err = s.access.CanManageItem(ctx, viewer, itemID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if !dec.Allowed() {
		return nil, apperror.Forbidden(dec.Reason())
	}

	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFound("item", itemID)
		}
		return nil, apperror.Internal(err)
	}
	return item, nil
}
