// Package repository declares the persistence port the services depend on.
//
// Services receive these interfaces, never a concrete *sqlite.DB. Tests
// substitute in-memory fakes; swapping SQLite for Postgres touches only the
// adapter package and the composition root.
//
// CONVENTIONS:
//   - "not found" is reported as apperror.ErrNotFound, distinct from any
//     transport/driver failure (which comes back wrapped, unclassified, and
//     is turned into apperror.ErrInternal by the service layer).
//   - Create/Insert methods fill in the generated ID and timestamps on the
//     passed struct.
package repository

import (
	"context"

	"github.com/sakif/gift-registry/internal/model"
)

// UserRepository persists user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// UpsertGitHub inserts or refreshes a user keyed by their GitHub ID.
	UpsertGitHub(ctx context.Context, user *model.User) error
	// SetRole is only called by the startup admin bootstrap.
	SetRole(ctx context.Context, id int64, role model.Role) error
	Delete(ctx context.Context, id int64) error
}

// WishlistRepository persists wishlists.
type WishlistRepository interface {
	Create(ctx context.Context, list *model.Wishlist) error
	GetByID(ctx context.Context, id int64) (*model.Wishlist, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]model.Wishlist, error)
	Update(ctx context.Context, list *model.Wishlist) error
	// Delete removes the wishlist and cascades to items, reservations,
	// and comments.
	Delete(ctx context.Context, id int64) error
}

// ItemRepository persists wishlist items.
type ItemRepository interface {
	Create(ctx context.Context, item *model.WishlistItem) error
	GetByID(ctx context.Context, id int64) (*model.WishlistItem, error)
	ListByWishlist(ctx context.Context, wishlistID int64) ([]model.WishlistItem, error)
	Update(ctx context.Context, item *model.WishlistItem) error
	// Delete removes the item and cascades to reservations and comments.
	Delete(ctx context.Context, id int64) error
}

// ReservationRepository persists reservations.
type ReservationRepository interface {
	// Insert admits a reservation atomically: the duplicate check, the
	// capacity check against the item's amount, and the INSERT happen in a
	// single write transaction, so concurrent reservers cannot jointly
	// overshoot the item's quantity. Returns apperror.ErrConflict when the
	// user already holds a reservation on the item and a validation error
	// when the remaining capacity is too small.
	Insert(ctx context.Context, res *model.Reservation) error
	GetByID(ctx context.Context, id int64) (*model.Reservation, error)
	ListByItem(ctx context.Context, itemID int64) ([]model.Reservation, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Reservation, error)
	Delete(ctx context.Context, id int64) error
	DeleteByUser(ctx context.Context, userID int64) error
}

// FriendRepository persists the symmetric friendship edges.
// Implementations must treat (a,b) and (b,a) as the same edge.
type FriendRepository interface {
	Create(ctx context.Context, pair *model.FriendPair) error
	Exists(ctx context.Context, a, b int64) (bool, error)
	ListByUser(ctx context.Context, userID int64) ([]model.FriendPair, error)
	Delete(ctx context.Context, a, b int64) error
}

// CommentRepository persists item comments.
// ListByItem returns comments in creation order (oldest first) — the
// anonymization engine depends on that ordering to number authors stably.
type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, id int64) (*model.Comment, error)
	ListByItem(ctx context.Context, itemID int64) ([]model.Comment, error)
	Update(ctx context.Context, comment *model.Comment) error
	Delete(ctx context.Context, id int64) error
}
