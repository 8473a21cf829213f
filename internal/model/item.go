package model

import "time"

// WishlistItem is a single wish on a wishlist. Amount is the quantity the
// owner asked for, always ≥ 1.
//
// INVARIANT: Amount is only ever written by the owner (or an admin) through
// create/update. Reservations never touch it — the owner must always see the
// quantity they asked for, with no hint of how much has been claimed.
// "How many are left" is computed per viewer by the projection engine.
type WishlistItem struct {
	ID          int64     `json:"id"`
	WishlistID  int64     `json:"wishlistId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Amount      int64     `json:"amount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProjectedItem is the viewer-specific view of an item.
//
// Amount carries different meanings depending on who is looking:
//   - the owner sees their original requested quantity
//   - everyone else sees the remaining (unreserved) quantity
//
// OriginalAmount is only populated for admins; for all other viewers it is
// nil and omitted from JSON, so the true requested quantity never leaks to
// people who can see reservation pressure.
type ProjectedItem struct {
	ID             int64     `json:"id"`
	WishlistID     int64     `json:"wishlistId"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	URL            string    `json:"url"`
	Amount         int64     `json:"amount"`
	OriginalAmount *int64    `json:"originalAmount,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
