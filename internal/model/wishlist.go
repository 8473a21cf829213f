package model

import "time"

// Visibility controls who may view a wishlist.
//
// The four levels, from most to least open:
//
//	public  — any logged-in user
//	friends — the owner and users with a friend edge to the owner
//	invite  — the owner only (invitations are resolved outside the core)
//	hidden  — the owner only
//
// A wishlist that does not exist is treated as hidden by the access checks,
// so "not found" and "exists but hidden" are indistinguishable to anyone but
// the owner and admins. That is deliberate: it prevents probing for ids.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityFriends Visibility = "friends"
	VisibilityInvite  Visibility = "invite"
	VisibilityHidden  Visibility = "hidden"
)

// Valid reports whether v is one of the known visibility levels.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityFriends, VisibilityInvite, VisibilityHidden:
		return true
	}
	return false
}

// Wishlist is a named collection of items owned by exactly one user.
// Deleting a wishlist cascades to its items, their reservations, and
// their comments.
type Wishlist struct {
	ID          int64      `json:"id"`
	OwnerID     int64      `json:"ownerId"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Visibility  Visibility `json:"visibility"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
