package model

import "time"

// Comment is a remark on a wishlist item.
//
// AsAdmin marks an official admin remark. The comment service forces it to
// false unless the author actually holds the admin role, so a regular user
// submitting asAdmin=true is silently ignored rather than rejected.
type Comment struct {
	ID        int64     `json:"id"`
	ItemID    int64     `json:"itemId"`
	AuthorID  int64     `json:"authorId"`
	Body      string    `json:"body"`
	AsAdmin   bool      `json:"asAdmin"`
	CreatedAt time.Time `json:"createdAt"`
}

// AnnotatedComment is the per-viewer rendering of a comment produced by the
// anonymization engine.
//
// Exactly one of three identity presentations applies:
//   - IsOwnComment: the viewer wrote it (real body, no anonymous number)
//   - IsItemOwner: the wishlist owner wrote it
//   - AnonymizedUserID: any other author, numbered 1,2,3… in order of first
//     appearance within this one response
//
// AuthorID is only populated for admin viewers; everyone else gets nil so
// the real author never appears in the payload.
type AnnotatedComment struct {
	ID               int64     `json:"id"`
	ItemID           int64     `json:"itemId"`
	AuthorID         *int64    `json:"authorId,omitempty"`
	Body             string    `json:"body"`
	AsAdmin          bool      `json:"asAdmin"`
	IsOwnComment     bool      `json:"isOwnComment,omitempty"`
	IsItemOwner      bool      `json:"isItemOwner,omitempty"`
	AnonymizedUserID *int64    `json:"anonymizedUserId,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}
