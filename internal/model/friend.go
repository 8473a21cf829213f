package model

import "time"

// FriendPair is an undirected friendship between two users.
//
// The pair is stored normalized — UserLo < UserHi — so that (3,7) and (7,3)
// are the same row and a single UNIQUE(user_lo, user_hi) index covers both
// query directions. Use NewFriendPair to build one; it handles the ordering.
type FriendPair struct {
	ID        int64     `json:"id"`
	UserLo    int64     `json:"userLo"`
	UserHi    int64     `json:"userHi"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewFriendPair returns a normalized pair for the two user ids.
func NewFriendPair(a, b int64) FriendPair {
	if a > b {
		a, b = b, a
	}
	return FriendPair{UserLo: a, UserHi: b}
}

// Other returns the id on the opposite side of the pair from userID.
// Returns 0 if userID is not part of the pair.
func (p FriendPair) Other(userID int64) int64 {
	switch userID {
	case p.UserLo:
		return p.UserHi
	case p.UserHi:
		return p.UserLo
	}
	return 0
}
