package model

import "time"

// Reservation records that a user has claimed some quantity of an item.
//
// The store enforces at most one reservation per (user, item) pair — to
// change the claimed amount a user removes their reservation and places a
// new one. The aggregate cap (Σ amounts ≤ item.Amount) is enforced by the
// admission engine together with the persistence adapter, not by a schema
// constraint.
//
// Reservations are invisible to the item's owner: only the reserver and
// admins can read or delete a reservation row.
type Reservation struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	ItemID    int64     `json:"itemId"`
	Amount    int64     `json:"amount"`
	CreatedAt time.Time `json:"createdAt"`
}
