package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sakif/gift-registry/internal/apperror"
	"github.com/sakif/gift-registry/internal/model"
	"github.com/sakif/gift-registry/internal/repository"
)

// ReservationStore implements repository.ReservationRepository over a
// shared DB.
type ReservationStore struct {
	db *DB
}

// NewReservationStore creates a ReservationStore.
func NewReservationStore(db *DB) *ReservationStore {
	return &ReservationStore{db: db}
}

var _ repository.ReservationRepository = (*ReservationStore)(nil)

const reservationColumns = `id, user_id, item_id, amount, created_at`

func scanReservation(row interface{ Scan(...any) error }) (*model.Reservation, error) {
	var r model.Reservation
	err := row.Scan(
		&r.ID,
		&r.UserID,
		&r.ItemID,
		&r.Amount,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Insert admits a reservation.
//
// The capacity check and the write are a single guarded INSERT … SELECT, so
// they are atomic: SQLite executes one statement under one write lock, and
// two concurrent reservers can never both pass the check and jointly exceed
// the item's amount. If the guard fails, zero rows are inserted and the
// caller gets a validation error.
//
// The UNIQUE(user_id, item_id) index fires before the capacity guard matters
// for a repeat reserver, and is translated to apperror.ErrConflict.
func (s *ReservationStore) Insert(ctx context.Context, res *model.Reservation) error {
	res.CreatedAt = time.Now()

	result, err := s.db.conn.ExecContext(ctx,
		`INSERT INTO reservations (user_id, item_id, amount, created_at)
		 SELECT ?, ?, ?, ?
		 WHERE (SELECT i.amount FROM items i WHERE i.id = ?) >=
		       (SELECT COALESCE(SUM(r.amount), 0) FROM reservations r WHERE r.item_id = ?) + ?`,
		res.UserID,
		res.ItemID,
		res.Amount,
		res.CreatedAt,
		res.ItemID,
		res.ItemID,
		res.Amount,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("you already have a reservation on this item")
		}
		return fmt.Errorf("sqlite: inserting reservation: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		// Guard failed: either the item vanished or the remaining quantity
		// is smaller than the requested amount.
		return apperror.ValidationFailed("amount", "not enough of this item is left to reserve")
	}

	res.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading reservation id: %w", err)
	}
	return nil
}

// GetByID retrieves a reservation by id.
func (s *ReservationStore) GetByID(ctx context.Context, id int64) (*model.Reservation, error) {
	r, err := scanReservation(s.db.conn.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("reservation", id)
		}
		return nil, fmt.Errorf("sqlite: getting reservation %d: %w", id, err)
	}
	return r, nil
}

// ListByItem returns all reservations on an item, oldest first.
func (s *ReservationStore) ListByItem(ctx context.Context, itemID int64) ([]model.Reservation, error) {
	return s.list(ctx, `item_id`, itemID)
}

// ListByUser returns all reservations held by a user, oldest first.
func (s *ReservationStore) ListByUser(ctx context.Context, userID int64) ([]model.Reservation, error) {
	return s.list(ctx, `user_id`, userID)
}

func (s *ReservationStore) list(ctx context.Context, column string, id int64) ([]model.Reservation, error) {
	// column is one of two compile-time constants, never user input.
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations
		 WHERE `+column+` = ?
		 ORDER BY id ASC`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing reservations by %s %d: %w", column, id, err)
	}
	defer rows.Close()

	var reservations []model.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning reservation row: %w", err)
		}
		reservations = append(reservations, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating reservations: %w", err)
	}
	return reservations, nil
}

// Delete removes a single reservation.
func (s *ReservationStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.conn.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting reservation %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("reservation", id)
	}
	return nil
}

// DeleteByUser removes every reservation held by a user. Deleting zero rows
// is not an error — "clear my reservations" is idempotent.
func (s *ReservationStore) DeleteByUser(ctx context.Context, userID int64) error {
	_, err := s.db.conn.ExecContext(ctx, `DELETE FROM reservations WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("sqlite: clearing reservations for user %d: %w", userID, err)
	}
	return nil
}
