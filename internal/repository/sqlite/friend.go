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

// FriendStore implements repository.FriendRepository over a shared DB.
//
// Rows are stored normalized (user_lo < user_hi), so every lookup first
// orders the pair the same way model.NewFriendPair does.
type FriendStore struct {
	db *DB
}

// NewFriendStore creates a FriendStore.
func NewFriendStore(db *DB) *FriendStore {
	return &FriendStore{db: db}
}

var _ repository.FriendRepository = (*FriendStore)(nil)

// Create inserts a friendship edge. Returns apperror.ErrConflict when the
// two users are already friends.
func (s *FriendStore) Create(ctx context.Context, pair *model.FriendPair) error {
	if pair.UserLo > pair.UserHi {
		pair.UserLo, pair.UserHi = pair.UserHi, pair.UserLo
	}
	pair.CreatedAt = time.Now()

	res, err := s.db.conn.ExecContext(ctx,
		`INSERT INTO friends (user_lo, user_hi, created_at) VALUES (?, ?, ?)`,
		pair.UserLo, pair.UserHi, pair.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("users are already friends")
		}
		return fmt.Errorf("sqlite: inserting friend pair: %w", err)
	}

	pair.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading friend pair id: %w", err)
	}
	return nil
}

// Exists reports whether a and b are friends, in either order.
func (s *FriendStore) Exists(ctx context.Context, a, b int64) (bool, error) {
	if a > b {
		a, b = b, a
	}
	var one int
	err := s.db.conn.QueryRowContext(ctx,
		`SELECT 1 FROM friends WHERE user_lo = ? AND user_hi = ?`, a, b,
	).Scan(&one)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("sqlite: checking friendship (%d,%d): %w", a, b, err)
	}
	return true, nil
}

// ListByUser returns every edge that includes userID.
func (s *FriendStore) ListByUser(ctx context.Context, userID int64) ([]model.FriendPair, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT id, user_lo, user_hi, created_at FROM friends
		 WHERE user_lo = ? OR user_hi = ?
		 ORDER BY id ASC`,
		userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing friends for user %d: %w", userID, err)
	}
	defer rows.Close()

	var pairs []model.FriendPair
	for rows.Next() {
		var p model.FriendPair
		if err := rows.Scan(&p.ID, &p.UserLo, &p.UserHi, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning friend row: %w", err)
		}
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating friends: %w", err)
	}
	return pairs, nil
}

// Delete removes the edge between a and b, in either order.
func (s *FriendStore) Delete(ctx context.Context, a, b int64) error {
	if a > b {
		a, b = b, a
	}
	res, err := s.db.conn.ExecContext(ctx,
		`DELETE FROM friends WHERE user_lo = ? AND user_hi = ?`, a, b,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting friend pair (%d,%d): %w", a, b, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return &apperror.AppError{
			Err:     apperror.ErrNotFound,
			Message: "friendship not found",
		}
	}
	return nil
}
