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

// WishlistStore implements repository.WishlistRepository over a shared DB.
type WishlistStore struct {
	db *DB
}

// NewWishlistStore creates a WishlistStore.
func NewWishlistStore(db *DB) *WishlistStore {
	return &WishlistStore{db: db}
}

var _ repository.WishlistRepository = (*WishlistStore)(nil)

const wishlistColumns = `id, owner_id, name, description, visibility, created_at, updated_at`

func scanWishlist(row interface{ Scan(...any) error }) (*model.Wishlist, error) {
	var w model.Wishlist
	var visibility string
	err := row.Scan(
		&w.ID,
		&w.OwnerID,
		&w.Name,
		&w.Description,
		&visibility,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	w.Visibility = model.Visibility(visibility)
	if !w.Visibility.Valid() {
		return nil, fmt.Errorf("unknown visibility %q for wishlist %d", visibility, w.ID)
	}
	return &w, nil
}

// Create inserts a new wishlist and fills in its id and timestamps.
func (s *WishlistStore) Create(ctx context.Context, list *model.Wishlist) error {
	now := time.Now()
	list.CreatedAt = now
	list.UpdatedAt = now

	res, err := s.db.conn.ExecContext(ctx,
		`INSERT INTO wishlists (owner_id, name, description, visibility, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		list.OwnerID,
		list.Name,
		list.Description,
		string(list.Visibility),
		list.CreatedAt,
		list.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting wishlist: %w", err)
	}

	list.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading wishlist id: %w", err)
	}
	return nil
}

// GetByID retrieves a wishlist by id.
func (s *WishlistStore) GetByID(ctx context.Context, id int64) (*model.Wishlist, error) {
	w, err := scanWishlist(s.db.conn.QueryRowContext(ctx,
		`SELECT `+wishlistColumns+` FROM wishlists WHERE id = ?`, id,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("wishlist", id)
		}
		return nil, fmt.Errorf("sqlite: getting wishlist %d: %w", id, err)
	}
	return w, nil
}

// ListByOwner returns all wishlists owned by ownerID, newest first.
func (s *WishlistStore) ListByOwner(ctx context.Context, ownerID int64) ([]model.Wishlist, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT `+wishlistColumns+` FROM wishlists
		 WHERE owner_id = ?
		 ORDER BY created_at DESC, id DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing wishlists for user %d: %w", ownerID, err)
	}
	defer rows.Close()

	var lists []model.Wishlist
	for rows.Next() {
		w, err := scanWishlist(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning wishlist row: %w", err)
		}
		lists = append(lists, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating wishlists: %w", err)
	}
	return lists, nil
}

// Update writes name, description, and visibility. Owner and id never change.
func (s *WishlistStore) Update(ctx context.Context, list *model.Wishlist) error {
	list.UpdatedAt = time.Now()

	res, err := s.db.conn.ExecContext(ctx,
		`UPDATE wishlists SET name = ?, description = ?, visibility = ?, updated_at = ?
		 WHERE id = ?`,
		list.Name,
		list.Description,
		string(list.Visibility),
		list.UpdatedAt,
		list.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating wishlist %d: %w", list.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("wishlist", list.ID)
	}
	return nil
}

// Delete removes a wishlist. Items, their reservations, and their comments
// go with it via the foreign-key cascade.
func (s *WishlistStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.conn.ExecContext(ctx, `DELETE FROM wishlists WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting wishlist %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("wishlist", id)
	}
	return nil
}
