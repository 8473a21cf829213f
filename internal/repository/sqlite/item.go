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

// ItemStore implements repository.ItemRepository over a shared DB.
type ItemStore struct {
	db *DB
}

// NewItemStore creates an ItemStore.
func NewItemStore(db *DB) *ItemStore {
	return &ItemStore{db: db}
}

var _ repository.ItemRepository = (*ItemStore)(nil)

const itemColumns = `id, wishlist_id, name, description, url, amount, created_at, updated_at`

func scanItem(row interface{ Scan(...any) error }) (*model.WishlistItem, error) {
	var it model.WishlistItem
	err := row.Scan(
		&it.ID,
		&it.WishlistID,
		&it.Name,
		&it.Description,
		&it.URL,
		&it.Amount,
		&it.CreatedAt,
		&it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// Create inserts a new item and fills in its id and timestamps.
func (s *ItemStore) Create(ctx context.Context, item *model.WishlistItem) error {
	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now

	res, err := s.db.conn.ExecContext(ctx,
		`INSERT INTO items (wishlist_id, name, description, url, amount, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.WishlistID,
		item.Name,
		item.Description,
		item.URL,
		item.Amount,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting item: %w", err)
	}

	item.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading item id: %w", err)
	}
	return nil
}

// GetByID retrieves an item by id.
func (s *ItemStore) GetByID(ctx context.Context, id int64) (*model.WishlistItem, error) {
	it, err := scanItem(s.db.conn.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("item", id)
		}
		return nil, fmt.Errorf("sqlite: getting item %d: %w", id, err)
	}
	return it, nil
}

// ListByWishlist returns the wishlist's items in creation order.
func (s *ItemStore) ListByWishlist(ctx context.Context, wishlistID int64) ([]model.WishlistItem, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items
		 WHERE wishlist_id = ?
		 ORDER BY id ASC`,
		wishlistID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing items for wishlist %d: %w", wishlistID, err)
	}
	defer rows.Close()

	var items []model.WishlistItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning item row: %w", err)
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating items: %w", err)
	}
	return items, nil
}

// Update writes name, description, url, and amount. The wishlist an item
// belongs to never changes.
func (s *ItemStore) Update(ctx context.Context, item *model.WishlistItem) error {
	item.UpdatedAt = time.Now()

	res, err := s.db.conn.ExecContext(ctx,
		`UPDATE items SET name = ?, description = ?, url = ?, amount = ?, updated_at = ?
		 WHERE id = ?`,
		item.Name,
		item.Description,
		item.URL,
		item.Amount,
		item.UpdatedAt,
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating item %d: %w", item.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("item", item.ID)
	}
	return nil
}

// Delete removes an item; its reservations and comments cascade.
func (s *ItemStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.conn.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting item %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("item", id)
	}
	return nil
}
