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

// CommentStore implements repository.CommentRepository over a shared DB.
type CommentStore struct {
	db *DB
}

// NewCommentStore creates a CommentStore.
func NewCommentStore(db *DB) *CommentStore {
	return &CommentStore{db: db}
}

var _ repository.CommentRepository = (*CommentStore)(nil)

const commentColumns = `id, item_id, author_id, body, as_admin, created_at`

func scanComment(row interface{ Scan(...any) error }) (*model.Comment, error) {
	var c model.Comment
	err := row.Scan(
		&c.ID,
		&c.ItemID,
		&c.AuthorID,
		&c.Body,
		&c.AsAdmin,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new comment and fills in its id and timestamp.
func (s *CommentStore) Create(ctx context.Context, comment *model.Comment) error {
	comment.CreatedAt = time.Now()

	res, err := s.db.conn.ExecContext(ctx,
		`INSERT INTO comments (item_id, author_id, body, as_admin, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		comment.ItemID,
		comment.AuthorID,
		comment.Body,
		comment.AsAdmin,
		comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting comment: %w", err)
	}

	comment.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading comment id: %w", err)
	}
	return nil
}

// GetByID retrieves a comment by id.
func (s *CommentStore) GetByID(ctx context.Context, id int64) (*model.Comment, error) {
	c, err := scanComment(s.db.conn.QueryRowContext(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE id = ?`, id,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("comment", id)
		}
		return nil, fmt.Errorf("sqlite: getting comment %d: %w", id, err)
	}
	return c, nil
}

// ListByItem returns the item's comments oldest first. The anonymization
// engine numbers authors by first appearance, so this ordering is part of
// the contract.
func (s *CommentStore) ListByItem(ctx context.Context, itemID int64) ([]model.Comment, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT `+commentColumns+` FROM comments
		 WHERE item_id = ?
		 ORDER BY id ASC`,
		itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments for item %d: %w", itemID, err)
	}
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment row: %w", err)
		}
		comments = append(comments, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comments: %w", err)
	}
	return comments, nil
}

// Update rewrites the comment body. Author, item, and the as_admin flag are
// fixed at creation.
func (s *CommentStore) Update(ctx context.Context, comment *model.Comment) error {
	res, err := s.db.conn.ExecContext(ctx,
		`UPDATE comments SET body = ? WHERE id = ?`,
		comment.Body,
		comment.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating comment %d: %w", comment.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("comment", comment.ID)
	}
	return nil
}

// Delete removes a comment.
func (s *CommentStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.conn.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting comment %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("comment", id)
	}
	return nil
}
