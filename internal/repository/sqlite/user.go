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

// UserStore implements repository.UserRepository over a shared DB.
type UserStore struct {
	db *DB
}

// NewUserStore creates a UserStore.
func NewUserStore(db *DB) *UserStore {
	return &UserStore{db: db}
}

// compile-time check that *UserStore implements repository.UserRepository
var _ repository.UserRepository = (*UserStore)(nil)

const userColumns = `id, email, name, password_hash, github_id, role, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var role string
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.PasswordHash,
		&u.GitHubID,
		&role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Role = model.Role(role)
	if !u.Role.Valid() {
		// A row written by an older or foreign tool; fail loudly rather
		// than let an unknown role slip through the access checks.
		return nil, fmt.Errorf("unknown role %q for user %d", role, u.ID)
	}
	return &u, nil
}

// Create inserts a new user. Returns apperror.ErrConflict when the email is
// already registered.
func (s *UserStore) Create(ctx context.Context, user *model.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = model.RoleRegular
	}

	res, err := s.db.conn.ExecContext(ctx,
		`INSERT INTO users (email, name, password_hash, github_id, role, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.GitHubID,
		string(user.Role),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict(fmt.Sprintf("email %s is already registered", user.Email))
		}
		return fmt.Errorf("sqlite: inserting user: %w", err)
	}

	user.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading user id: %w", err)
	}
	return nil
}

// GetByID retrieves a user by their internal id.
func (s *UserStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	u, err := scanUser(s.db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %d: %w", id, err)
	}
	return u, nil
}

// GetByEmail retrieves a user by their email address.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(s.db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &apperror.AppError{
				Err:     apperror.ErrNotFound,
				Message: "user not found",
			}
		}
		return nil, fmt.Errorf("sqlite: getting user by email: %w", err)
	}
	return u, nil
}

// UpsertGitHub inserts a user on first GitHub sign-in and refreshes their
// profile on subsequent ones, keyed by github_id. The internal id is stable
// across logins.
func (s *UserStore) UpsertGitHub(ctx context.Context, user *model.User) error {
	var existingID int64
	err := s.db.conn.QueryRowContext(ctx,
		`SELECT id FROM users WHERE github_id = ?`, user.GitHubID,
	).Scan(&existingID)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("sqlite: looking up user by github_id %d: %w", user.GitHubID, err)
	}

	if existingID != 0 {
		user.ID = existingID
		user.UpdatedAt = time.Now()
		_, err = s.db.conn.ExecContext(ctx,
			`UPDATE users SET name = ?, email = ?, updated_at = ? WHERE id = ?`,
			user.Name, user.Email, user.UpdatedAt, user.ID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: updating user %d: %w", user.ID, err)
		}
		// Role is assigned at creation and kept across profile refreshes.
		var role string
		if err := s.db.conn.QueryRowContext(ctx,
			`SELECT role FROM users WHERE id = ?`, user.ID,
		).Scan(&role); err != nil {
			return fmt.Errorf("sqlite: reading role for user %d: %w", user.ID, err)
		}
		user.Role = model.Role(role)
		return nil
	}

	return s.Create(ctx, user)
}

// SetRole updates a user's role. Only the startup bootstrap calls this.
func (s *UserStore) SetRole(ctx context.Context, id int64, role model.Role) error {
	res, err := s.db.conn.ExecContext(ctx,
		`UPDATE users SET role = ?, updated_at = ? WHERE id = ?`,
		string(role), time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: setting role for user %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("user", id)
	}
	return nil
}

// Delete removes a user. Foreign keys cascade to their wishlists (and from
// there to items, reservations, comments) plus the user's own reservations,
// comments, and friendships.
func (s *UserStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.conn.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting user %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("user", id)
	}
	return nil
}
