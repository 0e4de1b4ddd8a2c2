package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"users-api/internal/database"
)

// Repository handles user persistence against the users table.
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// List returns read views of the users matching the filter. An empty
// result set is a valid outcome and yields an empty slice.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]UserView, error) {
	var rows []database.User

	q := r.db.NewSelect().
		Model(&rows).
		Column("id", "email", "username", "avatar", "phone_number", "is_active", "is_superuser", "is_verified")

	q, err := filter.Apply(q)
	if err != nil {
		return nil, err
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	views := make([]UserView, 0, len(rows))
	for i := range rows {
		views = append(views, mapDBUserToView(&rows[i]))
	}
	return views, nil
}

// GetByID retrieves a user's read view by ID.
func (r *Repository) GetByID(ctx context.Context, id int64) (*UserView, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	view := mapDBUserToView(dbUser)
	return &view, nil
}

// GetByEmail retrieves the full write-model by email. Only the auth layer
// uses this; the password hash never reaches an HTTP response.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("email = ?", email).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// Create inserts a new user with the default flags (active, not superuser,
// not verified). The store assigns the ID.
func (r *Repository) Create(ctx context.Context, email, username, hashedPassword string) (*User, error) {
	// The schema carries no unique constraint on email, so uniqueness is
	// enforced here before the insert.
	exists, err := r.db.NewSelect().
		Model((*database.User)(nil)).
		Where("email = ?", email).
		Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	dbUser := &database.User{
		Email:          email,
		Username:       username,
		HashedPassword: hashedPassword,
		IsActive:       true,
		IsSuperuser:    false,
		IsVerified:     false,
	}

	_, err = r.db.NewInsert().
		Model(dbUser).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// Update writes the six mutable profile columns for the given user and
// returns the fresh view. id, hashed_password and is_superuser are not
// touched by this path.
func (r *Repository) Update(ctx context.Context, id int64, req UpdateUserRequest) (*UserView, error) {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("email = ?", req.Email).
		Set("username = ?", req.Username).
		Set("avatar = ?", req.Avatar).
		Set("phone_number = ?", req.PhoneNumber).
		Set("is_active = ?", req.IsActive).
		Set("is_verified = ?", req.IsVerified).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	// Read-after-write: return what is actually persisted.
	return r.GetByID(ctx, id)
}

// Delete removes the user's row. Deleting an already-absent row is not an
// error: the operation is idempotent in effect.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.NewDelete().
		Model((*database.User)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// Search returns users whose username contains the query as a
// case-sensitive substring. Unlike List, an empty result set fails with
// ErrNotFound.
func (r *Repository) Search(ctx context.Context, query string) ([]UserView, error) {
	var rows []database.User

	err := r.db.NewSelect().
		Model(&rows).
		Where("username LIKE '%' || ? || '%'", query).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	if len(rows) == 0 {
		return nil, ErrNotFound
	}

	views := make([]UserView, 0, len(rows))
	for i := range rows {
		views = append(views, mapDBUserToView(&rows[i]))
	}
	return views, nil
}
