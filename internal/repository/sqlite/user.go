package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/queregalo/queregalo/internal/apperror"
	"github.com/queregalo/queregalo/internal/identifier"
	"github.com/queregalo/queregalo/internal/model"
	"github.com/queregalo/queregalo/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// CreateUser inserts a new user into a group.
//
// The UNIQUE(group_id, name) constraint is what makes names identities within
// a group. The service layer normally does a find-then-create, but two
// concurrent registrations of the same name can both pass the find — when the
// slower insert hits the constraint we surface ErrConflict, and the service
// re-fetches the winner's row instead of failing the request.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	user.ID = identifier.ShortID()
	user.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, group_id, name, created_at) VALUES (?, ?, ?, ?)`,
		user.ID,
		user.GroupID,
		user.Name,
		user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", fmt.Sprintf("named %q already exists in group", user.Name))
		}
		return fmt.Errorf("sqlite: creating user in group %s: %w", user.GroupID, err)
	}

	return nil
}

// GetUserByID retrieves a user by their opaque ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, group_id, name, created_at FROM users WHERE id = ?`,
		id,
	).Scan(&u.ID, &u.GroupID, &u.Name, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}

	return &u, nil
}

// FindUserByName looks a user up by name within a group.
func (db *DB) FindUserByName(ctx context.Context, groupID, name string) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, group_id, name, created_at
		 FROM users WHERE group_id = ? AND name = ?`,
		groupID, name,
	).Scan(&u.ID, &u.GroupID, &u.Name, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", name)
		}
		return nil, fmt.Errorf("sqlite: finding user %q in group %s: %w", name, groupID, err)
	}

	return &u, nil
}

// ListUsersByGroup returns all members of a group, oldest first.
func (db *DB) ListUsersByGroup(ctx context.Context, groupID string) ([]model.User, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, group_id, name, created_at
		 FROM users WHERE group_id = ?
		 ORDER BY created_at ASC`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users in group %s: %w", groupID, err)
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.GroupID, &u.Name, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating users: %w", err)
	}

	return users, nil
}
