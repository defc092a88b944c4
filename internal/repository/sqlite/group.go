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

// Compile-time check that *DB implements repository.GroupRepository.
var _ repository.GroupRepository = (*DB)(nil)

// CreateGroup inserts a new group, generating its opaque ID here.
//
// The generator does not pre-check for collisions; the PRIMARY KEY constraint
// is the backstop, and a violation (astronomically unlikely at this ID length)
// comes back as ErrConflict.
func (db *DB) CreateGroup(ctx context.Context, group *model.Group) error {
	group.ID = identifier.GroupID()
	group.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO groups (id, name, created_at) VALUES (?, ?, ?)`,
		group.ID,
		group.Name,
		group.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("group", "id collision on insert")
		}
		return fmt.Errorf("sqlite: creating group: %w", err)
	}

	return nil
}

// GetGroupByID retrieves a group by its ID.
// Returns apperror.ErrNotFound if no group exists with that ID.
func (db *DB) GetGroupByID(ctx context.Context, id string) (*model.Group, error) {
	var g model.Group

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM groups WHERE id = ?`,
		id,
	).Scan(&g.ID, &g.Name, &g.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("group", id)
		}
		return nil, fmt.Errorf("sqlite: getting group %s: %w", id, err)
	}

	return &g, nil
}
