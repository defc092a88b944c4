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

// compile-time check that *DB implements repository.GiftRepository
var _ repository.GiftRepository = (*DB)(nil)

// CreateGift inserts a new gift for its owner. Gifts start unclaimed, so
// locked_by is inserted as NULL.
func (db *DB) CreateGift(ctx context.Context, gift *model.Gift) error {
	gift.ID = identifier.ShortID()
	gift.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO gifts (id, user_id, name, price, location, locked_by, created_at)
		 VALUES (?, ?, ?, ?, ?, NULL, ?)`,
		gift.ID,
		gift.UserID,
		gift.Name,
		gift.Price,
		gift.Location,
		gift.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("gift", "id collision on insert")
		}
		return fmt.Errorf("sqlite: creating gift for user %s: %w", gift.UserID, err)
	}

	return nil
}

// GetGiftByID retrieves a single gift, including its raw lock state.
// Returns apperror.ErrNotFound if the gift doesn't exist.
func (db *DB) GetGiftByID(ctx context.Context, id string) (*model.Gift, error) {
	var g model.Gift
	var lockedBy sql.NullString

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, name, price, location, locked_by, created_at
		 FROM gifts WHERE id = ?`,
		id,
	).Scan(&g.ID, &g.UserID, &g.Name, &g.Price, &g.Location, &lockedBy, &g.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("gift", id)
		}
		return nil, fmt.Errorf("sqlite: getting gift %s: %w", id, err)
	}

	// NULL locked_by means unclaimed; the model uses "" for that.
	g.LockedBy = lockedBy.String

	return &g, nil
}

// ListGiftsByOwner returns one user's wish list, oldest first.
func (db *DB) ListGiftsByOwner(ctx context.Context, userID string) ([]model.Gift, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, name, price, location, locked_by, created_at
		 FROM gifts WHERE user_id = ?
		 ORDER BY created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing gifts for user %s: %w", userID, err)
	}
	defer rows.Close()

	gifts := make([]model.Gift, 0)
	for rows.Next() {
		var g model.Gift
		var lockedBy sql.NullString
		if err := rows.Scan(&g.ID, &g.UserID, &g.Name, &g.Price, &g.Location, &lockedBy, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning gift row: %w", err)
		}
		g.LockedBy = lockedBy.String
		gifts = append(gifts, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating gifts: %w", err)
	}

	return gifts, nil
}

// ListGiftsByGroup returns every gift in a group joined with the owner's name.
// This feeds the group-wide "gifts of your friends" view; the raw locked_by
// comes along and is projected per-viewer by the service, never served as-is.
func (db *DB) ListGiftsByGroup(ctx context.Context, groupID string) ([]model.GiftWithOwner, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT g.id, g.user_id, g.name, g.price, g.location, g.locked_by, g.created_at,
		        u.name AS owner_name
		 FROM gifts g
		 JOIN users u ON g.user_id = u.id
		 WHERE u.group_id = ?
		 ORDER BY u.created_at ASC, g.created_at ASC`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing gifts in group %s: %w", groupID, err)
	}
	defer rows.Close()

	gifts := make([]model.GiftWithOwner, 0)
	for rows.Next() {
		var g model.GiftWithOwner
		var lockedBy sql.NullString
		if err := rows.Scan(&g.ID, &g.UserID, &g.Name, &g.Price, &g.Location, &lockedBy,
			&g.CreatedAt, &g.OwnerName); err != nil {
			return nil, fmt.Errorf("sqlite: scanning group gift row: %w", err)
		}
		g.LockedBy = lockedBy.String
		gifts = append(gifts, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating group gifts: %w", err)
	}

	return gifts, nil
}

// UpdateGift replaces a gift's editable fields and clears any claim.
//
// An owner edit is a full replace: the gift a claimer reserved may no longer
// be the gift described afterwards, so the claim does not survive the edit.
func (db *DB) UpdateGift(ctx context.Context, gift *model.Gift) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE gifts
		 SET name = ?, price = ?, location = ?, locked_by = NULL
		 WHERE id = ?`,
		gift.Name,
		gift.Price,
		gift.Location,
		gift.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating gift %s: %w", gift.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("gift", gift.ID)
	}

	gift.LockedBy = ""
	return nil
}

// TryLockGift is the compare-and-set at the heart of the claim protocol.
//
// The WHERE clause only matches while the gift is unclaimed, so two concurrent
// claims serialize at the database: exactly one UPDATE affects the row, the
// other affects zero rows and returns false. A false return is final — the
// caller reports the conflict rather than retrying, because the slot is
// genuinely taken.
//
// No in-process lock backs this up. Independent server processes sharing the
// database get the same guarantee from the same statement.
func (db *DB) TryLockGift(ctx context.Context, giftID, claimantID string) (bool, error) {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE gifts SET locked_by = ? WHERE id = ? AND locked_by IS NULL`,
		claimantID,
		giftID,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: locking gift %s: %w", giftID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// UnlockGift clears the claim unconditionally. Authorization (only the holder
// may release) happens in the service before this runs; at this level releases
// are idempotent and any interleaving of them ends at unclaimed.
func (db *DB) UnlockGift(ctx context.Context, giftID string) error {
	_, err := db.conn.ExecContext(ctx,
		`UPDATE gifts SET locked_by = NULL WHERE id = ?`,
		giftID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: unlocking gift %s: %w", giftID, err)
	}

	return nil
}

// DeleteGift removes a gift. Deleting a missing gift is a no-op, matching the
// delete endpoint's idempotent contract.
func (db *DB) DeleteGift(ctx context.Context, id string) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM gifts WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting gift %s: %w", id, err)
	}

	return nil
}
