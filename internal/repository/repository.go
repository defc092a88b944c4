package repository

import (
	"context"

	"github.com/queregalo/queregalo/internal/model"
)

type GroupRepository interface {
	CreateGroup(ctx context.Context, group *model.Group) error
	GetGroupByID(ctx context.Context, id string) (*model.Group, error)
}

type UserRepository interface {
	// CreateUser inserts a new user. A (group_id, name) uniqueness violation
	// surfaces as apperror.ErrConflict.
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	// FindUserByName looks a user up by their name within a group.
	// Returns apperror.ErrNotFound when no such user exists.
	FindUserByName(ctx context.Context, groupID, name string) (*model.User, error)
	ListUsersByGroup(ctx context.Context, groupID string) ([]model.User, error)
}

type GiftRepository interface {
	CreateGift(ctx context.Context, gift *model.Gift) error
	GetGiftByID(ctx context.Context, id string) (*model.Gift, error)
	ListGiftsByOwner(ctx context.Context, userID string) ([]model.Gift, error)
	// ListGiftsByGroup returns every gift in a group with the owner's name
	// attached (gifts joined with users on user_id).
	ListGiftsByGroup(ctx context.Context, groupID string) ([]model.GiftWithOwner, error)
	// UpdateGift replaces the gift's editable fields (name, price, location)
	// and clears any claim. Only the owner edits gifts; an edit is a full
	// replace, not a lock transition.
	UpdateGift(ctx context.Context, gift *model.Gift) error
	// TryLockGift atomically sets locked_by = claimantID on the gift, but only
	// if it is currently unclaimed ("... WHERE id = ? AND locked_by IS NULL").
	// It reports whether the conditional write matched the row. A false return
	// with no error means another claim won the race — the caller must treat
	// that as a conflict, not retry.
	TryLockGift(ctx context.Context, giftID, claimantID string) (bool, error)
	// UnlockGift clears locked_by unconditionally. Releasing is idempotent and
	// commutative, so no conditional write is needed once authorization has
	// passed.
	UnlockGift(ctx context.Context, giftID string) error
	DeleteGift(ctx context.Context, id string) error
}
