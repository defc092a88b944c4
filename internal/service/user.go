package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/queregalo/queregalo/internal/apperror"
	"github.com/queregalo/queregalo/internal/model"
	"github.com/queregalo/queregalo/internal/repository"
)

// UserService handles membership: registering a name in a group and listing
// the members.
type UserService struct {
	users  repository.UserRepository
	groups repository.GroupRepository
	logger *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(users repository.UserRepository, groups repository.GroupRepository, logger *slog.Logger) *UserService {
	return &UserService{
		users:  users,
		groups: groups,
		logger: logger,
	}
}

// Join registers a name in a group, or fetches the existing user if the name
// is already taken there. Within a group a name IS the identity, so this is
// deliberately idempotent: submitting "Ana" twice returns the same user both
// times rather than erroring.
//
// Two concurrent first-time registrations of the same name can both miss on
// the lookup; the UNIQUE(group_id, name) index rejects the slower insert and
// we re-fetch the row the winner created.
func (s *UserService) Join(ctx context.Context, groupID, name string) (*model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "user name is required")
	}
	if len(name) < MinUserNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("user name must be at least %d characters", MinUserNameLength))
	}
	if len(name) > MaxUserNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("user name must be %d characters or less", MaxUserNameLength))
	}

	// The group must exist before anyone can join it.
	if _, err := s.groups.GetGroupByID(ctx, groupID); err != nil {
		return nil, err
	}

	existing, err := s.users.FindUserByName(ctx, groupID, name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("looking up user %q: %w", name, err)
	}

	user := &model.User{GroupID: groupID, Name: name}
	err = s.users.CreateUser(ctx, user)
	if errors.Is(err, apperror.ErrConflict) {
		// Lost a registration race — someone created this name between our
		// lookup and insert. Their row is the identity now.
		return s.users.FindUserByName(ctx, groupID, name)
	}
	if err != nil {
		s.logger.Error("failed to create user",
			slog.String("group_id", groupID),
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user joined group",
		slog.String("id", user.ID),
		slog.String("group_id", groupID),
		slog.String("name", name),
	)

	return user, nil
}

// List returns the members of a group.
// Returns apperror.ErrNotFound if the group doesn't exist.
func (s *UserService) List(ctx context.Context, groupID string) ([]model.User, error) {
	if _, err := s.groups.GetGroupByID(ctx, groupID); err != nil {
		return nil, err
	}

	users, err := s.users.ListUsersByGroup(ctx, groupID)
	if err != nil {
		s.logger.Error("failed to list users",
			slog.String("group_id", groupID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing users: %w", err)
	}

	return users, nil
}
