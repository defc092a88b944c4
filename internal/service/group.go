// Package service contains the business logic layer of the application.
//
// The layering follows the usual three-layer shape:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (business layer) → validates, enforces the lock protocol rules
//	Repository (data layer)  → reads/writes SQLite
//
// Services receive repository interfaces, not concrete types, so tests inject
// in-memory mocks and the sqlite package stays an implementation detail of
// main. Services return apperror values; they never touch HTTP status codes
// and never log-and-swallow an error.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/queregalo/queregalo/internal/apperror"
	"github.com/queregalo/queregalo/internal/model"
	"github.com/queregalo/queregalo/internal/repository"
)

// Validation constants. One place for every entity's limits, so the create
// and edit paths can't drift apart.
const (
	MaxGroupNameLength = 100
	MinUserNameLength  = 2
	MaxUserNameLength  = 100
	MaxGiftNameLength  = 200
	MaxLocationLength  = 500
)

// GroupService handles creating and fetching groups.
type GroupService struct {
	groups repository.GroupRepository
	logger *slog.Logger
}

// NewGroupService creates a GroupService.
func NewGroupService(groups repository.GroupRepository, logger *slog.Logger) *GroupService {
	return &GroupService{
		groups: groups,
		logger: logger,
	}
}

// Create validates the name and creates a new group. The repository generates
// the hard-to-guess ID that doubles as the group's invite link.
func (s *GroupService) Create(ctx context.Context, name string) (*model.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "group name is required")
	}
	if len(name) > MaxGroupNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("group name must be %d characters or less", MaxGroupNameLength))
	}

	group := &model.Group{Name: name}
	if err := s.groups.CreateGroup(ctx, group); err != nil {
		s.logger.Error("failed to create group",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating group: %w", err)
	}

	s.logger.Info("group created",
		slog.String("id", group.ID),
		slog.String("name", group.Name),
	)

	return group, nil
}

// Get retrieves a group by its ID.
// Returns apperror.ErrNotFound if the group doesn't exist.
func (s *GroupService) Get(ctx context.Context, id string) (*model.Group, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("groupId", "group ID is required")
	}

	return s.groups.GetGroupByID(ctx, id)
}
