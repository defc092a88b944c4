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

// GiftService owns the gift lifecycle and, at its core, the claim protocol:
// the state machine over a gift's locked_by field.
//
// A gift's lock is either free (locked_by empty) or held by exactly one group
// member. The transitions are Claim and Release; both are governed here, with
// the single atomic winner-picking write delegated to the repository's
// TryLockGift. The gift's owner has no standing in either transition — they
// can edit or delete the gift (which drops any claim as a side effect of the
// full replace), but they can never inspect or steer who holds the lock.
type GiftService struct {
	gifts  repository.GiftRepository
	users  repository.UserRepository
	logger *slog.Logger
}

// NewGiftService creates a GiftService.
func NewGiftService(gifts repository.GiftRepository, users repository.UserRepository, logger *slog.Logger) *GiftService {
	return &GiftService{
		gifts:  gifts,
		users:  users,
		logger: logger,
	}
}

// validateGiftFields applies the uniform gift validation rules. Every entry
// point that writes gift fields (create, edit) goes through here.
func validateGiftFields(name string, price int, location string) (string, string, error) {
	name = strings.TrimSpace(name)
	location = strings.TrimSpace(location)

	if name == "" {
		return "", "", apperror.ValidationFailed("name", "gift name is required")
	}
	if len(name) > MaxGiftNameLength {
		return "", "", apperror.ValidationFailed("name",
			fmt.Sprintf("gift name must be %d characters or less", MaxGiftNameLength))
	}
	if price <= 0 {
		return "", "", apperror.ValidationFailed("price", "price must be a positive integer")
	}
	if location == "" {
		return "", "", apperror.ValidationFailed("location", "location is required")
	}
	if len(location) > MaxLocationLength {
		return "", "", apperror.ValidationFailed("location",
			fmt.Sprintf("location must be %d characters or less", MaxLocationLength))
	}

	return name, location, nil
}

// Create validates and adds a gift to a user's wish list. The user must exist
// and belong to the given group.
func (s *GiftService) Create(ctx context.Context, groupID, userID, name string, price int, location string) (*model.Gift, error) {
	name, location, err := validateGiftFields(name, price, location)
	if err != nil {
		return nil, err
	}

	owner, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if owner.GroupID != groupID {
		return nil, apperror.NotFound("user", userID)
	}

	gift := &model.Gift{
		UserID:   userID,
		Name:     name,
		Price:    price,
		Location: location,
	}
	if err := s.gifts.CreateGift(ctx, gift); err != nil {
		s.logger.Error("failed to create gift",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating gift: %w", err)
	}

	s.logger.Info("gift created",
		slog.String("id", gift.ID),
		slog.String("user_id", userID),
		slog.String("name", gift.Name),
	)

	return gift, nil
}

// ListOwn returns a user's own wish list, projected for the owner: each entry
// carries only the claimed boolean, never the claimer's identity. This is the
// view that keeps the surprise — the owner learns THAT a gift is spoken for,
// not by whom.
func (s *GiftService) ListOwn(ctx context.Context, userID string) ([]model.GiftView, error) {
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}

	gifts, err := s.gifts.ListGiftsByOwner(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list own gifts",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing gifts: %w", err)
	}

	views := make([]model.GiftView, 0, len(gifts))
	for _, g := range gifts {
		views = append(views, model.GiftView{
			ID:       g.ID,
			OwnerID:  g.UserID,
			Name:     g.Name,
			Price:    g.Price,
			Location: g.Location,
			Claimed:  g.Locked(),
			// ClaimedByMe stays false: owners can't hold their own locks.
		})
	}

	return views, nil
}

// ListGroup returns every gift in the group with owner names attached,
// projected for the given viewer. The viewer sees ClaimedByMe=true on gifts
// they claimed (their cue to offer the release control) and an anonymous
// Claimed=true on everything reserved by someone else.
//
// viewerID may be empty — a viewer who hasn't picked a name yet just sees the
// anonymous claimed flags.
func (s *GiftService) ListGroup(ctx context.Context, groupID, viewerID string) ([]model.GiftView, error) {
	gifts, err := s.gifts.ListGiftsByGroup(ctx, groupID)
	if err != nil {
		s.logger.Error("failed to list group gifts",
			slog.String("group_id", groupID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing group gifts: %w", err)
	}

	views := make([]model.GiftView, 0, len(gifts))
	for _, g := range gifts {
		views = append(views, g.View(viewerID))
	}

	return views, nil
}

// Claim reserves a gift for claimantID: the Unlocked → LockedBy(claimant)
// transition.
//
// Outcomes:
//   - gift missing                         → ErrNotFound
//   - claimant missing or in another group → ErrInvalidActor
//   - claimant is the gift's owner         → ErrForbidden
//   - already claimed by claimant          → success, no write (idempotent)
//   - already claimed by someone else      → ErrConflict
//   - otherwise                            → conditional write; a write that
//     matches no row means another claim won the race, reported as
//     ErrConflict, never retried
//
// The read-check-write sequence here is advisory only; the conditional UPDATE
// is what actually decides races.
func (s *GiftService) Claim(ctx context.Context, giftID, claimantID string) error {
	claimantID = strings.TrimSpace(claimantID)
	if claimantID == "" {
		return apperror.ValidationFailed("lockedBy", "claiming user ID is required")
	}

	gift, err := s.gifts.GetGiftByID(ctx, giftID)
	if err != nil {
		return err
	}

	claimant, err := s.users.GetUserByID(ctx, claimantID)
	if errors.Is(err, apperror.ErrNotFound) {
		return apperror.InvalidActor("claiming user does not exist")
	}
	if err != nil {
		return err
	}

	owner, err := s.users.GetUserByID(ctx, gift.UserID)
	if err != nil {
		return fmt.Errorf("loading gift owner: %w", err)
	}
	if claimant.GroupID != owner.GroupID {
		return apperror.InvalidActor("claiming user is not a member of the gift's group")
	}
	if claimant.ID == gift.UserID {
		return apperror.Forbidden("you cannot claim a gift from your own list")
	}

	if gift.LockedBy == claimantID {
		// Re-claiming your own claim is a no-op success.
		return nil
	}
	if gift.Locked() {
		return apperror.Conflict("gift", "already claimed by another user")
	}

	won, err := s.gifts.TryLockGift(ctx, giftID, claimantID)
	if err != nil {
		s.logger.Error("failed to lock gift",
			slog.String("gift_id", giftID),
			slog.String("claimant_id", claimantID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("locking gift: %w", err)
	}
	if !won {
		// The gift was free moments ago but another claim landed first.
		return apperror.Conflict("gift", "already claimed by another user")
	}

	s.logger.Info("gift claimed",
		slog.String("gift_id", giftID),
		slog.String("claimant_id", claimantID),
	)

	return nil
}

// Release returns a claimed gift to the unclaimed state: LockedBy(x) →
// Unlocked, allowed only for x.
//
// Outcomes:
//   - requester missing from request   → ErrValidation (an anonymous release
//     would let anyone strip claims, so the actor is required)
//   - gift missing                     → ErrNotFound
//   - gift already unclaimed           → success, no write (idempotent)
//   - requester holds the claim        → unlocked, success
//   - someone else holds the claim     → ErrForbidden
//
// The unlock itself is a plain write. Releases commute — any interleaving of
// them ends unclaimed — so there is no race worth detecting.
func (s *GiftService) Release(ctx context.Context, giftID, requesterID string) error {
	requesterID = strings.TrimSpace(requesterID)
	if requesterID == "" {
		return apperror.ValidationFailed("unlockedBy", "releasing user ID is required")
	}

	gift, err := s.gifts.GetGiftByID(ctx, giftID)
	if err != nil {
		return err
	}

	if !gift.Locked() {
		return nil
	}
	if gift.LockedBy != requesterID {
		return apperror.Forbidden("only the user who claimed the gift may release it")
	}

	if err := s.gifts.UnlockGift(ctx, giftID); err != nil {
		s.logger.Error("failed to unlock gift",
			slog.String("gift_id", giftID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("unlocking gift: %w", err)
	}

	s.logger.Info("gift released",
		slog.String("gift_id", giftID),
		slog.String("requester_id", requesterID),
	)

	return nil
}

// Update replaces a gift's name, price, and location. The edit is a full
// replace and any claim on the gift is dropped: the claimer reserved the old
// description, not whatever the owner just changed it to.
func (s *GiftService) Update(ctx context.Context, giftID, name string, price int, location string) (*model.Gift, error) {
	name, location, err := validateGiftFields(name, price, location)
	if err != nil {
		return nil, err
	}

	gift, err := s.gifts.GetGiftByID(ctx, giftID)
	if err != nil {
		return nil, err
	}

	gift.Name = name
	gift.Price = price
	gift.Location = location
	if err := s.gifts.UpdateGift(ctx, gift); err != nil {
		s.logger.Error("failed to update gift",
			slog.String("gift_id", giftID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating gift: %w", err)
	}

	s.logger.Info("gift updated", slog.String("gift_id", giftID))

	return gift, nil
}

// Delete removes a gift entirely, claim and all. Deleting an already-deleted
// gift succeeds — the end state is the same.
func (s *GiftService) Delete(ctx context.Context, giftID string) error {
	giftID = strings.TrimSpace(giftID)
	if giftID == "" {
		return apperror.ValidationFailed("giftId", "gift ID is required")
	}

	if err := s.gifts.DeleteGift(ctx, giftID); err != nil {
		s.logger.Error("failed to delete gift",
			slog.String("gift_id", giftID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting gift: %w", err)
	}

	s.logger.Info("gift deleted", slog.String("gift_id", giftID))

	return nil
}
