package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/queregalo/queregalo/internal/apperror"
	"github.com/queregalo/queregalo/internal/model"
)

// Hand-written in-memory mocks for the repository interfaces. The services
// only see the interfaces, so swapping SQLite for these maps is invisible to
// the code under test and keeps these tests free of any database setup.

// =========================================================================
// MOCK GROUP REPOSITORY
// =========================================================================

type mockGroupRepo struct {
	groups map[string]*model.Group
	nextID int
}

func newMockGroupRepo() *mockGroupRepo {
	return &mockGroupRepo{groups: make(map[string]*model.Group)}
}

func (m *mockGroupRepo) CreateGroup(_ context.Context, group *model.Group) error {
	m.nextID++
	group.ID = fmt.Sprintf("group-%d", m.nextID)
	stored := *group
	m.groups[group.ID] = &stored
	return nil
}

func (m *mockGroupRepo) GetGroupByID(_ context.Context, id string) (*model.Group, error) {
	group, ok := m.groups[id]
	if !ok {
		return nil, apperror.NotFound("group", id)
	}
	result := *group
	return &result, nil
}

// =========================================================================
// MOCK USER REPOSITORY
// =========================================================================

type mockUserRepo struct {
	users  map[string]*model.User
	nextID int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) CreateUser(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.GroupID == user.GroupID && u.Name == user.Name {
			return apperror.Conflict("user", fmt.Sprintf("named %q already exists in group", user.Name))
		}
	}
	m.nextID++
	user.ID = fmt.Sprintf("user-%d", m.nextID)
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	result := *user
	return &result, nil
}

func (m *mockUserRepo) FindUserByName(_ context.Context, groupID, name string) (*model.User, error) {
	for _, u := range m.users {
		if u.GroupID == groupID && u.Name == name {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", name)
}

func (m *mockUserRepo) ListUsersByGroup(_ context.Context, groupID string) ([]model.User, error) {
	result := make([]model.User, 0)
	for _, u := range m.users {
		if u.GroupID == groupID {
			result = append(result, *u)
		}
	}
	return result, nil
}

// =========================================================================
// MOCK GIFT REPOSITORY
// =========================================================================

type mockGiftRepo struct {
	gifts  map[string]*model.Gift
	owners map[string]string // userID → name, for the join in ListGiftsByGroup
	groups map[string]string // userID → groupID
	nextID int

	// beforeTryLock, when set, runs just before TryLockGift evaluates its
	// condition. Tests use it to slip a competing claim into the window
	// between the service's read and its conditional write.
	beforeTryLock func()
}

func newMockGiftRepo() *mockGiftRepo {
	return &mockGiftRepo{
		gifts:  make(map[string]*model.Gift),
		owners: make(map[string]string),
		groups: make(map[string]string),
	}
}

func (m *mockGiftRepo) CreateGift(_ context.Context, gift *model.Gift) error {
	m.nextID++
	gift.ID = fmt.Sprintf("gift-%d", m.nextID)
	stored := *gift
	m.gifts[gift.ID] = &stored
	return nil
}

func (m *mockGiftRepo) GetGiftByID(_ context.Context, id string) (*model.Gift, error) {
	gift, ok := m.gifts[id]
	if !ok {
		return nil, apperror.NotFound("gift", id)
	}
	result := *gift
	return &result, nil
}

func (m *mockGiftRepo) ListGiftsByOwner(_ context.Context, userID string) ([]model.Gift, error) {
	result := make([]model.Gift, 0)
	for _, g := range m.gifts {
		if g.UserID == userID {
			result = append(result, *g)
		}
	}
	return result, nil
}

func (m *mockGiftRepo) ListGiftsByGroup(_ context.Context, groupID string) ([]model.GiftWithOwner, error) {
	result := make([]model.GiftWithOwner, 0)
	for _, g := range m.gifts {
		if m.groups[g.UserID] == groupID {
			result = append(result, model.GiftWithOwner{Gift: *g, OwnerName: m.owners[g.UserID]})
		}
	}
	return result, nil
}

func (m *mockGiftRepo) UpdateGift(_ context.Context, gift *model.Gift) error {
	stored, ok := m.gifts[gift.ID]
	if !ok {
		return apperror.NotFound("gift", gift.ID)
	}
	stored.Name = gift.Name
	stored.Price = gift.Price
	stored.Location = gift.Location
	stored.LockedBy = ""
	gift.LockedBy = ""
	return nil
}

// TryLockGift mirrors the conditional UPDATE: it only succeeds while the gift
// exists and is unclaimed, and reports whether the write matched.
func (m *mockGiftRepo) TryLockGift(_ context.Context, giftID, claimantID string) (bool, error) {
	if m.beforeTryLock != nil {
		m.beforeTryLock()
	}
	gift, ok := m.gifts[giftID]
	if !ok || gift.LockedBy != "" {
		return false, nil
	}
	gift.LockedBy = claimantID
	return true, nil
}

func (m *mockGiftRepo) UnlockGift(_ context.Context, giftID string) error {
	if gift, ok := m.gifts[giftID]; ok {
		gift.LockedBy = ""
	}
	return nil
}

func (m *mockGiftRepo) DeleteGift(_ context.Context, id string) error {
	delete(m.gifts, id)
	return nil
}

// =========================================================================
// TEST FIXTURE
// =========================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fixture wires the three services onto shared mocks and pre-populates one
// group with three members and one gift, matching the canonical scenario:
// Ana owns "Bici"; Luis and Marta are the other members.
type fixture struct {
	groups *mockGroupRepo
	users  *mockUserRepo
	gifts  *mockGiftRepo

	groupSvc *GroupService
	userSvc  *UserService
	giftSvc  *GiftService

	group *model.Group
	ana   *model.User
	luis  *model.User
	marta *model.User
	bici  *model.Gift
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		groups: newMockGroupRepo(),
		users:  newMockUserRepo(),
		gifts:  newMockGiftRepo(),
	}
	logger := testLogger()
	f.groupSvc = NewGroupService(f.groups, logger)
	f.userSvc = NewUserService(f.users, f.groups, logger)
	f.giftSvc = NewGiftService(f.gifts, f.users, logger)

	ctx := context.Background()

	group, err := f.groupSvc.Create(ctx, "Reyes2024")
	if err != nil {
		t.Fatalf("fixture: creating group: %v", err)
	}
	f.group = group

	for name, dst := range map[string]**model.User{"Ana": &f.ana, "Luis": &f.luis, "Marta": &f.marta} {
		u, err := f.userSvc.Join(ctx, group.ID, name)
		if err != nil {
			t.Fatalf("fixture: joining %s: %v", name, err)
		}
		*dst = u
		f.gifts.owners[u.ID] = u.Name
		f.gifts.groups[u.ID] = u.GroupID
	}

	gift, err := f.giftSvc.Create(ctx, group.ID, f.ana.ID, "Bici", 150, "TiendaX")
	if err != nil {
		t.Fatalf("fixture: creating gift: %v", err)
	}
	f.bici = gift

	return f
}

// lockedBy reads the raw lock state straight from the mock store.
func (f *fixture) lockedBy(t *testing.T, giftID string) string {
	t.Helper()
	gift, ok := f.gifts.gifts[giftID]
	if !ok {
		t.Fatalf("gift %s not in store", giftID)
	}
	return gift.LockedBy
}
