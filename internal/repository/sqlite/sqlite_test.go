package sqlite

import (
	"context"
	"testing"

	"github.com/queregalo/queregalo/internal/model"
)

// TESTING WITH IN-MEMORY SQLITE:
// Using ":memory:" creates a fresh database that exists only during the test —
// fast, isolated, and destroyed when the connection closes.
//
// newTestDB is a test helper. The t.Helper() call tells the test framework to
// report failures at the CALLER's line number, which keeps test output useful.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestGroup creates a group and fails the test if it errors.
func createTestGroup(t *testing.T, db *DB, name string) *model.Group {
	t.Helper()
	group := &model.Group{Name: name}
	if err := db.CreateGroup(context.Background(), group); err != nil {
		t.Fatalf("failed to create test group: %v", err)
	}
	return group
}

// createTestUser registers a user in a group and fails the test if it errors.
func createTestUser(t *testing.T, db *DB, groupID, name string) *model.User {
	t.Helper()
	user := &model.User{GroupID: groupID, Name: name}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// createTestGift adds a gift to a user's list and fails the test if it errors.
func createTestGift(t *testing.T, db *DB, userID, name string, price int) *model.Gift {
	t.Helper()
	gift := &model.Gift{UserID: userID, Name: name, Price: price, Location: "somewhere"}
	if err := db.CreateGift(context.Background(), gift); err != nil {
		t.Fatalf("failed to create test gift: %v", err)
	}
	return gift
}
