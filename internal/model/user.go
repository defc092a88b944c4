// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a member of a group.
//
// There is no account or password — a user is just a name registered inside a
// group, and knowing the user's opaque ID is what identifies you as them.
// The (GroupID, Name) pair is unique: registering the same name in the same
// group again returns the existing user instead of creating a duplicate, so a
// name acts as a de-facto identity within its group.
//
// Users are created on first use of a name and never mutated or deleted.
type User struct {
	ID        string    `json:"id"`
	GroupID   string    `json:"groupId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
