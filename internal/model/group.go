// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// Group is a named collection of users sharing gift lists.
//
// The ID doubles as the group's invite link: anyone who knows it can join.
// That's why it's generated long and hard to guess (see internal/identifier)
// rather than sequential. Groups are immutable after creation and are never
// deleted.
type Group struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
