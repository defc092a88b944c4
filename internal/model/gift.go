// Package model defines the data structures used throughout the application.
package model

import "time"

// Gift is a wish-list entry owned by one user and visible to the whole group.
//
// UserID is the owner — the person who wants the gift. LockedBy is the claimer —
// the group member who reserved it with "I'll buy this". An empty LockedBy means
// the gift is unclaimed; in the database the column is NULL so the conditional
// claim UPDATE can match on "locked_by IS NULL".
//
// Gift is the raw storage shape. It carries LockedBy verbatim and must never be
// serialized to a client directly — handlers go through GiftView, which projects
// the lock state relative to a viewer so the owner can't learn who claimed
// their gift.
type Gift struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Price     int       `json:"price"`
	Location  string    `json:"location"`
	LockedBy  string    `json:"lockedBy"` // empty = unclaimed
	CreatedAt time.Time `json:"createdAt"`
}

// Locked reports whether the gift is currently claimed.
func (g *Gift) Locked() bool {
	return g.LockedBy != ""
}

// GiftView is the viewer-relative projection of a Gift.
//
// The raw LockedBy field never crosses the HTTP boundary. Instead every reader
// gets two booleans:
//
//   - Claimed:     someone has reserved this gift
//   - ClaimedByMe: the viewer themself holds the claim
//
// The gift's owner therefore only ever sees "claimed / not claimed", other
// members see "claimed, unavailable", and the claimer sees ClaimedByMe=true,
// which is what entitles them to the release control.
type GiftView struct {
	ID          string `json:"id"`
	OwnerID     string `json:"ownerId"`
	OwnerName   string `json:"ownerName,omitempty"`
	Name        string `json:"name"`
	Price       int    `json:"price"`
	Location    string `json:"location"`
	Claimed     bool   `json:"claimed"`
	ClaimedByMe bool   `json:"claimedByMe"`
}

// GiftWithOwner is a Gift joined with its owner's name, as produced by the
// group-wide listing query. Still a storage shape — project before serving.
type GiftWithOwner struct {
	Gift
	OwnerName string `json:"ownerName"`
}

// View projects the gift for the given viewer.
func (g *GiftWithOwner) View(viewerID string) GiftView {
	return GiftView{
		ID:          g.ID,
		OwnerID:     g.UserID,
		OwnerName:   g.OwnerName,
		Name:        g.Name,
		Price:       g.Price,
		Location:    g.Location,
		Claimed:     g.Locked(),
		ClaimedByMe: g.LockedBy != "" && g.LockedBy == viewerID,
	}
}
