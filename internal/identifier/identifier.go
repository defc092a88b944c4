// Package identifier generates the opaque IDs used for groups, users, and gifts.
//
// A group's ID is also its invite link — whoever knows it can join the group —
// so group IDs are built to resist enumeration and guessing. User and gift IDs
// only need to be unique-ish; they are short because they appear all over URLs
// and request bodies.
//
// Neither generator blocks or returns an error, and neither pre-checks for
// collisions. Uniqueness is validated, not guaranteed, here: the database's
// PRIMARY KEY and UNIQUE constraints are the actual correctness backstop, and
// an insert that trips one surfaces as a conflict.
package identifier

import (
	"crypto/rand"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/xid"
)

// GroupID returns a new group identifier: 8 hex characters from crypto/rand
// followed by an xid (20 characters, leading timestamp component plus
// machine/process/counter tail), lower-cased. 28 characters total, well above
// the 16-character floor needed to make link guessing impractical.
func GroupID() string {
	var b [4]byte
	// rand.Read on crypto/rand never fails on supported platforms (it panics
	// on broken ones rather than returning weak output).
	_, _ = rand.Read(b[:])
	return strings.ToLower(hex.EncodeToString(b[:]) + xid.New().String())
}

// ShortID returns an 8-character token for users and gifts: the first 8 hex
// characters of a random UUID. Collision probability is non-zero but
// negligible at tens of entities per group; the unique index catches the rest.
func ShortID() string {
	return uuid.New().String()[:8]
}
