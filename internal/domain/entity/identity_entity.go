package entity

import "time"

// Identity is the authenticated caller. It is only ever built from a
// verified, non-revoked session token.
type Identity struct {
	UserID    string
	Token     string
	ExpiresAt time.Time
}
