package entity

import "time"

// Post is a feed entry. Likes holds liker user IDs, each at most once.
// Comments are append-only and kept in insertion order.
type Post struct {
	ID        string
	UserID    string
	Text      string
	Images    []string
	Likes     []string
	Comments  []Comment
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Comment struct {
	ID        string
	UserID    string
	Text      string
	CreatedAt time.Time
}

// LikedBy reports whether userID is in the liker set.
func (p *Post) LikedBy(userID string) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}
