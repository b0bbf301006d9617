package models

import "time"

// Post is a short text owned by one user. Likes is a set of user IDs.
type Post struct {
	ID        string
	UserID    string
	Content   string
	Likes     []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p *Post) LikedBy(userID string) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

func (p *Post) LikeCount() int {
	return len(p.Likes)
}
