// Package models defines the documents persisted in the store and the
// identity carried by a session token.
package models

import "time"

// User is a registered account. PasswordHash never leaves the server.
// Posts holds the IDs of the posts the user owns, in creation order; it may
// briefly contain IDs of deleted posts on backends without transactions.
type User struct {
	ID             string
	Username       string
	Email          string
	Name           string
	Age            int
	PasswordHash   string
	ProfilePicture string
	Posts          []string
	CreatedAt      time.Time
}

// OwnsPost reports whether postID is in the user's post list.
func (u *User) OwnsPost(postID string) bool {
	for _, id := range u.Posts {
		if id == postID {
			return true
		}
	}
	return false
}
