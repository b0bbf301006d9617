package common

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "token"

// Collection names shared by every storage backend.
const (
	UsersCollection = "users"
	PostsCollection = "posts"
)
