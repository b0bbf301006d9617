package models

// Identity is what a valid session token proves about the caller.
type Identity struct {
	Email  string
	UserID string
}
