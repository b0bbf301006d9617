// Package users stores user documents. Implementations exist for MongoDB,
// PostgreSQL (JSONB post lists) and an in-process map.
package users

import (
	"context"

	"github.com/dmitrijs2005/scribblenest/internal/server/models"
)

// Repository persists users. Lookups of unknown or malformed IDs return
// common.ErrorNotFound; inserting an existing email returns
// common.ErrDuplicateUser.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	SetProfilePicture(ctx context.Context, id, filename string) error
	// AddPost appends postID to the user's post list unless already present.
	AddPost(ctx context.Context, id, postID string) error
	// RemovePost drops postID from the user's post list. Removing an absent
	// ID is not an error.
	RemovePost(ctx context.Context, id, postID string) error
	List(ctx context.Context) ([]*models.User, error)
}
