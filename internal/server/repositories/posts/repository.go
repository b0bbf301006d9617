// Package posts stores post documents. Implementations exist for MongoDB,
// PostgreSQL (JSONB like sets) and an in-process map.
package posts

import (
	"context"

	"github.com/dmitrijs2005/scribblenest/internal/server/models"
)

// Repository persists posts. Unknown or malformed IDs yield
// common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, post *models.Post) (*models.Post, error)
	GetByID(ctx context.Context, id string) (*models.Post, error)
	UpdateContent(ctx context.Context, id, content string) error
	// Delete removes the post and returns it as it was.
	Delete(ctx context.Context, id string) (*models.Post, error)
	// ToggleLike adds userID to the like set when absent and removes it when
	// present, as a single atomic update. It reports whether the post is
	// liked by userID afterwards.
	ToggleLike(ctx context.Context, id, userID string) (bool, error)
	ListByOwner(ctx context.Context, userID string) ([]*models.Post, error)
	// ExistingIDs returns the subset of ids that refer to stored posts.
	ExistingIDs(ctx context.Context, ids []string) ([]string, error)
}
