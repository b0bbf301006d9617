package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/scribblenest/internal/common"
	"github.com/dmitrijs2005/scribblenest/internal/logging"
	"github.com/dmitrijs2005/scribblenest/internal/server/config"
	"github.com/dmitrijs2005/scribblenest/internal/server/models"
	"github.com/dmitrijs2005/scribblenest/internal/server/repositories/posts"
	"github.com/dmitrijs2005/scribblenest/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/scribblenest/internal/server/repositories/users"
)

// MaxPostLength caps post content, in bytes.
const MaxPostLength = 10_000

// PostService creates, edits, deletes and likes posts. Edits and deletes
// are allowed only for the owner.
type PostService struct {
	repomanager  repomanager.RepositoryManager
	logger       logging.Logger
	storeTimeout time.Duration
}

func NewPostService(m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *PostService {
	return &PostService{
		repomanager:  m,
		logger:       logger.With("module", "posts"),
		storeTimeout: cfg.StoreTimeout,
	}
}

func validateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("%w: post content is required", common.ErrValidation)
	}
	if len(content) > MaxPostLength {
		return "", fmt.Errorf("%w: post is longer than %d bytes", common.ErrValidation, MaxPostLength)
	}
	return content, nil
}

// Create inserts a post and appends its ID to the owner's post list.
func (s *PostService) Create(ctx context.Context, userID, content string) (*models.Post, error) {
	content, err := validateContent(content)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	if _, err := s.repomanager.Users().GetByID(ctx, userID); err != nil {
		return nil, err
	}

	var created *models.Post
	err = s.repomanager.InTx(ctx, func(ctx context.Context, ur users.Repository, pr posts.Repository) error {
		p, err := pr.Create(ctx, &models.Post{UserID: userID, Content: content})
		if err != nil {
			return err
		}
		created = p

		if err := ur.AddPost(ctx, userID, p.ID); err != nil {
			if s.repomanager.Transactional() {
				return err
			}
			s.logger.Warn(ctx, "post not linked to owner, left for reconciler", "post_id", p.ID, "user_id", userID, "error", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error creating post: %w", err)
	}

	s.logger.Debug(ctx, "post created", "post_id", created.ID, "user_id", userID)
	return created, nil
}

// Get returns a post owned by userID.
func (s *PostService) Get(ctx context.Context, userID, postID string) (*models.Post, error) {
	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	return s.owned(ctx, userID, postID)
}

func (s *PostService) owned(ctx context.Context, userID, postID string) (*models.Post, error) {
	p, err := s.repomanager.Posts().GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, common.ErrForbidden
	}
	return p, nil
}

// Edit replaces the content of a post owned by userID.
func (s *PostService) Edit(ctx context.Context, userID, postID, content string) error {
	content, err := validateContent(content)
	if err != nil {
		return err
	}

	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	if _, err := s.owned(ctx, userID, postID); err != nil {
		return err
	}
	return s.repomanager.Posts().UpdateContent(ctx, postID, content)
}

// Delete removes a post owned by userID and unlinks it from the owner.
// Without transactions a failed unlink is logged and left for the
// reconciler.
func (s *PostService) Delete(ctx context.Context, userID, postID string) error {
	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	p, err := s.owned(ctx, userID, postID)
	if err != nil {
		return err
	}

	err = s.repomanager.InTx(ctx, func(ctx context.Context, ur users.Repository, pr posts.Repository) error {
		if _, err := pr.Delete(ctx, p.ID); err != nil {
			return err
		}

		if err := ur.RemovePost(ctx, p.UserID, p.ID); err != nil {
			if s.repomanager.Transactional() {
				return err
			}
			s.logger.Warn(ctx, "post not unlinked from owner, left for reconciler", "post_id", p.ID, "user_id", p.UserID, "error", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Debug(ctx, "post deleted", "post_id", p.ID, "user_id", userID)
	return nil
}

// ToggleLike flips userID's like on any post and reports the new state.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID string) (bool, error) {
	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	return s.repomanager.Posts().ToggleLike(ctx, postID, userID)
}

// ListForUser returns every post owned by userID in store order.
func (s *PostService) ListForUser(ctx context.Context, userID string) ([]*models.Post, error) {
	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	return s.repomanager.Posts().ListByOwner(ctx, userID)
}
