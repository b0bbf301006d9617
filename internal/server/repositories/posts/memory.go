package posts

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/scribblenest/internal/common"
	"github.com/dmitrijs2005/scribblenest/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps posts in a map, in insertion order. Returned posts
// are copies.
type MemoryRepository struct {
	mu    sync.RWMutex
	byID  map[string]*models.Post
	order []string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[string]*models.Post)}
}

func clone(p *models.Post) *models.Post {
	c := *p
	c.Likes = append([]string{}, p.Likes...)
	return &c
}

func (r *MemoryRepository) Create(_ context.Context, post *models.Post) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	post.ID = uuid.NewString()
	post.Likes = []string{}
	post.CreatedAt = now
	post.UpdatedAt = now

	r.byID[post.ID] = clone(post)
	r.order = append(r.order, post.ID)
	return post, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(p), nil
}

func (r *MemoryRepository) UpdateContent(_ context.Context, id, content string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	p.Content = content
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	delete(r.byID, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return p, nil
}

func (r *MemoryRepository) ToggleLike(_ context.Context, id, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[id]
	if !ok {
		return false, common.ErrorNotFound
	}

	for i, u := range p.Likes {
		if u == userID {
			p.Likes = append(p.Likes[:i], p.Likes[i+1:]...)
			return false, nil
		}
	}
	p.Likes = append(p.Likes, userID)
	return true, nil
}

func (r *MemoryRepository) ListByOwner(_ context.Context, userID string) ([]*models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*models.Post{}
	for _, id := range r.order {
		if p := r.byID[id]; p.UserID == userID {
			result = append(result, clone(p))
		}
	}
	return result, nil
}

func (r *MemoryRepository) ExistingIDs(_ context.Context, ids []string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []string{}
	for _, id := range ids {
		if _, ok := r.byID[id]; ok {
			result = append(result, id)
		}
	}
	return result, nil
}
