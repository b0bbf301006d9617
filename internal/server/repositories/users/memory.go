package users

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/scribblenest/internal/common"
	"github.com/dmitrijs2005/scribblenest/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps users in a map. Returned users are copies.
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]*models.User
	byEmail map[string]string
	order   []string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]*models.User),
		byEmail: make(map[string]string),
	}
}

func clone(u *models.User) *models.User {
	c := *u
	c.Posts = append([]string{}, u.Posts...)
	return &c
}

func (r *MemoryRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[user.Email]; ok {
		return nil, common.ErrDuplicateUser
	}

	user.ID = uuid.NewString()
	user.Posts = []string{}
	user.CreatedAt = time.Now().UTC()

	r.byID[user.ID] = clone(user)
	r.byEmail[user.Email] = user.ID
	r.order = append(r.order, user.ID)

	return user, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(u), nil
}

func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	id, ok := r.byEmail[email]
	r.mu.RUnlock()

	if !ok {
		return nil, common.ErrorNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *MemoryRepository) SetProfilePicture(_ context.Context, id, filename string) error {
	return r.mutate(id, func(u *models.User) { u.ProfilePicture = filename })
}

func (r *MemoryRepository) AddPost(_ context.Context, id, postID string) error {
	return r.mutate(id, func(u *models.User) {
		if !u.OwnsPost(postID) {
			u.Posts = append(u.Posts, postID)
		}
	})
}

func (r *MemoryRepository) RemovePost(_ context.Context, id, postID string) error {
	return r.mutate(id, func(u *models.User) {
		kept := u.Posts[:0]
		for _, p := range u.Posts {
			if p != postID {
				kept = append(kept, p)
			}
		}
		u.Posts = kept
	})
}

func (r *MemoryRepository) mutate(id string, fn func(u *models.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	fn(u)
	return nil
}

func (r *MemoryRepository) List(_ context.Context) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.User, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, clone(r.byID[id]))
	}
	return result, nil
}
