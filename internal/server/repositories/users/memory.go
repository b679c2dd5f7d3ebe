package users

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/culturehub/internal/common"
	"github.com/dmitrijs2005/culturehub/internal/server/models"
)

// InMemoryRepository keeps users in process memory. It backs the "memory"
// storage mode and service tests. Values are copied in and out so callers
// never share state with the store.
type InMemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]*models.User
	byEmail map[string]string
	now     func() time.Time
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		byID:    make(map[string]*models.User),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

func clone(u *models.User) *models.User {
	c := *u
	if u.ResetTokenHash != nil {
		h := *u.ResetTokenHash
		c.ResetTokenHash = &h
	}
	if u.ResetTokenExpiry != nil {
		e := *u.ResetTokenExpiry
		c.ResetTokenExpiry = &e
	}
	return &c
}

func (r *InMemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[user.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	if _, ok := r.byID[user.ID]; ok {
		return nil, common.ErrorAlreadyExists
	}

	stored := clone(user)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = r.now()
	}
	r.byID[stored.ID] = stored
	r.byEmail[stored.Email] = stored.ID
	return clone(stored), nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(u), nil
}

func (r *InMemoryRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(r.byID[id]), nil
}

func (r *InMemoryRepository) List(ctx context.Context) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.User, 0, len(r.byID))
	for _, u := range r.byID {
		result = append(result, clone(u))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *InMemoryRepository) UpdateProfile(ctx context.Context, id string, patch ProfilePatch) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if patch.Email != nil {
		if owner, taken := r.byEmail[*patch.Email]; taken && owner != id {
			return nil, common.ErrorAlreadyExists
		}
		delete(r.byEmail, stored.Email)
		stored.Email = *patch.Email
		r.byEmail[stored.Email] = id
	}
	if patch.Name != nil {
		stored.Name = *patch.Name
	}
	if patch.AvatarURL != nil {
		stored.AvatarURL = *patch.AvatarURL
	}
	if patch.PasswordHash != nil {
		stored.PasswordHash = *patch.PasswordHash
	}
	return clone(stored), nil
}

func (r *InMemoryRepository) update(id string, fn func(u *models.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	fn(u)
	return nil
}

func (r *InMemoryRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.update(id, func(u *models.User) { u.PasswordHash = passwordHash })
}

func (r *InMemoryRepository) UpdateRole(ctx context.Context, id string, role models.Role) error {
	return r.update(id, func(u *models.User) { u.Role = role })
}

func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	delete(r.byEmail, u.Email)
	delete(r.byID, id)
	return nil
}

func (r *InMemoryRepository) SetResetToken(ctx context.Context, id, tokenHash string, expiry time.Time) error {
	return r.update(id, func(u *models.User) {
		u.ResetTokenHash = &tokenHash
		u.ResetTokenExpiry = &expiry
	})
}

func (r *InMemoryRepository) ClearResetToken(ctx context.Context, id string) error {
	return r.update(id, func(u *models.User) {
		u.ResetTokenHash = nil
		u.ResetTokenExpiry = nil
	})
}

// findReset must be called with r.mu held.
func (r *InMemoryRepository) findReset(tokenHash string, now time.Time) *models.User {
	for _, u := range r.byID {
		if u.ResetTokenHash != nil && *u.ResetTokenHash == tokenHash &&
			u.ResetTokenExpiry != nil && u.ResetTokenExpiry.After(now) {
			return u
		}
	}
	return nil
}

func (r *InMemoryRepository) GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u := r.findReset(tokenHash, now)
	if u == nil {
		return nil, common.ErrorNotFound
	}
	return clone(u), nil
}

func (r *InMemoryRepository) ConsumeResetToken(ctx context.Context, tokenHash string, now time.Time, passwordHash string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := r.findReset(tokenHash, now)
	if u == nil {
		return nil, common.ErrorNotFound
	}
	u.PasswordHash = passwordHash
	u.ResetTokenHash = nil
	u.ResetTokenExpiry = nil
	return clone(u), nil
}
