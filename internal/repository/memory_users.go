package repository

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Hrittik-Chatterjee/crm-backend-lite/internal/domain"
)

// MemoryUserRepo keeps users in a map. It backs the service tests and local
// runs without a database.
type MemoryUserRepo struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]domain.User
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{users: map[primitive.ObjectID]domain.User{}}
}

func (r *MemoryUserRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.CreatedAt = now
	u.UpdatedAt = now
	r.users[u.ID] = *u
	return nil
}

func (r *MemoryUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *MemoryUserRepo) GetByLogin(_ context.Context, login string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Username == login || (u.Email != "" && u.Email == login) {
			user := u
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUserRepo) FindRefs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*domain.UserRef, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	refs := make(map[primitive.ObjectID]*domain.UserRef, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			refs[id] = u.Ref()
		}
	}
	return refs, nil
}
