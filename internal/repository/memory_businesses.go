package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Hrittik-Chatterjee/crm-backend-lite/internal/domain"
)

// MemoryBusinessRepo keeps businesses in a map. It backs the service tests
// and local runs without a database.
type MemoryBusinessRepo struct {
	mu         sync.RWMutex
	businesses map[primitive.ObjectID]domain.Business
}

func NewMemoryBusinessRepo() *MemoryBusinessRepo {
	return &MemoryBusinessRepo{businesses: map[primitive.ObjectID]domain.Business{}}
}

func (r *MemoryBusinessRepo) Create(_ context.Context, b *domain.Business) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	b.CreatedAt = now
	b.UpdatedAt = now
	r.businesses[b.ID] = *b
	return nil
}

func (r *MemoryBusinessRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Business, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.businesses[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (r *MemoryBusinessRepo) List(_ context.Context) ([]domain.Business, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]domain.Business, 0, len(r.businesses))
	for _, b := range r.businesses {
		all = append(all, b)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].BusinessName < all[j].BusinessName
	})
	return all, nil
}

func (r *MemoryBusinessRepo) UpdateTags(_ context.Context, id primitive.ObjectID, tags string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.businesses[id]
	if !ok {
		return ErrNotFound
	}
	b.Tags = tags
	b.UpdatedAt = time.Now().UTC()
	r.businesses[id] = b
	return nil
}

func (r *MemoryBusinessRepo) FindRefs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*domain.BusinessRef, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	refs := make(map[primitive.ObjectID]*domain.BusinessRef, len(ids))
	for _, id := range ids {
		if b, ok := r.businesses[id]; ok {
			refs[id] = b.Ref()
		}
	}
	return refs, nil
}
