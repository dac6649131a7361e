package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Hrittik-Chatterjee/crm-backend-lite/internal/domain"
)

// MemoryContentRepo keeps content items in a map. It backs the service tests
// and local runs without a database.
type MemoryContentRepo struct {
	mu       sync.RWMutex
	contents map[primitive.ObjectID]domain.RegularContent
}

func NewMemoryContentRepo() *MemoryContentRepo {
	return &MemoryContentRepo{contents: map[primitive.ObjectID]domain.RegularContent{}}
}

func (r *MemoryContentRepo) Create(_ context.Context, c *domain.RegularContent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	c.CreatedAt = now
	c.UpdatedAt = now
	r.contents[c.ID] = *c
	return nil
}

func (r *MemoryContentRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.RegularContent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.contents[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (r *MemoryContentRepo) List(_ context.Context, filter ContentFilter, opts ListOptions) ([]domain.RegularContent, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	opts = opts.Normalized()

	all := make([]domain.RegularContent, 0, len(r.contents))
	for _, c := range r.contents {
		if matchContent(filter, &c) {
			all = append(all, c)
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		cmp := compareContent(&all[i], &all[j], opts.SortBy)
		if cmp != 0 {
			if opts.SortOrder == "asc" {
				return cmp < 0
			}
			return cmp > 0
		}
		if opts.SortBy != "createdAt" {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return false
	})

	total := len(all)
	start := (opts.Page - 1) * opts.Limit
	if start > total {
		start = total
	}
	end := start + opts.Limit
	if end > total {
		end = total
	}
	return all[start:end], int64(total), nil
}

func (r *MemoryContentRepo) Update(_ context.Context, id primitive.ObjectID, set map[string]any) (*domain.RegularContent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.contents[id]
	if !ok {
		return nil, ErrNotFound
	}

	touched := false
	if v, ok := set["business"].(primitive.ObjectID); ok {
		c.Business = v
		touched = true
	}
	if v, ok := set["assignedCD"].(primitive.ObjectID); ok {
		id := v
		c.AssignedCD = &id
		touched = true
	}
	if v, ok := set["assignedCW"].(primitive.ObjectID); ok {
		id := v
		c.AssignedCW = &id
		touched = true
	}
	if v, ok := set["assignedVE"].(primitive.ObjectID); ok {
		id := v
		c.AssignedVE = &id
		touched = true
	}
	if v, ok := set["contentType"].(domain.ContentType); ok {
		c.ContentType = v
		touched = true
	}
	if v, ok := set["date"].(string); ok {
		c.Date = v
		touched = true
	}
	if v, ok := set["tags"].(string); ok {
		c.Tags = v
		touched = true
	}
	if v, ok := set["status"].(bool); ok {
		c.Status = v
		touched = true
	}

	if touched {
		c.UpdatedAt = time.Now().UTC()
		r.contents[id] = c
	}
	return &c, nil
}

func (r *MemoryContentRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.contents[id]; !ok {
		return ErrNotFound
	}
	delete(r.contents, id)
	return nil
}

func matchContent(f ContentFilter, c *domain.RegularContent) bool {
	if f.Date != "" && c.Date != f.Date {
		return false
	}
	if f.Business != nil && c.Business != *f.Business {
		return false
	}
	if f.AssignedCD != nil && (c.AssignedCD == nil || *c.AssignedCD != *f.AssignedCD) {
		return false
	}
	if f.AssignedCW != nil && (c.AssignedCW == nil || *c.AssignedCW != *f.AssignedCW) {
		return false
	}
	if f.AssignedVE != nil && (c.AssignedVE == nil || *c.AssignedVE != *f.AssignedVE) {
		return false
	}
	if f.AddedBy != nil && c.AddedBy != *f.AddedBy {
		return false
	}
	if f.Status != nil && c.Status != *f.Status {
		return false
	}
	if len(f.ContentTypes) > 0 {
		match := false
		for _, t := range f.ContentTypes {
			if c.ContentType == t {
				match = true
				break
			}
		}
		if !match {
			return false
		}
	}
	return true
}

// compareContent orders by the stored value of the named field. Dates are
// strings and compare lexicographically, same as the document store.
func compareContent(a, b *domain.RegularContent, field string) int {
	switch field {
	case "date":
		return strings.Compare(a.Date, b.Date)
	case "createdAt":
		return a.CreatedAt.Compare(b.CreatedAt)
	case "updatedAt":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case "contentType":
		return strings.Compare(string(a.ContentType), string(b.ContentType))
	case "status":
		switch {
		case a.Status == b.Status:
			return 0
		case b.Status:
			return -1
		default:
			return 1
		}
	default:
		return 0
	}
}
