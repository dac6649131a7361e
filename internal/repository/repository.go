package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Hrittik-Chatterjee/crm-backend-lite/internal/domain"
)

// ErrNotFound is returned when a lookup, update or delete matches nothing.
// Services translate it into their own status-carrying errors.
var ErrNotFound = errors.New("not found")

// ContentFilter narrows content queries. Zero-valued fields are skipped;
// everything present combines conjunctively.
type ContentFilter struct {
	Date       string
	Business   *primitive.ObjectID
	AssignedCD *primitive.ObjectID
	AssignedCW *primitive.ObjectID
	AssignedVE *primitive.ObjectID
	AddedBy    *primitive.ObjectID
	Status     *bool
	// ContentTypes matches any of the listed types. A caller filter puts one
	// entry here; a role visibility overlay puts its allowed set.
	ContentTypes []domain.ContentType
}

// ListOptions controls pagination and ordering of content queries.
type ListOptions struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// Normalized fills the documented defaults: page 1, limit 20, sort by date
// descending.
func (o ListOptions) Normalized() ListOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Limit < 1 {
		o.Limit = 20
	}
	if o.SortBy == "" {
		o.SortBy = "date"
	}
	if o.SortOrder != "asc" {
		o.SortOrder = "desc"
	}
	return o
}

type BusinessRepository interface {
	Create(ctx context.Context, b *domain.Business) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Business, error)
	List(ctx context.Context) ([]domain.Business, error)
	// UpdateTags overwrites the stored tag string. Tag sync computes the new
	// string from the stored one, so this is last-writer-wins.
	UpdateTags(ctx context.Context, id primitive.ObjectID, tags string) error
	FindRefs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*domain.BusinessRef, error)
}

type ContentRepository interface {
	Create(ctx context.Context, c *domain.RegularContent) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.RegularContent, error)
	List(ctx context.Context, filter ContentFilter, opts ListOptions) ([]domain.RegularContent, int64, error)
	// Update applies the whitelisted fields in set and returns the updated
	// document. An empty set returns the document unchanged.
	Update(ctx context.Context, id primitive.ObjectID, set map[string]any) (*domain.RegularContent, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	// GetByLogin matches the username or email field.
	GetByLogin(ctx context.Context, login string) (*domain.User, error)
	FindRefs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*domain.UserRef, error)
}
