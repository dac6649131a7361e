package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Hrittik-Chatterjee/crm-backend-lite/internal/apperr"
	"github.com/Hrittik-Chatterjee/crm-backend-lite/internal/domain"
	"github.com/Hrittik-Chatterjee/crm-backend-lite/internal/repository"
)

// BusinessService is the read-only business directory. Staff assignment is
// managed by external admin tooling, so there are no write operations here;
// the tag string is only ever written through content tag sync.
type BusinessService interface {
	ListBusinesses(ctx context.Context) ([]domain.Business, error)
	GetBusiness(ctx context.Context, id string) (*domain.Business, error)
}

type businessService struct {
	businesses repository.BusinessRepository
	logger     *zap.Logger
}

func NewBusinessService(businesses repository.BusinessRepository, logger *zap.Logger) BusinessService {
	return &businessService{businesses: businesses, logger: logger}
}

func (s *businessService) ListBusinesses(ctx context.Context) ([]domain.Business, error) {
	items, err := s.businesses.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list businesses: %w", err)
	}
	return items, nil
}

func (s *businessService) GetBusiness(ctx context.Context, id string) (*domain.Business, error) {
	oid, err := parseObjectID("business id", id)
	if err != nil {
		return nil, err
	}
	business, err := s.businesses.GetByID(ctx, oid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("business not found")
		}
		return nil, fmt.Errorf("load business: %w", err)
	}
	return business, nil
}
