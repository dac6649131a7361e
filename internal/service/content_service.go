package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Hrittik-Chatterjee/crm-backend-lite/internal/apperr"
	"github.com/Hrittik-Chatterjee/crm-backend-lite/internal/domain"
	"github.com/Hrittik-Chatterjee/crm-backend-lite/internal/repository"
)

// ContentService is the content CRUD surface: business-scoped authorization,
// assignee defaulting at creation, role-scoped listing and hashtag sync into
// the parent business.
type ContentService interface {
	CreateContent(ctx context.Context, req CreateContentRequest) (*domain.ContentView, error)
	ListContents(ctx context.Context, req ListContentsRequest) (*ListContentsResponse, error)
	GetContent(ctx context.Context, req GetContentRequest) (*domain.ContentView, error)
	UpdateContent(ctx context.Context, req UpdateContentRequest) (*domain.ContentView, error)
	DeleteContent(ctx context.Context, req DeleteContentRequest) (*domain.ContentView, error)
}

type contentService struct {
	contents   repository.ContentRepository
	businesses repository.BusinessRepository
	users      repository.UserRepository
	notifier   *WebhookNotifier
	logger     *zap.Logger
}

func NewContentService(
	contents repository.ContentRepository,
	businesses repository.BusinessRepository,
	users repository.UserRepository,
	notifier *WebhookNotifier,
	logger *zap.Logger,
) ContentService {
	return &contentService{
		contents:   contents,
		businesses: businesses,
		users:      users,
		notifier:   notifier,
		logger:     logger,
	}
}

// CreateContentRequest carries the creation payload. Assignees are not taken
// from the payload: they come from the business's primary assignees.
type CreateContentRequest struct {
	Actor       *domain.User `json:"-"`
	Business    string       `json:"business"`
	ContentType string       `json:"contentType"`
	Date        string       `json:"date"`
	Tags        string       `json:"tags"`
	Status      bool         `json:"status"`
}

func (s *contentService) CreateContent(ctx context.Context, req CreateContentRequest) (*domain.ContentView, error) {
	if req.Actor == nil {
		return nil, apperr.Unauthorized("authentication required")
	}
	if strings.TrimSpace(req.Business) == "" {
		return nil, apperr.BadRequest("business is required")
	}
	businessID, err := parseObjectID("business", req.Business)
	if err != nil {
		return nil, err
	}
	contentType := domain.ContentType(req.ContentType)
	if !contentType.Valid() {
		return nil, apperr.BadRequest("contentType must be poster, video or both")
	}
	if err := validateDate(req.Date); err != nil {
		return nil, err
	}

	business, err := s.businesses.GetByID(ctx, businessID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("business not found")
		}
		return nil, fmt.Errorf("load business: %w", err)
	}

	content := &domain.RegularContent{
		Business:    business.ID,
		AddedBy:     req.Actor.ID,
		AssignedCD:  business.PrimaryCD(),
		AssignedCW:  business.PrimaryCW(),
		AssignedVE:  business.PrimaryVE(),
		ContentType: contentType,
		Date:        req.Date,
		Tags:        req.Tags,
		Status:      req.Status,
	}
	if err := s.contents.Create(ctx, content); err != nil {
		return nil, fmt.Errorf("create content: %w", err)
	}

	s.notifier.ContentCreated(ctx, content, req.Actor)

	view, err := s.resolveOne(ctx, content)
	if err != nil {
		// The record is persisted; return it unresolved instead of failing.
		s.logger.Warn("resolve after create failed",
			zap.String("content_id", content.ID.Hex()), zap.Error(err))
		return &domain.ContentView{RegularContent: *content}, nil
	}
	return view, nil
}

// ListContentsRequest mirrors the list query parameters. A nil Status means
// "all statuses". TodayOnly overrides Date with the server-local current day.
type ListContentsRequest struct {
	Actor       *domain.User
	Date        string
	TodayOnly   bool
	Business    string
	AssignedCD  string
	AssignedCW  string
	AssignedVE  string
	AddedBy     string
	Status      *bool
	ContentType string
	Page        int
	Limit       int
	SortBy      string
	SortOrder   string
}

type ListContentsResponse struct {
	Items      []domain.ContentView `json:"items"`
	Total      int64                `json:"total"`
	Page       int                  `json:"page"`
	Limit      int                  `json:"limit"`
	TotalPages int                  `json:"totalPages"`
}

func (s *contentService) ListContents(ctx context.Context, req ListContentsRequest) (*ListContentsResponse, error) {
	if req.Actor == nil {
		return nil, apperr.Unauthorized("authentication required")
	}

	filter := repository.ContentFilter{Date: req.Date, Status: req.Status}
	if req.TodayOnly {
		filter.Date = domain.Today(time.Now())
	}

	var err error
	if filter.Business, err = optionalObjectID("business", req.Business); err != nil {
		return nil, err
	}
	if filter.AssignedCD, err = optionalObjectID("assignedCD", req.AssignedCD); err != nil {
		return nil, err
	}
	if filter.AssignedCW, err = optionalObjectID("assignedCW", req.AssignedCW); err != nil {
		return nil, err
	}
	if filter.AssignedVE, err = optionalObjectID("assignedVE", req.AssignedVE); err != nil {
		return nil, err
	}
	if filter.AddedBy, err = optionalObjectID("addedBy", req.AddedBy); err != nil {
		return nil, err
	}
	if req.ContentType != "" {
		ct := domain.ContentType(req.ContentType)
		if !ct.Valid() {
			return nil, apperr.BadRequest("contentType must be poster, video or both")
		}
		filter.ContentTypes = []domain.ContentType{ct}
	}

	applyVisibility(&filter, req.Actor)

	opts := repository.ListOptions{
		Page:      req.Page,
		Limit:     req.Limit,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	}.Normalized()

	items, total, err := s.contents.List(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list contents: %w", err)
	}
	views, err := s.resolveMany(ctx, items)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(opts.Limit) - 1) / int64(opts.Limit))
	return &ListContentsResponse{
		Items:      views,
		Total:      total,
		Page:       opts.Page,
		Limit:      opts.Limit,
		TotalPages: totalPages,
	}, nil
}

type GetContentRequest struct {
	Actor *domain.User
	ID    string
}

func (s *contentService) GetContent(ctx context.Context, req GetContentRequest) (*domain.ContentView, error) {
	if req.Actor == nil {
		return nil, apperr.Unauthorized("authentication required")
	}
	id, err := parseObjectID("content id", req.ID)
	if err != nil {
		return nil, err
	}
	content, err := s.contents.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("content not found")
		}
		return nil, fmt.Errorf("load content: %w", err)
	}
	return s.resolveOne(ctx, content)
}

// UpdateContentRequest carries a partial update as the raw body payload.
// Unknown fields are dropped; known fields are validated before they reach
// the repository.
type UpdateContentRequest struct {
	Actor   *domain.User
	ID      string
	Payload map[string]any
}

func (s *contentService) UpdateContent(ctx context.Context, req UpdateContentRequest) (*domain.ContentView, error) {
	if req.Actor == nil {
		return nil, apperr.Unauthorized("authentication required")
	}
	id, err := parseObjectID("content id", req.ID)
	if err != nil {
		return nil, err
	}

	existing, err := s.contents.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("content not found")
		}
		return nil, fmt.Errorf("load content: %w", err)
	}

	if err := s.authorizeMutation(ctx, req.Actor, existing.Business); err != nil {
		return nil, err
	}

	set, err := buildContentUpdate(req.Payload)
	if err != nil {
		return nil, err
	}

	updated, err := s.contents.Update(ctx, id, set)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Deleted between load and write.
			return nil, apperr.NotFound("content not found")
		}
		return nil, fmt.Errorf("update content: %w", err)
	}

	if tags, ok := set["tags"].(string); ok && strings.TrimSpace(tags) != "" {
		// New hashtags flow into the business the content now points at.
		syncBusiness := existing.Business
		if b, ok := set["business"].(primitive.ObjectID); ok {
			syncBusiness = b
		}
		if err := s.syncBusinessTags(ctx, syncBusiness, tags); err != nil {
			s.logger.Warn("tag sync failed",
				zap.String("business_id", syncBusiness.Hex()), zap.Error(err))
		}
	}

	s.notifier.ContentUpdated(ctx, updated, req.Actor)

	return s.resolveOne(ctx, updated)
}

type DeleteContentRequest struct {
	Actor *domain.User
	ID    string
}

func (s *contentService) DeleteContent(ctx context.Context, req DeleteContentRequest) (*domain.ContentView, error) {
	if req.Actor == nil {
		return nil, apperr.Unauthorized("authentication required")
	}
	id, err := parseObjectID("content id", req.ID)
	if err != nil {
		return nil, err
	}

	existing, err := s.contents.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("content not found")
		}
		return nil, fmt.Errorf("load content: %w", err)
	}

	if err := s.authorizeMutation(ctx, req.Actor, existing.Business); err != nil {
		return nil, err
	}

	view, err := s.resolveOne(ctx, existing)
	if err != nil {
		s.logger.Warn("resolve before delete failed",
			zap.String("content_id", existing.ID.Hex()), zap.Error(err))
		view = &domain.ContentView{RegularContent: *existing}
	}

	if err := s.contents.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Deleted between load and this call.
			return nil, apperr.NotFound("content not found")
		}
		return nil, fmt.Errorf("delete content: %w", err)
	}

	s.notifier.ContentDeleted(ctx, existing, req.Actor)

	return view, nil
}

// authorizeMutation gates update and delete. SUPER_ADMIN and ADMIN bypass the
// check; everyone else must appear in one of the business's assignment lists.
func (s *contentService) authorizeMutation(ctx context.Context, actor *domain.User, businessID primitive.ObjectID) error {
	if actor.HasAnyRole(domain.RoleSuperAdmin, domain.RoleAdmin) {
		return nil
	}
	business, err := s.businesses.GetByID(ctx, businessID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("business not found")
		}
		return fmt.Errorf("load business: %w", err)
	}
	if !business.IsAssigned(actor.ID) {
		return apperr.Forbidden("user is not assigned to this business")
	}
	return nil
}

// syncBusinessTags appends hashtags from raw that the business does not have
// yet. A missing business is a silent skip, never a failure of the caller.
func (s *contentService) syncBusinessTags(ctx context.Context, businessID primitive.ObjectID, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	business, err := s.businesses.GetByID(ctx, businessID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("load business: %w", err)
	}
	delta := domain.NewHashtags(business.Tags, raw)
	if len(delta) == 0 {
		return nil
	}
	merged := domain.AppendHashtags(business.Tags, delta)
	if err := s.businesses.UpdateTags(ctx, business.ID, merged); err != nil {
		return fmt.Errorf("update business tags: %w", err)
	}
	s.logger.Info("synced new hashtags into business",
		zap.String("business_id", business.ID.Hex()),
		zap.Int("new_tags", len(delta)),
	)
	return nil
}

// applyVisibility narrows the filter for role-scoped users. It runs after
// caller filters are parsed so the forced fields win.
func applyVisibility(filter *repository.ContentFilter, actor *domain.User) {
	rule := domain.VisibilityFor(actor)
	if rule == nil {
		return
	}
	actorID := actor.ID
	switch rule.Assignee {
	case domain.AssigneeCD:
		filter.AssignedCD = &actorID
	case domain.AssigneeCW:
		filter.AssignedCW = &actorID
	case domain.AssigneeVE:
		filter.AssignedVE = &actorID
	case domain.AssigneeAddedBy:
		filter.AddedBy = &actorID
	}
	if len(rule.ContentTypes) > 0 {
		filter.ContentTypes = rule.ContentTypes
	}
}

// buildContentUpdate validates the known payload fields and converts them to
// their storage types. Unknown keys are dropped.
func buildContentUpdate(payload map[string]any) (map[string]any, error) {
	set := map[string]any{}
	if payload == nil {
		return set, nil
	}
	if v, ok := payload["business"]; ok {
		sv, ok := v.(string)
		if !ok {
			return nil, apperr.BadRequest("business must be a string id")
		}
		id, err := parseObjectID("business", sv)
		if err != nil {
			return nil, err
		}
		set["business"] = id
	}
	for _, field := range []string{"assignedCD", "assignedCW", "assignedVE"} {
		if v, ok := payload[field]; ok {
			sv, ok := v.(string)
			if !ok {
				return nil, apperr.BadRequest("%s must be a string id", field)
			}
			id, err := parseObjectID(field, sv)
			if err != nil {
				return nil, err
			}
			set[field] = id
		}
	}
	if v, ok := payload["contentType"]; ok {
		sv, _ := v.(string)
		ct := domain.ContentType(sv)
		if !ct.Valid() {
			return nil, apperr.BadRequest("contentType must be poster, video or both")
		}
		set["contentType"] = ct
	}
	if v, ok := payload["date"]; ok {
		sv, _ := v.(string)
		if err := validateDate(sv); err != nil {
			return nil, err
		}
		set["date"] = sv
	}
	if v, ok := payload["tags"]; ok {
		sv, ok := v.(string)
		if !ok {
			return nil, apperr.BadRequest("tags must be a string")
		}
		set["tags"] = sv
	}
	if v, ok := payload["status"]; ok {
		bv, ok := v.(bool)
		if !ok {
			return nil, apperr.BadRequest("status must be a boolean")
		}
		set["status"] = bv
	}
	return set, nil
}

func (s *contentService) resolveOne(ctx context.Context, c *domain.RegularContent) (*domain.ContentView, error) {
	views, err := s.resolveMany(ctx, []domain.RegularContent{*c})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// resolveMany expands business and people references to display fields in
// two bulk lookups. A reference that no longer resolves leaves a nil ref.
func (s *contentService) resolveMany(ctx context.Context, items []domain.RegularContent) ([]domain.ContentView, error) {
	views := make([]domain.ContentView, len(items))
	if len(items) == 0 {
		return views, nil
	}

	bizSet := map[primitive.ObjectID]struct{}{}
	userSet := map[primitive.ObjectID]struct{}{}
	for i := range items {
		c := &items[i]
		bizSet[c.Business] = struct{}{}
		if !c.AddedBy.IsZero() {
			userSet[c.AddedBy] = struct{}{}
		}
		for _, ref := range []*primitive.ObjectID{c.AssignedCD, c.AssignedCW, c.AssignedVE} {
			if ref != nil {
				userSet[*ref] = struct{}{}
			}
		}
	}

	bizRefs, err := s.businesses.FindRefs(ctx, idList(bizSet))
	if err != nil {
		return nil, fmt.Errorf("resolve businesses: %w", err)
	}
	userRefs, err := s.users.FindRefs(ctx, idList(userSet))
	if err != nil {
		return nil, fmt.Errorf("resolve users: %w", err)
	}

	for i := range items {
		c := items[i]
		view := domain.ContentView{RegularContent: c}
		view.BusinessRef = bizRefs[c.Business]
		if !c.AddedBy.IsZero() {
			view.AddedByRef = userRefs[c.AddedBy]
		}
		if c.AssignedCD != nil {
			view.AssignedCDRef = userRefs[*c.AssignedCD]
		}
		if c.AssignedCW != nil {
			view.AssignedCWRef = userRefs[*c.AssignedCW]
		}
		if c.AssignedVE != nil {
			view.AssignedVERef = userRefs[*c.AssignedVE]
		}
		views[i] = view
	}
	return views, nil
}

func idList(set map[primitive.ObjectID]struct{}) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

func parseObjectID(field, value string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(value)
	if err != nil {
		return primitive.NilObjectID, apperr.BadRequest("invalid %s", field)
	}
	return id, nil
}

func optionalObjectID(field, value string) (*primitive.ObjectID, error) {
	if value == "" {
		return nil, nil
	}
	id, err := parseObjectID(field, value)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func validateDate(value string) error {
	if value == "" {
		return apperr.BadRequest("date is required")
	}
	if _, err := time.Parse(domain.DateLayout, value); err != nil {
		return apperr.BadRequest("date must be MM/DD/YYYY")
	}
	return nil
}
