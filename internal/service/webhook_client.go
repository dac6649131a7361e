package service

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/Hrittik-Chatterjee/crm-backend-lite/internal/domain"
)

// Content lifecycle event names posted to the webhook endpoint.
const (
	EventContentCreated = "content.created"
	EventContentUpdated = "content.updated"
	EventContentDeleted = "content.deleted"
)

// WebhookEvent is the payload posted for a content lifecycle event.
type WebhookEvent struct {
	Event      string    `json:"event"`
	ContentID  string    `json:"contentId"`
	BusinessID string    `json:"businessId"`
	Actor      string    `json:"actor"`
	OccurredAt time.Time `json:"occurredAt"`
}

// WebhookNotifier posts content lifecycle events to a configured URL.
// Delivery is best effort: failures are logged and never surface to the
// caller. An empty URL disables the notifier.
type WebhookNotifier struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewWebhookNotifier creates a notifier. Pass an empty url to disable it.
func NewWebhookNotifier(url string, logger *zap.Logger) *WebhookNotifier {
	n := &WebhookNotifier{logger: logger}
	if url == "" {
		return n
	}
	n.httpClient = resty.New().
		SetBaseURL(url).
		SetTimeout(5 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Content-Type", "application/json")
	return n
}

// Enabled reports whether a webhook URL is configured.
func (n *WebhookNotifier) Enabled() bool { return n.httpClient != nil }

func (n *WebhookNotifier) ContentCreated(ctx context.Context, c *domain.RegularContent, actor *domain.User) {
	n.notify(ctx, EventContentCreated, c, actor)
}

func (n *WebhookNotifier) ContentUpdated(ctx context.Context, c *domain.RegularContent, actor *domain.User) {
	n.notify(ctx, EventContentUpdated, c, actor)
}

func (n *WebhookNotifier) ContentDeleted(ctx context.Context, c *domain.RegularContent, actor *domain.User) {
	n.notify(ctx, EventContentDeleted, c, actor)
}

func (n *WebhookNotifier) notify(ctx context.Context, event string, c *domain.RegularContent, actor *domain.User) {
	if n.httpClient == nil {
		return
	}

	payload := WebhookEvent{
		Event:      event,
		ContentID:  c.ID.Hex(),
		BusinessID: c.Business.Hex(),
		Actor:      actor.Username,
		OccurredAt: time.Now().UTC(),
	}

	resp, err := n.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		Post("")
	if err != nil {
		n.logger.Warn("webhook delivery failed",
			zap.String("event", event),
			zap.String("content_id", payload.ContentID),
			zap.Error(err),
		)
		return
	}
	if resp.IsError() {
		n.logger.Warn("webhook endpoint returned error",
			zap.String("event", event),
			zap.String("content_id", payload.ContentID),
			zap.Int("status", resp.StatusCode()),
		)
		return
	}
	n.logger.Debug("webhook delivered",
		zap.String("event", event),
		zap.String("content_id", payload.ContentID),
	)
}
