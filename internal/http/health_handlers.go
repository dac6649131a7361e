package httpapi

import (
	"context"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// HealthHandler reports liveness and, when connected, document store
// reachability.
type HealthHandler struct {
	client *mongo.Client // nil when running on the in-memory stores
	logger *zap.Logger
}

func NewHealthHandler(client *mongo.Client, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		client: client,
		logger: logger,
	}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok"}

	if h.client != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.client.Ping(ctx, readpref.Primary()); err != nil {
			h.logger.Warn("Health ping failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, Fail("document store unreachable"))
			return
		}
		status["mongo"] = "ok"
	}

	writeJSON(w, http.StatusOK, Ok(status))
}
