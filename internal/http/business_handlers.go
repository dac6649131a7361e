package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/Hrittik-Chatterjee/crm-backend-lite/internal/service"
)

// BusinessHandler serves the read-only business directory.
type BusinessHandler struct {
	businesses service.BusinessService
	logger     *zap.Logger
}

func NewBusinessHandler(businesses service.BusinessService, logger *zap.Logger) *BusinessHandler {
	return &BusinessHandler{
		businesses: businesses,
		logger:     logger,
	}
}

// List returns all businesses sorted by name.
func (h *BusinessHandler) List(w http.ResponseWriter, r *http.Request) {
	all, err := h.businesses.ListBusinesses(r.Context())
	if err != nil {
		h.logger.Warn("Business list failed", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(all))
}

// Get returns one business by id.
func (h *BusinessHandler) Get(w http.ResponseWriter, r *http.Request, id string) {
	b, err := h.businesses.GetBusiness(r.Context(), id)
	if err != nil {
		h.logger.Warn("Business get failed", zap.Error(err), zap.String("id", id))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(b))
}
