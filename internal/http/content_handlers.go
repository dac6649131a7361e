package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/Hrittik-Chatterjee/crm-backend-lite/internal/service"
)

// exportRowCap bounds a single calendar export. Filters narrow the set; the
// cap keeps a filterless export from building an unbounded workbook in
// memory.
const exportRowCap = 10000

// ContentHandler serves the content CRUD and calendar export routes.
type ContentHandler struct {
	contents service.ContentService
	logger   *zap.Logger
}

func NewContentHandler(contents service.ContentService, logger *zap.Logger) *ContentHandler {
	return &ContentHandler{
		contents: contents,
		logger:   logger,
	}
}

// Create inserts a content item for a business.
func (h *ContentHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload struct {
		Business    string `json:"business"`
		ContentType string `json:"contentType"`
		Date        string `json:"date"`
		Tags        string `json:"tags"`
		Status      bool   `json:"status"`
	}
	if err := readBodyJSON(r, 1<<20, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}

	view, err := h.contents.CreateContent(ctx, service.CreateContentRequest{
		Actor:       CurrentUser(ctx),
		Business:    payload.Business,
		ContentType: payload.ContentType,
		Date:        payload.Date,
		Tags:        payload.Tags,
		Status:      payload.Status,
	})
	if err != nil {
		h.logger.Warn("Content create failed", zap.Error(err))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, Ok(view))
}

// listRequest maps the listing query parameters onto the service request.
func (h *ContentHandler) listRequest(r *http.Request) service.ListContentsRequest {
	q := r.URL.Query()
	return service.ListContentsRequest{
		Actor:       CurrentUser(r.Context()),
		Date:        q.Get("date"),
		TodayOnly:   q.Get("todayOnly") == "true",
		Business:    q.Get("business"),
		AssignedCD:  q.Get("assignedCD"),
		AssignedCW:  q.Get("assignedCW"),
		AssignedVE:  q.Get("assignedVE"),
		AddedBy:     q.Get("addedBy"),
		Status:      parseBoolPtr(q.Get("status")),
		ContentType: q.Get("contentType"),
		Page:        parseInt(q.Get("page"), 1),
		Limit:       parseInt(q.Get("limit"), 20),
		SortBy:      q.Get("sortBy"),
		SortOrder:   q.Get("sortOrder"),
	}
}

// List returns a filtered, role-scoped page of content items.
func (h *ContentHandler) List(w http.ResponseWriter, r *http.Request) {
	resp, err := h.contents.ListContents(r.Context(), h.listRequest(r))
	if err != nil {
		h.logger.Warn("Content list failed", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}

// Get returns one content item with its references resolved.
func (h *ContentHandler) Get(w http.ResponseWriter, r *http.Request, id string) {
	view, err := h.contents.GetContent(r.Context(), service.GetContentRequest{
		Actor: CurrentUser(r.Context()),
		ID:    id,
	})
	if err != nil {
		h.logger.Warn("Content get failed", zap.Error(err), zap.String("id", id))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(view))
}

// Update applies a partial update. The body is a free-form object; the
// service decides which fields count.
func (h *ContentHandler) Update(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()

	var payload map[string]any
	if err := readBodyJSON(r, 1<<20, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}

	view, err := h.contents.UpdateContent(ctx, service.UpdateContentRequest{
		Actor:   CurrentUser(ctx),
		ID:      id,
		Payload: payload,
	})
	if err != nil {
		h.logger.Warn("Content update failed", zap.Error(err), zap.String("id", id))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(view))
}

// Delete removes a content item and returns the removed record.
func (h *ContentHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	view, err := h.contents.DeleteContent(r.Context(), service.DeleteContentRequest{
		Actor: CurrentUser(r.Context()),
		ID:    id,
	})
	if err != nil {
		h.logger.Warn("Content delete failed", zap.Error(err), zap.String("id", id))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(view))
}

// Export streams the filtered listing as an .xlsx attachment. The same
// filters and role scoping as List apply; pagination does not.
func (h *ContentHandler) Export(w http.ResponseWriter, r *http.Request) {
	req := h.listRequest(r)
	req.Page = 1
	req.Limit = exportRowCap

	resp, err := h.contents.ListContents(r.Context(), req)
	if err != nil {
		h.logger.Warn("Content export listing failed", zap.Error(err))
		writeError(w, err)
		return
	}

	data, err := GenerateContentExport(resp.Items)
	if err != nil {
		h.logger.Error("Content export workbook failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("failed to build export"))
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=content-calendar.xlsx")
	_, _ = w.Write(data)
}
