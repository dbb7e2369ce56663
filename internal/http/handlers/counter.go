package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/rowcount-backend/internal/domain"
	"github.com/yungbote/rowcount-backend/internal/http/response"
	"github.com/yungbote/rowcount-backend/internal/platform/ctxutil"
	"github.com/yungbote/rowcount-backend/internal/services"
)

type CounterHandler struct {
	counters services.CounterService
}

func NewCounterHandler(counters services.CounterService) *CounterHandler {
	return &CounterHandler{counters: counters}
}

// POST /api/counters
// body: { "name": "...", "details": { "color_hex": "#AABBCC", "total_rows": 120, ... } }
func (h *CounterHandler) Create(c *gin.Context) {
	var req struct {
		Name    string                `json:"name"`
		Details *types.CounterDetails `json:"details"`
	}
	if !bindJSON(c, &req) {
		return
	}
	ctr, err := h.counters.Create(c.Request.Context(), services.CreateCounterInput{
		Name:    req.Name,
		Owner:   ctxutil.OwnerFrom(c.Request.Context()),
		Details: req.Details,
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"counter": ctr})
}

// GET /api/counters?archived=true
func (h *CounterHandler) List(c *gin.Context) {
	archived := false
	if raw := c.Query("archived"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_archived", err)
			return
		}
		archived = v
	}
	owner := ctxutil.OwnerFrom(c.Request.Context())
	var (
		out []*types.Counter
		err error
	)
	if archived {
		out, err = h.counters.ListArchived(c.Request.Context(), owner)
	} else {
		out, err = h.counters.ListActive(c.Request.Context(), owner)
	}
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	if out == nil {
		out = []*types.Counter{}
	}
	response.RespondOK(c, gin.H{"counters": out})
}

// GET /api/counters/:id
func (h *CounterHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "invalid_counter_id")
	if !ok {
		return
	}
	ctr, err := h.counters.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"counter": ctr})
}

// DELETE /api/counters/:id?confirm=DELETE
// The confirm query parameter answers the delete prompt. Without a matching
// answer nothing is deleted and the prompt is returned for the client to show.
func (h *CounterHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "invalid_counter_id")
	if !ok {
		return
	}
	answer, answered := c.GetQuery("confirm")
	dialogs := newRequestDialogs(answer, answered)
	deleted, err := h.counters.ConfirmDelete(c.Request.Context(), id, dialogs)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	if deleted {
		c.Status(http.StatusNoContent)
		return
	}
	response.RespondOK(c, gin.H{
		"deleted": false,
		"prompt":  dialogs.lastPrompt(),
	})
}

// POST /api/counters/:id/increment
func (h *CounterHandler) Increment(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "invalid_counter_id")
	if !ok {
		return
	}
	ctr, err := h.counters.Increment(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"counter": ctr, "changed": true})
}

// POST /api/counters/:id/decrement
func (h *CounterHandler) Decrement(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "invalid_counter_id")
	if !ok {
		return
	}
	ctr, changed, err := h.counters.Decrement(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"counter": ctr, "changed": changed})
}

// POST /api/counters/:id/reset
func (h *CounterHandler) Reset(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "invalid_counter_id")
	if !ok {
		return
	}
	ctr, err := h.counters.Reset(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"counter": ctr, "changed": true})
}

// PUT /api/counters/:id/count
// body: { "value": 42 }
func (h *CounterHandler) Restore(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "invalid_counter_id")
	if !ok {
		return
	}
	var req struct {
		Value *int `json:"value"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if req.Value == nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("value is required"))
		return
	}
	ctr, err := h.counters.Restore(c.Request.Context(), id, *req.Value)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"counter": ctr})
}

// POST /api/counters/:id/undo
func (h *CounterHandler) Undo(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "invalid_counter_id")
	if !ok {
		return
	}
	ctr, undone, err := h.counters.Undo(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"counter": ctr, "changed": undone})
}

// PATCH /api/counters/:id/name
// body: { "name": "..." }
func (h *CounterHandler) Rename(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "invalid_counter_id")
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if !bindJSON(c, &req) {
		return
	}
	ctr, err := h.counters.Rename(c.Request.Context(), id, req.Name)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"counter": ctr})
}

// PUT /api/counters/:id/details
// Every field is replaced; omitted fields are cleared.
func (h *CounterHandler) UpdateDetails(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "invalid_counter_id")
	if !ok {
		return
	}
	var req types.CounterDetails
	if !bindJSON(c, &req) {
		return
	}
	ctr, err := h.counters.UpdateDetails(c.Request.Context(), id, req)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"counter": ctr})
}

// POST /api/counters/:id/archive
func (h *CounterHandler) Archive(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "invalid_counter_id")
	if !ok {
		return
	}
	ctr, err := h.counters.Archive(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"counter": ctr})
}

// POST /api/counters/:id/unarchive
func (h *CounterHandler) Unarchive(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "invalid_counter_id")
	if !ok {
		return
	}
	ctr, err := h.counters.Unarchive(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"counter": ctr})
}
