package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/rowcount-backend/internal/http/response"
	"github.com/yungbote/rowcount-backend/internal/platform/apierr"
	"github.com/yungbote/rowcount-backend/internal/platform/ctxutil"
	"github.com/yungbote/rowcount-backend/internal/services"
)

type QuickCounterHandler struct {
	quick services.QuickCounterService
}

func NewQuickCounterHandler(quick services.QuickCounterService) *QuickCounterHandler {
	return &QuickCounterHandler{quick: quick}
}

// GET /api/quick-counters/:sid
func (h *QuickCounterHandler) Get(c *gin.Context) {
	view, err := h.quick.Get(c.Request.Context(), c.Param("sid"))
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"quick_counter": view})
}

// POST /api/quick-counters/:sid/increment
func (h *QuickCounterHandler) Increment(c *gin.Context) {
	view, err := h.quick.Increment(c.Request.Context(), c.Param("sid"))
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"quick_counter": view, "changed": true})
}

// POST /api/quick-counters/:sid/decrement
func (h *QuickCounterHandler) Decrement(c *gin.Context) {
	view, changed, err := h.quick.Decrement(c.Request.Context(), c.Param("sid"))
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"quick_counter": view, "changed": changed})
}

// POST /api/quick-counters/:sid/reset
func (h *QuickCounterHandler) Reset(c *gin.Context) {
	view, changed, err := h.quick.Reset(c.Request.Context(), c.Param("sid"))
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"quick_counter": view, "changed": changed})
}

// POST /api/quick-counters/:sid/undo
func (h *QuickCounterHandler) Undo(c *gin.Context) {
	view, undone, err := h.quick.Undo(c.Request.Context(), c.Param("sid"))
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"quick_counter": view, "changed": undone})
}

// POST /api/quick-counters/:sid/save
// body: { "name": "...", "cancelled": false }
// The name stands in for the answer to the save prompt. Alerts and toasts
// raised while saving are returned under "dialogs".
func (h *QuickCounterHandler) Save(c *gin.Context) {
	var req struct {
		Name      string `json:"name"`
		Cancelled bool   `json:"cancelled"`
	}
	if !bindJSON(c, &req) {
		return
	}
	sid := c.Param("sid")
	dialogs := newRequestDialogs(req.Name, !req.Cancelled)
	saved, err := h.quick.SaveToCounter(c.Request.Context(), sid, ctxutil.OwnerFrom(c.Request.Context()), dialogs)
	if err != nil {
		ae := apierr.From(err)
		c.JSON(ae.Status, gin.H{
			"error":   response.NewErrorEnvelope(c, ae.Code, ae).Error,
			"dialogs": dialogs.payload(),
		})
		return
	}
	view, err := h.quick.Get(c.Request.Context(), sid)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	status := http.StatusOK
	if saved != nil {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{
		"saved":         saved != nil,
		"counter":       saved,
		"quick_counter": view,
		"dialogs":       dialogs.payload(),
	})
}

// DELETE /api/quick-counters/:sid
func (h *QuickCounterHandler) Discard(c *gin.Context) {
	if err := h.quick.Discard(c.Request.Context(), c.Param("sid")); err != nil {
		response.RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
