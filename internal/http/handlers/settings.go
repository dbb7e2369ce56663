package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/rowcount-backend/internal/http/response"
	"github.com/yungbote/rowcount-backend/internal/services"
)

type SettingsHandler struct {
	settings services.SettingsService
}

func NewSettingsHandler(settings services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// GET /api/settings
func (h *SettingsHandler) Get(c *gin.Context) {
	st, err := h.settings.Get(c.Request.Context())
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"settings": st})
}

// POST /api/settings/first-run/complete
func (h *SettingsHandler) CompleteFirstRun(c *gin.Context) {
	st, err := h.settings.CompleteFirstRun(c.Request.Context())
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"settings": st})
}

// PUT /api/settings/theme
// body: { "theme": "Light" | "Dark" | "Auto" }
func (h *SettingsHandler) UpdateTheme(c *gin.Context) {
	var req struct {
		Theme string `json:"theme"`
	}
	if !bindJSON(c, &req) {
		return
	}
	st, err := h.settings.UpdateTheme(c.Request.Context(), req.Theme)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"settings": st})
}

// PUT /api/settings/haptics
// body: { "enabled": true }
func (h *SettingsHandler) SetHapticFeedback(c *gin.Context) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if !bindJSON(c, &req) {
		return
	}
	st, err := h.settings.SetHapticFeedback(c.Request.Context(), req.Enabled)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"settings": st})
}

// POST /api/settings/sync/enable
// body: { "provider": "icloud" }
func (h *SettingsHandler) EnableSync(c *gin.Context) {
	var req struct {
		Provider string `json:"provider"`
	}
	if !bindJSON(c, &req) {
		return
	}
	st, err := h.settings.EnableSync(c.Request.Context(), req.Provider)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"settings": st})
}

// POST /api/settings/sync/disable
func (h *SettingsHandler) DisableSync(c *gin.Context) {
	st, err := h.settings.DisableSync(c.Request.Context())
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"settings": st})
}

// POST /api/settings/sync/record
// body: { "at": "2026-01-02T15:04:05Z" }; a missing time means now.
func (h *SettingsHandler) RecordSuccessfulSync(c *gin.Context) {
	var req struct {
		At *time.Time `json:"at"`
	}
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	at := time.Now()
	if req.At != nil {
		at = *req.At
	}
	st, err := h.settings.RecordSuccessfulSync(c.Request.Context(), at)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"settings": st})
}
