package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/rowcount-backend/internal/domain"
	"github.com/yungbote/rowcount-backend/internal/http/response"
	"github.com/yungbote/rowcount-backend/internal/services"
)

// POST /api/counters/:id/notes
// body: { "row_number": 12, "note_text": "..." }
func (h *CounterHandler) AddRowNote(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "invalid_counter_id")
	if !ok {
		return
	}
	var req struct {
		RowNumber int     `json:"row_number"`
		NoteText  *string `json:"note_text"`
	}
	if !bindJSON(c, &req) {
		return
	}
	note, err := h.counters.AddRowNote(c.Request.Context(), id, req.RowNumber, req.NoteText)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"note": note})
}

// GET /api/counters/:id/notes
func (h *CounterHandler) ListRowNotes(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "invalid_counter_id")
	if !ok {
		return
	}
	notes, err := h.counters.ListRowNotes(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	if notes == nil {
		notes = []*types.RowNote{}
	}
	response.RespondOK(c, gin.H{"notes": notes})
}

// PATCH /api/notes/:id
// body: { "note_text": "..." }; null clears the text.
func (h *CounterHandler) UpdateRowNote(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "invalid_note_id")
	if !ok {
		return
	}
	var req struct {
		NoteText *string `json:"note_text"`
	}
	if !bindJSON(c, &req) {
		return
	}
	note, err := h.counters.UpdateRowNote(c.Request.Context(), id, req.NoteText)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"note": note})
}

// POST /api/counters/:id/sessions/start
func (h *CounterHandler) StartSession(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "invalid_counter_id")
	if !ok {
		return
	}
	ws, err := h.counters.StartSession(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": ws})
}

// POST /api/counters/:id/sessions/end
func (h *CounterHandler) EndSession(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "invalid_counter_id")
	if !ok {
		return
	}
	ws, err := h.counters.EndSession(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	rows, _ := ws.RowsCompleted()
	response.RespondOK(c, gin.H{"session": ws, "rows_completed": rows})
}

// GET /api/counters/:id/sessions
func (h *CounterHandler) ListSessions(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "invalid_counter_id")
	if !ok {
		return
	}
	out, err := h.counters.ListSessions(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	if out == nil {
		out = []*types.WorkSession{}
	}
	response.RespondOK(c, gin.H{"sessions": out})
}

// POST /api/counters/:id/reminders
// body: { "interval_minutes": 30 }
func (h *CounterHandler) AddReminder(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "invalid_counter_id")
	if !ok {
		return
	}
	var req struct {
		IntervalMinutes int `json:"interval_minutes"`
	}
	if !bindJSON(c, &req) {
		return
	}
	r, err := h.counters.AddReminder(c.Request.Context(), id, req.IntervalMinutes)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"reminder": r})
}

// GET /api/counters/:id/reminders
func (h *CounterHandler) ListReminders(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "invalid_counter_id")
	if !ok {
		return
	}
	out, err := h.counters.ListReminders(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	if out == nil {
		out = []*types.Reminder{}
	}
	response.RespondOK(c, gin.H{"reminders": out})
}

// PATCH /api/reminders/:id
// body: { "interval_minutes": 45, "is_enabled": false }
func (h *CounterHandler) UpdateReminder(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "invalid_reminder_id")
	if !ok {
		return
	}
	var req struct {
		IntervalMinutes *int  `json:"interval_minutes"`
		IsEnabled       *bool `json:"is_enabled"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if req.IntervalMinutes == nil && req.IsEnabled == nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("nothing to update"))
		return
	}
	r, err := h.counters.UpdateReminder(c.Request.Context(), id, services.ReminderUpdate{
		IntervalMinutes: req.IntervalMinutes,
		Enabled:         req.IsEnabled,
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"reminder": r})
}
