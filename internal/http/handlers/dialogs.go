package handlers

import (
	"context"
	"sync"

	"github.com/yungbote/rowcount-backend/internal/services"
)

type DialogMessage struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	OK      string `json:"ok"`
}

// requestDialogs answers prompts from the request body and collects the
// alerts and toasts a service raises so they can be returned to the client.
type requestDialogs struct {
	answer   string
	accepted bool

	mu      sync.Mutex
	prompts []services.Prompt
	alerts  []DialogMessage
	toasts  []string
}

func newRequestDialogs(answer string, accepted bool) *requestDialogs {
	return &requestDialogs{answer: answer, accepted: accepted}
}

func (d *requestDialogs) PromptForText(_ context.Context, p services.Prompt) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.prompts = append(d.prompts, p)
	return d.answer, d.accepted
}

// lastPrompt returns the most recent prompt shown, or nil.
func (d *requestDialogs) lastPrompt() *services.Prompt {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.prompts) == 0 {
		return nil
	}
	p := d.prompts[len(d.prompts)-1]
	return &p
}

func (d *requestDialogs) Alert(_ context.Context, title, message, okLabel string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.alerts = append(d.alerts, DialogMessage{Title: title, Message: message, OK: okLabel})
}

func (d *requestDialogs) Toast(_ context.Context, message string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.toasts = append(d.toasts, message)
}

func (d *requestDialogs) payload() map[string]any {
	d.mu.Lock()
	defer d.mu.Unlock()
	alerts := d.alerts
	if alerts == nil {
		alerts = []DialogMessage{}
	}
	toasts := d.toasts
	if toasts == nil {
		toasts = []string{}
	}
	return map[string]any{"alerts": alerts, "toasts": toasts}
}
