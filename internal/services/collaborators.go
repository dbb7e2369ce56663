package services

import "context"

// Prompt describes a single-line text prompt shown to the user.
type Prompt struct {
	Title       string `json:"title"`
	Message     string `json:"message"`
	AcceptLabel string `json:"accept_label"`
	CancelLabel string `json:"cancel_label"`
	Placeholder string `json:"placeholder"`
	MaxLength   int    `json:"max_length"`
}

// Dialogs is the user-interaction surface the services call back into. A
// cancelled or blank prompt aborts the pending operation with no state
// change.
type Dialogs interface {
	PromptForText(ctx context.Context, p Prompt) (string, bool)
	Alert(ctx context.Context, title, message, okLabel string)
	Toast(ctx context.Context, message string)
}
