package counter

import "errors"

var (
	ErrSessionRunning   = errors.New("a work session is already running")
	ErrNoSessionRunning = errors.New("no work session is running")
)

// DeleteConfirmation is the word a user types to confirm deleting a counter.
const DeleteConfirmation = "DELETE"
