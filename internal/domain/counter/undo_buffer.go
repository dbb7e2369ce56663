package counter

import "fmt"

// DefaultUndoDepth is the number of actions an UndoBuffer keeps by default.
const DefaultUndoDepth = 50

type ActionKind string

const (
	ActionIncrement ActionKind = "increment"
	ActionDecrement ActionKind = "decrement"
	ActionReset     ActionKind = "reset"
)

// Action is one undoable tap. PriorValue is only meaningful for resets.
type Action struct {
	Kind       ActionKind `json:"kind"`
	PriorValue int        `json:"prior_value,omitempty"`
}

// UndoBuffer is a capped LIFO of actions. Once full, pushing evicts the oldest
// entry while pop order at the top is unchanged. It is not safe for concurrent
// use.
type UndoBuffer struct {
	ring  []Action
	head  int // index of the oldest entry
	count int
}

func NewUndoBuffer(capacity int) *UndoBuffer {
	if capacity <= 0 {
		capacity = DefaultUndoDepth
	}
	return &UndoBuffer{ring: make([]Action, capacity)}
}

// RestoreUndoBuffer rebuilds a buffer from entries ordered oldest first. When
// there are more entries than capacity the oldest are dropped.
func RestoreUndoBuffer(capacity int, entries []Action) *UndoBuffer {
	b := NewUndoBuffer(capacity)
	for _, a := range entries {
		b.Push(a)
	}
	return b
}

func (b *UndoBuffer) Cap() int { return len(b.ring) }
func (b *UndoBuffer) Len() int { return b.count }

func (b *UndoBuffer) Push(a Action) {
	if b.count == len(b.ring) {
		b.ring[b.head] = a
		b.head = (b.head + 1) % len(b.ring)
		return
	}
	b.ring[(b.head+b.count)%len(b.ring)] = a
	b.count++
}

// Pop removes the newest action. ok is false when there is nothing to undo.
func (b *UndoBuffer) Pop() (a Action, ok bool) {
	if b.count == 0 {
		return Action{}, false
	}
	idx := (b.head + b.count - 1) % len(b.ring)
	a = b.ring[idx]
	b.ring[idx] = Action{}
	b.count--
	return a, true
}

func (b *UndoBuffer) Clear() {
	clear(b.ring)
	b.head = 0
	b.count = 0
}

// Entries returns a copy of the buffered actions, oldest first.
func (b *UndoBuffer) Entries() []Action {
	out := make([]Action, 0, b.count)
	for i := 0; i < b.count; i++ {
		out = append(out, b.ring[(b.head+i)%len(b.ring)])
	}
	return out
}

// Revert applies the inverse of a to c. A reset is undone by restoring the
// value it cleared.
func Revert(c *Counter, a Action) error {
	switch a.Kind {
	case ActionIncrement:
		c.Decrement()
	case ActionDecrement:
		c.Increment()
	case ActionReset:
		return c.Restore(a.PriorValue)
	default:
		return fmt.Errorf("unknown undo action %q", a.Kind)
	}
	return nil
}
