package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	types "github.com/yungbote/rowcount-backend/internal/domain"
	domainagg "github.com/yungbote/rowcount-backend/internal/domain/aggregates"
	"github.com/yungbote/rowcount-backend/internal/domain/counter"
	"github.com/yungbote/rowcount-backend/internal/observability"
	"github.com/yungbote/rowcount-backend/internal/platform/logger"
)

const quickCounterName = "Quick Counter"

// QuickCounterState is the persisted form of one quick counting session.
type QuickCounterState struct {
	Count     int              `json:"count"`
	Undo      []counter.Action `json:"undo,omitempty"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// QuickCounterStore keeps quick counter sessions between requests. Load
// returns nil, nil for unknown sessions.
type QuickCounterStore interface {
	Load(ctx context.Context, sessionID string) (*QuickCounterState, error)
	Save(ctx context.Context, sessionID string, st *QuickCounterState) error
	Delete(ctx context.Context, sessionID string) error
	Len(ctx context.Context) (int, error)
}

// QuickCounterView is what callers see of a session.
type QuickCounterView struct {
	SessionID string `json:"session_id"`
	Count     int    `json:"count"`
	CanUndo   bool   `json:"can_undo"`
	CanSave   bool   `json:"can_save"`
	UndoDepth int    `json:"undo_depth"`
}

type QuickCounterService interface {
	Get(ctx context.Context, sessionID string) (QuickCounterView, error)
	Increment(ctx context.Context, sessionID string) (QuickCounterView, error)
	// Decrement and Reset do nothing at zero; changed reports whether they acted.
	Decrement(ctx context.Context, sessionID string) (view QuickCounterView, changed bool, err error)
	Reset(ctx context.Context, sessionID string) (view QuickCounterView, changed bool, err error)
	// Undo reverts the newest buffered action; undone is false when the buffer is empty.
	Undo(ctx context.Context, sessionID string) (view QuickCounterView, undone bool, err error)
	// SaveToCounter turns the session into a durable counter named through
	// dialogs. It returns nil, nil when the user aborts.
	SaveToCounter(ctx context.Context, sessionID string, owner *uuid.UUID, dialogs Dialogs) (*types.Counter, error)
	Discard(ctx context.Context, sessionID string) error
}

type QuickCounterServiceDeps struct {
	Log       *logger.Logger
	Metrics   *observability.Metrics
	Store     QuickCounterStore
	Counters  CounterService
	UndoDepth int
}

type quickCounterService struct {
	log       *logger.Logger
	metrics   *observability.Metrics
	store     QuickCounterStore
	counters  CounterService
	undoDepth int

	locks sessionLocks
}

func NewQuickCounterService(deps QuickCounterServiceDeps) QuickCounterService {
	depth := deps.UndoDepth
	if depth <= 0 {
		depth = counter.DefaultUndoDepth
	}
	store := deps.Store
	if store == nil {
		store = NewMemoryQuickCounterStore()
	}
	return &quickCounterService{
		log:       deps.Log.With("service", "QuickCounterService"),
		metrics:   deps.Metrics,
		store:     store,
		counters:  deps.Counters,
		undoDepth: depth,
	}
}

// session is the in-memory working form of a QuickCounterState.
type session struct {
	counter *types.Counter
	undo    *counter.UndoBuffer
}

func (q *quickCounterService) Get(ctx context.Context, sessionID string) (QuickCounterView, error) {
	var view QuickCounterView
	err := q.withSession(ctx, sessionID, false, func(s *session) error {
		view = q.view(sessionID, s)
		return nil
	})
	return view, err
}

func (q *quickCounterService) Increment(ctx context.Context, sessionID string) (QuickCounterView, error) {
	var view QuickCounterView
	err := q.withSession(ctx, sessionID, true, func(s *session) error {
		s.counter.Increment()
		s.undo.Push(counter.Action{Kind: counter.ActionIncrement})
		view = q.view(sessionID, s)
		return nil
	})
	if err == nil {
		q.metrics.IncCounterEvent("quick_" + string(counter.ActionIncrement))
	}
	return view, err
}

func (q *quickCounterService) Decrement(ctx context.Context, sessionID string) (QuickCounterView, bool, error) {
	var (
		view    QuickCounterView
		changed bool
	)
	err := q.withSession(ctx, sessionID, true, func(s *session) error {
		if s.counter.Decrement() {
			s.undo.Push(counter.Action{Kind: counter.ActionDecrement})
			changed = true
		}
		view = q.view(sessionID, s)
		return nil
	})
	return view, changed, err
}

func (q *quickCounterService) Reset(ctx context.Context, sessionID string) (QuickCounterView, bool, error) {
	var (
		view    QuickCounterView
		changed bool
	)
	err := q.withSession(ctx, sessionID, true, func(s *session) error {
		if s.counter.CurrentCount > 0 {
			s.undo.Push(counter.Action{Kind: counter.ActionReset, PriorValue: s.counter.CurrentCount})
			s.counter.Reset()
			changed = true
		}
		view = q.view(sessionID, s)
		return nil
	})
	return view, changed, err
}

func (q *quickCounterService) Undo(ctx context.Context, sessionID string) (QuickCounterView, bool, error) {
	var (
		view   QuickCounterView
		undone bool
	)
	err := q.withSession(ctx, sessionID, true, func(s *session) error {
		a, ok := s.undo.Pop()
		if ok {
			if err := counter.Revert(s.counter, a); err != nil {
				return err
			}
			undone = true
		}
		view = q.view(sessionID, s)
		return nil
	})
	return view, undone, err
}

func (q *quickCounterService) SaveToCounter(ctx context.Context, sessionID string, owner *uuid.UUID, dialogs Dialogs) (*types.Counter, error) {
	const op = "quick_counter.save"
	if dialogs == nil {
		return nil, domainagg.NewError(domainagg.CodeInternal, op, "dialogs not configured", nil)
	}
	var saved *types.Counter
	err := q.withSession(ctx, sessionID, false, func(s *session) error {
		name, ok := dialogs.PromptForText(ctx, Prompt{
			Title:       "Save to Counter",
			Message:     "Enter a name for this counter:",
			AcceptLabel: "Save",
			CancelLabel: "Cancel",
			Placeholder: "My Knitting Project",
			MaxLength:   counter.MaxNameLength,
		})
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			q.log.Debug("quick counter save cancelled", "session_id", sessionID)
			return nil
		}
		if utf8.RuneCountInString(name) > counter.MaxNameLength {
			dialogs.Alert(ctx, "Name Too Long", fmt.Sprintf("Counter name must be %d characters or less.", counter.MaxNameLength), "OK")
			return nil
		}

		c, err := q.counters.CreateWithCount(ctx, name, owner, s.counter.CurrentCount)
		switch {
		case domainagg.IsCode(err, domainagg.CodeValidation):
			dialogs.Alert(ctx, "Invalid Input", err.Error(), "OK")
			return err
		case err != nil:
			dialogs.Alert(ctx, "Save Failed", "Could not save counter. Please try again.", "OK")
			return err
		}
		dialogs.Toast(ctx, fmt.Sprintf("Counter '%s' saved!", c.Name))

		saved = c
		// The counter is committed; failing to clear the session must not
		// report the save as failed.
		s.counter.Reset()
		s.undo.Clear()
		if err := q.save(ctx, sessionID, s); err != nil {
			q.log.Warn("quick counter not cleared after save", "session_id", sessionID, "counter_id", c.ID, "error", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (q *quickCounterService) Discard(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return domainagg.Validation("quick_counter.discard", "session id is required")
	}
	defer q.locks.acquire(sessionID)()
	if err := q.store.Delete(ctx, sessionID); err != nil {
		return err
	}
	q.reportSessions(ctx)
	return nil
}

// withSession runs fn with the session loaded and locked. When persist is
// set the session is written back after fn succeeds.
func (q *quickCounterService) withSession(ctx context.Context, sessionID string, persist bool, fn func(s *session) error) error {
	if strings.TrimSpace(sessionID) == "" {
		return domainagg.Validation("quick_counter", "session id is required")
	}
	defer q.locks.acquire(sessionID)()

	st, err := q.store.Load(ctx, sessionID)
	if err != nil {
		return err
	}
	s := q.restore(st)
	if err := fn(s); err != nil {
		return err
	}
	if !persist {
		return nil
	}
	if err := q.save(ctx, sessionID, s); err != nil {
		return err
	}
	if st == nil {
		q.reportSessions(ctx)
	}
	return nil
}

func (q *quickCounterService) save(ctx context.Context, sessionID string, s *session) error {
	return q.store.Save(ctx, sessionID, &QuickCounterState{
		Count:     s.counter.CurrentCount,
		Undo:      s.undo.Entries(),
		UpdatedAt: s.counter.UpdatedAt,
	})
}

func (q *quickCounterService) restore(st *QuickCounterState) *session {
	c := &types.Counter{ID: uuid.New(), Name: quickCounterName}
	if st == nil {
		return &session{counter: c, undo: counter.NewUndoBuffer(q.undoDepth)}
	}
	c.CurrentCount = st.Count
	c.UpdatedAt = st.UpdatedAt
	return &session{counter: c, undo: counter.RestoreUndoBuffer(q.undoDepth, st.Undo)}
}

func (q *quickCounterService) view(sessionID string, s *session) QuickCounterView {
	return QuickCounterView{
		SessionID: sessionID,
		Count:     s.counter.CurrentCount,
		CanUndo:   s.undo.Len() > 0,
		CanSave:   s.counter.CurrentCount > 0,
		UndoDepth: s.undo.Len(),
	}
}

// sessionLocks serializes work per session id. An entry lives while any
// caller holds or waits for it, so every caller of one id shares a mutex.
type sessionLocks struct {
	mu sync.Mutex
	m  map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// acquire locks sessionID and returns the matching release.
func (l *sessionLocks) acquire(sessionID string) func() {
	l.mu.Lock()
	if l.m == nil {
		l.m = map[string]*sessionLock{}
	}
	sl := l.m[sessionID]
	if sl == nil {
		sl = &sessionLock{}
		l.m[sessionID] = sl
	}
	sl.refs++
	l.mu.Unlock()

	sl.mu.Lock()
	return func() {
		sl.mu.Unlock()
		l.mu.Lock()
		sl.refs--
		if sl.refs == 0 {
			delete(l.m, sessionID)
		}
		l.mu.Unlock()
	}
}

func (q *quickCounterService) reportSessions(ctx context.Context) {
	if q.metrics == nil {
		return
	}
	if n, err := q.store.Len(ctx); err == nil {
		q.metrics.SetQuickCounterSessions(n)
	}
}

type memoryQuickCounterStore struct {
	mu       sync.RWMutex
	sessions map[string]QuickCounterState
}

// NewMemoryQuickCounterStore keeps sessions in process memory.
func NewMemoryQuickCounterStore() QuickCounterStore {
	return &memoryQuickCounterStore{sessions: map[string]QuickCounterState{}}
}

func (m *memoryQuickCounterStore) Load(_ context.Context, sessionID string) (*QuickCounterState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	st.Undo = append([]counter.Action(nil), st.Undo...)
	return &st, nil
}

func (m *memoryQuickCounterStore) Save(_ context.Context, sessionID string, st *QuickCounterState) error {
	if st == nil {
		return nil
	}
	cp := *st
	cp.Undo = append([]counter.Action(nil), st.Undo...)
	m.mu.Lock()
	m.sessions[sessionID] = cp
	m.mu.Unlock()
	return nil
}

func (m *memoryQuickCounterStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()
	return nil
}

func (m *memoryQuickCounterStore) Len(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions), nil
}
