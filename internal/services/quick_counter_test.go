package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/rowcount-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/rowcount-backend/internal/domain/aggregates"
)

func TestQuickCounterTaps(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	sid := uuid.NewString()

	view, err := f.quick.Get(ctx, sid)
	if err != nil || view.Count != 0 || view.CanUndo || view.CanSave {
		t.Fatalf("fresh session: %+v err=%v", view, err)
	}
	if n, _ := f.store.Len(ctx); n != 0 {
		t.Fatalf("Get must not create a session, store has %d", n)
	}

	f.quick.Increment(ctx, sid)
	f.quick.Increment(ctx, sid)
	view, changed, err := f.quick.Decrement(ctx, sid)
	if err != nil || !changed || view.Count != 1 {
		t.Fatalf("Decrement: %+v changed=%v err=%v", view, changed, err)
	}
	view, undone, err := f.quick.Undo(ctx, sid)
	if err != nil || !undone || view.Count != 2 {
		t.Fatalf("Undo: %+v undone=%v err=%v", view, undone, err)
	}

	view, changed, _ = f.quick.Reset(ctx, sid)
	if !changed || view.Count != 0 {
		t.Fatalf("Reset: %+v changed=%v", view, changed)
	}
	if _, changed, _ := f.quick.Reset(ctx, sid); changed {
		t.Fatalf("Reset at zero should do nothing")
	}
	if _, changed, _ := f.quick.Decrement(ctx, sid); changed {
		t.Fatalf("Decrement at zero should do nothing")
	}
	view, undone, _ = f.quick.Undo(ctx, sid)
	if !undone || view.Count != 2 {
		t.Fatalf("undo of reset should restore 2, got %+v", view)
	}
}

func TestQuickCounterUndoDepthIsCapped(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	sid := uuid.NewString()

	for i := 0; i < 5; i++ {
		f.quick.Increment(ctx, sid)
	}
	view, _ := f.quick.Get(ctx, sid)
	if view.UndoDepth != 3 {
		t.Fatalf("UndoDepth = %d, want 3", view.UndoDepth)
	}
	for i := 0; i < 3; i++ {
		if _, undone, _ := f.quick.Undo(ctx, sid); !undone {
			t.Fatalf("undo %d should succeed", i)
		}
	}
	view, undone, _ := f.quick.Undo(ctx, sid)
	if undone || view.Count != 2 {
		t.Fatalf("buffer should be exhausted at count 2, got %+v undone=%v", view, undone)
	}
}

func TestQuickCounterSaveAborts(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	sid := uuid.NewString()
	f.quick.Increment(ctx, sid)

	cases := []struct {
		name   string
		dialog *fakeDialogs
		alert  string
	}{
		{name: "cancelled", dialog: &fakeDialogs{answer: "Ignored", accepted: false}},
		{name: "blank", dialog: &fakeDialogs{answer: "   ", accepted: true}},
		{name: "too long", dialog: &fakeDialogs{answer: strings.Repeat("x", 201), accepted: true}, alert: "Name Too Long: Counter name must be 200 characters or less."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := f.quick.SaveToCounter(ctx, sid, nil, tc.dialog)
			if err != nil || c != nil {
				t.Fatalf("expected silent abort, got %+v err=%v", c, err)
			}
			if len(tc.dialog.prompts) != 1 || tc.dialog.prompts[0].Title != "Save to Counter" || tc.dialog.prompts[0].MaxLength != 200 {
				t.Fatalf("unexpected prompts: %+v", tc.dialog.prompts)
			}
			if tc.alert == "" && len(tc.dialog.alerts) != 0 {
				t.Fatalf("unexpected alerts: %v", tc.dialog.alerts)
			}
			if tc.alert != "" && (len(tc.dialog.alerts) != 1 || tc.dialog.alerts[0] != tc.alert) {
				t.Fatalf("alerts = %v, want %q", tc.dialog.alerts, tc.alert)
			}
			if len(tc.dialog.toasts) != 0 {
				t.Fatalf("no toast expected on abort")
			}
			view, _ := f.quick.Get(ctx, sid)
			if view.Count != 1 {
				t.Fatalf("session must be untouched, count=%d", view.Count)
			}
		})
	}
}

func TestQuickCounterSaveToCounter(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	sid := uuid.NewString()
	owner := uuid.New()
	for i := 0; i < 4; i++ {
		f.quick.Increment(ctx, sid)
	}

	dialogs := &fakeDialogs{answer: "  Row Tracker ", accepted: true}
	c, err := f.quick.SaveToCounter(ctx, sid, &owner, dialogs)
	if err != nil {
		t.Fatalf("SaveToCounter: %v", err)
	}
	if c == nil || c.Name != "Row Tracker" || c.CurrentCount != 4 {
		t.Fatalf("saved counter: %+v", c)
	}
	if len(dialogs.toasts) != 1 || dialogs.toasts[0] != "Counter 'Row Tracker' saved!" {
		t.Fatalf("toasts = %v", dialogs.toasts)
	}

	stored, err := f.counters.Get(ownerCtx(owner), c.ID)
	if err != nil || stored.CurrentCount != 4 || len(stored.History) != 4 {
		t.Fatalf("stored counter: %+v err=%v", stored, err)
	}
	if stored.OwnerUserID == nil || *stored.OwnerUserID != owner {
		t.Fatalf("owner not carried over")
	}

	view, _ := f.quick.Get(ctx, sid)
	if view.Count != 0 || view.CanUndo {
		t.Fatalf("session should be cleared after save, got %+v", view)
	}
}

func TestQuickCounterRequiresSessionID(t *testing.T) {
	f := newServiceFixture(t)
	if _, err := f.quick.Increment(context.Background(), " "); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("expected validation, got %v", err)
	}
	if err := f.quick.Discard(context.Background(), ""); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("expected validation, got %v", err)
	}
}

func TestQuickCounterDiscard(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	sid := uuid.NewString()
	f.quick.Increment(ctx, sid)
	if n, _ := f.store.Len(ctx); n != 1 {
		t.Fatalf("expected one stored session, got %d", n)
	}
	if err := f.quick.Discard(ctx, sid); err != nil {
		t.Fatalf("Discard: %v", err)
	}
	if n, _ := f.store.Len(ctx); n != 0 {
		t.Fatalf("expected empty store, got %d", n)
	}
}

// gatedStore holds Delete until release is closed and records how many
// Load-to-Save sections run at once.
type gatedStore struct {
	QuickCounterStore
	deleting chan struct{}
	release  chan struct{}

	mu        sync.Mutex
	active    int
	maxActive int
}

func (g *gatedStore) Load(ctx context.Context, sessionID string) (*QuickCounterState, error) {
	g.mu.Lock()
	g.active++
	if g.active > g.maxActive {
		g.maxActive = g.active
	}
	g.mu.Unlock()
	time.Sleep(5 * time.Millisecond)
	return g.QuickCounterStore.Load(ctx, sessionID)
}

func (g *gatedStore) Save(ctx context.Context, sessionID string, st *QuickCounterState) error {
	err := g.QuickCounterStore.Save(ctx, sessionID, st)
	g.mu.Lock()
	g.active--
	g.mu.Unlock()
	return err
}

func (g *gatedStore) Delete(ctx context.Context, sessionID string) error {
	close(g.deleting)
	<-g.release
	return g.QuickCounterStore.Delete(ctx, sessionID)
}

func TestQuickCounterDiscardKeepsSessionSerialized(t *testing.T) {
	store := &gatedStore{
		QuickCounterStore: NewMemoryQuickCounterStore(),
		deleting:          make(chan struct{}),
		release:           make(chan struct{}),
	}
	quick := NewQuickCounterService(QuickCounterServiceDeps{Log: testutil.Logger(t), Store: store}).(*quickCounterService)
	ctx := context.Background()
	sid := uuid.NewString()
	if _, err := quick.Increment(ctx, sid); err != nil {
		t.Fatalf("Increment: %v", err)
	}

	var wg sync.WaitGroup
	increment := func() {
		defer wg.Done()
		if _, err := quick.Increment(ctx, sid); err != nil {
			t.Errorf("Increment: %v", err)
		}
	}
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := quick.Discard(ctx, sid); err != nil {
			t.Errorf("Discard: %v", err)
		}
	}()
	<-store.deleting
	go increment()

	// Wait for the increment to queue behind Discard.
	deadline := time.Now().Add(2 * time.Second)
	for {
		quick.locks.mu.Lock()
		sl := quick.locks.m[sid]
		queued := sl != nil && sl.refs == 2
		quick.locks.mu.Unlock()
		if queued {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("increment never queued behind discard")
		}
		time.Sleep(time.Millisecond)
	}

	close(store.release)
	wg.Add(1)
	go increment()
	wg.Wait()

	if store.maxActive != 1 {
		t.Fatalf("session sections overlapped: max concurrent = %d", store.maxActive)
	}
	st, err := store.QuickCounterStore.Load(ctx, sid)
	if err != nil || st == nil || st.Count != 2 {
		t.Fatalf("after discard and two increments: %+v err=%v", st, err)
	}
	if len(quick.locks.m) != 0 {
		t.Fatalf("released session locks should be dropped, have %d", len(quick.locks.m))
	}
}

// failingSaveStore fails Save once fail is set.
type failingSaveStore struct {
	QuickCounterStore
	fail atomic.Bool
}

func (s *failingSaveStore) Save(ctx context.Context, sessionID string, st *QuickCounterState) error {
	if s.fail.Load() {
		return errors.New("store unavailable")
	}
	return s.QuickCounterStore.Save(ctx, sessionID, st)
}

func TestQuickCounterSaveSucceedsWhenSessionClearFails(t *testing.T) {
	f := newServiceFixture(t)
	store := &failingSaveStore{QuickCounterStore: NewMemoryQuickCounterStore()}
	quick := NewQuickCounterService(QuickCounterServiceDeps{Log: testutil.Logger(t), Store: store, Counters: f.counters})
	ctx := context.Background()
	sid := uuid.NewString()
	quick.Increment(ctx, sid)
	quick.Increment(ctx, sid)

	store.fail.Store(true)
	dialogs := &fakeDialogs{answer: "Beanie", accepted: true}
	c, err := quick.SaveToCounter(ctx, sid, nil, dialogs)
	if err != nil {
		t.Fatalf("SaveToCounter should report the committed counter, got %v", err)
	}
	if c == nil || c.CurrentCount != 2 {
		t.Fatalf("saved counter: %+v", c)
	}
	if len(dialogs.alerts) != 0 || len(dialogs.toasts) != 1 {
		t.Fatalf("alerts=%v toasts=%v", dialogs.alerts, dialogs.toasts)
	}
	active, _ := f.counters.ListActive(ctx, nil)
	if len(active) != 1 {
		t.Fatalf("expected exactly one stored counter, got %d", len(active))
	}
}
