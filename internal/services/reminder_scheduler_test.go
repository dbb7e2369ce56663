package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/rowcount-backend/internal/data/repos/testutil"
	types "github.com/yungbote/rowcount-backend/internal/domain"
	"go.uber.org/goleak"
)

type recordingNotifier struct {
	mu   sync.Mutex
	seen []uuid.UUID
	fail bool
}

func (n *recordingNotifier) NotifyReminder(_ context.Context, r *types.Reminder) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("push gateway down")
	}
	n.seen = append(n.seen, r.ID)
	return nil
}

func TestReminderSchedulerTick(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	c, _ := f.counters.Create(ctx, CreateCounterInput{Name: "Cardigan"})
	r, err := f.counters.AddReminder(ctx, c.ID, 15)
	if err != nil {
		t.Fatalf("AddReminder: %v", err)
	}

	clock := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	notifier := &recordingNotifier{}
	s := NewReminderScheduler(ReminderSchedulerDeps{
		Log:      testutil.Logger(t),
		Counters: f.counters,
		Notifier: notifier,
		Now:      func() time.Time { return clock },
	})

	s.Tick(ctx)
	if !containsID(notifier.seen, r.ID) {
		t.Fatalf("first tick should fire the reminder")
	}
	before := len(notifier.seen)
	clock = clock.Add(5 * time.Minute)
	s.Tick(ctx)
	if len(notifier.seen) != before {
		t.Fatalf("reminder fired inside its interval")
	}

	notifier.fail = true
	clock = clock.Add(time.Hour)
	if fired := s.Tick(ctx); fired != 0 {
		t.Fatalf("failed deliveries should not count, got %d", fired)
	}
}

func TestReminderSchedulerRunStopsWithContext(t *testing.T) {
	f := newServiceFixture(t)
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	s := NewReminderScheduler(ReminderSchedulerDeps{
		Log:      testutil.Logger(t),
		Counters: f.counters,
		Notifier: &recordingNotifier{},
		Interval: 5 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not stop after cancel")
	}
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
