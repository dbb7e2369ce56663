package services

import (
	"context"
	"fmt"
	"time"

	types "github.com/yungbote/rowcount-backend/internal/domain"
	"github.com/yungbote/rowcount-backend/internal/platform/logger"
)

// ReminderNotifier delivers a reminder that came due.
type ReminderNotifier interface {
	NotifyReminder(ctx context.Context, r *types.Reminder) error
}

type logReminderNotifier struct {
	log *logger.Logger
}

func NewLogReminderNotifier(log *logger.Logger) ReminderNotifier {
	return &logReminderNotifier{log: log.With("component", "ReminderNotifier")}
}

func (n *logReminderNotifier) NotifyReminder(_ context.Context, r *types.Reminder) error {
	n.log.Info("reminder due", "reminder_id", r.ID, "counter_id", r.CounterID, "interval_minutes", r.IntervalMinutes)
	return nil
}

type ReminderSchedulerDeps struct {
	Log      *logger.Logger
	Counters CounterService
	Notifier ReminderNotifier
	Interval time.Duration
	Now      func() time.Time
}

// ReminderScheduler polls for due reminders and hands them to a notifier.
type ReminderScheduler struct {
	log      *logger.Logger
	counters CounterService
	notify   ReminderNotifier
	interval time.Duration
	now      func() time.Time
}

func NewReminderScheduler(deps ReminderSchedulerDeps) *ReminderScheduler {
	interval := deps.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	nowFn := deps.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	notify := deps.Notifier
	if notify == nil {
		notify = NewLogReminderNotifier(deps.Log)
	}
	return &ReminderScheduler{
		log:      deps.Log.With("component", "ReminderScheduler"),
		counters: deps.Counters,
		notify:   notify,
		interval: interval,
		now:      nowFn,
	}
}

// Run ticks until ctx is done. It always returns nil so it can sit in an
// errgroup next to the HTTP server.
func (s *ReminderScheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	s.log.Info("reminder scheduler started", "interval", s.interval.String())
	for {
		select {
		case <-ctx.Done():
			s.log.Info("reminder scheduler stopped")
			return nil
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs one poll. A panic in the notifier is logged and swallowed.
func (s *ReminderScheduler) Tick(ctx context.Context) (fired int) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("reminder tick panic", "panic", fmt.Sprint(r))
		}
	}()
	due, err := s.counters.DueReminders(ctx, s.now())
	if err != nil {
		s.log.Warn("DueReminders failed", "error", err)
	}
	for _, r := range due {
		if err := s.notify.NotifyReminder(ctx, r); err != nil {
			s.log.Warn("reminder notify failed", "reminder_id", r.ID, "error", err)
			continue
		}
		fired++
	}
	return fired
}
