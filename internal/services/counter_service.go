package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/rowcount-backend/internal/data/aggregates"
	"github.com/yungbote/rowcount-backend/internal/data/repos"
	types "github.com/yungbote/rowcount-backend/internal/domain"
	domainagg "github.com/yungbote/rowcount-backend/internal/domain/aggregates"
	"github.com/yungbote/rowcount-backend/internal/domain/counter"
	"github.com/yungbote/rowcount-backend/internal/observability"
	"github.com/yungbote/rowcount-backend/internal/platform/ctxutil"
	"github.com/yungbote/rowcount-backend/internal/platform/logger"
)

// CounterService operates on stored counters. Every by-id operation is
// scoped to the owner carried on ctx (see ctxutil.OwnerFrom): a counter owned
// by someone else, or by nobody when ctx carries an owner, is reported as
// not_found. Child records are scoped through their counter.
type CounterService interface {
	Create(ctx context.Context, in CreateCounterInput) (*types.Counter, error)
	// CreateWithCount creates a counter whose value is carried over from
	// somewhere else, recording one history row per counted step.
	CreateWithCount(ctx context.Context, name string, owner *uuid.UUID, count int) (*types.Counter, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Counter, error)
	ListActive(ctx context.Context, owner *uuid.UUID) ([]*types.Counter, error)
	ListArchived(ctx context.Context, owner *uuid.UUID) ([]*types.Counter, error)

	Increment(ctx context.Context, id uuid.UUID) (*types.Counter, error)
	Decrement(ctx context.Context, id uuid.UUID) (*types.Counter, bool, error)
	Reset(ctx context.Context, id uuid.UUID) (*types.Counter, error)
	Restore(ctx context.Context, id uuid.UUID, value int) (*types.Counter, error)
	Undo(ctx context.Context, id uuid.UUID) (*types.Counter, bool, error)

	Rename(ctx context.Context, id uuid.UUID, name string) (*types.Counter, error)
	UpdateDetails(ctx context.Context, id uuid.UUID, d types.CounterDetails) (*types.Counter, error)
	Archive(ctx context.Context, id uuid.UUID) (*types.Counter, error)
	Unarchive(ctx context.Context, id uuid.UUID) (*types.Counter, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// ConfirmDelete asks the user to type DELETE before deleting the counter
	// and reports whether it was deleted.
	ConfirmDelete(ctx context.Context, id uuid.UUID, dialogs Dialogs) (bool, error)

	AddRowNote(ctx context.Context, counterID uuid.UUID, row int, text *string) (*types.RowNote, error)
	ListRowNotes(ctx context.Context, counterID uuid.UUID) ([]*types.RowNote, error)
	UpdateRowNote(ctx context.Context, noteID uuid.UUID, text *string) (*types.RowNote, error)

	StartSession(ctx context.Context, counterID uuid.UUID) (*types.WorkSession, error)
	EndSession(ctx context.Context, counterID uuid.UUID) (*types.WorkSession, error)
	ListSessions(ctx context.Context, counterID uuid.UUID) ([]*types.WorkSession, error)

	AddReminder(ctx context.Context, counterID uuid.UUID, intervalMinutes int) (*types.Reminder, error)
	ListReminders(ctx context.Context, counterID uuid.UUID) ([]*types.Reminder, error)
	UpdateReminder(ctx context.Context, reminderID uuid.UUID, in ReminderUpdate) (*types.Reminder, error)
	// DueReminders marks every reminder due at t as triggered and returns them.
	DueReminders(ctx context.Context, at time.Time) ([]*types.Reminder, error)
}

type CreateCounterInput struct {
	Name    string
	Owner   *uuid.UUID
	Details *types.CounterDetails
}

type ReminderUpdate struct {
	IntervalMinutes *int
	Enabled         *bool
}

// GatewayFactory returns a fresh unit of work. Gateways are never shared
// between calls.
type GatewayFactory func() aggregates.CounterGateway

type CounterServiceDeps struct {
	Log        *logger.Logger
	Metrics    *observability.Metrics
	NewGateway GatewayFactory
	Settings   SettingsService

	RowNotes  repos.RowNoteRepo
	Sessions  repos.WorkSessionRepo
	Reminders repos.ReminderRepo
}

type counterService struct {
	log        *logger.Logger
	metrics    *observability.Metrics
	newGateway GatewayFactory
	settings   SettingsService

	rowNotes  repos.RowNoteRepo
	sessions  repos.WorkSessionRepo
	reminders repos.ReminderRepo
}

func NewCounterService(deps CounterServiceDeps) CounterService {
	return &counterService{
		log:        deps.Log.With("service", "CounterService"),
		metrics:    deps.Metrics,
		newGateway: deps.NewGateway,
		settings:   deps.Settings,
		rowNotes:   deps.RowNotes,
		sessions:   deps.Sessions,
		reminders:  deps.Reminders,
	}
}

func (s *counterService) Create(ctx context.Context, in CreateCounterInput) (*types.Counter, error) {
	c, err := counter.New(in.Name, in.Owner)
	if err != nil {
		return nil, err
	}
	details := types.CounterDetails{}
	if in.Details != nil {
		details = *in.Details
	}
	if details.ColorHex == nil {
		color := counter.RandomColor()
		details.ColorHex = &color
	}
	if err := c.UpdateDetails(details); err != nil {
		return nil, err
	}
	return s.persistNew(ctx, c)
}

func (s *counterService) CreateWithCount(ctx context.Context, name string, owner *uuid.UUID, count int) (*types.Counter, error) {
	if count < 0 {
		return nil, domainagg.Validation("counter.create", "count cannot be negative")
	}
	c, err := counter.New(name, owner)
	if err != nil {
		return nil, err
	}
	color := counter.RandomColor()
	if err := c.UpdateDetails(types.CounterDetails{ColorHex: &color}); err != nil {
		return nil, err
	}
	for i := 0; i < count; i++ {
		c.Increment()
	}
	return s.persistNew(ctx, c)
}

func (s *counterService) persistNew(ctx context.Context, c *types.Counter) (*types.Counter, error) {
	gw := s.newGateway()
	gw.Add(c)
	if _, err := gw.Commit(ctx); err != nil {
		return nil, err
	}
	s.bumpCreationCount(ctx)
	s.log.Info("counter created", "counter_id", c.ID, "owner_user_id", ownerString(c.OwnerUserID), "count", c.CurrentCount)
	return c, nil
}

// bumpCreationCount is best effort: the counter is already stored, so a
// settings failure is logged rather than returned.
func (s *counterService) bumpCreationCount(ctx context.Context) {
	if s.settings == nil {
		return
	}
	if _, err := s.settings.IncrementCounterCreationCount(ctx); err != nil {
		s.log.Warn("bump counter creation count failed", "error", err)
	}
}

func (s *counterService) Get(ctx context.Context, id uuid.UUID) (*types.Counter, error) {
	return s.load(ctx, s.newGateway(), "counter.get", id)
}

func (s *counterService) ListActive(ctx context.Context, owner *uuid.UUID) ([]*types.Counter, error) {
	return s.newGateway().GetActive(ctx, owner)
}

func (s *counterService) ListArchived(ctx context.Context, owner *uuid.UUID) ([]*types.Counter, error) {
	return s.newGateway().GetArchived(ctx, owner)
}

func (s *counterService) Increment(ctx context.Context, id uuid.UUID) (*types.Counter, error) {
	c, _, err := s.mutate(ctx, "counter.increment", id, func(c *types.Counter) (bool, error) {
		c.Increment()
		return true, nil
	})
	if err == nil {
		s.metrics.IncCounterEvent(string(counter.ActionIncrement))
	}
	return c, err
}

func (s *counterService) Decrement(ctx context.Context, id uuid.UUID) (*types.Counter, bool, error) {
	c, changed, err := s.mutate(ctx, "counter.decrement", id, func(c *types.Counter) (bool, error) {
		return c.Decrement(), nil
	})
	if err == nil && changed {
		s.metrics.IncCounterEvent(string(counter.ActionDecrement))
	}
	return c, changed, err
}

func (s *counterService) Reset(ctx context.Context, id uuid.UUID) (*types.Counter, error) {
	c, _, err := s.mutate(ctx, "counter.reset", id, func(c *types.Counter) (bool, error) {
		c.Reset()
		return true, nil
	})
	if err == nil {
		s.metrics.IncCounterEvent(string(counter.ActionReset))
	}
	return c, err
}

func (s *counterService) Restore(ctx context.Context, id uuid.UUID, value int) (*types.Counter, error) {
	c, _, err := s.mutate(ctx, "counter.restore", id, func(c *types.Counter) (bool, error) {
		before := c.CurrentCount
		if err := c.Restore(value); err != nil {
			return false, err
		}
		return c.CurrentCount != before, nil
	})
	return c, err
}

func (s *counterService) Undo(ctx context.Context, id uuid.UUID) (*types.Counter, bool, error) {
	c, changed, err := s.mutate(ctx, "counter.undo", id, func(c *types.Counter) (bool, error) {
		return c.UndoLastChange(), nil
	})
	if err == nil && changed {
		s.metrics.IncCounterEvent("undo")
	}
	return c, changed, err
}

func (s *counterService) Rename(ctx context.Context, id uuid.UUID, name string) (*types.Counter, error) {
	c, _, err := s.mutate(ctx, "counter.rename", id, func(c *types.Counter) (bool, error) {
		before := c.Name
		if err := c.Rename(name); err != nil {
			return false, err
		}
		return c.Name != before, nil
	})
	return c, err
}

func (s *counterService) UpdateDetails(ctx context.Context, id uuid.UUID, d types.CounterDetails) (*types.Counter, error) {
	c, _, err := s.mutate(ctx, "counter.update_details", id, func(c *types.Counter) (bool, error) {
		if err := c.UpdateDetails(d); err != nil {
			return false, err
		}
		return true, nil
	})
	return c, err
}

func (s *counterService) Archive(ctx context.Context, id uuid.UUID) (*types.Counter, error) {
	c, _, err := s.mutate(ctx, "counter.archive", id, func(c *types.Counter) (bool, error) {
		if c.IsArchived {
			return false, nil
		}
		c.Archive()
		return true, nil
	})
	return c, err
}

func (s *counterService) Unarchive(ctx context.Context, id uuid.UUID) (*types.Counter, error) {
	c, _, err := s.mutate(ctx, "counter.unarchive", id, func(c *types.Counter) (bool, error) {
		if !c.IsArchived {
			return false, nil
		}
		c.Unarchive()
		return true, nil
	})
	return c, err
}

// Delete archives the counter. Unknown ids, and counters owned by someone
// else, succeed without doing anything.
func (s *counterService) Delete(ctx context.Context, id uuid.UUID) error {
	gw := s.newGateway()
	if _, err := s.load(ctx, gw, "counter.delete", id); err != nil {
		if domainagg.IsCode(err, domainagg.CodeNotFound) {
			return nil
		}
		return err
	}
	return s.archiveByDelete(ctx, gw, id)
}

func (s *counterService) ConfirmDelete(ctx context.Context, id uuid.UUID, dialogs Dialogs) (bool, error) {
	const op = "counter.delete"
	if dialogs == nil {
		return false, domainagg.NewError(domainagg.CodeInternal, op, "dialogs not configured", nil)
	}
	gw := s.newGateway()
	c, err := s.load(ctx, gw, op, id)
	if err != nil {
		return false, err
	}
	answer, ok := dialogs.PromptForText(ctx, Prompt{
		Title:       "Delete Counter?",
		Message:     "Are you sure you want to delete '" + c.Name + "'? Type '" + counter.DeleteConfirmation + "' to confirm.",
		AcceptLabel: "Delete",
		CancelLabel: "Cancel",
		Placeholder: counter.DeleteConfirmation,
		MaxLength:   10,
	})
	if !ok || !strings.EqualFold(strings.TrimSpace(answer), counter.DeleteConfirmation) {
		s.log.Debug("counter delete not confirmed", "counter_id", id)
		return false, nil
	}
	if err := s.archiveByDelete(ctx, gw, id); err != nil {
		return false, err
	}
	return true, nil
}

func (s *counterService) archiveByDelete(ctx context.Context, gw aggregates.CounterGateway, id uuid.UUID) error {
	if err := gw.Delete(ctx, id); err != nil {
		return err
	}
	if gw.Pending() == 0 {
		return nil
	}
	if _, err := gw.Commit(ctx); err != nil {
		return err
	}
	s.log.Info("counter archived by delete", "counter_id", id)
	return nil
}

func (s *counterService) AddRowNote(ctx context.Context, counterID uuid.UUID, row int, text *string) (*types.RowNote, error) {
	const op = "row_note.add"
	if _, err := s.load(ctx, s.newGateway(), op, counterID); err != nil {
		return nil, err
	}
	note, err := counter.NewRowNote(counterID, row, text)
	if err != nil {
		return nil, err
	}
	if _, err := s.rowNotes.Create(ctx, nil, []*types.RowNote{note}); err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return note, nil
}

func (s *counterService) ListRowNotes(ctx context.Context, counterID uuid.UUID) ([]*types.RowNote, error) {
	if _, err := s.load(ctx, s.newGateway(), "row_note.list", counterID); err != nil {
		return nil, err
	}
	notes, err := s.rowNotes.ListByCounterID(ctx, nil, counterID)
	if err != nil {
		return nil, aggregates.MapError("row_note.list", err)
	}
	return notes, nil
}

func (s *counterService) UpdateRowNote(ctx context.Context, noteID uuid.UUID, text *string) (*types.RowNote, error) {
	const op = "row_note.update"
	note, err := s.rowNotes.GetByID(ctx, nil, noteID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if note == nil {
		return nil, domainagg.NotFound(op, "row note", noteID)
	}
	if _, err := s.load(ctx, s.newGateway(), op, note.CounterID); err != nil {
		if domainagg.IsCode(err, domainagg.CodeNotFound) {
			return nil, domainagg.NotFound(op, "row note", noteID)
		}
		return nil, err
	}
	note.UpdateText(text)
	if err := s.rowNotes.UpdateText(ctx, nil, note.ID, note.NoteText); err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return note, nil
}

func (s *counterService) StartSession(ctx context.Context, counterID uuid.UUID) (*types.WorkSession, error) {
	const op = "work_session.start"
	c, err := s.load(ctx, s.newGateway(), op, counterID)
	if err != nil {
		return nil, err
	}
	active, err := s.sessions.GetActive(ctx, nil, counterID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if active != nil {
		return nil, domainagg.PreconditionCause(op, counter.ErrSessionRunning)
	}
	start := c.CurrentCount
	ws := counter.StartWorkSession(counterID, &start)
	if err := s.sessions.Create(ctx, nil, ws); err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return ws, nil
}

func (s *counterService) EndSession(ctx context.Context, counterID uuid.UUID) (*types.WorkSession, error) {
	const op = "work_session.end"
	c, err := s.load(ctx, s.newGateway(), op, counterID)
	if err != nil {
		return nil, err
	}
	ws, err := s.sessions.GetActive(ctx, nil, counterID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if ws == nil {
		return nil, domainagg.PreconditionCause(op, counter.ErrNoSessionRunning)
	}
	end := c.CurrentCount
	if err := ws.End(&end); err != nil {
		return nil, err
	}
	if err := s.sessions.SaveEnd(ctx, nil, ws); err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return ws, nil
}

func (s *counterService) ListSessions(ctx context.Context, counterID uuid.UUID) ([]*types.WorkSession, error) {
	if _, err := s.load(ctx, s.newGateway(), "work_session.list", counterID); err != nil {
		return nil, err
	}
	out, err := s.sessions.ListByCounterID(ctx, nil, counterID)
	if err != nil {
		return nil, aggregates.MapError("work_session.list", err)
	}
	return out, nil
}

func (s *counterService) AddReminder(ctx context.Context, counterID uuid.UUID, intervalMinutes int) (*types.Reminder, error) {
	const op = "reminder.add"
	if _, err := s.load(ctx, s.newGateway(), op, counterID); err != nil {
		return nil, err
	}
	r, err := counter.NewReminder(counterID, intervalMinutes)
	if err != nil {
		return nil, err
	}
	if err := s.reminders.Create(ctx, nil, r); err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return r, nil
}

func (s *counterService) ListReminders(ctx context.Context, counterID uuid.UUID) ([]*types.Reminder, error) {
	if _, err := s.load(ctx, s.newGateway(), "reminder.list", counterID); err != nil {
		return nil, err
	}
	out, err := s.reminders.ListByCounterID(ctx, nil, counterID)
	if err != nil {
		return nil, aggregates.MapError("reminder.list", err)
	}
	return out, nil
}

func (s *counterService) UpdateReminder(ctx context.Context, reminderID uuid.UUID, in ReminderUpdate) (*types.Reminder, error) {
	const op = "reminder.update"
	r, err := s.reminders.GetByID(ctx, nil, reminderID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if r == nil {
		return nil, domainagg.NotFound(op, "reminder", reminderID)
	}
	if _, err := s.load(ctx, s.newGateway(), op, r.CounterID); err != nil {
		if domainagg.IsCode(err, domainagg.CodeNotFound) {
			return nil, domainagg.NotFound(op, "reminder", reminderID)
		}
		return nil, err
	}
	if in.IntervalMinutes != nil {
		if err := r.UpdateInterval(*in.IntervalMinutes); err != nil {
			return nil, err
		}
	}
	if in.Enabled != nil {
		if *in.Enabled {
			r.Enable()
		} else {
			r.Disable()
		}
	}
	if err := s.reminders.Save(ctx, nil, r); err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return r, nil
}

func (s *counterService) DueReminders(ctx context.Context, at time.Time) ([]*types.Reminder, error) {
	const op = "reminder.due"
	enabled, err := s.reminders.ListEnabled(ctx, nil)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	var due []*types.Reminder
	for _, r := range enabled {
		if !r.ShouldTrigger(at) {
			continue
		}
		r.MarkTriggered(at)
		if err := s.reminders.Save(ctx, nil, r); err != nil {
			return due, aggregates.MapError(op, err)
		}
		due = append(due, r)
	}
	return due, nil
}

// mutate loads a counter, applies fn and commits when fn reports a change.
func (s *counterService) mutate(ctx context.Context, op string, id uuid.UUID, fn func(c *types.Counter) (bool, error)) (*types.Counter, bool, error) {
	gw := s.newGateway()
	c, err := s.load(ctx, gw, op, id)
	if err != nil {
		return nil, false, err
	}
	changed, err := fn(c)
	if err != nil {
		return nil, false, err
	}
	if !changed {
		return c, false, nil
	}
	gw.Update(c)
	if _, err := gw.Commit(ctx); err != nil {
		return nil, false, err
	}
	return c, true, nil
}

func (s *counterService) load(ctx context.Context, gw aggregates.CounterGateway, op string, id uuid.UUID) (*types.Counter, error) {
	c, err := gw.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil || !sameOwner(c.OwnerUserID, ctxutil.OwnerFrom(ctx)) {
		return nil, domainagg.NotFound(op, "counter", id)
	}
	return c, nil
}

// sameOwner treats two nil owners as the same (unowned) partition.
func sameOwner(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func ownerString(owner *uuid.UUID) string {
	if owner == nil {
		return ""
	}
	return owner.String()
}
