package counter

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/rowcount-backend/internal/data/repos/testutil"
	types "github.com/yungbote/rowcount-backend/internal/domain"
	domaincounter "github.com/yungbote/rowcount-backend/internal/domain/counter"
)

func TestRowNoteRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewRowNoteRepo(db, testutil.Logger(t))
	ctx := context.Background()

	c := testutil.SeedCounter(t, ctx, tx, "Sock", nil, false, time.Now().UTC())
	text := "turn heel"
	late, _ := domaincounter.NewRowNote(c.ID, 40, &text)
	early, _ := domaincounter.NewRowNote(c.ID, 12, nil)
	if _, err := repo.Create(ctx, tx, []*types.RowNote{late, early}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	notes, err := repo.ListByCounterID(ctx, tx, c.ID)
	if err != nil {
		t.Fatalf("ListByCounterID: %v", err)
	}
	if len(notes) != 2 || notes[0].RowNumber != 12 || notes[1].RowNumber != 40 {
		t.Fatalf("expected notes ordered by row, got %+v", notes)
	}

	updated := "decrease"
	if err := repo.UpdateText(ctx, tx, early.ID, &updated); err != nil {
		t.Fatalf("UpdateText: %v", err)
	}
	got, err := repo.GetByID(ctx, tx, early.ID)
	if err != nil || got == nil || got.NoteText == nil || *got.NoteText != "decrease" {
		t.Fatalf("GetByID after update: %+v %v", got, err)
	}
}

func TestWorkSessionRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewWorkSessionRepo(db, testutil.Logger(t))
	ctx := context.Background()

	c := testutil.SeedCounter(t, ctx, tx, "Hat", nil, false, time.Now().UTC())
	start := 3
	s := domaincounter.StartWorkSession(c.ID, &start)
	if err := repo.Create(ctx, tx, s); err != nil {
		t.Fatalf("Create: %v", err)
	}
	active, err := repo.GetActive(ctx, tx, c.ID)
	if err != nil || active == nil || active.ID != s.ID {
		t.Fatalf("GetActive: %+v %v", active, err)
	}

	end := 9
	if err := active.End(&end); err != nil {
		t.Fatalf("End: %v", err)
	}
	if err := repo.SaveEnd(ctx, tx, active); err != nil {
		t.Fatalf("SaveEnd: %v", err)
	}
	if none, err := repo.GetActive(ctx, tx, c.ID); err != nil || none != nil {
		t.Fatalf("expected no active session, got %+v %v", none, err)
	}
	all, err := repo.ListByCounterID(ctx, tx, c.ID)
	if err != nil || len(all) != 1 || all[0].EndingRowCount == nil || *all[0].EndingRowCount != 9 {
		t.Fatalf("ListByCounterID: %+v %v", all, err)
	}
}

func TestReminderRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewReminderRepo(db, testutil.Logger(t))
	ctx := context.Background()

	active := testutil.SeedCounter(t, ctx, tx, "Active", nil, false, time.Now().UTC())
	archived := testutil.SeedCounter(t, ctx, tx, "Shelved", nil, true, time.Now().UTC())

	r1, _ := domaincounter.NewReminder(active.ID, 30)
	r2, _ := domaincounter.NewReminder(archived.ID, 30)
	r3, _ := domaincounter.NewReminder(active.ID, 60)
	r3.Disable()
	for _, r := range []*types.Reminder{r1, r2, r3} {
		if err := repo.Create(ctx, tx, r); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	enabled, err := repo.ListEnabled(ctx, tx)
	if err != nil {
		t.Fatalf("ListEnabled: %v", err)
	}
	if len(enabled) != 1 || enabled[0].ID != r1.ID {
		t.Fatalf("expected only the enabled reminder on an active counter, got %+v", enabled)
	}

	r1.MarkTriggered(time.Now())
	if err := repo.Save(ctx, tx, r1); err != nil {
		t.Fatalf("Save: %v", err)
	}
	saved, err := repo.GetByID(ctx, tx, r1.ID)
	if err != nil || saved == nil || saved.LastTriggeredAt == nil {
		t.Fatalf("GetByID after save: %+v %v", saved, err)
	}
	if missing, err := repo.GetByID(ctx, tx, uuid.New()); err != nil || missing != nil {
		t.Fatalf("GetByID (missing): %+v %v", missing, err)
	}

	list, err := repo.ListByCounterID(ctx, tx, active.ID)
	if err != nil || len(list) != 2 {
		t.Fatalf("ListByCounterID: %+v %v", list, err)
	}
}
