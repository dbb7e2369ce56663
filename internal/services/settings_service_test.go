package services

import (
	"context"
	"testing"
	"time"

	domainagg "github.com/yungbote/rowcount-backend/internal/domain/aggregates"
	"github.com/yungbote/rowcount-backend/internal/domain/settings"
)

func TestSettingsServiceFlow(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	st, err := f.settings.CompleteFirstRun(ctx)
	if err != nil {
		t.Fatalf("CompleteFirstRun: %v", err)
	}
	if st.IsFirstRun || st.FirstRunCompletedAt == nil {
		t.Fatalf("first run not completed: %+v", st)
	}
	stamp := *st.FirstRunCompletedAt
	st, _ = f.settings.CompleteFirstRun(ctx)
	if !st.FirstRunCompletedAt.Equal(stamp) {
		t.Fatalf("second CompleteFirstRun moved the timestamp")
	}

	if _, err := f.settings.UpdateTheme(ctx, "Neon"); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("bad theme: expected validation, got %v", err)
	}
	st, err = f.settings.UpdateTheme(ctx, "Dark")
	if err != nil || st.Theme != settings.ThemeDark {
		t.Fatalf("UpdateTheme: %+v err=%v", st, err)
	}
	st, _ = f.settings.SetHapticFeedback(ctx, false)
	if st.HapticFeedbackEnabled {
		t.Fatalf("haptics should be off")
	}

	if _, err := f.settings.RecordSuccessfulSync(ctx, time.Now()); !domainagg.IsCode(err, domainagg.CodePreconditionFailed) {
		t.Fatalf("sync while disabled: expected precondition, got %v", err)
	}
	if _, err := f.settings.EnableSync(ctx, "icloud"); err != nil {
		t.Fatalf("EnableSync: %v", err)
	}
	at := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	st, err = f.settings.RecordSuccessfulSync(ctx, at)
	if err != nil || st.LastSuccessfulSync == nil || !st.LastSuccessfulSync.Equal(at) {
		t.Fatalf("RecordSuccessfulSync: %+v err=%v", st, err)
	}
	st, _ = f.settings.DisableSync(ctx)
	if st.SyncEnabled || st.SyncProvider != nil {
		t.Fatalf("sync should be fully disabled: %+v", st)
	}

	reloaded, err := f.settings.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if reloaded.Theme != settings.ThemeDark || reloaded.HapticFeedbackEnabled || reloaded.IsFirstRun {
		t.Fatalf("changes not persisted: %+v", reloaded)
	}
}
