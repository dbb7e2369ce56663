package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/yungbote/rowcount-backend/internal/domain/counter"
	"github.com/yungbote/rowcount-backend/internal/platform/logger"
	"github.com/yungbote/rowcount-backend/internal/services"
)

const testPrefix = "rowcount:test:"

func testStore(t *testing.T, ttl time.Duration) (services.QuickCounterStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	rdb, err := NewClient(context.Background(), log, Options{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })

	store, err := NewQuickCounterStore(log, rdb, QuickCounterStoreOptions{KeyPrefix: testPrefix, TTL: ttl})
	if err != nil {
		t.Fatalf("NewQuickCounterStore: %v", err)
	}
	return store, mr
}

func TestQuickCounterStoreRoundTrip(t *testing.T) {
	store, mr := testStore(t, time.Minute)
	ctx := context.Background()

	if st, err := store.Load(ctx, "missing"); err != nil || st != nil {
		t.Fatalf("Load missing: st=%v err=%v", st, err)
	}

	in := &services.QuickCounterState{
		Count: 4,
		Undo: []counter.Action{
			{Kind: counter.ActionIncrement},
			{Kind: counter.ActionReset, PriorValue: 9},
		},
		UpdatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	if err := store.Save(ctx, "s1", in); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !mr.Exists(testPrefix + "s1") {
		t.Fatalf("expected key %q", testPrefix+"s1")
	}
	out, err := store.Load(ctx, "s1")
	if err != nil || out == nil {
		t.Fatalf("Load: st=%v err=%v", out, err)
	}
	if out.Count != 4 || len(out.Undo) != 2 || out.Undo[1].PriorValue != 9 || !out.UpdatedAt.Equal(in.UpdatedAt) {
		t.Fatalf("round trip mismatch: %+v", out)
	}

	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if st, _ := store.Load(ctx, "s1"); st != nil {
		t.Fatalf("expected session gone, got %+v", st)
	}
	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete of missing session: %v", err)
	}
}

func TestQuickCounterStoreExpiresIdleSessions(t *testing.T) {
	store, mr := testStore(t, time.Minute)
	ctx := context.Background()

	if err := store.Save(ctx, "idle", &services.QuickCounterState{Count: 2}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if ttl := mr.TTL(testPrefix + "idle"); ttl != time.Minute {
		t.Fatalf("TTL = %v, want 1m", ttl)
	}
	mr.FastForward(30 * time.Second)
	if err := store.Save(ctx, "idle", &services.QuickCounterState{Count: 3}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	mr.FastForward(45 * time.Second)
	if st, _ := store.Load(ctx, "idle"); st == nil || st.Count != 3 {
		t.Fatalf("saving should refresh the TTL, got %+v", st)
	}
	mr.FastForward(time.Minute)
	if st, _ := store.Load(ctx, "idle"); st != nil {
		t.Fatalf("expected expired session, got %+v", st)
	}
}

func TestQuickCounterStoreDropsCorruptPayload(t *testing.T) {
	store, mr := testStore(t, 0)
	if err := mr.Set(testPrefix+"bad", "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	st, err := store.Load(context.Background(), "bad")
	if err != nil || st != nil {
		t.Fatalf("corrupt payload should read as absent: st=%v err=%v", st, err)
	}
}

func TestQuickCounterStoreLenCountsOnlyPrefix(t *testing.T) {
	store, mr := testStore(t, 0)
	ctx := context.Background()

	for _, sid := range []string{"a", "b", "c"} {
		if err := store.Save(ctx, sid, &services.QuickCounterState{Count: 1}); err != nil {
			t.Fatalf("Save %s: %v", sid, err)
		}
	}
	if err := mr.Set("other:key", "x"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if n, err := store.Len(ctx); err != nil || n != 3 {
		t.Fatalf("Len: n=%d err=%v", n, err)
	}
	if ttl := mr.TTL(testPrefix + "a"); ttl != 0 {
		t.Fatalf("zero TTL should keep sessions forever, got %v", ttl)
	}
}
