package aggregates_test

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/rowcount-backend/internal/data/aggregates"
	"github.com/yungbote/rowcount-backend/internal/data/repos/testutil"
	"github.com/yungbote/rowcount-backend/internal/platform/dbctx"
)

func TestGormTxRunnerRetriesRetryableFailures(t *testing.T) {
	db := testutil.DB(t)
	var retried []int
	runner := aggregates.NewGormTxRunner(db, aggregates.TxRetryPolicy{
		MaxAttempts: 3,
		OnRetry:     func(attempt int, _ error) { retried = append(retried, attempt) },
	})

	calls := 0
	err := runner.InTx(context.Background(), func(_ dbctx.Context) error {
		calls++
		if calls < 3 {
			return aggregates.RetryableError("database is locked")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("InTx: %v", err)
	}
	if calls != 3 || len(retried) != 2 || retried[1] != 2 {
		t.Fatalf("calls=%d retried=%v", calls, retried)
	}
}

func TestGormTxRunnerStopsOnOtherFailures(t *testing.T) {
	db := testutil.DB(t)
	runner := aggregates.NewGormTxRunner(db, aggregates.TxRetryPolicy{MaxAttempts: 5})

	boom := aggregates.ConflictError("row vanished")
	calls := 0
	err := runner.InTx(context.Background(), func(_ dbctx.Context) error {
		calls++
		return boom
	})
	if !errors.Is(err, aggregates.ErrConflict) || calls != 1 {
		t.Fatalf("err=%v calls=%d", err, calls)
	}

	calls = 0
	err = runner.InTx(context.Background(), func(_ dbctx.Context) error {
		calls++
		return aggregates.RetryableError("serialization failure")
	})
	if err == nil || calls != 5 {
		t.Fatalf("exhausted retries: err=%v calls=%d", err, calls)
	}
}

func TestGormTxRunnerDefaultsToSingleAttempt(t *testing.T) {
	runner := aggregates.NewGormTxRunner(testutil.DB(t))
	calls := 0
	_ = runner.InTx(context.Background(), func(_ dbctx.Context) error {
		calls++
		return aggregates.RetryableError("database is locked")
	})
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}
