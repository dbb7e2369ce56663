package aggregates

import (
	"context"
	"time"

	domainagg "github.com/yungbote/rowcount-backend/internal/domain/aggregates"
	"github.com/yungbote/rowcount-backend/internal/platform/dbctx"
	"gorm.io/gorm"
)

// TxRunner provides a shared transaction boundary primitive for aggregate writes.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

// TxRetryPolicy reruns a whole transaction when it fails with a retryable
// error, such as a Postgres serialization failure or a locked SQLite file.
type TxRetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
	// OnRetry is called before each rerun.
	OnRetry func(attempt int, err error)
}

type gormTxRunner struct {
	db    *gorm.DB
	retry TxRetryPolicy
}

// NewGormTxRunner returns a transaction runner backed by GORM transactions.
// Without a policy every transaction runs once.
func NewGormTxRunner(db *gorm.DB, policy ...TxRetryPolicy) TxRunner {
	r := &gormTxRunner{db: db, retry: TxRetryPolicy{MaxAttempts: 1}}
	if len(policy) > 0 {
		r.retry = policy[0]
	}
	if r.retry.MaxAttempts < 1 {
		r.retry.MaxAttempts = 1
	}
	return r
}

func (r *gormTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	if r == nil || r.db == nil {
		return domainagg.NewError(domainagg.CodeInternal, "aggregate.tx", "transaction runner has nil db", nil)
	}
	var err error
	for attempt := 1; ; attempt++ {
		err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(dbctx.Context{Ctx: ctx, Tx: tx})
		})
		if err == nil || attempt >= r.retry.MaxAttempts || ctx.Err() != nil {
			return err
		}
		if !domainagg.IsCode(MapError("aggregate.tx", err), domainagg.CodeRetryable) {
			return err
		}
		if r.retry.OnRetry != nil {
			r.retry.OnRetry(attempt, err)
		}
		if r.retry.Backoff > 0 {
			t := time.NewTimer(time.Duration(attempt) * r.retry.Backoff)
			select {
			case <-ctx.Done():
				t.Stop()
				return err
			case <-t.C:
			}
		}
	}
}
