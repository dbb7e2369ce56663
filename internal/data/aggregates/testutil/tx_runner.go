package testutil

import (
	"context"
	"sync"

	"github.com/yungbote/rowcount-backend/internal/data/aggregates"
	"github.com/yungbote/rowcount-backend/internal/platform/dbctx"
)

// InjectedTxRunner injects begin/commit failures around aggregate writes.
// With Inner set the body runs inside a real transaction, and an injected
// commit failure rolls that transaction back.
type InjectedTxRunner struct {
	mu sync.Mutex

	Inner aggregates.TxRunner

	FailBegin  error
	FailCommit error

	BeginCalls    int
	CommitCalls   int
	RollbackCalls int
}

var _ aggregates.TxRunner = (*InjectedTxRunner)(nil)

func (r *InjectedTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.mu.Lock()
	r.BeginCalls++
	failBegin := r.FailBegin
	failCommit := r.FailCommit
	inner := r.Inner
	r.mu.Unlock()

	if failBegin != nil {
		return failBegin
	}
	body := func(dbc dbctx.Context) error {
		if fn != nil {
			if err := fn(dbc); err != nil {
				r.count(&r.RollbackCalls)
				return err
			}
		}
		if failCommit != nil {
			r.count(&r.RollbackCalls)
			return failCommit
		}
		r.count(&r.CommitCalls)
		return nil
	}
	if inner != nil {
		return inner.InTx(ctx, body)
	}
	return body(dbctx.Context{Ctx: ctx})
}

func (r *InjectedTxRunner) count(n *int) {
	r.mu.Lock()
	*n++
	r.mu.Unlock()
}

// Calls returns begin, commit and rollback counts.
func (r *InjectedTxRunner) Calls() (begin, commit, rollback int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.BeginCalls, r.CommitCalls, r.RollbackCalls
}
