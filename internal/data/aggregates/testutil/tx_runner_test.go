package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/rowcount-backend/internal/platform/dbctx"
)

func TestInjectedTxRunner_CommitsOnSuccess(t *testing.T) {
	r := &InjectedTxRunner{}
	called := false
	err := r.InTx(context.Background(), func(_ dbctx.Context) error {
		called = true
		return nil
	})
	if err != nil || !called {
		t.Fatalf("unexpected err=%v called=%v", err, called)
	}
	if b, c, rb := r.Calls(); b != 1 || c != 1 || rb != 0 {
		t.Fatalf("unexpected counters begin=%d commit=%d rollback=%d", b, c, rb)
	}
}

func TestInjectedTxRunner_FailBeginSkipsBody(t *testing.T) {
	beginErr := errors.New("no connection")
	r := &InjectedTxRunner{FailBegin: beginErr}
	err := r.InTx(context.Background(), func(_ dbctx.Context) error {
		t.Fatalf("body must not run")
		return nil
	})
	if !errors.Is(err, beginErr) {
		t.Fatalf("expected begin err, got %v", err)
	}
}

func TestInjectedTxRunner_FailCommitWrapsInner(t *testing.T) {
	commitErr := errors.New("commit failed")
	inner := &InjectedTxRunner{}
	r := &InjectedTxRunner{Inner: inner, FailCommit: commitErr}
	err := r.InTx(context.Background(), func(_ dbctx.Context) error { return nil })
	if !errors.Is(err, commitErr) {
		t.Fatalf("expected commit err, got %v", err)
	}
	if _, c, rb := r.Calls(); c != 0 || rb != 1 {
		t.Fatalf("outer: commit=%d rollback=%d", c, rb)
	}
	if _, _, rb := inner.Calls(); rb != 1 {
		t.Fatalf("inner runner should see the rollback, got %d", rb)
	}
}
