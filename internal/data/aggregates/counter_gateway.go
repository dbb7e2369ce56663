package aggregates

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/yungbote/rowcount-backend/internal/data/repos"
	types "github.com/yungbote/rowcount-backend/internal/domain"
	domainagg "github.com/yungbote/rowcount-backend/internal/domain/aggregates"
	"github.com/yungbote/rowcount-backend/internal/platform/dbctx"
)

// CounterGateway is an explicit unit of work over counters. Add, Update and
// Delete only stage work; nothing reaches storage until Commit.
type CounterGateway interface {
	Add(c *types.Counter)
	GetByID(ctx context.Context, id uuid.UUID) (*types.Counter, error)
	GetActive(ctx context.Context, ownerUserID *uuid.UUID) ([]*types.Counter, error)
	GetArchived(ctx context.Context, ownerUserID *uuid.UUID) ([]*types.Counter, error)
	Update(c *types.Counter)
	Delete(ctx context.Context, id uuid.UUID) error
	Commit(ctx context.Context) (int, error)
	Pending() int
	Discard()
}

type CounterGatewayDeps struct {
	Base BaseDeps

	Counters repos.CounterRepo
	History  repos.HistoryRepo
}

type stagedKind int

const (
	stagedAdd stagedKind = iota
	stagedUpdate
)

type stagedOp struct {
	kind    stagedKind
	counter *types.Counter
}

type counterGateway struct {
	deps CounterGatewayDeps

	mu     sync.Mutex
	staged []stagedOp
}

func NewCounterGateway(deps CounterGatewayDeps) CounterGateway {
	deps.Base = deps.Base.withDefaults()
	return &counterGateway{deps: deps}
}

func (g *counterGateway) Add(c *types.Counter) {
	if c == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.staged = append(g.staged, stagedOp{kind: stagedAdd, counter: c})
}

// Update stages c for writing. When the id is already staged the newer
// instance replaces the staged one and keeps its slot.
func (g *counterGateway) Update(c *types.Counter) {
	if c == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if i := g.stagedIndexLocked(c.ID); i >= 0 {
		g.staged[i].counter = c
		return
	}
	g.staged = append(g.staged, stagedOp{kind: stagedUpdate, counter: c})
}

func (g *counterGateway) GetByID(ctx context.Context, id uuid.UUID) (*types.Counter, error) {
	const op = "Counter.GetByID"
	c, err := g.deps.Counters.GetByID(ctx, nil, id)
	if err != nil {
		return nil, MapError(op, err)
	}
	return c, nil
}

func (g *counterGateway) GetActive(ctx context.Context, ownerUserID *uuid.UUID) ([]*types.Counter, error) {
	const op = "Counter.GetActive"
	out, err := g.deps.Counters.ListByArchived(ctx, nil, false, ownerUserID)
	if err != nil {
		return nil, MapError(op, err)
	}
	return out, nil
}

func (g *counterGateway) GetArchived(ctx context.Context, ownerUserID *uuid.UUID) ([]*types.Counter, error) {
	const op = "Counter.GetArchived"
	out, err := g.deps.Counters.ListByArchived(ctx, nil, true, ownerUserID)
	if err != nil {
		return nil, MapError(op, err)
	}
	return out, nil
}

// Delete archives the counter and stages the change. Unknown ids are ignored.
func (g *counterGateway) Delete(ctx context.Context, id uuid.UUID) error {
	g.mu.Lock()
	if i := g.stagedIndexLocked(id); i >= 0 {
		g.staged[i].counter.Archive()
		g.mu.Unlock()
		return nil
	}
	g.mu.Unlock()

	c, err := g.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return nil
	}
	c.Archive()
	g.Update(c)
	return nil
}

// Commit writes every staged operation in one transaction and reports the
// number of rows touched. On failure nothing is written, the error carries
// CodeConflict and the staged operations are kept.
func (g *counterGateway) Commit(ctx context.Context) (int, error) {
	const op = "Counter.Commit"
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.staged) == 0 {
		return 0, nil
	}
	if g.deps.Counters == nil || g.deps.History == nil {
		return 0, domainagg.NewError(domainagg.CodeInternal, op, "counter gateway repos not configured", nil)
	}

	var affected int64
	err := executeWrite(ctx, g.deps.Base, op, func(dbc dbctx.Context) error {
		affected = 0
		for _, s := range g.staged {
			n, err := g.apply(dbc, s)
			if err != nil {
				return err
			}
			affected += n
		}
		return nil
	}, failAs(domainagg.CodeConflict))
	if err != nil {
		return 0, err
	}
	g.staged = nil
	return int(affected), nil
}

func (g *counterGateway) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.staged)
}

func (g *counterGateway) Discard() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.staged = nil
}

func (g *counterGateway) apply(dbc dbctx.Context, s stagedOp) (int64, error) {
	c := s.counter
	switch s.kind {
	case stagedAdd:
		n, err := g.deps.Counters.Create(dbc.Ctx, dbc.Tx, []*types.Counter{c})
		if err != nil {
			return 0, err
		}
		inserted, err := g.deps.History.Create(dbc.Ctx, dbc.Tx, historyRows(c.History))
		if err != nil {
			return 0, err
		}
		return n + inserted, nil
	case stagedUpdate:
		n, err := g.deps.Counters.UpdateState(dbc.Ctx, dbc.Tx, c)
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, VanishedError(c.ID)
		}
		synced, err := g.syncHistory(dbc, c)
		if err != nil {
			return 0, err
		}
		return n + synced, nil
	default:
		return 0, InvariantError(fmt.Sprintf("unknown staged operation %d", s.kind))
	}
}

// syncHistory makes the stored history of c match c.History: rows undone in
// memory are deleted and rows recorded since the last load are inserted.
func (g *counterGateway) syncHistory(dbc dbctx.Context, c *types.Counter) (int64, error) {
	stored, err := g.deps.History.ListIDs(dbc.Ctx, dbc.Tx, c.ID)
	if err != nil {
		return 0, err
	}
	current := make(map[uuid.UUID]struct{}, len(c.History))
	for _, h := range c.History {
		current[h.ID] = struct{}{}
	}
	storedSet := make(map[uuid.UUID]struct{}, len(stored))
	var removed []uuid.UUID
	for _, id := range stored {
		storedSet[id] = struct{}{}
		if _, ok := current[id]; !ok {
			removed = append(removed, id)
		}
	}
	var added []*types.CounterHistory
	for i := range c.History {
		if _, ok := storedSet[c.History[i].ID]; !ok {
			added = append(added, &c.History[i])
		}
	}

	deleted, err := g.deps.History.DeleteByIDs(dbc.Ctx, dbc.Tx, removed)
	if err != nil {
		return 0, err
	}
	inserted, err := g.deps.History.Create(dbc.Ctx, dbc.Tx, added)
	if err != nil {
		return 0, err
	}
	return deleted + inserted, nil
}

func (g *counterGateway) stagedIndexLocked(id uuid.UUID) int {
	for i, s := range g.staged {
		if s.counter.ID == id {
			return i
		}
	}
	return -1
}

func historyRows(h []types.CounterHistory) []*types.CounterHistory {
	out := make([]*types.CounterHistory, 0, len(h))
	for i := range h {
		out = append(out, &h[i])
	}
	return out
}
