// Package ledger is the typed accessor over the four persisted collections:
// expenses, income, goals and limits.
//
// Every read goes to the store; nothing is cached between calls. Every
// mutation is a single read-modify-write under the ledger's mutex, so two
// goroutines in one process never lose each other's writes. Two processes
// sharing a store are still last-writer-wins.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"moneytracker/internal/core"
	"moneytracker/internal/kv"
	"moneytracker/internal/log"
	"moneytracker/internal/metrics"
)

// Storage keys.
const (
	KeyExpenses = "expenses"
	KeyIncome   = "income"
	KeyGoals    = "goals"
	KeyLimits   = "limits"
)

var (
	// ErrStorageUnavailable wraps any failure of the underlying store.
	// A failed write leaves the stored collection as it was.
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrGoalNotFound       = errors.New("goal not found")
	// ErrCorruptCollection is returned by mutations when the stored
	// collection is not a JSON array. Reads treat it as empty; writes refuse
	// to replace it.
	ErrCorruptCollection = errors.New("stored collection is unreadable")
)

// Snapshot is a consistent-enough view for one aggregation pass.
type Snapshot struct {
	Expenses []core.Expense
	Income   []core.Income
	Limits   core.Limits
}

// PruneResult reports how many transactions a prune removed.
type PruneResult struct {
	Cutoff   core.Date
	Expenses int
	Income   int
}

func (r PruneResult) Total() int { return r.Expenses + r.Income }

type Ledger struct {
	mu     sync.Mutex
	store  kv.Store
	logger *log.Logger
	now    func() time.Time
	lastID int64
}

type Option func(*Ledger)

// WithClock overrides the clock used for record ids.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func New(store kv.Store, logger *log.Logger, opts ...Option) *Ledger {
	if logger == nil {
		logger = log.Discard()
	}
	l := &Ledger{
		store:  store,
		logger: logger.WithComponent(log.ComponentLedger),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Expenses returns every well-formed stored expense in insertion order.
func (l *Ledger) Expenses(ctx context.Context) ([]core.Expense, error) {
	raw, err := l.readRecords(ctx, KeyExpenses)
	if err != nil {
		return nil, err
	}
	return decodeAll(ctx, l, KeyExpenses, raw, decodeExpense), nil
}

// Income returns every well-formed stored income record in insertion order.
func (l *Ledger) Income(ctx context.Context) ([]core.Income, error) {
	raw, err := l.readRecords(ctx, KeyIncome)
	if err != nil {
		return nil, err
	}
	return decodeAll(ctx, l, KeyIncome, raw, decodeIncome), nil
}

func (l *Ledger) Goals(ctx context.Context) ([]core.Goal, error) {
	raw, err := l.readRecords(ctx, KeyGoals)
	if err != nil {
		return nil, err
	}
	return decodeAll(ctx, l, KeyGoals, raw, decodeGoal), nil
}

// Limits returns the saved limits, or the defaults when none are saved or the
// saved document is unreadable.
func (l *Ledger) Limits(ctx context.Context) (core.Limits, error) {
	b, err := l.store.Get(ctx, KeyLimits)
	if errors.Is(err, kv.ErrNotFound) {
		return core.DefaultLimits(), nil
	}
	if err != nil {
		return core.Limits{}, l.storageErr(ctx, "get", KeyLimits, err)
	}
	limits, err := decodeLimits(b)
	if err != nil {
		l.logger.WarnContext(ctx, "Stored limits unreadable, using defaults", log.FieldError, err)
		metrics.RecordsDropped.WithLabelValues(KeyLimits).Inc()
		return core.DefaultLimits(), nil
	}
	return limits, nil
}

// Snapshot reads expenses, income and limits concurrently.
func (l *Ledger) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap.Expenses, err = l.Expenses(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Income, err = l.Income(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Limits, err = l.Limits(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// AppendExpense assigns an id and appends e to the expense log.
func (l *Ledger) AppendExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	raw, err := l.readList(ctx, KeyExpenses)
	if err != nil {
		return core.Expense{}, err
	}
	e.ID = l.nextID(raw)
	rec, err := encodeExpense(e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("encode expense: %w", err)
	}
	if err := l.writeList(ctx, KeyExpenses, append(raw, rec)); err != nil {
		return core.Expense{}, err
	}
	l.logger.DebugContext(ctx, "Expense appended", log.NewFields().
		WithOperation(log.OpAppend).
		WithTransaction("expense", e.ID, e.Amount.String(), e.Date.String(), e.Category).ToSlice()...)
	return e, nil
}

// AppendIncome assigns an id and appends in to the income log.
func (l *Ledger) AppendIncome(ctx context.Context, in core.Income) (core.Income, error) {
	if err := in.Validate(); err != nil {
		return core.Income{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	raw, err := l.readList(ctx, KeyIncome)
	if err != nil {
		return core.Income{}, err
	}
	in.ID = l.nextID(raw)
	rec, err := encodeIncome(in)
	if err != nil {
		return core.Income{}, fmt.Errorf("encode income: %w", err)
	}
	if err := l.writeList(ctx, KeyIncome, append(raw, rec)); err != nil {
		return core.Income{}, err
	}
	l.logger.DebugContext(ctx, "Income appended", log.NewFields().
		WithOperation(log.OpAppend).
		WithTransaction("income", in.ID, in.Amount.String(), in.Date.String(), "").ToSlice()...)
	return in, nil
}

// AddGoal stores a new goal with zero progress.
func (l *Ledger) AddGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	g.Progress = decimal.Zero
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	raw, err := l.readList(ctx, KeyGoals)
	if err != nil {
		return core.Goal{}, err
	}
	g.ID = l.nextID(raw)
	rec, err := encodeGoal(g)
	if err != nil {
		return core.Goal{}, fmt.Errorf("encode goal: %w", err)
	}
	if err := l.writeList(ctx, KeyGoals, append(raw, rec)); err != nil {
		return core.Goal{}, err
	}
	return g, nil
}

// SetGoalProgress replaces a goal's progress.
func (l *Ledger) SetGoalProgress(ctx context.Context, id int64, progress decimal.Decimal) (core.Goal, error) {
	return l.updateGoal(ctx, id, func(g *core.Goal) error {
		if progress.IsNegative() {
			return core.ErrInvalidAmount
		}
		g.Progress = progress
		return nil
	})
}

// AddGoalProgress moves a goal's progress by delta, which may be negative
// as long as progress stays non-negative.
func (l *Ledger) AddGoalProgress(ctx context.Context, id int64, delta decimal.Decimal) (core.Goal, error) {
	return l.updateGoal(ctx, id, func(g *core.Goal) error {
		next := g.Progress.Add(delta)
		if next.IsNegative() {
			return core.ErrInvalidAmount
		}
		g.Progress = next
		return nil
	})
}

func (l *Ledger) updateGoal(ctx context.Context, id int64, mutate func(*core.Goal) error) (core.Goal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	raw, err := l.readList(ctx, KeyGoals)
	if err != nil {
		return core.Goal{}, err
	}
	for i, rec := range raw {
		if rid, ok := recordID(rec); !ok || rid != id {
			continue
		}
		g, err := decodeGoal(rec)
		if err != nil {
			return core.Goal{}, fmt.Errorf("goal %d is malformed: %w", id, err)
		}
		if err := mutate(&g); err != nil {
			return core.Goal{}, err
		}
		updated, err := encodeGoal(g)
		if err != nil {
			return core.Goal{}, fmt.Errorf("encode goal: %w", err)
		}
		next := append([]json.RawMessage(nil), raw...)
		next[i] = updated
		if err := l.writeList(ctx, KeyGoals, next); err != nil {
			return core.Goal{}, err
		}
		return g, nil
	}
	return core.Goal{}, fmt.Errorf("%w: %d", ErrGoalNotFound, id)
}

// DeleteGoal rewrites the goal collection without id.
func (l *Ledger) DeleteGoal(ctx context.Context, id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	raw, err := l.readList(ctx, KeyGoals)
	if err != nil {
		return err
	}
	kept := make([]json.RawMessage, 0, len(raw))
	for _, rec := range raw {
		if rid, ok := recordID(rec); ok && rid == id {
			continue
		}
		kept = append(kept, rec)
	}
	if len(kept) == len(raw) {
		return fmt.Errorf("%w: %d", ErrGoalNotFound, id)
	}
	return l.writeList(ctx, KeyGoals, kept)
}

func (l *Ledger) SaveLimits(ctx context.Context, limits core.Limits) error {
	if err := limits.Validate(); err != nil {
		return err
	}
	b, err := encodeLimits(limits)
	if err != nil {
		return fmt.Errorf("encode limits: %w", err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.store.Set(ctx, KeyLimits, b); err != nil {
		return l.storageErr(ctx, "set", KeyLimits, err)
	}
	return nil
}

// Reset removes expenses, income and goals. Limits survive.
func (l *Ledger) Reset(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, key := range []string{KeyExpenses, KeyIncome, KeyGoals} {
		if err := l.store.Delete(ctx, key); err != nil {
			return l.storageErr(ctx, "delete", key, err)
		}
	}
	l.logger.InfoContext(ctx, "All transactions and goals removed", log.FieldOperation, log.OpReset)
	return nil
}

// Prune drops every expense and income record dated on or before
// today minus the retention window, along with records whose date cannot be
// read. A collection is only rewritten when something was removed.
func (l *Ledger) Prune(ctx context.Context, now time.Time, retention Retention) (PruneResult, error) {
	cutoff := retention.Cutoff(core.Today(now))
	res := PruneResult{Cutoff: cutoff}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, key := range []string{KeyExpenses, KeyIncome} {
		raw, err := l.readList(ctx, key)
		if errors.Is(err, ErrCorruptCollection) {
			l.logger.WarnContext(ctx, "Skipping prune of unreadable collection", log.FieldCollection, key)
			continue
		}
		if err != nil {
			return res, err
		}
		kept := make([]json.RawMessage, 0, len(raw))
		for _, rec := range raw {
			if d, ok := recordDate(rec); ok && d.After(cutoff) {
				kept = append(kept, rec)
			}
		}
		removed := len(raw) - len(kept)
		if removed == 0 {
			continue
		}
		if err := l.writeList(ctx, key, kept); err != nil {
			return res, err
		}
		metrics.RecordsPruned.WithLabelValues(key).Add(float64(removed))
		if key == KeyExpenses {
			res.Expenses = removed
		} else {
			res.Income = removed
		}
	}

	l.logger.InfoContext(ctx, "Old transactions pruned",
		log.FieldOperation, log.OpPrune,
		"cutoff", cutoff.String(),
		"expenses_removed", res.Expenses,
		"income_removed", res.Income)
	return res, nil
}

// readList fetches a collection as raw records for a mutation. A missing
// key is an empty collection. A document that is not a JSON array yields
// ErrCorruptCollection so the caller does not overwrite it.
func (l *Ledger) readList(ctx context.Context, key string) ([]json.RawMessage, error) {
	b, err := l.store.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, l.storageErr(ctx, "get", key, err)
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptCollection, key, err)
	}
	return raw, nil
}

// readRecords is readList for reads: an unreadable collection is empty.
func (l *Ledger) readRecords(ctx context.Context, key string) ([]json.RawMessage, error) {
	raw, err := l.readList(ctx, key)
	if errors.Is(err, ErrCorruptCollection) {
		l.logger.WarnContext(ctx, "Stored collection unreadable, treating as empty",
			log.FieldCollection, key, log.FieldError, err)
		metrics.RecordsDropped.WithLabelValues(key).Inc()
		return nil, nil
	}
	return raw, err
}

func (l *Ledger) writeList(ctx context.Context, key string, raw []json.RawMessage) error {
	if raw == nil {
		raw = []json.RawMessage{}
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := l.store.Set(ctx, key, b); err != nil {
		return l.storageErr(ctx, "set", key, err)
	}
	return nil
}

func (l *Ledger) storageErr(ctx context.Context, op, key string, err error) error {
	metrics.StorageErrors.WithLabelValues(op).Inc()
	l.logger.ErrorContext(ctx, "Storage operation failed",
		log.FieldOperation, op, log.FieldCollection, key, log.FieldError, err)
	return fmt.Errorf("%w: %s %s: %v", ErrStorageUnavailable, op, key, err)
}

// nextID returns a millisecond timestamp id that is unique within raw and
// strictly greater than any id this ledger handed out before.
func (l *Ledger) nextID(raw []json.RawMessage) int64 {
	used := make(map[int64]struct{}, len(raw))
	for _, rec := range raw {
		if id, ok := recordID(rec); ok {
			used[id] = struct{}{}
		}
	}
	id := l.now().UnixMilli()
	if id <= l.lastID {
		id = l.lastID + 1
	}
	for {
		if _, taken := used[id]; !taken {
			break
		}
		id++
	}
	l.lastID = id
	return id
}

func decodeAll[T any](ctx context.Context, l *Ledger, key string, raw []json.RawMessage, decode func(json.RawMessage) (T, error)) []T {
	out := make([]T, 0, len(raw))
	for _, rec := range raw {
		v, err := decode(rec)
		if err != nil {
			l.logger.WarnContext(ctx, "Dropping malformed record",
				log.FieldCollection, key, log.FieldError, err)
			metrics.RecordsDropped.WithLabelValues(key).Inc()
			continue
		}
		out = append(out, v)
	}
	return out
}
