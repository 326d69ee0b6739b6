package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/acctmgr/ledger/hook"
	"github.com/acctmgr/ledger/types"
)

// The two accounts every ledger is seeded with.
const (
	Account1 types.AccountID = 1
	Account2 types.AccountID = 2
)

// seedBalance is the initial balance of each seeded account.
const seedBalance int64 = 1000

// defaultHoldDelay is how long the direct strategy holds its first lock
// before requesting the second. The window is what makes the
// circular-wait hazard reliably observable rather than merely possible.
const defaultHoldDelay = 10 * time.Millisecond

// Ledger is a two-account transfer engine with two locking strategies.
//
// The ordered strategy acquires lock1/lock2 in a fixed global order
// derived from the account ids, so concurrent transfers can never form a
// wait cycle. The direct strategy selects locks from the argument order
// of the transfer, which deadlocks when two goroutines run
// opposite-direction transfers concurrently. The Ledger performs no
// deadlock detection or recovery: bounding the wait is the caller's job.
type Ledger struct {
	// lock1 and lock2 are coarse ordering tokens; neither guards a
	// specific account. Every access to balances holds at least one.
	lock1 sync.Mutex
	lock2 sync.Mutex

	balances map[types.AccountID]int64

	// strategy is intentionally read and written without
	// synchronization. It models a runtime configuration toggle and the
	// race on it is benign: either strategy observed by a transfer is a
	// valid one to run.
	strategy types.Strategy

	holdDelay time.Duration
	hooks     *hook.Registry
	logger    *slog.Logger
}

// New creates a Ledger seeded with accounts 1 and 2 at a balance of 1000
// each.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		balances: map[types.AccountID]int64{
			Account1: seedBalance,
			Account2: seedBalance,
		},
		strategy:  types.StrategyOrdered,
		holdDelay: defaultHoldDelay,
		hooks:     hook.NewRegistry(),
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Option configures a Ledger instance.
type Option func(*Ledger)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
		l.hooks.WithLogger(logger)
	}
}

// WithHook registers an event hook.
func WithHook(h hook.Hook) Option {
	return func(l *Ledger) {
		if err := l.hooks.Register(h); err != nil {
			l.logger.Warn("hook registration failed",
				"hook", h.Name(),
				"error", err,
			)
		}
	}
}

// WithHoldDelay sets how long the direct strategy holds its first lock
// before requesting the second. Tests shorten it; zero disables the
// window (and with it, the reliability of the demonstration).
func WithHoldDelay(d time.Duration) Option {
	return func(l *Ledger) {
		l.holdDelay = d
	}
}

// WithStrategy sets the initial locking strategy.
func WithStrategy(s types.Strategy) Option {
	return func(l *Ledger) {
		l.strategy = s
	}
}

// SetOptimized selects the locking strategy for subsequent transfers:
// true for the direct ("optimized") strategy, false for the ordered one.
// The write is deliberately unsynchronized; see the strategy field.
func (l *Ledger) SetOptimized(optimized bool) {
	if optimized {
		l.strategy = types.StrategyDirect
	} else {
		l.strategy = types.StrategyOrdered
	}
}

// Strategy returns the locking strategy currently selected.
func (l *Ledger) Strategy() types.Strategy {
	return l.strategy
}

// Hooks returns the ledger's hook registry.
func (l *Ledger) Hooks() *hook.Registry {
	return l.hooks
}

// ──────────────────────────────────────────────────
// Transfers
// ──────────────────────────────────────────────────

// Transfer moves amount from one account to the other if the source
// balance is sufficient; otherwise it is silently skipped. An unknown
// account id returns ErrAccountNotFound. The transfer runs under the
// strategy selected at the time of the call.
//
// Under the direct strategy a cancellation that arrives during the hold
// window releases the first lock and returns ctx.Err(). Lock acquisition
// itself is not interruptible.
func (l *Ledger) Transfer(ctx context.Context, from, to types.AccountID, amount int64) error {
	strategy := l.strategy

	var (
		applied bool
		err     error
	)

	switch strategy {
	case types.StrategyDirect:
		applied, err = l.transferDirect(ctx, from, to, amount)
	default:
		applied, err = l.transferOrdered(from, to, amount)
	}
	if err != nil {
		return err
	}

	ev := types.NewTransferEvent(from, to, amount, strategy, applied)
	if applied {
		l.logger.Debug("transfer applied",
			"id", ev.ID.String(),
			"from", from,
			"to", to,
			"amount", amount,
			"strategy", strategy.String(),
		)
		l.hooks.EmitTransferApplied(ctx, ev)
	} else {
		ev.Reason = skipReason(from, to)
		l.logger.Debug("transfer skipped",
			"id", ev.ID.String(),
			"from", from,
			"to", to,
			"amount", amount,
			"reason", ev.Reason,
		)
		l.hooks.EmitTransferSkipped(ctx, ev)
	}

	return nil
}

// lockFor maps an account id to its lock: lock1 for account 1, lock2
// for everything else. Both strategies share this mapping; they differ
// only in the order they feed account ids into it.
func (l *Ledger) lockFor(a types.AccountID) *sync.Mutex {
	if a == Account1 {
		return &l.lock1
	}
	return &l.lock2
}

// transferOrdered acquires the two locks in a fixed global order: the
// lock paired with the numerically smaller account id always comes
// first, independent of which account is the source. With every caller
// following the same total order, no circular wait can form.
func (l *Ledger) transferOrdered(from, to types.AccountID, amount int64) (bool, error) {
	lo, hi := from, to
	if lo > hi {
		lo, hi = hi, lo
	}
	first, second := l.lockFor(lo), l.lockFor(hi)

	// Unknown ids outside {1, 2} can map both ways to the same mutex;
	// sync.Mutex is not reentrant, so take it once.
	same := first == second

	first.Lock()
	defer first.Unlock()
	if !same {
		second.Lock()
		defer second.Unlock()
	}

	return l.apply(from, to, amount)
}

// transferDirect feeds the raw argument order into the same lock
// mapping: the source's lock first, the destination's second. Two
// concurrent transfers with swapped from/to therefore acquire the locks
// in opposite order, and the hold window below gives both goroutines
// time to take their first lock before either requests its second. That
// is the textbook circular wait this path exists to reproduce; do not
// add an ordering guarantee here.
func (l *Ledger) transferDirect(ctx context.Context, from, to types.AccountID, amount int64) (bool, error) {
	lockA := l.lockFor(from)
	lockB := l.lockFor(to)

	lockA.Lock()

	// Simulate work while holding the first lock.
	timer := time.NewTimer(l.holdDelay)
	select {
	case <-timer.C:
	case <-ctx.Done():
		timer.Stop()
		lockA.Unlock()
		return false, ctx.Err()
	}

	// Both arguments can select the same mutex (whenever neither or both
	// reference account 1); take it once, as above.
	same := lockA == lockB
	if !same {
		lockB.Lock()
	}

	applied, err := l.apply(from, to, amount)

	if !same {
		lockB.Unlock()
	}
	lockA.Unlock()

	return applied, err
}

// BulkTransfer applies a batch of transfers described by parallel
// slices. It holds lock1 across the entire batch and re-acquires lock2
// for each element. A goroutine holding lock2 and requesting lock1 (a
// concurrent direct-strategy transfer out of account 2) can therefore
// deadlock against a bulk batch in progress; that nesting is part of the
// model and must stay.
//
// Elements skipped for insufficient funds do not fail the batch. An
// unknown account id aborts the batch, leaving earlier elements applied.
// Cancellation is honored between elements.
func (l *Ledger) BulkTransfer(ctx context.Context, froms, tos []types.AccountID, amounts []int64) error {
	if len(froms) != len(tos) || len(froms) != len(amounts) {
		return ErrBulkLengthMismatch
	}

	strategy := l.strategy
	start := time.Now()
	events := make([]*types.TransferEvent, 0, len(froms))
	applied := 0

	l.lock1.Lock()
	for i := range froms {
		if err := ctx.Err(); err != nil {
			l.lock1.Unlock()
			return err
		}

		l.lock2.Lock()
		ok, err := l.apply(froms[i], tos[i], amounts[i])
		l.lock2.Unlock()
		if err != nil {
			l.lock1.Unlock()
			return fmt.Errorf("bulk transfer element %d: %w", i, err)
		}

		if ok {
			applied++
		}
		events = append(events, types.NewTransferEvent(froms[i], tos[i], amounts[i], strategy, ok))
	}
	l.lock1.Unlock()

	// Events are emitted only after every lock is released so hooks can
	// query balances without joining the locking protocol.
	for _, ev := range events {
		if ev.Applied {
			l.hooks.EmitTransferApplied(ctx, ev)
		} else {
			ev.Reason = skipReason(ev.From, ev.To)
			l.hooks.EmitTransferSkipped(ctx, ev)
		}
	}

	elapsed := time.Since(start)
	l.hooks.EmitBulkCompleted(ctx, len(froms), applied, elapsed)
	l.logger.Debug("bulk transfer completed",
		"batch_size", len(froms),
		"applied", applied,
		"elapsed_ms", elapsed.Milliseconds(),
	)

	return nil
}

// Balance returns the balance of the given account, or
// ErrAccountNotFound for an unseeded id. The read is guarded by lock1
// only, matching the coarse query discipline of the original design.
func (l *Ledger) Balance(accountID types.AccountID) (int64, error) {
	l.lock1.Lock()
	defer l.lock1.Unlock()

	bal, ok := l.balances[accountID]
	if !ok {
		return 0, fmt.Errorf("account %s: %w", accountID, ErrAccountNotFound)
	}
	return bal, nil
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

// apply performs the balance check-and-update. The caller must hold the
// lock(s) its strategy prescribes; apply itself takes none.
func (l *Ledger) apply(from, to types.AccountID, amount int64) (bool, error) {
	fromBal, ok := l.balances[from]
	if !ok {
		return false, fmt.Errorf("from account %s: %w", from, ErrAccountNotFound)
	}
	toBal, ok := l.balances[to]
	if !ok {
		return false, fmt.Errorf("to account %s: %w", to, ErrAccountNotFound)
	}

	// A same-account transfer is a no-op rather than a balance
	// double-write; both balances would alias the same map entry.
	if from == to {
		return false, nil
	}

	if fromBal < amount {
		return false, nil
	}

	l.balances[from] = fromBal - amount
	l.balances[to] = toBal + amount
	return true, nil
}

func skipReason(from, to types.AccountID) string {
	if from == to {
		return types.SkipSameAccount
	}
	return types.SkipInsufficientFunds
}
