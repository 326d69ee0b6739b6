package hook

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/acctmgr/ledger/types"
)

// Registry manages all registered hooks and provides efficient dispatch.
// It uses type-cached discovery so emission never needs a type switch.
type Registry struct {
	mu     sync.RWMutex
	hooks  []Hook
	logger *slog.Logger

	// Type-cached hook lists for efficient dispatch
	onTransferApplied []OnTransferApplied
	onTransferSkipped []OnTransferSkipped
	onBulkCompleted   []OnBulkCompleted
}

// NewRegistry creates a new hook registry.
func NewRegistry() *Registry {
	return &Registry{
		logger: slog.Default(),
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// Register adds a hook to the registry and caches its interfaces.
func (r *Registry) Register(h Hook) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.hooks {
		if existing.Name() == h.Name() {
			return fmt.Errorf("hook: duplicate registration: %s", h.Name())
		}
	}

	r.hooks = append(r.hooks, h)

	// Type-switch to cache interfaces
	if v, ok := h.(OnTransferApplied); ok {
		r.onTransferApplied = append(r.onTransferApplied, v)
	}
	if v, ok := h.(OnTransferSkipped); ok {
		r.onTransferSkipped = append(r.onTransferSkipped, v)
	}
	if v, ok := h.(OnBulkCompleted); ok {
		r.onBulkCompleted = append(r.onBulkCompleted, v)
	}

	return nil
}

// Get returns a registered hook by name, or nil.
func (r *Registry) Get(name string) Hook {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, h := range r.hooks {
		if h.Name() == name {
			return h
		}
	}
	return nil
}

// List returns all registered hooks.
func (r *Registry) List() []Hook {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Hook, len(r.hooks))
	copy(result, r.hooks)
	return result
}

// Count returns the number of registered hooks.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.hooks)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitTransferApplied emits a transfer applied event.
func (r *Registry) EmitTransferApplied(ctx context.Context, ev *types.TransferEvent) {
	r.mu.RLock()
	hooks := r.onTransferApplied
	r.mu.RUnlock()

	for _, h := range hooks {
		if err := r.callWithTimeout(ctx, h.Name(), func() error {
			return h.OnTransferApplied(ctx, ev)
		}); err != nil {
			r.logger.Warn("hook OnTransferApplied failed",
				"hook", h.Name(),
				"error", err,
			)
		}
	}
}

// EmitTransferSkipped emits a transfer skipped event.
func (r *Registry) EmitTransferSkipped(ctx context.Context, ev *types.TransferEvent) {
	r.mu.RLock()
	hooks := r.onTransferSkipped
	r.mu.RUnlock()

	for _, h := range hooks {
		if err := r.callWithTimeout(ctx, h.Name(), func() error {
			return h.OnTransferSkipped(ctx, ev)
		}); err != nil {
			r.logger.Warn("hook OnTransferSkipped failed",
				"hook", h.Name(),
				"error", err,
			)
		}
	}
}

// EmitBulkCompleted emits a bulk transfer completed event.
func (r *Registry) EmitBulkCompleted(ctx context.Context, batchSize, applied int, elapsed time.Duration) {
	r.mu.RLock()
	hooks := r.onBulkCompleted
	r.mu.RUnlock()

	for _, h := range hooks {
		if err := r.callWithTimeout(ctx, h.Name(), func() error {
			return h.OnBulkCompleted(ctx, batchSize, applied, elapsed)
		}); err != nil {
			r.logger.Warn("hook OnBulkCompleted failed",
				"hook", h.Name(),
				"error", err,
			)
		}
	}
}

// callWithTimeout calls a hook function with a timeout.
// Hooks should never block the transfer path.
func (r *Registry) callWithTimeout(ctx context.Context, hookName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return fmt.Errorf("hook timeout: %s", hookName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
