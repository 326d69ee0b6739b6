// Package audithook bridges ledger transfer events to an audit trail
// backend.
//
// It defines a local Recorder interface so the package does not depend
// on any particular backend. Callers inject a RecorderFunc adapter, or
// use the in-memory recorder for tests and demos.
package audithook

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/acctmgr/ledger/hook"
	"github.com/acctmgr/ledger/id"
	"github.com/acctmgr/ledger/types"
)

// Compile-time interface checks.
var (
	_ hook.Hook              = (*Extension)(nil)
	_ hook.OnTransferApplied = (*Extension)(nil)
	_ hook.OnTransferSkipped = (*Extension)(nil)
	_ hook.OnBulkCompleted   = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is one entry in the audit trail.
type AuditEvent struct {
	ID         id.AuditEventID `json:"id"`
	Action     string          `json:"action"`
	Resource   string          `json:"resource"`
	Category   string          `json:"category"`
	ResourceID string          `json:"resource_id,omitempty"`
	Metadata   map[string]any  `json:"metadata,omitempty"`
	Outcome    string          `json:"outcome"`
	Severity   string          `json:"severity"`
	Reason     string          `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges ledger transfer events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements hook.Hook.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Transfer hooks
// ──────────────────────────────────────────────────

// OnTransferApplied implements hook.OnTransferApplied.
func (e *Extension) OnTransferApplied(ctx context.Context, ev *types.TransferEvent) error {
	return e.record(ctx, ActionTransferApplied, SeverityInfo, OutcomeSuccess,
		ResourceAccount, ev.ID.String(), CategoryTransfer, nil,
		"from", ev.From.String(),
		"to", ev.To.String(),
		"amount", ev.Amount,
		"strategy", ev.Strategy.String(),
	)
}

// OnTransferSkipped implements hook.OnTransferSkipped.
func (e *Extension) OnTransferSkipped(ctx context.Context, ev *types.TransferEvent) error {
	return e.record(ctx, ActionTransferSkipped, SeverityWarning, OutcomeSkipped,
		ResourceAccount, ev.ID.String(), CategoryTransfer, nil,
		"from", ev.From.String(),
		"to", ev.To.String(),
		"amount", ev.Amount,
		"strategy", ev.Strategy.String(),
		"skip_reason", ev.Reason,
	)
}

// OnBulkCompleted implements hook.OnBulkCompleted.
func (e *Extension) OnBulkCompleted(ctx context.Context, batchSize, applied int, elapsed time.Duration) error {
	return e.record(ctx, ActionBulkCompleted, SeverityInfo, OutcomeSuccess,
		ResourceBatch, id.NewBulkID().String(), CategoryTransfer, nil,
		"batch_size", batchSize,
		"applied", applied,
		"elapsed_ms", elapsed.Milliseconds(),
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		ID:         id.NewAuditEventID(),
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
