package audithook_test

import (
	"context"
	"testing"
	"time"

	audithook "github.com/acctmgr/ledger/audit_hook"
	"github.com/acctmgr/ledger/id"
	"github.com/acctmgr/ledger/types"
)

func TestRecordsTransferApplied(t *testing.T) {
	recorder := audithook.NewMemoryRecorder()
	ext := audithook.New(recorder)

	ev := types.NewTransferEvent(1, 2, 100, types.StrategyOrdered, true)
	if err := ext.OnTransferApplied(context.Background(), ev); err != nil {
		t.Fatal(err)
	}

	events := recorder.Events()
	if len(events) != 1 {
		t.Fatalf("recorded events: got %d, want 1", len(events))
	}

	got := events[0]
	if got.Action != audithook.ActionTransferApplied {
		t.Errorf("Action: got %q, want %q", got.Action, audithook.ActionTransferApplied)
	}
	if got.Outcome != audithook.OutcomeSuccess {
		t.Errorf("Outcome: got %q, want %q", got.Outcome, audithook.OutcomeSuccess)
	}
	if got.ID.Prefix() != id.PrefixAuditEvent {
		t.Errorf("ID prefix: got %q, want %q", got.ID.Prefix(), id.PrefixAuditEvent)
	}
	if got.ResourceID != ev.ID.String() {
		t.Errorf("ResourceID: got %q, want %q", got.ResourceID, ev.ID.String())
	}
	if got.Metadata["amount"] != int64(100) {
		t.Errorf("amount metadata: got %v, want 100", got.Metadata["amount"])
	}
	if got.Metadata["strategy"] != "ordered" {
		t.Errorf("strategy metadata: got %v, want %q", got.Metadata["strategy"], "ordered")
	}
}

func TestRecordsTransferSkipped(t *testing.T) {
	recorder := audithook.NewMemoryRecorder()
	ext := audithook.New(recorder)

	ev := types.NewTransferEvent(1, 2, 5000, types.StrategyDirect, false)
	ev.Reason = types.SkipInsufficientFunds
	if err := ext.OnTransferSkipped(context.Background(), ev); err != nil {
		t.Fatal(err)
	}

	events := recorder.ByAction(audithook.ActionTransferSkipped)
	if len(events) != 1 {
		t.Fatalf("skipped events: got %d, want 1", len(events))
	}
	if events[0].Outcome != audithook.OutcomeSkipped {
		t.Errorf("Outcome: got %q, want %q", events[0].Outcome, audithook.OutcomeSkipped)
	}
	if events[0].Metadata["skip_reason"] != types.SkipInsufficientFunds {
		t.Errorf("skip_reason metadata: got %v, want %q",
			events[0].Metadata["skip_reason"], types.SkipInsufficientFunds)
	}
}

func TestRecordsBulkCompleted(t *testing.T) {
	recorder := audithook.NewMemoryRecorder()
	ext := audithook.New(recorder)

	if err := ext.OnBulkCompleted(context.Background(), 5, 3, 40*time.Millisecond); err != nil {
		t.Fatal(err)
	}

	events := recorder.ByAction(audithook.ActionBulkCompleted)
	if len(events) != 1 {
		t.Fatalf("bulk events: got %d, want 1", len(events))
	}
	if events[0].Metadata["batch_size"] != 5 {
		t.Errorf("batch_size metadata: got %v, want 5", events[0].Metadata["batch_size"])
	}
	if events[0].Metadata["applied"] != 3 {
		t.Errorf("applied metadata: got %v, want 3", events[0].Metadata["applied"])
	}
}

func TestDisabledActionsAreFiltered(t *testing.T) {
	recorder := audithook.NewMemoryRecorder()
	ext := audithook.New(recorder,
		audithook.WithDisabledActions(audithook.ActionTransferSkipped),
	)

	applied := types.NewTransferEvent(1, 2, 100, types.StrategyOrdered, true)
	skipped := types.NewTransferEvent(1, 2, 5000, types.StrategyOrdered, false)

	ctx := context.Background()
	if err := ext.OnTransferApplied(ctx, applied); err != nil {
		t.Fatal(err)
	}
	if err := ext.OnTransferSkipped(ctx, skipped); err != nil {
		t.Fatal(err)
	}

	if recorder.Len() != 1 {
		t.Fatalf("recorded events: got %d, want 1", recorder.Len())
	}
	if recorder.Events()[0].Action != audithook.ActionTransferApplied {
		t.Errorf("recorded action: got %q, want %q",
			recorder.Events()[0].Action, audithook.ActionTransferApplied)
	}
}

func TestEnabledActionsAllowlist(t *testing.T) {
	recorder := audithook.NewMemoryRecorder()
	ext := audithook.New(recorder,
		audithook.WithEnabledActions(audithook.ActionBulkCompleted),
	)

	ctx := context.Background()
	ev := types.NewTransferEvent(1, 2, 100, types.StrategyOrdered, true)
	if err := ext.OnTransferApplied(ctx, ev); err != nil {
		t.Fatal(err)
	}
	if err := ext.OnBulkCompleted(ctx, 1, 1, time.Millisecond); err != nil {
		t.Fatal(err)
	}

	if recorder.Len() != 1 {
		t.Fatalf("recorded events: got %d, want 1", recorder.Len())
	}
	if recorder.Events()[0].Action != audithook.ActionBulkCompleted {
		t.Errorf("recorded action: got %q, want %q",
			recorder.Events()[0].Action, audithook.ActionBulkCompleted)
	}
}

func TestRecorderFuncAdapter(t *testing.T) {
	var captured *audithook.AuditEvent
	ext := audithook.New(audithook.RecorderFunc(func(_ context.Context, e *audithook.AuditEvent) error {
		captured = e
		return nil
	}))

	ev := types.NewTransferEvent(2, 1, 50, types.StrategyOrdered, true)
	if err := ext.OnTransferApplied(context.Background(), ev); err != nil {
		t.Fatal(err)
	}
	if captured == nil {
		t.Fatal("recorder func was not invoked")
	}
	if captured.Metadata["from"] != "2" || captured.Metadata["to"] != "1" {
		t.Errorf("from/to metadata: got %v/%v, want 2/1",
			captured.Metadata["from"], captured.Metadata["to"])
	}
}
