// Package observability provides a metrics hook for the ledger that
// records transfer activity in a go-metrics registry.
package observability

import (
	"context"
	"time"

	"github.com/rcrowley/go-metrics"

	"github.com/acctmgr/ledger/hook"
	"github.com/acctmgr/ledger/types"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ hook.Hook              = (*MetricsExtension)(nil)
	_ hook.OnTransferApplied = (*MetricsExtension)(nil)
	_ hook.OnTransferSkipped = (*MetricsExtension)(nil)
	_ hook.OnBulkCompleted   = (*MetricsExtension)(nil)
)

// Metric names registered by the extension.
const (
	MetricTransfersApplied = "ledger.transfers.applied"
	MetricTransfersSkipped = "ledger.transfers.skipped"
	MetricTransferAmounts  = "ledger.transfers.amounts"
	MetricBulkBatches      = "ledger.bulk.batches"
	MetricBulkApplied      = "ledger.bulk.applied"
	MetricBulkLatency      = "ledger.bulk.latency"
)

// MetricsExtension records transfer activity. Register it as a ledger
// hook to automatically track applied/skipped counts, amount
// distribution, and bulk batch latency.
type MetricsExtension struct {
	TransfersApplied metrics.Counter
	TransfersSkipped metrics.Counter
	TransferAmounts  metrics.Histogram
	BulkBatches      metrics.Counter
	BulkApplied      metrics.Counter
	BulkLatency      metrics.Timer
}

// New creates a MetricsExtension registered against the given registry.
// Pass metrics.DefaultRegistry to share the process-wide registry.
func New(r metrics.Registry) *MetricsExtension {
	return &MetricsExtension{
		TransfersApplied: metrics.GetOrRegisterCounter(MetricTransfersApplied, r),
		TransfersSkipped: metrics.GetOrRegisterCounter(MetricTransfersSkipped, r),
		TransferAmounts: metrics.GetOrRegisterHistogram(MetricTransferAmounts, r,
			metrics.NewExpDecaySample(1028, 0.015)),
		BulkBatches: metrics.GetOrRegisterCounter(MetricBulkBatches, r),
		BulkApplied: metrics.GetOrRegisterCounter(MetricBulkApplied, r),
		BulkLatency: metrics.GetOrRegisterTimer(MetricBulkLatency, r),
	}
}

// Name implements hook.Hook.
func (m *MetricsExtension) Name() string { return "metrics" }

// OnTransferApplied implements hook.OnTransferApplied.
func (m *MetricsExtension) OnTransferApplied(_ context.Context, ev *types.TransferEvent) error {
	m.TransfersApplied.Inc(1)
	m.TransferAmounts.Update(ev.Amount)
	return nil
}

// OnTransferSkipped implements hook.OnTransferSkipped.
func (m *MetricsExtension) OnTransferSkipped(_ context.Context, _ *types.TransferEvent) error {
	m.TransfersSkipped.Inc(1)
	return nil
}

// OnBulkCompleted implements hook.OnBulkCompleted.
func (m *MetricsExtension) OnBulkCompleted(_ context.Context, _, applied int, elapsed time.Duration) error {
	m.BulkBatches.Inc(1)
	m.BulkApplied.Inc(int64(applied))
	m.BulkLatency.Update(elapsed)
	return nil
}
