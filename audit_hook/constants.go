package audithook

// Action constants for audit events.
const (
	ActionTransferApplied = "transfer.applied"
	ActionTransferSkipped = "transfer.skipped"
	ActionBulkCompleted   = "bulk.completed"
)

// Resource constants identify what an audit event refers to.
const (
	ResourceAccount = "account"
	ResourceBatch   = "batch"
)

// Category constants group audit events.
const (
	CategoryTransfer = "transfer"
)

// Outcome constants for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeSkipped = "skipped"
)

// Severity constants for audit events.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
)

// allActions returns every known audit action.
func allActions() []string {
	return []string{
		ActionTransferApplied,
		ActionTransferSkipped,
		ActionBulkCompleted,
	}
}
