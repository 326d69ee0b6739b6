package ledger

import "github.com/acctmgr/ledger/types"

// Re-export common types for convenience so users don't have to import the types package.

// AccountID is re-exported from the types package.
type AccountID = types.AccountID

// Strategy is re-exported from the types package.
type Strategy = types.Strategy

// TransferEvent is re-exported from the types package.
type TransferEvent = types.TransferEvent

// Re-export strategy constants
const (
	StrategyOrdered = types.StrategyOrdered
	StrategyDirect  = types.StrategyDirect
)
