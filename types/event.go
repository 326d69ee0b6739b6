package types

import (
	"time"

	"github.com/acctmgr/ledger/id"
)

// Skip reasons recorded on TransferEvent when Applied is false.
const (
	SkipInsufficientFunds = "insufficient funds"
	SkipSameAccount       = "same account"
)

// TransferEvent is the record of a single transfer attempt, emitted to
// hooks after the locks protecting the balance map have been released.
type TransferEvent struct {
	ID       id.TransferID `json:"id"`
	From     AccountID     `json:"from"`
	To       AccountID     `json:"to"`
	Amount   int64         `json:"amount"`
	Strategy Strategy      `json:"strategy"`
	Applied  bool          `json:"applied"`
	Reason   string        `json:"reason,omitempty"`
	Time     time.Time     `json:"time"`
}

// NewTransferEvent stamps a transfer attempt with a fresh event ID and
// the current time.
func NewTransferEvent(from, to AccountID, amount int64, strategy Strategy, applied bool) *TransferEvent {
	return &TransferEvent{
		ID:       id.NewTransferID(),
		From:     from,
		To:       to,
		Amount:   amount,
		Strategy: strategy,
		Applied:  applied,
		Time:     time.Now().UTC(),
	}
}
