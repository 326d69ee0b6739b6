// Package types provides common types used across the ledger.
package types

import "strconv"

// AccountID identifies an account in the ledger's balance map.
type AccountID int

// String returns the decimal representation of the account id.
func (a AccountID) String() string {
	return strconv.Itoa(int(a))
}

// Strategy selects how a transfer acquires the ledger's two locks.
type Strategy uint8

const (
	// StrategyOrdered acquires the two locks in a fixed global order
	// derived from the account ids. Safe under any interleaving.
	StrategyOrdered Strategy = iota

	// StrategyDirect acquires the locks in an order determined by the
	// argument order of the transfer. Deadlock-prone under concurrent
	// opposite-direction transfers.
	StrategyDirect
)

// String returns the strategy name.
func (s Strategy) String() string {
	switch s {
	case StrategyOrdered:
		return "ordered"
	case StrategyDirect:
		return "direct"
	default:
		return "unknown"
	}
}
