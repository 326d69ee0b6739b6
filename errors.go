package ledger

import "errors"

// Sentinel errors for the failure conditions the ledger surfaces.
// Insufficient funds is deliberately not among them: a transfer that
// fails its balance check is silently skipped, not an error.
var (
	// ErrAccountNotFound is returned when an operation references an
	// account id the ledger was not seeded with.
	ErrAccountNotFound = errors.New("ledger: account not found")

	// ErrBulkLengthMismatch is returned when the parallel slices passed
	// to BulkTransfer differ in length.
	ErrBulkLengthMismatch = errors.New("ledger: bulk transfer slices differ in length")
)

// IsNotFound returns true if the error is an unknown-account error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound)
}
