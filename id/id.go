// Package id defines TypeID-based identity types for ledger events.
//
// Every event emitted by the ledger carries a single ID struct with a
// prefix that identifies the event type. IDs are K-sortable
// (UUIDv7-based), globally unique, and URL-safe in the format
// "prefix_suffix".
package id

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

// Prefix identifies the event type encoded in a TypeID.
type Prefix string

// Prefix constants for all ledger event types.
const (
	PrefixTransfer   Prefix = "xfer"  // Single transfer attempt
	PrefixBulk       Prefix = "blk"   // Bulk transfer batch
	PrefixAuditEvent Prefix = "audit" // Audit trail entry
)

// ID is the identifier type for ledger events.
// It wraps a TypeID providing a prefix-qualified, globally unique,
// sortable, URL-safe identifier in the format "prefix_suffix".
//
//nolint:recvcheck // Value receivers for read-only methods, pointer receiver for UnmarshalText.
type ID struct {
	inner typeid.TypeID
	valid bool
}

// Nil is the zero-value ID.
var Nil ID

// New generates a new globally unique ID with the given prefix.
// It panics if prefix is not a valid TypeID prefix (programming error).
func New(prefix Prefix) ID {
	tid, err := typeid.Generate(string(prefix))
	if err != nil {
		panic(fmt.Sprintf("id: invalid prefix %q: %v", prefix, err))
	}

	return ID{inner: tid, valid: true}
}

// Parse parses a TypeID string (e.g., "xfer_01h2xcejqtf2nbrexx3vqjhp41")
// into an ID. Returns an error if the string is not valid.
func Parse(s string) (ID, error) {
	if s == "" {
		return Nil, fmt.Errorf("id: parse %q: empty string", s)
	}

	tid, err := typeid.Parse(s)
	if err != nil {
		return Nil, fmt.Errorf("id: parse %q: %w", s, err)
	}

	return ID{inner: tid, valid: true}, nil
}

// ParseWithPrefix parses a TypeID string and validates that its prefix
// matches the expected value.
func ParseWithPrefix(s string, expected Prefix) (ID, error) {
	parsed, err := Parse(s)
	if err != nil {
		return Nil, err
	}

	if parsed.Prefix() != expected {
		return Nil, fmt.Errorf("id: expected prefix %q, got %q", expected, parsed.Prefix())
	}

	return parsed, nil
}

// MustParse is like Parse but panics on error. Use for hardcoded ID values.
func MustParse(s string) ID {
	parsed, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("id: must parse %q: %v", s, err))
	}

	return parsed
}

// ──────────────────────────────────────────────────
// Type aliases
// ──────────────────────────────────────────────────

// TransferID is a type-safe identifier for transfer events (prefix: "xfer").
type TransferID = ID

// BulkID is a type-safe identifier for bulk batches (prefix: "blk").
type BulkID = ID

// AuditEventID is a type-safe identifier for audit entries (prefix: "audit").
type AuditEventID = ID

// ──────────────────────────────────────────────────
// Convenience constructors
// ──────────────────────────────────────────────────

// NewTransferID generates a new unique transfer event ID.
func NewTransferID() ID { return New(PrefixTransfer) }

// NewBulkID generates a new unique bulk batch ID.
func NewBulkID() ID { return New(PrefixBulk) }

// NewAuditEventID generates a new unique audit entry ID.
func NewAuditEventID() ID { return New(PrefixAuditEvent) }

// ──────────────────────────────────────────────────
// Convenience parsers
// ──────────────────────────────────────────────────

// ParseTransferID parses a string and validates the "xfer" prefix.
func ParseTransferID(s string) (ID, error) { return ParseWithPrefix(s, PrefixTransfer) }

// ParseBulkID parses a string and validates the "blk" prefix.
func ParseBulkID(s string) (ID, error) { return ParseWithPrefix(s, PrefixBulk) }

// ParseAuditEventID parses a string and validates the "audit" prefix.
func ParseAuditEventID(s string) (ID, error) { return ParseWithPrefix(s, PrefixAuditEvent) }

// ──────────────────────────────────────────────────
// ID methods
// ──────────────────────────────────────────────────

// String returns the full TypeID string representation (prefix_suffix).
// Returns an empty string for the Nil ID.
func (i ID) String() string {
	if !i.valid {
		return ""
	}

	return i.inner.String()
}

// Prefix returns the prefix component of this ID.
func (i ID) Prefix() Prefix {
	if !i.valid {
		return ""
	}

	return Prefix(i.inner.Prefix())
}

// IsNil reports whether this ID is the zero value.
func (i ID) IsNil() bool {
	return !i.valid
}

// MarshalText implements encoding.TextMarshaler.
func (i ID) MarshalText() ([]byte, error) {
	if !i.valid {
		return []byte{}, nil
	}

	return []byte(i.inner.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *ID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*i = Nil

		return nil
	}

	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}

	*i = parsed

	return nil
}
