package ledger

import "github.com/acctmgr/ledger/id"

// ID is the identifier type stamped on ledger events.
type ID = id.ID

// Prefix identifies the event type encoded in a TypeID.
type Prefix = id.Prefix
