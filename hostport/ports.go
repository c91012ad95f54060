// Package hostport names the external collaborators the ROSCA core consumes
// but never implements: the host ledger runtime's key/value store, caller
// authentication, monotonic clock, event sink, and asset transfer. These are
// explicitly out of scope for the core itself; this package exists only so
// native/rosca can be written against narrow, host-agnostic interfaces
// instead of a concrete chain SDK.
//
// Nothing in this package performs I/O. Reference implementations living
// under storage/ and cmd/roscacored/ exist purely to build, test, and
// demonstrate the core end to end.
package hostport

import (
	"math/big"

	"roscachain/crypto"
)

// KVStore is the persistent key/value store the host ledger runtime
// provides. Every storage keyspace constructor in native/rosca/keys.go
// produces keys meant to be read and written through this interface.
type KVStore interface {
	// Get returns the value and true when key exists, or (nil, false) when
	// it does not. A missing key is not an error.
	Get(key []byte) ([]byte, bool, error)
	Set(key []byte, value []byte) error
	Delete(key []byte) error
}

// Auth authenticates the caller of the current entry point, modeling the
// host's require_auth(address) primitive. A nil error means the supplied
// address is the authenticated caller of the in-flight transaction.
type Auth interface {
	RequireAuth(addr crypto.Address) error
}

// Clock exposes the ledger's monotonic timestamp. The core never reads the
// wall clock directly; every timestamp it sees comes from this interface,
// keeping state transitions fully deterministic.
type Clock interface {
	Now() uint64
}

// EventSink is the host's event emission sink. Emit is fire-and-forget; the
// core never observes its own events.
type EventSink interface {
	Emit(evt Event)
}

// Event is the minimal structured event shape the sink accepts: a type name
// plus a flat attribute map.
type Event struct {
	Type       string
	Attributes map[string]string
}

// AssetTransfer models the host's asset-transfer primitive. A non-nil error
// aborts the calling entry point; the core never inspects the underlying
// asset, only moves amounts between opaque addresses.
type AssetTransfer interface {
	Transfer(from, to crypto.Address, amount *big.Int) error
}
