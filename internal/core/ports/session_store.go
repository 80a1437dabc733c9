package ports

import (
	"context"

	"coldchain/internal/core/domain/model/kernel"
)

// SessionRecord is the durably persisted slice of a stability session,
// keyed by order. It is exactly the state needed to bridge a restart:
// the accumulated excursion seconds, whether an excursion was in progress,
// and when the record was written.
type SessionRecord struct {
	ElapsedSeconds     int64
	InExcursion        bool
	SavedAtEpochMillis int64
}

// SessionStore is a durable key/value store for session records. The
// backing store is swappable; callers only rely on get/set/delete
// semantics per order key.
//
// Writes happen on every excursion boundary crossing and on every clock
// tick while in excursion. A failed write is non-fatal: the tolerated worst
// case is a small double-counted delta on the next load.
type SessionStore interface {
	// Get returns the persisted record for an order. The bool reports
	// whether a record exists.
	Get(ctx context.Context, orderID kernel.UUID) (SessionRecord, bool, error)

	// Set durably writes the record for an order, replacing any previous one.
	Set(ctx context.Context, orderID kernel.UUID, record SessionRecord) error

	// Delete removes the record for an order once its stop settles.
	Delete(ctx context.Context, orderID kernel.UUID) error
}
