package ports

import (
	"context"

	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/stop"
)

// SequenceEntry is one externally ordered stop of the delivery manifest.
type SequenceEntry struct {
	NodeID   string
	Position kernel.GeoPoint
	Kind     stop.Kind
	OrderID  *kernel.UUID
}

// StopSequenceSource supplies the externally computed, ordered stop
// sequence for the vehicle. The core consumes the ordering as given and
// never recomputes it: a valid sequence opens and closes with a depot
// entry and carries an order id on every patient entry.
type StopSequenceSource interface {
	Load(ctx context.Context) ([]SequenceEntry, error)
}
