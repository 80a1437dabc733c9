package stop

import (
	"errors"

	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/pkg/errs"
	"coldchain/internal/pkg/guard"
)

// ArrivalThresholdMeters is the great-circle distance at or under which the
// vehicle is considered to have arrived at a stop. Positions strictly beyond
// the threshold never trigger delivery.
const ArrivalThresholdMeters = 30.0

// Domain errors for stop operations.
var (
	// ErrNodeIDIsRequired is returned when attempting to create a stop without a node id.
	ErrNodeIDIsRequired = errs.NewValueIsRequiredError("nodeID")
	// ErrOrderIDIsRequired is returned when a patient stop is created without an order id.
	ErrOrderIDIsRequired = errs.NewValueIsRequiredError("orderID")
	// ErrStopIsNotConstructed is returned when using an improperly initialized Stop.
	ErrStopIsNotConstructed = errors.New("Stop must be created via NewStop or RestoreStop constructor")
)

// Kind discriminates depot anchors from patient delivery stops.
type Kind int

const (
	// KindUnknown represents an invalid or undefined kind.
	KindUnknown Kind = iota
	// KindDepot marks the depot anchors opening and closing the stop sequence.
	KindDepot
	// KindPatient marks a patient destination carrying a medication order.
	KindPatient
)

// String returns the human-readable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindDepot:
		return "depot"
	case KindPatient:
		return "patient"
	default:
		return "unknown"
	}
}

// Validate checks if the Kind value is valid.
func (k Kind) Validate() error {
	if k != KindDepot && k != KindPatient {
		return errs.NewValueIsInvalidError("kind")
	}
	return nil
}

// Stop represents one waypoint of the delivery route: either a depot anchor
// or a patient destination tied to a medication order. Stop is the aggregate
// root for stop lifecycle; its status only moves one way (Pending to
// Delivered or Spoiled) and settles permanently.
//
// Invariants:
//   - Depot stops carry no order and stay in Depot status forever
//   - Patient stops carry an order id and start Pending
//   - Settle operations are idempotent: a terminal stop reports no change
type Stop struct {
	id       kernel.UUID
	nodeID   string
	position kernel.GeoPoint
	kind     Kind
	orderID  *kernel.UUID
	sequence int
	status   Status
	guard    guard.ConstructorGuard
}

// NewStop creates a new Stop with validation. Depot stops must not carry an
// order id; patient stops must. The initial status is derived from the kind:
// Depot for depot anchors, Pending for patient stops.
//
// Parameters:
//   - id: unique identifier for the stop
//   - nodeID: external routing-graph node identifier (non-empty)
//   - position: validated geographic position
//   - kind: KindDepot or KindPatient
//   - orderID: order carried to this stop (required iff kind is KindPatient)
//   - sequence: externally computed position in the stop ordering
func NewStop(
	id kernel.UUID,
	nodeID string,
	position kernel.GeoPoint,
	kind Kind,
	orderID *kernel.UUID,
	sequence int,
) (*Stop, error) {
	status := Pending
	if kind == KindDepot {
		status = Depot
	}

	return newStop(id, nodeID, position, kind, orderID, sequence, status)
}

// RestoreStop reconstructs a Stop from persistent storage, preserving its
// previously persisted status.
func RestoreStop(
	id kernel.UUID,
	nodeID string,
	position kernel.GeoPoint,
	kind Kind,
	orderID *kernel.UUID,
	sequence int,
	status Status,
) (*Stop, error) {
	if err := status.Validate(); err != nil {
		return nil, err
	}

	return newStop(id, nodeID, position, kind, orderID, sequence, status)
}

func newStop(
	id kernel.UUID,
	nodeID string,
	position kernel.GeoPoint,
	kind Kind,
	orderID *kernel.UUID,
	sequence int,
	status Status,
) (*Stop, error) {
	s := &Stop{
		sequence: sequence,
		status:   status,
		guard:    guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		s.setID(id),
		s.setNodeID(nodeID),
		s.setPosition(position),
		s.setKind(kind),
		s.setOrderID(kind, orderID),
	); err != nil {
		return nil, err
	}

	return s, nil
}

// Validate ensures the Stop instance was properly constructed.
func (s *Stop) Validate() error {
	if s == nil {
		return ErrStopIsNotConstructed
	}
	return s.guard.Validate(ErrStopIsNotConstructed)
}

// IsEqual compares two stops by their unique identifiers.
func (s *Stop) IsEqual(other *Stop) bool {
	return other != nil && s.id.IsEqual(other.id)
}

// ID returns the stop's unique identifier.
func (s *Stop) ID() kernel.UUID {
	return s.id
}

// NodeID returns the external routing-graph node identifier.
func (s *Stop) NodeID() string {
	return s.nodeID
}

// Position returns the geographic position of the stop.
func (s *Stop) Position() kernel.GeoPoint {
	return s.position
}

// Kind returns whether the stop is a depot anchor or a patient destination.
func (s *Stop) Kind() Kind {
	return s.kind
}

// OrderID returns the order carried to this stop, or nil for depot stops.
func (s *Stop) OrderID() *kernel.UUID {
	return s.orderID
}

// Sequence returns the stop's position in the externally computed ordering.
func (s *Stop) Sequence() int {
	return s.sequence
}

// Status returns the current lifecycle status of the stop.
func (s *Stop) Status() Status {
	return s.status
}

// IsPending reports whether the stop still awaits delivery.
func (s *Stop) IsPending() bool {
	return s.status == Pending
}

// Deliver settles the stop as Delivered.
//
// The operation is idempotent with respect to terminal states: if the stop
// is already Delivered, Spoiled or a Depot anchor, no transition occurs and
// (false, nil) is returned so repeated arrival signals are ignored. The
// returned bool reports whether a transition actually happened, which is the
// caller's signal to invalidate the current route.
func (s *Stop) Deliver() (bool, error) {
	if s.status.IsTerminal() {
		return false, nil
	}

	newStatus, err := s.status.Deliver()
	if err != nil {
		return false, err
	}

	s.status = newStatus
	return true, nil
}

// Spoil settles the stop as Spoiled after its stability session reached a
// terminal state. Idempotent in the same way as Deliver.
func (s *Stop) Spoil() (bool, error) {
	if s.status.IsTerminal() {
		return false, nil
	}

	newStatus, err := s.status.Spoil()
	if err != nil {
		return false, err
	}

	s.status = newStatus
	return true, nil
}

// WithinArrivalThreshold reports whether the given vehicle position is at or
// under ArrivalThresholdMeters great-circle distance from this stop. A
// position exactly at the threshold arrives; threshold plus any epsilon does
// not.
func (s *Stop) WithinArrivalThreshold(position kernel.GeoPoint) (bool, error) {
	if err := s.Validate(); err != nil {
		return false, err
	}

	d, err := position.DistanceTo(s.position)
	if err != nil {
		return false, err
	}

	return d <= ArrivalThresholdMeters, nil
}

// setID validates and sets the stop's unique identifier.
func (s *Stop) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	s.id = id
	return nil
}

// setNodeID validates and sets the routing-graph node identifier.
func (s *Stop) setNodeID(nodeID string) error {
	if nodeID == "" {
		return ErrNodeIDIsRequired
	}
	s.nodeID = nodeID
	return nil
}

// setPosition validates and sets the stop's position.
func (s *Stop) setPosition(position kernel.GeoPoint) error {
	if err := position.Validate(); err != nil {
		return err
	}
	s.position = position
	return nil
}

// setKind validates and sets the stop kind.
func (s *Stop) setKind(kind Kind) error {
	if err := kind.Validate(); err != nil {
		return err
	}
	s.kind = kind
	return nil
}

// setOrderID enforces the kind/order consistency rule: patient stops require
// an order, depot stops must not carry one.
func (s *Stop) setOrderID(kind Kind, orderID *kernel.UUID) error {
	if kind == KindPatient {
		if orderID == nil {
			return ErrOrderIDIsRequired
		}
		if err := orderID.Validate(); err != nil {
			return err
		}
		s.orderID = orderID
		return nil
	}

	if orderID != nil {
		return errs.NewValueIsInvalidError("orderID must be nil for depot stops")
	}
	return nil
}
