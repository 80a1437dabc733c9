package stop

import (
	"fmt"

	"coldchain/internal/pkg/errs"
)

// Status represents the lifecycle state of a route stop.
// It implements a state machine with one-way terminal transitions:
//
//	Pending ──┬──> Delivered (vehicle arrived)
//	          └──> Spoiled   (stability session expired or exceeded)
//
// Depot is both the initial and terminal anchor state for depot stops and
// never transitions. Delivered and Spoiled are terminal: a settled stop
// ignores further arrival or expiry signals.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Depot is the fixed status of the depot anchor stops that open and
	// close every route. Depot stops never transition.
	Depot

	// Pending is the initial status of every patient stop awaiting delivery.
	Pending

	// Delivered indicates the vehicle reached the stop within the arrival
	// threshold. This is a final state.
	Delivered

	// Spoiled indicates the shipment's stability budget was exhausted before
	// arrival. This is a final state.
	Spoiled
)

// getStatusStrings returns a map of Status values to their string representations.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "Unknown",
		Depot:     "Depot",
		Pending:   "Pending",
		Delivered: "Delivered",
		Spoiled:   "Spoiled",
	}
}

// getValidStatusStrings returns a map of only valid Status values.
func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Depot:     "Depot",
		Pending:   "Pending",
		Delivered: "Delivered",
		Spoiled:   "Spoiled",
	}
}

// Validate checks if the Status value is valid.
// Valid statuses are: Depot, Pending, Delivered, Spoiled.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the human-readable name of the status.
// This method implements the fmt.Stringer interface and is safe
// to call on any Status value, including invalid ones.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// IsTerminal reports whether the status admits no further transitions.
// Depot, Delivered and Spoiled are terminal; only Pending stops can change.
func (s Status) IsTerminal() bool {
	return s == Depot || s == Delivered || s == Spoiled
}

// Deliver transitions the status to Delivered.
//
// Valid transitions:
//   - Pending -> Delivered (vehicle within arrival threshold)
//
// Returns (0, error) for any other origin status. Callers that want
// idempotent settle semantics should check IsTerminal first.
func (s Status) Deliver() (Status, error) {
	if s != Pending {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to deliver", s.String()),
		)
	}

	return Delivered, nil
}

// Spoil transitions the status to Spoiled.
//
// Valid transitions:
//   - Pending -> Spoiled (stability session reached a terminal state)
//
// Returns (0, error) for any other origin status.
func (s Status) Spoil() (Status, error) {
	if s != Pending {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to spoil", s.String()),
		)
	}

	return Spoiled, nil
}
