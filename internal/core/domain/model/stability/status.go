package stability

import (
	"fmt"

	"coldchain/internal/pkg/errs"
)

// Status represents the lifecycle state of a stability session.
//
//	Active ──┬──> Expired  (local countdown reached zero, or server
//	         │              STABILITY_TIME_EXPIRED alert)
//	         └──> Exceeded (server MAX_EXCURSION_EXCEEDED alert)
//
// Expired and Exceeded are terminal: a session in either state never
// mutates again.
type Status int

const (
	// StatusUnknown represents an invalid or undefined status.
	StatusUnknown Status = iota

	// Active is the initial status of a tracked session.
	Active

	// Expired indicates the excursion budget ran out, either by local
	// countdown or by authoritative server expiry. Final state.
	Expired

	// Exceeded indicates the server declared the maximum excursion exceeded.
	// Final state.
	Exceeded
)

// getStatusStrings returns a map of Status values to their string representations.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		StatusUnknown: "Unknown",
		Active:        "Active",
		Expired:       "Expired",
		Exceeded:      "Exceeded",
	}
}

// getValidStatusStrings returns a map of only valid Status values.
func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // StatusUnknown is intentionally excluded as it's invalid
	return map[Status]string{
		Active:   "Active",
		Expired:  "Expired",
		Exceeded: "Exceeded",
	}
}

// Validate checks if the Status value is valid.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the human-readable name of the status.
// This method implements the fmt.Stringer interface.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// IsTerminal reports whether the session admits no further mutation.
func (s Status) IsTerminal() bool {
	return s == Expired || s == Exceeded
}

// Alert is an authoritative stability alert delivered by the server. Any
// alert immediately forces the session to its terminal state regardless of
// the locally computed countdown; local computation is only an optimistic
// display estimate between polls.
type Alert string

const (
	// AlertNone means the server reported no alert.
	AlertNone Alert = ""
	// AlertMaxExcursionExceeded means the server declared the maximum
	// allowed excursion time exceeded.
	AlertMaxExcursionExceeded Alert = "MAX_EXCURSION_EXCEEDED"
	// AlertStabilityTimeExpired means the server declared the stability
	// window expired.
	AlertStabilityTimeExpired Alert = "STABILITY_TIME_EXPIRED"
)

// TerminalStatus maps a server alert to the session status it forces.
// Returns (StatusUnknown, false) for AlertNone or unrecognized alerts;
// unrecognized alerts are ignored like any other malformed response field.
func (a Alert) TerminalStatus() (Status, bool) {
	switch a {
	case AlertMaxExcursionExceeded:
		return Exceeded, true
	case AlertStabilityTimeExpired:
		return Expired, true
	default:
		return StatusUnknown, false
	}
}
