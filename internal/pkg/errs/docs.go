// Package errs provides the standardized error types used across the
// cold-chain tracker: domain validation, repository lookups, and adapter
// failures all report through them.
//
// Error types for the common failure scenarios:
//   - ValueIsRequiredError: a required value is missing
//   - ValueIsInvalidError: a value is present but invalid
//   - ValueIsOutOfRangeError: a numeric value falls outside its bounds
//   - ObjectNotFoundError: a stop or record cannot be found
//
// Each type follows the same pattern: a sentinel variable (e.g.
// ErrValueIsRequired), a struct carrying details and an optional cause,
// constructors with and without cause, Error() for formatting, and Unwrap()
// returning the sentinel so errors.Is works against it.
package errs
