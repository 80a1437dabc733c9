package services

import (
	"errors"
	"sync"

	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/stability"
)

// ErrSessionNotFound is returned when a stability session is requested for an
// order that has no registered session. This happens before the session has
// been started or after it has been removed.
var ErrSessionNotFound = errors.New("stability session not found")

// sessionEntry pairs a session with its own lock so mutations for different
// orders never contend with each other.
type sessionEntry struct {
	mu      sync.Mutex
	session *stability.Session
}

// SessionRegistry is the in-memory registry of stability sessions keyed by
// order ID.
//
// Key responsibilities:
//   - Holding the live session for every order with an active countdown
//   - Enforcing single-writer access per order: telemetry classification,
//     periodic ticking and server alerts for the same order are serialized
//   - Iterating all sessions for the periodic stability tick
//
// Business rules:
//   - At most one session exists per order
//   - Sessions for different orders are mutated independently and
//     concurrently
type SessionRegistry struct {
	mu      sync.RWMutex
	entries map[kernel.UUID]*sessionEntry
}

// NewSessionRegistry creates an empty SessionRegistry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		entries: make(map[kernel.UUID]*sessionEntry),
	}
}

// Put registers the session for its order, replacing any existing one.
//
// Parameters:
//   - session: The session to register (must be valid)
//
// Returns:
//   - error: Validation error when the session is nil or not constructed
func (r *SessionRegistry) Put(session *stability.Session) error {
	if err := session.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[session.OrderID()] = &sessionEntry{session: session}

	return nil
}

// Remove drops the session for the given order. Removing an unknown order is
// a no-op.
func (r *SessionRegistry) Remove(orderID kernel.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, orderID)
}

// Has reports whether a session is registered for the given order.
func (r *SessionRegistry) Has(orderID kernel.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.entries[orderID]

	return ok
}

// WithSession runs fn with the order's session while holding that order's
// lock, serializing it against every other mutation of the same session.
//
// Parameters:
//   - orderID: The order whose session to access
//   - fn: Callback receiving the locked session
//
// Returns:
//   - error: ErrSessionNotFound when no session is registered, otherwise
//     whatever fn returns
func (r *SessionRegistry) WithSession(orderID kernel.UUID, fn func(*stability.Session) error) error {
	r.mu.RLock()
	entry, ok := r.entries[orderID]
	r.mu.RUnlock()

	if !ok {
		return ErrSessionNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	return fn(entry.session)
}

// ForEach runs fn for every registered session, taking each order's lock in
// turn. Iteration continues through individual errors; the first error
// encountered is returned after the full pass.
//
// Parameters:
//   - fn: Callback receiving each order ID and its locked session
//
// Returns:
//   - error: The first error fn returned, or nil
func (r *SessionRegistry) ForEach(fn func(kernel.UUID, *stability.Session) error) error {
	r.mu.RLock()
	entries := make(map[kernel.UUID]*sessionEntry, len(r.entries))
	for id, entry := range r.entries {
		entries[id] = entry
	}
	r.mu.RUnlock()

	var firstErr error

	for id, entry := range entries {
		entry.mu.Lock()
		err := fn(id, entry.session)
		entry.mu.Unlock()

		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
