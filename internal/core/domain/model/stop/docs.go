// Package stop implements the Stop aggregate and its lifecycle state machine.
//
// A stop is one waypoint of the delivery route: either a depot anchor or a
// patient destination carrying a medication order. Patient stops start
// Pending and settle exactly once, as Delivered when the vehicle arrives
// within the 30-meter threshold, or as Spoiled when the order's stability
// session reaches a terminal state. Settled stops ignore all further
// arrival and expiry signals.
//
// Every settling transition is the signal to rebuild the active route;
// aggregate methods report whether a transition actually occurred so callers
// can coalesce rebuild requests.
package stop
