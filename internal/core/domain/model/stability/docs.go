// Package stability implements the per-order excursion tracker: the
// countdown of allowed unsafe-temperature time for a shipment.
//
// Each tracked order has one Session holding the static configuration
// (maximum excursion budget and safe temperature interval), the accumulated
// excursion time, and whether the shipment is currently outside its safe
// range. Temperature samples toggle the excursion flag on boundary
// crossings; a periodic clock folds real wall-clock time into the elapsed
// total while the flag is set.
//
// The local countdown is only an optimistic estimate between server polls.
// The stability server is authoritative: an explicit alert in any response
// forces the session terminal immediately, whatever the local value says.
// Sessions survive process restarts through RestoreSession, which bridges
// the interval during which the tracker was not running.
package stability
