// Package route implements the stitched delivery route and the vehicle
// tracked along it.
//
// A Route is assembled by concatenating oracle-returned legs with duplicate
// seam points removed, and is replaced atomically on every rebuild rather
// than mutated. The Vehicle entity advances along the route either one index
// per tick (simulated mode) or by ingesting authoritative live positions,
// and is snapped to index 0 of each new route after a rebuild.
package route
