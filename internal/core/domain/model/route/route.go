package route

import (
	"errors"
	"time"

	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/pkg/errs"
	"coldchain/internal/pkg/guard"
)

// Domain errors for route operations.
var (
	// ErrLegNeedsTwoPoints is returned when constructing a leg from fewer than two points.
	ErrLegNeedsTwoPoints = errs.NewValueIsRequiredError("leg requires at least two points")
	// ErrRouteIsEmpty is returned when building a route with no appended legs.
	ErrRouteIsEmpty = errs.NewValueIsRequiredError("route requires at least one leg")
	// ErrRouteIsNotConstructed is returned when using an improperly initialized Route.
	ErrRouteIsNotConstructed = errors.New("Route must be created via Builder.Build")
	// ErrIndexOutOfRange is returned for path indexes outside the route.
	ErrIndexOutOfRange = errors.New("path index is out of range")
)

// Leg is one oracle-returned segment of geometry between two consecutive
// waypoints, optionally annotated with the provider's reported distance and
// duration. A fallback leg carries no metrics.
type Leg struct {
	points          []kernel.GeoPoint
	distanceMeters  float64
	durationSeconds float64
	hasMetrics      bool
}

// NewLeg creates a leg from provider geometry with reported metrics.
func NewLeg(points []kernel.GeoPoint, distanceMeters float64, durationSeconds float64) (Leg, error) {
	if err := validateLegPoints(points); err != nil {
		return Leg{}, err
	}

	return Leg{
		points:          clonePoints(points),
		distanceMeters:  distanceMeters,
		durationSeconds: durationSeconds,
		hasMetrics:      distanceMeters > 0 && durationSeconds > 0,
	}, nil
}

// NewFallbackLeg creates the degraded two-point straight segment used when
// the routing oracle is unavailable. It carries no reported metrics.
func NewFallbackLeg(origin kernel.GeoPoint, destination kernel.GeoPoint) (Leg, error) {
	if err := errors.Join(origin.Validate(), destination.Validate()); err != nil {
		return Leg{}, err
	}

	return Leg{
		points: []kernel.GeoPoint{origin, destination},
	}, nil
}

// Points returns a copy of the leg geometry.
func (l Leg) Points() []kernel.GeoPoint {
	return clonePoints(l.points)
}

// HasMetrics reports whether the provider supplied distance and duration.
func (l Leg) HasMetrics() bool {
	return l.hasMetrics
}

// DistanceMeters returns the provider-reported distance, or 0 without metrics.
func (l Leg) DistanceMeters() float64 {
	return l.distanceMeters
}

// DurationSeconds returns the provider-reported duration, or 0 without metrics.
func (l Leg) DurationSeconds() float64 {
	return l.durationSeconds
}

func validateLegPoints(points []kernel.GeoPoint) error {
	if len(points) < 2 {
		return ErrLegNeedsTwoPoints
	}
	for _, p := range points {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// legSpan records which slice of the stitched point sequence one leg covers,
// so ETA estimation can prefer the provider's reported duration per leg.
type legSpan struct {
	startIdx        int // index of the leg's first point in Route.points
	endIdx          int // index of the leg's last point in Route.points
	durationSeconds float64
	hasMetrics      bool
}

// Route is the immutable stitched path from the vehicle anchor through all
// pending stops back to the depot. A Route is only ever replaced whole,
// never mutated; ownership of construction is exclusive to the route
// planner, all other components read it.
type Route struct {
	points []kernel.GeoPoint
	spans  []legSpan
	guard  guard.ConstructorGuard
}

// Builder accumulates legs into a Route, dropping the duplicate seam point
// when the last stitched point equals the first point of the incoming leg.
type Builder struct {
	points []kernel.GeoPoint
	spans  []legSpan
}

// NewBuilder creates an empty route builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Append stitches one leg onto the accumulated path.
func (b *Builder) Append(leg Leg) error {
	pts := leg.points
	if len(pts) < 2 {
		return ErrLegNeedsTwoPoints
	}

	if len(b.points) > 0 {
		last := b.points[len(b.points)-1]
		if equal, err := last.IsEqual(pts[0]); err != nil {
			return err
		} else if equal {
			pts = pts[1:]
		}
	}

	start := len(b.points) - 1
	if start < 0 {
		start = 0
	}

	b.points = append(b.points, pts...)
	b.spans = append(b.spans, legSpan{
		startIdx:        start,
		endIdx:          len(b.points) - 1,
		durationSeconds: leg.durationSeconds,
		hasMetrics:      leg.hasMetrics,
	})
	return nil
}

// Build produces the immutable Route. At least one leg must have been appended.
func (b *Builder) Build() (*Route, error) {
	if len(b.points) < 2 {
		return nil, ErrRouteIsEmpty
	}

	return &Route{
		points: clonePoints(b.points),
		spans:  append([]legSpan(nil), b.spans...),
		guard:  guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the Route was produced by a Builder.
func (r *Route) Validate() error {
	if r == nil {
		return ErrRouteIsNotConstructed
	}
	return r.guard.Validate(ErrRouteIsNotConstructed)
}

// Len returns the number of points in the route.
func (r *Route) Len() int {
	return len(r.points)
}

// Points returns a copy of the full stitched geometry.
func (r *Route) Points() []kernel.GeoPoint {
	return clonePoints(r.points)
}

// PointAt returns the route point at the given index.
func (r *Route) PointAt(idx int) (kernel.GeoPoint, error) {
	if idx < 0 || idx >= len(r.points) {
		return kernel.GeoPoint{}, ErrIndexOutOfRange
	}
	return r.points[idx], nil
}

// First returns the route's anchor point.
func (r *Route) First() kernel.GeoPoint {
	return r.points[0]
}

// Last returns the route's final point (the depot return).
func (r *Route) Last() kernel.GeoPoint {
	return r.points[len(r.points)-1]
}

// RemainingDistance sums great-circle distances between consecutive points
// from the given index to the end of the route.
func (r *Route) RemainingDistance(fromIdx int) (float64, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}
	if fromIdx < 0 || fromIdx >= len(r.points) {
		return 0, ErrIndexOutOfRange
	}

	var total float64
	for i := fromIdx; i < len(r.points)-1; i++ {
		d, err := r.points[i].DistanceTo(r.points[i+1])
		if err != nil {
			return 0, err
		}
		total += d
	}
	return total, nil
}

// ETA estimates the remaining travel time from the given index to the end.
//
// Legs that lie entirely ahead of the index and carry provider metrics
// contribute their reported duration; everything else (partially traversed
// legs and fallback legs) is derived from great-circle distance at the
// assumed speed.
func (r *Route) ETA(fromIdx int, assumedSpeedMps float64) (time.Duration, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}
	if fromIdx < 0 || fromIdx >= len(r.points) {
		return 0, ErrIndexOutOfRange
	}
	if assumedSpeedMps <= 0 {
		return 0, errs.NewValueIsInvalidError("assumedSpeedMps must be positive")
	}

	var seconds float64
	for _, span := range r.spans {
		if span.endIdx <= fromIdx {
			continue
		}

		if span.hasMetrics && span.startIdx >= fromIdx {
			seconds += span.durationSeconds
			continue
		}

		start := span.startIdx
		if start < fromIdx {
			start = fromIdx
		}
		for i := start; i < span.endIdx; i++ {
			d, err := r.points[i].DistanceTo(r.points[i+1])
			if err != nil {
				return 0, err
			}
			seconds += d / assumedSpeedMps
		}
	}

	return time.Duration(seconds * float64(time.Second)), nil
}

// NearestIndexFrom returns the index of the route point closest to the given
// position, searching only at or after fromIdx so a live position update
// never maps the vehicle backwards along the path.
func (r *Route) NearestIndexFrom(fromIdx int, position kernel.GeoPoint) (int, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}
	if fromIdx < 0 || fromIdx >= len(r.points) {
		return 0, ErrIndexOutOfRange
	}

	best := fromIdx
	bestDist := -1.0
	for i := fromIdx; i < len(r.points); i++ {
		d, err := position.DistanceTo(r.points[i])
		if err != nil {
			return 0, err
		}
		if bestDist < 0 || d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best, nil
}

func clonePoints(points []kernel.GeoPoint) []kernel.GeoPoint {
	return append([]kernel.GeoPoint(nil), points...)
}
