package route

import (
	"errors"

	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/pkg/guard"
)

// ErrVehicleIsNotConstructed is returned when using an improperly initialized Vehicle.
var ErrVehicleIsNotConstructed = errors.New("Vehicle must be created via NewVehicle constructor")

// Vehicle tracks the delivery vehicle's position, its index into the current
// route, and its display bearing. Only the vehicle advancement logic mutates
// it; every route rebuild resets it onto the new route via SnapTo.
type Vehicle struct {
	position  kernel.GeoPoint
	pathIndex int
	bearing   float64
	guard     guard.ConstructorGuard
}

// NewVehicle creates a vehicle anchored at the given starting position
// (typically the depot before departure) with path index 0 and bearing 0.
func NewVehicle(start kernel.GeoPoint) (*Vehicle, error) {
	if err := start.Validate(); err != nil {
		return nil, err
	}

	return &Vehicle{
		position: start,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the Vehicle instance was properly constructed.
func (v *Vehicle) Validate() error {
	if v == nil {
		return ErrVehicleIsNotConstructed
	}
	return v.guard.Validate(ErrVehicleIsNotConstructed)
}

// Position returns the vehicle's current position.
func (v *Vehicle) Position() kernel.GeoPoint {
	return v.position
}

// PathIndex returns the vehicle's index into the current route.
func (v *Vehicle) PathIndex() int {
	return v.pathIndex
}

// Bearing returns the display bearing in degrees [0..360) clockwise from
// north: the forward azimuth between the previous and current position.
func (v *Vehicle) Bearing() float64 {
	return v.bearing
}

// Advance moves the vehicle one path index forward along the route
// (simulated position mode: one step per tick regardless of real speed).
// At the final point the vehicle stays put.
func (v *Vehicle) Advance(r *Route) error {
	if err := errors.Join(v.Validate(), r.Validate()); err != nil {
		return err
	}

	if v.pathIndex >= r.Len()-1 {
		return nil
	}

	next, err := r.PointAt(v.pathIndex + 1)
	if err != nil {
		return err
	}

	v.updateBearing(next)
	v.pathIndex++
	v.position = next
	return nil
}

// SetPosition ingests an authoritative live position, recomputes the display
// bearing from the previous authoritative point, and maps the vehicle to the
// nearest route point at or after its current index. Only positions set here
// participate in arrival checks; interpolated display positions never do.
func (v *Vehicle) SetPosition(r *Route, position kernel.GeoPoint) error {
	if err := errors.Join(v.Validate(), r.Validate(), position.Validate()); err != nil {
		return err
	}

	v.updateBearing(position)
	v.position = position

	idx, err := r.NearestIndexFrom(v.pathIndex, position)
	if err != nil {
		return err
	}
	v.pathIndex = idx
	return nil
}

// SnapTo resets the vehicle onto a freshly rebuilt route: path index 0 and
// position at the route's first point. The visible position jump on rebuild
// is accepted behavior.
func (v *Vehicle) SnapTo(r *Route) error {
	if err := errors.Join(v.Validate(), r.Validate()); err != nil {
		return err
	}

	v.pathIndex = 0
	v.position = r.First()
	return nil
}

// updateBearing recomputes the forward azimuth towards next. Identical
// points leave the bearing unchanged so a stopped vehicle keeps its heading.
func (v *Vehicle) updateBearing(next kernel.GeoPoint) {
	if equal, err := v.position.IsEqual(next); err != nil || equal {
		return
	}
	if b, err := v.position.BearingTo(next); err == nil {
		v.bearing = b
	}
}
