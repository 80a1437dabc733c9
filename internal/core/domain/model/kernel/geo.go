package kernel

import (
	"errors"
	"fmt"
	"math"

	"coldchain/internal/pkg/errs"
	"coldchain/internal/pkg/guard"
)

const (
	// LatitudeMin is the minimum valid latitude in degrees.
	LatitudeMin = -90.0
	// LatitudeMax is the maximum valid latitude in degrees.
	LatitudeMax = 90.0
	// LongitudeMin is the minimum valid longitude in degrees.
	LongitudeMin = -180.0
	// LongitudeMax is the maximum valid longitude in degrees.
	LongitudeMax = 180.0

	// earthRadiusMeters is the mean Earth radius used for great-circle distances.
	earthRadiusMeters = 6371000.0
)

// ErrGeoPointIsNotConstructed is returned when attempting to use an improperly
// initialized GeoPoint. GeoPoints must be created via the NewGeoPoint constructor.
var ErrGeoPointIsNotConstructed = errs.NewValueIsRequiredError(
	"geo point must be created via NewGeoPoint constructor")

// GeoPoint represents a geographic position with validated coordinates.
// GeoPoint is an immutable value object; the zero value is invalid and fails
// validation, so instances must be created through NewGeoPoint.
//
// Example:
//
//	p, err := kernel.NewGeoPoint(41.3851, 2.1734)
//	if err != nil {
//	    // Handle validation error
//	}
//	fmt.Printf("Position: %s", p) // Output: GeoPoint(41.385100,2.173400)
type GeoPoint struct { //nolint:recvcheck //using for validation
	lat   float64
	lon   float64
	guard guard.ConstructorGuard
}

// NewGeoPoint creates a GeoPoint from latitude and longitude in degrees.
// Latitude must be within [-90..90] and longitude within [-180..180];
// otherwise a validation error is returned.
func NewGeoPoint(lat float64, lon float64) (GeoPoint, error) {
	p := GeoPoint{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(p.setLat(lat), p.setLon(lon)); err != nil {
		return GeoPoint{}, err
	}

	return p, nil
}

// Validate checks if the GeoPoint was properly constructed via NewGeoPoint.
// The zero value fails this validation.
func (p GeoPoint) Validate() error {
	return p.guard.Validate(ErrGeoPointIsNotConstructed)
}

// Lat returns the latitude in degrees.
func (p GeoPoint) Lat() float64 {
	return p.lat
}

// Lon returns the longitude in degrees.
func (p GeoPoint) Lon() float64 {
	return p.lon
}

// String returns a human-readable representation in the format
// "GeoPoint(lat,lon)" with six decimal places (~0.1m precision).
// This method implements the fmt.Stringer interface.
func (p GeoPoint) String() string {
	return fmt.Sprintf("GeoPoint(%.6f,%.6f)", p.lat, p.lon)
}

// IsEqual compares two geo points for exact coordinate equality.
// Both points must be properly constructed for the comparison to succeed.
// Exact float comparison is intentional: route seam deduplication relies on
// the routing provider returning byte-identical endpoints between legs.
func (p GeoPoint) IsEqual(other GeoPoint) (bool, error) {
	if err := errors.Join(p.Validate(), other.Validate()); err != nil {
		return false, err
	}

	return p.lat == other.lat && p.lon == other.lon, nil
}

// DistanceTo calculates the great-circle (haversine) distance in meters
// between two geo points. Both points must be properly constructed.
//
// Example:
//
//	bcn, _ := kernel.NewGeoPoint(41.3851, 2.1734)
//	mad, _ := kernel.NewGeoPoint(40.4168, -3.7038)
//	meters, err := bcn.DistanceTo(mad) // ~505 km
func (p GeoPoint) DistanceTo(other GeoPoint) (float64, error) {
	if err := errors.Join(p.Validate(), other.Validate()); err != nil {
		return 0, err
	}

	lat1 := p.lat * math.Pi / 180
	lat2 := other.lat * math.Pi / 180
	dLat := (other.lat - p.lat) * math.Pi / 180
	dLon := (other.lon - p.lon) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c, nil
}

// BearingTo calculates the forward azimuth from this point to another,
// in degrees [0..360) clockwise from north. Used only for display orientation.
func (p GeoPoint) BearingTo(other GeoPoint) (float64, error) {
	if err := errors.Join(p.Validate(), other.Validate()); err != nil {
		return 0, err
	}

	lat1 := p.lat * math.Pi / 180
	lat2 := other.lat * math.Pi / 180
	dLon := (other.lon - p.lon) * math.Pi / 180

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)

	deg := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(deg+360, 360), nil
}

// Interpolate returns the point a fraction t of the way from this point to
// other, with t clamped to [0..1]. Linear interpolation is sufficient for the
// sub-step display smoothing it serves; interpolated points are never used
// for arrival checks.
func (p GeoPoint) Interpolate(other GeoPoint, t float64) (GeoPoint, error) {
	if err := errors.Join(p.Validate(), other.Validate()); err != nil {
		return GeoPoint{}, err
	}

	t = math.Max(0, math.Min(1, t))
	return NewGeoPoint(
		p.lat+(other.lat-p.lat)*t,
		p.lon+(other.lon-p.lon)*t,
	)
}

// setLat sets the latitude with validation.
// Note: pointer receiver by design for self-encapsulated construction validation.
func (p *GeoPoint) setLat(lat float64) error {
	if lat < LatitudeMin || lat > LatitudeMax {
		return errs.NewValueIsOutOfRangeError("lat", lat, LatitudeMin, LatitudeMax)
	}

	p.lat = lat
	return nil
}

// setLon sets the longitude with validation.
// Note: pointer receiver by design for self-encapsulated construction validation.
func (p *GeoPoint) setLon(lon float64) error {
	if lon < LongitudeMin || lon > LongitudeMax {
		return errs.NewValueIsOutOfRangeError("lon", lon, LongitudeMin, LongitudeMax)
	}

	p.lon = lon
	return nil
}
