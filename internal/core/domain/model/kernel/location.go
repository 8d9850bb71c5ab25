package kernel

import (
	"errors"
	"fmt"
	"math"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

const (
	// LocationMinLatitude is the minimum valid latitude in degrees.
	LocationMinLatitude float64 = -90
	// LocationMaxLatitude is the maximum valid latitude in degrees.
	LocationMaxLatitude float64 = 90
	// LocationMinLongitude is the minimum valid longitude in degrees.
	LocationMinLongitude float64 = -180
	// LocationMaxLongitude is the maximum valid longitude in degrees.
	LocationMaxLongitude float64 = 180

	// earthRadiusKm is the mean Earth radius used for distance calculations.
	earthRadiusKm = 6371.0
)

// ErrLocationIsNotConstructed is returned when attempting to use an
// improperly initialized Location. Locations must be created through
// NewLocation to guarantee valid coordinates.
var ErrLocationIsNotConstructed = errs.NewValueIsRequiredError(
	"location must be created via NewLocation constructor")

// Location is an immutable value object representing a geographic position
// as a latitude/longitude pair in decimal degrees. The zero value is invalid
// and fails validation - use NewLocation to create instances.
//
// Example:
//
//	loc, err := kernel.NewLocation(40.7128, -74.0060)
//	if err != nil {
//	    // Handle validation error
//	}
//	fmt.Println(loc) // Output: Location(40.712800,-74.006000)
type Location struct { //nolint:recvcheck //using for validation
	latitude  float64
	longitude float64
	guard     guard.ConstructorGuard
}

// NewLocation creates a Location with the given coordinates. Latitude must be
// within [-90, 90] and longitude within [-180, 180], both in decimal degrees.
func NewLocation(latitude float64, longitude float64) (Location, error) {
	loc := Location{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(loc.setLatitude(latitude), loc.setLongitude(longitude)); err != nil {
		return Location{}, err
	}

	return loc, nil
}

// Validate checks that the Location was constructed via NewLocation.
// A zero-value Location fails this check.
func (l Location) Validate() error {
	return l.guard.Validate(ErrLocationIsNotConstructed)
}

// Latitude returns the latitude in decimal degrees.
func (l Location) Latitude() float64 {
	return l.latitude
}

// Longitude returns the longitude in decimal degrees.
func (l Location) Longitude() float64 {
	return l.longitude
}

// String implements fmt.Stringer.
func (l Location) String() string {
	return fmt.Sprintf("Location(%f,%f)", l.latitude, l.longitude)
}

// IsEqual compares two locations for coordinate equality. Both locations must
// be properly constructed for the comparison to succeed.
func (l Location) IsEqual(other Location) (bool, error) {
	if err := errors.Join(l.Validate(), other.Validate()); err != nil {
		return false, err
	}

	return l == other, nil
}

// DistanceTo calculates the great-circle distance in kilometers between two
// locations using the haversine formula. Both locations must be properly
// constructed for the calculation to succeed.
func (l Location) DistanceTo(other Location) (float64, error) {
	if err := errors.Join(l.Validate(), other.Validate()); err != nil {
		return 0, err
	}

	lat1 := l.latitude * math.Pi / 180
	lat2 := other.latitude * math.Pi / 180
	dLat := (other.latitude - l.latitude) * math.Pi / 180
	dLon := (other.longitude - l.longitude) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c, nil
}

// setLatitude sets the latitude with range validation.
// Note: pointer receiver is used intentionally for self-encapsulated
// validation during construction, while all public methods use value receivers.
func (l *Location) setLatitude(latitude float64) error {
	if latitude < LocationMinLatitude || latitude > LocationMaxLatitude {
		return errs.NewValueIsOutOfRangeError("latitude", latitude, LocationMinLatitude, LocationMaxLatitude)
	}

	l.latitude = latitude
	return nil
}

// setLongitude sets the longitude with range validation.
func (l *Location) setLongitude(longitude float64) error {
	if longitude < LocationMinLongitude || longitude > LocationMaxLongitude {
		return errs.NewValueIsOutOfRangeError("longitude", longitude, LocationMinLongitude, LocationMaxLongitude)
	}

	l.longitude = longitude
	return nil
}
