package domain

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidCoordinates is returned when a latitude or longitude is outside
// the valid range.
var ErrInvalidCoordinates = errors.New("coordinates out of range")

// Coordinates is an immutable geographic point in decimal degrees.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Validate checks that the point lies within [-90,90] x [-180,180].
func (c Coordinates) Validate() error {
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("%w: latitude %.4f must be between -90 and 90", ErrInvalidCoordinates, c.Latitude)
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("%w: longitude %.4f must be between -180 and 180", ErrInvalidCoordinates, c.Longitude)
	}
	return nil
}

// earthRadiusKm is the mean Earth radius used for great-circle distances.
const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between two points in
// kilometers.
func HaversineKm(a, b Coordinates) float64 {
	lat1 := Deg2Rad(a.Latitude)
	lat2 := Deg2Rad(b.Latitude)
	dLat := Deg2Rad(b.Latitude - a.Latitude)
	dLon := Deg2Rad(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}
