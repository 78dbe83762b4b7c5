package geo

import (
	"errors"
	"fmt"
	"math"
)

var ErrOutOfRange = errors.New("coordinate out of range")

// Coordinate is a latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat" msgpack:"lat"`
	Lng float64 `json:"lng" msgpack:"lng"`
}

func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("%w: latitude %v must be between -90 and 90", ErrOutOfRange, c.Lat)
	}
	if math.IsNaN(c.Lng) || math.IsInf(c.Lng, 0) || c.Lng < -180 || c.Lng > 180 {
		return fmt.Errorf("%w: longitude %v must be between -180 and 180", ErrOutOfRange, c.Lng)
	}
	return nil
}

// MapsURL links the coordinate on Google Maps.
func (c Coordinate) MapsURL() string {
	return fmt.Sprintf("https://www.google.com/maps/@%v,%v", c.Lat, c.Lng)
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%v, %v)", c.Lat, c.Lng)
}
