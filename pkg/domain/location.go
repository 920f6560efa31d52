package domain

import (
	"encoding/json"
	"fmt"
)

// coordScale converts a decimal-degree coordinate into the fixed-point
// representation Location stores internally. 1e7 gives sub-centimeter
// resolution, matching what OSRM-style routing engines expect on the wire.
const coordScale = 1e7

// Location is a geographic point stored as fixed-point integer degrees so
// that equality and map-keying are exact, independent of floating point
// rounding in whatever produced the coordinate.
type Location struct {
	latFixed int64
	lonFixed int64
}

// NewLocation builds a Location from decimal-degree latitude and longitude.
func NewLocation(lat, lon float64) Location {
	return Location{
		latFixed: int64(lat * coordScale),
		lonFixed: int64(lon * coordScale),
	}
}

// Latitude returns the decimal-degree latitude.
func (l Location) Latitude() float64 {
	return float64(l.latFixed) / coordScale
}

// Longitude returns the decimal-degree longitude.
func (l Location) Longitude() float64 {
	return float64(l.lonFixed) / coordScale
}

// Equal reports exact equality on the fixed-point representation.
func (l Location) Equal(other Location) bool {
	return l.latFixed == other.latFixed && l.lonFixed == other.lonFixed
}

// Key returns a value usable as a map key for deduplicating locations, e.g.
// in the location cache.
func (l Location) Key() [2]int64 {
	return [2]int64{l.latFixed, l.lonFixed}
}

func (l Location) String() string {
	return fmt.Sprintf("(%.7f,%.7f)", l.Latitude(), l.Longitude())
}

// locationJSON is the wire representation of a Location: decimal-degree
// latitude/longitude, matching the problem file format spec.md §6 defines.
// Location's fields are unexported so its equality and map-keying stay
// exact on the fixed-point representation regardless of what marshals it;
// these methods are the seam where that representation meets JSON.
type locationJSON struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// MarshalJSON implements json.Marshaler.
func (l Location) MarshalJSON() ([]byte, error) {
	return json.Marshal(locationJSON{Latitude: l.Latitude(), Longitude: l.Longitude()})
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *Location) UnmarshalJSON(data []byte) error {
	var lj locationJSON
	if err := json.Unmarshal(data, &lj); err != nil {
		return err
	}
	*l = NewLocation(lj.Latitude, lj.Longitude)
	return nil
}
