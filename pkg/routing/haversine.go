package routing

import (
	"context"
	"math"

	"github.com/homeplan/scheduler/pkg/domain"
)

const earthRadiusMeters = 6371000.0

// HaversineEngine estimates travel time from great-circle distance at a
// fixed average speed. It never returns ErrNoRoute; it exists for tests,
// small benchmark problems, and as a fallback when no external routing
// service is configured.
type HaversineEngine struct {
	// SpeedMetersPerSecond is the assumed average travel speed. Defaults to
	// roughly 30 km/h (urban driving with stops) when zero.
	SpeedMetersPerSecond float64
}

func (e HaversineEngine) speed() float64 {
	if e.SpeedMetersPerSecond > 0 {
		return e.SpeedMetersPerSecond
	}
	return 30000.0 / 3600.0
}

// Duration implements RoutingEngine.
func (e HaversineEngine) Duration(_ context.Context, from, to domain.Location) (int64, error) {
	if from.Equal(to) {
		return 0, nil
	}
	meters := haversineMeters(from, to)
	seconds := meters / e.speed()
	return int64(math.Ceil(seconds)), nil
}

func haversineMeters(a, b domain.Location) float64 {
	lat1 := a.Latitude() * math.Pi / 180
	lat2 := b.Latitude() * math.Pi / 180
	dLat := lat2 - lat1
	dLon := (b.Longitude() - a.Longitude()) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusMeters * c
}
