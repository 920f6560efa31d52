package delay

import (
	"context"

	"github.com/homeplan/scheduler/pkg/cpengine"
)

// DelayProbabilityConstraint reports the worst-case probability, across
// every visited node in a solution, that the node runs late under the
// tracker's sampled scenarios.
type DelayProbabilityConstraint struct {
	tracker *Tracker
}

// NewDelayProbabilityConstraint binds a DelayProbabilityConstraint to
// tracker.
func NewDelayProbabilityConstraint(tracker *Tracker) *DelayProbabilityConstraint {
	return &DelayProbabilityConstraint{tracker: tracker}
}

// WorstDelayProbability returns, as a percentage in [0, 100], the highest
// per-node probability of a positive delay across every vehicle's
// committed route in a. An assignment with no visited nodes reports 0.
func (c *DelayProbabilityConstraint) WorstDelayProbability(ctx context.Context, a *cpengine.Assignment) (float64, error) {
	model := c.tracker.Model
	var worst float64

	for vehicle := cpengine.VehicleIndex(0); int(vehicle) < model.Data.Vehicles(); vehicle++ {
		delayMatrix, err := c.tracker.Delay(ctx, a, vehicle)
		if err != nil {
			return 0, err
		}
		for _, scenarios := range delayMatrix {
			p := nodeDelayProbability(scenarios)
			if p > worst {
				worst = p
			}
		}
	}

	return worst, nil
}

func nodeDelayProbability(scenarios []int64) float64 {
	if len(scenarios) == 0 {
		return 0
	}
	var positive int
	for _, d := range scenarios {
		if d > 0 {
			positive++
		}
	}
	return 100 * float64(positive) / float64(len(scenarios))
}
