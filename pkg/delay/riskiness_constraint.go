package delay

import (
	"context"

	"github.com/homeplan/scheduler/pkg/cpengine"
)

// DelayRiskinessConstraint turns a solution's dropped-visit count and
// sampled delay into a single scalar the delay-reduction solver variant
// minimises in place of travel cost.
type DelayRiskinessConstraint struct {
	tracker *Tracker
}

// NewDelayRiskinessConstraint binds a DelayRiskinessConstraint to tracker.
func NewDelayRiskinessConstraint(tracker *Tracker) *DelayRiskinessConstraint {
	return &DelayRiskinessConstraint{tracker: tracker}
}

// Riskiness returns 1000 times a's dropped-visit count plus the sum of
// every positive per-scenario delay across every vehicle's committed
// route, per spec's delay/risk model.
func (c *DelayRiskinessConstraint) Riskiness(ctx context.Context, a *cpengine.Assignment) (int64, error) {
	model := c.tracker.Model
	riskiness := int64(a.DroppedCount()) * 1000

	for vehicle := cpengine.VehicleIndex(0); int(vehicle) < model.Data.Vehicles(); vehicle++ {
		delayMatrix, err := c.tracker.Delay(ctx, a, vehicle)
		if err != nil {
			return 0, err
		}
		for _, scenarios := range delayMatrix {
			for _, d := range scenarios {
				if d > 0 {
					riskiness += d
				}
			}
		}
	}

	return riskiness, nil
}
