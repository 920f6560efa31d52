package routing

import (
	"context"
	"errors"

	"github.com/homeplan/scheduler/pkg/domain"
)

// ErrNoRoute is returned by a RoutingEngine when no route exists between two
// locations. The cache treats this as infinite distance rather than failing
// the whole solve.
var ErrNoRoute = errors.New("routing: no route between locations")

// RoutingEngine computes the travel duration between two locations. It is
// the seam between the scheduling pipeline and whatever computes real-world
// travel times: a local estimator for tests and small problems, or an HTTP
// call to an external routing service in production.
type RoutingEngine interface {
	Duration(ctx context.Context, from, to domain.Location) (int64, error)
}
