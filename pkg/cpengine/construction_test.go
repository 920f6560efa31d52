package cpengine

import (
	"context"
	"testing"

	"github.com/homeplan/scheduler/pkg/problem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructAssignsFeasibleSingleCarerVisits(t *testing.T) {
	carers, visits := simpleFixture()
	m, data := buildModel(t, carers, visits)

	a, err := Construct(context.Background(), m)
	require.NoError(t, err)

	for _, v := range visits {
		nodes := data.GetNodes(v.ID)
		assert.NotEqualf(t, UnassignedVehicle, a.Vehicle[nodes[0]], "visit %d left dropped, expected a feasible insertion", v.ID)
	}
}

func TestConstructSynchronisesTwoCarerVisit(t *testing.T) {
	carers, visits := twoCarerModelFixture()
	m, data := buildModel(t, carers, visits)

	a, err := Construct(context.Background(), m)
	require.NoError(t, err)

	nodes := data.GetNodes(visits[0].ID)
	vA, vB := a.Vehicle[nodes[0]], a.Vehicle[nodes[1]]
	require.NotEqual(t, UnassignedVehicle, vA, "expected both sides of the two-carer visit assigned")
	require.NotEqual(t, UnassignedVehicle, vB, "expected both sides of the two-carer visit assigned")
	assert.NotEqual(t, vA, vB, "two-carer visit must be served by distinct vehicles")
	assert.Equal(t, a.Cumul[nodes[0]], a.Cumul[nodes[1]], "two-carer visit must start in sync")
}

func TestConstructDropsTwoCarerVisitWhenOnlyOneCarerAvailable(t *testing.T) {
	carers, visits := twoCarerModelFixture()
	carers = carers[:1] // only one carer: no distinct second vehicle possible
	m, data := buildModel(t, carers, visits)

	a, err := Construct(context.Background(), m)
	require.NoError(t, err)

	nodes := data.GetNodes(visits[0].ID)
	assert.Equal(t, UnassignedVehicle, a.Vehicle[nodes[0]], "expected both sides of the two-carer visit left dropped")
	assert.Equal(t, UnassignedVehicle, a.Vehicle[nodes[1]], "expected both sides of the two-carer visit left dropped")
}

func TestBestInsertionReturnsFalseWhenNoVehicleQualifies(t *testing.T) {
	carers, visits := simpleFixture()
	// Require a skill no carer has.
	visits[0].RequiredSkills = []string{"nursing"}
	m, data := buildModel(t, carers, visits)

	a := NewAssignment(m)
	node := data.GetNodes(visits[0].ID)[0]
	_, ok, err := bestInsertion(context.Background(), m, a, node)
	require.NoError(t, err)
	assert.False(t, ok, "expected no feasible insertion when no vehicle holds the required skill")
}

func TestInsertAtPreservesOrder(t *testing.T) {
	route := []problem.NodeIndex{1, 2, 4}
	out := insertAt(route, 3, 2)
	want := []problem.NodeIndex{1, 2, 3, 4}
	assert.Equal(t, want, out)
}
