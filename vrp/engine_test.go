package vrp

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/routekit/cvrp/christofides"
	"github.com/routekit/cvrp/matching"
	"github.com/routekit/cvrp/matrixview"
	"github.com/routekit/cvrp/routegraph"
)

// TestEngineRunScenario1ExchangeThenRelocate: starting from [[0,2],[1,3]]
// the engine should reach an assignment equivalent to [[0,1],[2,3]]
// (cost 2), strictly better than the initial cost-14 assignment.
func TestEngineRunScenario1ExchangeThenRelocate(t *testing.T) {
	in := line4(t)
	initial := Solution{Routes: [][]int{{0, 2}, {1, 3}}}

	e, err := NewEngine(*in, initial)
	require.NoError(t, err)

	startInd := e.Indicators()
	require.InDelta(t, 14.0, startInd.Cost, 1e-9)

	final, err := e.Run(context.Background())
	require.NoError(t, err)

	require.True(t, e.Indicators().Less(startInd) || e.Indicators() == startInd)
	require.InDelta(t, 2.0, e.Indicators().Cost, 1e-9)
	require.Equal(t, 0, e.Indicators().Unassigned)

	total := 0
	for _, r := range final.Routes {
		total += len(r)
	}
	require.Equal(t, 4, total)
}

// TestEngineRunScenario4CapacityTight: one vehicle, cap 5, two jobs
// amount 3; exactly one must stay unassigned.
func TestEngineRunScenario4CapacityTight(t *testing.T) {
	in := twoJobInput(t, 5)
	e, err := NewEngine(*in, Solution{Routes: [][]int{{}}})
	require.NoError(t, err)

	_, err = e.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, e.Indicators().Unassigned)
}

// TestEngineRunScenario5SkillGating checks required/provided skill
// gating stops a job from being assigned to an unqualified vehicle.
func TestEngineRunScenario5SkillGating(t *testing.T) {
	in := line4(t)
	in.Jobs = in.Jobs[:1]
	in.Jobs[0].RequiredSkills = NewSkillSet(2)
	in.Vehicles[1].ProvidedSkills = NewSkillSet(2)

	e, err := NewEngine(*in, Solution{Routes: [][]int{{}, {}}})
	require.NoError(t, err)

	final, err := e.Run(context.Background())
	require.NoError(t, err)
	require.Empty(t, final.Routes[0])
	require.Equal(t, []int{0}, final.Routes[1])
}

func TestEngineRejectsVehicleCountMismatch(t *testing.T) {
	in := line4(t)
	_, err := NewEngine(*in, Solution{Routes: [][]int{{0, 1, 2, 3}}})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestEngineRejectsInfeasibleInitialSolution(t *testing.T) {
	in := twoJobInput(t, 1)
	_, err := NewEngine(*in, Solution{Routes: [][]int{{0, 1}}})
	require.ErrorIs(t, err, ErrInfeasibleInitialSolution)
}

func TestEngineRejectsRegretCoefficientOutOfRange(t *testing.T) {
	in := line4(t)
	_, err := NewEngine(*in, Solution{Routes: [][]int{{0, 1}, {2, 3}}}, WithRegretCoefficient(1.5))
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestEngineRunHonorsCancellation(t *testing.T) {
	in := line4(t)
	initial := Solution{Routes: [][]int{{0, 2}, {1, 3}}}
	e, err := NewEngine(*in, initial)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := e.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, initial.Routes, result.Routes)
}

func TestMapRefineErrTranslatesDisconnectedGraph(t *testing.T) {
	err := mapRefineErr(routegraph.ErrDisconnectedGraph)
	require.ErrorIs(t, err, ErrDisconnectedGraph)
}

func TestMapRefineErrTranslatesOddVertexCount(t *testing.T) {
	err := mapRefineErr(matching.ErrOddVertexCount)
	require.ErrorIs(t, err, ErrOddVertexCount)
}

func TestMapRefineErrWrapsUnderlyingError(t *testing.T) {
	wrapped := fmt.Errorf("submatrix 3: %w", routegraph.ErrDisconnectedGraph)
	err := mapRefineErr(wrapped)
	require.ErrorIs(t, err, ErrDisconnectedGraph)
}

func TestMapRefineErrReturnsNilForUnrelatedError(t *testing.T) {
	require.NoError(t, mapRefineErr(christofides.ErrEmptyMatrix))
	require.NoError(t, mapRefineErr(errors.New("some other failure")))
}

func TestCutCycleAtDepotAdjacentEndpoints(t *testing.T) {
	path := cutCycleAtDepot([]int{0, 1, 2, 3}, 0, 3)
	require.Equal(t, []int{0, 1, 2, 3}, path)
}

// TestCutCycleAtDepotNonAdjacentEndpoints: start and end land two apart
// in the cycle (positions 0 and 2); the splice still produces a valid
// start-to-end path over every vertex.
func TestCutCycleAtDepotNonAdjacentEndpoints(t *testing.T) {
	path := cutCycleAtDepot([]int{0, 2, 3, 1}, 0, 3)
	require.Equal(t, []int{0, 2, 1, 3}, path)
}

// TestRefineRouteWithDepotSubmatrixIncludesDepotLegs builds a 4-point
// line {0,1,2,3} with the vehicle's start at 0 and end at 3 and two
// stops at 1 and 2. The current route (visit 1 then 2) costs 3; the
// only alternative stop order costs 5, so refinement must leave the
// route untouched rather than accepting a worse order.
func TestRefineRouteWithDepotSubmatrixIncludesDepotLegs(t *testing.T) {
	m, err := matrixview.New(4, []float64{
		0, 1, 2, 3,
		1, 0, 1, 2,
		2, 1, 0, 1,
		3, 2, 1, 0,
	})
	require.NoError(t, err)

	start, end := 0, 3
	in := &Input{
		Matrix: m,
		Jobs: []Job{
			{Index: 1, Amount: Amounts{1}},
			{Index: 2, Amount: Amounts{1}},
		},
		Vehicles: []Vehicle{
			{Capacity: Amounts{10}, StartIndex: &start, EndIndex: &end},
		},
	}

	e, err := NewEngine(*in, Solution{Routes: [][]int{{0, 1}}})
	require.NoError(t, err)

	require.InDelta(t, 3.0, e.state.RouteCost(0), 1e-9)

	improved, err := e.refineRoute(0)
	require.NoError(t, err)
	require.False(t, improved)
	require.Equal(t, []int{0, 1}, e.state.solution.Routes[0])
}

func TestEngineLogHookFiresOnAcceptedMove(t *testing.T) {
	in := line4(t)
	initial := Solution{Routes: [][]int{{0, 2}, {1, 3}}}

	var events []LogEvent
	e, err := NewEngine(*in, initial, WithLogHook(func(ev LogEvent) {
		events = append(events, ev)
	}))
	require.NoError(t, err)

	_, err = e.Run(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, events)
	for _, ev := range events {
		require.NotEmpty(t, ev.RunID)
		require.Greater(t, ev.Gain, 0.0)
	}
}
