package vrp

import (
	"testing"

	"github.com/routekit/cvrp/matrixview"
	"github.com/stretchr/testify/require"
)

// line4 builds the 4-job line fixture from scenario 1: jobs at positions
// 1, 2, 8, 9 on a line, each amount 3, matrix indices 0..3.
func line4(t *testing.T) *Input {
	t.Helper()
	coords := []float64{1, 2, 8, 9}
	n := len(coords)
	flat := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			d := coords[i] - coords[j]
			if d < 0 {
				d = -d
			}
			flat[i*n+j] = d
		}
	}
	m, err := matrixview.New(n, flat)
	require.NoError(t, err)

	jobs := make([]Job, n)
	for i := range jobs {
		jobs[i] = Job{Index: i, Amount: Amounts{3}}
	}
	return &Input{
		Matrix: m,
		Jobs:   jobs,
		Vehicles: []Vehicle{
			{Capacity: Amounts{10}},
			{Capacity: Amounts{10}},
		},
	}
}

func TestStateFwdBwdCostNoDepot(t *testing.T) {
	in := line4(t)
	s := newState(in, Solution{Routes: [][]int{{0, 2}, {1, 3}}})

	require.Equal(t, 0.0, s.FwdCost(0, 0))
	require.Equal(t, 7.0, s.FwdCost(0, 1)) // |1-8| = 7
	require.Equal(t, 7.0, s.BwdCost(0, 0))
	require.Equal(t, 0.0, s.BwdCost(0, 1))
}

func TestStateRouteCostMatchesScenario1Initial(t *testing.T) {
	in := line4(t)
	s := newState(in, Solution{Routes: [][]int{{0, 2}, {1, 3}}})

	// vehicle 0: 0(@1) -> 2(@8), cost 7; vehicle 1: 1(@2) -> 3(@9), cost 7.
	require.Equal(t, 7.0, s.RouteCost(0))
	require.Equal(t, 7.0, s.RouteCost(1))
	require.Equal(t, 14.0, s.indicators().Cost)
}

func TestStateRouteCostMatchesScenario1Optimal(t *testing.T) {
	in := line4(t)
	// exchange job 1 and job 2 across vehicles: [[0,1],[2,3]].
	s := newState(in, Solution{Routes: [][]int{{0, 1}, {2, 3}}})

	require.Equal(t, 1.0, s.RouteCost(0))
	require.Equal(t, 1.0, s.RouteCost(1))
	require.Equal(t, 2.0, s.indicators().Cost)
}

func TestStateNodeGainBoundaryNoDepot(t *testing.T) {
	in := line4(t)
	s := newState(in, Solution{Routes: [][]int{{0, 1, 2}, {3}}})

	// middle stop (job 1 @2): prev=job0@1, next=job2@8.
	// c(prev,k)=1, c(k,next)=6, c(prev,next)=7 -> gain = 0.
	require.InDelta(t, 0.0, s.NodeGain(0, 1), 1e-9)

	// first stop (job 0 @1), no depot: c(prev,k)=0, c(k,next)=c(1,2)=1,
	// c(prev,next)=0 (no prev) -> gain = 1.
	require.InDelta(t, 1.0, s.NodeGain(0, 0), 1e-9)
}

func TestStateInvalidateForcesRecompute(t *testing.T) {
	in := line4(t)
	s := newState(in, Solution{Routes: [][]int{{0, 2}, {1, 3}}})

	require.Equal(t, 7.0, s.RouteCost(0))
	require.True(t, s.caches[0].valid)

	s.solution.Routes[0] = []int{0, 1, 2}
	s.invalidate(0)
	require.False(t, s.caches[0].valid)

	require.Equal(t, 7.0, s.RouteCost(0)) // |1-2|+|2-8| = 1+6 = 7
	require.True(t, s.caches[0].valid)
}

func TestStateInvalidateDropsNearestRank(t *testing.T) {
	in := line4(t)
	s := newState(in, Solution{Routes: [][]int{{0, 2}, {1, 3}}})

	ranks := s.NearestJobRank(0, 1)
	require.Len(t, ranks, 2)
	require.Contains(t, s.nearestRank, [2]int{0, 1})

	s.invalidate(1)
	require.NotContains(t, s.nearestRank, [2]int{0, 1})
}

func TestStateUnassignedJobs(t *testing.T) {
	in := line4(t)
	s := newState(in, Solution{Routes: [][]int{{0}, {}}})

	require.ElementsMatch(t, []int{1, 2, 3}, s.unassignedJobs())
	require.Equal(t, 3, s.indicators().Unassigned)
}

func TestStateRecomputeIsDeterministic(t *testing.T) {
	in := line4(t)
	s := newState(in, Solution{Routes: [][]int{{0, 1, 2}, {3}}})

	first := s.NodeGain(0, 1)
	s.invalidate(0)
	second := s.NodeGain(0, 1)
	require.Equal(t, first, second)
}

func TestStatePreallocateReusesCapacity(t *testing.T) {
	in := line4(t)
	s := newState(in, Solution{Routes: [][]int{{0, 1}, {}}})
	s.preallocate(4)

	before := cap(s.caches[0].fwdCost)
	require.GreaterOrEqual(t, before, 4)

	s.ensureValid(0)
	require.Equal(t, before, cap(s.caches[0].fwdCost))
}
