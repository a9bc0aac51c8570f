package vrp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRemoveUnassignableImprovesCost(t *testing.T) {
	in := line4(t)
	s := newState(in, Solution{Routes: [][]int{{0, 2, 1, 3}, {}}})

	before := s.indicators().Cost
	require.InDelta(t, 20.0, before, 1e-9)

	v, removed := runRemoveUnassignable(s)
	require.True(t, removed)
	require.Equal(t, 0, v)

	after := s.indicators().Cost
	require.Less(t, after, before)
	require.InDelta(t, 8.0, after, 1e-9)
	require.Equal(t, 0, s.indicators().Unassigned)
}

func TestRemoveUnassignableNoOpOnOptimalRoute(t *testing.T) {
	in := line4(t)
	in.Vehicles = in.Vehicles[:1]
	s := newState(in, Solution{Routes: [][]int{{0, 1, 2, 3}}})

	_, removed := runRemoveUnassignable(s)
	require.False(t, removed)
	require.Equal(t, []int{0, 1, 2, 3}, s.solution.Routes[0])
}

func TestRankRemovalCandidatesSortsByGainDescending(t *testing.T) {
	in := line4(t)
	s := newState(in, Solution{Routes: [][]int{{0, 2, 1, 3}}})

	candidates := rankRemovalCandidates(s, 0, false)
	for i := 1; i < len(candidates); i++ {
		require.GreaterOrEqual(t, candidates[i-1].nodeGain, candidates[i].nodeGain)
	}
}
