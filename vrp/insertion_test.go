package vrp

import (
	"testing"

	"github.com/routekit/cvrp/matrixview"
	"github.com/stretchr/testify/require"
)

func twoJobInput(t *testing.T, capacity int64) *Input {
	t.Helper()
	m, err := matrixview.New(3, []float64{
		0, 1, 1,
		1, 0, 1,
		1, 1, 0,
	})
	require.NoError(t, err)
	return &Input{
		Matrix: m,
		Jobs: []Job{
			{Index: 1, Amount: Amounts{3}},
			{Index: 2, Amount: Amounts{3}},
		},
		Vehicles: []Vehicle{
			{Capacity: Amounts{capacity}},
		},
	}
}

// TestJobAdditionCapacityTight reproduces scenario 4: one vehicle, cap
// 5, two jobs amount 3 each; only one can ever fit.
func TestJobAdditionCapacityTight(t *testing.T) {
	in := twoJobInput(t, 5)
	s := newState(in, Solution{Routes: [][]int{{}}})

	runJobAddition(s, 1.0)

	require.Equal(t, 1, s.indicators().Unassigned)
}

// TestJobAdditionSkillGating reproduces scenario 5: a job requiring a
// skill only the second vehicle provides ends up on that vehicle.
func TestJobAdditionSkillGating(t *testing.T) {
	m, err := matrixview.New(2, []float64{0, 1, 1, 0})
	require.NoError(t, err)
	in := &Input{
		Matrix: m,
		Jobs: []Job{
			{Index: 1, RequiredSkills: NewSkillSet(3), Amount: Amounts{1}},
		},
		Vehicles: []Vehicle{
			{Capacity: Amounts{10}},
			{Capacity: Amounts{10}, ProvidedSkills: NewSkillSet(3)},
		},
	}
	s := newState(in, Solution{Routes: [][]int{{}, {}}})

	runJobAddition(s, 1.0)

	require.Empty(t, s.solution.Routes[0])
	require.Equal(t, []int{0}, s.solution.Routes[1])
}

func TestJobAdditionAllUnassignedTerminates(t *testing.T) {
	in := twoJobInput(t, 100)
	s := newState(in, Solution{Routes: [][]int{{}}})

	touched := runJobAddition(s, 1.0)

	require.Equal(t, 0, s.indicators().Unassigned)
	require.ElementsMatch(t, []int{0}, touched)
}

func TestBestInsertionNoFeasibleSlot(t *testing.T) {
	in := twoJobInput(t, 1) // too small for either job
	s := newState(in, Solution{Routes: [][]int{{}}})

	_, _, _, _, ok := bestInsertion(s, 0)
	require.False(t, ok)
}
