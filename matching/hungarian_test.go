package matching_test

import (
	"testing"

	"github.com/routekit/cvrp/matching"
	"github.com/routekit/cvrp/matrixview"
	"github.com/stretchr/testify/require"
)

// TestMWPMOddVertexCount checks the fatal-upstream-bug sentinel.
func TestMWPMOddVertexCount(t *testing.T) {
	m, err := matrixview.New(3, []float64{0, 1, 2, 1, 0, 3, 2, 3, 0})
	require.NoError(t, err)

	_, err = matching.MWPM(m)
	require.ErrorIs(t, err, matching.ErrOddVertexCount)
}

// TestMWPMEmpty checks the trivial zero-vertex case.
func TestMWPMEmpty(t *testing.T) {
	m, err := matrixview.New(0, nil)
	require.NoError(t, err)

	result, err := matching.MWPM(m)
	require.NoError(t, err)
	require.Empty(t, result)
}

// TestMWPMKnownOptimum: on [[0,1,4,3],[1,0,3,4],[4,3,0,1],[3,4,1,0]] the
// optimal matching is {(0,1),(2,3)} with total cost 2.
func TestMWPMKnownOptimum(t *testing.T) {
	m, err := matrixview.New(4, []float64{
		0, 1, 4, 3,
		1, 0, 3, 4,
		4, 3, 0, 1,
		3, 4, 1, 0,
	})
	require.NoError(t, err)

	result, err := matching.MWPM(m)
	require.NoError(t, err)
	require.Len(t, result, 4)

	// every vertex appears in exactly one pair, symmetrically
	for v, mate := range result {
		require.Equal(t, v, result[mate])
	}

	require.Equal(t, 1, result[0])
	require.Equal(t, 0, result[1])
	require.Equal(t, 3, result[2])
	require.Equal(t, 2, result[3])

	var total float64
	seen := map[[2]int]bool{}
	for v, mate := range result {
		k := [2]int{v, mate}
		rk := [2]int{mate, v}
		if !seen[k] && !seen[rk] {
			val, _ := m.At(v, mate)
			total += val
			seen[k] = true
		}
	}
	require.Equal(t, 2.0, total)
}

// TestHungarianGenericAssignment checks the raw bipartite assignment on
// a square instance with a unique optimum and a non-trivial (non-zero)
// diagonal. Hungarian itself is generic bipartite assignment and, unlike
// MWPM, does not forbid self-assignment — the diagonal here is
// deliberately expensive so the optimum is still the off-diagonal
// pairing.
func TestHungarianGenericAssignment(t *testing.T) {
	m, err := matrixview.New(4, []float64{
		9, 1, 9, 9,
		1, 9, 9, 9,
		9, 9, 9, 1,
		9, 9, 1, 9,
	})
	require.NoError(t, err)

	assignment := matching.Hungarian(m)
	require.Len(t, assignment, 4)
	require.Equal(t, 1, assignment[0])
	require.Equal(t, 0, assignment[1])
	require.Equal(t, 3, assignment[2])
	require.Equal(t, 2, assignment[3])
}
