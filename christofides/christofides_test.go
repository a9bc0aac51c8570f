package christofides_test

import (
	"testing"

	"github.com/routekit/cvrp/christofides"
	"github.com/routekit/cvrp/matrixview"
	"github.com/stretchr/testify/require"
)

// TestRefineSingleVertex checks the trivial single-vertex tour.
func TestRefineSingleVertex(t *testing.T) {
	m, err := matrixview.New(1, []float64{0})
	require.NoError(t, err)

	tour, cost, err := christofides.Refine(m)
	require.NoError(t, err)
	require.Equal(t, []int{0}, tour)
	require.Equal(t, 0.0, cost)
}

// TestRefineEmptyMatrix checks the zero-vertex error.
func TestRefineEmptyMatrix(t *testing.T) {
	m, err := matrixview.New(0, nil)
	require.NoError(t, err)

	_, _, err = christofides.Refine(m)
	require.ErrorIs(t, err, christofides.ErrEmptyMatrix)
}

// TestRefineSquareFourVertices: a 4-vertex complete graph shaped like a
// unit square (all edges cost 1) returns a length-4 tour visiting every
// vertex once with total cost 4.
func TestRefineSquareFourVertices(t *testing.T) {
	m, err := matrixview.New(4, []float64{
		0, 1, 1, 1,
		1, 0, 1, 1,
		1, 1, 0, 1,
		1, 1, 1, 0,
	})
	require.NoError(t, err)

	tour, cost, err := christofides.Refine(m)
	require.NoError(t, err)
	require.Len(t, tour, 4)

	seen := make(map[int]bool, 4)
	for _, v := range tour {
		require.False(t, seen[v], "vertex %d visited twice", v)
		seen[v] = true
	}
	require.Len(t, seen, 4)
	require.Equal(t, 4.0, cost) // closed 4-cycle: 4 edges at cost 1 each
}

// TestRefineTwoVertices checks the degenerate 2-vertex case.
func TestRefineTwoVertices(t *testing.T) {
	m, err := matrixview.New(2, []float64{0, 5, 5, 0})
	require.NoError(t, err)

	tour, cost, err := christofides.Refine(m)
	require.NoError(t, err)
	require.ElementsMatch(t, []int{0, 1}, tour)
	require.Equal(t, 10.0, cost) // closed 2-cycle traverses the one edge twice
}
