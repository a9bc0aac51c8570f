// Package christofides implements the Christofides 1.5-approximation for
// the symmetric, metric travelling salesman problem, used by the CVRP
// engine to re-optimize a single route's stop order.
//
// Pipeline:
//  1. minimum spanning tree on the route's symmetric cost submatrix,
//  2. odd-degree vertices of the MST,
//  3. minimum-weight perfect matching on those vertices,
//  4. multigraph union of the MST and the matching,
//  5. Eulerian circuit via Hierholzer's algorithm,
//  6. shortcut to a Hamiltonian tour by first-appearance order.
package christofides

import (
	"errors"

	"github.com/routekit/cvrp/matching"
	"github.com/routekit/cvrp/matrixview"
	"github.com/routekit/cvrp/routegraph"
)

// ErrEmptyMatrix indicates Refine was called on a zero-vertex matrix.
var ErrEmptyMatrix = errors.New("christofides: empty matrix")

// Refine computes a Hamiltonian tour over the vertices 0..n-1 of cost,
// returning the tour (a permutation of 0..n-1) and the cost of the
// closed cycle it forms, including the edge from tour[len(tour)-1]
// back to tour[0].
//
// For n == 1 the trivial single-vertex tour is returned. Errors
// propagate routegraph.ErrDisconnectedGraph (should not occur on a
// complete cost submatrix; signaled defensively) and
// matching.ErrOddVertexCount (a cache-invalidation bug upstream — the
// MST's odd-degree set is mathematically always even, so this only
// fires if the submatrix itself was built incorrectly).
//
// Complexity: O(n^2) for MST and graph construction, O(n^3) worst case
// for the Hungarian matching step, O(n) for the Eulerian circuit and
// shortcut — the matching dominates for large routes, but routes in a
// CVRP solution are small relative to the whole instance.
func Refine(cost *matrixview.Matrix) ([]int, float64, error) {
	n := cost.N()
	if n == 0 {
		return nil, 0, ErrEmptyMatrix
	}
	if n == 1 {
		return []int{0}, 0, nil
	}

	g := routegraph.FromMatrix(cost)
	mstEdges, _, err := g.Kruskal()
	if err != nil {
		return nil, 0, err
	}

	multi := routegraph.AdjacencyFromEdges(n, mstEdges)

	var odd []int
	for v := 0; v < n; v++ {
		if multi.Degree(v)%2 == 1 {
			odd = append(odd, v)
		}
	}

	if len(odd) > 0 {
		oddSub, err := cost.Submatrix(odd)
		if err != nil {
			return nil, 0, err
		}
		pairs, err := matching.MWPM(oddSub)
		if err != nil {
			return nil, 0, err
		}
		seen := make(map[int]bool, len(pairs))
		for subU, subV := range pairs {
			if seen[subU] || seen[subV] {
				continue
			}
			seen[subU], seen[subV] = true, true
			u, v := odd[subU], odd[subV]
			multi.AddEdge(u, v, cost.MustAt(u, v))
		}
	}

	circuit := eulerianCircuit(multi, 0)
	tour := shortcut(circuit, n)

	cost2, err := tourCost(cost, tour)
	if err != nil {
		return nil, 0, err
	}
	return tour, cost2, nil
}

// eulerianCircuit returns a closed walk over every edge of a connected
// Eulerian multigraph (every vertex has even degree, guaranteed by
// construction: MST degrees plus exactly one matching edge per odd
// vertex), via Hierholzer's algorithm, adapted to routegraph.Graph's
// adjacency representation.
//
// Complexity: O(E).
func eulerianCircuit(g *routegraph.Graph, start int) []int {
	n := g.N()
	local := make([][]int, n)
	for v := 0; v < n; v++ {
		local[v] = append([]int(nil), g.Adjacency(v)...)
	}

	var circuit []int
	stack := []int{start}
	for len(stack) > 0 {
		u := stack[len(stack)-1]
		if len(local[u]) == 0 {
			circuit = append(circuit, u)
			stack = stack[:len(stack)-1]
			continue
		}
		v := local[u][len(local[u])-1]
		local[u] = local[u][:len(local[u])-1]
		for i, x := range local[v] {
			if x == u {
				local[v] = append(local[v][:i], local[v][i+1:]...)
				break
			}
		}
		stack = append(stack, v)
	}
	return circuit
}

// shortcut collapses an Eulerian walk into a Hamiltonian tour by
// visiting each vertex on its first appearance.
func shortcut(circuit []int, n int) []int {
	seen := make([]bool, n)
	tour := make([]int, 0, n)
	for _, v := range circuit {
		if !seen[v] {
			seen[v] = true
			tour = append(tour, v)
		}
	}
	return tour
}

// tourCost sums the cost of the closed Hamiltonian cycle visiting tour
// in order, including the closing edge tour[len(tour)-1] -> tour[0].
func tourCost(cost *matrixview.Matrix, tour []int) (float64, error) {
	var total float64
	for i := 0; i+1 < len(tour); i++ {
		c, err := cost.At(tour[i], tour[i+1])
		if err != nil {
			return 0, err
		}
		total += c
	}
	if len(tour) > 1 {
		c, err := cost.At(tour[len(tour)-1], tour[0])
		if err != nil {
			return 0, err
		}
		total += c
	}
	return total, nil
}
