// Package routegraph provides an undirected, weighted graph over a dense
// 0..n-1 vertex index space, plus Kruskal's minimum spanning tree.
//
// This is a narrower, int-indexed graph: every caller in this module
// (christofides, and through it the CVRP engine's per-route refinement
// step) already works over a route's stop positions, which form a dense
// index space with no need for string vertex IDs or a general-purpose
// directed/multigraph/loop configuration. Kruskal is the only MST
// algorithm implemented here because the edge list this package already
// builds from a matrixview.Matrix is exactly what Kruskal wants, and a
// route's stop count is always small enough that Kruskal's O(E log E)
// sort dominates.
package routegraph

import (
	"errors"
	"sort"
)

// ErrDisconnectedGraph indicates the graph does not admit a spanning
// tree covering every vertex.
var ErrDisconnectedGraph = errors.New("routegraph: graph is disconnected")

// Edge is an undirected edge between two vertex indices with a
// non-negative weight.
type Edge struct {
	U, V   int
	Weight float64
}

// Graph is an undirected, weighted graph over vertices [0, N).
type Graph struct {
	n     int
	edges []Edge
	adj   [][]int // adj[v] lists neighbor vertex indices; duplicates allowed (multigraph use, e.g. MST ∪ matching)
}

// New returns an empty graph over n vertices.
func New(n int) *Graph {
	return &Graph{n: n, adj: make([][]int, n)}
}

// N returns the vertex count.
func (g *Graph) N() int { return g.n }

// AddEdge appends an undirected edge u-v with the given weight and
// records both adjacency directions. Self-loops and parallel edges are
// permitted: callers that build a multigraph (MST ∪ matching, in
// christofides) rely on that.
func (g *Graph) AddEdge(u, v int, weight float64) {
	g.edges = append(g.edges, Edge{U: u, V: v, Weight: weight})
	g.adj[u] = append(g.adj[u], v)
	g.adj[v] = append(g.adj[v], u)
}

// Edges returns the edge list in insertion order.
func (g *Graph) Edges() []Edge { return g.edges }

// Adjacency returns vertex v's neighbor list. The returned slice aliases
// internal storage and must not be mutated by the caller.
func (g *Graph) Adjacency(v int) []int { return g.adj[v] }

// Degree returns the number of incident edge-ends at v, counting
// parallel edges and self-loops twice, matching graph-theoretic degree.
func (g *Graph) Degree(v int) int { return len(g.adj[v]) }

// RemoveEdgeOnce deletes a single occurrence of edge u-v from the
// adjacency lists (both directions), used by Eulerian-circuit extraction
// to consume multigraph edges one at a time. It is a no-op if no such
// edge exists.
func (g *Graph) RemoveEdgeOnce(u, v int) {
	g.adj[u] = removeFirst(g.adj[u], v)
	g.adj[v] = removeFirst(g.adj[v], u)
}

func removeFirst(list []int, x int) []int {
	for i, y := range list {
		if y == x {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// submatrixAt is the minimal read surface routegraph needs from a cost
// view; satisfied by *matrixview.Matrix without importing it directly,
// keeping this package free of a dependency it only needs at one call
// site (FromMatrix).
type submatrixAt interface {
	N() int
	MustAt(i, j int) float64
}

// FromMatrix builds the complete undirected graph over a symmetric cost
// matrix: one edge for every pair i<j, weighted by m[i][j]. This is the
// edge-list materialization Kruskal needs, built directly from a
// symmetric cost matrix rather than from a pre-existing edge list.
//
// Complexity: O(n^2).
func FromMatrix(m submatrixAt) *Graph {
	n := m.N()
	g := New(n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			g.AddEdge(i, j, m.MustAt(i, j))
		}
	}
	return g
}

// Kruskal computes a minimum spanning tree over g using sort-edges +
// union-find with path compression and union by rank. Returns the MST
// edge list, its total weight, and ErrDisconnectedGraph if g is not
// connected.
//
// Complexity: O(E log E + α(V)·E).
func (g *Graph) Kruskal() ([]Edge, float64, error) {
	if g.n == 0 {
		return nil, 0, ErrDisconnectedGraph
	}
	if g.n == 1 {
		return []Edge{}, 0, nil
	}

	sorted := append([]Edge(nil), g.edges...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Weight < sorted[j].Weight
	})

	parent := make([]int, g.n)
	rank := make([]int, g.n)
	for v := range parent {
		parent[v] = v
	}

	var find func(int) int
	find = func(u int) int {
		for parent[u] != u {
			parent[u] = parent[parent[u]]
			u = parent[u]
		}
		return u
	}
	union := func(u, v int) {
		ru, rv := find(u), find(v)
		if ru == rv {
			return
		}
		if rank[ru] < rank[rv] {
			parent[ru] = rv
		} else {
			parent[rv] = ru
			if rank[ru] == rank[rv] {
				rank[ru]++
			}
		}
	}

	mst := make([]Edge, 0, g.n-1)
	var total float64
	for _, e := range sorted {
		if e.U == e.V {
			continue // skip self-loops, never part of a spanning tree
		}
		if find(e.U) != find(e.V) {
			union(e.U, e.V)
			mst = append(mst, e)
			total += e.Weight
			if len(mst) == g.n-1 {
				break
			}
		}
	}

	if len(mst) < g.n-1 {
		return nil, 0, ErrDisconnectedGraph
	}
	return mst, total, nil
}

// AdjacencyFromEdges builds an adjacency-list graph over n vertices from
// an explicit edge list, used to assemble the MST-plus-matching
// multigraph that christofides runs its Eulerian circuit over.
func AdjacencyFromEdges(n int, edges []Edge) *Graph {
	g := New(n)
	for _, e := range edges {
		g.AddEdge(e.U, e.V, e.Weight)
	}
	return g
}
