// Package matrixview provides an immutable, read-oriented view over a
// square cost matrix, backed by gonum's dense float64 storage.
//
// A Matrix is built once from the caller's cost data (typically
// non-negative integer travel costs) and never mutated afterward; every
// consumer in this module (routegraph, matching, christofides, vrp) only
// ever reads through At, MustAt and Submatrix. Submatrix extraction by an
// arbitrary index list is the one operation every one of those consumers
// needs: routegraph builds an edge list from a full matrix, christofides
// restricts to one route's stops, matching restricts further to the
// odd-degree subset of a route.
package matrixview

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

// ErrNonSquare indicates the backing data does not form a square matrix.
var ErrNonSquare = errors.New("matrixview: matrix is not square")

// ErrIndexOutOfRange indicates a row/column or submatrix index fell
// outside [0, n).
var ErrIndexOutOfRange = errors.New("matrixview: index out of range")

// ErrNegativeWeight indicates a negative cost entry, which the domain
// (non-negative travel costs) never admits.
var ErrNegativeWeight = errors.New("matrixview: negative weight")

// Matrix is a square, read-only cost view of order N.
type Matrix struct {
	n    int
	data *mat.Dense
}

// New builds a Matrix from a flat row-major slice of n*n entries.
// Returns ErrNonSquare if len(flat) != n*n, ErrNegativeWeight if any
// entry is negative.
//
// Complexity: O(n^2).
func New(n int, flat []float64) (*Matrix, error) {
	if n < 0 || len(flat) != n*n {
		return nil, ErrNonSquare
	}
	for _, v := range flat {
		if v < 0 {
			return nil, ErrNegativeWeight
		}
	}
	if n == 0 {
		// gonum rejects zero-order dense matrices; an empty view needs no storage.
		return &Matrix{}, nil
	}
	return &Matrix{n: n, data: mat.NewDense(n, n, append([]float64(nil), flat...))}, nil
}

// FromInts builds a Matrix from a square int64 row-major matrix, the
// shape produced by parsing a CVRP instance's cost matrix: square,
// non-negative integers, diagonal zero.
//
// Complexity: O(n^2).
func FromInts(rows [][]int64) (*Matrix, error) {
	n := len(rows)
	flat := make([]float64, 0, n*n)
	for _, row := range rows {
		if len(row) != n {
			return nil, ErrNonSquare
		}
		for _, v := range row {
			if v < 0 {
				return nil, ErrNegativeWeight
			}
			flat = append(flat, float64(v))
		}
	}
	return New(n, flat)
}

// N returns the matrix order.
func (m *Matrix) N() int { return m.n }

// At returns the entry at (i, j). Panics are avoided in favor of
// ErrIndexOutOfRange, matching the rest of this module's error-return
// discipline rather than gonum's default panic-on-out-of-range behavior.
func (m *Matrix) At(i, j int) (float64, error) {
	if i < 0 || i >= m.n || j < 0 || j >= m.n {
		return 0, ErrIndexOutOfRange
	}
	return m.data.At(i, j), nil
}

// MustAt is At without an error return, for call sites that have already
// validated the index range (the overwhelming majority inside this
// module, where indices come from a loop over [0, n)).
func (m *Matrix) MustAt(i, j int) float64 {
	return m.data.At(i, j)
}

// Submatrix extracts the principal submatrix induced by indices,
// preserving their order: result[a][b] = m[indices[a]][indices[b]].
// Indices may repeat or be unsorted; out-of-range indices yield
// ErrIndexOutOfRange.
//
// Complexity: O(k^2) for k = len(indices).
func (m *Matrix) Submatrix(indices []int) (*Matrix, error) {
	k := len(indices)
	for _, idx := range indices {
		if idx < 0 || idx >= m.n {
			return nil, ErrIndexOutOfRange
		}
	}
	flat := make([]float64, 0, k*k)
	for _, a := range indices {
		for _, b := range indices {
			flat = append(flat, m.data.At(a, b))
		}
	}
	return New(k, flat)
}

// Clone returns a deep, independent copy of m.
func (m *Matrix) Clone() *Matrix {
	if m.n == 0 {
		return &Matrix{}
	}
	cp := mat.NewDense(m.n, m.n, nil)
	cp.Copy(m.data)
	return &Matrix{n: m.n, data: cp}
}
