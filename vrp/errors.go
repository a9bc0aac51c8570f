package vrp

import "errors"

// Sentinel errors for the CVRP engine.
var (
	// ErrInvalidInput indicates a malformed problem instance: a nil
	// matrix, a route count that differs from the vehicle count, an
	// out-of-range or repeated index, an amount/capacity dimension
	// mismatch, or a regret coefficient outside [0,1]. Non-square
	// matrices and negative costs are rejected earlier, when the
	// matrixview.Matrix is built (ErrNonSquare, ErrNegativeWeight).
	ErrInvalidInput = errors.New("vrp: invalid input")

	// ErrInfeasibleInitialSolution indicates the caller-provided initial
	// solution violates capacity or skill constraints before the engine
	// has made a single move.
	ErrInfeasibleInitialSolution = errors.New("vrp: infeasible initial solution")

	// ErrDisconnectedGraph is surfaced from the Christofides refiner
	// (routegraph.ErrDisconnectedGraph) when a route's cost submatrix
	// does not admit a spanning tree — should not occur on a submatrix
	// of a complete cost matrix; signaled defensively.
	ErrDisconnectedGraph = errors.New("vrp: disconnected graph in route refinement")

	// ErrOddVertexCount is surfaced from the matching step
	// (matching.ErrOddVertexCount) and indicates a cache-invalidation
	// bug upstream: the odd-degree set of a spanning tree is always
	// even, so reaching this is fatal, not a normal outcome.
	ErrOddVertexCount = errors.New("vrp: odd vertex count passed to matching")

	// ErrCacheInvariant indicates a post-apply capacity or skill
	// violation was observed after an operator's IsValid gate had
	// already approved it — a programming error in an operator. The run
	// aborts and returns this error rather than panicking into caller
	// code.
	ErrCacheInvariant = errors.New("vrp: solution invariant violated after apply")
)
