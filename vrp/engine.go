// Package vrp's driver ties together the job-addition, operator, and
// TSP-refinement phases into a fixed-point local-search loop: validate
// once, then iterate job-addition, best-operator application, and route
// refinement to convergence.
package vrp

import (
	"context"
	"errors"

	"github.com/routekit/cvrp/christofides"
	"github.com/routekit/cvrp/matching"
	"github.com/routekit/cvrp/matrixview"
	"github.com/routekit/cvrp/routegraph"
)

// Engine runs the CVRP local-search driver over one problem instance
// and working solution. An Engine is not safe for concurrent use;
// separate goroutines must use separate Engine instances over the same
// read-only Input.
type Engine struct {
	input   *Input
	state   *State
	options EngineOptions

	best    Solution
	bestInd Indicators

	iteration      int
	lastRefinedLen []int
}

// NewEngine validates input and the caller-provided initial solution,
// then constructs an Engine ready to Run.
//
// Contracts:
//   - len(initial.Routes) must equal len(input.Vehicles).
//   - every job index must be a valid index into input.Matrix.
//   - every vehicle's capacity and every job's amount must share the
//     same dimension.
//   - the initial solution must already be capacity- and
//     skill-feasible.
//
// Errors: ErrInvalidInput for malformed input shapes,
// ErrInfeasibleInitialSolution if the initial routes violate capacity
// or skills.
func NewEngine(input Input, initial Solution, opts ...EngineOption) (*Engine, error) {
	if err := validateInput(&input, initial); err != nil {
		return nil, err
	}

	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if options.RegretCoefficient < 0 || options.RegretCoefficient > 1 {
		return nil, ErrInvalidInput
	}

	state := newState(&input, initial.Clone())

	maxLen := 0
	for _, route := range state.solution.Routes {
		if len(route) > maxLen {
			maxLen = len(route)
		}
	}
	state.preallocate(maxLen + 4)

	lastRefined := make([]int, len(input.Vehicles))
	for v, route := range state.solution.Routes {
		lastRefined[v] = len(route)
	}

	e := &Engine{
		input:          &input,
		state:          state,
		options:        options,
		best:           state.solution.Clone(),
		lastRefinedLen: lastRefined,
	}
	e.bestInd = e.state.indicators()
	return e, nil
}

func validateInput(input *Input, initial Solution) error {
	if input.Matrix == nil {
		return ErrInvalidInput
	}
	if len(initial.Routes) != len(input.Vehicles) {
		return ErrInvalidInput
	}
	n := input.Matrix.N()
	for _, j := range input.Jobs {
		if j.Index < 0 || j.Index >= n {
			return ErrInvalidInput
		}
	}
	dims := -1
	for _, v := range input.Vehicles {
		if v.StartIndex != nil && (*v.StartIndex < 0 || *v.StartIndex >= n) {
			return ErrInvalidInput
		}
		if v.EndIndex != nil && (*v.EndIndex < 0 || *v.EndIndex >= n) {
			return ErrInvalidInput
		}
		if dims == -1 {
			dims = len(v.Capacity)
		} else if len(v.Capacity) != dims {
			return ErrInvalidInput
		}
	}
	if dims == -1 {
		dims = 0
	}
	for _, j := range input.Jobs {
		if len(j.Amount) != dims {
			return ErrInvalidInput
		}
	}

	seen := make([]bool, len(input.Jobs))
	for v, route := range initial.Routes {
		if v >= len(input.Vehicles) {
			return ErrInvalidInput
		}
		for _, j := range route {
			if j < 0 || j >= len(input.Jobs) {
				return ErrInvalidInput
			}
			if seen[j] {
				return ErrInvalidInput
			}
			seen[j] = true
		}
		if !routeFeasible(input, v, route) {
			return ErrInfeasibleInitialSolution
		}
	}
	return nil
}

// Run iterates the local-search fixed point until no operator applies
// and no stop is speculatively removed, or ctx is cancelled, whichever
// comes first. On cancellation it returns the best solution found so
// far, with a nil error. It returns ErrCacheInvariant, ErrDisconnectedGraph,
// or ErrOddVertexCount if route refinement or operator application
// surfaces one of those invariant violations.
func (e *Engine) Run(ctx context.Context) (Solution, error) {
	runID := newRunID()

	for {
		if err := ctx.Err(); err != nil {
			return e.best.Clone(), nil
		}
		e.iteration++

		runJobAddition(e.state, e.options.RegretCoefficient)

		op, hasOp := e.bestOperator()
		applied := false
		if hasOp {
			gain := op.Gain(e.state)
			affected := op.Apply(e.state)
			applied = true
			for _, v := range affected {
				if !routeFeasible(e.input, v, e.state.solution.Routes[v]) {
					return e.best.Clone(), ErrCacheInvariant
				}
			}
			if e.options.LogHook != nil {
				e.options.LogHook(LogEvent{
					RunID:              runID,
					Operator:           op.Name(),
					Iteration:          e.iteration,
					Gain:               gain,
					Indicators:         e.state.indicators(),
					AdditionCandidates: op.AdditionCandidates(e.state),
				})
			}
		}

		if err := e.refineGrownRoutes(); err != nil {
			return e.best.Clone(), err
		}

		_, removed := runRemoveUnassignable(e.state)

		if ind := e.state.indicators(); ind.Less(e.bestInd) {
			e.bestInd = ind
			e.best = e.state.solution.Clone()
		}

		if !applied && !removed {
			break
		}
	}
	return e.best, nil
}

// Indicators returns the current working solution's (unassigned, cost,
// used_vehicles) tuple. Valid at any point, including mid-Run from a
// log hook.
func (e *Engine) Indicators() Indicators {
	return e.state.indicators()
}

// bestOperator enumerates every operator for the current solution,
// keeps the feasible ones with strictly positive gain, and returns the
// maximum-gain operator, breaking ties by the lexicographically lowest
// (source_vehicle, source_rank, target_vehicle, target_rank) tuple for
// deterministic, reproducible trajectories.
func (e *Engine) bestOperator() (Operator, bool) {
	var best Operator
	var bestGain float64
	found := false

	for _, op := range e.enumerateOperators() {
		if !op.IsValid(e.state) {
			continue
		}
		gain := op.Gain(e.state)
		if gain <= 0 {
			continue
		}
		if !found || gain > bestGain || (gain == bestGain && lessKey(op, best)) {
			best, bestGain, found = op, gain, true
		}
	}
	return best, found
}

func lessKey(a, b Operator) bool {
	av1, ar1, av2, ar2 := a.Key()
	bv1, br1, bv2, br2 := b.Key()
	if av1 != bv1 {
		return av1 < bv1
	}
	if ar1 != br1 {
		return ar1 < br1
	}
	if av2 != bv2 {
		return av2 < bv2
	}
	return ar2 < br2
}

// enumerateOperators builds one candidate per eligible move, in fixed
// ascending (vehicle pair, source rank, target rank) order, for every
// operator family. Constructed fresh every call so no operator outlives
// the apply() that would stale its cached gain.
func (e *Engine) enumerateOperators() []Operator {
	var ops []Operator
	n := len(e.input.Vehicles)

	for v1 := 0; v1 < n; v1++ {
		r1 := e.state.solution.Routes[v1]

		for i := 0; i < len(r1); i++ {
			for j := i + 1; j < len(r1); j++ {
				ops = append(ops, NewIntraExchange(v1, i, j))
			}
		}

		for length := 2; length <= 3; length++ {
			for i := 0; i+length <= len(r1); i++ {
				for pos := 0; pos <= len(r1)-length; pos++ {
					ops = append(ops, NewIntraOrOpt(v1, i, length, pos))
				}
			}
		}

		for v2 := v1 + 1; v2 < n; v2++ {
			r2 := e.state.solution.Routes[v2]

			for i := 0; i < len(r1); i++ {
				for j := 0; j < len(r2); j++ {
					ops = append(ops, NewCrossExchange(v1, i, v2, j))
				}
			}

			for i := 0; i < len(r1); i++ {
				for pos := 0; pos <= len(r2); pos++ {
					ops = append(ops, NewRelocate(v1, i, v2, pos))
				}
			}
			for i := 0; i < len(r2); i++ {
				for pos := 0; pos <= len(r1); pos++ {
					ops = append(ops, NewRelocate(v2, i, v1, pos))
				}
			}

			for length := 2; length <= 3; length++ {
				for i := 0; i+length <= len(r1); i++ {
					for pos := 0; pos <= len(r2); pos++ {
						ops = append(ops, NewOrOpt(v1, i, length, v2, pos))
					}
				}
				for i := 0; i+length <= len(r2); i++ {
					for pos := 0; pos <= len(r1); pos++ {
						ops = append(ops, NewOrOpt(v2, i, length, v1, pos))
					}
				}
			}

			for i := 0; i < len(r1); i++ {
				for j := 0; j < len(r2); j++ {
					ops = append(ops, NewTwoOpt(v1, i, v2, j))
					ops = append(ops, NewReverseTwoOpt(v1, i, v2, j))
				}
			}
		}
	}
	return ops
}

// refineGrownRoutes runs the TSP refiner over every vehicle whose route
// has grown by at least 2 stops since it was last refined and whose
// length meets EngineOptions.RefinerMinRouteLength. Stops and returns
// the error at the first vehicle whose refinement surfaces
// ErrDisconnectedGraph or ErrOddVertexCount.
func (e *Engine) refineGrownRoutes() error {
	for v := range e.input.Vehicles {
		n := len(e.state.solution.Routes[v])
		if n-e.lastRefinedLen[v] >= 2 && n >= e.options.RefinerMinRouteLength {
			if _, err := e.refineRoute(v); err != nil {
				return err
			}
			e.lastRefinedLen[v] = len(e.state.solution.Routes[v])
		}
	}
	return nil
}

// refineRoute re-orders vehicle v's stops via the Christofides
// approximation and keeps the result only if it is strictly cheaper.
//
// When the vehicle has both a start and an end depot leg, the
// refinement submatrix is built over {start, stops..., end} so the
// depot cost genuinely participates in the MST/matching/Eulerian
// pipeline rather than being bolted on afterward. When one or both
// depot legs are absent there is no second anchor to build that
// submatrix against, so the stop-only submatrix is refined and tried
// in both directions, keeping whichever spliced-in direction is
// cheaper.
//
// routegraph.ErrDisconnectedGraph and matching.ErrOddVertexCount both
// indicate a cache-invalidation bug upstream rather than an ordinary
// refinement miss: a route's cost submatrix is always complete, so its
// MST is always connected, and an MST's odd-degree set is always even.
// Both are mapped to their vrp-level sentinels and returned rather than
// treated the same as "no cheaper tour found".
func (e *Engine) refineRoute(v int) (bool, error) {
	route := e.state.solution.Routes[v]
	stopLocs := make([]int, len(route))
	for i, j := range route {
		stopLocs[i] = e.input.Jobs[j].Index
	}

	veh := e.input.Vehicles[v]
	if veh.StartIndex != nil && veh.EndIndex != nil {
		return e.refineRouteWithDepot(v, route, stopLocs, *veh.StartIndex, *veh.EndIndex)
	}
	return e.refineRouteStopsOnly(v, route, stopLocs)
}

// refineRouteWithDepot builds the submatrix over {start, stops, end},
// forces the start-end entry to zero so the MST/matching pipeline
// favors routing directly between them, runs the full Christofides
// pipeline, then cuts the resulting cycle at the start-end edge (moving
// end to the tail of the start-rotated cycle) to recover a single
// start-to-end path over the stops.
func (e *Engine) refineRouteWithDepot(v int, route, stopLocs []int, start, end int) (bool, error) {
	k := len(stopLocs) + 2
	indices := make([]int, k)
	indices[0] = start
	copy(indices[1:], stopLocs)
	indices[k-1] = end

	flat := make([]float64, k*k)
	for a := 0; a < k; a++ {
		for b := 0; b < k; b++ {
			flat[a*k+b] = e.input.Matrix.MustAt(indices[a], indices[b])
		}
	}
	flat[0*k+(k-1)] = 0
	flat[(k-1)*k+0] = 0

	sub, err := matrixview.New(k, flat)
	if err != nil {
		return false, nil
	}
	tour, _, err := christofides.Refine(sub)
	if err != nil {
		return false, mapRefineErr(err)
	}

	path := cutCycleAtDepot(tour, 0, k-1)
	candidate := make([]int, len(route))
	for i, vertex := range path[1 : len(path)-1] {
		candidate[i] = route[vertex-1]
	}

	current := e.state.RouteCost(v)
	candidateCost := routeCostOf(e.input, v, candidate)
	if candidateCost < current {
		e.state.solution.Routes[v] = candidate
		e.state.invalidate(v)
		return true, nil
	}
	return false, nil
}

// cutCycleAtDepot rotates a closed Christofides tour so it begins at
// startVertex, then moves endVertex to the tail, producing an open
// start-to-end path over every vertex. Forcing the submatrix's
// start-end entry to zero biases the MST/matching toward placing the
// two adjacent in the tour, in which case this is an exact cut of that
// edge; when they don't land adjacent it is a direct splice instead.
func cutCycleAtDepot(tour []int, startVertex, endVertex int) []int {
	n := len(tour)
	startPos := 0
	for i, x := range tour {
		if x == startVertex {
			startPos = i
			break
		}
	}

	// When end directly follows start, walk the cycle backward so the
	// start-end edge is the one removed.
	step := 1
	if tour[(startPos+1)%n] == endVertex {
		step = n - 1
	}

	path := make([]int, 0, n)
	for i := 0; i < n; i++ {
		x := tour[(startPos+i*step)%n]
		if x != endVertex {
			path = append(path, x)
		}
	}
	path = append(path, endVertex)
	return path
}

// refineRouteStopsOnly is refineRoute's degenerate path for a vehicle
// missing a start and/or end depot leg: there is no second anchor to
// build a {start, stops, end} submatrix against, so the stop-only
// submatrix is refined and the resulting order is tried in both
// directions, keeping whichever spliced-in direction beats the
// current route.
func (e *Engine) refineRouteStopsOnly(v int, route, stopLocs []int) (bool, error) {
	sub, err := e.input.Matrix.Submatrix(stopLocs)
	if err != nil {
		return false, nil
	}
	tour, _, err := christofides.Refine(sub)
	if err != nil {
		return false, mapRefineErr(err)
	}

	forward := make([]int, len(route))
	for i, idx := range tour {
		forward[i] = route[idx]
	}
	backward := make([]int, len(forward))
	for i, j := range forward {
		backward[len(forward)-1-i] = j
	}

	current := e.state.RouteCost(v)
	forwardCost := routeCostOf(e.input, v, forward)
	backwardCost := routeCostOf(e.input, v, backward)

	best, bestCost := forward, forwardCost
	if backwardCost < bestCost {
		best, bestCost = backward, backwardCost
	}
	if bestCost < current {
		e.state.solution.Routes[v] = best
		e.state.invalidate(v)
		return true, nil
	}
	return false, nil
}

// mapRefineErr translates an error from christofides.Refine into its
// vrp-level sentinel. Any other error (e.g. ErrEmptyMatrix, which cannot
// occur for a route meeting RefinerMinRouteLength) is reported as nil,
// treated the same as "no cheaper tour found" rather than aborting Run.
func mapRefineErr(err error) error {
	switch {
	case errors.Is(err, routegraph.ErrDisconnectedGraph):
		return ErrDisconnectedGraph
	case errors.Is(err, matching.ErrOddVertexCount):
		return ErrOddVertexCount
	default:
		return nil
	}
}
