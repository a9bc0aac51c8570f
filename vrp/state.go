package vrp

import "math"

// routeCache holds the derived quantities for one vehicle's route:
// forward/backward cumulative costs and loads, per-stop removal
// gain, per-edge reversal gain, precomputed surrounding-edge cost, and
// denormalized per-stop skills. Job insertion is scored with
// routeCostOf, not with the surrounding-edge cost. valid tracks
// whether the arrays are consistent with the vehicle's current sequence;
// a write marks them stale without recomputing, a read recomputes lazily
// before returning.
type routeCache struct {
	valid bool

	fwdCost        []float64
	bwdCost        []float64
	fwdAmount      []Amounts
	bwdAmount      []Amounts
	nodeGain       []float64
	edgeGain       []float64
	edgeCostAround []float64
	nodeSkills     []SkillSet
}

// State is the engine's mutable working solution together with its
// lazily-recomputed derived-quantity cache. The cache is owned
// exclusively by the engine; operators read it to score and check a
// move and mutate it only in Apply, which replaces the touched routes
// and invalidates their caches.
type State struct {
	input    *Input
	solution Solution
	caches   []routeCache

	// nearestRank[{v1,v2}][k] is the rank in v2's route of the stop
	// nearest to v1's stop k, served by NearestJobRank. Operator
	// enumeration does not read it; cross-route moves are enumerated
	// over every position pair. Recomputed on touch rather than
	// incrementally maintained — the cheaper of the two options left
	// open, per the engine's own design notes.
	nearestRank map[[2]int][]int
}

func newState(input *Input, initial Solution) *State {
	return &State{
		input:       input,
		solution:    initial,
		caches:      make([]routeCache, len(input.Vehicles)),
		nearestRank: make(map[[2]int][]int),
	}
}

// preallocate grows every per-vehicle cache's backing arrays to capacity
// without populating them, so the first recompute after construction
// does not reallocate. Caches are sized at setup to max route length
// plus slack, then reused across iterations.
func (s *State) preallocate(capacity int) {
	for v := range s.caches {
		c := &s.caches[v]
		c.fwdCost = resizeFloat(c.fwdCost, capacity)
		c.bwdCost = resizeFloat(c.bwdCost, capacity)
		c.fwdAmount = resizeAmounts(c.fwdAmount, capacity)
		c.bwdAmount = resizeAmounts(c.bwdAmount, capacity)
		c.nodeGain = resizeFloat(c.nodeGain, capacity)
		c.edgeGain = resizeFloat(c.edgeGain, capacity)
		c.edgeCostAround = resizeFloat(c.edgeCostAround, capacity)
		c.nodeSkills = resizeSkills(c.nodeSkills, capacity)
		c.valid = false
	}
}

// invalidate marks the named vehicles' caches stale and drops any
// nearestRank entry touching them.
func (s *State) invalidate(vehicles ...int) {
	touched := make(map[int]bool, len(vehicles))
	for _, v := range vehicles {
		s.caches[v].valid = false
		touched[v] = true
	}
	for key := range s.nearestRank {
		if touched[key[0]] || touched[key[1]] {
			delete(s.nearestRank, key)
		}
	}
}

// prevLocation returns the matrix index of the stop preceding position k
// in vehicle v's route, falling back to the vehicle's start index at the
// route's head. The second return is false when there is no predecessor
// at all (head of a route whose vehicle has no start index).
func (s *State) prevLocation(v, k int) (int, bool) {
	route := s.solution.Routes[v]
	if k > 0 {
		return s.input.Jobs[route[k-1]].Index, true
	}
	if start := s.input.Vehicles[v].StartIndex; start != nil {
		return *start, true
	}
	return 0, false
}

// nextLocation is prevLocation's mirror for the successor of position k.
func (s *State) nextLocation(v, k int) (int, bool) {
	route := s.solution.Routes[v]
	if k+1 < len(route) {
		return s.input.Jobs[route[k+1]].Index, true
	}
	if end := s.input.Vehicles[v].EndIndex; end != nil {
		return *end, true
	}
	return 0, false
}

// legCost returns the travel cost of a leg whose endpoints may be
// missing (an absent start/end index): a leg with a missing endpoint
// contributes zero, matching the convention used throughout node_gain.
func (s *State) legCost(from, to int, fromOK, toOK bool) float64 {
	if !fromOK || !toOK {
		return 0
	}
	return s.input.costBetween(from, to)
}

// ensureValid recomputes vehicle v's derived arrays in one linear pass
// if they are currently stale; a no-op otherwise.
func (s *State) ensureValid(v int) {
	c := &s.caches[v]
	if c.valid {
		return
	}
	route := s.solution.Routes[v]
	n := len(route)

	c.fwdCost = resizeFloat(c.fwdCost, n)
	c.bwdCost = resizeFloat(c.bwdCost, n)
	c.fwdAmount = resizeAmounts(c.fwdAmount, n)
	c.bwdAmount = resizeAmounts(c.bwdAmount, n)
	c.nodeGain = resizeFloat(c.nodeGain, n)
	c.edgeGain = resizeFloat(c.edgeGain, n)
	c.edgeCostAround = resizeFloat(c.edgeCostAround, n)
	c.nodeSkills = resizeSkills(c.nodeSkills, n)

	for k := 0; k < n; k++ {
		job := s.input.Jobs[route[k]]
		c.nodeSkills[k] = job.RequiredSkills

		if k == 0 {
			if start := s.input.Vehicles[v].StartIndex; start != nil {
				c.fwdCost[k] = s.input.costBetween(*start, job.Index)
			} else {
				c.fwdCost[k] = 0
			}
			c.fwdAmount[k] = job.Amount
		} else {
			prevJob := s.input.Jobs[route[k-1]]
			c.fwdCost[k] = c.fwdCost[k-1] + s.input.costBetween(prevJob.Index, job.Index)
			c.fwdAmount[k] = c.fwdAmount[k-1].Add(job.Amount)
		}
	}

	for k := n - 1; k >= 0; k-- {
		job := s.input.Jobs[route[k]]
		if k == n-1 {
			if end := s.input.Vehicles[v].EndIndex; end != nil {
				c.bwdCost[k] = s.input.costBetween(job.Index, *end)
			} else {
				c.bwdCost[k] = 0
			}
			c.bwdAmount[k] = job.Amount
		} else {
			nextJob := s.input.Jobs[route[k+1]]
			c.bwdCost[k] = c.bwdCost[k+1] + s.input.costBetween(job.Index, nextJob.Index)
			c.bwdAmount[k] = c.bwdAmount[k+1].Add(job.Amount)
		}
	}

	for k := 0; k < n; k++ {
		job := s.input.Jobs[route[k]]
		prevLoc, hasPrev := s.prevLocation(v, k)
		nextLoc, hasNext := s.nextLocation(v, k)

		cPrevK := s.legCost(prevLoc, job.Index, hasPrev, true)
		cKNext := s.legCost(job.Index, nextLoc, true, hasNext)
		cPrevNext := s.legCost(prevLoc, nextLoc, hasPrev, hasNext)

		c.edgeCostAround[k] = cPrevK + cKNext
		c.nodeGain[k] = cPrevK + cKNext - cPrevNext
	}

	for k := 0; k+1 < n; k++ {
		jobK := s.input.Jobs[route[k]]
		jobK1 := s.input.Jobs[route[k+1]]
		prevLoc, hasPrev := s.prevLocation(v, k)
		nextLoc, hasNext := s.nextLocation(v, k+1)

		before := s.legCost(prevLoc, jobK.Index, hasPrev, true) + s.legCost(jobK1.Index, nextLoc, true, hasNext)
		after := s.legCost(prevLoc, jobK1.Index, hasPrev, true) + s.legCost(jobK.Index, nextLoc, true, hasNext)
		c.edgeGain[k] = before - after
	}

	c.valid = true
}

// FwdCost returns the cumulative cost of vehicle v's route from its
// start through stop k, recomputing first if stale.
func (s *State) FwdCost(v, k int) float64 { s.ensureValid(v); return s.caches[v].fwdCost[k] }

// BwdCost returns the cumulative cost of vehicle v's route from stop k
// through its end, recomputing first if stale.
func (s *State) BwdCost(v, k int) float64 { s.ensureValid(v); return s.caches[v].bwdCost[k] }

// FwdAmount returns the cumulative load over stops 0..k of vehicle v.
func (s *State) FwdAmount(v, k int) Amounts { s.ensureValid(v); return s.caches[v].fwdAmount[k] }

// BwdAmount returns the cumulative load over stops k..end of vehicle v.
func (s *State) BwdAmount(v, k int) Amounts { s.ensureValid(v); return s.caches[v].bwdAmount[k] }

// NodeGain returns the travel cost saved by removing stop k from
// vehicle v's route.
func (s *State) NodeGain(v, k int) float64 { s.ensureValid(v); return s.caches[v].nodeGain[k] }

// EdgeGain returns the gain of reversing the adjacent pair (k, k+1) in
// vehicle v's route in place.
func (s *State) EdgeGain(v, k int) float64 { s.ensureValid(v); return s.caches[v].edgeGain[k] }

// EdgeCostAround returns c(prev,k)+c(k,next) for stop k of vehicle v.
func (s *State) EdgeCostAround(v, k int) float64 {
	s.ensureValid(v)
	return s.caches[v].edgeCostAround[k]
}

// NodeSkills returns the denormalized required-skills set of the job at
// position k in vehicle v's route.
func (s *State) NodeSkills(v, k int) SkillSet { s.ensureValid(v); return s.caches[v].nodeSkills[k] }

// NearestJobRank returns, for each stop of v1's route, the rank in v2's
// route of the stop nearest to it under the cost matrix.
func (s *State) NearestJobRank(v1, v2 int) []int {
	key := [2]int{v1, v2}
	if ranks, ok := s.nearestRank[key]; ok {
		return ranks
	}
	route1 := s.solution.Routes[v1]
	route2 := s.solution.Routes[v2]
	ranks := make([]int, len(route1))
	for k, jobIdx := range route1 {
		loc := s.input.Jobs[jobIdx].Index
		best, bestCost := -1, math.MaxFloat64
		for rank, j2 := range route2 {
			c := s.input.costBetween(loc, s.input.Jobs[j2].Index)
			if c < bestCost {
				bestCost, best = c, rank
			}
		}
		ranks[k] = best
	}
	s.nearestRank[key] = ranks
	return ranks
}

// RouteCost returns vehicle v's full route cost, including the legs to
// and from its start/end indices where present.
func (s *State) RouteCost(v int) float64 {
	s.ensureValid(v)
	route := s.solution.Routes[v]
	veh := s.input.Vehicles[v]
	n := len(route)
	if n == 0 {
		if veh.StartIndex != nil && veh.EndIndex != nil {
			return s.input.costBetween(*veh.StartIndex, *veh.EndIndex)
		}
		return 0
	}
	total := s.caches[v].fwdCost[n-1]
	lastLoc := s.input.Jobs[route[n-1]].Index
	if veh.EndIndex != nil {
		total += s.input.costBetween(lastLoc, *veh.EndIndex)
	}
	return total
}

// unassignedJobs returns the indices of jobs absent from every route.
func (s *State) unassignedJobs() []int {
	assigned := make([]bool, len(s.input.Jobs))
	for _, route := range s.solution.Routes {
		for _, j := range route {
			assigned[j] = true
		}
	}
	var out []int
	for j, a := range assigned {
		if !a {
			out = append(out, j)
		}
	}
	return out
}

// indicators computes the current (unassigned, cost, used_vehicles)
// tuple from scratch.
func (s *State) indicators() Indicators {
	var total float64
	used := 0
	for v := range s.solution.Routes {
		if len(s.solution.Routes[v]) > 0 {
			used++
		}
		total += s.RouteCost(v)
	}
	return Indicators{
		Unassigned:   len(s.unassignedJobs()),
		Cost:         total,
		UsedVehicles: used,
	}
}

func resizeFloat(buf []float64, n int) []float64 {
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]float64, n)
}

func resizeAmounts(buf []Amounts, n int) []Amounts {
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]Amounts, n)
}

func resizeSkills(buf []SkillSet, n int) []SkillSet {
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]SkillSet, n)
}
