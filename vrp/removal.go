package vrp

import "sort"

// removalCandidate is one stop eligible for speculative removal: its
// vehicle, rank, job index, and the travel cost saved by removing it in
// place.
type removalCandidate struct {
	vehicle  int
	rank     int
	job      int
	nodeGain float64
}

// relatedness scores how related two jobs' stops are under the cost
// matrix, the geographic-distance analogue for stops that have no
// independent lat/lng, only a position in the same cost matrix as every
// other stop.
func relatedness(s *State, jobA, jobB int) float64 {
	return s.input.costBetween(s.input.Jobs[jobA].Index, s.input.Jobs[jobB].Index)
}

// rankRemovalCandidates lists every stop across every route with its
// node_gain, sorted by descending gain. Ties are broken by Shaw-style
// relatedness to the most recently removed stop (closer stops sort
// first) rather than arbitrary position order, keeping the ranking
// deterministic and reproducible instead of resolving ties with a
// random seed pick.
func rankRemovalCandidates(s *State, lastRemoved int, hasLastRemoved bool) []removalCandidate {
	var out []removalCandidate
	for v, route := range s.solution.Routes {
		for k, job := range route {
			out = append(out, removalCandidate{vehicle: v, rank: k, job: job, nodeGain: s.NodeGain(v, k)})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].nodeGain != out[j].nodeGain {
			return out[i].nodeGain > out[j].nodeGain
		}
		if !hasLastRemoved {
			return false
		}
		return relatedness(s, out[i].job, lastRemoved) < relatedness(s, out[j].job, lastRemoved)
	})
	return out
}

// runRemoveUnassignable looks for the highest-node_gain stop whose
// removal and best feasible re-insertion
// elsewhere strictly lowers total cost, applies that single move, and
// returns the vehicle it vacated. It performs at most one removal per
// call, matching the "at most once per outer iteration" rule; the
// caller is responsible for calling it no more than once per pass.
func runRemoveUnassignable(s *State) (vehicle int, removed bool) {
	before := s.indicators().Cost
	candidates := rankRemovalCandidates(s, 0, false)

	for _, c := range candidates {
		if c.nodeGain <= 0 {
			break
		}
		origRoute := append([]int(nil), s.solution.Routes[c.vehicle]...)
		s.solution.Routes[c.vehicle] = cloneWithout(origRoute, c.rank)
		s.invalidate(c.vehicle)

		_, _, bv, bp, ok := bestInsertion(s, c.job)
		if !ok {
			s.solution.Routes[c.vehicle] = origRoute
			s.invalidate(c.vehicle)
			continue
		}
		s.solution.Routes[bv] = insertAt(s.solution.Routes[bv], bp, c.job)
		s.invalidate(bv)

		if s.indicators().Cost < before {
			return c.vehicle, true
		}

		s.solution.Routes[bv] = cloneWithout(s.solution.Routes[bv], bp)
		s.invalidate(bv)
		s.solution.Routes[c.vehicle] = origRoute
		s.invalidate(c.vehicle)
	}
	return 0, false
}
