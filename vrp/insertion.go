package vrp

import "math"

// insertionCandidate is the best feasible insertion found for one
// unassigned job: which vehicle, which position, and at what delta
// cost, plus the regret score used to prioritize it against other
// unassigned jobs.
type insertionCandidate struct {
	job         int
	vehicle     int
	position    int
	deltaCost   float64
	regretScore float64
	feasible    bool
}

// bestInsertion scans every (vehicle, position) pair for job and
// returns the best and second-best feasible insertion delta cost,
// δ(j,v,pos) = c(prev,j)+c(j,next)-c(prev,next).
func bestInsertion(s *State, job int) (best, second float64, bestVehicle, bestPos int, feasible bool) {
	best, second = math.Inf(1), math.Inf(1)
	bestVehicle, bestPos = -1, -1
	j := s.input.Jobs[job]

	for v := range s.input.Vehicles {
		veh := s.input.Vehicles[v]
		if !j.RequiredSkills.Subset(veh.ProvidedSkills) {
			continue
		}
		route := s.solution.Routes[v]
		for pos := 0; pos <= len(route); pos++ {
			candidate := insertAt(route, pos, job)
			if !sumAmounts(s.input, candidate, len(veh.Capacity)).LessEqual(veh.Capacity) {
				continue
			}
			delta := routeCostOf(s.input, v, candidate) - s.RouteCost(v)
			if delta < best {
				second = best
				best, bestVehicle, bestPos = delta, v, pos
			} else if delta < second {
				second = delta
			}
		}
	}
	return best, second, bestVehicle, bestPos, bestVehicle != -1
}

// scoreUnassigned computes an insertionCandidate for every currently
// unassigned job: score(j) = δ_second_best - ρ·δ_best, where ρ is the
// engine's regret coefficient. A job with no
// feasible insertion anywhere is reported with feasible=false and is
// skipped by the caller.
func scoreUnassigned(s *State, unassigned []int, rho float64) []insertionCandidate {
	out := make([]insertionCandidate, 0, len(unassigned))
	for _, job := range unassigned {
		best, second, v, pos, ok := bestInsertion(s, job)
		if !ok {
			out = append(out, insertionCandidate{job: job, feasible: false})
			continue
		}
		regret := second - rho*best
		if math.IsInf(second, 1) {
			// Only one feasible slot exists anywhere: no second-best to
			// regret against, so the lone option scores purely on how
			// cheap it is to insert now, before other jobs crowd it out.
			regret = -best
		}
		out = append(out, insertionCandidate{
			job:         job,
			vehicle:     v,
			position:    pos,
			deltaCost:   best,
			regretScore: regret,
			feasible:    true,
		})
	}
	return out
}

// runJobAddition repeatedly picks the unassigned job with the highest
// regret score, inserts it at its best feasible position, and
// invalidates the receiving vehicle, until no feasible insertion
// remains. It returns the set of vehicles touched, for the caller to
// fold into its own invalidation bookkeeping.
func runJobAddition(s *State, rho float64) []int {
	touched := make(map[int]bool)
	for {
		unassigned := s.unassignedJobs()
		if len(unassigned) == 0 {
			return setToSlice(touched)
		}
		candidates := scoreUnassigned(s, unassigned, rho)

		bestIdx := -1
		for i, c := range candidates {
			if !c.feasible {
				continue
			}
			if bestIdx == -1 || c.regretScore > candidates[bestIdx].regretScore {
				bestIdx = i
			}
		}
		if bestIdx == -1 {
			return setToSlice(touched)
		}

		chosen := candidates[bestIdx]
		route := s.solution.Routes[chosen.vehicle]
		s.solution.Routes[chosen.vehicle] = insertAt(route, chosen.position, chosen.job)
		s.invalidate(chosen.vehicle)
		touched[chosen.vehicle] = true
	}
}

func setToSlice(m map[int]bool) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
