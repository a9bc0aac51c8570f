package vrp

// Operator is one candidate local-search move. Gain is computed lazily
// and cached on first call; IsValid and Apply may rely
// on that cache but must tolerate being called before Gain (they derive
// the same candidate route(s) independently, memoized on the operator
// itself).
//
// Operators are constructed fresh inside each outer iteration's
// enumeration loop and never persisted across an Apply, which is what
// keeps a stale gain or candidate route from outliving the mutation
// that invalidated it.
type Operator interface {
	Gain(s *State) float64
	IsValid(s *State) bool
	Apply(s *State) []int
	Key() (sourceVehicle, sourceRank, targetVehicle, targetRank int)
	Name() string

	// AdditionCandidates names the vehicles whose routes the
	// job-addition step should revisit after this operator is applied:
	// every vehicle the operator touches, since a vehicle's insertion
	// feasibility and cost depend only on its own route, capacity, and
	// skills.
	AdditionCandidates(s *State) []int
}

// opBase memoizes the gain computation shared by every operator.
type opBase struct {
	gainComputed bool
	gainValue    float64
}

func (b *opBase) cacheGain(v float64) float64 {
	b.gainValue = v
	b.gainComputed = true
	return v
}

// routeCostOf computes the full cost of a hypothetical stop sequence for
// vehicle v, including its start/end legs, without touching the engine's
// cache. Operators use this to score candidate mutations before
// committing them: clone the candidate route and recompute its cost in
// full, rather than maintaining an algebraic delta.
func routeCostOf(in *Input, v int, route []int) float64 {
	veh := in.Vehicles[v]
	n := len(route)
	if n == 0 {
		if veh.StartIndex != nil && veh.EndIndex != nil {
			return in.costBetween(*veh.StartIndex, *veh.EndIndex)
		}
		return 0
	}
	var total float64
	prevLoc, hasPrev := 0, false
	if veh.StartIndex != nil {
		prevLoc, hasPrev = *veh.StartIndex, true
	}
	for k := 0; k < n; k++ {
		loc := in.Jobs[route[k]].Index
		if hasPrev {
			total += in.costBetween(prevLoc, loc)
		}
		prevLoc, hasPrev = loc, true
	}
	if veh.EndIndex != nil {
		total += in.costBetween(prevLoc, *veh.EndIndex)
	}
	return total
}

// sumAmounts totals the amount vectors of the jobs in route, component
// -wise, over dims dimensions.
func sumAmounts(in *Input, route []int, dims int) Amounts {
	total := make(Amounts, dims)
	for _, j := range route {
		total = total.Add(in.Jobs[j].Amount)
	}
	return total
}

// routeFeasible checks vehicle v's capacity and every stop's skill
// requirement for a hypothetical route.
func routeFeasible(in *Input, v int, route []int) bool {
	veh := in.Vehicles[v]
	if !sumAmounts(in, route, len(veh.Capacity)).LessEqual(veh.Capacity) {
		return false
	}
	for _, j := range route {
		if !in.Jobs[j].RequiredSkills.Subset(veh.ProvidedSkills) {
			return false
		}
	}
	return true
}

func reverseInts(route []int) []int {
	out := make([]int, len(route))
	for i, v := range route {
		out[len(route)-1-i] = v
	}
	return out
}

func cloneWithout(route []int, at int) []int {
	out := make([]int, 0, len(route)-1)
	out = append(out, route[:at]...)
	out = append(out, route[at+1:]...)
	return out
}

func insertAt(route []int, pos int, items ...int) []int {
	out := make([]int, 0, len(route)+len(items))
	out = append(out, route[:pos]...)
	out = append(out, items...)
	out = append(out, route[pos:]...)
	return out
}

// IntraExchange swaps two stops within one route. Reordering never
// changes the route's total load, so it is always capacity-feasible
// given the route was feasible before; it is still checked uniformly
// through routeFeasible for symmetry with the other operators.
type IntraExchange struct {
	opBase
	V, R1, R2 int
	candidate []int
}

func NewIntraExchange(v, r1, r2 int) *IntraExchange {
	return &IntraExchange{V: v, R1: r1, R2: r2}
}

func (op *IntraExchange) ensureCandidate(s *State) {
	if op.candidate != nil {
		return
	}
	cand := append([]int(nil), s.solution.Routes[op.V]...)
	cand[op.R1], cand[op.R2] = cand[op.R2], cand[op.R1]
	op.candidate = cand
}

func (op *IntraExchange) Gain(s *State) float64 {
	if op.gainComputed {
		return op.gainValue
	}
	op.ensureCandidate(s)
	before := s.RouteCost(op.V)
	after := routeCostOf(s.input, op.V, op.candidate)
	return op.cacheGain(before - after)
}

func (op *IntraExchange) IsValid(s *State) bool {
	op.ensureCandidate(s)
	return routeFeasible(s.input, op.V, op.candidate)
}

func (op *IntraExchange) Apply(s *State) []int {
	op.ensureCandidate(s)
	s.solution.Routes[op.V] = op.candidate
	s.invalidate(op.V)
	return []int{op.V}
}

func (op *IntraExchange) Key() (int, int, int, int) { return op.V, op.R1, op.V, op.R2 }
func (op *IntraExchange) Name() string              { return "intra-exchange" }
func (op *IntraExchange) AdditionCandidates(s *State) []int { return []int{op.V} }

// CrossExchange swaps one stop from V1 with one stop from V2.
type CrossExchange struct {
	opBase
	V1, R1, V2, R2         int
	candidate1, candidate2 []int
}

func NewCrossExchange(v1, r1, v2, r2 int) *CrossExchange {
	return &CrossExchange{V1: v1, R1: r1, V2: v2, R2: r2}
}

func (op *CrossExchange) ensureCandidate(s *State) {
	if op.candidate1 != nil {
		return
	}
	r1 := append([]int(nil), s.solution.Routes[op.V1]...)
	r2 := append([]int(nil), s.solution.Routes[op.V2]...)
	r1[op.R1], r2[op.R2] = r2[op.R2], r1[op.R1]
	op.candidate1, op.candidate2 = r1, r2
}

func (op *CrossExchange) Gain(s *State) float64 {
	if op.gainComputed {
		return op.gainValue
	}
	op.ensureCandidate(s)
	before := s.RouteCost(op.V1) + s.RouteCost(op.V2)
	after := routeCostOf(s.input, op.V1, op.candidate1) + routeCostOf(s.input, op.V2, op.candidate2)
	return op.cacheGain(before - after)
}

func (op *CrossExchange) IsValid(s *State) bool {
	op.ensureCandidate(s)
	return routeFeasible(s.input, op.V1, op.candidate1) && routeFeasible(s.input, op.V2, op.candidate2)
}

func (op *CrossExchange) Apply(s *State) []int {
	op.ensureCandidate(s)
	s.solution.Routes[op.V1] = op.candidate1
	s.solution.Routes[op.V2] = op.candidate2
	s.invalidate(op.V1, op.V2)
	return []int{op.V1, op.V2}
}

func (op *CrossExchange) Key() (int, int, int, int) { return op.V1, op.R1, op.V2, op.R2 }
func (op *CrossExchange) Name() string              { return "cross-exchange" }
func (op *CrossExchange) AdditionCandidates(s *State) []int { return []int{op.V1, op.V2} }

// Relocate moves one stop from V1's route to position Pos in V2's
// route. V1 and V2 must differ; intra-route single-stop relocation is
// not offered as a distinct operator (IntraOrOpt with Length 1 would
// cover it, but no caller needs that case).
type Relocate struct {
	opBase
	V1, R1, V2, Pos int
	cand1, cand2    []int
}

func NewRelocate(v1, r1, v2, pos int) *Relocate {
	return &Relocate{V1: v1, R1: r1, V2: v2, Pos: pos}
}

func (op *Relocate) ensureCandidate(s *State) {
	if op.cand1 != nil {
		return
	}
	src := s.solution.Routes[op.V1]
	job := src[op.R1]
	op.cand1 = cloneWithout(src, op.R1)
	op.cand2 = insertAt(s.solution.Routes[op.V2], op.Pos, job)
}

func (op *Relocate) Gain(s *State) float64 {
	if op.gainComputed {
		return op.gainValue
	}
	op.ensureCandidate(s)
	before := s.RouteCost(op.V1) + s.RouteCost(op.V2)
	after := routeCostOf(s.input, op.V1, op.cand1) + routeCostOf(s.input, op.V2, op.cand2)
	return op.cacheGain(before - after)
}

func (op *Relocate) IsValid(s *State) bool {
	op.ensureCandidate(s)
	return routeFeasible(s.input, op.V1, op.cand1) && routeFeasible(s.input, op.V2, op.cand2)
}

func (op *Relocate) Apply(s *State) []int {
	op.ensureCandidate(s)
	s.solution.Routes[op.V1] = op.cand1
	s.solution.Routes[op.V2] = op.cand2
	s.invalidate(op.V1, op.V2)
	return []int{op.V1, op.V2}
}

func (op *Relocate) Key() (int, int, int, int) { return op.V1, op.R1, op.V2, op.Pos }
func (op *Relocate) Name() string              { return "relocate" }
func (op *Relocate) AdditionCandidates(s *State) []int { return []int{op.V1, op.V2} }

// OrOpt moves a consecutive chain of Length stops (2 or 3) starting at
// R1 in V1's route to position Pos in V2's route.
type OrOpt struct {
	opBase
	V1, R1, Length, V2, Pos int
	cand1, cand2            []int
}

func NewOrOpt(v1, r1, length, v2, pos int) *OrOpt {
	return &OrOpt{V1: v1, R1: r1, Length: length, V2: v2, Pos: pos}
}

func (op *OrOpt) ensureCandidate(s *State) {
	if op.cand1 != nil {
		return
	}
	src := s.solution.Routes[op.V1]
	chain := append([]int(nil), src[op.R1:op.R1+op.Length]...)
	reduced := make([]int, 0, len(src)-op.Length)
	reduced = append(reduced, src[:op.R1]...)
	reduced = append(reduced, src[op.R1+op.Length:]...)
	op.cand1 = reduced
	op.cand2 = insertAt(s.solution.Routes[op.V2], op.Pos, chain...)
}

func (op *OrOpt) Gain(s *State) float64 {
	if op.gainComputed {
		return op.gainValue
	}
	op.ensureCandidate(s)
	before := s.RouteCost(op.V1) + s.RouteCost(op.V2)
	after := routeCostOf(s.input, op.V1, op.cand1) + routeCostOf(s.input, op.V2, op.cand2)
	return op.cacheGain(before - after)
}

func (op *OrOpt) IsValid(s *State) bool {
	op.ensureCandidate(s)
	return routeFeasible(s.input, op.V1, op.cand1) && routeFeasible(s.input, op.V2, op.cand2)
}

func (op *OrOpt) Apply(s *State) []int {
	op.ensureCandidate(s)
	s.solution.Routes[op.V1] = op.cand1
	s.solution.Routes[op.V2] = op.cand2
	s.invalidate(op.V1, op.V2)
	return []int{op.V1, op.V2}
}

func (op *OrOpt) Key() (int, int, int, int) { return op.V1, op.R1, op.V2, op.Pos }
func (op *OrOpt) Name() string              { return "or-opt" }
func (op *OrOpt) AdditionCandidates(s *State) []int { return []int{op.V1, op.V2} }

// IntraOrOpt is OrOpt restricted to a single route: the chain is
// removed and reinserted at Pos within the same vehicle, where Pos
// indexes the route with the chain already removed.
type IntraOrOpt struct {
	opBase
	V, R1, Length, Pos int
	candidate          []int
}

func NewIntraOrOpt(v, r1, length, pos int) *IntraOrOpt {
	return &IntraOrOpt{V: v, R1: r1, Length: length, Pos: pos}
}

func (op *IntraOrOpt) ensureCandidate(s *State) {
	if op.candidate != nil {
		return
	}
	route := s.solution.Routes[op.V]
	chain := append([]int(nil), route[op.R1:op.R1+op.Length]...)
	reduced := make([]int, 0, len(route)-op.Length)
	reduced = append(reduced, route[:op.R1]...)
	reduced = append(reduced, route[op.R1+op.Length:]...)
	op.candidate = insertAt(reduced, op.Pos, chain...)
}

func (op *IntraOrOpt) Gain(s *State) float64 {
	if op.gainComputed {
		return op.gainValue
	}
	op.ensureCandidate(s)
	before := s.RouteCost(op.V)
	after := routeCostOf(s.input, op.V, op.candidate)
	return op.cacheGain(before - after)
}

func (op *IntraOrOpt) IsValid(s *State) bool {
	op.ensureCandidate(s)
	return routeFeasible(s.input, op.V, op.candidate)
}

func (op *IntraOrOpt) Apply(s *State) []int {
	op.ensureCandidate(s)
	s.solution.Routes[op.V] = op.candidate
	s.invalidate(op.V)
	return []int{op.V}
}

func (op *IntraOrOpt) Key() (int, int, int, int) { return op.V, op.R1, op.V, op.Pos }
func (op *IntraOrOpt) Name() string              { return "intra-or-opt" }
func (op *IntraOrOpt) AdditionCandidates(s *State) []int { return []int{op.V} }

// TwoOpt swaps the tails of V1 (after position I) and V2 (after
// position J): new V1 = V1[0..I] + V2[J+1..], new V2 = V2[0..J] +
// V1[I+1..].
type TwoOpt struct {
	opBase
	V1, I, V2, J int
	cand1, cand2 []int
}

func NewTwoOpt(v1, i, v2, j int) *TwoOpt {
	return &TwoOpt{V1: v1, I: i, V2: v2, J: j}
}

func (op *TwoOpt) ensureCandidate(s *State) {
	if op.cand1 != nil {
		return
	}
	r1 := s.solution.Routes[op.V1]
	r2 := s.solution.Routes[op.V2]
	cand1 := append([]int(nil), r1[:op.I+1]...)
	cand1 = append(cand1, r2[op.J+1:]...)
	cand2 := append([]int(nil), r2[:op.J+1]...)
	cand2 = append(cand2, r1[op.I+1:]...)
	op.cand1, op.cand2 = cand1, cand2
}

func (op *TwoOpt) Gain(s *State) float64 {
	if op.gainComputed {
		return op.gainValue
	}
	op.ensureCandidate(s)
	before := s.RouteCost(op.V1) + s.RouteCost(op.V2)
	after := routeCostOf(s.input, op.V1, op.cand1) + routeCostOf(s.input, op.V2, op.cand2)
	return op.cacheGain(before - after)
}

func (op *TwoOpt) IsValid(s *State) bool {
	op.ensureCandidate(s)
	return routeFeasible(s.input, op.V1, op.cand1) && routeFeasible(s.input, op.V2, op.cand2)
}

func (op *TwoOpt) Apply(s *State) []int {
	op.ensureCandidate(s)
	s.solution.Routes[op.V1] = op.cand1
	s.solution.Routes[op.V2] = op.cand2
	s.invalidate(op.V1, op.V2)
	return []int{op.V1, op.V2}
}

func (op *TwoOpt) Key() (int, int, int, int) { return op.V1, op.I, op.V2, op.J }
func (op *TwoOpt) Name() string              { return "2-opt" }
func (op *TwoOpt) AdditionCandidates(s *State) []int { return []int{op.V1, op.V2} }

// ReverseTwoOpt swaps and reverses the tails of V1 and V2: new V1 =
// V1[0..I] + reverse(V2[0..J]), new V2 = reverse(V1[I+1..]) +
// V2[J+1..].
type ReverseTwoOpt struct {
	opBase
	V1, I, V2, J int
	cand1, cand2 []int
}

func NewReverseTwoOpt(v1, i, v2, j int) *ReverseTwoOpt {
	return &ReverseTwoOpt{V1: v1, I: i, V2: v2, J: j}
}

func (op *ReverseTwoOpt) ensureCandidate(s *State) {
	if op.cand1 != nil {
		return
	}
	r1 := s.solution.Routes[op.V1]
	r2 := s.solution.Routes[op.V2]
	cand1 := append([]int(nil), r1[:op.I+1]...)
	cand1 = append(cand1, reverseInts(r2[:op.J+1])...)
	cand2 := reverseInts(r1[op.I+1:])
	cand2 = append(cand2, r2[op.J+1:]...)
	op.cand1, op.cand2 = cand1, cand2
}

func (op *ReverseTwoOpt) Gain(s *State) float64 {
	if op.gainComputed {
		return op.gainValue
	}
	op.ensureCandidate(s)
	before := s.RouteCost(op.V1) + s.RouteCost(op.V2)
	after := routeCostOf(s.input, op.V1, op.cand1) + routeCostOf(s.input, op.V2, op.cand2)
	return op.cacheGain(before - after)
}

func (op *ReverseTwoOpt) IsValid(s *State) bool {
	op.ensureCandidate(s)
	return routeFeasible(s.input, op.V1, op.cand1) && routeFeasible(s.input, op.V2, op.cand2)
}

func (op *ReverseTwoOpt) Apply(s *State) []int {
	op.ensureCandidate(s)
	s.solution.Routes[op.V1] = op.cand1
	s.solution.Routes[op.V2] = op.cand2
	s.invalidate(op.V1, op.V2)
	return []int{op.V1, op.V2}
}

func (op *ReverseTwoOpt) Key() (int, int, int, int) { return op.V1, op.I, op.V2, op.J }
func (op *ReverseTwoOpt) Name() string              { return "reverse-2-opt" }
func (op *ReverseTwoOpt) AdditionCandidates(s *State) []int { return []int{op.V1, op.V2} }
