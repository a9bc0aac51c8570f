// Package vrp implements the capacitated vehicle routing problem (CVRP)
// local-search engine: given a fleet of vehicles and a set of jobs, it
// assigns every job to a vehicle and orders each vehicle's stops to
// minimize total travel cost while respecting capacity and skill
// constraints.
package vrp

import "github.com/routekit/cvrp/matrixview"

// SkillSet is a fixed-width bitset of up to 64 distinct skills. Using a
// uint64 instead of a map[string]struct{} avoids an allocation per stop
// in the hot path (the node_skills cache) and makes subset checks a
// single AND.
type SkillSet uint64

// Skill identifies one bit position in a SkillSet.
type Skill uint

// NewSkillSet builds a SkillSet from individual skill bit positions.
func NewSkillSet(skills ...Skill) SkillSet {
	var s SkillSet
	for _, sk := range skills {
		s |= 1 << sk
	}
	return s
}

// Has reports whether s includes skill.
func (s SkillSet) Has(skill Skill) bool { return s&(1<<skill) != 0 }

// Subset reports whether every skill in s is also present in other —
// the required_skills ⊆ provided_skills check used to gate job
// assignment to a vehicle.
func (s SkillSet) Subset(other SkillSet) bool { return s&other == s }

// Union returns the combination of s and other.
func (s SkillSet) Union(other SkillSet) SkillSet { return s | other }

// Amounts is a component-wise integer vector, one dimension or several,
// used for both job pickup amounts and vehicle capacities.
type Amounts []int64

// LessEqual reports whether every component of a is <= the matching
// component of capacity, i.e. a fits within capacity. Both must be the
// same length; a length mismatch is an InvalidInput condition caught at
// setup, never reached here.
func (a Amounts) LessEqual(capacity Amounts) bool {
	for i := range a {
		if a[i] > capacity[i] {
			return false
		}
	}
	return true
}

// Add returns the component-wise sum of a and b.
func (a Amounts) Add(b Amounts) Amounts {
	out := make(Amounts, len(a))
	for i := range a {
		out[i] = a[i] + b[i]
	}
	return out
}

// Job is one pickup task: a matrix index (its position in the cost
// matrix), a required-skills set, and a pickup amount vector.
type Job struct {
	Index          int
	RequiredSkills SkillSet
	Amount         Amounts
}

// Vehicle is one fleet member: a capacity vector, a provided-skills set,
// and optional start/end matrix indices (nil means the route has no
// depot leg on that side).
type Vehicle struct {
	Capacity       Amounts
	ProvidedSkills SkillSet
	StartIndex     *int
	EndIndex       *int
}

// Input is the caller-provided, read-only problem instance. It is never
// mutated by the engine and may be aliased freely across parallel
// engine instances.
type Input struct {
	Matrix   *matrixview.Matrix
	Jobs     []Job
	Vehicles []Vehicle
}

// costBetween resolves the travel cost between two matrix indices via
// MustAt, which does no range checking; job and vehicle indices are
// range-checked once in NewEngine.
func (in *Input) costBetween(a, b int) float64 {
	return in.Matrix.MustAt(a, b)
}

// Solution is a raw multi-route assignment: Routes[v] is vehicle v's
// ordered sequence of job indices (indices into Input.Jobs). Jobs absent
// from every route form the unassigned set.
type Solution struct {
	Routes [][]int
}

// Clone returns a deep, independent copy of s.
func (s Solution) Clone() Solution {
	out := Solution{Routes: make([][]int, len(s.Routes))}
	for i, r := range s.Routes {
		out.Routes[i] = append([]int(nil), r...)
	}
	return out
}

// Indicators is the lexicographic solution-quality tuple: fewer
// unassigned jobs is always better, then lower cost, then fewer
// vehicles used.
type Indicators struct {
	Unassigned   int
	Cost         float64
	UsedVehicles int
}

// Less reports whether i is strictly better than other under the
// lexicographic order (unassigned, cost, used_vehicles).
func (i Indicators) Less(other Indicators) bool {
	if i.Unassigned != other.Unassigned {
		return i.Unassigned < other.Unassigned
	}
	if i.Cost != other.Cost {
		return i.Cost < other.Cost
	}
	return i.UsedVehicles < other.UsedVehicles
}
