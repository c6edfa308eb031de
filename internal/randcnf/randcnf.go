// Package randcnf generates random 3-SAT instances for fixture and property
// tests, promoted from the teacher project's makeRandomSat test helper into
// reusable plumbing (the reference Rust project exposes the equivalent as
// ClauseTable::random).
package randcnf

import "math/rand"

// Satisfiable builds a random 3-SAT instance over numVars variables and
// numClauses clauses (width in [1,3]) that is satisfied by a planted
// assignment: every clause contains at least one literal agreeing with that
// assignment, so the instance is satisfiable by construction.
func Satisfiable(seed int64, numVars, numClauses int) [][]int {
	rng := rand.New(rand.NewSource(seed))
	assignment := make([]bool, numVars)
	for v := range assignment {
		assignment[v] = rng.Intn(2) == 1
	}

	width := numVars
	if width > 3 {
		width = 3
	}
	vars := make([]int, numVars)
	for v := range vars {
		vars[v] = v
	}

	problem := make([][]int, numClauses)
	for i := range problem {
		rng.Shuffle(len(vars), func(a, b int) { vars[a], vars[b] = vars[b], vars[a] })
		clauseWidth := rng.Intn(width) + 1
		clause := make([]int, clauseWidth)
		fixed := rng.Intn(clauseWidth)
		for j := range clause {
			v := vars[j] + 1
			if j == fixed {
				if !assignment[v-1] {
					v = -v
				}
			} else if rng.Intn(2) == 1 {
				v = -v
			}
			clause[j] = v
		}
		problem[i] = clause
	}
	return problem
}

// Unsatisfiable builds an instance guaranteed unsatisfiable: a random
// satisfiable core over all numVars variables, plus two contradictory unit
// clauses on variable numVars (numClauses+2 clauses in all).
func Unsatisfiable(seed int64, numVars, numClauses int) [][]int {
	if numVars < 1 {
		numVars = 1
	}
	core := Satisfiable(seed, numVars, numClauses)
	pinned := numVars
	core = append(core, []int{pinned}, []int{-pinned})
	return core
}
