// Package oracle wraps an independent SAT solver used only to cross-check
// the simulator's own verdicts; it shares no code with the core DPLL (C2) or
// the per-node solver (C4), so agreement between the two is meaningful.
package oracle

import (
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
)

// Result is the oracle's verdict plus how long it took to produce, for the
// "reference-oracle-time-ns" result-log column.
type Result struct {
	Satisfiable bool
	Elapsed     time.Duration
}

// Solve runs gini over clauses (1-indexed signed literals, DIMACS style) and
// reports satisfiability.
func Solve(numVars int, clauses [][]int) Result {
	start := time.Now()
	g := gini.New()
	for _, clause := range clauses {
		for _, lit := range clause {
			v := z.Var(abs(lit))
			l := v.Pos()
			if lit < 0 {
				l = v.Neg()
			}
			g.Add(l)
		}
		g.Add(0)
	}
	sat := g.Solve() == 1
	return Result{Satisfiable: sat, Elapsed: time.Since(start)}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
