// Package satswarm implements a cycle-accurate performance simulator for a
// hypothetical hardware accelerator that solves 3-SAT problems over a mesh of
// independent DPLL solver nodes cooperating through work-stealing forks.
package satswarm

import "fmt"

// VarId identifies a CNF variable. Value 0 is reserved and never denotes a
// real problem variable; it is used as the padding sentinel for clauses
// shorter than the supported width.
type VarId uint32

// ClauseLength is K in K-SAT. Only 3-SAT is supported.
const ClauseLength = 3

// ClauseId indexes a clause in a ClauseTable.
type ClauseId uint32

// Literal is a signed reference to a variable: magnitude is the VarId, sign
// encodes polarity (negative means negated).
type Literal int32

// Var returns the variable referenced by l.
func (l Literal) Var() VarId {
	if l < 0 {
		return VarId(-l)
	}
	return VarId(l)
}

// Negated reports whether l negates its variable.
func (l Literal) Negated() bool {
	return l < 0
}

func (l Literal) String() string {
	if l.Negated() {
		return fmt.Sprintf("-%d", l.Var())
	}
	return fmt.Sprintf("%d", l.Var())
}

// Position locates one literal occurrence: the term_index-th literal of
// clause clause_index.
type Position struct {
	ClauseIdx ClauseId
	TermIdx   uint8
}
