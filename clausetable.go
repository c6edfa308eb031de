package satswarm

// TermState is the ternary state of one literal occurrence in the problem
// state: whether its containing variable's current assignment agrees with
// the literal's polarity (True), disagrees (False), or is unassigned
// (Symbolic).
type TermState uint8

const (
	Symbolic TermState = iota
	True
	False
)

func (s TermState) String() string {
	switch s {
	case True:
		return "T"
	case False:
		return "F"
	default:
		return "?"
	}
}

// Term is one literal slot in a clause: a variable and its polarity.
type Term struct {
	Var     VarId
	Negated bool
}

// Clause is a fixed-arity sequence of exactly ClauseLength terms.
type Clause [ClauseLength]Term

// VarOccurrences lists, for one variable, every clause position where it
// appears positively (Pos) and negatively (Neg).
type VarOccurrences struct {
	Pos []Position
	Neg []Position
}

// ProblemState is the mutable per-clause, per-term ternary assignment state.
// It is owned per node; ClauseTable.CloneForNode produces a fresh one
// initialized to Symbolic, except padding positions, which are False.
type ProblemState [][ClauseLength]TermState

// ClauseTable is the static (symbolic + transpose) representation of a CNF
// problem, shared read-only across every simulated node, plus a per-instance
// ProblemState.
//
// The invariant enforced at construction: for every real (non-padding)
// position, exactly one of transpose[v].Pos or transpose[v].Neg contains it.
// Padding positions are not in the transpose table, so scanning it
// enumerates NumClauses()*ClauseLength positions only when no clause is
// padded.
type ClauseTable struct {
	symbolic  []Clause
	transpose []VarOccurrences // indexed by VarId; transpose[0] is unused (reserved)
	numVars   int

	// State is the mutable per-term assignment state for this instance of
	// the table. It starts all-Symbolic except padding positions (False) and
	// is mutated by Node.substitute.
	State ProblemState
}

// NumberOfVariables returns the number of real (non-reserved) variables.
func (t *ClauseTable) NumberOfVariables() int { return t.numVars }

// NumberOfClauses returns the number of clauses in the symbolic table.
func (t *ClauseTable) NumberOfClauses() int { return len(t.symbolic) }

// Clause returns the symbolic clause at idx.
func (t *ClauseTable) Clause(idx ClauseId) Clause { return t.symbolic[idx] }

// Occurrences returns the transpose entry for v.
func (t *ClauseTable) Occurrences(v VarId) VarOccurrences { return t.transpose[v] }

// CloneForNode produces a per-node ClauseTable that shares this table's
// immutable symbolic and transpose data but owns a fresh ProblemState,
// all-Symbolic except padding positions, which seedPadding fixes to False. This is the only per-node allocation; the symbolic/transpose
// slices are reused by reference.
func (t *ClauseTable) CloneForNode() *ClauseTable {
	state := make(ProblemState, len(t.symbolic))
	seedPadding(t.symbolic, state)
	return &ClauseTable{
		symbolic:  t.symbolic,
		transpose: t.transpose,
		numVars:   t.numVars,
		State:     state,
	}
}

// seedPadding fixes every Var-0 padding position to False, since an OR
// clause must not be satisfied by its padding alone: a False term never
// satisfies its clause and is never counted as Symbolic, so a padded clause's
// satisfiability depends entirely on its real literals, exactly as if it had
// been stored at its true (narrower) width. Shared by newClauseTable and
// CloneForNode so every fresh ProblemState starts consistent regardless of
// how it was constructed.
func seedPadding(clauses []Clause, state ProblemState) {
	for ci, cls := range clauses {
		for ti, term := range cls {
			if term.Var == 0 {
				state[ci][ti] = False
			}
		}
	}
}

// newClauseTable builds the symbolic and transpose tables from a sequence of
// already-padded, already-validated clauses.
func newClauseTable(clauses []Clause, numVars int) *ClauseTable {
	transpose := make([]VarOccurrences, numVars+1)
	for ci, cls := range clauses {
		for ti, term := range cls {
			if term.Var == 0 {
				// Padding sentinel; it never appears in the transpose table
				// since no variable assignment ever touches it. Its State
				// entry is fixed to False by seedPadding instead.
				continue
			}
			pos := Position{ClauseIdx: ClauseId(ci), TermIdx: uint8(ti)}
			if term.Negated {
				transpose[term.Var].Neg = append(transpose[term.Var].Neg, pos)
			} else {
				transpose[term.Var].Pos = append(transpose[term.Var].Pos, pos)
			}
		}
	}
	t := &ClauseTable{
		symbolic:  clauses,
		transpose: transpose,
		numVars:   numVars,
	}
	t.State = make(ProblemState, len(clauses))
	seedPadding(clauses, t.State)
	return t
}
