package satswarm

// action is one entry in the reference DPLL's undo log (spec §4.2). Popping
// and applying actions in reverse order exactly undoes the propagation work
// performed since a given SpeculateVariable.
type action struct {
	kind actionKind
	v    VarId
}

type actionKind uint8

const (
	actionAssignVariable actionKind = iota
	actionSpeculateVariable
)

// dpllState is the mutable search state for one reference DPLL run. It
// mirrors Node's substitute/clause_unsat_check machinery over the same
// ClauseTable representation, but tracks an explicit undo stack instead of
// Node's append-only history, since the reference search backtracks within a
// single run rather than handing work to a scheduler.
//
// Unit-clause selection uses the pending stack in LIFO order rather than the
// max-heap spec §4.2 calls merely "acceptable": for a 3-SAT clause table the
// pending stack already holds exactly the forced implications discovered so
// far, so a heap over clause indices would reorder work without changing
// which implications get applied — it buys nothing here that a teacher
// repo's litHeap buys for 2-watched-literal selection over a live clause
// database with thousands of candidates.
type dpllState struct {
	table        *ClauseTable
	assign       []*bool
	pending      []implication
	actions      []action
	trace        []TraceRecord
	unitOps      uint16
	lastConflict ClauseId
}

// RunReferenceDPLL performs a sequential depth-first search over table and
// returns the resulting trace log and whether the instance is satisfiable.
// trail is an optional prefix of forced assignments (used by the Trace
// Replayer, C7, to synthesize an unrecorded right subtree); pass nil for a
// cold run from an empty assignment.
func RunReferenceDPLL(table *ClauseTable, trail []VariableAssignment) (*TraceLog, bool, error) {
	st := &dpllState{
		table:  table,
		assign: make([]*bool, table.numVars+1),
	}

	if st.problemUnsat() {
		// An all-False clause exists before any variable is assigned (e.g. an
		// empty input clause padded to all-False terms): unsatisfiable at
		// time 0, regardless of trail or any assignment search would try.
		trace := []TraceRecord{UnsatRecord(0, 0)}
		return &TraceLog{NumVars: table.numVars, NumClauses: table.NumberOfClauses(), Records: trace}, false, nil
	}

	for _, a := range trail {
		if !st.substitute(a.Var, a.Value) {
			return nil, false, inputErrorf("trail prefix is already unsatisfiable at var %d", a.Var)
		}
	}

	sat := st.search()
	if len(st.trace) > int(^uint32(0)) {
		return nil, false, capacityErrorf("trace log of %d records exceeds 32-bit index space", len(st.trace))
	}
	return &TraceLog{NumVars: table.numVars, NumClauses: table.NumberOfClauses(), Records: st.trace}, sat, nil
}

// search is the recursive core described in spec §4.2.
func (st *dpllState) search() bool {
	undoMark := len(st.actions)

	for len(st.pending) > 0 {
		last := len(st.pending) - 1
		imp := st.pending[last]
		st.pending = st.pending[:last]
		if existing := st.assign[imp.Var]; existing != nil {
			if *existing != imp.Value {
				st.undoTo(undoMark)
				st.trace = append(st.trace, UnsatRecord(st.unitOps, 0))
				return false
			}
			continue
		}
		st.unitOps++
		if !st.substitute(imp.Var, imp.Value) {
			conflictClause := st.lastConflict
			st.undoTo(undoMark)
			st.trace = append(st.trace, UnsatRecord(st.unitOps, conflictClause))
			return false
		}
	}

	v, ok := st.pickUnassigned()
	if !ok {
		st.trace = append(st.trace, SatRecord(st.unitOps))
		return true
	}

	placeholderIdx := len(st.trace)
	st.trace = append(st.trace, placeholderRecord())
	unitOpsAtBranch := st.unitOps

	branchMark := len(st.actions)
	st.actions = append(st.actions, action{kind: actionSpeculateVariable, v: v})
	leftOK := st.substitute(v, false)
	if !leftOK {
		st.trace = append(st.trace, UnsatRecord(st.unitOps, st.lastConflict))
	} else {
		leftOK = st.search()
	}
	if leftOK {
		// The left subtree already proved SAT; the right subtree is never
		// explored, so its trace is simply absent (§4.7 on-demand expansion
		// re-derives it later if a fork ever needs it).
		st.trace[placeholderIdx] = BranchRecordNoRight(unitOpsAtBranch)
		return true
	}
	st.undoTo(branchMark + 1) // undo the left branch back to its SpeculateVariable marker (this level's unit propagations stay), try the other branch

	rightStart := len(st.trace)
	st.unitOps = unitOpsAtBranch
	st.actions = append(st.actions, action{kind: actionSpeculateVariable, v: v})
	rightOK := st.substitute(v, true)
	if !rightOK {
		st.trace = append(st.trace, UnsatRecord(st.unitOps, st.lastConflict))
	} else {
		rightOK = st.search()
	}
	st.trace[placeholderIdx] = BranchRecord(unitOpsAtBranch, rightStart)
	if !rightOK {
		st.undoTo(undoMark)
	}
	return rightOK
}

// substitute mirrors Node.substitute but against dpllState's undo-action
// stack instead of an append-only history, and pushes new unit-propagation
// implications exactly as clauseUnsatCheck does for a Node.
func (st *dpllState) substitute(v VarId, value bool) bool {
	st.assign[v] = boolPtr(value)
	st.actions = append(st.actions, action{kind: actionAssignVariable, v: v})

	occ := st.table.Occurrences(v)
	agree, disagree := occ.Pos, occ.Neg
	if !value {
		agree, disagree = occ.Neg, occ.Pos
	}
	for _, pos := range agree {
		st.table.State[pos.ClauseIdx][pos.TermIdx] = True
	}
	for _, pos := range disagree {
		st.table.State[pos.ClauseIdx][pos.TermIdx] = False
		if st.clauseUnsatCheck(pos.ClauseIdx) {
			st.lastConflict = pos.ClauseIdx
			return false
		}
	}
	return true
}

func (st *dpllState) clauseUnsatCheck(idx ClauseId) bool {
	state := st.table.State[idx]
	symbolicCount, symbolicTerm := 0, -1
	for i, s := range state {
		switch s {
		case True:
			return false
		case Symbolic:
			symbolicCount++
			symbolicTerm = i
		}
	}
	if symbolicCount == 0 {
		return true
	}
	if symbolicCount == 1 {
		term := st.table.Clause(idx)[symbolicTerm]
		st.pending = append(st.pending, implication{Var: term.Var, Value: !term.Negated})
	}
	return false
}

// undoTo pops and reverses actions back to length mark, restoring both the
// assignment vector and the transpose-derived problem state to exactly the
// condition before those actions ran.
func (st *dpllState) undoTo(mark int) {
	for len(st.actions) > mark {
		last := len(st.actions) - 1
		a := st.actions[last]
		st.actions = st.actions[:last]
		st.unassignVar(a.v)
	}
	st.pending = st.pending[:0]
}

func (st *dpllState) unassignVar(v VarId) {
	st.assign[v] = nil
	occ := st.table.Occurrences(v)
	setPositions(st.table.State, occ.Pos, Symbolic)
	setPositions(st.table.State, occ.Neg, Symbolic)
}

// problemUnsat scans every clause looking for an all-False clause, mirroring
// Node.problemUnsat. Used only before any assignment is made: once search
// begins, a conflict is always caught incrementally by clauseUnsatCheck.
func (st *dpllState) problemUnsat() bool {
	for idx := 0; idx < st.table.NumberOfClauses(); idx++ {
		state := st.table.State[idx]
		hasTrue, hasSymbolic := false, false
		for _, s := range state {
			if s == True {
				hasTrue = true
			}
			if s == Symbolic {
				hasSymbolic = true
			}
		}
		if !hasTrue && !hasSymbolic {
			return true
		}
	}
	return false
}

func (st *dpllState) pickUnassigned() (VarId, bool) {
	for v := VarId(1); int(v) < len(st.assign); v++ {
		if st.assign[v] == nil {
			return v, true
		}
	}
	return 0, false
}
