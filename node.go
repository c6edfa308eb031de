package satswarm

// Time is a logical cycle count, local to one node's clock.
type Time uint64

// NodeId identifies a node within a Mesh Arena.
type NodeId int

// NodeState is the node's position in the state machine described in
// spec §4.4.
type NodeState uint8

const (
	NodeIdle NodeState = iota
	NodeBusy
	NodeSAT
)

func (s NodeState) String() string {
	switch s {
	case NodeBusy:
		return "busy"
	case NodeSAT:
		return "sat"
	default:
		return "idle"
	}
}

// AssignmentCause labels why a VariableAssignment was made. Only
// Speculative entries may be inverted during backtrack, and only
// Speculative entries may be stolen by a fork.
type AssignmentCause uint8

const (
	Speculative AssignmentCause = iota
	UnitPropagation
	Fork
)

func (c AssignmentCause) String() string {
	switch c {
	case UnitPropagation:
		return "unit-prop"
	case Fork:
		return "fork"
	default:
		return "speculative"
	}
}

// VariableAssignment is one entry in a node's chronological assignment
// history.
type VariableAssignment struct {
	Var    VarId
	Value  bool
	Time   Time
	Cause  AssignmentCause
}

// ForkMessage is sent from a donor node to an idle neighbor: it replaces the
// recipient's entire assignment state and advances its clock to ForkTime.
type ForkMessage struct {
	Assignments []*bool // indexed by VarId; nil means unassigned
	ForkTime    Time
}

// implication is a pending unit-propagation assignment discovered while
// walking the transpose table but not yet applied.
type implication struct {
	Var   VarId
	Value bool
}

// Costs bundles the per-node cycle-accounting parameters from the
// architecture descriptor (spec §6): how many clauses the node's scanner
// evaluates per cycle, how many cycles one scan iteration costs, and (used
// only by the Trace Replayer, C7) the fixed latency charged per branch
// decision.
type Costs struct {
	ClausesPerEval int
	CyclesPerEval  Time
	DecisionDelay  Time
}

// reachTime is the cost of one clause-table scan (or a partial scan ending
// at clauseIdx on conflict): ceil(clauseIdx / ClausesPerEval) * CyclesPerEval.
func (c Costs) reachTime(clauseIdx int) Time {
	n := ceilDiv(clauseIdx, c.ClausesPerEval)
	return Time(n) * c.CyclesPerEval
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		b = 1
	}
	return (a + b - 1) / b
}

// Node is one simulated solver: a state machine that branches, propagates,
// detects conflicts, backtracks, and accumulates a local cycle count.
// See spec §4.4.
type Node struct {
	ID    NodeId
	State NodeState

	table *ClauseTable

	// Assignments indexed by VarId; nil means unassigned.
	Assignments []*bool

	// History is the chronological assignment log. Only Speculative entries
	// are reversible by Retry, and only Speculative entries (by construction
	// of this history) are eligible to be forked away by the scheduler.
	History []VariableAssignment

	pending []implication // unit-propagation stack; order is LIFO per spec §4.4 step 1

	LocalTime Time
	costs     Costs
}

// NewNode constructs an Idle node over its own clause-table instance (the
// caller is expected to have produced table via ClauseTable.CloneForNode,
// giving the node exclusive ownership of the ProblemState while sharing the
// immutable symbolic/transpose data).
func NewNode(id NodeId, table *ClauseTable, costs Costs) *Node {
	return &Node{
		ID:          id,
		State:       NodeIdle,
		table:       table,
		Assignments: make([]*bool, table.numVars+1),
		costs:       costs,
	}
}

// Table exposes the node's clause table (read-only access expected; mutation
// happens only through substitute/reset).
func (n *Node) Table() *ClauseTable { return n.table }

// Activate transitions the designated seed node Idle -> Busy and begins
// branching from an empty assignment. If the table already contains an
// all-False clause before any variable is assigned (an empty input clause,
// padded to all-False terms), the problem is unsatisfiable regardless of any
// assignment, so the node goes straight to Idle without branching or
// advancing local_time.
func (n *Node) Activate() {
	if n.problemUnsat() {
		n.State = NodeIdle
		return
	}
	n.State = NodeBusy
	n.branch()
}

// branch is the Busy-state inner loop (spec §4.4 "branch()"). It runs until
// either the node declares SAT or a conflict is hit; on conflict the node's
// State is left as NodeBusy (backtracking is the scheduler's next scheduled
// action for this node, performed by Retry).
func (n *Node) branch() {
	n.State = NodeBusy
	for {
		if len(n.pending) > 0 {
			last := len(n.pending) - 1
			imp := n.pending[last]
			n.pending = n.pending[:last]
			if existing := n.Assignments[imp.Var]; existing != nil {
				if *existing != imp.Value {
					// Stale implication contradicts what's already
					// assigned: a conflict discovered lazily.
					return
				}
				continue
			}
			if n.substitute(imp.Var, imp.Value, UnitPropagation) {
				return
			}
			continue
		}
		if v, ok := n.variableDecision(); ok {
			if n.substitute(v, false, Speculative) {
				return
			}
			continue
		}
		n.State = NodeSAT
		return
	}
}

// variableDecision picks the first unassigned variable (spec's "first
// unassigned variable" policy, sufficient per §4.2/§4.4).
func (n *Node) variableDecision() (VarId, bool) {
	for v := VarId(1); int(v) < len(n.Assignments); v++ {
		if n.Assignments[v] == nil {
			return v, true
		}
	}
	return 0, false
}

// substitute is the work-producing primitive (spec §4.4 "substitute()"). It
// records the assignment, updates the transpose-derived problem state, and
// advances local_time either by a full scan (no conflict) or a partial scan
// terminating at the first UNSAT clause. It reports true iff the assignment
// drove some clause to all-False.
//
// Writing every occurrence of v (not just the ones that changed) is
// sufficient and correct even when v was previously assigned: every position
// of v is covered by exactly one of occ.Pos/occ.Neg, so this call alone
// restates the full problem state for v under its new value. That lets
// Retry's speculative flip call substitute directly on the inverted value
// without a separate "unassign" step first.
func (n *Node) substitute(v VarId, value bool, cause AssignmentCause) bool {
	before := n.LocalTime
	n.History = append(n.History, VariableAssignment{Var: v, Value: value, Time: n.LocalTime, Cause: cause})
	n.Assignments[v] = boolPtr(value)

	occ := n.table.Occurrences(v)
	agree, disagree := occ.Pos, occ.Neg
	if !value {
		agree, disagree = occ.Neg, occ.Pos
	}
	for _, pos := range agree {
		n.table.State[pos.ClauseIdx][pos.TermIdx] = True
	}
	for _, pos := range disagree {
		n.table.State[pos.ClauseIdx][pos.TermIdx] = False
		if n.clauseUnsatCheck(pos.ClauseIdx) {
			n.LocalTime = before + n.costs.reachTime(int(pos.ClauseIdx)+1)
			return true
		}
	}
	n.LocalTime = before + n.costs.reachTime(n.table.NumberOfClauses())
	invariant(n.LocalTime > before, "local_time failed to advance in substitute (node %d)", n.ID)
	return false
}

// clauseUnsatCheck returns true iff every term in the clause is False.
// Otherwise, if exactly one term is Symbolic and none is True, it pushes a
// unit-propagation implication for that term (spec §4.4).
func (n *Node) clauseUnsatCheck(idx ClauseId) bool {
	state := n.table.State[idx]
	symbolicCount := 0
	symbolicTerm := -1
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
		term := n.table.Clause(idx)[symbolicTerm]
		n.pending = append(n.pending, implication{Var: term.Var, Value: !term.Negated})
	}
	return false
}

// Retry is the conflict-driven backtrack (spec §4.4 "retry()"). It clears
// the pending unit-propagation stack, unwinds history back to (and
// including) the most recent Speculative entry, flips that entry, and
// resumes branch(). If history is exhausted without finding a Speculative
// entry, the node becomes Idle.
func (n *Node) Retry() {
	n.pending = n.pending[:0]
	for len(n.History) > 0 {
		last := n.History[len(n.History)-1]
		n.History = n.History[:len(n.History)-1]
		if last.Cause == Speculative {
			// The opposite branch is now forced. substitute() rewrites every
			// occurrence of last.Var for the new value, so no separate
			// unassign step is needed first.
			if !n.substitute(last.Var, !last.Value, Fork) {
				n.branch()
			}
			// If this flip itself conflicts, the node stays Busy with an
			// unwound history; the scheduler's next Retry call continues
			// backtracking from here.
			return
		}
		n.reset(last.Var, Symbolic)
	}
	n.State = NodeIdle
}

// reset performs the instant position-by-position rewrite used both by
// Retry's unwind and by ReceiveFork: it sets assignments[v] and the
// transpose-derived problem-state positions directly to value, without
// going through the history/cycle-accounting path of substitute.
func (n *Node) reset(v VarId, value TermState) {
	occ := n.table.Occurrences(v)
	switch value {
	case True:
		n.Assignments[v] = boolPtr(true)
		setPositions(n.table.State, occ.Pos, True)
		setPositions(n.table.State, occ.Neg, False)
	case False:
		n.Assignments[v] = boolPtr(false)
		setPositions(n.table.State, occ.Pos, False)
		setPositions(n.table.State, occ.Neg, True)
	default:
		n.Assignments[v] = nil
		setPositions(n.table.State, occ.Pos, Symbolic)
		setPositions(n.table.State, occ.Neg, Symbolic)
	}
}

func setPositions(state ProblemState, positions []Position, value TermState) {
	for _, pos := range positions {
		state[pos.ClauseIdx][pos.TermIdx] = value
	}
}

func boolPtr(b bool) *bool { return &b }

// ReceiveFork installs fork's assignment vector wholesale (position by
// position, via reset), clears history and the unit-prop stack, sets
// local_time to fork_time, and resumes branching unless the received state
// is already UNSAT.
func (n *Node) ReceiveFork(fork ForkMessage) {
	n.State = NodeBusy
	for v := VarId(1); int(v) < len(n.Assignments); v++ {
		var want *bool
		if int(v) < len(fork.Assignments) {
			want = fork.Assignments[v]
		}
		cur := n.Assignments[v]
		if samePtrValue(cur, want) {
			continue
		}
		switch {
		case want == nil:
			n.reset(v, Symbolic)
		case *want:
			n.reset(v, True)
		default:
			n.reset(v, False)
		}
	}
	n.History = n.History[:0]
	n.pending = n.pending[:0]
	n.LocalTime = fork.ForkTime

	if n.problemUnsat() {
		n.Retry()
	} else {
		n.branch()
	}
}

func samePtrValue(a, b *bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// problemUnsat scans every clause looking for an all-False clause. It is
// used at Activate (before any assignment is made, to catch an already-
// unsatisfiable table such as one holding an empty clause) and again right
// after a fork arrives, before committing to branch().
func (n *Node) problemUnsat() bool {
	for idx := 0; idx < n.table.NumberOfClauses(); idx++ {
		state := n.table.State[idx]
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
