package satswarm

import (
	"container/heap"

	"github.com/hashicorp/go-hclog"
)

// replayBranch is one entry in a ReplayNode's branch stack: the trace
// position it descended from, the variable it decided, and its local_time at
// the moment of decision (the quantity fork eligibility is compared against,
// exactly as History entries are in direct mode).
type replayBranch struct {
	traceIdx int
	v        VarId
	atTime   Time
	undoMark int
	stolen   bool
}

// ReplayNode is the Trace Replayer's node: instead of running DPLL itself
// (spec §4.4), it walks a pre-recorded TraceLog, replaying the exact
// propagation and branch decisions the reference DPLL made, while still
// performing the real clause-table state mutations so that deterministic
// derived quantities (which variable is "first unassigned" at a given point)
// agree with the original run. Grounded on spec §4.7.
type ReplayNode struct {
	ID    NodeId
	State NodeState

	table   *ClauseTable
	assign  []*bool
	pending []implication
	actions []action

	trace *TraceLog
	pos   int

	branches []replayBranch

	LocalTime Time
	costs     Costs
}

// NewReplayNode constructs an Idle replay node over its own clause-table
// instance and a trace log shared (read-write) with every other replay node
// walking the same reference run, per spec §5's "trace log is shared
// read-write between the replayer and (on expansion) the reference DPLL".
func NewReplayNode(id NodeId, table *ClauseTable, trace *TraceLog, costs Costs) *ReplayNode {
	return &ReplayNode{
		ID:     id,
		State:  NodeIdle,
		table:  table,
		assign: make([]*bool, table.numVars+1),
		trace:  trace,
		costs:  costs,
	}
}

// Activate begins replay from the start of the trace. If the table already
// contains an all-False clause before any assignment (an empty input clause,
// padded to all-False terms), the problem is unsatisfiable regardless of the
// trace, so the node goes straight to Idle at time 0 without consuming any
// trace record.
func (r *ReplayNode) Activate() {
	if r.problemUnsat() {
		r.State = NodeIdle
		return
	}
	r.State = NodeBusy
	r.pos = 0
	r.propagate()
}

// problemUnsat mirrors Node.problemUnsat: a scan for an all-False clause,
// used only before any assignment is made.
func (r *ReplayNode) problemUnsat() bool {
	for idx := 0; idx < r.table.NumberOfClauses(); idx++ {
		state := r.table.State[idx]
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

// scanCost is the flat per-unit-propagation charge: one full clause-table
// scan at the configured throughput.
func (r *ReplayNode) scanCost() Time {
	return r.costs.reachTime(r.table.NumberOfClauses())
}

// propagate performs forward progress only: it drains the record at r.pos
// (and, for a branch record, descends into its left child) until it reaches a
// terminal record (SAT or UNSAT) or needs a decision. It never backtracks
// itself — on UNSAT it returns with State left as NodeBusy, exactly as
// Node.branch leaves a conflicted Node Busy for the scheduler's next Retry
// call, so the scheduler can interleave other nodes' work between one node's
// forward run and its backtrack step.
func (r *ReplayNode) propagate() {
	for {
		rec := r.trace.Records[r.pos]
		r.LocalTime += r.costs.DecisionDelay + r.scanCost()*Time(rec.UnitProps)

		// drainPending replays the same deterministic unit propagation the
		// reference DPLL ran to reach this record, so it cannot disagree
		// with the record's own tag; its return value is not used here.
		r.drainPending()

		switch {
		case rec.IsSat():
			r.State = NodeSAT
			return
		case rec.IsUnsat():
			r.LocalTime += r.costs.reachTime(int(rec.UnsatClause()) + 1)
			// State stays NodeBusy: backtracking is the scheduler's next
			// scheduled action for this node, performed by Retry.
			return
		default: // branch
			v, ok := r.pickUnassigned()
			if !ok {
				// Every variable is already assigned but the trace still
				// claims a branch here: malformed trace for this table.
				r.State = NodeSAT
				return
			}
			mark := len(r.actions)
			r.branches = append(r.branches, replayBranch{traceIdx: r.pos, v: v, atTime: r.LocalTime, undoMark: mark})
			r.assignCostFree(v, false)
			r.pos++
		}
	}
}

// drainPending applies every queued unit-propagation implication with no
// additional time charge (the record-level charge already accounted for
// these). It returns false if a stale implication contradicts an existing
// assignment.
func (r *ReplayNode) drainPending() bool {
	for len(r.pending) > 0 {
		last := len(r.pending) - 1
		imp := r.pending[last]
		r.pending = r.pending[:last]
		if existing := r.assign[imp.Var]; existing != nil {
			if *existing != imp.Value {
				return false
			}
			continue
		}
		r.assignCostFree(imp.Var, imp.Value)
	}
	return true
}

// assignCostFree performs the assignment/transpose mutation and action-stack
// bookkeeping (for later undo) without touching LocalTime, since replay
// charges cost once per trace record rather than once per substitution.
func (r *ReplayNode) assignCostFree(v VarId, value bool) {
	r.assign[v] = boolPtr(value)
	r.actions = append(r.actions, action{kind: actionAssignVariable, v: v})

	occ := r.table.Occurrences(v)
	agree, disagree := occ.Pos, occ.Neg
	if !value {
		agree, disagree = occ.Neg, occ.Pos
	}
	for _, pos := range agree {
		r.table.State[pos.ClauseIdx][pos.TermIdx] = True
	}
	for _, pos := range disagree {
		r.table.State[pos.ClauseIdx][pos.TermIdx] = False
		r.checkUnsat(pos.ClauseIdx)
	}
}

func (r *ReplayNode) checkUnsat(idx ClauseId) {
	state := r.table.State[idx]
	symbolicCount, symbolicTerm := 0, -1
	for i, s := range state {
		switch s {
		case True:
			return
		case Symbolic:
			symbolicCount++
			symbolicTerm = i
		}
	}
	if symbolicCount == 1 {
		term := r.table.Clause(idx)[symbolicTerm]
		r.pending = append(r.pending, implication{Var: term.Var, Value: !term.Negated})
	}
}

func (r *ReplayNode) pickUnassigned() (VarId, bool) {
	for v := VarId(1); int(v) < len(r.assign); v++ {
		if r.assign[v] == nil {
			return v, true
		}
	}
	return 0, false
}

func (r *ReplayNode) undoTo(mark int) {
	for len(r.actions) > mark {
		last := len(r.actions) - 1
		a := r.actions[last]
		r.actions = r.actions[:last]
		r.assign[a.v] = nil
		occ := r.table.Occurrences(a.v)
		setPositions(r.table.State, occ.Pos, Symbolic)
		setPositions(r.table.State, occ.Neg, Symbolic)
	}
	r.pending = r.pending[:0]
}

// Retry performs exactly one backtrack step (spec §4.7 "retry"), mirroring
// Node.Retry's single-step contract: it unwinds to the most recent
// un-exhausted branch, resolves its right side (from the recorded trace, an
// on-demand expansion, or by skipping a stolen branch silently), runs one
// forward pass via propagate, and returns. It never calls itself or loops
// back into propagate's unsat case, so the scheduler can interleave other
// nodes between backtrack steps. A branch already stolen by a neighbor is
// treated as exhausted without exploring its right side, exactly as a
// Fork-caused entry is in direct mode: once stolen, neither side ever
// revisits it.
func (r *ReplayNode) Retry() {
	for len(r.branches) > 0 {
		n := len(r.branches) - 1
		b := r.branches[n]
		r.branches = r.branches[:n]
		r.undoTo(b.undoMark)

		if b.stolen {
			continue
		}

		rec := r.trace.Records[b.traceIdx]
		if rec.HasRightChild() {
			r.assignCostFree(b.v, true)
			r.pos = rec.RightChild()
			r.propagate()
			return
		}

		if err := r.expandRightChild(b); err != nil {
			// Expansion fails when the flipped decision already conflicts
			// with the current trail: the right side has no solution, so
			// this branch is exhausted and unwinding continues.
			continue
		}
		rec = r.trace.Records[b.traceIdx]
		r.assignCostFree(b.v, true)
		r.pos = rec.RightChild()
		r.propagate()
		return
	}
	r.State = NodeIdle
}

// expandRightChild synthesizes an unrecorded right subtree on demand (spec
// §4.7): it runs the reference DPLL over a fresh clause table seeded with
// the trail active at b (the forced prefix plus the flipped decision), then
// splices the resulting records onto the end of the shared trace and patches
// b's branch record in place so every future replay of this trace reuses the
// expansion instead of re-deriving it.
func (r *ReplayNode) expandRightChild(b replayBranch) error {
	trail := r.currentTrail()
	trail = append(trail, VariableAssignment{Var: b.v, Value: true})

	fresh := r.table.CloneForNode()
	sub, _, err := RunReferenceDPLL(fresh, trail)
	if err != nil {
		return err
	}

	offset := len(r.trace.Records)
	r.trace.Records = append(r.trace.Records, sub.Records...)
	r.trace.Records[b.traceIdx] = BranchRecord(r.trace.Records[b.traceIdx].UnitProps, offset)
	return nil
}

// currentTrail reconstructs the forced-assignment prefix active right now by
// reading every currently-assigned variable directly out of the assignment
// vector, for seeding an on-demand DPLL expansion. This must not be derived
// from r.branches alone: that stack only tracks still-reversible left-side
// decisions, while the trail also needs every unit-propagated variable and
// every ancestor decision that has already been flipped to its right side
// (and therefore already dropped off the branch stack).
func (r *ReplayNode) currentTrail() []VariableAssignment {
	trail := make([]VariableAssignment, 0, len(r.assign))
	for v := VarId(1); int(v) < len(r.assign); v++ {
		if want := r.assign[v]; want != nil {
			trail = append(trail, VariableAssignment{Var: v, Value: *want})
		}
	}
	return trail
}

// ReceiveFork installs a stolen decision exactly as Node.ReceiveFork does,
// but for a replay node there is no history to splice in: the thief starts a
// brand-new local branch stack rooted at the inverted variable, expanding
// on demand from there since no trace position corresponds to this
// synthetic state.
func (r *ReplayNode) ReceiveFork(assignments []*bool, forkTime Time) error {
	r.State = NodeBusy
	r.assign = make([]*bool, len(assignments))
	copy(r.assign, assignments)
	r.table.State = make(ProblemState, r.table.NumberOfClauses())
	seedPadding(r.table.symbolic, r.table.State)
	for v := VarId(1); int(v) < len(r.assign); v++ {
		if want := r.assign[v]; want != nil {
			occ := r.table.Occurrences(v)
			if *want {
				setPositions(r.table.State, occ.Pos, True)
				setPositions(r.table.State, occ.Neg, False)
			} else {
				setPositions(r.table.State, occ.Pos, False)
				setPositions(r.table.State, occ.Neg, True)
			}
		}
	}
	r.pending = r.pending[:0]
	r.actions = r.actions[:0]
	r.branches = r.branches[:0]
	r.LocalTime = forkTime

	if r.problemUnsat() {
		// The received state is already UNSAT and there is no history to
		// backtrack into, so the node goes Idle as Node.Retry would.
		r.State = NodeIdle
		return nil
	}

	trail := make([]VariableAssignment, 0, len(r.assign))
	for v := VarId(1); int(v) < len(r.assign); v++ {
		if want := r.assign[v]; want != nil {
			trail = append(trail, VariableAssignment{Var: v, Value: *want})
		}
	}
	fresh := r.table.CloneForNode()
	sub, _, err := RunReferenceDPLL(fresh, trail)
	if err != nil {
		r.State = NodeIdle
		return err
	}
	r.trace = sub
	r.pos = 0
	r.propagate()
	return nil
}

// Branches exposes the node's current branch stack (read-only), used by the
// Replay Scheduler's fork-creation logic.
func (r *ReplayNode) Branches() []replayBranch { return r.branches }

// StealBranch marks branch index idx (within Branches()) as stolen and
// returns the fork payload the scheduler should deliver to the thief.
func (r *ReplayNode) StealBranch(idx int) ([]*bool, Time) {
	r.branches[idx].stolen = true
	b := r.branches[idx]

	assignments := make([]*bool, len(r.assign))
	copy(assignments, r.assign)
	for _, a := range r.actions[b.undoMark:] {
		assignments[a.v] = nil
	}
	assignments[b.v] = boolPtr(true)
	return assignments, b.atTime
}

// replayQueue mirrors nodeQueue over *ReplayNode, since container/heap
// requires a concrete element type per heap.Interface implementation.
type replayQueue struct {
	items []*ReplayNode
}

func (q *replayQueue) Len() int { return len(q.items) }

func (q *replayQueue) Less(i, j int) bool {
	a, b := q.items[i], q.items[j]
	if a.LocalTime != b.LocalTime {
		return a.LocalTime < b.LocalTime
	}
	return a.ID < b.ID
}

func (q *replayQueue) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }

func (q *replayQueue) Push(x interface{}) { q.items = append(q.items, x.(*ReplayNode)) }

func (q *replayQueue) Pop() interface{} {
	n := len(q.items)
	it := q.items[n-1]
	q.items[n-1] = nil
	q.items = q.items[:n-1]
	return it
}

// ReplayScheduler drives a mesh of ReplayNodes exactly as Scheduler drives
// direct-mode Nodes, substituting branch-stack stealing for history stealing.
type ReplayScheduler struct {
	mesh      *Mesh
	nodes     []*ReplayNode
	forkDelay Time
	watchdog  Time

	queue     replayQueue
	busyCount int

	log hclog.Logger
}

// NewReplayScheduler builds one ReplayNode per mesh position, all initially
// sharing the same reference trace.
func NewReplayScheduler(mesh *Mesh, table *ClauseTable, trace *TraceLog, costs Costs, forkDelay, watchdogCycles Time) *ReplayScheduler {
	s := &ReplayScheduler{mesh: mesh, forkDelay: forkDelay, watchdog: watchdogCycles, log: hclog.NewNullLogger()}
	s.nodes = make([]*ReplayNode, mesh.NumNodes())
	for i := range s.nodes {
		s.nodes[i] = NewReplayNode(NodeId(i), table.CloneForNode(), trace, costs)
	}
	return s
}

// WithLogger attaches a logger for branch/fork/watchdog diagnostics,
// replacing the default no-op logger.
func (s *ReplayScheduler) WithLogger(l hclog.Logger) *ReplayScheduler {
	s.log = l
	return s
}

// Run is the replay counterpart of Scheduler.Run (spec §4.7): identical
// event-loop shape, but Busy nodes call retry()/propagate() instead of
// Node.Retry, and fork creation steals a branch-stack entry instead of a
// history entry.
func (s *ReplayScheduler) Run() (RunResult, error) {
	seed := s.nodes[0]
	seed.Activate()
	busyCycles := seed.LocalTime
	if seed.State == NodeSAT {
		return RunResult{Satisfiable: true, SimulatedCycles: seed.LocalTime, CyclesBusy: busyCycles}, nil
	}
	if seed.State == NodeIdle {
		// problemUnsat fired before any replay step: the table holds an
		// all-False clause, so the instance is unsatisfiable at time 0.
		return RunResult{Satisfiable: false, SimulatedCycles: seed.LocalTime, CyclesBusy: busyCycles}, nil
	}
	s.busyCount = 1
	heap.Push(&s.queue, seed)

	var idleCycles, maxTime Time

	for s.busyCount > 0 {
		node := heap.Pop(&s.queue).(*ReplayNode)
		if s.watchdog > 0 && node.LocalTime > s.watchdog {
			s.log.Warn("watchdog tripped", "node", node.ID, "cycles", node.LocalTime)
			return RunResult{}, &WatchdogError{Cycles: node.LocalTime}
		}

		switch node.State {
		case NodeBusy:
			before := node.LocalTime
			node.Retry()
			busyCycles += node.LocalTime - before
			if node.State == NodeSAT {
				return s.finishSAT(node, busyCycles, idleCycles), nil
			}
			if node.State == NodeIdle {
				s.busyCount--
			}
			heap.Push(&s.queue, node)

		case NodeIdle:
			before := node.LocalTime
			assignments, forkTime, ok := s.createFork(node)
			if ok {
				s.log.Debug("fork created", "thief", node.ID, "fork_time", forkTime)
				idleCycles += forkTime - before
				if err := node.ReceiveFork(assignments, forkTime); err != nil {
					return RunResult{}, err
				}
				if node.State == NodeSAT {
					return s.finishSAT(node, busyCycles, idleCycles), nil
				}
				if node.State == NodeBusy {
					s.busyCount++
				}
			} else {
				node.LocalTime = s.earliestNeighborTime(node) + s.forkDelay
				idleCycles += node.LocalTime - before
			}
			heap.Push(&s.queue, node)

		case NodeSAT:
			return s.finishSAT(node, busyCycles, idleCycles), nil
		}

		if node.LocalTime > maxTime {
			maxTime = node.LocalTime
		}
	}

	return RunResult{Satisfiable: false, SimulatedCycles: maxTime, CyclesBusy: busyCycles, CyclesIdle: idleCycles}, nil
}

func (s *ReplayScheduler) finishSAT(winner *ReplayNode, busyCycles, idleCycles Time) RunResult {
	s.log.Info("satisfiable", "winner", winner.ID, "local_time", winner.LocalTime)
	simulated := winner.LocalTime
	for _, n := range s.nodes {
		if n.LocalTime > simulated {
			overage := n.LocalTime - simulated
			if overage > busyCycles {
				overage = busyCycles
			}
			busyCycles -= overage
		}
	}
	return RunResult{Satisfiable: true, SimulatedCycles: simulated, CyclesBusy: busyCycles, CyclesIdle: idleCycles}
}

func (s *ReplayScheduler) earliestNeighborTime(idle *ReplayNode) Time {
	earliest := idle.LocalTime
	first := true
	for _, nid := range s.mesh.Neighbors(idle.ID) {
		t := s.nodes[nid].LocalTime
		if first || t < earliest {
			earliest = t
			first = false
		}
	}
	return earliest
}

// createFork mirrors Scheduler.createFork over branch-stack entries instead
// of history entries.
func (s *ReplayScheduler) createFork(idle *ReplayNode) ([]*bool, Time, bool) {
	type candidate struct {
		donorID NodeId
		idx     int
		atTime  Time
	}
	var best *candidate
	for _, nid := range s.mesh.Neighbors(idle.ID) {
		donor := s.nodes[nid]
		for i, b := range donor.Branches() {
			if b.stolen || b.atTime < idle.LocalTime {
				continue
			}
			if best == nil || b.atTime < best.atTime || (b.atTime == best.atTime && nid < best.donorID) {
				best = &candidate{donorID: nid, idx: i, atTime: b.atTime}
			}
			break
		}
	}
	if best == nil {
		return nil, 0, false
	}
	donor := s.nodes[best.donorID]
	assignments, atTime := donor.StealBranch(best.idx)
	return assignments, atTime + s.forkDelay, true
}
