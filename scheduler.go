package satswarm

import (
	"container/heap"

	"github.com/hashicorp/go-hclog"
)

// RunResult is the outcome of one complete simulation: either a satisfying
// node was found, or every node exhausted its search space (UNSAT).
type RunResult struct {
	Satisfiable     bool
	SimulatedCycles Time
	CyclesBusy      Time
	CyclesIdle      Time
}

// nodeQueue is a min-heap of nodes ordered by (LocalTime, ID), the priority
// queue described in spec §4.6, grounded on the teacher's litHeap pattern of
// implementing container/heap.Interface directly over domain values rather
// than opaque keys.
type nodeQueue struct {
	items []*Node
}

func (q *nodeQueue) Len() int { return len(q.items) }

func (q *nodeQueue) Less(i, j int) bool {
	a, b := q.items[i], q.items[j]
	if a.LocalTime != b.LocalTime {
		return a.LocalTime < b.LocalTime
	}
	return a.ID < b.ID
}

func (q *nodeQueue) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }

func (q *nodeQueue) Push(x interface{}) { q.items = append(q.items, x.(*Node)) }

func (q *nodeQueue) Pop() interface{} {
	n := len(q.items)
	it := q.items[n-1]
	q.items[n-1] = nil
	q.items = q.items[:n-1]
	return it
}

// Scheduler is the event-driven Fork Scheduler (C6): a single-threaded
// cooperative simulation over a fixed mesh of Node state machines, grounded
// on the reference project's Network::run_event_loop/create_fork.
type Scheduler struct {
	mesh      *Mesh
	nodes     []*Node
	forkDelay Time
	watchdog  Time // 0 disables the watchdog

	queue     nodeQueue
	busyCount int

	log hclog.Logger
}

// NewScheduler builds one Node per mesh position, each over its own
// CloneForNode instance of table, ready to run the direct (non-replay)
// simulation.
func NewScheduler(mesh *Mesh, table *ClauseTable, costs Costs, forkDelay Time, watchdogCycles Time) *Scheduler {
	s := &Scheduler{mesh: mesh, forkDelay: forkDelay, watchdog: watchdogCycles, log: hclog.NewNullLogger()}
	s.nodes = make([]*Node, mesh.NumNodes())
	for i := range s.nodes {
		s.nodes[i] = NewNode(NodeId(i), table.CloneForNode(), costs)
	}
	return s
}

// WithLogger attaches a logger for branch/fork/watchdog diagnostics,
// replacing the default no-op logger.
func (s *Scheduler) WithLogger(l hclog.Logger) *Scheduler {
	s.log = l
	return s
}

// Run activates the seed node and drives the event loop to completion.
func (s *Scheduler) Run() (RunResult, error) {
	seed := s.nodes[0]
	seed.Activate()
	busyCycles := seed.LocalTime
	var idleCycles Time
	if seed.State == NodeSAT {
		return RunResult{Satisfiable: true, SimulatedCycles: seed.LocalTime, CyclesBusy: busyCycles}, nil
	}
	if seed.State == NodeIdle {
		// problemUnsat fired before any branching: the table holds an
		// all-False clause (e.g. an empty input clause), so the instance is
		// unsatisfiable at time 0 without exploring any assignment.
		return RunResult{Satisfiable: false, SimulatedCycles: seed.LocalTime, CyclesBusy: busyCycles}, nil
	}
	s.busyCount = 1
	heap.Push(&s.queue, seed)

	var maxTime Time

	for s.busyCount > 0 {
		node := heap.Pop(&s.queue).(*Node)
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
			fork, ok := s.createFork(node)
			if ok {
				s.log.Debug("fork created", "thief", node.ID, "fork_time", fork.ForkTime)
				idleCycles += fork.ForkTime - before
				node.ReceiveFork(fork)
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

// finishSAT records the winning node's local_time as the simulated cycle
// count and refunds any busy-cycle work already charged past that point by
// nodes whose clocks had run ahead of the winner (spec §4.6 step 2, §5
// "Cancellation").
func (s *Scheduler) finishSAT(winner *Node, busyCycles, idleCycles Time) RunResult {
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

// earliestNeighborTime finds the smallest local_time among id's neighbors,
// used to advance a node whose fork attempt found no eligible donor.
func (s *Scheduler) earliestNeighborTime(idle *Node) Time {
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

// forkCandidate is one neighbor's best-available steal target.
type forkCandidate struct {
	donorID  NodeId
	entryIdx int
	entry    VariableAssignment
}

// createFork implements spec §4.6 "Fork creation": across idle's neighbors,
// find the single earliest still-Speculative decision made at or after
// idle's current time, mark it stolen on the donor, and build the resulting
// ForkMessage.
func (s *Scheduler) createFork(idle *Node) (ForkMessage, bool) {
	var best *forkCandidate
	for _, nid := range s.mesh.Neighbors(idle.ID) {
		donor := s.nodes[nid]
		for i, e := range donor.History {
			if e.Cause != Speculative || e.Time < idle.LocalTime {
				continue
			}
			if best == nil || e.Time < best.entry.Time || (e.Time == best.entry.Time && nid < best.donorID) {
				best = &forkCandidate{donorID: nid, entryIdx: i, entry: e}
			}
			break // History is chronological; the first match is this donor's earliest.
		}
	}
	if best == nil {
		return ForkMessage{}, false
	}

	donor := s.nodes[best.donorID]
	donor.History[best.entryIdx].Cause = Fork

	assignments := make([]*bool, len(donor.Assignments))
	copy(assignments, donor.Assignments)
	for _, e := range donor.History[best.entryIdx+1:] {
		assignments[e.Var] = nil
	}
	assignments[best.entry.Var] = boolPtr(!best.entry.Value)

	return ForkMessage{
		Assignments: assignments,
		ForkTime:    best.entry.Time + s.forkDelay,
	}, true
}
