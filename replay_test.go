package satswarm

import "testing"

func TestReplayNodeActivateSat(t *testing.T) {
	table := mustBuildTable(t, [][]int{{1}})
	trace, sat, err := RunReferenceDPLL(table.CloneForNode(), nil)
	if err != nil {
		t.Fatalf("RunReferenceDPLL: %s", err)
	}
	if !sat {
		t.Fatal("reference run expected satisfiable")
	}
	rn := NewReplayNode(0, table.CloneForNode(), trace, testCosts())
	rn.Activate()
	// The trace's left child of the var-1 branch is the UNSAT leaf for
	// var 1 = false; one Retry enters the recorded right subtree (SAT).
	rn.Retry()
	if rn.State != NodeSAT {
		t.Fatalf("State = %v, want NodeSAT", rn.State)
	}
}

// TestReplayNodeRetryIsSingleStep guards the control-flow fix separating
// forward progress (propagate) from backtracking (Retry): propagate must
// leave a conflicted node Busy rather than resolving the whole search
// itself, exactly like Node.branch/Node.Retry.
func TestReplayNodeRetryIsSingleStep(t *testing.T) {
	table := mustBuildTable(t, [][]int{{1}, {-1}})
	trace, sat, err := RunReferenceDPLL(table.CloneForNode(), nil)
	if err != nil {
		t.Fatalf("RunReferenceDPLL: %s", err)
	}
	if sat {
		t.Fatal("reference run expected unsatisfiable")
	}
	rn := NewReplayNode(0, table.CloneForNode(), trace, testCosts())
	rn.Activate()
	if rn.State != NodeBusy {
		t.Fatalf("State after Activate = %v, want NodeBusy (propagate must not self-backtrack)", rn.State)
	}
	steps := 0
	for rn.State == NodeBusy && steps < 10 {
		rn.Retry()
		steps++
	}
	if rn.State != NodeIdle {
		t.Fatalf("State after exhausting retries = %v, want NodeIdle (took %d steps)", rn.State, steps)
	}
}

func TestReplaySchedulerRunAgreesWithDirectSat(t *testing.T) {
	raw := [][]int{{1, 2, 3}, {-1, 2}, {-2, 3}}
	table := mustBuildTable(t, raw)

	mesh, err := NewGrid(1, 1)
	if err != nil {
		t.Fatalf("NewGrid: %s", err)
	}
	direct, err := NewScheduler(mesh, table.CloneForNode(), testCosts(), 1, 0).Run()
	if err != nil {
		t.Fatalf("direct Run: %s", err)
	}

	trace, _, err := RunReferenceDPLL(table.CloneForNode(), nil)
	if err != nil {
		t.Fatalf("RunReferenceDPLL: %s", err)
	}
	replay, err := NewReplayScheduler(mesh, table.CloneForNode(), trace, testCosts(), 1, 0).Run()
	if err != nil {
		t.Fatalf("replay Run: %s", err)
	}

	if replay.Satisfiable != direct.Satisfiable {
		t.Errorf("replay Satisfiable = %v, want %v", replay.Satisfiable, direct.Satisfiable)
	}
}

// TestReplaySchedulerRunChargesSeedActivationToBusyCycles mirrors the direct
// scheduler's equivalent test: ReplayNode.Activate's own work must not be
// dropped from CyclesBusy.
func TestReplaySchedulerRunChargesSeedActivationToBusyCycles(t *testing.T) {
	table := mustBuildTable(t, [][]int{{1}})
	trace, sat, err := RunReferenceDPLL(table.CloneForNode(), nil)
	if err != nil {
		t.Fatalf("RunReferenceDPLL: %s", err)
	}
	if !sat {
		t.Fatal("reference run expected satisfiable")
	}
	mesh, err := NewGrid(1, 1)
	if err != nil {
		t.Fatalf("NewGrid: %s", err)
	}
	result, err := NewReplayScheduler(mesh, table, trace, testCosts(), 1, 0).Run()
	if err != nil {
		t.Fatalf("Run: %s", err)
	}
	if !result.Satisfiable {
		t.Fatal("expected satisfiable")
	}
	if result.CyclesBusy == 0 {
		t.Error("CyclesBusy = 0, want seed activation work charged")
	}
}

// TestReplaySchedulerRunEmptyClauseIsUnsatAtTimeZero mirrors the direct
// scheduler's equivalent boundary test for replay mode.
func TestReplaySchedulerRunEmptyClauseIsUnsatAtTimeZero(t *testing.T) {
	table := mustBuildTable(t, [][]int{{}})
	trace, sat, err := RunReferenceDPLL(table.CloneForNode(), nil)
	if err != nil {
		t.Fatalf("RunReferenceDPLL: %s", err)
	}
	if sat {
		t.Fatal("reference run expected unsatisfiable")
	}
	mesh, err := NewGrid(1, 1)
	if err != nil {
		t.Fatalf("NewGrid: %s", err)
	}
	result, err := NewReplayScheduler(mesh, table, trace, testCosts(), 1, 0).Run()
	if err != nil {
		t.Fatalf("Run: %s", err)
	}
	if result.Satisfiable {
		t.Fatal("expected unsatisfiable")
	}
	if result.SimulatedCycles != 0 {
		t.Errorf("SimulatedCycles = %d, want 0", result.SimulatedCycles)
	}
}

func TestReplaySchedulerMultiNodeForking(t *testing.T) {
	raw := [][]int{{1, 2, 3}, {-1, 2}, {-2, 3}, {-3, -1}}
	table := mustBuildTable(t, raw)

	trace, _, err := RunReferenceDPLL(table.CloneForNode(), nil)
	if err != nil {
		t.Fatalf("RunReferenceDPLL: %s", err)
	}

	mesh, err := NewGrid(2, 2)
	if err != nil {
		t.Fatalf("NewGrid: %s", err)
	}
	result, err := NewReplayScheduler(mesh, table, trace, testCosts(), 1, 100000).Run()
	if err != nil {
		t.Fatalf("Run: %s", err)
	}
	_ = result // a multi-node replay run with forking enabled must complete without error
}
