package oracle

import "testing"

func TestSolveSatisfiable(t *testing.T) {
	result := Solve(2, [][]int{{1, 2}, {-1, 2}})
	if !result.Satisfiable {
		t.Error("expected satisfiable")
	}
}

func TestSolveUnsatisfiable(t *testing.T) {
	result := Solve(1, [][]int{{1}, {-1}})
	if result.Satisfiable {
		t.Error("expected unsatisfiable")
	}
}
