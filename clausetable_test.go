package satswarm

import "testing"

func mustBuildTable(t *testing.T, raw [][]int) *ClauseTable {
	t.Helper()
	table, _, err := BuildClauseTable(raw, false)
	if err != nil {
		t.Fatalf("BuildClauseTable: %s", err)
	}
	return table
}

func TestBuildClauseTablePadsShortClauses(t *testing.T) {
	// A unit clause [1] should be padded to width 3 with two Var-0 terms.
	table := mustBuildTable(t, [][]int{{1}})
	cls := table.Clause(0)
	if cls[0].Var != 1 {
		t.Fatalf("term 0 = %+v, want Var 1", cls[0])
	}
	for i := 1; i < ClauseLength; i++ {
		if cls[i].Var != 0 {
			t.Fatalf("term %d = %+v, want padding (Var 0)", i, cls[i])
		}
	}
}

func TestPaddingAlwaysFalse(t *testing.T) {
	table := mustBuildTable(t, [][]int{{1}})
	for i := 1; i < ClauseLength; i++ {
		if got := table.State[0][i]; got != False {
			t.Errorf("padding term %d state = %v, want False", i, got)
		}
	}
}

func TestCloneForNodeSeedsPadding(t *testing.T) {
	table := mustBuildTable(t, [][]int{{1}, {1, 2}})
	clone := table.CloneForNode()
	for ci, cls := range clone.symbolic {
		for ti, term := range cls {
			if term.Var == 0 && clone.State[ci][ti] != False {
				t.Errorf("clone padding at clause %d term %d = %v, want False", ci, ti, clone.State[ci][ti])
			}
		}
	}
	// The clone must be independent: mutating it must not affect the source.
	clone.State[0][0] = False
	if table.State[0][0] == False {
		t.Fatalf("CloneForNode shares ProblemState with its source")
	}
}

func TestOccurrencesCoverEveryRealPosition(t *testing.T) {
	raw := [][]int{{1, -2, 3}, {-1, 2}}
	table := mustBuildTable(t, raw)
	count := 0
	for v := 1; v <= table.NumberOfVariables(); v++ {
		occ := table.Occurrences(VarId(v))
		count += len(occ.Pos) + len(occ.Neg)
	}
	want := 0
	for _, cls := range raw {
		want += len(cls)
	}
	if count != want {
		t.Errorf("transpose table covers %d real positions, want %d", count, want)
	}
}

func TestNumberOfClausesAndVariables(t *testing.T) {
	table := mustBuildTable(t, [][]int{{1, 2}, {2, 3}, {3}})
	if got, want := table.NumberOfClauses(), 3; got != want {
		t.Errorf("NumberOfClauses() = %d, want %d", got, want)
	}
	if got, want := table.NumberOfVariables(), 3; got != want {
		t.Errorf("NumberOfVariables() = %d, want %d", got, want)
	}
}
