package satswarm

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseDIMACSBasic(t *testing.T) {
	text := "c a comment\np cnf 3 2\n1 -2 3 0\n-1 2 0\n"
	got, err := ParseDIMACS(strings.NewReader(text))
	if err != nil {
		t.Fatalf("ParseDIMACS: %s", err)
	}
	want := [][]int{{1, -2, 3}, {-1, 2}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseDIMACS mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDIMACSRejectsMismatchedCounts(t *testing.T) {
	text := "p cnf 2 5\n1 2 0\n"
	if _, err := ParseDIMACS(strings.NewReader(text)); err == nil {
		t.Fatal("expected an error for mismatched clause count, got nil")
	}
}

func TestParseDIMACSRejectsVarOutOfRange(t *testing.T) {
	text := "p cnf 2 1\n1 5 0\n"
	if _, err := ParseDIMACS(strings.NewReader(text)); err == nil {
		t.Fatal("expected an error for a var exceeding the problem line count, got nil")
	}
}

func TestParseDIMACSStopsAtPercent(t *testing.T) {
	text := "p cnf 1 1\n1 0\n%\nv 1 0\n"
	got, err := ParseDIMACS(strings.NewReader(text))
	if err != nil {
		t.Fatalf("ParseDIMACS: %s", err)
	}
	want := [][]int{{1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseDIMACS mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteParseRoundTrip(t *testing.T) {
	problem := [][]int{{1, -2, 3}, {-1, 2}, {3}}
	var b strings.Builder
	if err := WriteDIMACS(&b, problem); err != nil {
		t.Fatalf("WriteDIMACS: %s", err)
	}
	got, err := ParseDIMACS(strings.NewReader(b.String()))
	if err != nil {
		t.Fatalf("ParseDIMACS: %s", err)
	}
	if diff := cmp.Diff(problem, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildClauseTableRejectsOverwideClause(t *testing.T) {
	if _, _, err := BuildClauseTable([][]int{{1, 2, 3, 4}}, false); err == nil {
		t.Fatal("expected an error for a clause wider than 3-SAT, got nil")
	}
}

func TestBuildClauseTableRejectsZeroLiteral(t *testing.T) {
	if _, _, err := BuildClauseTable([][]int{{1, 0, 2}}, false); err == nil {
		t.Fatal("expected an error for a literal 0 inside a clause, got nil")
	}
}

func TestLoadClauseTableExpectedSatisfiability(t *testing.T) {
	_, sat, err := LoadClauseTable(strings.NewReader("p cnf 1 1\n1 0\n"), false)
	if err != nil {
		t.Fatalf("LoadClauseTable: %s", err)
	}
	if !sat {
		t.Errorf("expectedUnsat=false should report sat=true")
	}
	_, sat, err = LoadClauseTable(strings.NewReader("p cnf 1 1\n1 0\n"), true)
	if err != nil {
		t.Fatalf("LoadClauseTable: %s", err)
	}
	if sat {
		t.Errorf("expectedUnsat=true should report sat=false")
	}
}
