package randcnf

import "testing"

func TestSatisfiableProducesRequestedShape(t *testing.T) {
	problem := Satisfiable(1, 5, 10)
	if len(problem) != 10 {
		t.Fatalf("got %d clauses, want 10", len(problem))
	}
	for _, clause := range problem {
		if len(clause) == 0 || len(clause) > 3 {
			t.Errorf("clause %v has width %d, want in [1,3]", clause, len(clause))
		}
		for _, lit := range clause {
			if lit == 0 {
				t.Errorf("clause %v contains a zero literal", clause)
			}
		}
	}
}

func TestSatisfiableIsDeterministicForASeed(t *testing.T) {
	a := Satisfiable(42, 4, 8)
	b := Satisfiable(42, 4, 8)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			t.Fatalf("clause %d shapes differ: %v vs %v", i, a[i], b[i])
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				t.Fatalf("clause %d literal %d differs: %d vs %d", i, j, a[i][j], b[i][j])
			}
		}
	}
}

func TestUnsatisfiableContainsContradictoryUnitClauses(t *testing.T) {
	problem := Unsatisfiable(1, 4, 6)
	last, secondLast := problem[len(problem)-1], problem[len(problem)-2]
	if len(last) != 1 || len(secondLast) != 1 {
		t.Fatalf("expected the last two clauses to be units, got %v and %v", secondLast, last)
	}
	if last[0] != -secondLast[0] {
		t.Errorf("expected contradictory units, got %d and %d", secondLast[0], last[0])
	}
}
