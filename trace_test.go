package satswarm

import (
	"bytes"
	"testing"
)

func TestSatRecordIsTerminal(t *testing.T) {
	r := SatRecord(3)
	if !r.IsSat() {
		t.Error("SatRecord.IsSat() = false, want true")
	}
	if r.IsUnsat() || r.IsBranch() {
		t.Error("SatRecord reports IsUnsat or IsBranch")
	}
}

func TestUnsatRecordIsTerminal(t *testing.T) {
	r := UnsatRecord(3, ClauseId(7))
	if !r.IsUnsat() {
		t.Error("UnsatRecord.IsUnsat() = false, want true")
	}
	if r.IsSat() || r.IsBranch() {
		t.Error("UnsatRecord reports IsSat or IsBranch")
	}
	if got := r.UnsatClause(); got != 7 {
		t.Errorf("UnsatClause() = %d, want 7", got)
	}
}

func TestBranchRecordHasRightChild(t *testing.T) {
	r := BranchRecord(2, 9)
	if !r.IsBranch() {
		t.Fatal("BranchRecord.IsBranch() = false, want true")
	}
	if !r.HasRightChild() {
		t.Fatal("BranchRecord.HasRightChild() = false, want true")
	}
	if got := r.RightChild(); got != 9 {
		t.Errorf("RightChild() = %d, want 9", got)
	}
}

// TestBranchRecordNoRightStaysABranch guards the fix for a trace-encoding
// ambiguity: a branch whose left subtree already proved SAT must still
// report IsBranch() == true (so replay descends into the left subtree's own
// records), while HasRightChild() == false (so a fork that needs to go right
// triggers on-demand expansion instead of following a bogus pointer).
func TestBranchRecordNoRightStaysABranch(t *testing.T) {
	r := BranchRecordNoRight(4)
	if !r.IsBranch() {
		t.Fatal("BranchRecordNoRight.IsBranch() = false, want true")
	}
	if r.HasRightChild() {
		t.Fatal("BranchRecordNoRight.HasRightChild() = true, want false")
	}
	if r.IsSat() || r.IsUnsat() {
		t.Error("BranchRecordNoRight must not look like a terminal leaf")
	}
}

func TestBranchRecordNoRightDistinctFromLeaf(t *testing.T) {
	leaf := UnsatRecord(0, 0)
	branch := BranchRecordNoRight(0)
	if leaf.IsBranch() == branch.IsBranch() {
		t.Fatal("a genuine leaf and a no-right branch must not collide on the same sentinel")
	}
}

func TestTraceLogEncodeDecodeRoundTrip(t *testing.T) {
	want := &TraceLog{
		NumVars:    3,
		NumClauses: 2,
		Records: []TraceRecord{
			BranchRecord(1, 3),
			BranchRecordNoRight(0),
			SatRecord(2),
			UnsatRecord(5, ClauseId(1)),
		},
	}
	var buf bytes.Buffer
	if err := want.Encode(&buf); err != nil {
		t.Fatalf("Encode: %s", err)
	}
	got, err := DecodeTraceLog(&buf)
	if err != nil {
		t.Fatalf("DecodeTraceLog: %s", err)
	}
	if got.NumVars != want.NumVars || got.NumClauses != want.NumClauses {
		t.Fatalf("header mismatch: got %+v, want %+v", got, want)
	}
	if len(got.Records) != len(want.Records) {
		t.Fatalf("got %d records, want %d", len(got.Records), len(want.Records))
	}
	for i := range want.Records {
		if got.Records[i] != want.Records[i] {
			t.Errorf("record %d = %+v, want %+v", i, got.Records[i], want.Records[i])
		}
	}
}
