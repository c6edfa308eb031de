package satswarm

import (
	"encoding/binary"
	"io"
)

// sentinel values used to tag a TraceRecord's shape, per spec §3.
//
// right_child carries two reserved values: noRightChild marks a genuine leaf
// (sat or unsat, no children at all), while rightChildUnknown marks a branch
// whose left subtree resolved SAT before the right was ever explored — the
// reference search in §4.2 only recurses into the right child when the left
// did not already prove SAT, so that subtree's trace was simply never
// recorded. A replayer that needs to go right from such a branch (because a
// fork inverted the decision) must re-derive it with an on-demand DPLL run
// (§4.7) rather than following a recorded pointer.
const (
	noRightChild      uint32 = 1<<32 - 1
	rightChildUnknown uint32 = 1<<32 - 2
	noUnsatClause     uint16 = 1<<16 - 1
	noUnitProps       uint16 = 1<<16 - 1 // placeholder marker, never a finished record's value
)

// TraceRecord is one fixed-width 8-byte entry in a pre-order DFS
// serialization of a reference DPLL search tree (spec §3, §4.3).
//
//	unit_props (2 bytes) | unsat_clause (2 bytes) | right_child (4 bytes)
//
// A record is exactly one of: branch (right_child != sentinel), unsat
// (right_child == sentinel, unsat_clause != sentinel), or sat (both
// sentinels).
type TraceRecord struct {
	UnitProps   uint16
	unsatClause uint16
	rightChild  uint32
}

// UnsatRecord builds a leaf recording a conflict at unsatClause after
// unitProps unit propagations.
func UnsatRecord(unitProps uint16, unsatClause ClauseId) TraceRecord {
	return TraceRecord{UnitProps: unitProps, unsatClause: uint16(unsatClause), rightChild: noRightChild}
}

// SatRecord builds a leaf recording a satisfying assignment found after
// unitProps unit propagations.
func SatRecord(unitProps uint16) TraceRecord {
	return TraceRecord{UnitProps: unitProps, unsatClause: noUnsatClause, rightChild: noRightChild}
}

// BranchRecord builds an interior node: its left subtree is the very next
// record in the log; rightChild is the index where its right subtree starts.
func BranchRecord(unitProps uint16, rightChild int) TraceRecord {
	return TraceRecord{UnitProps: unitProps, unsatClause: noUnsatClause, rightChild: uint32(rightChild)}
}

// BranchRecordNoRight builds an interior node whose left subtree alone
// already proved the formula SAT, so no right subtree was ever recorded.
func BranchRecordNoRight(unitProps uint16) TraceRecord {
	return TraceRecord{UnitProps: unitProps, unsatClause: noUnsatClause, rightChild: rightChildUnknown}
}

// placeholderRecord marks a branch record whose right_child has not yet been
// patched in (the reference DPLL hasn't finished the left subtree yet).
func placeholderRecord() TraceRecord {
	return TraceRecord{UnitProps: noUnitProps, unsatClause: noUnsatClause, rightChild: noRightChild}
}

// IsSat reports whether r is a terminal SAT record.
func (r TraceRecord) IsSat() bool { return r.unsatClause == noUnsatClause && r.rightChild == noRightChild }

// IsUnsat reports whether r is a terminal UNSAT (conflict) record.
func (r TraceRecord) IsUnsat() bool { return r.rightChild == noRightChild && !r.IsSat() }

// IsBranch reports whether r is an interior branch record.
func (r TraceRecord) IsBranch() bool { return r.rightChild != noRightChild }

// HasRightChild reports whether r's right subtree was actually recorded.
// Only meaningful if IsBranch.
func (r TraceRecord) HasRightChild() bool { return r.IsBranch() && r.rightChild != rightChildUnknown }

// RightChild returns the index of r's right subtree. Only valid if
// HasRightChild.
func (r TraceRecord) RightChild() int { return int(r.rightChild) }

// UnsatClause returns the clause that drove the conflict. Only valid if
// IsUnsat.
func (r TraceRecord) UnsatClause() ClauseId { return ClauseId(r.unsatClause) }

// TraceLog is an append-only, pre-order-DFS sequence of TraceRecords
// produced once by the reference DPLL (C2) and consumed many times by the
// Trace Replayer (C7).
type TraceLog struct {
	NumVars    int
	NumClauses int
	Records    []TraceRecord
}

const traceRecordSize = 8
const traceHeaderSize = 12 // num_vars, num_clauses, length, each a u32

// Encode writes the trace in the little-endian binary framing from spec §6:
// a (num_vars, num_clauses, length) header followed by length*8 bytes of
// records.
func (t *TraceLog) Encode(w io.Writer) error {
	header := make([]byte, traceHeaderSize)
	binary.LittleEndian.PutUint32(header[0:4], uint32(t.NumVars))
	binary.LittleEndian.PutUint32(header[4:8], uint32(t.NumClauses))
	binary.LittleEndian.PutUint32(header[8:12], uint32(len(t.Records)))
	if _, err := w.Write(header); err != nil {
		return err
	}
	buf := make([]byte, traceRecordSize)
	for _, r := range t.Records {
		binary.LittleEndian.PutUint16(buf[0:2], r.UnitProps)
		binary.LittleEndian.PutUint16(buf[2:4], r.unsatClause)
		binary.LittleEndian.PutUint32(buf[4:8], r.rightChild)
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

// DecodeTraceLog is the inverse of Encode.
func DecodeTraceLog(r io.Reader) (*TraceLog, error) {
	header := make([]byte, traceHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}
	t := &TraceLog{
		NumVars:    int(binary.LittleEndian.Uint32(header[0:4])),
		NumClauses: int(binary.LittleEndian.Uint32(header[4:8])),
	}
	length := int(binary.LittleEndian.Uint32(header[8:12]))
	t.Records = make([]TraceRecord, length)
	buf := make([]byte, traceRecordSize)
	for i := 0; i < length; i++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		t.Records[i] = TraceRecord{
			UnitProps:   binary.LittleEndian.Uint16(buf[0:2]),
			unsatClause: binary.LittleEndian.Uint16(buf[2:4]),
			rightChild:  binary.LittleEndian.Uint32(buf[4:8]),
		}
	}
	return t, nil
}
