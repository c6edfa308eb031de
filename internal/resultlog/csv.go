// Package resultlog writes one CSV row per simulation run, matching the
// column order the reference project's TestLog::save produces, so existing
// analysis spreadsheets built against the original tool keep working.
package resultlog

import (
	"encoding/csv"
	"io"
	"strconv"
)

var header = []string{
	"Test Path",
	"Number of Variables",
	"Number of Clauses",
	"Topology",
	"Decision Delay",
	"Fork Delay",
	"Clause Per Eval",
	"Cycles Per Eval",
	"Simulated Result",
	"Simulated Cycles",
	"Cycles Busy",
	"Cycles Idle",
	"Expected Result",
	"Minisat Speed (ns)",
}

// Row is one test's full record, already flattened into the primitive
// values the CSV row needs.
type Row struct {
	TestName   string
	NumVars    int
	NumClauses int

	Topology       string
	DecisionDelay  uint64
	ForkDelay      uint64
	ClausesPerEval int
	CyclesPerEval  uint64

	SimulatedResult bool
	SimulatedCycles uint64
	CyclesBusy      uint64
	CyclesIdle      uint64

	ExpectedResult   bool
	OracleElapsedNs int64
}

func (r Row) strings() []string {
	return []string{
		r.TestName,
		strconv.Itoa(r.NumVars),
		strconv.Itoa(r.NumClauses),
		r.Topology,
		strconv.FormatUint(r.DecisionDelay, 10),
		strconv.FormatUint(r.ForkDelay, 10),
		strconv.Itoa(r.ClausesPerEval),
		strconv.FormatUint(r.CyclesPerEval, 10),
		strconv.FormatBool(r.SimulatedResult),
		strconv.FormatUint(r.SimulatedCycles, 10),
		strconv.FormatUint(r.CyclesBusy, 10),
		strconv.FormatUint(r.CyclesIdle, 10),
		strconv.FormatBool(r.ExpectedResult),
		strconv.FormatInt(r.OracleElapsedNs, 10),
	}
}

// Writer appends Rows to a CSV stream, writing the header only once.
type Writer struct {
	w           *csv.Writer
	wroteHeader bool
}

// NewWriter wraps w. If headerAlreadyWritten is true (the destination file
// was non-empty before this run opened it), the header is not rewritten,
// matching the reference tool's "write header only if file_is_empty" rule
// for an append-mode log file shared across runs.
func NewWriter(w io.Writer, headerAlreadyWritten bool) *Writer {
	return &Writer{w: csv.NewWriter(w), wroteHeader: headerAlreadyWritten}
}

// Write appends one row, writing the header first if it hasn't been yet.
func (lw *Writer) Write(r Row) error {
	if !lw.wroteHeader {
		if err := lw.w.Write(header); err != nil {
			return err
		}
		lw.wroteHeader = true
	}
	if err := lw.w.Write(r.strings()); err != nil {
		return err
	}
	lw.w.Flush()
	return lw.w.Error()
}
