package satswarm

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseDIMACS parses text in the DIMACS CNF format into a sequence of
// clauses, each a sequence of signed literals.
//
// For convenience, a few non-standard variations are accepted (following the
// teacher convention this parser is adapted from):
//
//   - Comments (lines beginning with 'c') may appear anywhere, not just in
//     the preamble.
//   - The problem line may be missing.
//   - A line containing only '%' terminates parsing; anything after it
//     (e.g. a solution trailer) is ignored.
func ParseDIMACS(r io.Reader) ([][]int, error) {
	var problem struct {
		vars    int
		clauses int
	}
	var clauses [][]int
	var clause []int
	var errs error
	s := bufio.NewScanner(r)
	for s.Scan() {
		line := s.Text()
		if len(line) == 0 || line[0] == 'c' {
			continue
		}
		if line == "%" {
			break
		}
		if line[0] == 'p' {
			if len(clauses) > 0 {
				errs = appendError(errs, inputErrorf("problem line appears after clauses"))
				continue
			}
			if problem.vars > 0 {
				errs = appendError(errs, inputErrorf("multiple problem lines"))
				continue
			}
			fields := strings.Fields(line)
			if len(fields) != 4 || fields[0] != "p" {
				errs = appendError(errs, inputErrorf("malformed problem line %q", line))
				continue
			}
			if fields[1] != "cnf" {
				errs = appendError(errs, inputErrorf("only cnf supported; got %q", fields[1]))
				continue
			}
			var err error
			problem.vars, err = strconv.Atoi(fields[2])
			if err != nil {
				errs = appendError(errs, inputErrorf("malformed #vars in problem line: %s", err))
			}
			problem.clauses, err = strconv.Atoi(fields[3])
			if err != nil {
				errs = appendError(errs, inputErrorf("malformed #clauses in problem line: %s", err))
			}
			if problem.vars < 0 {
				errs = appendError(errs, inputErrorf("invalid #vars %d", problem.vars))
			}
			if problem.clauses < 0 {
				errs = appendError(errs, inputErrorf("invalid #clauses %d", problem.clauses))
			}
			continue
		}
		for _, field := range strings.Fields(line) {
			n, err := strconv.Atoi(field)
			if err != nil {
				errs = appendError(errs, inputErrorf("invalid literal %q: %s", field, err))
				continue
			}
			if n == 0 {
				clauses = append(clauses, clause)
				clause = nil
			} else {
				clause = append(clause, n)
			}
		}
	}
	if err := s.Err(); err != nil {
		errs = appendError(errs, err)
	}
	if errs != nil {
		return nil, errs
	}
	if len(clause) > 0 {
		clauses = append(clauses, clause)
	}

	if problem.vars > 0 {
		vars := make(map[int]struct{})
		for _, clause := range clauses {
			for _, v := range clause {
				if v < 0 {
					v = -v
				}
				if v > problem.vars {
					return nil, inputErrorf(
						"formula contains var %d, but problem line asserts %d vars (only vars in [1, %d] expected)",
						v, problem.vars, problem.vars)
				}
				vars[v] = struct{}{}
			}
		}
		if len(clauses) != problem.clauses {
			return nil, inputErrorf("problem line specifies %d clauses, but there are %d", problem.clauses, len(clauses))
		}
	}
	return clauses, nil
}

// WriteDIMACS writes problem back out in DIMACS CNF form, with a problem
// line sized to the largest variable magnitude referenced.
func WriteDIMACS(w io.Writer, problem [][]int) error {
	maxVar := 0
	for _, clause := range problem {
		for _, v := range clause {
			if v < 0 {
				v = -v
			}
			if v > maxVar {
				maxVar = v
			}
		}
	}
	if _, err := fmt.Fprintf(w, "p cnf %d %d\n", maxVar, len(problem)); err != nil {
		return err
	}
	for _, clause := range problem {
		var b strings.Builder
		for _, v := range clause {
			fmt.Fprintf(&b, "%d ", v)
		}
		b.WriteString("0\n")
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
	}
	return nil
}

// LoadClauseTable parses DIMACS text and builds a ClauseTable for the core
// simulator, padding clauses shorter than ClauseLength with the Var-0
// sentinel and rejecting clauses wider than ClauseLength (only the 3-SAT
// fragment is supported, per spec §3).
//
// The second return value is the instance's expected satisfiability as
// signalled by the source (by convention, file names containing "unsat" are
// expected UNSAT; this is advisory and used only by test fixtures, never by
// the core).
func LoadClauseTable(r io.Reader, expectedUnsat bool) (*ClauseTable, bool, error) {
	raw, err := ParseDIMACS(r)
	if err != nil {
		return nil, false, err
	}
	return BuildClauseTable(raw, expectedUnsat)
}

// BuildClauseTable converts parsed integer clauses into a ClauseTable,
// enforcing the 3-SAT width limit and VarId/ClauseId capacity.
func BuildClauseTable(raw [][]int, expectedUnsat bool) (*ClauseTable, bool, error) {
	if len(raw) > int(^ClauseId(0)) {
		return nil, false, capacityErrorf("%d clauses exceeds ClauseId capacity", len(raw))
	}
	var errs error
	maxVar := 0
	clauses := make([]Clause, len(raw))
	for i, cls := range raw {
		if len(cls) > ClauseLength {
			errs = appendError(errs, inputErrorf("clause %d has %d literals; only %d-SAT is supported", i, len(cls), ClauseLength))
			continue
		}
		var clause Clause // zero value is ClauseLength copies of Term{Var:0}, the padding sentinel seedPadding later fixes to False
		for j, lit := range cls {
			if lit == 0 {
				errs = appendError(errs, inputErrorf("clause %d contains literal 0", i))
				continue
			}
			v := lit
			negated := false
			if v < 0 {
				negated = true
				v = -v
			}
			if v > int(^VarId(0)) {
				errs = appendError(errs, capacityErrorf("var %d exceeds VarId capacity", v))
				continue
			}
			if v > maxVar {
				maxVar = v
			}
			clause[j] = Term{Var: VarId(v), Negated: negated}
		}
		clauses[i] = clause
	}
	if errs != nil {
		return nil, false, errs
	}
	return newClauseTable(clauses, maxVar), !expectedUnsat, nil
}
