package satswarm

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// InputError reports a malformed instance, config, or topology: the
// simulator should abort with this diagnostic and a non-zero exit code.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string { return "satswarm: input error: " + e.Reason }

func inputErrorf(format string, args ...interface{}) *InputError {
	return &InputError{Reason: fmt.Sprintf(format, args...)}
}

// CapacityError reports an instance too large for a fixed-width encoding
// (trace index space, ClauseId, VarId) to represent.
type CapacityError struct {
	Reason string
}

func (e *CapacityError) Error() string { return "satswarm: capacity error: " + e.Reason }

func capacityErrorf(format string, args ...interface{}) *CapacityError {
	return &CapacityError{Reason: fmt.Sprintf(format, args...)}
}

// WatchdogError reports that a simulation exceeded its configured cycle
// budget (§5 "Timeout").
type WatchdogError struct {
	Cycles Time
}

func (e *WatchdogError) Error() string {
	return fmt.Sprintf("satswarm: watchdog: simulation exceeded %d cycles", e.Cycles)
}

// appendError aggregates multiple validation failures into one error so
// callers that check several independent conditions (as the DIMACS and
// config loaders do) can report all of them at once rather than stopping at
// the first.
func appendError(dst error, err error) error {
	if err == nil {
		return dst
	}
	return multierror.Append(dst, err)
}
