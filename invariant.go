package satswarm

import "fmt"

// invariant panics with a formatted message when cond is false, but only in
// builds tagged satswarm_debug. Release builds treat a violated invariant as
// a silent no-op: by the time one fires, a bug already exists, and the
// debug build exists to catch it during development rather than take down a
// production simulation run.
func invariant(cond bool, msg string, args ...interface{}) {
	if debugAssertions && !cond {
		panic(fmt.Sprintf("satswarm: invariant violated: "+msg, args...))
	}
}
