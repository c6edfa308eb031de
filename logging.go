package satswarm

import (
	"os"

	"github.com/hashicorp/go-hclog"
)

// NewLogger builds the leveled logger threaded through the scheduler,
// replayer, and CLI for branch/fork/watchdog/abort diagnostics. level follows
// hclog's names ("trace", "debug", "info", "warn", "error"); an empty string
// falls back to "info".
func NewLogger(name, level string) hclog.Logger {
	if level == "" {
		level = "info"
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:  name,
		Level: hclog.LevelFromString(level),
		Output: os.Stderr,
	})
}
