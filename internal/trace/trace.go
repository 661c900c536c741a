// Package trace reads environment variables for enabling trace targets.
package trace

import (
	"os"
	"strconv"

	"github.com/vcslab/gitkit/utils/trace"
)

var envToTarget = map[string]trace.Target{
	"GIT_TRACE":             trace.General,
	"GIT_TRACE_PACKET":      trace.Packet,
	"GIT_TRACE_SSH":         trace.SSH,
	"GIT_TRACE_PERFORMANCE": trace.Performance,
	"GIT_TRACE_HTTP":        trace.HTTP,
}

// ReadEnv reads the GIT_TRACE* environment variables and sets the
// corresponding trace targets.
func ReadEnv() {
	var target trace.Target
	for k, v := range envToTarget {
		env := os.Getenv(k)
		if val, _ := strconv.ParseBool(env); val {
			target |= v
		}
	}
	trace.SetTarget(target)
}
