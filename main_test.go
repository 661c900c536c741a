package git

import (
	"os"
	"testing"

	"github.com/vcslab/gitkit/internal/trace"
)

func TestMain(m *testing.M) {
	// Set the trace targets based on the environment variables.
	trace.ReadEnv()
	// Run the tests.
	os.Exit(m.Run())
}
