package office

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/custodia-labs/documentviewer/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.CommandRunner = (*ExecRunner)(nil)

// waitDelay bounds how long Run waits for output pipes after the process
// is killed on context cancellation.
const waitDelay = 5 * time.Second

// ExecRunner runs commands as child processes.
type ExecRunner struct{}

// Run executes name in dir and returns its combined output.
func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.WaitDelay = waitDelay

	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return out, ctxErr
		}
		return out, fmt.Errorf("run %s: %w", name, err)
	}
	return out, nil
}
