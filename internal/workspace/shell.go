package workspace

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"time"

	"github.com/skovand/redline/internal/batch"
)

// Shell runs commands through bash with the workspace root as working
// directory.
type Shell struct {
	root    string
	timeout time.Duration
}

// NewShell builds a shell service. A zero timeout means commands run until
// ctx says otherwise.
func NewShell(root string, timeout time.Duration) *Shell {
	return &Shell{root: root, timeout: timeout}
}

// Execute runs command and captures stdout, stderr, and the exit code. A
// non-zero exit is reported through the output, not the error; the error
// covers failures to run the command at all.
func (s *Shell) Execute(ctx context.Context, command string) (batch.CommandOutput, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, "bash", "-c", command)
	cmd.Dir = s.root
	cmd.Env = os.Environ()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := batch.CommandOutput{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			out.ExitCode = exitErr.ExitCode()
		} else {
			// Non-exit error (e.g. shell not found, context cancelled)
			return out, err
		}
	}
	return out, nil
}
