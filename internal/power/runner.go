package power

import (
	"context"
	"os/exec"
)

// Runner executes external commands for exec based backends
type Runner interface {
	// Run executes name with args and returns combined stdout and stderr
	Run(name string, args ...string) ([]byte, error)
	// LookPath reports where name is installed
	LookPath(name string) (string, error)
}

// ExecRunner runs commands with os/exec, cancelled when ctx is done
type ExecRunner struct {
	ctx context.Context
}

// NewExecRunner creates a runner bound to ctx
func NewExecRunner(ctx context.Context) *ExecRunner {
	return &ExecRunner{ctx: ctx}
}

// Run executes the command and returns its combined output
func (r *ExecRunner) Run(name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(r.ctx, name, args...) // #nosec G204 -- fixed command set chosen by the backend
	return cmd.CombinedOutput()
}

// LookPath wraps exec.LookPath
func (r *ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
