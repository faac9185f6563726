package toolkit

import (
	"bytes"
	"context"
	"os/exec"
)

// RunResult holds the captured output of an external tool invocation.
type RunResult struct {
	Stdout []byte
	Stderr []byte
}

// Runner executes external tools (nvcc, nm, ld, the C compiler). Invocations
// are blocking and synchronous; configuration runs once per build, so no
// timeout is imposed beyond what the context carries.
type Runner interface {
	Run(ctx context.Context, command string, args ...string) (RunResult, error)
}

// CmdRunner runs commands with os/exec.
type CmdRunner struct{}

func (CmdRunner) Run(ctx context.Context, command string, args ...string) (RunResult, error) {
	cmd := exec.CommandContext(ctx, command, args...)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err := cmd.Run()
	return RunResult{Stdout: stdoutBuf.Bytes(), Stderr: stderrBuf.Bytes()}, err
}

var _ Runner = CmdRunner{}
