package toolkit

import (
	"context"
	"fmt"
	"strings"
)

// fakeRunner maps an invocation (command and args joined by spaces) to canned
// output. Unknown invocations fail, mimicking a missing tool.
type fakeRunner struct {
	outputs map[string]string
	errs    map[string]error
	calls   []string
}

func (f *fakeRunner) Run(_ context.Context, command string, args ...string) (RunResult, error) {
	key := strings.Join(append([]string{command}, args...), " ")
	f.calls = append(f.calls, key)
	if err, ok := f.errs[key]; ok {
		return RunResult{}, err
	}
	out, ok := f.outputs[key]
	if !ok {
		return RunResult{}, fmt.Errorf("fakeRunner: unexpected invocation %q", key)
	}
	return RunResult{Stdout: []byte(out)}, nil
}

func noEnv(string) string { return "" }

func envMap(values map[string]string) func(string) string {
	return func(name string) string { return values[name] }
}

func noLookPath(tool string) (string, error) {
	return "", fmt.Errorf("%s not found in PATH", tool)
}

func lookPathMap(values map[string]string) func(string) (string, error) {
	return func(tool string) (string, error) {
		if path, ok := values[tool]; ok {
			return path, nil
		}
		return "", fmt.Errorf("%s not found in PATH", tool)
	}
}
