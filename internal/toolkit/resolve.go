package toolkit

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"cudacfg/internal/paths"
)

// State tracks resolver progress. A fresh invocation always restarts
// discovery from the first candidate; there are no retries.
type State int

const (
	StateUnconfigured State = iota
	StateDiscovering
	StateValidated
	StateConfiguring
	StateConfigured
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnconfigured:
		return "unconfigured"
	case StateDiscovering:
		return "discovering"
	case StateValidated:
		return "validated"
	case StateConfiguring:
		return "configuring"
	case StateConfigured:
		return "configured"
	default:
		return "failed"
	}
}

// Attempt records one discovery candidate that did not pan out.
type Attempt struct {
	Strategy string
	Path     string
	Reason   string
}

// NotFoundError reports that every discovery candidate was exhausted. Its
// message is a long-form operator diagnostic, not machine-parseable output.
type NotFoundError struct {
	Marker   string
	EnvVar   string
	Attempts []Attempt
}

func (e *NotFoundError) Error() string {
	var b strings.Builder
	b.WriteString("could not find a usable CUDA toolkit installation.\n\n")
	b.WriteString("The following locations were tried, in order:\n")
	for _, a := range e.Attempts {
		if a.Path == "" {
			fmt.Fprintf(&b, "  * %s: %s\n", a.Strategy, a.Reason)
		} else {
			fmt.Fprintf(&b, "  * %s: %s (%s)\n", a.Strategy, a.Path, a.Reason)
		}
	}
	fmt.Fprintf(&b, "\nA directory is accepted as the toolkit root only when %s exists beneath it.\n\n", e.Marker)
	b.WriteString("If the toolkit is not installed, download it from:\n")
	b.WriteString("  https://developer.nvidia.com/cuda-downloads\n\n")
	fmt.Fprintf(&b, "If it is installed somewhere unconventional, either set %s to the\n", e.EnvVar)
	b.WriteString("installation root or put nvcc on your PATH. Detection can also be bypassed\n")
	b.WriteString("entirely by writing a cuda.buildinfo file in the project root with explicit\n")
	b.WriteString("include-dirs and lib-dirs entries; when present it replaces the generated\n")
	b.WriteString("configuration outright.")
	return b.String()
}

// Resolver locates exactly one validated toolkit root and turns it into a
// BuildConfig. Collaborators are injectable so every decision is testable
// without a real toolkit on the machine.
type Resolver struct {
	Platform   Platform
	Candidates []Candidate
	// Marker is the root-relative file whose presence promotes a
	// candidate to a validated location.
	Marker string
	// LinkerMinimum gates the import-library linker on windows/amd64.
	LinkerMinimum string

	Getenv   func(string) string
	LookPath func(string) (string, error)
	Runner   Runner
	Log      *log.Logger

	state State
}

// NewResolver returns a resolver wired to the real environment.
func NewResolver(p Platform, candidates []Candidate, marker string) *Resolver {
	if marker == "" {
		marker = "include/cuda.h"
	}
	return &Resolver{
		Platform:      p,
		Candidates:    candidates,
		Marker:        marker,
		LinkerMinimum: "2.25.1",
		Getenv:        os.Getenv,
		LookPath:      exec.LookPath,
		Runner:        CmdRunner{},
		Log:           log.New(os.Stderr, "", 0),
	}
}

// State reports the resolver's current phase.
func (r *Resolver) State() State {
	return r.state
}

// Discover walks the candidate list in priority order and returns the first
// location whose marker file exists. Priority is strict: a later candidate is
// never consulted once an earlier one validates. Validation failures are
// logged and skipped; exhaustion returns a NotFoundError.
func (r *Resolver) Discover() (Location, error) {
	r.state = StateDiscovering

	envVar := "CUDA_PATH"
	var attempts []Attempt
	for _, candidate := range r.Candidates {
		if candidate.kind == kindEnvVar {
			envVar = candidate.arg
		}

		root, ok := candidate.produce(r.Getenv, r.LookPath)
		if !ok {
			attempts = append(attempts, Attempt{Strategy: candidate.Describe(), Reason: "nothing to try"})
			continue
		}

		marker := filepath.Join(root, filepath.FromSlash(r.Marker))
		exists, err := paths.FileExists(marker)
		if err != nil {
			r.Log.Printf("toolkit candidate %s rejected: %v", root, err)
			attempts = append(attempts, Attempt{Strategy: candidate.Describe(), Path: root, Reason: err.Error()})
			continue
		}
		if !exists {
			r.Log.Printf("toolkit candidate %s rejected: missing %s", root, r.Marker)
			attempts = append(attempts, Attempt{Strategy: candidate.Describe(), Path: root, Reason: "missing " + r.Marker})
			continue
		}

		abs, err := filepath.Abs(root)
		if err != nil {
			abs = root
		}
		r.Log.Printf("toolkit found via %s: %s", candidate.Describe(), abs)
		r.state = StateValidated
		return Location{Root: abs}, nil
	}

	r.state = StateFailed
	return Location{}, &NotFoundError{Marker: r.Marker, EnvVar: envVar, Attempts: attempts}
}

// Resolve runs the full pipeline: discovery, derivation, platform fixups, and
// the linker gate. The returned BuildConfig derives from a single validated
// location; candidates from different attempts are never mixed.
func (r *Resolver) Resolve(ctx context.Context) (BuildConfig, error) {
	loc, err := r.Discover()
	if err != nil {
		return BuildConfig{}, err
	}

	r.state = StateConfiguring

	p := r.Platform
	if p.CCVersion == "" {
		p.CCVersion = DetectCCVersion(ctx, r.Runner, p.CC)
		if p.CCVersion == "" {
			r.Log.Printf("host compiler version unavailable; version-gated flags disabled")
		}
	}

	cfg := Derive(loc, p)

	if p.OS == "darwin" {
		applyBlocksWorkaround(&cfg, blocksProbeHeader, r.Log)
	}

	if p.OS == "windows" {
		cfg.ExtraDLLs = resolveImportDLLs(ctx, r.Runner, r.LookPath, cfg, r.Log)
	}
	if err := r.LinkerCheck(ctx); err != nil {
		r.state = StateFailed
		return BuildConfig{}, err
	}

	if version := DetectToolkitVersion(ctx, r.Runner, loc); version != "" {
		cfg.ToolkitVersion = version
	} else {
		r.Log.Printf("could not read toolkit version from nvcc; recording unknown")
		cfg.ToolkitVersion = "unknown"
	}

	r.state = StateConfigured
	return cfg, nil
}
