package toolkit

import (
	"fmt"
	"path/filepath"
	"strings"
)

type candidateKind int

const (
	kindEnvVar candidateKind = iota
	kindPathSearch
	kindFixedDir
)

// Candidate is one ordered discovery strategy for a toolkit root. The path it
// produces is not computed until the candidate is actually tried, so an unset
// environment variable or an empty PATH never disturbs earlier strategies.
type Candidate struct {
	kind candidateKind
	arg  string
}

// EnvVar is a candidate naming an environment variable whose value is the
// toolkit root.
func EnvVar(name string) Candidate {
	return Candidate{kind: kindEnvVar, arg: name}
}

// PathSearch is a candidate that looks up an executable on the search path
// and takes its grandparent directory (the tool lives at <root>/bin/<tool>)
// as the toolkit root.
func PathSearch(tool string) Candidate {
	return Candidate{kind: kindPathSearch, arg: tool}
}

// FixedDir is a candidate naming a directory outright.
func FixedDir(dir string) Candidate {
	return Candidate{kind: kindFixedDir, arg: dir}
}

// Describe returns a human-readable account of the strategy, used in logs and
// in the not-found diagnostic.
func (c Candidate) Describe() string {
	switch c.kind {
	case kindEnvVar:
		return fmt.Sprintf("environment variable %s", c.arg)
	case kindPathSearch:
		return fmt.Sprintf("%s on the search path", c.arg)
	default:
		return fmt.Sprintf("default location %s", c.arg)
	}
}

// produce evaluates the strategy. The second return is false when the
// strategy yields no path at all (unset variable, tool not on PATH), which is
// distinct from producing a path that later fails validation.
func (c Candidate) produce(getenv func(string) string, lookPath func(string) (string, error)) (string, bool) {
	switch c.kind {
	case kindEnvVar:
		value := strings.TrimSpace(getenv(c.arg))
		if value == "" {
			return "", false
		}
		return value, true
	case kindPathSearch:
		exe, err := lookPath(c.arg)
		if err != nil {
			return "", false
		}
		// <root>/bin/<tool> -> <root>
		return filepath.Dir(filepath.Dir(exe)), true
	default:
		if c.arg == "" {
			return "", false
		}
		return c.arg, true
	}
}

// DefaultRoot returns the OS-conventional fallback installation root.
func DefaultRoot(p Platform) string {
	if p.OS == "windows" {
		return `C:\CUDA`
	}
	return "/usr/local/cuda"
}

// DefaultCandidates returns the standard discovery order: environment
// variable, then any extra configured directories, then nvcc on the search
// path, then the OS default root.
func DefaultCandidates(p Platform, envVar string, extraDirs []string, defaultRoot string) []Candidate {
	if envVar == "" {
		envVar = "CUDA_PATH"
	}
	if defaultRoot == "" {
		defaultRoot = DefaultRoot(p)
	}

	candidates := []Candidate{EnvVar(envVar)}
	for _, dir := range extraDirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		candidates = append(candidates, FixedDir(dir))
	}
	candidates = append(candidates, PathSearch("nvcc"), FixedDir(defaultRoot))
	return candidates
}
