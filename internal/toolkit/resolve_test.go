package toolkit

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// mkToolkit creates a directory that passes marker validation.
func mkToolkit(t *testing.T, root string) string {
	t.Helper()
	include := filepath.Join(root, "include")
	if err := os.MkdirAll(include, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(include, "cuda.h"), []byte("/* cuda */\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return root
}

func testResolver(candidates []Candidate) *Resolver {
	r := NewResolver(Platform{OS: "linux", Arch: "amd64", CC: "cc"}, candidates, "")
	r.Getenv = noEnv
	r.LookPath = noLookPath
	r.Log = log.New(io.Discard, "", 0)
	return r
}

func TestDiscoverFirstValidCandidateWins(t *testing.T) {
	first := mkToolkit(t, t.TempDir())
	second := mkToolkit(t, t.TempDir())

	r := testResolver([]Candidate{FixedDir(first), FixedDir(second)})
	loc, err := r.Discover()
	if err != nil {
		t.Fatal(err)
	}
	if loc.Root != first {
		t.Fatalf("selected %q, want first candidate %q", loc.Root, first)
	}
	if r.State() != StateValidated {
		t.Fatalf("state = %s, want validated", r.State())
	}
}

func TestDiscoverSkipsInvalidCandidates(t *testing.T) {
	invalid := t.TempDir() // exists but no marker
	valid := mkToolkit(t, t.TempDir())

	r := testResolver([]Candidate{FixedDir(invalid), FixedDir(valid)})
	loc, err := r.Discover()
	if err != nil {
		t.Fatal(err)
	}
	if loc.Root != valid {
		t.Fatalf("selected %q, want %q", loc.Root, valid)
	}
}

func TestDiscoverPriorityIsStrictNotBestOf(t *testing.T) {
	// The first validating candidate wins even when a later candidate
	// also validates and looks "better" (newer layout, more files).
	older := mkToolkit(t, t.TempDir())
	newer := mkToolkit(t, t.TempDir())
	if err := os.MkdirAll(filepath.Join(newer, "lib64"), 0o755); err != nil {
		t.Fatal(err)
	}

	r := testResolver([]Candidate{FixedDir(older), FixedDir(newer)})
	loc, err := r.Discover()
	if err != nil {
		t.Fatal(err)
	}
	if loc.Root != older {
		t.Fatalf("selected %q, want strictly-first %q", loc.Root, older)
	}
}

func TestDiscoverExhaustionFails(t *testing.T) {
	r := testResolver([]Candidate{
		EnvVar("CUDA_PATH"),
		PathSearch("nvcc"),
		FixedDir(filepath.Join(t.TempDir(), "nonexistent")),
	})

	_, err := r.Discover()
	if err == nil {
		t.Fatal("expected discovery to fail with no valid candidates")
	}

	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("got %T, want *NotFoundError", err)
	}
	if len(notFound.Attempts) != 3 {
		t.Fatalf("recorded %d attempts, want 3", len(notFound.Attempts))
	}
	if r.State() != StateFailed {
		t.Fatalf("state = %s, want failed", r.State())
	}

	// The diagnostic must be actionable: name the variable, the marker,
	// and the override mechanism.
	msg := err.Error()
	for _, fragment := range []string{"CUDA_PATH", "include/cuda.h", "cuda.buildinfo", "developer.nvidia.com"} {
		if !strings.Contains(msg, fragment) {
			t.Errorf("diagnostic missing %q:\n%s", fragment, msg)
		}
	}
}

func TestDiscoverNeverSilentlyPicksUnvalidatedPath(t *testing.T) {
	unvalidated := t.TempDir()
	r := testResolver([]Candidate{FixedDir(unvalidated)})

	_, err := r.Discover()
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("got %v, want *NotFoundError", err)
	}
}

func TestDiscoverEnvVarBeatsDefault(t *testing.T) {
	envRoot := mkToolkit(t, t.TempDir())
	defaultRoot := mkToolkit(t, t.TempDir())

	r := testResolver([]Candidate{EnvVar("CUDA_PATH"), FixedDir(defaultRoot)})
	r.Getenv = envMap(map[string]string{"CUDA_PATH": envRoot})

	loc, err := r.Discover()
	if err != nil {
		t.Fatal(err)
	}
	if loc.Root != envRoot {
		t.Fatalf("selected %q, want env root %q", loc.Root, envRoot)
	}
}

func TestDiscoverDefaultPathFallback(t *testing.T) {
	// Environment variable unset, nvcc not on PATH, conventional default
	// exists and contains include/cuda.h: the default is selected.
	defaultRoot := mkToolkit(t, t.TempDir())

	r := testResolver(DefaultCandidates(Platform{OS: "linux", Arch: "amd64"}, "CUDA_PATH", nil, defaultRoot))
	loc, err := r.Discover()
	if err != nil {
		t.Fatal(err)
	}
	if loc.Root != defaultRoot {
		t.Fatalf("selected %q, want default %q", loc.Root, defaultRoot)
	}
	if got := loc.IncludeDir(); got != filepath.Join(defaultRoot, "include") {
		t.Fatalf("include dir %q, want %q", got, filepath.Join(defaultRoot, "include"))
	}
}

func TestResolveLinux(t *testing.T) {
	root := mkToolkit(t, t.TempDir())
	runner := &fakeRunner{outputs: map[string]string{
		"cc -dumpversion": "13.2.0\n",
		filepath.Join(root, "bin", "nvcc") + " --version": "nvcc: NVIDIA (R) Cuda compiler driver\nCuda compilation tools, release 7.5, V7.5.17\n",
	}}

	r := testResolver([]Candidate{FixedDir(root)})
	r.Runner = runner

	cfg, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if cfg.ToolkitRoot != root {
		t.Errorf("toolkit root %q, want %q", cfg.ToolkitRoot, root)
	}
	if cfg.ToolkitVersion != "7.5" {
		t.Errorf("toolkit version %q, want 7.5", cfg.ToolkitVersion)
	}
	if want := []string{filepath.Join(root, "include")}; !reflect.DeepEqual(cfg.IncludeDirs, want) {
		t.Errorf("include dirs %v, want %v", cfg.IncludeDirs, want)
	}
	if want := []string{filepath.Join(root, "lib64")}; !reflect.DeepEqual(cfg.LibDirs, want) {
		t.Errorf("lib dirs %v, want %v", cfg.LibDirs, want)
	}
	if want := []string{"cudart", "cuda"}; !reflect.DeepEqual(cfg.Libraries, want) {
		t.Errorf("libraries %v, want %v", cfg.Libraries, want)
	}
	if want := []string{"-m64", "-DHAVE_GENERIC_SELECTION"}; !reflect.DeepEqual(cfg.CPPOptions, want) {
		t.Errorf("cpp options %v, want %v", cfg.CPPOptions, want)
	}
	if len(cfg.LDOptions) != 0 {
		t.Errorf("unexpected ld options on linux: %v", cfg.LDOptions)
	}
	if r.State() != StateConfigured {
		t.Errorf("state = %s, want configured", r.State())
	}
}

func TestResolveToolkitVersionFailureIsNonFatal(t *testing.T) {
	root := mkToolkit(t, t.TempDir())
	runner := &fakeRunner{
		outputs: map[string]string{"cc -dumpversion": "13.2.0\n"},
		errs: map[string]error{
			filepath.Join(root, "bin", "nvcc") + " --version": errors.New("no such file"),
		},
	}

	r := testResolver([]Candidate{FixedDir(root)})
	r.Runner = runner

	cfg, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ToolkitVersion != "unknown" {
		t.Fatalf("toolkit version %q, want unknown", cfg.ToolkitVersion)
	}
}

func TestResolveNotFoundPropagates(t *testing.T) {
	r := testResolver([]Candidate{FixedDir(filepath.Join(t.TempDir(), "missing"))})
	r.Runner = &fakeRunner{outputs: map[string]string{}}

	_, err := r.Resolve(context.Background())
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("got %v, want *NotFoundError", err)
	}
}
