package toolkit

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// LinkerTooOldError reports a linker build with a known defect: linking the
// toolkit's 64-bit import libraries with it produces binaries that corrupt
// memory at runtime without any diagnostic.
type LinkerTooOldError struct {
	Path    string
	Version string
	Minimum string
}

func (e *LinkerTooOldError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "the linker at %s reports version %s, below the required minimum %s.\n\n", e.Path, e.Version, e.Minimum)
	b.WriteString("Linkers older than the minimum mis-handle the toolkit's 64-bit import\n")
	b.WriteString("libraries on this platform: the link succeeds but the resulting binaries\n")
	b.WriteString("corrupt memory at runtime with no warning. Refusing to configure.\n\n")
	fmt.Fprintf(&b, "Upgrade binutils to %s or newer, or point the build at a toolchain whose\n", e.Minimum)
	b.WriteString("bundled linker is recent enough, then re-run configure.")
	return b.String()
}

// checkLinker locates the linker the C compiler will actually invoke and
// verifies its version against minimum. The first ld on the search path can
// be a decoy wrapper, so the compiler is asked directly via
// -print-prog-name=ld before falling back to a PATH lookup.
//
// A confirmed-old linker aborts configuration. An unverifiable one does not:
// when the version string cannot be parsed the build proceeds with a warning,
// since correctness cannot be disproven either.
func checkLinker(ctx context.Context, runner Runner, lookPath func(string) (string, error), cc, minimum string, logger *log.Logger) error {
	if minimum == "" {
		return nil
	}

	ld := locateLinker(ctx, runner, lookPath, cc)
	if ld == "" {
		logger.Printf("warning: no linker found to version-check; proceeding unguarded")
		return nil
	}

	result, err := runner.Run(ctx, ld, "--version")
	if err != nil {
		logger.Printf("warning: %s --version failed (%v); proceeding unguarded", ld, err)
		return nil
	}

	version := trailingVersionToken(string(result.Stdout))
	if version == "" {
		logger.Printf("warning: could not parse linker version from %s; proceeding unguarded", ld)
		return nil
	}

	if !meetsMinimum(version, minimum) {
		return &LinkerTooOldError{Path: ld, Version: version, Minimum: minimum}
	}

	logger.Printf("linker %s version %s meets minimum %s", ld, version, minimum)
	return nil
}

// LinkerCheck applies the import-library linker gate for the resolver's
// platform. Only windows/amd64 carries the defective-linker risk; everywhere
// else this is a no-op.
func (r *Resolver) LinkerCheck(ctx context.Context) error {
	if r.Platform.OS != "windows" || r.Platform.Arch != "amd64" {
		return nil
	}
	return checkLinker(ctx, r.Runner, r.LookPath, r.Platform.CC, r.LinkerMinimum, r.Log)
}

func locateLinker(ctx context.Context, runner Runner, lookPath func(string) (string, error), cc string) string {
	if cc != "" {
		result, err := runner.Run(ctx, cc, "-print-prog-name=ld")
		if err == nil {
			path := strings.TrimSpace(string(result.Stdout))
			// A bare "ld" means the compiler has no opinion beyond
			// the search path.
			if path != "" && path != "ld" {
				return path
			}
		}
	}

	path, err := lookPath("ld")
	if err != nil {
		return ""
	}
	return path
}
