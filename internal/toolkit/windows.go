package toolkit

import (
	"bufio"
	"bytes"
	"context"
	"log"
	"path/filepath"
	"sort"
	"strings"

	"cudacfg/internal/paths"
)

// resolveImportDLLs maps each link library's import stub to the shared
// library it loads at runtime, by listing the stub's symbol table with nm and
// scanning for a filename with the .dll extension. The resolved names feed
// the dynamic-loading path of the build; the static link step keeps using the
// stubs directly. Any failure here degrades to an empty result, never a build
// abort.
func resolveImportDLLs(ctx context.Context, runner Runner, lookPath func(string) (string, error), cfg BuildConfig, logger *log.Logger) []string {
	nm, err := lookPath("nm")
	if err != nil {
		logger.Printf("nm not found on the search path; skipping import-library resolution")
		return nil
	}

	seen := map[string]bool{}
	for _, lib := range cfg.Libraries {
		stub, ok := findImportStub(cfg.LibDirs, lib)
		if !ok {
			logger.Printf("no import stub found for %s; skipping", lib)
			continue
		}

		result, err := runner.Run(ctx, nm, stub)
		if err != nil {
			logger.Printf("nm %s failed: %v", stub, err)
			continue
		}

		dll := scanForDLL(result.Stdout)
		if dll == "" {
			logger.Printf("no .dll reference found in %s", stub)
			continue
		}
		seen[dll] = true
	}

	if len(seen) == 0 {
		return nil
	}
	dlls := make([]string, 0, len(seen))
	for dll := range seen {
		dlls = append(dlls, dll)
	}
	sort.Strings(dlls)
	return dlls
}

func findImportStub(libDirs []string, lib string) (string, bool) {
	for _, dir := range libDirs {
		for _, name := range []string{lib + ".lib", "lib" + lib + ".a"} {
			stub := filepath.Join(dir, name)
			exists, err := paths.FileExists(stub)
			if err == nil && exists {
				return stub, true
			}
		}
	}
	return "", false
}

// scanForDLL returns the first token in the symbol listing that names a .dll
// file, or "" when none appears.
func scanForDLL(output []byte) string {
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		for _, field := range strings.Fields(scanner.Text()) {
			trimmed := strings.TrimSuffix(field, ":")
			if strings.HasSuffix(strings.ToLower(trimmed), ".dll") {
				return trimmed
			}
		}
	}
	return ""
}
