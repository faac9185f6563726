// Package buildinfo reads and writes the persisted build-configuration
// artifact: a plain-text, line-oriented key/value description of the flags
// derived from a validated toolkit installation.
//
// Two files share the schema. The generated artifact is written after a
// successful configure run. A user-authored override, when present, replaces
// the generated one outright; the two are never merged.
package buildinfo

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cudacfg/internal/paths"
	"cudacfg/internal/toolkit"
)

// Source identifies which artifact a configuration was loaded from.
type Source string

const (
	SourceGenerated Source = "generated"
	SourceOverride  Source = "override"
)

const (
	keyToolkitRoot    = "toolkit-root"
	keyToolkitVersion = "toolkit-version"
	keyIncludeDirs    = "include-dirs"
	keyLibDirs        = "lib-dirs"
	keyLibraries      = "libraries"
	keyCPPOptions     = "cpp-options"
	keyLDOptions      = "ld-options"
	keyExtraDLLs      = "extra-dlls"
)

// MissingArtifactsError reports that neither the override nor the generated
// artifact exists. This is distinct from failing to find a toolkit: it means
// the configure phase never ran, or its output was deleted.
type MissingArtifactsError struct {
	Override  string
	Generated string
}

func (e *MissingArtifactsError) Error() string {
	return fmt.Sprintf("no build configuration found: neither %s nor %s exists.\n\n"+
		"Run `cudacfg configure` to detect the toolkit and generate one, or write\n"+
		"a %s file by hand to bypass detection.",
		e.Override, e.Generated, filepath.Base(e.Override))
}

// Write emits cfg in the artifact format. Keys with empty values are omitted.
func Write(w io.Writer, cfg toolkit.BuildConfig) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "# Generated by cudacfg; do not edit.")
	fmt.Fprintln(bw, "# To override, copy to cuda.buildinfo and adjust.")

	writeValue(bw, keyToolkitRoot, cfg.ToolkitRoot)
	writeValue(bw, keyToolkitVersion, cfg.ToolkitVersion)
	writeList(bw, keyIncludeDirs, cfg.IncludeDirs)
	writeList(bw, keyLibDirs, cfg.LibDirs)
	writeList(bw, keyLibraries, cfg.Libraries)
	writeList(bw, keyCPPOptions, cfg.CPPOptions)
	writeList(bw, keyLDOptions, cfg.LDOptions)
	writeList(bw, keyExtraDLLs, cfg.ExtraDLLs)

	return bw.Flush()
}

func writeValue(w io.Writer, key, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(w, "%s: %s\n", key, value)
}

func writeList(w io.Writer, key string, values []string) {
	if len(values) == 0 {
		return
	}
	fmt.Fprintf(w, "%s: %s\n", key, strings.Join(values, ", "))
}

// Parse reads an artifact. Blank lines and # comments are skipped; unknown
// keys are ignored so older tools can read newer artifacts.
func Parse(r io.Reader) (toolkit.BuildConfig, error) {
	var cfg toolkit.BuildConfig

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, ":")
		if !found {
			return toolkit.BuildConfig{}, fmt.Errorf("line %d: expected `key: value`, got %q", lineNo, line)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case keyToolkitRoot:
			cfg.ToolkitRoot = value
		case keyToolkitVersion:
			cfg.ToolkitVersion = value
		case keyIncludeDirs:
			cfg.IncludeDirs = splitList(value)
		case keyLibDirs:
			cfg.LibDirs = splitList(value)
		case keyLibraries:
			cfg.Libraries = splitList(value)
		case keyCPPOptions:
			cfg.CPPOptions = splitList(value)
		case keyLDOptions:
			cfg.LDOptions = splitList(value)
		case keyExtraDLLs:
			cfg.ExtraDLLs = splitList(value)
		}
	}
	if err := scanner.Err(); err != nil {
		return toolkit.BuildConfig{}, err
	}
	return cfg, nil
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Save writes the artifact atomically to path.
func Save(path string, cfg toolkit.BuildConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	var b strings.Builder
	if err := Write(&b, cfg); err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(b.String()), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Load reads the artifact at path.
func Load(path string) (toolkit.BuildConfig, error) {
	file, err := os.Open(path)
	if err != nil {
		return toolkit.BuildConfig{}, err
	}
	defer file.Close()

	cfg, err := Parse(file)
	if err != nil {
		return toolkit.BuildConfig{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadEffective returns the configuration downstream steps should use: the
// override artifact when present, the generated one otherwise. When neither
// exists the error is a MissingArtifactsError.
func LoadEffective(overridePath, generatedPath string) (toolkit.BuildConfig, Source, error) {
	if exists, err := paths.FileExists(overridePath); err != nil {
		return toolkit.BuildConfig{}, "", err
	} else if exists {
		cfg, err := Load(overridePath)
		return cfg, SourceOverride, err
	}

	if exists, err := paths.FileExists(generatedPath); err != nil {
		return toolkit.BuildConfig{}, "", err
	} else if exists {
		cfg, err := Load(generatedPath)
		return cfg, SourceGenerated, err
	}

	return toolkit.BuildConfig{}, "", &MissingArtifactsError{Override: overridePath, Generated: generatedPath}
}
