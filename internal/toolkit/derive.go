package toolkit

import "path/filepath"

// Host compilers at or above this version understand C11 generic selection,
// which the generated binding headers take advantage of.
const minGenericSelectionCC = "4.9"

// Derive turns a validated location and platform descriptor into a
// BuildConfig. It is a pure function of its two arguments: no environment
// reads, no filesystem probes, no process invocations. Platform fixups that
// need the outside world are applied afterwards by the resolver.
func Derive(loc Location, p Platform) BuildConfig {
	cfg := BuildConfig{
		ToolkitRoot: loc.Root,
		IncludeDirs: []string{loc.IncludeDir()},
		CPPOptions:  []string{archFlag(p)},
	}

	if p.CCVersion != "" && meetsMinimum(p.CCVersion, minGenericSelectionCC) {
		cfg.CPPOptions = append(cfg.CPPOptions, "-DHAVE_GENERIC_SELECTION")
	}

	if p.OS == "darwin" {
		// The toolkit ships as a framework on darwin: no discrete
		// libraries, linking is a framework reference instead.
		cfg.LDOptions = []string{"-framework", "CUDA"}
		return cfg
	}

	cfg.LibDirs = []string{filepath.Join(loc.Root, libSubdir(p))}
	cfg.Libraries = []string{"cudart", "cuda"}
	return cfg
}

func archFlag(p Platform) string {
	if p.Is64Bit() {
		return "-m64"
	}
	return "-m32"
}

func libSubdir(p Platform) string {
	switch p.OS {
	case "windows":
		if p.Is64Bit() {
			return filepath.Join("lib", "x64")
		}
		return filepath.Join("lib", "Win32")
	default:
		if p.Is64Bit() {
			return "lib64"
		}
		return "lib"
	}
}
