package toolkit

import (
	"path/filepath"
	"runtime"
)

// Platform describes the build target the configuration is derived for. It is
// supplied by the caller and read-only to the resolver.
type Platform struct {
	// OS is a GOOS-style family name: linux, darwin, windows.
	OS string
	// Arch is a GOARCH-style name: amd64, arm64, 386.
	Arch string
	// CC is the host C compiler executable consulted for version-gated
	// preprocessor flags and for locating the real linker.
	CC string
	// CCVersion is the detected host compiler version, empty when the
	// compiler was unavailable or its version could not be read.
	CCVersion string
}

// HostPlatform returns the platform descriptor for the running machine.
// CCVersion is left empty; callers probe it with DetectCCVersion.
func HostPlatform() Platform {
	return Platform{
		OS:   runtime.GOOS,
		Arch: runtime.GOARCH,
		CC:   "cc",
	}
}

// Is64Bit reports whether the target architecture uses 64-bit pointers.
func (p Platform) Is64Bit() bool {
	switch p.Arch {
	case "amd64", "arm64", "ppc64", "ppc64le", "riscv64", "s390x":
		return true
	}
	return false
}

// Location is a validated toolkit installation root.
type Location struct {
	Root string
}

// IncludeDir returns the toolkit's header directory.
func (l Location) IncludeDir() string {
	return filepath.Join(l.Root, "include")
}

// BinDir returns the toolkit's executable directory.
func (l Location) BinDir() string {
	return filepath.Join(l.Root, "bin")
}

// BuildConfig is the resolver's output: everything a downstream build step
// needs to compile and link against the validated toolkit. Every path in it
// derives from a single validated Location plus the Platform.
type BuildConfig struct {
	ToolkitRoot    string   `json:"toolkit_root"`
	ToolkitVersion string   `json:"toolkit_version,omitempty"`
	IncludeDirs    []string `json:"include_dirs"`
	LibDirs        []string `json:"lib_dirs,omitempty"`
	Libraries      []string `json:"libraries,omitempty"`
	CPPOptions     []string `json:"cpp_options,omitempty"`
	LDOptions      []string `json:"ld_options,omitempty"`
	ExtraDLLs      []string `json:"extra_dlls,omitempty"`
}
