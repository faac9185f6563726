package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

// ProjectPaths captures canonical locations for a cudacfg project.
type ProjectPaths struct {
	Root          string
	ConfigFile    string
	EnvFile       string
	OverrideFile  string
	GeneratedFile string
	LogsDir       string
}

// Resolve determines the project root using the optional --project flag or the
// current working directory when the flag is empty.
func Resolve(projectFlag string) (ProjectPaths, error) {
	var (
		root string
		err  error
	)

	if projectFlag != "" {
		root, err = filepath.Abs(projectFlag)
	} else {
		root, err = os.Getwd()
	}
	if err != nil {
		return ProjectPaths{}, fmt.Errorf("resolve project root: %w", err)
	}

	return newProjectPaths(root), nil
}

func newProjectPaths(root string) ProjectPaths {
	return ProjectPaths{
		Root:          root,
		ConfigFile:    filepath.Join(root, "cudacfg.yaml"),
		EnvFile:       filepath.Join(root, ".env"),
		OverrideFile:  filepath.Join(root, "cuda.buildinfo"),
		GeneratedFile: filepath.Join(root, "cuda.buildinfo.generated"),
		LogsDir:       filepath.Join(root, "logs"),
	}
}

// EnsureLogsDir creates the logs directory if it does not exist.
func (p ProjectPaths) EnsureLogsDir() error {
	if err := os.MkdirAll(p.LogsDir, 0o755); err != nil {
		return fmt.Errorf("create logs dir: %w", err)
	}
	return nil
}

// FileExists reports whether a path exists and is a regular file.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// DirExists reports whether a path exists and is a directory.
func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}
