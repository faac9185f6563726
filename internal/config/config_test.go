package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "cudacfg.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Toolkit.EnvVar != "CUDA_PATH" {
		t.Errorf("env var %q, want CUDA_PATH", cfg.Toolkit.EnvVar)
	}
	if cfg.Toolkit.Marker != "include/cuda.h" {
		t.Errorf("marker %q, want include/cuda.h", cfg.Toolkit.Marker)
	}
	if cfg.Linker.Minimum != "2.25.1" {
		t.Errorf("linker minimum %q, want 2.25.1", cfg.Linker.Minimum)
	}
}

func TestLoadPartialFileBackfillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cudacfg.yaml")
	contents := `version: 1
toolkit:
  env_var: CUDA_HOME
  extra_candidates:
    - /opt/cuda
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Toolkit.EnvVar != "CUDA_HOME" {
		t.Errorf("env var %q, want CUDA_HOME", cfg.Toolkit.EnvVar)
	}
	if cfg.Toolkit.Marker != "include/cuda.h" {
		t.Errorf("marker %q, want default include/cuda.h", cfg.Toolkit.Marker)
	}
	if len(cfg.Toolkit.ExtraCandidates) != 1 || cfg.Toolkit.ExtraCandidates[0] != "/opt/cuda" {
		t.Errorf("extra candidates %v, want [/opt/cuda]", cfg.Toolkit.ExtraCandidates)
	}
	if cfg.Linker.Minimum != "2.25.1" {
		t.Errorf("linker minimum %q, want default 2.25.1", cfg.Linker.Minimum)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cudacfg.yaml")
	if err := os.WriteFile(path, []byte("toolkit: [not a mapping"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for malformed YAML")
	}
}
