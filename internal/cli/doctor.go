package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"cudacfg/internal/buildinfo"
	"cudacfg/internal/config"
	"cudacfg/internal/logx"
	"cudacfg/internal/paths"
	"cudacfg/internal/toolkit"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check toolkit and configuration health",
		RunE:  runDoctor,
	}
}

type healthCheck struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "ok", "warning", "error"
	Summary string `json:"summary"`
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return err
	}
	exists, err := paths.DirExists(pp.Root)
	if err != nil {
		return fmt.Errorf("stat project dir: %w", err)
	}
	if !exists {
		return fmt.Errorf("project directory does not exist: %s", pp.Root)
	}

	var checks []healthCheck

	cfg, cfgErr := config.Load(pp.ConfigFile)
	checks = append(checks, checkConfigFile(pp, cfgErr))
	if cfgErr != nil {
		return writeDoctorResult(cmd, pp.Root, checks)
	}

	platform := toolkit.HostPlatform()
	candidates := toolkit.DefaultCandidates(platform, cfg.Toolkit.EnvVar, cfg.Toolkit.ExtraCandidates, cfg.Toolkit.DefaultRoot)
	resolver := toolkit.NewResolver(platform, candidates, cfg.Toolkit.Marker)
	resolver.LinkerMinimum = cfg.Linker.Minimum
	resolver.Log = logx.Discard()

	checks = append(checks, checkToolkit(resolver))
	checks = append(checks, checkCompiler(cmd, resolver))
	checks = append(checks, checkLinkerGate(cmd, resolver))
	checks = append(checks, checkArtifacts(pp))

	return writeDoctorResult(cmd, pp.Root, checks)
}

func checkConfigFile(pp paths.ProjectPaths, cfgErr error) healthCheck {
	if cfgErr != nil {
		return healthCheck{Name: "config", Status: "error", Summary: cfgErr.Error()}
	}
	exists, err := paths.FileExists(pp.ConfigFile)
	if err == nil && !exists {
		return healthCheck{Name: "config", Status: "ok", Summary: "no cudacfg.yaml; using defaults"}
	}
	return healthCheck{Name: "config", Status: "ok", Summary: pp.ConfigFile}
}

func checkToolkit(resolver *toolkit.Resolver) healthCheck {
	loc, err := resolver.Discover()
	if err != nil {
		return healthCheck{Name: "toolkit", Status: "error", Summary: "no validated installation found; run `cudacfg configure` for details"}
	}
	return healthCheck{Name: "toolkit", Status: "ok", Summary: loc.Root}
}

func checkCompiler(cmd *cobra.Command, resolver *toolkit.Resolver) healthCheck {
	cc := resolver.Platform.CC
	if _, err := resolver.LookPath(cc); err != nil {
		return healthCheck{Name: "compiler", Status: "warning", Summary: cc + " not found; version-gated flags disabled"}
	}
	version := toolkit.DetectCCVersion(cmd.Context(), resolver.Runner, cc)
	if version == "" {
		return healthCheck{Name: "compiler", Status: "warning", Summary: cc + " present but version unreadable"}
	}
	return healthCheck{Name: "compiler", Status: "ok", Summary: cc + " v" + version}
}

func checkLinkerGate(cmd *cobra.Command, resolver *toolkit.Resolver) healthCheck {
	err := resolver.LinkerCheck(cmd.Context())
	var tooOld *toolkit.LinkerTooOldError
	if errors.As(err, &tooOld) {
		return healthCheck{
			Name:    "linker",
			Status:  "error",
			Summary: fmt.Sprintf("%s is version %s, minimum is %s", tooOld.Path, tooOld.Version, tooOld.Minimum),
		}
	}
	if err != nil {
		return healthCheck{Name: "linker", Status: "warning", Summary: err.Error()}
	}
	return healthCheck{Name: "linker", Status: "ok", Summary: "no defective linker detected"}
}

func checkArtifacts(pp paths.ProjectPaths) healthCheck {
	built, source, err := buildinfo.LoadEffective(pp.OverrideFile, pp.GeneratedFile)
	var missing *buildinfo.MissingArtifactsError
	if errors.As(err, &missing) {
		return healthCheck{Name: "artifact", Status: "warning", Summary: "no build configuration yet; run `cudacfg configure`"}
	}
	if err != nil {
		return healthCheck{Name: "artifact", Status: "error", Summary: err.Error()}
	}
	summary := fmt.Sprintf("%s configuration for %s", source, built.ToolkitRoot)
	if source == buildinfo.SourceOverride {
		summary += " (user override in effect)"
	}
	return healthCheck{Name: "artifact", Status: "ok", Summary: summary}
}

func writeDoctorResult(cmd *cobra.Command, project string, checks []healthCheck) error {
	if outputJSON {
		payload := struct {
			Project string        `json:"project"`
			Checks  []healthCheck `json:"checks"`
		}{project, checks}
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	bold := lipgloss.NewStyle().Bold(true)
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	red := lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	faint := lipgloss.NewStyle().Faint(true)

	cmd.Println(bold.Render("Project:") + " " + project)
	cmd.Println()

	failed := false
	for _, check := range checks {
		var mark string
		switch check.Status {
		case "ok":
			mark = green.Render("✓")
		case "warning":
			mark = yellow.Render("!")
		default:
			mark = red.Render("✗")
			failed = true
		}
		cmd.Println(mark + " " + bold.Render(check.Name))
		cmd.Println(faint.Render("  " + check.Summary))
		cmd.Println()
	}

	if failed {
		return fmt.Errorf("doctor found problems")
	}
	return nil
}
