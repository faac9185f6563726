package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"cudacfg/internal/buildinfo"
	"cudacfg/internal/config"
	"cudacfg/internal/logx"
	"cudacfg/internal/paths"
	"cudacfg/internal/toolkit"
)

var configureDryRun bool

func newConfigureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Detect the CUDA toolkit and generate the build configuration",
		RunE:  runConfigure,
	}

	cmd.Flags().BoolVar(&configureDryRun, "dry-run", false, "Print the configuration without writing the artifact")

	return cmd
}

func runConfigure(cmd *cobra.Command, _ []string) error {
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

	logger, closer, err := logx.New(pp)
	if err != nil {
		return err
	}
	defer closer.Close()
	logger.Printf("cudacfg configure: project=%s", pp.Root)

	// Pinned build environment, if the project carries one.
	if envExists, err := paths.FileExists(pp.EnvFile); err == nil && envExists {
		if err := godotenv.Load(pp.EnvFile); err != nil {
			return fmt.Errorf("load %s: %w", pp.EnvFile, err)
		}
		logger.Printf("loaded environment overrides from %s", pp.EnvFile)
	}

	cfg, err := config.Load(pp.ConfigFile)
	if err != nil {
		return err
	}
	logger.Printf("loaded config version=%d env_var=%s marker=%s", cfg.Version, cfg.Toolkit.EnvVar, cfg.Toolkit.Marker)

	platform := toolkit.HostPlatform()
	candidates := toolkit.DefaultCandidates(platform, cfg.Toolkit.EnvVar, cfg.Toolkit.ExtraCandidates, cfg.Toolkit.DefaultRoot)
	resolver := toolkit.NewResolver(platform, candidates, cfg.Toolkit.Marker)
	resolver.LinkerMinimum = cfg.Linker.Minimum
	resolver.Log = logger

	built, err := resolver.Resolve(cmd.Context())
	if err != nil {
		return err
	}

	if configureDryRun {
		return buildinfo.Write(cmd.OutOrStdout(), built)
	}

	if err := buildinfo.Save(pp.GeneratedFile, built); err != nil {
		return fmt.Errorf("write %s: %w", pp.GeneratedFile, err)
	}
	logger.Printf("wrote %s (toolkit %s at %s)", pp.GeneratedFile, built.ToolkitVersion, built.ToolkitRoot)

	if outputJSON {
		payload := struct {
			Project  string              `json:"project"`
			Artifact string              `json:"artifact"`
			Config   toolkit.BuildConfig `json:"config"`
		}{pp.Root, pp.GeneratedFile, built}
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	printConfigureResult(cmd, pp.GeneratedFile, built)
	return nil
}

func printConfigureResult(cmd *cobra.Command, artifact string, built toolkit.BuildConfig) {
	bold := lipgloss.NewStyle().Bold(true)
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	faint := lipgloss.NewStyle().Faint(true)

	headline := green.Render("✓") + " " + bold.Render("toolkit")
	if built.ToolkitVersion != "" && built.ToolkitVersion != "unknown" {
		headline += " v" + built.ToolkitVersion
	}
	cmd.Println(headline)
	cmd.Println(faint.Render("  " + built.ToolkitRoot))
	cmd.Println()
	cmd.Println(bold.Render("Artifact:") + " " + artifact)
	if len(built.Libraries) > 0 {
		cmd.Println(bold.Render("Libraries:") + " " + strings.Join(built.Libraries, ", "))
	}
	if len(built.LDOptions) > 0 {
		cmd.Println(bold.Render("Linker options:") + " " + strings.Join(built.LDOptions, " "))
	}
}
