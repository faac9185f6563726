package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"cudacfg/internal/buildinfo"
	"cudacfg/internal/paths"
	"cudacfg/internal/toolkit"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective build configuration",
		Long: "Show the build configuration downstream steps will use: the user\n" +
			"override artifact when present, otherwise the generated one.",
		RunE: runShow,
	}
}

func runShow(cmd *cobra.Command, _ []string) error {
	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return err
	}

	built, source, err := buildinfo.LoadEffective(pp.OverrideFile, pp.GeneratedFile)
	if err != nil {
		return err
	}

	if outputJSON {
		payload := struct {
			Project string              `json:"project"`
			Source  string              `json:"source"`
			Config  toolkit.BuildConfig `json:"config"`
		}{pp.Root, string(source), built}
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	printShowResult(cmd, source, built)
	return nil
}

func printShowResult(cmd *cobra.Command, source buildinfo.Source, built toolkit.BuildConfig) {
	bold := lipgloss.NewStyle().Bold(true)
	faint := lipgloss.NewStyle().Faint(true)

	cmd.Println(bold.Render("Source:") + " " + string(source))
	cmd.Println()

	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	row := func(label string, values []string) {
		if len(values) == 0 {
			return
		}
		fmt.Fprintf(tw, "%s\t%s\n", label, strings.Join(values, ", "))
	}

	if built.ToolkitRoot != "" {
		fmt.Fprintf(tw, "toolkit root\t%s\n", built.ToolkitRoot)
	}
	if built.ToolkitVersion != "" {
		fmt.Fprintf(tw, "toolkit version\t%s\n", built.ToolkitVersion)
	}
	row("include dirs", built.IncludeDirs)
	row("lib dirs", built.LibDirs)
	row("libraries", built.Libraries)
	row("cpp options", built.CPPOptions)
	row("ld options", built.LDOptions)
	row("extra dlls", built.ExtraDLLs)
	tw.Flush()

	for _, line := range strings.Split(strings.TrimRight(b.String(), "\n"), "\n") {
		cmd.Println(faint.Render("  ") + line)
	}
}
