package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"cudacfg/internal/paths"
)

var cleanDryRun bool

func newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove the generated configuration and logs",
		Long: "Remove the generated build-configuration artifact and log files.\n" +
			"A user-authored cuda.buildinfo override is never touched.",
		RunE: runClean,
	}

	cmd.Flags().BoolVar(&cleanDryRun, "dry-run", false, "List what would be removed without deleting")

	return cmd
}

type cleanResult struct {
	Removed int  `json:"removed"`
	Skipped int  `json:"skipped"`
	DryRun  bool `json:"dry_run"`
}

func runClean(cmd *cobra.Command, _ []string) error {
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

	out := cmd.OutOrStdout()
	result := cleanResult{DryRun: cleanDryRun}

	removeSingleFile(pp.GeneratedFile, out, &result)

	logs, _ := filepath.Glob(filepath.Join(pp.LogsDir, "*.log"))
	for _, path := range logs {
		removeFileEntry(path, out, &result)
	}

	if outputJSON {
		return json.NewEncoder(out).Encode(result)
	}

	action := "complete"
	if cleanDryRun {
		action = "(dry run)"
	}
	fmt.Fprintf(out, "\nClean %s: %d removed, %d skipped\n", action, result.Removed, result.Skipped)
	return nil
}

func removeSingleFile(path string, out io.Writer, result *cleanResult) {
	exists, err := paths.FileExists(path)
	if err != nil || !exists {
		return
	}
	removeFileEntry(path, out, result)
}

func removeFileEntry(path string, out io.Writer, result *cleanResult) {
	if cleanDryRun {
		fmt.Fprintf(out, "would remove %s\n", path)
		result.Removed++
		return
	}

	if err := os.Remove(path); err != nil {
		if !outputJSON {
			fmt.Fprintf(out, "error removing %s: %v\n", path, err)
		}
		result.Skipped++
		return
	}

	result.Removed++
	if !outputJSON {
		fmt.Fprintf(out, "removed %s\n", path)
	}
}
