// ABOUTME: CLI commands for exporting and importing workout history.
// ABOUTME: Supports JSON, YAML, and Markdown export formats; imports JSON backups.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	exportOutput string
	exportSince  string
)

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export workouts and templates",
	Long: `Export finished workouts and templates in various formats.

FORMATS:

  json       Full JSON export (suitable for backup/restore)
  yaml       YAML export (human-readable)
  markdown   Markdown tables per exercise (for sharing)

OPTIONS:

  --output, -o   Write to file instead of stdout
  --since        Only include workouts since this date (markdown only)

EXAMPLES:

  lift export json                        # Export all data as JSON
  lift export json -o backup.json         # Save to file
  lift export yaml                        # Export as YAML
  lift export markdown --since 2024-01-01 # Export workouts from 2024 onward`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "yaml", "markdown"},
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := renderExport(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if exportOutput == "" {
			fmt.Println(string(data))
			return nil
		}
		if err := os.WriteFile(exportOutput, data, 0600); err != nil {
			return fmt.Errorf("failed to write file: %w", err)
		}
		color.Green("✓ Exported to %s", exportOutput)
		return nil
	},
}

// renderExport produces the export document for format.
func renderExport(ctx context.Context, format string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case "json":
		data, err = store.ExportJSON(ctx)
	case "yaml":
		data, err = store.ExportYAML(ctx)
	case "markdown":
		var since *time.Time
		if exportSince != "" {
			t, perr := parseDate(exportSince)
			if perr != nil {
				return nil, fmt.Errorf("invalid date: %s (use YYYY-MM-DD)", exportSince)
			}
			since = &t
		}
		var md string
		md, err = store.ExportMarkdown(ctx, since)
		data = []byte(md)
	default:
		return nil, fmt.Errorf("unknown format: %s (use json, yaml, or markdown)", format)
	}
	if err != nil {
		return nil, fmt.Errorf("export failed: %w", err)
	}
	return data, nil
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import workouts and templates from JSON",
	Long: `Import workouts and templates from a JSON backup file.

Each workout and template is restored in its own transaction. Entries whose
ID already exists are overwritten, so importing the same backup twice is safe.

EXAMPLES:

  lift import backup.json               # Import from file`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read backup: %w", err)
		}
		if err := store.ImportJSON(cmd.Context(), data); err != nil {
			return fmt.Errorf("failed to restore %s: %w", args[0], err)
		}
		color.Green("✓ Restored workouts and templates from %s", args[0])
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().StringVar(&exportSince, "since", "", "only include workouts since date (YYYY-MM-DD)")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
