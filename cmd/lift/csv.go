// ABOUTME: CLI commands for inspecting Hevy CSV exports.
// ABOUTME: Parses sessions and exercise name mappings without writing to the store.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/lift/internal/csvimport"
	"github.com/spf13/cobra"
)

var (
	csvSuggest bool
	csvJSON    bool
)

var csvCmd = &cobra.Command{
	Use:   "csv",
	Short: "Inspect workout CSV exports",
}

var csvParseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a Hevy CSV export",
	Long: `Parse a Hevy CSV export into sessions and exercise name mappings.

Weights are converted from lbs to kg and distances from miles to km. Nothing
is written to the database.

With --suggest, each exercise name is matched against the catalog and up to
three close names are listed.

Examples:
  lift csv parse hevy_workouts.csv
  lift csv parse hevy_workouts.csv --suggest
  lift csv parse hevy_workouts.csv --json > sessions.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := csvimport.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", args[0], err)
		}

		if csvSuggest {
			result.Mappings, err = csvimport.SuggestMappings(cmd.Context(), store, result.Mappings)
			if err != nil {
				return err
			}
		}

		if csvJSON {
			data, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}

		faint := color.New(color.Faint)
		for _, s := range result.Sessions {
			fmt.Printf("%s %s %s\n",
				faint.Sprint(s.Start.Format("2006-01-02 15:04")),
				color.New(color.Bold).Sprint(s.Title),
				faint.Sprint(s.End.Sub(s.Start)))
			for _, ex := range s.Exercises {
				fmt.Printf("  %d x %s\n", len(ex.Sets), ex.Title)
			}
		}

		fmt.Printf("\n%d sessions, %d distinct exercises\n", len(result.Sessions), len(result.Mappings))
		for _, m := range result.Mappings {
			fmt.Printf("  %s %s", padRight(m.Key, 32), m.Name)
			if len(m.Suggestions) > 0 {
				fmt.Printf("  %s", faint.Sprintf("-> %v", m.Suggestions))
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	csvParseCmd.Flags().BoolVar(&csvSuggest, "suggest", false, "suggest catalog names for each exercise")
	csvParseCmd.Flags().BoolVar(&csvJSON, "json", false, "print the parsed result as JSON")

	csvCmd.AddCommand(csvParseCmd)
	rootCmd.AddCommand(csvCmd)
}
