// ABOUTME: CLI commands for the exercise catalog.
// ABOUTME: Supports import, search, show, and find subcommands.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/lift/internal/catalog"
	"github.com/harperreed/lift/internal/models"
	"github.com/harperreed/lift/internal/storage"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	searchLimit  int
	searchOffset int

	findMuscles   []string
	findLevel     string
	findEquipment string
	findCategory  string
	findLimit     int
)

var catalogCmd = &cobra.Command{
	Use:     "catalog",
	Aliases: []string{"c"},
	Short:   "Browse the exercise catalog",
	Long: `Browse the built-in exercise catalog.

The catalog is imported automatically on first run. Each exercise has an ID
(like bench-press) that workout and template commands take as input.

COMMANDS:

  import   Import the bundled catalog or a JSON file of exercises
  search   Full-text search by name
  show     Show muscles, instructions, and images for one exercise
  find     Filter by muscle, level, equipment, and category`,
}

var catalogImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import exercises",
	Long: `Import exercises into the catalog.

Without a file, imports the bundled catalog unless it has already been
imported. With a file, imports every exercise in it; the file uses the same
JSON format as the bundled catalog. An import is all-or-nothing.

EXAMPLES:

  lift catalog import
  lift catalog import my-exercises.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			if err := ensureCatalog(cmd.Context()); err != nil {
				return err
			}
			n, err := store.CountExercises(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Catalog has %d exercises.\n", n)
			return nil
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		seeds, err := catalog.Decode(data)
		if err != nil {
			return err
		}
		n, err := store.ImportExercises(cmd.Context(), seeds)
		if err != nil {
			logrus.WithError(err).WithField("file", args[0]).Error("exercise import failed")
			return storage.ImportError("import "+args[0], err)
		}
		color.Green("✓ Imported %d exercises from %s", n, args[0])
		return nil
	},
}

var catalogSearchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Search exercises by name",
	Long: `Search exercises by name. Every word must match the start of a word in
the exercise name, so "ben pre" finds "Bench Press".

EXAMPLES:

  lift catalog search bench
  lift catalog search "ben pre" --limit 5
  lift catalog search press --offset 20`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		results, err := store.SearchExercises(cmd.Context(), text, searchLimit, searchOffset)
		if err != nil {
			return fmt.Errorf("failed to search exercises: %w", err)
		}

		if len(results) == 0 {
			fmt.Println("No exercises found.")
			return nil
		}
		printExerciseSummaries(results)
		return nil
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show exercise details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := store.GetExerciseDetail(cmd.Context(), args[0])
		if err != nil {
			suggestions, serr := store.ClosestExerciseNames(cmd.Context(), args[0])
			if serr == nil && len(suggestions) > 0 {
				fmt.Printf("Did you mean: %s?\n", strings.Join(suggestions, ", "))
			}
			return fmt.Errorf("failed to get exercise: %w", err)
		}

		fmt.Printf("%s (%s)\n", color.New(color.Bold).Sprint(d.Name), d.ID)
		fmt.Printf("Level: %s\n", d.Level)
		fmt.Printf("Category: %s\n", d.Category)
		if d.Equipment != nil {
			fmt.Printf("Equipment: %s\n", *d.Equipment)
		}
		if d.Force != nil {
			fmt.Printf("Force: %s\n", *d.Force)
		}
		if d.Mechanic != nil {
			fmt.Printf("Mechanic: %s\n", *d.Mechanic)
		}
		fmt.Printf("Primary: %s\n", joinMuscles(d.PrimaryMuscles))
		fmt.Printf("Secondary: %s\n", joinMuscles(d.SecondaryMuscles))
		fmt.Printf("Used in %d workout exercise(s)\n", d.Frequency)

		if len(d.Instructions) > 0 {
			fmt.Println("\nInstructions:")
			for i, step := range d.Instructions {
				fmt.Printf("  %d. %s\n", i+1, step)
			}
		}
		if len(d.Images) > 0 {
			fmt.Println("\nImages:")
			for _, img := range d.Images {
				fmt.Printf("  %s\n", img)
			}
		}
		return nil
	},
}

var catalogFindCmd = &cobra.Command{
	Use:   "find",
	Short: "Filter exercises",
	Long: `Filter the catalog. Most used exercises are listed first.

EXAMPLES:

  lift catalog find --muscle chest --equipment barbell
  lift catalog find --muscle quadriceps --muscle glutes --level beginner
  lift catalog find --category stretching`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := storage.ExerciseFilter{Limit: findLimit}
		for _, m := range findMuscles {
			if !models.IsValidMuscleGroup(m) {
				return fmt.Errorf("unknown muscle group: %s", m)
			}
			f.Muscles = append(f.Muscles, models.MuscleGroup(m))
		}
		if findLevel != "" {
			if !models.IsValidLevel(findLevel) {
				return fmt.Errorf("unknown level: %s", findLevel)
			}
			f.Level = models.Level(findLevel)
		}
		if findEquipment != "" {
			if !models.IsValidEquipment(findEquipment) {
				return fmt.Errorf("unknown equipment: %s", findEquipment)
			}
			f.Equipment = models.Equipment(findEquipment)
		}
		if findCategory != "" {
			if !models.IsValidCategory(findCategory) {
				return fmt.Errorf("unknown category: %s", findCategory)
			}
			f.Category = models.Category(findCategory)
		}

		results, err := store.FindExercises(cmd.Context(), f)
		if err != nil {
			return fmt.Errorf("failed to find exercises: %w", err)
		}
		if len(results) == 0 {
			fmt.Println("No exercises found.")
			return nil
		}
		printExerciseSummaries(results)
		return nil
	},
}

func printExerciseSummaries(results []models.ExerciseSummary) {
	faint := color.New(color.Faint)
	for _, ex := range results {
		fmt.Printf("%s %s %s\n",
			padRight(truncate(ex.ID, 24), 24),
			padRight(truncate(ex.Name, 32), 32),
			faint.Sprint(joinMuscles(ex.PrimaryMuscles)))
	}
}

func init() {
	catalogSearchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 20, "max number of results")
	catalogSearchCmd.Flags().IntVar(&searchOffset, "offset", 0, "results to skip")

	catalogFindCmd.Flags().StringSliceVarP(&findMuscles, "muscle", "m", nil, "primary muscle group (repeatable)")
	catalogFindCmd.Flags().StringVar(&findLevel, "level", "", "beginner, intermediate, or expert")
	catalogFindCmd.Flags().StringVar(&findEquipment, "equipment", "", "equipment, e.g. barbell")
	catalogFindCmd.Flags().StringVar(&findCategory, "category", "", "category, e.g. strength")
	catalogFindCmd.Flags().IntVarP(&findLimit, "limit", "n", 20, "max number of results")

	catalogCmd.AddCommand(catalogImportCmd)
	catalogCmd.AddCommand(catalogSearchCmd)
	catalogCmd.AddCommand(catalogShowCmd)
	catalogCmd.AddCommand(catalogFindCmd)
	rootCmd.AddCommand(catalogCmd)
}
