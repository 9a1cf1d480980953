// ABOUTME: CLI commands for workout templates.
// ABOUTME: Create, list, show, delete, and fill templates with prescribed sets.
package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/lift/internal/models"
	"github.com/spf13/cobra"
)

var (
	templateNotes  string
	templateSets   int
	templateReps   string
	templateWeight float64
	templateType   string
)

var templateCmd = &cobra.Command{
	Use:     "template",
	Aliases: []string{"t"},
	Short:   "Manage workout templates",
	Long: `Manage reusable workout blueprints.

A template holds exercises with prescribed sets. Reps are a fixed count ("8")
or a range ("6-8"). Starting a workout from a template copies everything.

Examples:
  lift template create "Legs" --notes "Heavy day"
  lift template add abc12345 barbell-squat --sets 3 --reps 6-8 --weight 100
  lift template list
  lift workout start --template abc12345`,
}

var templateCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create an empty template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := store.CreateTemplate(cmd.Context(), args[0], templateNotes)
		if err != nil {
			return fmt.Errorf("failed to create template: %w", err)
		}
		color.Green("✓ Created template %s", t.Name)
		fmt.Printf("  ID: %s\n", shortID(t.ID))
		return nil
	},
}

var templateListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		summaries, err := store.TemplateSummaries(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list templates: %w", err)
		}

		if len(summaries) == 0 {
			fmt.Println("No templates found.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, s := range summaries {
			fmt.Printf("%s %s\n", faint.Sprint(shortID(s.Template.ID)), color.New(color.Bold).Sprint(s.Template.Name))
			for _, line := range s.Exercises {
				fmt.Printf("  %d x %s\n", line.SetCount, line.ExerciseName)
			}
		}
		return nil
	},
}

var templateShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show template details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, err := store.ResolveTemplateID(ctx, args[0])
		if err != nil {
			return fmt.Errorf("template not found: %s", args[0])
		}
		t, err := store.GetTemplate(ctx, id)
		if err != nil {
			return err
		}
		exercises, err := store.TemplateExercises(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to list exercises: %w", err)
		}

		fmt.Printf("Template: %s\n", shortID(t.ID))
		fmt.Printf("Name: %s\n", t.Name)
		if t.Notes != "" {
			fmt.Printf("Notes: %s\n", t.Notes)
		}

		names := newNameCache()
		faint := color.New(color.Faint)
		for _, ex := range exercises {
			fmt.Printf("\n  %s %s\n", faint.Sprint(shortID(ex.Exercise.ID)), color.New(color.Bold).Sprint(names.get(ctx, ex.Exercise.ExerciseID)))
			working := 0
			for _, s := range ex.Sets {
				weight := "-"
				if s.Weight != nil {
					weight = fmt.Sprintf("%.1f kg", *s.Weight)
				}
				fmt.Printf("    %s %s reps @ %s\n", padRight(setLabel(s.Type, working), 2), s.Reps, weight)
				if s.Type == models.SetWorking {
					working++
				}
			}
		}

		primary, secondary, err := store.TemplateMuscles(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to aggregate muscles: %w", err)
		}
		fmt.Printf("\nPrimary: %s\n", joinMuscles(primary))
		fmt.Printf("Secondary: %s\n", joinMuscles(secondary))
		return nil
	},
}

var templateDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a template",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, err := store.ResolveTemplateID(ctx, args[0])
		if err != nil {
			return fmt.Errorf("template not found: %s", args[0])
		}
		if err := store.DeleteTemplate(ctx, id); err != nil {
			return fmt.Errorf("failed to delete template: %w", err)
		}
		color.Yellow("✗ Deleted template %s", shortID(id))
		return nil
	},
}

var templateAddCmd = &cobra.Command{
	Use:   "add <template-id> <exercise-id>...",
	Short: "Add exercises with prescribed sets",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if templateSets < 0 {
			return errors.New("--sets must not be negative")
		}
		if templateType != "" && !models.IsValidSetType(templateType) {
			return fmt.Errorf("unknown set type: %s (use warmup, working, drop, or failure)", templateType)
		}
		reps, err := parseRepType(templateReps)
		if err != nil {
			return err
		}

		id, err := store.ResolveTemplateID(ctx, args[0])
		if err != nil {
			return fmt.Errorf("template not found: %s", args[0])
		}
		prescription := models.PrescribedSet{Reps: reps, Type: models.SetWorking}
		if cmd.Flags().Changed("weight") {
			w := templateWeight
			prescription.Weight = &w
		}
		if templateType != "" {
			prescription.Type = models.SetType(templateType)
		}
		sets := make([]models.PrescribedSet, templateSets)
		for i := range sets {
			sets[i] = prescription
		}

		added, err := store.AddExercisesToTemplateWithSets(ctx, id, args[1:], sets)
		if err != nil {
			return fmt.Errorf("failed to add exercises: %w", err)
		}

		names := newNameCache()
		for _, fte := range added {
			color.Green("✓ Added %s (%d x %s)", names.get(ctx, fte.Exercise.ExerciseID), len(fte.Sets), reps)
		}
		return nil
	},
}

func init() {
	templateCreateCmd.Flags().StringVarP(&templateNotes, "notes", "n", "", "template notes")

	templateAddCmd.Flags().IntVarP(&templateSets, "sets", "s", 3, "number of sets per exercise")
	templateAddCmd.Flags().StringVarP(&templateReps, "reps", "r", "8", "reps per set (8 or 6-8)")
	templateAddCmd.Flags().Float64VarP(&templateWeight, "weight", "w", 0, "weight in kg")
	templateAddCmd.Flags().StringVar(&templateType, "type", "", "warmup, working, drop, or failure")

	templateCmd.AddCommand(templateCreateCmd)
	templateCmd.AddCommand(templateListCmd)
	templateCmd.AddCommand(templateShowCmd)
	templateCmd.AddCommand(templateDeleteCmd)
	templateCmd.AddCommand(templateAddCmd)
	rootCmd.AddCommand(templateCmd)
}
