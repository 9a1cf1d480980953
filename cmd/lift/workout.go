// ABOUTME: CLI commands for logging workouts.
// ABOUTME: Start, add exercises and sets, replace, finish, and inspect workouts.
package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/lift/internal/models"
	"github.com/spf13/cobra"
)

// ErrWorkoutInProgress is returned when starting a workout while another is open.
var ErrWorkoutInProgress = errors.New("a workout is already in progress")

var (
	workoutNotes    string
	workoutTemplate string
	workoutLimit    int
	workoutTarget   string
	workoutPrevious bool
	setWeight       float64
	setReps         int
	setType         string
	setDone         bool
)

var workoutCmd = &cobra.Command{
	Use:     "workout",
	Aliases: []string{"w"},
	Short:   "Log workouts",
	Long: `Log training sessions.

At most one workout is in progress at a time. Commands that take an optional
workout ID default to the one in progress.

WORKFLOW:

  1. Start a workout:      lift workout start "Push Day"
  2. Add exercises:        lift workout add bench-press triceps-pushdown --previous
  3. Log sets:             lift workout set add <exercise-id> --weight 80 --reps 5 --done
  4. Check progress:       lift workout current
  5. Finish:               lift workout finish

COMMANDS:

  start     Start an empty workout or one from a template
  current   Show the workout in progress
  show      Show a workout
  list      List finished workouts
  finish    Finish a workout
  delete    Delete a workout with all its exercises and sets
  add       Append exercises to a workout
  set       Add or delete sets
  replace   Swap the exercise of a workout exercise
  muscles   Show the muscles a workout trains`,
}

var workoutStartCmd = &cobra.Command{
	Use:   "start [name]",
	Short: "Start a workout",
	Long: `Start a workout. With --template, the workout copies the template's name,
notes, exercises, and sets; rep ranges start at their lower bound.

Examples:
  lift workout start "Push Day"
  lift workout start --template abc12345`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := requireNoOngoing(ctx); err != nil {
			return err
		}

		var (
			w   models.Workout
			err error
		)
		if workoutTemplate != "" {
			templateID, rerr := store.ResolveTemplateID(ctx, workoutTemplate)
			if rerr != nil {
				return fmt.Errorf("template not found: %s", workoutTemplate)
			}
			w, err = store.StartWorkoutFromTemplate(ctx, templateID)
		} else {
			if len(args) == 0 {
				return errors.New("a workout name or --template is required")
			}
			w, err = store.StartWorkout(ctx, args[0], workoutNotes)
		}
		if err != nil {
			return fmt.Errorf("failed to start workout: %w", err)
		}

		color.Green("✓ Started %s", w.Name)
		fmt.Printf("  ID: %s\n", shortID(w.ID))
		return nil
	},
}

func requireNoOngoing(ctx context.Context) error {
	w, err := store.OngoingWorkout(ctx)
	if err != nil {
		return fmt.Errorf("failed to get ongoing workout: %w", err)
	}
	if w != nil {
		return fmt.Errorf("%w: %s (ID: %s)", ErrWorkoutInProgress, w.Name, shortID(w.ID))
	}
	return nil
}

// resolveWorkout maps an optional ID or prefix to a workout, defaulting to
// the one in progress.
func resolveWorkout(ctx context.Context, args []string) (models.Workout, error) {
	if len(args) > 0 && args[0] != "" {
		id, err := store.ResolveWorkoutID(ctx, args[0])
		if err != nil {
			return models.Workout{}, fmt.Errorf("workout not found: %s", args[0])
		}
		return store.GetWorkout(ctx, id)
	}
	w, err := store.OngoingWorkout(ctx)
	if err != nil {
		return models.Workout{}, fmt.Errorf("failed to get ongoing workout: %w", err)
	}
	if w == nil {
		return models.Workout{}, errors.New("no workout in progress")
	}
	return *w, nil
}

var workoutCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the workout in progress",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := store.OngoingWorkout(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get ongoing workout: %w", err)
		}
		if w == nil {
			fmt.Println("No workout in progress.")
			return nil
		}
		return printWorkout(cmd.Context(), *w)
	},
}

var workoutShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show workout details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := resolveWorkout(cmd.Context(), args)
		if err != nil {
			return err
		}
		return printWorkout(cmd.Context(), w)
	},
}

func printWorkout(ctx context.Context, w models.Workout) error {
	fmt.Printf("Workout: %s\n", shortID(w.ID))
	fmt.Printf("Name: %s\n", w.Name)
	fmt.Printf("Started: %s\n", w.CreatedAt.Local().Format("2006-01-02 15:04"))
	if w.EndedAt != nil {
		fmt.Printf("Finished: %s\n", w.EndedAt.Local().Format("2006-01-02 15:04"))
	}
	fmt.Printf("Duration: %s\n", w.Duration(time.Now()).Round(time.Minute))
	if w.Notes != "" {
		fmt.Printf("Notes: %s\n", w.Notes)
	}

	exercises, err := store.WorkoutExercises(ctx, w.ID)
	if err != nil {
		return fmt.Errorf("failed to list exercises: %w", err)
	}
	names := newNameCache()
	faint := color.New(color.Faint)
	for _, ex := range exercises {
		fmt.Printf("\n  %s %s %s\n",
			faint.Sprint(shortID(ex.Exercise.ID)),
			color.New(color.Bold).Sprint(names.get(ctx, ex.Exercise.ExerciseID)),
			faint.Sprintf("%d/%d done", models.DoneCount(ex.Sets), len(ex.Sets)))
		if ex.Exercise.Notes != nil {
			fmt.Printf("    %s\n", *ex.Exercise.Notes)
		}
		sets, err := store.SetsWithPrevious(ctx, ex.Exercise.ID)
		if err != nil {
			return fmt.Errorf("failed to list sets: %w", err)
		}
		printSetsWithPrevious(sets)
	}
	return nil
}

var workoutListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List finished workouts",
	RunE: func(cmd *cobra.Command, args []string) error {
		workouts, err := store.ListWorkouts(cmd.Context(), workoutLimit)
		if err != nil {
			return fmt.Errorf("failed to list workouts: %w", err)
		}

		if len(workouts) == 0 {
			fmt.Println("No workouts found.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, w := range workouts {
			fmt.Printf("%s %s %s %s\n",
				faint.Sprint(shortID(w.ID)),
				faint.Sprint(w.EndedAt.Local().Format("2006-01-02 15:04")),
				padRight(truncate(w.Name, 24), 24),
				w.Duration(time.Now()).Round(time.Minute))
		}
		return nil
	},
}

var workoutFinishCmd = &cobra.Command{
	Use:   "finish [id]",
	Short: "Finish a workout",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := resolveWorkout(cmd.Context(), args)
		if err != nil {
			return err
		}
		w, err = store.FinishWorkout(cmd.Context(), w.ID)
		if err != nil {
			return fmt.Errorf("failed to finish workout: %w", err)
		}
		color.Green("✓ Finished %s", w.Name)
		fmt.Printf("  Duration: %s\n", w.Duration(time.Now()).Round(time.Minute))
		return nil
	},
}

var workoutDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a workout",
	Long: `Delete a workout and every exercise and set in it.

CAUTION:

  This permanently deletes the workout. There is no undo.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := resolveWorkout(cmd.Context(), args)
		if err != nil {
			return err
		}
		if err := store.DeleteWorkout(cmd.Context(), w.ID); err != nil {
			return fmt.Errorf("failed to delete workout: %w", err)
		}
		color.Yellow("✗ Deleted %s", w.Name)
		fmt.Printf("  %s\n", color.New(color.Faint).Sprint(shortID(w.ID)))
		return nil
	},
}

var workoutAddCmd = &cobra.Command{
	Use:   "add <exercise-id>...",
	Short: "Add exercises to a workout",
	Long: `Append catalog exercises to a workout in the given order.

With --previous, each exercise is seeded with the sets from the last finished
workout that completed it. The sets start not done.

Examples:
  lift workout add bench-press triceps-pushdown
  lift workout add barbell-squat --previous
  lift workout add deadlift --workout abc12345`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		w, err := resolveWorkout(ctx, []string{workoutTarget})
		if err != nil {
			return err
		}

		var added []models.FullWorkoutExercise
		if workoutPrevious {
			added, err = store.AddExercisesWithPreviousSets(ctx, w.ID, args)
		} else {
			var plain []models.WorkoutExercise
			plain, err = store.AddExercisesToWorkout(ctx, w.ID, args)
			for _, we := range plain {
				added = append(added, models.FullWorkoutExercise{Exercise: we})
			}
		}
		if err != nil {
			return fmt.Errorf("failed to add exercises: %w", err)
		}

		names := newNameCache()
		for _, ex := range added {
			color.Green("✓ Added %s", names.get(ctx, ex.Exercise.ExerciseID))
			fmt.Printf("  ID: %s", shortID(ex.Exercise.ID))
			if len(ex.Sets) > 0 {
				fmt.Printf("  (%d sets from last time)", len(ex.Sets))
			}
			fmt.Println()
		}
		return nil
	},
}

var workoutReplaceCmd = &cobra.Command{
	Use:   "replace <workout-exercise-id> <exercise-id>",
	Short: "Replace the exercise of a workout exercise",
	Long: `Swap a workout exercise to a different catalog exercise. Its sets are
replaced with the sets from the last finished workout that completed the new
exercise.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, err := store.ResolveWorkoutExerciseID(ctx, args[0])
		if err != nil {
			return fmt.Errorf("workout exercise not found: %s", args[0])
		}
		we, err := store.GetWorkoutExercise(ctx, id)
		if err != nil {
			return err
		}
		replaced, err := store.ReplaceExercise(ctx, we, args[1])
		if err != nil {
			return fmt.Errorf("failed to replace exercise: %w", err)
		}
		names := newNameCache()
		color.Green("✓ Replaced %s with %s", names.get(ctx, we.ExerciseID), names.get(ctx, replaced.Exercise.ExerciseID))
		fmt.Printf("  %d sets from last time\n", len(replaced.Sets))
		return nil
	},
}

var workoutMusclesCmd = &cobra.Command{
	Use:   "muscles [id]",
	Short: "Show muscles trained by a workout",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := resolveWorkout(cmd.Context(), args)
		if err != nil {
			return err
		}
		primary, secondary, err := store.WorkoutMuscles(cmd.Context(), w.ID)
		if err != nil {
			return fmt.Errorf("failed to aggregate muscles: %w", err)
		}
		fmt.Printf("Primary: %s\n", joinMuscles(primary))
		fmt.Printf("Secondary: %s\n", joinMuscles(secondary))
		return nil
	},
}

var workoutSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Add or delete sets",
}

var workoutSetAddCmd = &cobra.Command{
	Use:   "add <workout-exercise-id>",
	Short: "Append a set",
	Long: `Append a set to a workout exercise. Weight, reps, and type default to
the previous set of the same exercise.

Examples:
  lift workout set add abc12345 --weight 80 --reps 5 --done
  lift workout set add abc12345 --type warmup --weight 40 --reps 10`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if setType != "" && !models.IsValidSetType(setType) {
			return fmt.Errorf("unknown set type: %s (use warmup, working, drop, or failure)", setType)
		}
		weID, err := store.ResolveWorkoutExerciseID(ctx, args[0])
		if err != nil {
			return fmt.Errorf("workout exercise not found: %s", args[0])
		}

		flags := cmd.Flags()
		set, err := store.AddSetWith(ctx, weID, func(s *models.PerformedSet) {
			if flags.Changed("weight") {
				s.Weight = setWeight
			}
			if flags.Changed("reps") {
				s.Reps = setReps
			}
			if setType != "" {
				s.Type = models.SetType(setType)
			}
			s.IsDone = setDone
		})
		if err != nil {
			return fmt.Errorf("failed to add set: %w", err)
		}

		color.Green("✓ Added set %d", set.Order+1)
		fmt.Printf("  %s %s (%s)\n", shortID(set.ID), formatLoad(set.Weight, set.Reps), set.Type)
		return nil
	},
}

var workoutSetDeleteCmd = &cobra.Command{
	Use:     "delete <set-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a set",
	Long:    `Delete a set. Later sets move up so positions stay contiguous.`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, err := store.ResolveSetID(ctx, args[0])
		if err != nil {
			return fmt.Errorf("set not found: %s", args[0])
		}
		set, err := store.GetSet(ctx, id)
		if err != nil {
			return err
		}
		if err := store.DeleteSet(ctx, set); err != nil {
			return fmt.Errorf("failed to delete set: %w", err)
		}
		color.Yellow("✗ Deleted set %d", set.Order+1)
		return nil
	},
}

func init() {
	workoutStartCmd.Flags().StringVarP(&workoutNotes, "notes", "n", "", "workout notes")
	workoutStartCmd.Flags().StringVarP(&workoutTemplate, "template", "t", "", "template ID or prefix to start from")

	workoutListCmd.Flags().IntVarP(&workoutLimit, "limit", "n", 20, "max number of results")

	workoutAddCmd.Flags().StringVarP(&workoutTarget, "workout", "w", "", "workout ID or prefix (default: in progress)")
	workoutAddCmd.Flags().BoolVarP(&workoutPrevious, "previous", "p", false, "seed sets from the last finished workout")

	workoutSetAddCmd.Flags().Float64Var(&setWeight, "weight", 0, "weight in kg")
	workoutSetAddCmd.Flags().IntVar(&setReps, "reps", 0, "repetitions")
	workoutSetAddCmd.Flags().StringVar(&setType, "type", "", "warmup, working, drop, or failure")
	workoutSetAddCmd.Flags().BoolVar(&setDone, "done", false, "mark the set as completed")

	workoutSetCmd.AddCommand(workoutSetAddCmd)
	workoutSetCmd.AddCommand(workoutSetDeleteCmd)

	workoutCmd.AddCommand(workoutStartCmd)
	workoutCmd.AddCommand(workoutCurrentCmd)
	workoutCmd.AddCommand(workoutShowCmd)
	workoutCmd.AddCommand(workoutListCmd)
	workoutCmd.AddCommand(workoutFinishCmd)
	workoutCmd.AddCommand(workoutDeleteCmd)
	workoutCmd.AddCommand(workoutAddCmd)
	workoutCmd.AddCommand(workoutSetCmd)
	workoutCmd.AddCommand(workoutReplaceCmd)
	workoutCmd.AddCommand(workoutMusclesCmd)
	rootCmd.AddCommand(workoutCmd)
}
