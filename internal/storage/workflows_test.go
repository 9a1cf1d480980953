// ABOUTME: Tests for transactional workflows over workout and template aggregates.
// ABOUTME: Covers template expansion, history-seeded adds, replace, and buffered saves.
package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/lift/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr64(f float64) *float64 { return &f }
func intPtrOf(i int) *int           { return &i }

func TestStartWorkoutFromTemplatePushDay(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.ImportExercises(ctx, []models.ExerciseSeed{{
		ID: "bench-press", Name: "Bench Press", Level: "beginner", Category: "strength",
		PrimaryMuscles: []string{"chest"},
	}})
	require.NoError(t, err)

	saved, err := db.SaveTemplateChanges(ctx, TemplateChanges{
		Template: models.NewTemplate("Push Day", ""),
		Exercises: []models.FullTemplateExercise{{
			Exercise: models.TemplateExercise{ExerciseID: "bench-press"},
			Sets: []models.PrescribedSet{{
				Reps:   models.RepRange(8, 12),
				Weight: floatPtr64(60.0),
				Type:   models.SetWorking,
			}},
		}},
	})
	require.NoError(t, err)

	w, err := db.StartWorkoutFromTemplate(ctx, saved.Template.ID)
	require.NoError(t, err)
	assert.Equal(t, "Push Day", w.Name)
	assert.True(t, w.IsOngoing())

	exercises, err := db.WorkoutExercises(ctx, w.ID)
	require.NoError(t, err)
	require.Len(t, exercises, 1)
	assert.Equal(t, "bench-press", exercises[0].Exercise.ExerciseID)
	assert.Equal(t, 0, exercises[0].Exercise.Order)

	require.Len(t, exercises[0].Sets, 1)
	set := exercises[0].Sets[0]
	assert.Equal(t, 8, set.Reps)
	assert.Equal(t, 60.0, set.Weight)
	assert.Equal(t, models.SetWorking, set.Type)
	assert.Equal(t, 0, set.Order)
	assert.False(t, set.IsDone)
}

func TestStartWorkoutFromTemplateFidelity(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	ctx := context.Background()

	note := "pause at the bottom"
	saved, err := db.SaveTemplateChanges(ctx, TemplateChanges{
		Template: models.NewTemplate("Full Body", "monday"),
		Exercises: []models.FullTemplateExercise{
			{
				Exercise: models.TemplateExercise{ExerciseID: "barbell-squat", Notes: &note},
				Sets: []models.PrescribedSet{
					{Reps: models.FixedReps(10), Weight: floatPtr64(40), Type: models.SetWarmup},
					{Reps: models.RepRange(5, 8), Weight: floatPtr64(100), Type: models.SetWorking, RPE: intPtrOf(8), Notes: &note},
					{Reps: models.FixedReps(5), Type: models.SetFailure},
				},
			},
			{
				Exercise: models.TemplateExercise{ExerciseID: "dumbbell-curl"},
				Sets: []models.PrescribedSet{
					{Reps: models.RepRange(10, 15), Weight: floatPtr64(12.5), Type: models.SetDrop},
				},
			},
		},
	})
	require.NoError(t, err)

	w, err := db.StartWorkoutFromTemplate(ctx, saved.Template.ID)
	require.NoError(t, err)
	assert.Equal(t, "monday", w.Notes)

	exercises, err := db.WorkoutExercises(ctx, w.ID)
	require.NoError(t, err)
	require.Len(t, exercises, len(saved.Exercises))

	for i, te := range saved.Exercises {
		we := exercises[i]
		assert.Equal(t, te.Exercise.ExerciseID, we.Exercise.ExerciseID)
		assert.Equal(t, te.Exercise.Order, we.Exercise.Order)
		assert.Equal(t, te.Exercise.Notes, we.Exercise.Notes)
		require.Len(t, we.Sets, len(te.Sets))

		for j, ps := range te.Sets {
			got := we.Sets[j]
			assert.Equal(t, ps.Order, got.Order)
			assert.Equal(t, ps.Reps.SeedReps(), got.Reps)
			assert.Equal(t, ps.Type, got.Type)
			assert.Equal(t, ps.RPE, got.RPE)
			assert.Equal(t, ps.Notes, got.Notes)
			assert.False(t, got.IsDone)
			if ps.Weight == nil {
				assert.Zero(t, got.Weight)
			} else {
				assert.Equal(t, *ps.Weight, got.Weight)
			}
		}
	}
	assert.Equal(t, 5, exercises[0].Sets[1].Reps, "range yields its lower bound")
	assert.Equal(t, 1, frequencyOf(t, db, "barbell-squat"))
}

func TestStartWorkoutFromMissingTemplate(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.StartWorkoutFromTemplate(ctx, uuid.New())
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.ErrorIs(t, err, ErrTemplateNotFound)
	assert.Zero(t, countRows(t, db, `SELECT COUNT(*) FROM workouts`))
}

func TestAddExercisesWithPreviousSets(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC)

	older, _ := db.StartWorkout(ctx, "Older", "")
	olderWE, _ := db.AddExercisesToWorkout(ctx, older.ID, []string{"bench-press"})
	addSet(t, db, olderWE[0].ID, models.SetWorking, 70, 5, true)
	finishAt(t, db, older, base)

	newer, _ := db.StartWorkout(ctx, "Newer", "")
	newerWE, _ := db.AddExercisesToWorkout(ctx, newer.ID, []string{"bench-press"})
	addSet(t, db, newerWE[0].ID, models.SetWarmup, 40, 10, true)
	addSet(t, db, newerWE[0].ID, models.SetWorking, 80, 5, true)
	addSet(t, db, newerWE[0].ID, models.SetWorking, 80, 4, false)
	finishAt(t, db, newer, base.Add(48*time.Hour))

	// Finished later but nothing done: skipped.
	skipped, _ := db.StartWorkout(ctx, "Skipped", "")
	skippedWE, _ := db.AddExercisesToWorkout(ctx, skipped.ID, []string{"bench-press"})
	addSet(t, db, skippedWE[0].ID, models.SetWorking, 999, 1, false)
	finishAt(t, db, skipped, base.Add(72*time.Hour))

	current, _ := db.StartWorkout(ctx, "Current", "")
	added, err := db.AddExercisesWithPreviousSets(ctx, current.ID, []string{"bench-press", "deadlift"})
	require.NoError(t, err)
	require.Len(t, added, 2)

	bench := added[0]
	require.Len(t, bench.Sets, 3)
	wantTypes := []models.SetType{models.SetWarmup, models.SetWorking, models.SetWorking}
	wantWeights := []float64{40, 80, 80}
	for i, s := range bench.Sets {
		assert.Equal(t, wantTypes[i], s.Type)
		assert.Equal(t, wantWeights[i], s.Weight)
		assert.Equal(t, i, s.Order)
		assert.False(t, s.IsDone)
		assert.Equal(t, bench.Exercise.ID, s.WorkoutExerciseID)
	}
	assert.Empty(t, added[1].Sets, "exercise without history starts empty")

	stored, err := db.WorkoutExercises(ctx, current.ID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, bench.Sets, stored[0].Sets)
}

func TestReplaceExercise(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	ctx := context.Background()

	past, _ := db.StartWorkout(ctx, "Past", "")
	pastWE, _ := db.AddExercisesToWorkout(ctx, past.ID, []string{"incline-bench-press"})
	addSet(t, db, pastWE[0].ID, models.SetWorking, 50, 10, true)
	finishAt(t, db, past, time.Now().Add(-24*time.Hour))

	current, _ := db.StartWorkout(ctx, "Current", "")
	added, _ := db.AddExercisesToWorkout(ctx, current.ID, []string{"barbell-squat", "bench-press"})
	addSet(t, db, added[1].ID, models.SetWorking, 60, 8, true)

	replaced, err := db.ReplaceExercise(ctx, added[1], "incline-bench-press")
	require.NoError(t, err)
	assert.Equal(t, added[1].ID, replaced.Exercise.ID)
	assert.Equal(t, "incline-bench-press", replaced.Exercise.ExerciseID)
	assert.Equal(t, 1, replaced.Exercise.Order)
	require.Len(t, replaced.Sets, 1)
	assert.Equal(t, 50.0, replaced.Sets[0].Weight)
	assert.False(t, replaced.Sets[0].IsDone)

	sets, err := db.ListSets(ctx, added[1].ID)
	require.NoError(t, err)
	assert.Equal(t, replaced.Sets, sets)

	assert.Equal(t, 0, frequencyOf(t, db, "bench-press"))
	assert.Equal(t, 2, frequencyOf(t, db, "incline-bench-press"))
}

func TestReplaceExerciseUnknownTarget(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	ctx := context.Background()

	w, _ := db.StartWorkout(ctx, "Push", "")
	added, _ := db.AddExercisesToWorkout(ctx, w.ID, []string{"bench-press"})
	addSet(t, db, added[0].ID, models.SetWorking, 60, 8, true)

	_, err := db.ReplaceExercise(ctx, added[0], "missing")
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.ErrorIs(t, err, ErrExerciseNotFound)

	sets, err := db.ListSets(ctx, added[0].ID)
	require.NoError(t, err)
	assert.Len(t, sets, 1, "failed replace must not drop sets")
}

func TestSaveWorkoutChanges(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	ctx := context.Background()

	w, _ := db.StartWorkout(ctx, "Push", "")
	added, _ := db.AddExercisesToWorkout(ctx, w.ID, []string{"bench-press", "dumbbell-curl", "deadlift"})
	keep := addSet(t, db, added[0].ID, models.SetWorking, 60, 8, false)
	drop := addSet(t, db, added[0].ID, models.SetWorking, 60, 8, false)

	existing, err := db.WorkoutExercises(ctx, w.ID)
	require.NoError(t, err)

	bench := existing[0]
	bench.Sets = []models.PerformedSet{keep, {Reps: 6, Weight: 65, Type: models.SetWorking, IsDone: true}}
	bench.Sets[0].IsDone = true
	w.Name = "Push (edited)"

	changes := WorkoutChanges{
		Workout:          w,
		DeletedExercises: []uuid.UUID{added[1].ID},
		DeletedSets:      []uuid.UUID{drop.ID},
		Exercises: []models.FullWorkoutExercise{
			existing[2],
			bench,
			{Exercise: models.WorkoutExercise{ExerciseID: "barbell-squat"}},
		},
	}

	saved, err := db.SaveWorkoutChanges(ctx, changes)
	require.NoError(t, err)
	assert.False(t, saved.Workout.ModifiedAt.Before(w.ModifiedAt))

	got, err := db.GetWorkout(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "Push (edited)", got.Name)

	stored, err := db.WorkoutExercises(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.Exercises, stored)
	require.Len(t, stored, 3)
	assert.Equal(t, []string{"deadlift", "bench-press", "barbell-squat"},
		models.ExerciseIDs(stored))
	for i, we := range stored {
		assert.Equal(t, i, we.Exercise.Order)
		assert.NotEqual(t, uuid.Nil, we.Exercise.ID)
	}
	require.Len(t, stored[1].Sets, 2)
	assert.Equal(t, keep.ID, stored[1].Sets[0].ID)
	assert.NotEqual(t, uuid.Nil, stored[1].Sets[1].ID)
	assert.Equal(t, 2, models.DoneCount(stored[1].Sets))

	// Saving the returned state again is a no-op apart from the modification date.
	again, err := db.SaveWorkoutChanges(ctx, WorkoutChanges{Workout: saved.Workout, Exercises: saved.Exercises})
	require.NoError(t, err)
	assert.Equal(t, saved.Exercises, again.Exercises)
	restored, err := db.WorkoutExercises(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, stored, restored)

	assert.Equal(t, 0, frequencyOf(t, db, "dumbbell-curl"))
	assert.Equal(t, 1, frequencyOf(t, db, "barbell-squat"))
}

func TestSaveWorkoutChangesRollsBackOnFailure(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	ctx := context.Background()

	w, _ := db.StartWorkout(ctx, "Push", "")
	added, _ := db.AddExercisesToWorkout(ctx, w.ID, []string{"bench-press"})
	before, err := db.WorkoutExercises(ctx, w.ID)
	require.NoError(t, err)

	renamed := w
	renamed.Name = "should not stick"
	_, err = db.SaveWorkoutChanges(ctx, WorkoutChanges{
		Workout:          renamed,
		DeletedExercises: []uuid.UUID{added[0].ID},
		Exercises: []models.FullWorkoutExercise{
			{Exercise: models.WorkoutExercise{ExerciseID: "not-in-catalog"}},
		},
	})
	require.Error(t, err)
	assert.Equal(t, KindTransaction, KindOf(err))

	got, err := db.GetWorkout(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "Push", got.Name)
	after, err := db.WorkoutExercises(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSaveTemplateChanges(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	ctx := context.Background()

	saved, err := db.SaveTemplateChanges(ctx, TemplateChanges{
		Template: models.Template{Name: "Pull"},
		Exercises: []models.FullTemplateExercise{
			{
				Exercise: models.TemplateExercise{ExerciseID: "deadlift"},
				Sets: []models.PrescribedSet{
					{Reps: models.FixedReps(5), Type: models.SetWorking},
					{Reps: models.RepRange(3, 5), Type: models.SetWorking},
				},
			},
			{Exercise: models.TemplateExercise{ExerciseID: "dumbbell-curl"}},
		},
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, saved.Template.ID)
	assert.False(t, saved.Template.CreatedAt.IsZero())

	edited := saved
	edited.Exercises = []models.FullTemplateExercise{saved.Exercises[0]}
	edited.Exercises[0].Sets = saved.Exercises[0].Sets[1:]
	edited.DeletedExercises = []uuid.UUID{saved.Exercises[1].Exercise.ID}
	edited.DeletedSets = []uuid.UUID{saved.Exercises[0].Sets[0].ID}

	result, err := db.SaveTemplateChanges(ctx, edited)
	require.NoError(t, err)

	stored, err := db.TemplateExercises(ctx, saved.Template.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Exercises, stored)
	require.Len(t, stored, 1)
	require.Len(t, stored[0].Sets, 1)
	assert.Equal(t, 0, stored[0].Sets[0].Order)
	assert.Equal(t, models.RepKindRange, stored[0].Sets[0].Reps.Kind)
	assert.Equal(t, "3-5", stored[0].Sets[0].Reps.String())
}

func TestDeleteTemplateCascades(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	ctx := context.Background()

	tmpl, err := db.CreateTemplate(ctx, "Legs", "")
	require.NoError(t, err)
	added, err := db.AddExercisesToTemplate(ctx, tmpl.ID, []string{"barbell-squat"})
	require.NoError(t, err)
	_, err = db.AddTemplateSet(ctx, added[0].ID)
	require.NoError(t, err)

	require.NoError(t, db.DeleteTemplate(ctx, tmpl.ID))
	assert.Zero(t, countRows(t, db, `SELECT COUNT(*) FROM template_exercises`))
	assert.Zero(t, countRows(t, db, `SELECT COUNT(*) FROM template_sets`))
}

func TestDeleteTemplateSetKeepsPositionsDense(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	ctx := context.Background()

	tmpl, _ := db.CreateTemplate(ctx, "Legs", "")
	added, _ := db.AddExercisesToTemplate(ctx, tmpl.ID, []string{"barbell-squat"})
	var sets []models.PrescribedSet
	for i := 0; i < 3; i++ {
		s, err := db.AddTemplateSet(ctx, added[0].ID)
		require.NoError(t, err)
		sets = append(sets, s)
	}

	require.NoError(t, db.DeleteTemplateSet(ctx, sets[0]))

	stored, err := db.TemplateExercises(ctx, tmpl.ID)
	require.NoError(t, err)
	require.Len(t, stored[0].Sets, 2)
	for i, s := range stored[0].Sets {
		assert.Equal(t, sets[i+1].ID, s.ID)
		assert.Equal(t, i, s.Order)
	}
}

func TestSaveWorkoutChangesDeletesOnlyOwnRows(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	ctx := context.Background()

	a, err := db.StartWorkout(ctx, "A", "")
	require.NoError(t, err)
	aWE, err := db.AddExercisesToWorkout(ctx, a.ID, []string{"bench-press", "deadlift"})
	require.NoError(t, err)
	aSet := addSet(t, db, aWE[1].ID, models.SetWorking, 100, 5, true)

	b, err := db.StartWorkout(ctx, "B", "")
	require.NoError(t, err)

	_, err = db.SaveWorkoutChanges(ctx, WorkoutChanges{
		Workout:          b,
		DeletedExercises: []uuid.UUID{aWE[0].ID},
		DeletedSets:      []uuid.UUID{aSet.ID},
	})
	require.NoError(t, err)

	exercises, err := db.WorkoutExercises(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, exercises, 2, "workout A lost exercises to a save of workout B")
	assert.Len(t, exercises[1].Sets, 1, "workout A lost a set to a save of workout B")
	assert.Equal(t, 1, frequencyOf(t, db, "bench-press"))

	// The same IDs still delete when saved through their own workout.
	_, err = db.SaveWorkoutChanges(ctx, WorkoutChanges{
		Workout:          a,
		DeletedExercises: []uuid.UUID{aWE[0].ID},
		DeletedSets:      []uuid.UUID{aSet.ID},
		Exercises:        []models.FullWorkoutExercise{{Exercise: aWE[1]}},
	})
	require.NoError(t, err)
	exercises, err = db.WorkoutExercises(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, exercises, 1)
	assert.Empty(t, exercises[0].Sets)
}

func TestSaveTemplateChangesDeletesOnlyOwnRows(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	ctx := context.Background()

	a, err := db.CreateTemplate(ctx, "A", "")
	require.NoError(t, err)
	aTE, err := db.AddExercisesToTemplateWithSets(ctx, a.ID, []string{"bench-press", "deadlift"},
		[]models.PrescribedSet{{Reps: models.RepRange(5, 8), Type: models.SetWorking}})
	require.NoError(t, err)
	require.Len(t, aTE, 2)

	b, err := db.CreateTemplate(ctx, "B", "")
	require.NoError(t, err)

	_, err = db.SaveTemplateChanges(ctx, TemplateChanges{
		Template:         b,
		DeletedExercises: []uuid.UUID{aTE[0].Exercise.ID},
		DeletedSets:      []uuid.UUID{aTE[1].Sets[0].ID},
	})
	require.NoError(t, err)

	exercises, err := db.TemplateExercises(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, exercises, 2, "template A lost exercises to a save of template B")
	assert.Len(t, exercises[1].Sets, 1, "template A lost a set to a save of template B")
}

func TestAddExercisesToTemplateWithSets(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	ctx := context.Background()

	tmpl, err := db.CreateTemplate(ctx, "Push", "")
	require.NoError(t, err)
	_, err = db.AddExercisesToTemplate(ctx, tmpl.ID, []string{"dumbbell-curl"})
	require.NoError(t, err)

	prescription := models.PrescribedSet{Reps: models.RepRange(8, 12), Weight: floatPtr64(60), Type: models.SetWorking}
	added, err := db.AddExercisesToTemplateWithSets(ctx, tmpl.ID, []string{"bench-press", "incline-bench-press"},
		[]models.PrescribedSet{prescription, prescription, prescription})
	require.NoError(t, err)
	require.Len(t, added, 2)

	exercises, err := db.TemplateExercises(ctx, tmpl.ID)
	require.NoError(t, err)
	require.Len(t, exercises, 3)
	for i, fte := range exercises[1:] {
		assert.Equal(t, added[i].Exercise.ID, fte.Exercise.ID)
		assert.Equal(t, i+1, fte.Exercise.Order)
		require.Len(t, fte.Sets, 3)
		for j, s := range fte.Sets {
			assert.Equal(t, j, s.Order)
			assert.Equal(t, fte.Exercise.ID, s.TemplateExerciseID)
			assert.Equal(t, models.RepRange(8, 12), s.Reps)
			require.NotNil(t, s.Weight)
			assert.Equal(t, 60.0, *s.Weight)
		}
	}
	assert.NotEqual(t, exercises[1].Sets[0].ID, exercises[2].Sets[0].ID, "each exercise gets its own set rows")
}

func TestAddExercisesToTemplateWithSetsRollsBack(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	ctx := context.Background()

	tmpl, err := db.CreateTemplate(ctx, "Push", "")
	require.NoError(t, err)

	_, err = db.AddExercisesToTemplateWithSets(ctx, tmpl.ID, []string{"bench-press", "no-such-exercise"},
		[]models.PrescribedSet{{Reps: models.FixedReps(5), Type: models.SetWorking}})
	require.Equal(t, KindTransaction, KindOf(err), "err: %v", err)

	assert.Zero(t, countRows(t, db, `SELECT COUNT(*) FROM template_exercises`))
	assert.Zero(t, countRows(t, db, `SELECT COUNT(*) FROM template_sets`))
}
