// ABOUTME: Shared fixtures for storage tests.
// ABOUTME: Opens throwaway databases and seeds a small exercise catalog.
package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/lift/internal/models"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db := openTestDB(t)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// openTestDB leaves closing to the caller.
func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"), Options{})
	require.NoError(t, err, "open test DB")
	return db
}

var testSeeds = []models.ExerciseSeed{
	{
		ID: "bench-press", Name: "Bench Press", Level: "beginner", Category: "strength",
		Force: strPtr("push"), Mechanic: strPtr("compound"), Equipment: strPtr("barbell"),
		PrimaryMuscles:   []string{"chest"},
		SecondaryMuscles: []string{"triceps", "shoulders"},
		Instructions:     []string{"Lie back on a flat bench.", "Lower the bar to mid chest.", "Press it back up."},
		Images:           []string{"bench-press/0.jpg", "bench-press/1.jpg"},
	},
	{
		ID: "incline-bench-press", Name: "Incline Bench Press", Level: "beginner", Category: "strength",
		Force: strPtr("push"), Mechanic: strPtr("compound"), Equipment: strPtr("barbell"),
		PrimaryMuscles:   []string{"chest"},
		SecondaryMuscles: []string{"shoulders"},
	},
	{
		ID: "barbell-squat", Name: "Barbell Squat", Level: "intermediate", Category: "strength",
		Force: strPtr("push"), Mechanic: strPtr("compound"), Equipment: strPtr("barbell"),
		PrimaryMuscles:   []string{"quadriceps"},
		SecondaryMuscles: []string{"glutes", "hamstrings"},
	},
	{
		ID: "deadlift", Name: "Deadlift", Level: "intermediate", Category: "powerlifting",
		Force: strPtr("pull"), Equipment: strPtr("barbell"),
		PrimaryMuscles:   []string{"lower back"},
		SecondaryMuscles: []string{"glutes", "hamstrings", "traps"},
	},
	{
		ID: "dumbbell-curl", Name: "Dumbbell Curl", Level: "beginner", Category: "strength",
		Force: strPtr("pull"), Mechanic: strPtr("isolation"), Equipment: strPtr("dumbbell"),
		PrimaryMuscles: []string{"biceps"},
	},
}

func seedCatalog(t *testing.T, db *DB) {
	t.Helper()
	_, err := db.ImportExercises(context.Background(), testSeeds)
	require.NoError(t, err)
}

func countRows(t *testing.T, db *DB, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, db.reader.QueryRow(query, args...).Scan(&n))
	return n
}

func frequencyOf(t *testing.T, db *DB, exerciseID string) int {
	t.Helper()
	ex, err := db.GetExercise(context.Background(), exerciseID)
	require.NoError(t, err, "GetExercise(%s)", exerciseID)
	return ex.Frequency
}

// addSet appends a set with the given values.
func addSet(t *testing.T, db *DB, weID uuid.UUID, typ models.SetType, weight float64, reps int, done bool) models.PerformedSet {
	t.Helper()
	s, err := db.AddSetWith(context.Background(), weID, func(s *models.PerformedSet) {
		s.Type = typ
		s.Weight = weight
		s.Reps = reps
		s.IsDone = done
	})
	require.NoError(t, err)
	return s
}

// finishAt closes a workout with a fixed end date.
func finishAt(t *testing.T, db *DB, w models.Workout, ended time.Time) models.Workout {
	t.Helper()
	ended = ended.UTC()
	w.EndedAt = &ended
	w, err := db.UpdateWorkout(context.Background(), w)
	require.NoError(t, err)
	return w
}
