// ABOUTME: Repository interface for the workout store.
// ABOUTME: Defines the catalog, aggregate, and projection contract consumed by adapters.
package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/harperreed/lift/internal/models"
)

// Catalog is the read side of the exercise catalog.
type Catalog interface {
	SearchExercises(ctx context.Context, text string, limit, offset int) ([]models.ExerciseSummary, error)
	ClosestExerciseNames(ctx context.Context, text string) ([]string, error)
	GetExerciseDetail(ctx context.Context, id string) (*models.ExerciseDetail, error)
	FindExercises(ctx context.Context, f ExerciseFilter) ([]models.ExerciseSummary, error)
	ExerciseName(ctx context.Context, id string) (string, error)
}

// Repository defines the storage interface for workout data.
// This interface allows swapping implementations (e.g., for testing).
type Repository interface {
	Catalog

	// Workout operations
	StartWorkout(ctx context.Context, name, notes string) (models.Workout, error)
	StartWorkoutFromTemplate(ctx context.Context, templateID uuid.UUID) (models.Workout, error)
	GetWorkout(ctx context.Context, id uuid.UUID) (models.Workout, error)
	ListWorkouts(ctx context.Context, limit int) ([]models.Workout, error)
	FinishWorkout(ctx context.Context, id uuid.UUID) (models.Workout, error)
	DeleteWorkout(ctx context.Context, id uuid.UUID) error
	ResolveWorkoutID(ctx context.Context, idOrPrefix string) (uuid.UUID, error)

	// Workout exercise and set operations
	AddExercisesToWorkout(ctx context.Context, workoutID uuid.UUID, ids []string) ([]models.WorkoutExercise, error)
	AddExercisesWithPreviousSets(ctx context.Context, workoutID uuid.UUID, ids []string) ([]models.FullWorkoutExercise, error)
	AddSet(ctx context.Context, workoutExerciseID uuid.UUID) (models.PerformedSet, error)
	AddSetWith(ctx context.Context, workoutExerciseID uuid.UUID, edit func(*models.PerformedSet)) (models.PerformedSet, error)
	UpdateSet(ctx context.Context, set models.PerformedSet) error
	GetSet(ctx context.Context, id uuid.UUID) (models.PerformedSet, error)
	ResolveWorkoutExerciseID(ctx context.Context, idOrPrefix string) (uuid.UUID, error)
	ResolveSetID(ctx context.Context, idOrPrefix string) (uuid.UUID, error)

	// Template operations
	ListTemplates(ctx context.Context) ([]models.Template, error)
	TemplateSummaries(ctx context.Context) ([]models.TemplateSummary, error)
	ResolveTemplateID(ctx context.Context, idOrPrefix string) (uuid.UUID, error)

	// Projections
	OngoingWorkout(ctx context.Context) (*models.Workout, error)
	WorkoutExercises(ctx context.Context, workoutID uuid.UUID) ([]models.FullWorkoutExercise, error)
	SetsWithPrevious(ctx context.Context, workoutExerciseID uuid.UUID) ([]models.SetWithPrevious, error)
	MuscleGroups(ctx context.Context, exerciseIDs []string) (primary, secondary []models.MuscleGroup, err error)
	WorkoutMuscles(ctx context.Context, workoutID uuid.UUID) (primary, secondary []models.MuscleGroup, err error)

	// Lifecycle
	Close() error
}

var _ Repository = (*DB)(nil)
