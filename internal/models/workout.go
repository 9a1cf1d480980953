// ABOUTME: Workout, WorkoutExercise, and PerformedSet models for training sessions.
// ABOUTME: A workout owns ordered exercises which own ordered performed sets.
package models

import (
	"time"

	"github.com/google/uuid"
)

// SetType tags a set as warmup, working, drop, or failure.
type SetType string

const (
	SetWarmup  SetType = "warmup"
	SetWorking SetType = "working"
	SetDrop    SetType = "drop"
	SetFailure SetType = "failure"
)

// AllSetTypes returns all valid set types.
var AllSetTypes = []SetType{SetWarmup, SetWorking, SetDrop, SetFailure}

// IsValidSetType checks if a string is a valid set type.
func IsValidSetType(s string) bool { return contains(AllSetTypes, SetType(s)) }

// Workout is a training session. EndedAt is nil while the session is in progress.
type Workout struct {
	ID         uuid.UUID  `json:"id" yaml:"id"`
	Name       string     `json:"name" yaml:"name"`
	Notes      string     `json:"notes" yaml:"notes"`
	CreatedAt  time.Time  `json:"created_at" yaml:"created_at"`
	ModifiedAt time.Time  `json:"modified_at" yaml:"modified_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty" yaml:"ended_at,omitempty"`
}

// NewWorkout creates an in-progress Workout with generated UUID and current timestamps.
func NewWorkout(name, notes string) Workout {
	now := time.Now().UTC()
	return Workout{
		ID:         uuid.New(),
		Name:       name,
		Notes:      notes,
		CreatedAt:  now,
		ModifiedAt: now,
	}
}

// IsOngoing reports whether the workout has not been finished.
func (w Workout) IsOngoing() bool {
	return w.EndedAt == nil
}

// Duration returns the elapsed time of a finished workout, or the time
// since creation for an ongoing one.
func (w Workout) Duration(now time.Time) time.Duration {
	if w.EndedAt != nil {
		return w.EndedAt.Sub(w.CreatedAt)
	}
	return now.Sub(w.CreatedAt)
}

// Equal compares two workouts ignoring ModifiedAt.
func (w Workout) Equal(o Workout) bool {
	if w.ID != o.ID || w.Name != o.Name || w.Notes != o.Notes || !w.CreatedAt.Equal(o.CreatedAt) {
		return false
	}
	if (w.EndedAt == nil) != (o.EndedAt == nil) {
		return false
	}
	return w.EndedAt == nil || w.EndedAt.Equal(*o.EndedAt)
}

// WorkoutExercise places a catalog exercise at a position within a workout.
type WorkoutExercise struct {
	ID         uuid.UUID `json:"id" yaml:"id"`
	WorkoutID  uuid.UUID `json:"workout_id" yaml:"workout_id"`
	ExerciseID string    `json:"exercise_id" yaml:"exercise_id"`
	Order      int       `json:"order" yaml:"order"`
	Notes      *string   `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// PerformedSet is one set actually done (or to be done) in a workout.
type PerformedSet struct {
	ID                uuid.UUID `json:"id" yaml:"id"`
	WorkoutExerciseID uuid.UUID `json:"workout_exercise_id" yaml:"workout_exercise_id"`
	Reps              int       `json:"reps" yaml:"reps"`
	Weight            float64   `json:"weight" yaml:"weight"`
	Type              SetType   `json:"type" yaml:"type"`
	RPE               *int      `json:"rpe,omitempty" yaml:"rpe,omitempty"`
	Notes             *string   `json:"notes,omitempty" yaml:"notes,omitempty"`
	Order             int       `json:"order" yaml:"order"`
	IsDone            bool      `json:"is_done" yaml:"is_done"`
}

// NextPerformedSet builds the set appended after sets, seeded from the last
// one when present.
func NextPerformedSet(workoutExerciseID uuid.UUID, sets []PerformedSet) PerformedSet {
	next := PerformedSet{
		ID:                uuid.New(),
		WorkoutExerciseID: workoutExerciseID,
		Type:              SetWorking,
		Order:             len(sets),
	}
	if len(sets) > 0 {
		last := sets[len(sets)-1]
		next.Reps = last.Reps
		next.Weight = last.Weight
		next.Type = last.Type
	}
	return next
}

// WorkingSetOrdinal counts working sets positioned before set among sets.
// Warmup, drop, and failure sets occupy a position but are not counted.
func WorkingSetOrdinal(sets []PerformedSet, set PerformedSet) int {
	n := 0
	for _, s := range sets {
		if s.WorkoutExerciseID == set.WorkoutExerciseID && s.Order < set.Order && s.Type == SetWorking {
			n++
		}
	}
	return n
}

// SetWithPrevious pairs a current set with its historical match.
type SetWithPrevious struct {
	Current  PerformedSet  `json:"current"`
	Previous *PerformedSet `json:"previous,omitempty"`
	// WorkingOrdinal is zero-based; display adds one.
	WorkingOrdinal int `json:"working_ordinal"`
}
