// ABOUTME: Shared Set interface over performed and prescribed sets.
// ABOUTME: ExerciseWithSets is the generic element of a workout or template aggregate.
package models

// Set is the capability shared by PerformedSet and PrescribedSet.
type Set interface {
	Position() int
	Kind() SetType
	Target() RepType
	// Completion reports the done flag and whether the set tracks one at all.
	Completion() (done bool, tracked bool)
}

// Slot is the capability shared by WorkoutExercise and TemplateExercise.
type Slot interface {
	Position() int
	Exercise() string
}

func (s PerformedSet) Position() int { return s.Order }
func (s PerformedSet) Kind() SetType { return s.Type }
func (s PerformedSet) Target() RepType { return FixedReps(s.Reps) }
func (s PerformedSet) Completion() (bool, bool) { return s.IsDone, true }
func (s PrescribedSet) Position() int { return s.Order }
func (s PrescribedSet) Kind() SetType { return s.Type }
func (s PrescribedSet) Target() RepType { return s.Reps }
func (s PrescribedSet) Completion() (bool, bool) { return false, false }
func (e WorkoutExercise) Position() int { return e.Order }
func (e WorkoutExercise) Exercise() string { return e.ExerciseID }
func (e TemplateExercise) Position() int { return e.Order }
func (e TemplateExercise) Exercise() string { return e.ExerciseID }

// ExerciseWithSets is an exercise slot together with its ordered sets.
type ExerciseWithSets[E Slot, S Set] struct {
	Exercise E   `json:"exercise" yaml:"exercise"`
	Sets     []S `json:"sets" yaml:"sets"`
}

// FullWorkoutExercise is a workout exercise with its performed sets.
type FullWorkoutExercise = ExerciseWithSets[WorkoutExercise, PerformedSet]

// FullTemplateExercise is a template exercise with its prescribed sets.
type FullTemplateExercise = ExerciseWithSets[TemplateExercise, PrescribedSet]

// ExerciseIDs returns the catalog ids referenced by items, in order.
func ExerciseIDs[E Slot, S Set](items []ExerciseWithSets[E, S]) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.Exercise.Exercise())
	}
	return ids
}

// DoneCount counts completed sets; prescribed sets never count.
func DoneCount[S Set](sets []S) int {
	n := 0
	for _, s := range sets {
		if done, _ := s.Completion(); done {
			n++
		}
	}
	return n
}
