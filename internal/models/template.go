// ABOUTME: Template, TemplateExercise, and PrescribedSet models for reusable plans.
// ABOUTME: Prescribed sets carry a RepType which is either a fixed count or a range.
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RepKind discriminates the RepType union.
type RepKind string

const (
	RepKindFixed RepKind = "reps"
	RepKindRange RepKind = "range"
)

// RepType is a prescribed rep target: either a fixed count (Min) or an
// inclusive [Min, Max] range. Either bound may be unset.
type RepType struct {
	Kind RepKind `json:"kind" yaml:"kind"`
	Min  *int    `json:"min,omitempty" yaml:"min,omitempty"`
	Max  *int    `json:"max,omitempty" yaml:"max,omitempty"`
}

// FixedReps returns a fixed rep count.
func FixedReps(n int) RepType {
	return RepType{Kind: RepKindFixed, Min: &n}
}

// RepRange returns an inclusive rep range.
func RepRange(lo, hi int) RepType {
	return RepType{Kind: RepKindRange, Min: &lo, Max: &hi}
}

// SeedReps is the rep count a performed set starts with when the
// prescription is instantiated: the fixed count or the lower bound.
// The upper bound of a range is discarded.
func (r RepType) SeedReps() int {
	if r.Min == nil {
		return 0
	}
	return *r.Min
}

// String formats the target as "8" or "8-12".
func (r RepType) String() string {
	lo, hi := "?", "?"
	if r.Min != nil {
		lo = fmt.Sprint(*r.Min)
	}
	if r.Max != nil {
		hi = fmt.Sprint(*r.Max)
	}
	if r.Kind == RepKindRange {
		return lo + "-" + hi
	}
	return lo
}

// Template is a reusable workout blueprint.
type Template struct {
	ID         uuid.UUID `json:"id" yaml:"id"`
	Name       string    `json:"name" yaml:"name"`
	Notes      string    `json:"notes" yaml:"notes"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
	ModifiedAt time.Time `json:"modified_at" yaml:"modified_at"`
}

// NewTemplate creates a Template with generated UUID and current timestamps.
func NewTemplate(name, notes string) Template {
	now := time.Now().UTC()
	return Template{
		ID:         uuid.New(),
		Name:       name,
		Notes:      notes,
		CreatedAt:  now,
		ModifiedAt: now,
	}
}

// TemplateExercise places a catalog exercise at a position within a template.
type TemplateExercise struct {
	ID         uuid.UUID `json:"id" yaml:"id"`
	TemplateID uuid.UUID `json:"template_id" yaml:"template_id"`
	ExerciseID string    `json:"exercise_id" yaml:"exercise_id"`
	Order      int       `json:"order" yaml:"order"`
	Notes      *string   `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// PrescribedSet is a target set inside a template exercise.
type PrescribedSet struct {
	ID                 uuid.UUID `json:"id" yaml:"id"`
	TemplateExerciseID uuid.UUID `json:"template_exercise_id" yaml:"template_exercise_id"`
	Reps               RepType   `json:"reps" yaml:"reps"`
	Weight             *float64  `json:"weight,omitempty" yaml:"weight,omitempty"`
	Type               SetType   `json:"type" yaml:"type"`
	RPE                *int      `json:"rpe,omitempty" yaml:"rpe,omitempty"`
	Notes              *string   `json:"notes,omitempty" yaml:"notes,omitempty"`
	Order              int       `json:"order" yaml:"order"`
}

// NextPrescribedSet builds the set appended after sets, copying the last
// prescription when present.
func NextPrescribedSet(templateExerciseID uuid.UUID, sets []PrescribedSet) PrescribedSet {
	next := PrescribedSet{
		ID:                 uuid.New(),
		TemplateExerciseID: templateExerciseID,
		Reps:               FixedReps(0),
		Type:               SetWorking,
		Order:              len(sets),
	}
	if len(sets) > 0 {
		last := sets[len(sets)-1]
		next.Reps = last.Reps
		next.Weight = last.Weight
		next.Type = last.Type
		next.RPE = last.RPE
		next.Notes = last.Notes
	}
	return next
}

// Instantiate turns a prescription into a not-done performed set.
func (p PrescribedSet) Instantiate(workoutExerciseID uuid.UUID) PerformedSet {
	weight := 0.0
	if p.Weight != nil {
		weight = *p.Weight
	}
	return PerformedSet{
		ID:                uuid.New(),
		WorkoutExerciseID: workoutExerciseID,
		Reps:              p.Reps.SeedReps(),
		Weight:            weight,
		Type:              p.Type,
		RPE:               p.RPE,
		Notes:             p.Notes,
		Order:             p.Order,
	}
}

// TemplateSummary lists a template with the name and set count of each exercise.
type TemplateSummary struct {
	Template  Template               `json:"template"`
	Exercises []TemplateExerciseLine `json:"exercises"`
}

// TemplateExerciseLine is one row of a TemplateSummary.
type TemplateExerciseLine struct {
	ExerciseID   string `json:"exercise_id"`
	ExerciseName string `json:"exercise_name"`
	SetCount     int    `json:"set_count"`
}
