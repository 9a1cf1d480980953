// ABOUTME: Exercise catalog models and classification enums.
// ABOUTME: Covers force, level, mechanic, equipment, category, and muscle groups.
package models

import "sort"

// Force describes the movement direction of an exercise.
type Force string

const (
	ForceStatic Force = "static"
	ForcePull   Force = "pull"
	ForcePush   Force = "push"
)

// Level is the difficulty rating of an exercise.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelExpert       Level = "expert"
)

// Mechanic distinguishes single-joint from multi-joint movements.
type Mechanic string

const (
	MechanicIsolation Mechanic = "isolation"
	MechanicCompound  Mechanic = "compound"
)

// Equipment is the implement an exercise is performed with.
type Equipment string

const (
	EquipmentMedicineBall Equipment = "medicine ball"
	EquipmentDumbbell     Equipment = "dumbbell"
	EquipmentBodyOnly     Equipment = "body only"
	EquipmentBands        Equipment = "bands"
	EquipmentKettlebells  Equipment = "kettlebells"
	EquipmentFoamRoll     Equipment = "foam roll"
	EquipmentCable        Equipment = "cable"
	EquipmentMachine      Equipment = "machine"
	EquipmentBarbell      Equipment = "barbell"
	EquipmentExerciseBall Equipment = "exercise ball"
	EquipmentEZCurlBar    Equipment = "e-z curl bar"
	EquipmentOther        Equipment = "other"
)

// Category groups exercises by training discipline.
type Category string

const (
	CategoryPowerlifting         Category = "powerlifting"
	CategoryStrength             Category = "strength"
	CategoryStretching           Category = "stretching"
	CategoryCardio               Category = "cardio"
	CategoryOlympicWeightlifting Category = "olympic weightlifting"
	CategoryStrongman            Category = "strongman"
	CategoryPlyometrics          Category = "plyometrics"
)

// MuscleGroup is a body region trained by an exercise.
type MuscleGroup string

const (
	MuscleAbdominals MuscleGroup = "abdominals"
	MuscleAbductors  MuscleGroup = "abductors"
	MuscleAdductors  MuscleGroup = "adductors"
	MuscleBiceps     MuscleGroup = "biceps"
	MuscleCalves     MuscleGroup = "calves"
	MuscleChest      MuscleGroup = "chest"
	MuscleForearms   MuscleGroup = "forearms"
	MuscleGlutes     MuscleGroup = "glutes"
	MuscleHamstrings MuscleGroup = "hamstrings"
	MuscleLats       MuscleGroup = "lats"
	MuscleLowerBack  MuscleGroup = "lower back"
	MuscleMiddleBack MuscleGroup = "middle back"
	MuscleNeck       MuscleGroup = "neck"
	MuscleQuadriceps MuscleGroup = "quadriceps"
	MuscleShoulders  MuscleGroup = "shoulders"
	MuscleTraps      MuscleGroup = "traps"
	MuscleTriceps    MuscleGroup = "triceps"
	MuscleOthers     MuscleGroup = "others"
)

// AllForces returns all valid force values.
var AllForces = []Force{ForceStatic, ForcePull, ForcePush}

// AllLevels returns all valid difficulty levels.
var AllLevels = []Level{LevelBeginner, LevelIntermediate, LevelExpert}

// AllMechanics returns all valid mechanic values.
var AllMechanics = []Mechanic{MechanicIsolation, MechanicCompound}

// AllEquipment returns all valid equipment values.
var AllEquipment = []Equipment{
	EquipmentMedicineBall, EquipmentDumbbell, EquipmentBodyOnly, EquipmentBands,
	EquipmentKettlebells, EquipmentFoamRoll, EquipmentCable, EquipmentMachine,
	EquipmentBarbell, EquipmentExerciseBall, EquipmentEZCurlBar, EquipmentOther,
}

// AllCategories returns all valid categories.
var AllCategories = []Category{
	CategoryPowerlifting, CategoryStrength, CategoryStretching, CategoryCardio,
	CategoryOlympicWeightlifting, CategoryStrongman, CategoryPlyometrics,
}

// AllMuscleGroups returns all valid muscle groups.
var AllMuscleGroups = []MuscleGroup{
	MuscleAbdominals, MuscleAbductors, MuscleAdductors, MuscleBiceps,
	MuscleCalves, MuscleChest, MuscleForearms, MuscleGlutes,
	MuscleHamstrings, MuscleLats, MuscleLowerBack, MuscleMiddleBack,
	MuscleNeck, MuscleQuadriceps, MuscleShoulders, MuscleTraps,
	MuscleTriceps, MuscleOthers,
}

// IsValidForce checks if a string is a valid force.
func IsValidForce(s string) bool { return contains(AllForces, Force(s)) }

// IsValidLevel checks if a string is a valid level.
func IsValidLevel(s string) bool { return contains(AllLevels, Level(s)) }

// IsValidMechanic checks if a string is a valid mechanic.
func IsValidMechanic(s string) bool { return contains(AllMechanics, Mechanic(s)) }

// IsValidEquipment checks if a string is a valid equipment value.
func IsValidEquipment(s string) bool { return contains(AllEquipment, Equipment(s)) }

// IsValidCategory checks if a string is a valid category.
func IsValidCategory(s string) bool { return contains(AllCategories, Category(s)) }

// IsValidMuscleGroup checks if a string is a valid muscle group.
func IsValidMuscleGroup(s string) bool { return contains(AllMuscleGroups, MuscleGroup(s)) }

func contains[T comparable](all []T, v T) bool {
	for _, candidate := range all {
		if candidate == v {
			return true
		}
	}
	return false
}

// SortMuscleGroups sorts muscle groups alphabetically in place.
func SortMuscleGroups(groups []MuscleGroup) {
	sort.Slice(groups, func(i, j int) bool { return groups[i] < groups[j] })
}

// Exercise is a catalog entry. Frequency counts how many workout
// exercises currently reference it and is maintained by the database.
type Exercise struct {
	ID        string     `json:"id" yaml:"id"`
	Name      string     `json:"name" yaml:"name"`
	Force     *Force     `json:"force,omitempty" yaml:"force,omitempty"`
	Level     Level      `json:"level" yaml:"level"`
	Mechanic  *Mechanic  `json:"mechanic,omitempty" yaml:"mechanic,omitempty"`
	Equipment *Equipment `json:"equipment,omitempty" yaml:"equipment,omitempty"`
	Category  Category   `json:"category" yaml:"category"`
	Frequency int        `json:"frequency" yaml:"frequency"`
}

// ExerciseSummary is a search result row: the exercise plus its primary muscles.
type ExerciseSummary struct {
	Exercise
	PrimaryMuscles []MuscleGroup `json:"primary_muscles" yaml:"primary_muscles"`
}

// ExerciseDetail is a fully joined catalog entry.
type ExerciseDetail struct {
	Exercise
	PrimaryMuscles   []MuscleGroup `json:"primary_muscles" yaml:"primary_muscles"`
	SecondaryMuscles []MuscleGroup `json:"secondary_muscles" yaml:"secondary_muscles"`
	Instructions     []string      `json:"instructions" yaml:"instructions"`
	Images           []string      `json:"images" yaml:"images"`
}

// ExerciseSeed is one entry of the bundled catalog JSON.
// Frequency is accepted for format compatibility but not imported.
type ExerciseSeed struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Force            *string  `json:"force"`
	Level            string   `json:"level"`
	Mechanic         *string  `json:"mechanic"`
	Equipment        *string  `json:"equipment"`
	PrimaryMuscles   []string `json:"primaryMuscles"`
	SecondaryMuscles []string `json:"secondaryMuscles"`
	Instructions     []string `json:"instructions"`
	Category         string   `json:"category"`
	Images           []string `json:"images"`
	Frequency        *int     `json:"frequency"`
}
