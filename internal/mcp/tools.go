// ABOUTME: MCP tool implementations for the lift workout store.
// ABOUTME: Catalog search, workout logging, templates, and muscle aggregation.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/lift/internal/models"
	"github.com/harperreed/lift/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ErrWorkoutInProgress is returned when starting a workout while another is open.
var ErrWorkoutInProgress = errors.New("a workout is already in progress")

const defaultSearchLimit = 20

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "search_exercises",
		Description: "Full-text search of the exercise catalog by name; every word is matched as a prefix",
	}, s.handleSearchExercises)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "find_exercises",
		Description: "Filter the exercise catalog by muscle, level, equipment, and category; most used first",
	}, s.handleFindExercises)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_exercise",
		Description: "Get an exercise with its muscles, instructions, and images",
	}, s.handleGetExercise)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_ongoing_workout",
		Description: "Get the workout in progress with its exercises and sets",
	}, s.handleGetOngoingWorkout)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "start_workout",
		Description: "Start an empty workout; fails if one is already in progress",
	}, s.handleStartWorkout)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "start_workout_from_template",
		Description: "Start a workout pre-filled from a template",
	}, s.handleStartWorkoutFromTemplate)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_exercises",
		Description: "Append catalog exercises to a workout, optionally seeded with the sets from last time",
	}, s.handleAddExercises)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_set",
		Description: "Append a set to a workout exercise",
	}, s.handleAddSet)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "finish_workout",
		Description: "Finish a workout, defaulting to the one in progress",
	}, s.handleFinishWorkout)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_templates",
		Description: "List workout templates with their exercises and set counts",
	}, s.handleListTemplates)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_muscles",
		Description: "Primary and secondary muscles trained by a workout or a list of exercises",
	}, s.handleGetMuscles)
}

// Tool input/output types

type searchExercisesInput struct {
	Query  string `json:"query" jsonschema:"free text to match against exercise names"`
	Limit  int    `json:"limit,omitempty" jsonschema:"max results (default 20)"`
	Offset int    `json:"offset,omitempty" jsonschema:"results to skip for paging"`
}

type exerciseListOutput struct {
	Exercises []models.ExerciseSummary `json:"exercises"`
	Message   string                   `json:"message,omitempty"`
}

type findExercisesInput struct {
	Muscles   []string `json:"muscles,omitempty" jsonschema:"primary muscle groups, any of which must match"`
	Level     string   `json:"level,omitempty" jsonschema:"beginner, intermediate, or expert"`
	Equipment string   `json:"equipment,omitempty" jsonschema:"required equipment, e.g. barbell"`
	Category  string   `json:"category,omitempty" jsonschema:"exercise category, e.g. strength"`
	Limit     int      `json:"limit,omitempty" jsonschema:"max results (default 20)"`
}

type getExerciseInput struct {
	ID string `json:"id" jsonschema:"catalog exercise ID"`
}

type emptyInput struct{}

type workoutOutput struct {
	Workout   *models.Workout              `json:"workout,omitempty"`
	Exercises []models.FullWorkoutExercise `json:"exercises,omitempty"`
	Message   string                       `json:"message"`
}

type startWorkoutInput struct {
	Name  string `json:"name" jsonschema:"workout name"`
	Notes string `json:"notes,omitempty" jsonschema:"workout notes"`
}

type startFromTemplateInput struct {
	TemplateID string `json:"template_id" jsonschema:"template ID or prefix"`
}

type addExercisesInput struct {
	WorkoutID    string   `json:"workout_id,omitempty" jsonschema:"workout ID or prefix; defaults to the workout in progress"`
	ExerciseIDs  []string `json:"exercise_ids" jsonschema:"catalog exercise IDs in the order to append"`
	WithPrevious bool     `json:"with_previous,omitempty" jsonschema:"seed each exercise with the sets from its last finished workout"`
}

type addSetInput struct {
	WorkoutExerciseID string   `json:"workout_exercise_id" jsonschema:"workout exercise ID or prefix"`
	Weight            *float64 `json:"weight,omitempty" jsonschema:"weight in kg; defaults to the previous set"`
	Reps              *int     `json:"reps,omitempty" jsonschema:"repetitions; defaults to the previous set"`
	Type              string   `json:"type,omitempty" jsonschema:"warmup, working, drop, or failure"`
	Done              bool     `json:"done,omitempty" jsonschema:"mark the set as completed"`
}

type setOutput struct {
	Set     models.PerformedSet `json:"set"`
	Message string              `json:"message"`
}

type finishWorkoutInput struct {
	WorkoutID string `json:"workout_id,omitempty" jsonschema:"workout ID or prefix; defaults to the workout in progress"`
}

type templatesOutput struct {
	Templates []models.TemplateSummary `json:"templates"`
}

type getMusclesInput struct {
	WorkoutID   string   `json:"workout_id,omitempty" jsonschema:"workout ID or prefix"`
	ExerciseIDs []string `json:"exercise_ids,omitempty" jsonschema:"catalog exercise IDs, used when no workout is given"`
}

type musclesOutput struct {
	Primary   []models.MuscleGroup `json:"primary"`
	Secondary []models.MuscleGroup `json:"secondary"`
}

// Tool handlers

func (s *Server) handleSearchExercises(ctx context.Context, req *mcp.CallToolRequest, input searchExercisesInput) (*mcp.CallToolResult, exerciseListOutput, error) {
	if input.Limit <= 0 {
		input.Limit = defaultSearchLimit
	}
	results, err := s.repo.SearchExercises(ctx, input.Query, input.Limit, input.Offset)
	if err != nil {
		return nil, exerciseListOutput{}, fmt.Errorf("failed to search exercises: %w", err)
	}
	if len(results) == 0 {
		return nil, exerciseListOutput{Exercises: []models.ExerciseSummary{}, Message: "No exercises found."}, nil
	}
	return nil, exerciseListOutput{Exercises: results}, nil
}

func (s *Server) handleFindExercises(ctx context.Context, req *mcp.CallToolRequest, input findExercisesInput) (*mcp.CallToolResult, exerciseListOutput, error) {
	filter, err := buildFilter(input)
	if err != nil {
		return nil, exerciseListOutput{}, err
	}
	results, err := s.repo.FindExercises(ctx, filter)
	if err != nil {
		return nil, exerciseListOutput{}, fmt.Errorf("failed to find exercises: %w", err)
	}
	if len(results) == 0 {
		return nil, exerciseListOutput{Exercises: []models.ExerciseSummary{}, Message: "No exercises found."}, nil
	}
	return nil, exerciseListOutput{Exercises: results}, nil
}

func buildFilter(input findExercisesInput) (storage.ExerciseFilter, error) {
	f := storage.ExerciseFilter{Limit: input.Limit}
	if f.Limit <= 0 {
		f.Limit = defaultSearchLimit
	}
	for _, m := range input.Muscles {
		if !models.IsValidMuscleGroup(m) {
			return f, fmt.Errorf("unknown muscle group: %s", m)
		}
		f.Muscles = append(f.Muscles, models.MuscleGroup(m))
	}
	if input.Level != "" {
		if !models.IsValidLevel(input.Level) {
			return f, fmt.Errorf("unknown level: %s", input.Level)
		}
		f.Level = models.Level(input.Level)
	}
	if input.Equipment != "" {
		if !models.IsValidEquipment(input.Equipment) {
			return f, fmt.Errorf("unknown equipment: %s", input.Equipment)
		}
		f.Equipment = models.Equipment(input.Equipment)
	}
	if input.Category != "" {
		if !models.IsValidCategory(input.Category) {
			return f, fmt.Errorf("unknown category: %s", input.Category)
		}
		f.Category = models.Category(input.Category)
	}
	return f, nil
}

func (s *Server) handleGetExercise(ctx context.Context, req *mcp.CallToolRequest, input getExerciseInput) (*mcp.CallToolResult, any, error) {
	detail, err := s.repo.GetExerciseDetail(ctx, input.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("exercise not found: %s", input.ID)
	}
	return nil, detail, nil
}

func (s *Server) handleGetOngoingWorkout(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, any, error) {
	w, err := s.repo.OngoingWorkout(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get ongoing workout: %w", err)
	}
	if w == nil {
		return nil, workoutOutput{Message: "No workout in progress."}, nil
	}
	return s.workoutWithExercises(ctx, *w, fmt.Sprintf("Workout in progress: %s (ID: %s)", w.Name, w.ID.String()[:8]))
}

func (s *Server) workoutWithExercises(ctx context.Context, w models.Workout, message string) (*mcp.CallToolResult, any, error) {
	exercises, err := s.repo.WorkoutExercises(ctx, w.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list workout exercises: %w", err)
	}
	return nil, workoutOutput{Workout: &w, Exercises: exercises, Message: message}, nil
}

// requireNoOngoing keeps at most one workout open.
func (s *Server) requireNoOngoing(ctx context.Context) error {
	w, err := s.repo.OngoingWorkout(ctx)
	if err != nil {
		return fmt.Errorf("failed to get ongoing workout: %w", err)
	}
	if w != nil {
		return fmt.Errorf("%w: %s (ID: %s)", ErrWorkoutInProgress, w.Name, w.ID.String()[:8])
	}
	return nil
}

func (s *Server) handleStartWorkout(ctx context.Context, req *mcp.CallToolRequest, input startWorkoutInput) (*mcp.CallToolResult, any, error) {
	if input.Name == "" {
		return nil, nil, errors.New("workout name is required")
	}
	if err := s.requireNoOngoing(ctx); err != nil {
		return nil, nil, err
	}

	w, err := s.repo.StartWorkout(ctx, input.Name, input.Notes)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start workout: %w", err)
	}
	s.log.WithField("workout_id", w.ID).Debug("started workout")
	return nil, workoutOutput{
		Workout: &w,
		Message: fmt.Sprintf("Started %s (ID: %s)", w.Name, w.ID.String()[:8]),
	}, nil
}

func (s *Server) handleStartWorkoutFromTemplate(ctx context.Context, req *mcp.CallToolRequest, input startFromTemplateInput) (*mcp.CallToolResult, any, error) {
	if err := s.requireNoOngoing(ctx); err != nil {
		return nil, nil, err
	}
	templateID, err := s.repo.ResolveTemplateID(ctx, input.TemplateID)
	if err != nil {
		return nil, nil, fmt.Errorf("template not found: %s", input.TemplateID)
	}

	w, err := s.repo.StartWorkoutFromTemplate(ctx, templateID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start workout from template: %w", err)
	}
	return s.workoutWithExercises(ctx, w, fmt.Sprintf("Started %s from template (ID: %s)", w.Name, w.ID.String()[:8]))
}

// resolveWorkout maps an ID or prefix to a workout, defaulting to the one in progress.
func (s *Server) resolveWorkout(ctx context.Context, idOrPrefix string) (uuid.UUID, error) {
	if idOrPrefix != "" {
		id, err := s.repo.ResolveWorkoutID(ctx, idOrPrefix)
		if err != nil {
			return uuid.Nil, fmt.Errorf("workout not found: %s", idOrPrefix)
		}
		return id, nil
	}
	w, err := s.repo.OngoingWorkout(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to get ongoing workout: %w", err)
	}
	if w == nil {
		return uuid.Nil, errors.New("no workout in progress")
	}
	return w.ID, nil
}

func (s *Server) handleAddExercises(ctx context.Context, req *mcp.CallToolRequest, input addExercisesInput) (*mcp.CallToolResult, any, error) {
	if len(input.ExerciseIDs) == 0 {
		return nil, nil, errors.New("at least one exercise ID is required")
	}
	workoutID, err := s.resolveWorkout(ctx, input.WorkoutID)
	if err != nil {
		return nil, nil, err
	}

	if input.WithPrevious {
		_, err = s.repo.AddExercisesWithPreviousSets(ctx, workoutID, input.ExerciseIDs)
	} else {
		_, err = s.repo.AddExercisesToWorkout(ctx, workoutID, input.ExerciseIDs)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to add exercises: %w", err)
	}

	w, err := s.repo.GetWorkout(ctx, workoutID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get workout: %w", err)
	}
	return s.workoutWithExercises(ctx, w, fmt.Sprintf("Added %d exercise(s) to %s", len(input.ExerciseIDs), w.Name))
}

func (s *Server) handleAddSet(ctx context.Context, req *mcp.CallToolRequest, input addSetInput) (*mcp.CallToolResult, any, error) {
	if input.Type != "" && !models.IsValidSetType(input.Type) {
		return nil, nil, fmt.Errorf("unknown set type: %s", input.Type)
	}
	weID, err := s.repo.ResolveWorkoutExerciseID(ctx, input.WorkoutExerciseID)
	if err != nil {
		return nil, nil, fmt.Errorf("workout exercise not found: %s", input.WorkoutExerciseID)
	}

	set, err := s.repo.AddSetWith(ctx, weID, func(ps *models.PerformedSet) {
		if input.Weight != nil {
			ps.Weight = *input.Weight
		}
		if input.Reps != nil {
			ps.Reps = *input.Reps
		}
		if input.Type != "" {
			ps.Type = models.SetType(input.Type)
		}
		if input.Done {
			ps.IsDone = true
		}
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to add set: %w", err)
	}

	return nil, setOutput{
		Set:     set,
		Message: fmt.Sprintf("Added set %d: %.1f kg x %d (%s)", set.Order+1, set.Weight, set.Reps, set.Type),
	}, nil
}

func (s *Server) handleFinishWorkout(ctx context.Context, req *mcp.CallToolRequest, input finishWorkoutInput) (*mcp.CallToolResult, any, error) {
	workoutID, err := s.resolveWorkout(ctx, input.WorkoutID)
	if err != nil {
		return nil, nil, err
	}
	w, err := s.repo.FinishWorkout(ctx, workoutID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to finish workout: %w", err)
	}
	return nil, workoutOutput{
		Workout: &w,
		Message: fmt.Sprintf("Finished %s after %s", w.Name, w.Duration(*w.EndedAt).Round(time.Second)),
	}, nil
}

func (s *Server) handleListTemplates(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, any, error) {
	summaries, err := s.repo.TemplateSummaries(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return nil, templatesOutput{Templates: summaries}, nil
}

func (s *Server) handleGetMuscles(ctx context.Context, req *mcp.CallToolRequest, input getMusclesInput) (*mcp.CallToolResult, musclesOutput, error) {
	var (
		primary, secondary []models.MuscleGroup
		err                error
	)
	switch {
	case input.WorkoutID != "":
		workoutID, rerr := s.repo.ResolveWorkoutID(ctx, input.WorkoutID)
		if rerr != nil {
			return nil, musclesOutput{}, fmt.Errorf("workout not found: %s", input.WorkoutID)
		}
		primary, secondary, err = s.repo.WorkoutMuscles(ctx, workoutID)
	case len(input.ExerciseIDs) > 0:
		primary, secondary, err = s.repo.MuscleGroups(ctx, input.ExerciseIDs)
	default:
		return nil, musclesOutput{}, errors.New("workout_id or exercise_ids is required")
	}
	if err != nil {
		return nil, musclesOutput{}, fmt.Errorf("failed to aggregate muscles: %w", err)
	}
	return nil, musclesOutput{Primary: primary, Secondary: secondary}, nil
}
