// ABOUTME: Tests for MCP server, tools, and resources.
// ABOUTME: Covers NewServer, tool handlers, and resource handlers against a real store.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harperreed/lift/internal/catalog"
	"github.com/harperreed/lift/internal/models"
	"github.com/harperreed/lift/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// setupTestDB creates a test database with the bundled catalog imported.
func setupTestDB(t *testing.T) *storage.DB {
	t.Helper()

	db, err := storage.Open(context.Background(), filepath.Join(t.TempDir(), "lift.db"), storage.Options{})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	seeds, err := catalog.Load()
	if err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}
	if _, err := db.ImportExercises(context.Background(), seeds); err != nil {
		t.Fatalf("Failed to import catalog: %v", err)
	}
	return db
}

func setupServer(t *testing.T) (*Server, *storage.DB) {
	t.Helper()
	db := setupTestDB(t)
	server, err := NewServer(db, "test")
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return server, db
}

func ptr[T any](v T) *T { return &v }

func TestNewServer(t *testing.T) {
	server, _ := setupServer(t)

	if server.mcpServer == nil {
		t.Error("Expected non-nil mcpServer")
	}
	if server.repo == nil {
		t.Error("Expected non-nil repo")
	}
}

func TestServerSessionAdvertisesToolsAndInstructions(t *testing.T) {
	server, _ := setupServer(t)
	ctx := context.Background()

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	ss, err := server.mcpServer.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server connect failed: %v", err)
	}
	defer ss.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect failed: %v", err)
	}
	defer cs.Close()

	if got := cs.InitializeResult().Instructions; !strings.Contains(got, "search_exercises") {
		t.Errorf("Expected instructions to mention search_exercises, got %q", got)
	}

	tools, err := cs.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("ListTools failed: %v", err)
	}
	if len(tools.Tools) != 11 {
		t.Errorf("Expected 11 tools, got %d", len(tools.Tools))
	}
}

func TestHandleSearchExercises(t *testing.T) {
	server, _ := setupServer(t)
	ctx := context.Background()

	_, out, err := server.handleSearchExercises(ctx, &mcp.CallToolRequest{}, searchExercisesInput{Query: "bench"})
	if err != nil {
		t.Fatalf("handleSearchExercises failed: %v", err)
	}
	if len(out.Exercises) != 3 {
		t.Errorf("Expected 3 bench exercises, got %d", len(out.Exercises))
	}
	for _, ex := range out.Exercises {
		if !strings.Contains(ex.Name, "Bench") {
			t.Errorf("Unexpected result %q", ex.Name)
		}
	}

	_, out, err = server.handleSearchExercises(ctx, &mcp.CallToolRequest{}, searchExercisesInput{Query: "bench", Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("paged search failed: %v", err)
	}
	if len(out.Exercises) != 1 {
		t.Errorf("Expected 1 exercise on second page, got %d", len(out.Exercises))
	}
}

func TestHandleSearchExercisesEmpty(t *testing.T) {
	server, _ := setupServer(t)

	_, out, err := server.handleSearchExercises(context.Background(), &mcp.CallToolRequest{}, searchExercisesInput{Query: "zercher"})
	if err != nil {
		t.Fatalf("handleSearchExercises failed: %v", err)
	}
	if out.Exercises == nil || len(out.Exercises) != 0 {
		t.Errorf("Expected empty non-nil list, got %v", out.Exercises)
	}
	if out.Message != "No exercises found." {
		t.Errorf("Unexpected message %q", out.Message)
	}
}

func TestHandleFindExercises(t *testing.T) {
	server, _ := setupServer(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		input     findExercisesInput
		wantCount int
		errSubstr string
	}{
		{
			name:      "chest with barbell",
			input:     findExercisesInput{Muscles: []string{"chest"}, Equipment: "barbell"},
			wantCount: 2,
		},
		{
			name:      "expert level",
			input:     findExercisesInput{Level: "expert"},
			wantCount: 3,
		},
		{
			name:      "cardio category",
			input:     findExercisesInput{Category: "cardio"},
			wantCount: 2,
		},
		{
			name:      "limit",
			input:     findExercisesInput{Muscles: []string{"chest"}, Limit: 1},
			wantCount: 1,
		},
		{
			name:      "invalid muscle",
			input:     findExercisesInput{Muscles: []string{"wings"}},
			errSubstr: "unknown muscle group",
		},
		{
			name:      "invalid level",
			input:     findExercisesInput{Level: "godlike"},
			errSubstr: "unknown level",
		},
		{
			name:      "invalid equipment",
			input:     findExercisesInput{Equipment: "rock"},
			errSubstr: "unknown equipment",
		},
		{
			name:      "invalid category",
			input:     findExercisesInput{Category: "yoga"},
			errSubstr: "unknown category",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, out, err := server.handleFindExercises(ctx, &mcp.CallToolRequest{}, tt.input)
			if tt.errSubstr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.errSubstr) {
					t.Fatalf("Expected error containing %q, got %v", tt.errSubstr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("handleFindExercises failed: %v", err)
			}
			if len(out.Exercises) != tt.wantCount {
				t.Errorf("Expected %d exercises, got %d", tt.wantCount, len(out.Exercises))
			}
		})
	}
}

func TestHandleGetExercise(t *testing.T) {
	server, _ := setupServer(t)
	ctx := context.Background()

	_, out, err := server.handleGetExercise(ctx, &mcp.CallToolRequest{}, getExerciseInput{ID: "bench-press"})
	if err != nil {
		t.Fatalf("handleGetExercise failed: %v", err)
	}
	detail := out.(*models.ExerciseDetail)
	if detail.Name != "Bench Press" {
		t.Errorf("Expected Bench Press, got %q", detail.Name)
	}
	if len(detail.PrimaryMuscles) != 1 || detail.PrimaryMuscles[0] != models.MuscleChest {
		t.Errorf("Unexpected primary muscles %v", detail.PrimaryMuscles)
	}

	if _, _, err := server.handleGetExercise(ctx, &mcp.CallToolRequest{}, getExerciseInput{ID: "nope"}); err == nil {
		t.Error("Expected error for unknown exercise")
	}
}

func TestWorkoutLifecycle(t *testing.T) {
	server, db := setupServer(t)
	ctx := context.Background()

	_, out, err := server.handleGetOngoingWorkout(ctx, &mcp.CallToolRequest{}, emptyInput{})
	if err != nil {
		t.Fatalf("handleGetOngoingWorkout failed: %v", err)
	}
	if got := out.(workoutOutput); got.Workout != nil || got.Message != "No workout in progress." {
		t.Errorf("Expected no workout, got %+v", got)
	}

	_, out, err = server.handleStartWorkout(ctx, &mcp.CallToolRequest{}, startWorkoutInput{Name: "Push Day"})
	if err != nil {
		t.Fatalf("handleStartWorkout failed: %v", err)
	}
	started := out.(workoutOutput).Workout

	_, _, err = server.handleStartWorkout(ctx, &mcp.CallToolRequest{}, startWorkoutInput{Name: "Second"})
	if !errors.Is(err, ErrWorkoutInProgress) {
		t.Errorf("Expected ErrWorkoutInProgress, got %v", err)
	}

	_, out, err = server.handleAddExercises(ctx, &mcp.CallToolRequest{}, addExercisesInput{ExerciseIDs: []string{"bench-press", "triceps-pushdown"}})
	if err != nil {
		t.Fatalf("handleAddExercises failed: %v", err)
	}
	exercises := out.(workoutOutput).Exercises
	if len(exercises) != 2 {
		t.Fatalf("Expected 2 exercises, got %d", len(exercises))
	}
	if exercises[0].Exercise.ExerciseID != "bench-press" || exercises[1].Exercise.Order != 1 {
		t.Errorf("Unexpected exercise order: %+v", exercises)
	}

	benchID := exercises[0].Exercise.ID.String()[:8]
	_, out, err = server.handleAddSet(ctx, &mcp.CallToolRequest{}, addSetInput{
		WorkoutExerciseID: benchID, Weight: ptr(40.0), Reps: ptr(10), Type: "warmup", Done: true,
	})
	if err != nil {
		t.Fatalf("handleAddSet failed: %v", err)
	}
	if set := out.(setOutput).Set; set.Type != models.SetWarmup || !set.IsDone || set.Order != 0 {
		t.Errorf("Unexpected set %+v", set)
	}

	_, out, err = server.handleAddSet(ctx, &mcp.CallToolRequest{}, addSetInput{
		WorkoutExerciseID: benchID, Weight: ptr(80.0), Reps: ptr(5), Type: "working", Done: true,
	})
	if err != nil {
		t.Fatalf("handleAddSet failed: %v", err)
	}
	if set := out.(setOutput).Set; set.Weight != 80 || set.Reps != 5 || set.Order != 1 {
		t.Errorf("Unexpected set %+v", set)
	}

	sets, err := db.ListSets(ctx, exercises[0].Exercise.ID)
	if err != nil {
		t.Fatalf("ListSets failed: %v", err)
	}
	if len(sets) != 2 || sets[1].Weight != 80 || !sets[1].IsDone {
		t.Errorf("Sets were not persisted: %+v", sets)
	}

	_, out, err = server.handleFinishWorkout(ctx, &mcp.CallToolRequest{}, finishWorkoutInput{})
	if err != nil {
		t.Fatalf("handleFinishWorkout failed: %v", err)
	}
	finished := out.(workoutOutput).Workout
	if finished.ID != started.ID || finished.EndedAt == nil {
		t.Errorf("Expected %s to be finished, got %+v", started.ID, finished)
	}

	if _, _, err := server.handleFinishWorkout(ctx, &mcp.CallToolRequest{}, finishWorkoutInput{}); err == nil {
		t.Error("Expected error when no workout is in progress")
	}

	// A new workout seeded from history copies the finished sets as not done.
	if _, _, err := server.handleStartWorkout(ctx, &mcp.CallToolRequest{}, startWorkoutInput{Name: "Push Again"}); err != nil {
		t.Fatalf("handleStartWorkout failed: %v", err)
	}
	_, out, err = server.handleAddExercises(ctx, &mcp.CallToolRequest{}, addExercisesInput{ExerciseIDs: []string{"bench-press"}, WithPrevious: true})
	if err != nil {
		t.Fatalf("handleAddExercises with previous failed: %v", err)
	}
	seeded := out.(workoutOutput).Exercises[0].Sets
	if len(seeded) != 2 || seeded[1].Weight != 80 || seeded[1].IsDone {
		t.Errorf("Unexpected seeded sets %+v", seeded)
	}
}

func TestHandleStartWorkoutRequiresName(t *testing.T) {
	server, _ := setupServer(t)

	if _, _, err := server.handleStartWorkout(context.Background(), &mcp.CallToolRequest{}, startWorkoutInput{}); err == nil {
		t.Error("Expected error for empty name")
	}
}

func TestHandleAddExercisesErrors(t *testing.T) {
	server, _ := setupServer(t)
	ctx := context.Background()

	if _, _, err := server.handleAddExercises(ctx, &mcp.CallToolRequest{}, addExercisesInput{}); err == nil {
		t.Error("Expected error for empty exercise list")
	}
	if _, _, err := server.handleAddExercises(ctx, &mcp.CallToolRequest{}, addExercisesInput{ExerciseIDs: []string{"plank"}}); err == nil {
		t.Error("Expected error with no workout in progress")
	}
	if _, _, err := server.handleAddExercises(ctx, &mcp.CallToolRequest{}, addExercisesInput{WorkoutID: "ffffffff", ExerciseIDs: []string{"plank"}}); err == nil {
		t.Error("Expected error for unknown workout")
	}

	if _, _, err := server.handleStartWorkout(ctx, &mcp.CallToolRequest{}, startWorkoutInput{Name: "Core"}); err != nil {
		t.Fatalf("handleStartWorkout failed: %v", err)
	}
	_, _, err := server.handleAddExercises(ctx, &mcp.CallToolRequest{}, addExercisesInput{ExerciseIDs: []string{"plank", "not-an-exercise"}})
	if storage.KindOf(err) != storage.KindTransaction {
		t.Errorf("Expected transaction failure, got %v", err)
	}
}

func TestHandleAddSetErrors(t *testing.T) {
	server, _ := setupServer(t)
	ctx := context.Background()

	if _, _, err := server.handleAddSet(ctx, &mcp.CallToolRequest{}, addSetInput{WorkoutExerciseID: "abc", Type: "superset"}); err == nil {
		t.Error("Expected error for invalid set type")
	}
	if _, _, err := server.handleAddSet(ctx, &mcp.CallToolRequest{}, addSetInput{WorkoutExerciseID: "ffffffff"}); err == nil {
		t.Error("Expected error for unknown workout exercise")
	}
}

func TestStartWorkoutFromTemplate(t *testing.T) {
	server, db := setupServer(t)
	ctx := context.Background()

	tmpl, err := db.CreateTemplate(ctx, "Legs", "heavy")
	if err != nil {
		t.Fatalf("CreateTemplate failed: %v", err)
	}
	added, err := db.AddExercisesToTemplate(ctx, tmpl.ID, []string{"barbell-squat", "leg-curl"})
	if err != nil {
		t.Fatalf("AddExercisesToTemplate failed: %v", err)
	}
	set, err := db.AddTemplateSet(ctx, added[0].ID)
	if err != nil {
		t.Fatalf("AddTemplateSet failed: %v", err)
	}
	set.Reps = models.RepRange(6, 8)
	if err := db.UpdateTemplateSet(ctx, set); err != nil {
		t.Fatalf("UpdateTemplateSet failed: %v", err)
	}

	_, out, err := server.handleListTemplates(ctx, &mcp.CallToolRequest{}, emptyInput{})
	if err != nil {
		t.Fatalf("handleListTemplates failed: %v", err)
	}
	templates := out.(templatesOutput).Templates
	if len(templates) != 1 || len(templates[0].Exercises) != 2 || templates[0].Exercises[0].SetCount != 1 {
		t.Errorf("Unexpected template summaries %+v", templates)
	}

	_, out, err = server.handleStartWorkoutFromTemplate(ctx, &mcp.CallToolRequest{}, startFromTemplateInput{TemplateID: tmpl.ID.String()[:8]})
	if err != nil {
		t.Fatalf("handleStartWorkoutFromTemplate failed: %v", err)
	}
	got := out.(workoutOutput)
	if got.Workout.Name != "Legs" || got.Workout.Notes != "heavy" {
		t.Errorf("Unexpected workout %+v", got.Workout)
	}
	if len(got.Exercises) != 2 || len(got.Exercises[0].Sets) != 1 || got.Exercises[0].Sets[0].Reps != 6 {
		t.Errorf("Unexpected expansion %+v", got.Exercises)
	}

	if _, _, err := server.handleStartWorkoutFromTemplate(ctx, &mcp.CallToolRequest{}, startFromTemplateInput{TemplateID: tmpl.ID.String()}); !errors.Is(err, ErrWorkoutInProgress) {
		t.Errorf("Expected ErrWorkoutInProgress, got %v", err)
	}
}

func TestHandleStartWorkoutFromTemplateNotFound(t *testing.T) {
	server, _ := setupServer(t)

	if _, _, err := server.handleStartWorkoutFromTemplate(context.Background(), &mcp.CallToolRequest{}, startFromTemplateInput{TemplateID: "ffffffff"}); err == nil {
		t.Error("Expected error for unknown template")
	}
}

func TestHandleGetMuscles(t *testing.T) {
	server, db := setupServer(t)
	ctx := context.Background()

	_, out, err := server.handleGetMuscles(ctx, &mcp.CallToolRequest{}, getMusclesInput{ExerciseIDs: []string{"bench-press", "pull-up"}})
	if err != nil {
		t.Fatalf("handleGetMuscles failed: %v", err)
	}
	wantPrimary := []models.MuscleGroup{models.MuscleChest, models.MuscleLats}
	if len(out.Primary) != 2 || out.Primary[0] != wantPrimary[0] || out.Primary[1] != wantPrimary[1] {
		t.Errorf("Primary = %v, want %v", out.Primary, wantPrimary)
	}
	if len(out.Secondary) != 4 {
		t.Errorf("Expected 4 secondary muscles, got %v", out.Secondary)
	}

	w, err := db.StartWorkout(ctx, "Arms", "")
	if err != nil {
		t.Fatalf("StartWorkout failed: %v", err)
	}
	if _, err := db.AddExercisesToWorkout(ctx, w.ID, []string{"dumbbell-curl"}); err != nil {
		t.Fatalf("AddExercisesToWorkout failed: %v", err)
	}
	_, out, err = server.handleGetMuscles(ctx, &mcp.CallToolRequest{}, getMusclesInput{WorkoutID: w.ID.String()})
	if err != nil {
		t.Fatalf("handleGetMuscles by workout failed: %v", err)
	}
	if len(out.Primary) != 1 || out.Primary[0] != models.MuscleBiceps {
		t.Errorf("Unexpected primary muscles %v", out.Primary)
	}

	if _, _, err := server.handleGetMuscles(ctx, &mcp.CallToolRequest{}, getMusclesInput{}); err == nil {
		t.Error("Expected error without workout or exercises")
	}
}

func readResource(t *testing.T, result *mcp.ReadResourceResult) map[string]any {
	t.Helper()
	if len(result.Contents) != 1 {
		t.Fatalf("Expected 1 content, got %d", len(result.Contents))
	}
	var data map[string]any
	if err := json.Unmarshal([]byte(result.Contents[0].Text), &data); err != nil {
		t.Fatalf("Failed to parse resource JSON: %v", err)
	}
	return data
}

func TestHandleOngoingWorkoutResource(t *testing.T) {
	server, db := setupServer(t)
	ctx := context.Background()

	result, err := server.handleOngoingWorkoutResource(ctx, &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("handleOngoingWorkoutResource failed: %v", err)
	}
	if data := readResource(t, result); data["workout"] != nil {
		t.Errorf("Expected null workout, got %v", data["workout"])
	}

	w, err := db.StartWorkout(ctx, "Push", "")
	if err != nil {
		t.Fatalf("StartWorkout failed: %v", err)
	}
	added, err := db.AddExercisesToWorkout(ctx, w.ID, []string{"bench-press"})
	if err != nil {
		t.Fatalf("AddExercisesToWorkout failed: %v", err)
	}
	if _, err := db.AddSet(ctx, added[0].ID); err != nil {
		t.Fatalf("AddSet failed: %v", err)
	}

	result, err = server.handleOngoingWorkoutResource(ctx, &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("handleOngoingWorkoutResource failed: %v", err)
	}
	if result.Contents[0].URI != ongoingWorkoutURI {
		t.Errorf("Unexpected URI %q", result.Contents[0].URI)
	}
	data := readResource(t, result)
	exercises := data["exercises"].([]any)
	if len(exercises) != 1 {
		t.Fatalf("Expected 1 exercise, got %d", len(exercises))
	}
	entry := exercises[0].(map[string]any)
	if entry["exercise_name"] != "Bench Press" {
		t.Errorf("Unexpected exercise name %v", entry["exercise_name"])
	}
	if sets := entry["sets"].([]any); len(sets) != 1 {
		t.Errorf("Expected 1 set, got %d", len(sets))
	}
	if primary := data["primary_muscles"].([]any); len(primary) != 1 || primary[0] != "chest" {
		t.Errorf("Unexpected primary muscles %v", primary)
	}
}

func TestHandleTemplatesResource(t *testing.T) {
	server, db := setupServer(t)
	ctx := context.Background()

	result, err := server.handleTemplatesResource(ctx, &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("handleTemplatesResource failed: %v", err)
	}
	if data := readResource(t, result); data["count"].(float64) != 0 {
		t.Errorf("Expected 0 templates, got %v", data["count"])
	}

	if _, err := db.CreateTemplate(ctx, "Upper", ""); err != nil {
		t.Fatalf("CreateTemplate failed: %v", err)
	}
	result, err = server.handleTemplatesResource(ctx, &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("handleTemplatesResource failed: %v", err)
	}
	data := readResource(t, result)
	if data["count"].(float64) != 1 {
		t.Errorf("Expected 1 template, got %v", data["count"])
	}
	if result.Contents[0].URI != templatesURI {
		t.Errorf("Unexpected URI %q", result.Contents[0].URI)
	}
}
