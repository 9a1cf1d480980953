// ABOUTME: MCP resource implementations for the lift workout store.
// ABOUTME: Provides lift://workout/ongoing and lift://templates resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	ongoingWorkoutURI = "lift://workout/ongoing"
	templatesURI      = "lift://templates"
)

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         ongoingWorkoutURI,
		Name:        "Ongoing Workout",
		Description: "The workout in progress with exercises, sets, previous sets, and muscles",
		MIMEType:    "application/json",
	}, s.handleOngoingWorkoutResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         templatesURI,
		Name:        "Workout Templates",
		Description: "Every template with its exercises and set counts",
		MIMEType:    "application/json",
	}, s.handleTemplatesResource)
}

// Resource handlers

func (s *Server) handleOngoingWorkoutResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	w, err := s.repo.OngoingWorkout(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get ongoing workout: %w", err)
	}
	if w == nil {
		return jsonResource(ongoingWorkoutURI, map[string]any{"workout": nil})
	}

	exercises, err := s.repo.WorkoutExercises(ctx, w.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workout exercises: %w", err)
	}

	entries := make([]map[string]any, 0, len(exercises))
	for _, ex := range exercises {
		name, err := s.repo.ExerciseName(ctx, ex.Exercise.ExerciseID)
		if err != nil {
			name = ex.Exercise.ExerciseID
		}
		sets, err := s.repo.SetsWithPrevious(ctx, ex.Exercise.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list sets: %w", err)
		}
		entries = append(entries, map[string]any{
			"id":            ex.Exercise.ID,
			"exercise_id":   ex.Exercise.ExerciseID,
			"exercise_name": name,
			"notes":         ex.Exercise.Notes,
			"sets":          sets,
		})
	}

	primary, secondary, err := s.repo.WorkoutMuscles(ctx, w.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate muscles: %w", err)
	}

	return jsonResource(ongoingWorkoutURI, map[string]any{
		"workout":           w,
		"elapsed":           w.Duration(time.Now()).Round(time.Second).String(),
		"exercises":         entries,
		"primary_muscles":   primary,
		"secondary_muscles": secondary,
	})
}

func (s *Server) handleTemplatesResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	summaries, err := s.repo.TemplateSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return jsonResource(templatesURI, map[string]any{
		"templates": summaries,
		"count":     len(summaries),
	})
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
