// ABOUTME: Export and import of workout history and templates.
// ABOUTME: Supports JSON, YAML, and Markdown export formats; imports JSON.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/lift/internal/models"
	"gopkg.in/yaml.v3"
)

// ExportData represents the full export format.
type ExportData struct {
	Version    string           `json:"version" yaml:"version"`
	ExportedAt time.Time        `json:"exported_at" yaml:"exported_at"`
	Tool       string           `json:"tool" yaml:"tool"`
	Workouts   []WorkoutExport  `json:"workouts" yaml:"workouts"`
	Templates  []TemplateExport `json:"templates" yaml:"templates"`
}

// WorkoutExport is one workout aggregate.
type WorkoutExport struct {
	Workout   models.Workout               `json:"workout" yaml:"workout"`
	Exercises []models.FullWorkoutExercise `json:"exercises" yaml:"exercises"`
}

// TemplateExport is one template aggregate.
type TemplateExport struct {
	Template  models.Template               `json:"template" yaml:"template"`
	Exercises []models.FullTemplateExercise `json:"exercises" yaml:"exercises"`
}

// GetAllData retrieves every finished workout and every template for export.
func (d *DB) GetAllData(ctx context.Context) (*ExportData, error) {
	workouts, err := d.ListWorkouts(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	templates, err := d.ListTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	data := &ExportData{
		Version:    "1.0",
		ExportedAt: time.Now().UTC(),
		Tool:       "lift",
		Workouts:   make([]WorkoutExport, 0, len(workouts)),
		Templates:  make([]TemplateExport, 0, len(templates)),
	}
	for _, w := range workouts {
		exercises, err := d.WorkoutExercises(ctx, w.ID)
		if err != nil {
			return nil, fmt.Errorf("list workout exercises: %w", err)
		}
		data.Workouts = append(data.Workouts, WorkoutExport{Workout: w, Exercises: exercises})
	}
	for _, t := range templates {
		exercises, err := d.TemplateExercises(ctx, t.ID)
		if err != nil {
			return nil, fmt.Errorf("list template exercises: %w", err)
		}
		data.Templates = append(data.Templates, TemplateExport{Template: t, Exercises: exercises})
	}
	return data, nil
}

// ImportData restores aggregates from an export. Each aggregate is written in
// its own transaction; rows with existing IDs are overwritten. Creation and
// modification dates come from the export.
func (d *DB) ImportData(ctx context.Context, data *ExportData) error {
	for _, t := range data.Templates {
		if _, err := d.saveTemplateChanges(ctx, TemplateChanges{Template: t.Template, Exercises: t.Exercises}, true); err != nil {
			return fmt.Errorf("import template %s: %w", t.Template.ID, err)
		}
	}
	for _, w := range data.Workouts {
		if _, err := d.saveWorkoutChanges(ctx, WorkoutChanges{Workout: w.Workout, Exercises: w.Exercises}, true); err != nil {
			return fmt.Errorf("import workout %s: %w", w.Workout.ID, err)
		}
	}
	return nil
}

// ExportJSON exports all data as JSON.
func (d *DB) ExportJSON(ctx context.Context) ([]byte, error) {
	data, err := d.GetAllData(ctx)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// ExportYAML exports all data as YAML.
func (d *DB) ExportYAML(ctx context.Context) ([]byte, error) {
	data, err := d.GetAllData(ctx)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(data)
}

// ExportMarkdown renders finished workouts since the given time as Markdown
// tables, one per exercise.
func (d *DB) ExportMarkdown(ctx context.Context, since *time.Time) (string, error) {
	workouts, err := d.ListWorkouts(ctx, 0)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	now := time.Now()
	sb.WriteString(fmt.Sprintf("# Workout Log - %s\n\n", now.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC3339)))

	names := map[string]string{}
	for _, w := range workouts {
		if since != nil && w.EndedAt.Before(*since) {
			continue
		}
		exercises, err := d.WorkoutExercises(ctx, w.ID)
		if err != nil {
			return "", err
		}

		sb.WriteString(fmt.Sprintf("## %s - %s\n\n", w.EndedAt.Format("2006-01-02 15:04"), w.Name))
		if w.Notes != "" {
			sb.WriteString(w.Notes + "\n\n")
		}
		for _, ex := range exercises {
			name, ok := names[ex.Exercise.ExerciseID]
			if !ok {
				if name, err = d.ExerciseName(ctx, ex.Exercise.ExerciseID); err != nil {
					name = ex.Exercise.ExerciseID
				}
				names[ex.Exercise.ExerciseID] = name
			}
			sb.WriteString(fmt.Sprintf("### %s\n\n", name))
			sb.WriteString("| Set | Type | Weight | Reps | Done |\n")
			sb.WriteString("|-----|------|--------|------|------|\n")
			for _, s := range ex.Sets {
				done := ""
				if s.IsDone {
					done = "x"
				}
				sb.WriteString(fmt.Sprintf("| %d | %s | %.1f kg | %d | %s |\n",
					s.Order+1, s.Type, s.Weight, s.Reps, done))
			}
			sb.WriteString("\n")
		}
	}
	return sb.String(), nil
}

// ImportJSON imports data from JSON bytes.
func (d *DB) ImportJSON(ctx context.Context, data []byte) error {
	var exportData ExportData
	if err := json.Unmarshal(data, &exportData); err != nil {
		return fmt.Errorf("unmarshal JSON: %w", err)
	}
	return d.ImportData(ctx, &exportData)
}
