// ABOUTME: Read projections that assemble workout and template aggregates.
// ABOUTME: Previous-set matching, muscle aggregation, and working-set ordinals.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/harperreed/lift/internal/models"
)

// OngoingWorkout returns the workout without an end date, or nil when none is open.
func (d *DB) OngoingWorkout(ctx context.Context) (*models.Workout, error) {
	row := d.reader.QueryRowContext(ctx, `
		SELECT `+workoutColumns+` FROM workouts
		WHERE ended_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1`)
	w, err := scanWorkout(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ongoing workout: %w", err)
	}
	return &w, nil
}

// WorkoutExercises returns a workout's exercises in position order, each with
// its sets in position order.
func (d *DB) WorkoutExercises(ctx context.Context, workoutID uuid.UUID) ([]models.FullWorkoutExercise, error) {
	return fullWorkoutExercises(ctx, d.reader, workoutID)
}

func fullWorkoutExercises(ctx context.Context, q querier, workoutID uuid.UUID) ([]models.FullWorkoutExercise, error) {
	exercises, err := listWorkoutExercises(ctx, q, workoutID)
	if err != nil {
		return nil, err
	}

	out := make([]models.FullWorkoutExercise, 0, len(exercises))
	for _, we := range exercises {
		sets, err := listSets(ctx, q, we.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, models.FullWorkoutExercise{Exercise: we, Sets: sets})
	}
	return out, nil
}

func listWorkoutExercises(ctx context.Context, q querier, workoutID uuid.UUID) ([]models.WorkoutExercise, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, workout_id, exercise_id, position, notes
		FROM workout_exercises WHERE workout_id = ?
		ORDER BY position ASC`, workoutID.String())
	if err != nil {
		return nil, fmt.Errorf("list workout exercises: %w", err)
	}
	defer rows.Close()

	var out []models.WorkoutExercise
	for rows.Next() {
		we, err := scanWorkoutExercise(rows)
		if err != nil {
			return nil, fmt.Errorf("scan workout exercise: %w", err)
		}
		out = append(out, we)
	}
	return out, rows.Err()
}

// TemplateExercises returns a template's exercises in position order, each
// with its prescribed sets in position order.
func (d *DB) TemplateExercises(ctx context.Context, templateID uuid.UUID) ([]models.FullTemplateExercise, error) {
	return fullTemplateExercises(ctx, d.reader, templateID)
}

func fullTemplateExercises(ctx context.Context, q querier, templateID uuid.UUID) ([]models.FullTemplateExercise, error) {
	exercises, err := listTemplateExercises(ctx, q, templateID)
	if err != nil {
		return nil, err
	}

	out := make([]models.FullTemplateExercise, 0, len(exercises))
	for _, te := range exercises {
		sets, err := listTemplateSets(ctx, q, te.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, models.FullTemplateExercise{Exercise: te, Sets: sets})
	}
	return out, nil
}

// PreviousSet finds the historical counterpart of set: same exercise, same
// position, same set type, marked done, in another workout exercise whose
// workout has ended. The most recently ended workout wins. It returns nil
// when nothing matches.
func (d *DB) PreviousSet(ctx context.Context, set models.PerformedSet) (*models.PerformedSet, error) {
	row := d.reader.QueryRowContext(ctx, `
		SELECT es.id, es.workout_exercise_id, es.reps, es.weight, es.set_type,
			es.rpe, es.notes, es.position, es.is_done
		FROM exercise_sets es
		JOIN workout_exercises we ON we.id = es.workout_exercise_id
		JOIN workouts w ON w.id = we.workout_id
		WHERE we.exercise_id = (SELECT exercise_id FROM workout_exercises WHERE id = ?)
			AND we.id != ?
			AND es.position = ?
			AND es.set_type = ?
			AND es.is_done = 1
			AND w.ended_at IS NOT NULL
		ORDER BY w.ended_at DESC
		LIMIT 1`,
		set.WorkoutExerciseID.String(), set.WorkoutExerciseID.String(), set.Order, string(set.Type))
	prev, err := scanSet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("previous set: %w", err)
	}
	return &prev, nil
}

// SetsWithPrevious returns each set of a workout exercise with its previous
// set and working-set ordinal.
func (d *DB) SetsWithPrevious(ctx context.Context, workoutExerciseID uuid.UUID) ([]models.SetWithPrevious, error) {
	sets, err := d.ListSets(ctx, workoutExerciseID)
	if err != nil {
		return nil, err
	}

	out := make([]models.SetWithPrevious, 0, len(sets))
	for _, s := range sets {
		prev, err := d.PreviousSet(ctx, s)
		if err != nil {
			return nil, err
		}
		out = append(out, models.SetWithPrevious{
			Current:        s,
			Previous:       prev,
			WorkingOrdinal: models.WorkingSetOrdinal(sets, s),
		})
	}
	return out, nil
}

// WorkingSetOrdinal counts working sets before set within its workout exercise.
func (d *DB) WorkingSetOrdinal(ctx context.Context, set models.PerformedSet) (int, error) {
	var n int
	err := d.reader.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM exercise_sets
		WHERE workout_exercise_id = ? AND position < ? AND set_type = ?`,
		set.WorkoutExerciseID.String(), set.Order, string(models.SetWorking)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("working set ordinal: %w", err)
	}
	return n, nil
}

// MuscleGroups returns the sorted unions of primary and secondary muscles
// trained by exerciseIDs.
func (d *DB) MuscleGroups(ctx context.Context, exerciseIDs []string) (primary, secondary []models.MuscleGroup, err error) {
	if primary, err = d.distinctMuscles(ctx, TablePrimaryMuscles, exerciseIDs); err != nil {
		return nil, nil, err
	}
	if secondary, err = d.distinctMuscles(ctx, TableSecondaryMuscles, exerciseIDs); err != nil {
		return nil, nil, err
	}
	return primary, secondary, nil
}

// WorkoutMuscles aggregates the muscles of every exercise in a workout.
func (d *DB) WorkoutMuscles(ctx context.Context, workoutID uuid.UUID) (primary, secondary []models.MuscleGroup, err error) {
	exercises, err := listWorkoutExercises(ctx, d.reader, workoutID)
	if err != nil {
		return nil, nil, err
	}
	ids := make([]string, 0, len(exercises))
	for _, we := range exercises {
		ids = append(ids, we.ExerciseID)
	}
	return d.MuscleGroups(ctx, ids)
}

// TemplateMuscles aggregates the muscles of every exercise in a template.
func (d *DB) TemplateMuscles(ctx context.Context, templateID uuid.UUID) (primary, secondary []models.MuscleGroup, err error) {
	exercises, err := listTemplateExercises(ctx, d.reader, templateID)
	if err != nil {
		return nil, nil, err
	}
	ids := make([]string, 0, len(exercises))
	for _, te := range exercises {
		ids = append(ids, te.ExerciseID)
	}
	return d.MuscleGroups(ctx, ids)
}

func (d *DB) distinctMuscles(ctx context.Context, table string, exerciseIDs []string) ([]models.MuscleGroup, error) {
	groups := []models.MuscleGroup{}
	if len(exerciseIDs) == 0 {
		return groups, nil
	}

	placeholders := make([]string, len(exerciseIDs))
	args := make([]any, len(exerciseIDs))
	for i, id := range exerciseIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	names, err := d.orderedStrings(ctx, `
		SELECT DISTINCT muscle_group FROM `+table+`
		WHERE exercise_id IN (`+strings.Join(placeholders, ", ")+`)
		ORDER BY muscle_group`, args...)
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", table, err)
	}
	for _, n := range names {
		groups = append(groups, models.MuscleGroup(n))
	}
	return groups, nil
}

// TemplateSummaries lists templates in creation order with the exercise name
// and set count of each template exercise.
func (d *DB) TemplateSummaries(ctx context.Context) ([]models.TemplateSummary, error) {
	templates, err := d.ListTemplates(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.TemplateSummary, 0, len(templates))
	for _, t := range templates {
		rows, err := d.reader.QueryContext(ctx, `
			SELECT te.exercise_id, e.name,
				(SELECT COUNT(*) FROM template_sets ts WHERE ts.template_exercise_id = te.id)
			FROM template_exercises te
			JOIN exercises e ON e.id = te.exercise_id
			WHERE te.template_id = ?
			ORDER BY te.position ASC`, t.ID.String())
		if err != nil {
			return nil, fmt.Errorf("template summary: %w", err)
		}

		summary := models.TemplateSummary{Template: t, Exercises: []models.TemplateExerciseLine{}}
		for rows.Next() {
			var line models.TemplateExerciseLine
			if err := rows.Scan(&line.ExerciseID, &line.ExerciseName, &line.SetCount); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan template summary: %w", err)
			}
			summary.Exercises = append(summary.Exercises, line)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("template summary: %w", err)
		}
		out = append(out, summary)
	}
	return out, nil
}

// latestHistorySets returns the sets of the most recent finished occurrence
// of exerciseID that has at least one done set, skipping the instance
// exclude. It returns nil when the exercise has no such history.
func latestHistorySets(ctx context.Context, q querier, exerciseID string, exclude uuid.UUID) ([]models.PerformedSet, error) {
	var id string
	err := q.QueryRowContext(ctx, `
		SELECT we.id FROM workout_exercises we
		JOIN workouts w ON w.id = we.workout_id
		WHERE we.exercise_id = ?
			AND we.id != ?
			AND w.ended_at IS NOT NULL
			AND EXISTS (SELECT 1 FROM exercise_sets es WHERE es.workout_exercise_id = we.id AND es.is_done = 1)
		ORDER BY w.ended_at DESC, we.position ASC
		LIMIT 1`, exerciseID, exclude.String()).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest history: %w", err)
	}

	weID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse workout exercise ID: %w", err)
	}
	return listSets(ctx, q, weID)
}
