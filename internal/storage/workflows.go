// ABOUTME: Multi-statement transactional workflows over workout and template aggregates.
// ABOUTME: Template expansion, history-seeded adds and replaces, and diff-and-flush saves.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/lift/internal/models"
	"github.com/sirupsen/logrus"
)

// WorkoutChanges is a buffered edit session on one workout.
type WorkoutChanges struct {
	Workout          models.Workout
	DeletedExercises []uuid.UUID
	DeletedSets      []uuid.UUID
	// Exercises is the complete current state; slice order is position order.
	// Rows with uuid.Nil IDs are new.
	Exercises []models.FullWorkoutExercise
}

// TemplateChanges is a buffered edit session on one template.
type TemplateChanges struct {
	Template         models.Template
	DeletedExercises []uuid.UUID
	DeletedSets      []uuid.UUID
	Exercises        []models.FullTemplateExercise
}

// StartWorkoutFromTemplate creates an ongoing workout that copies the
// template's name, notes, exercises, and sets. Each prescribed set becomes a
// not-done set with reps at the fixed count or the lower bound of its range.
func (d *DB) StartWorkoutFromTemplate(ctx context.Context, templateID uuid.UUID) (models.Workout, error) {
	var w models.Workout
	tables := append([]string{TableWorkouts}, workoutExerciseTables...)
	err := d.withTx(ctx, "start workout from template", tables, func(tx *sql.Tx) error {
		t, err := getTemplate(ctx, tx, templateID)
		if err != nil {
			return err
		}
		exercises, err := fullTemplateExercises(ctx, tx, templateID)
		if err != nil {
			return err
		}

		w = models.NewWorkout(t.Name, t.Notes)
		if err := insertWorkout(ctx, tx, w); err != nil {
			return err
		}

		for _, te := range exercises {
			we := models.WorkoutExercise{
				ID:         uuid.New(),
				WorkoutID:  w.ID,
				ExerciseID: te.Exercise.ExerciseID,
				Order:      te.Exercise.Order,
				Notes:      te.Exercise.Notes,
			}
			if err := upsertWorkoutExercise(ctx, tx, we); err != nil {
				return err
			}
			for _, ps := range te.Sets {
				if err := upsertSet(ctx, tx, ps.Instantiate(we.ID)); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return models.Workout{}, err
	}

	d.log.WithFields(logrus.Fields{"template_id": templateID, "workout_id": w.ID}).Debug("started workout from template")
	return w, nil
}

// AddExercisesWithPreviousSets appends exercises like AddExercisesToWorkout and
// seeds each with not-done copies of the sets from its latest finished
// occurrence that has completed sets.
func (d *DB) AddExercisesWithPreviousSets(ctx context.Context, workoutID uuid.UUID, ids []string) ([]models.FullWorkoutExercise, error) {
	var out []models.FullWorkoutExercise
	err := d.withTx(ctx, "add exercises with previous sets", workoutExerciseTables, func(tx *sql.Tx) error {
		added, err := appendWorkoutExercises(ctx, tx, workoutID, ids)
		if err != nil {
			return err
		}
		for _, we := range added {
			history, err := latestHistorySets(ctx, tx, we.ExerciseID, we.ID)
			if err != nil {
				return err
			}
			sets, err := copySets(ctx, tx, we.ID, history)
			if err != nil {
				return err
			}
			out = append(out, models.FullWorkoutExercise{Exercise: we, Sets: sets})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReplaceExercise swaps the catalog exercise of a workout exercise, drops its
// sets, and reseeds it from the new exercise's latest finished history.
func (d *DB) ReplaceExercise(ctx context.Context, we models.WorkoutExercise, exerciseID string) (models.FullWorkoutExercise, error) {
	var out models.FullWorkoutExercise
	err := d.withTx(ctx, "replace exercise", workoutExerciseTables, func(tx *sql.Tx) error {
		stored, err := getWorkoutExercise(ctx, tx, we.ID)
		if err != nil {
			return err
		}
		if err := requireExercise(ctx, tx, exerciseID); err != nil {
			return err
		}

		stored.ExerciseID = exerciseID
		if err := upsertWorkoutExercise(ctx, tx, stored); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM exercise_sets WHERE workout_exercise_id = ?`, stored.ID.String()); err != nil {
			return fmt.Errorf("clear sets: %w", err)
		}

		history, err := latestHistorySets(ctx, tx, exerciseID, stored.ID)
		if err != nil {
			return err
		}
		sets, err := copySets(ctx, tx, stored.ID, history)
		if err != nil {
			return err
		}
		out = models.FullWorkoutExercise{Exercise: stored, Sets: sets}
		return nil
	})
	if err != nil {
		return models.FullWorkoutExercise{}, err
	}
	return out, nil
}

func requireExercise(ctx context.Context, q querier, id string) error {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM exercises WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound("require exercise", ErrExerciseNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("require exercise: %w", err)
	}
	return nil
}

// SaveWorkoutChanges flushes an edit session in one transaction: the workout is
// saved with a fresh modification date, marked rows are deleted, and every
// exercise and set in the current state is upserted under its parent with
// positions taken from slice order. The persisted state is returned with all
// IDs assigned, so saving it again changes nothing but the modification date.
func (d *DB) SaveWorkoutChanges(ctx context.Context, c WorkoutChanges) (WorkoutChanges, error) {
	return d.saveWorkoutChanges(ctx, c, false)
}

// saveWorkoutChanges keeps a non-zero ModifiedAt when keepModified is set.
func (d *DB) saveWorkoutChanges(ctx context.Context, c WorkoutChanges, keepModified bool) (WorkoutChanges, error) {
	now := time.Now().UTC()
	w := c.Workout
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = now
	}
	if !keepModified || w.ModifiedAt.IsZero() {
		w.ModifiedAt = now
	}

	saved := WorkoutChanges{Workout: w, Exercises: make([]models.FullWorkoutExercise, 0, len(c.Exercises))}
	tables := append([]string{TableWorkouts}, workoutExerciseTables...)
	err := d.withTx(ctx, "save workout changes", tables, func(tx *sql.Tx) error {
		if err := upsertWorkout(ctx, tx, w); err != nil {
			return err
		}
		// Deletes only reach rows owned by this workout.
		for _, id := range c.DeletedExercises {
			_, err := tx.ExecContext(ctx, `DELETE FROM workout_exercises WHERE id = ? AND workout_id = ?`,
				id.String(), w.ID.String())
			if err != nil {
				return fmt.Errorf("delete workout exercise %s: %w", id, err)
			}
		}
		for _, id := range c.DeletedSets {
			_, err := tx.ExecContext(ctx, `
				DELETE FROM exercise_sets WHERE id = ? AND workout_exercise_id IN
					(SELECT id FROM workout_exercises WHERE workout_id = ?)`,
				id.String(), w.ID.String())
			if err != nil {
				return fmt.Errorf("delete set %s: %w", id, err)
			}
		}

		for i, item := range c.Exercises {
			we := item.Exercise
			if we.ID == uuid.Nil {
				we.ID = uuid.New()
			}
			we.WorkoutID = w.ID
			we.Order = i
			if err := upsertWorkoutExercise(ctx, tx, we); err != nil {
				return err
			}

			sets := make([]models.PerformedSet, 0, len(item.Sets))
			for j, s := range item.Sets {
				if s.ID == uuid.Nil {
					s.ID = uuid.New()
				}
				s.WorkoutExerciseID = we.ID
				s.Order = j
				if err := upsertSet(ctx, tx, s); err != nil {
					return err
				}
				sets = append(sets, s)
			}
			saved.Exercises = append(saved.Exercises, models.FullWorkoutExercise{Exercise: we, Sets: sets})
		}
		return nil
	})
	if err != nil {
		return WorkoutChanges{}, err
	}
	return saved, nil
}

// SaveTemplateChanges is the template counterpart of SaveWorkoutChanges.
func (d *DB) SaveTemplateChanges(ctx context.Context, c TemplateChanges) (TemplateChanges, error) {
	return d.saveTemplateChanges(ctx, c, false)
}

func (d *DB) saveTemplateChanges(ctx context.Context, c TemplateChanges, keepModified bool) (TemplateChanges, error) {
	now := time.Now().UTC()
	t := c.Template
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if !keepModified || t.ModifiedAt.IsZero() {
		t.ModifiedAt = now
	}

	saved := TemplateChanges{Template: t, Exercises: make([]models.FullTemplateExercise, 0, len(c.Exercises))}
	err := d.withTx(ctx, "save template changes", templateTables, func(tx *sql.Tx) error {
		if err := upsertTemplate(ctx, tx, t); err != nil {
			return err
		}
		for _, id := range c.DeletedExercises {
			_, err := tx.ExecContext(ctx, `DELETE FROM template_exercises WHERE id = ? AND template_id = ?`,
				id.String(), t.ID.String())
			if err != nil {
				return fmt.Errorf("delete template exercise %s: %w", id, err)
			}
		}
		for _, id := range c.DeletedSets {
			_, err := tx.ExecContext(ctx, `
				DELETE FROM template_sets WHERE id = ? AND template_exercise_id IN
					(SELECT id FROM template_exercises WHERE template_id = ?)`,
				id.String(), t.ID.String())
			if err != nil {
				return fmt.Errorf("delete template set %s: %w", id, err)
			}
		}

		for i, item := range c.Exercises {
			te := item.Exercise
			if te.ID == uuid.Nil {
				te.ID = uuid.New()
			}
			te.TemplateID = t.ID
			te.Order = i
			if err := upsertTemplateExercise(ctx, tx, te); err != nil {
				return err
			}

			sets := make([]models.PrescribedSet, 0, len(item.Sets))
			for j, s := range item.Sets {
				if s.ID == uuid.Nil {
					s.ID = uuid.New()
				}
				s.TemplateExerciseID = te.ID
				s.Order = j
				if err := upsertTemplateSet(ctx, tx, s); err != nil {
					return err
				}
				sets = append(sets, s)
			}
			saved.Exercises = append(saved.Exercises, models.FullTemplateExercise{Exercise: te, Sets: sets})
		}
		return nil
	})
	if err != nil {
		return TemplateChanges{}, err
	}
	return saved, nil
}
