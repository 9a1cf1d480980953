// ABOUTME: Performed set operations for workout exercises.
// ABOUTME: Appends seeded sets and keeps positions dense after deletes.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/harperreed/lift/internal/models"
)

const setColumns = `id, workout_exercise_id, reps, weight, set_type, rpe, notes, position, is_done`

// AddSet appends a set to a workout exercise, seeded with the reps, weight,
// and type of its last set, or 0/0/working when it has none.
func (d *DB) AddSet(ctx context.Context, workoutExerciseID uuid.UUID) (models.PerformedSet, error) {
	return d.AddSetWith(ctx, workoutExerciseID, nil)
}

// AddSetWith appends a seeded set like AddSet after edit has adjusted its
// values. The set's ID, parent, and position are not editable.
func (d *DB) AddSetWith(ctx context.Context, workoutExerciseID uuid.UUID, edit func(*models.PerformedSet)) (models.PerformedSet, error) {
	var set models.PerformedSet
	err := d.withTx(ctx, "add set", []string{TableExerciseSets}, func(tx *sql.Tx) error {
		if _, err := getWorkoutExercise(ctx, tx, workoutExerciseID); err != nil {
			return err
		}
		sets, err := listSets(ctx, tx, workoutExerciseID)
		if err != nil {
			return err
		}
		seeded := models.NextPerformedSet(workoutExerciseID, sets)
		set = seeded
		if edit != nil {
			edit(&set)
			set.ID, set.WorkoutExerciseID, set.Order = seeded.ID, seeded.WorkoutExerciseID, seeded.Order
		}
		return upsertSet(ctx, tx, set)
	})
	if err != nil {
		return models.PerformedSet{}, err
	}
	return set, nil
}

// GetSet retrieves a performed set by ID.
func (d *DB) GetSet(ctx context.Context, id uuid.UUID) (models.PerformedSet, error) {
	return getSet(ctx, d.reader, id)
}

func getSet(ctx context.Context, q querier, id uuid.UUID) (models.PerformedSet, error) {
	row := q.QueryRowContext(ctx, `SELECT `+setColumns+` FROM exercise_sets WHERE id = ?`, id.String())
	s, err := scanSet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PerformedSet{}, notFound("get set", ErrSetNotFound, id)
	}
	if err != nil {
		return models.PerformedSet{}, fmt.Errorf("get set: %w", err)
	}
	return s, nil
}

// UpdateSet saves reps, weight, type, RPE, notes, and completion of an existing set.
func (d *DB) UpdateSet(ctx context.Context, set models.PerformedSet) error {
	return d.withTx(ctx, "update set", []string{TableExerciseSets}, func(tx *sql.Tx) error {
		if _, err := getSet(ctx, tx, set.ID); err != nil {
			return err
		}
		return upsertSet(ctx, tx, set)
	})
}

// DeleteSet removes a set and shifts every later sibling down one position.
func (d *DB) DeleteSet(ctx context.Context, set models.PerformedSet) error {
	return d.withTx(ctx, "delete set", []string{TableExerciseSets}, func(tx *sql.Tx) error {
		stored, err := getSet(ctx, tx, set.ID)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM exercise_sets WHERE id = ?`, stored.ID.String()); err != nil {
			return fmt.Errorf("delete set: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE exercise_sets SET position = position - 1
			WHERE workout_exercise_id = ? AND position > ?`,
			stored.WorkoutExerciseID.String(), stored.Order)
		if err != nil {
			return fmt.Errorf("reorder sets: %w", err)
		}
		return nil
	})
}

// ListSets returns the sets of a workout exercise in position order.
func (d *DB) ListSets(ctx context.Context, workoutExerciseID uuid.UUID) ([]models.PerformedSet, error) {
	return listSets(ctx, d.reader, workoutExerciseID)
}

func listSets(ctx context.Context, q querier, workoutExerciseID uuid.UUID) ([]models.PerformedSet, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+setColumns+` FROM exercise_sets
		WHERE workout_exercise_id = ?
		ORDER BY position ASC`, workoutExerciseID.String())
	if err != nil {
		return nil, fmt.Errorf("list sets: %w", err)
	}
	defer rows.Close()

	sets := []models.PerformedSet{}
	for rows.Next() {
		s, err := scanSet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan set: %w", err)
		}
		sets = append(sets, s)
	}
	return sets, rows.Err()
}

func upsertSet(ctx context.Context, q querier, s models.PerformedSet) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO exercise_sets (`+setColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			workout_exercise_id = excluded.workout_exercise_id,
			reps = excluded.reps,
			weight = excluded.weight,
			set_type = excluded.set_type,
			rpe = excluded.rpe,
			notes = excluded.notes,
			position = excluded.position,
			is_done = excluded.is_done`,
		s.ID.String(), s.WorkoutExerciseID.String(), s.Reps, s.Weight, string(s.Type),
		nullInt(s.RPE), nullString(s.Notes), s.Order, s.IsDone,
	)
	if err != nil {
		return fmt.Errorf("save set: %w", err)
	}
	return nil
}

// copySets inserts fresh, not-done copies of sets under workoutExerciseID.
func copySets(ctx context.Context, q querier, workoutExerciseID uuid.UUID, sets []models.PerformedSet) ([]models.PerformedSet, error) {
	copied := make([]models.PerformedSet, 0, len(sets))
	for _, s := range sets {
		s.ID = uuid.New()
		s.WorkoutExerciseID = workoutExerciseID
		s.IsDone = false
		if err := upsertSet(ctx, q, s); err != nil {
			return nil, err
		}
		copied = append(copied, s)
	}
	return copied, nil
}

func scanSet(s scanner) (models.PerformedSet, error) {
	var (
		set          models.PerformedSet
		id, parentID string
		setType      string
		rpe          sql.NullInt64
		notes        sql.NullString
	)
	if err := s.Scan(&id, &parentID, &set.Reps, &set.Weight, &setType, &rpe, &notes, &set.Order, &set.IsDone); err != nil {
		return models.PerformedSet{}, err
	}

	var err error
	if set.ID, err = uuid.Parse(id); err != nil {
		return models.PerformedSet{}, fmt.Errorf("parse set ID: %w", err)
	}
	if set.WorkoutExerciseID, err = uuid.Parse(parentID); err != nil {
		return models.PerformedSet{}, fmt.Errorf("parse workout exercise ID: %w", err)
	}
	set.Type = models.SetType(setType)
	set.RPE = intPtr(rpe)
	set.Notes = stringPtr(notes)
	return set, nil
}
