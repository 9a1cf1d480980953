// ABOUTME: Workout and WorkoutExercise CRUD operations for SQLite storage.
// ABOUTME: Deletes cascade through workout exercises to their sets.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/lift/internal/models"
)

// workoutExerciseTables is what any workout exercise insert or delete touches,
// including the frequency counter maintained by triggers.
var workoutExerciseTables = []string{TableWorkoutExercises, TableExerciseSets, TableExercises}

const workoutColumns = `id, name, notes, created_at, modified_at, ended_at`

// StartWorkout inserts a new in-progress workout. It does not check for an
// existing ongoing workout; callers keep at most one open.
func (d *DB) StartWorkout(ctx context.Context, name, notes string) (models.Workout, error) {
	w := models.NewWorkout(name, notes)
	err := d.withTx(ctx, "start workout", []string{TableWorkouts}, func(tx *sql.Tx) error {
		return insertWorkout(ctx, tx, w)
	})
	if err != nil {
		return models.Workout{}, err
	}
	return w, nil
}

// GetWorkout retrieves a workout by ID.
func (d *DB) GetWorkout(ctx context.Context, id uuid.UUID) (models.Workout, error) {
	return getWorkout(ctx, d.reader, id)
}

func getWorkout(ctx context.Context, q querier, id uuid.UUID) (models.Workout, error) {
	row := q.QueryRowContext(ctx, `SELECT `+workoutColumns+` FROM workouts WHERE id = ?`, id.String())
	w, err := scanWorkout(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Workout{}, notFound("get workout", ErrWorkoutNotFound, id)
	}
	if err != nil {
		return models.Workout{}, fmt.Errorf("get workout: %w", err)
	}
	return w, nil
}

// ListWorkouts returns finished workouts, most recently ended first.
func (d *DB) ListWorkouts(ctx context.Context, limit int) ([]models.Workout, error) {
	rows, err := d.reader.QueryContext(ctx, `
		SELECT `+workoutColumns+` FROM workouts
		WHERE ended_at IS NOT NULL
		ORDER BY ended_at DESC
		LIMIT ?`, sqlLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	defer rows.Close()

	var out []models.Workout
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, fmt.Errorf("scan workout: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// UpdateWorkout saves name, notes, and end date, touching the modification date.
func (d *DB) UpdateWorkout(ctx context.Context, w models.Workout) (models.Workout, error) {
	w.ModifiedAt = time.Now().UTC()
	err := d.withTx(ctx, "update workout", []string{TableWorkouts}, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE workouts SET name = ?, notes = ?, modified_at = ?, ended_at = ? WHERE id = ?`,
			w.Name, w.Notes, formatTime(w.ModifiedAt), formatNullTime(w.EndedAt), w.ID.String())
		if err != nil {
			return fmt.Errorf("update workout: %w", err)
		}
		return requireAffected(res, ErrWorkoutNotFound, w.ID)
	})
	if err != nil {
		return models.Workout{}, err
	}
	return w, nil
}

// FinishWorkout stamps the end date, closing an ongoing workout.
func (d *DB) FinishWorkout(ctx context.Context, id uuid.UUID) (models.Workout, error) {
	w, err := d.GetWorkout(ctx, id)
	if err != nil {
		return models.Workout{}, err
	}
	now := time.Now().UTC()
	w.EndedAt = &now
	return d.UpdateWorkout(ctx, w)
}

// DeleteWorkout removes a workout; its exercises and sets cascade.
func (d *DB) DeleteWorkout(ctx context.Context, id uuid.UUID) error {
	tables := append([]string{TableWorkouts}, workoutExerciseTables...)
	return d.withTx(ctx, "delete workout", tables, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM workouts WHERE id = ?`, id.String())
		if err != nil {
			return fmt.Errorf("delete workout: %w", err)
		}
		return requireAffected(res, ErrWorkoutNotFound, id)
	})
}

// ResolveWorkoutID finds the full ID from an ID or unique prefix.
func (d *DB) ResolveWorkoutID(ctx context.Context, idOrPrefix string) (uuid.UUID, error) {
	return d.resolveID(ctx, TableWorkouts, idOrPrefix, ErrWorkoutNotFound)
}

// ResolveTemplateID finds the full ID from an ID or unique prefix.
func (d *DB) ResolveTemplateID(ctx context.Context, idOrPrefix string) (uuid.UUID, error) {
	return d.resolveID(ctx, TableTemplates, idOrPrefix, ErrTemplateNotFound)
}

// ResolveWorkoutExerciseID finds the full ID from an ID or unique prefix.
func (d *DB) ResolveWorkoutExerciseID(ctx context.Context, idOrPrefix string) (uuid.UUID, error) {
	return d.resolveID(ctx, TableWorkoutExercises, idOrPrefix, ErrWorkoutExerciseNotFound)
}

// ResolveSetID finds the full ID from an ID or unique prefix.
func (d *DB) ResolveSetID(ctx context.Context, idOrPrefix string) (uuid.UUID, error) {
	return d.resolveID(ctx, TableExerciseSets, idOrPrefix, ErrSetNotFound)
}

func (d *DB) resolveID(ctx context.Context, table, idOrPrefix string, sentinel error) (uuid.UUID, error) {
	if len(idOrPrefix) == 36 && strings.Count(idOrPrefix, "-") == 4 {
		id, err := uuid.Parse(idOrPrefix)
		if err != nil {
			return uuid.Nil, fmt.Errorf("parse ID %s: %w", idOrPrefix, err)
		}
		return id, nil
	}

	// Literal comparison so % and _ in a typed prefix match only themselves.
	rows, err := d.reader.QueryContext(ctx,
		`SELECT id FROM `+table+` WHERE substr(id, 1, length(?)) = ?`, idOrPrefix, idOrPrefix)
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolve ID: %w", err)
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return uuid.Nil, fmt.Errorf("scan ID: %w", err)
		}
		matches = append(matches, id)
	}
	if err := rows.Err(); err != nil {
		return uuid.Nil, fmt.Errorf("resolve ID: %w", err)
	}

	if len(matches) == 0 {
		return uuid.Nil, notFound("resolve ID", sentinel, idOrPrefix)
	}
	if len(matches) > 1 {
		return uuid.Nil, fmt.Errorf("ambiguous prefix %s: matches multiple records", idOrPrefix)
	}
	return uuid.Parse(matches[0])
}

// AddExercisesToWorkout appends exercises after the current last position,
// keeping the order of ids.
func (d *DB) AddExercisesToWorkout(ctx context.Context, workoutID uuid.UUID, ids []string) ([]models.WorkoutExercise, error) {
	var added []models.WorkoutExercise
	err := d.withTx(ctx, "add exercises to workout", workoutExerciseTables, func(tx *sql.Tx) error {
		var err error
		added, err = appendWorkoutExercises(ctx, tx, workoutID, ids)
		return err
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

func appendWorkoutExercises(ctx context.Context, tx *sql.Tx, workoutID uuid.UUID, ids []string) ([]models.WorkoutExercise, error) {
	if _, err := getWorkout(ctx, tx, workoutID); err != nil {
		return nil, err
	}
	next, err := nextPosition(ctx, tx, `SELECT MAX(position) FROM workout_exercises WHERE workout_id = ?`, workoutID)
	if err != nil {
		return nil, err
	}

	added := make([]models.WorkoutExercise, 0, len(ids))
	for i, exerciseID := range ids {
		we := models.WorkoutExercise{
			ID:         uuid.New(),
			WorkoutID:  workoutID,
			ExerciseID: exerciseID,
			Order:      next + i,
		}
		if err := upsertWorkoutExercise(ctx, tx, we); err != nil {
			return nil, err
		}
		added = append(added, we)
	}
	return added, nil
}

// GetWorkoutExercise retrieves a workout exercise by ID.
func (d *DB) GetWorkoutExercise(ctx context.Context, id uuid.UUID) (models.WorkoutExercise, error) {
	return getWorkoutExercise(ctx, d.reader, id)
}

func getWorkoutExercise(ctx context.Context, q querier, id uuid.UUID) (models.WorkoutExercise, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, workout_id, exercise_id, position, notes
		FROM workout_exercises WHERE id = ?`, id.String())
	we, err := scanWorkoutExercise(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.WorkoutExercise{}, notFound("get workout exercise", ErrWorkoutExerciseNotFound, id)
	}
	if err != nil {
		return models.WorkoutExercise{}, fmt.Errorf("get workout exercise: %w", err)
	}
	return we, nil
}

// UpdateWorkoutExercise saves notes and position of a workout exercise.
func (d *DB) UpdateWorkoutExercise(ctx context.Context, we models.WorkoutExercise) error {
	return d.withTx(ctx, "update workout exercise", workoutExerciseTables, func(tx *sql.Tx) error {
		if _, err := getWorkoutExercise(ctx, tx, we.ID); err != nil {
			return err
		}
		return upsertWorkoutExercise(ctx, tx, we)
	})
}

// DeleteWorkoutExercise removes one exercise from its workout, cascading to
// its sets, and closes the gap in exercise positions.
func (d *DB) DeleteWorkoutExercise(ctx context.Context, id uuid.UUID) error {
	return d.withTx(ctx, "delete workout exercise", workoutExerciseTables, func(tx *sql.Tx) error {
		we, err := getWorkoutExercise(ctx, tx, id)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM workout_exercises WHERE id = ?`, id.String()); err != nil {
			return fmt.Errorf("delete workout exercise: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE workout_exercises SET position = position - 1
			WHERE workout_id = ? AND position > ?`, we.WorkoutID.String(), we.Order)
		if err != nil {
			return fmt.Errorf("reorder workout exercises: %w", err)
		}
		return nil
	})
}

func insertWorkout(ctx context.Context, q querier, w models.Workout) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO workouts (`+workoutColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)`,
		w.ID.String(), w.Name, w.Notes,
		formatTime(w.CreatedAt), formatTime(w.ModifiedAt), formatNullTime(w.EndedAt),
	)
	if err != nil {
		return fmt.Errorf("insert workout: %w", err)
	}
	return nil
}

func upsertWorkout(ctx context.Context, q querier, w models.Workout) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO workouts (`+workoutColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			notes = excluded.notes,
			modified_at = excluded.modified_at,
			ended_at = excluded.ended_at`,
		w.ID.String(), w.Name, w.Notes,
		formatTime(w.CreatedAt), formatTime(w.ModifiedAt), formatNullTime(w.EndedAt),
	)
	if err != nil {
		return fmt.Errorf("save workout: %w", err)
	}
	return nil
}

func upsertWorkoutExercise(ctx context.Context, q querier, we models.WorkoutExercise) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO workout_exercises (id, workout_id, exercise_id, position, notes)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			workout_id = excluded.workout_id,
			exercise_id = excluded.exercise_id,
			position = excluded.position,
			notes = excluded.notes`,
		we.ID.String(), we.WorkoutID.String(), we.ExerciseID, we.Order, nullString(we.Notes),
	)
	if err != nil {
		return fmt.Errorf("save workout exercise %s: %w", we.ExerciseID, err)
	}
	return nil
}

// nextPosition returns MAX(position)+1 for the query, or 0 when empty.
func nextPosition(ctx context.Context, q querier, query string, parentID uuid.UUID) (int, error) {
	var last sql.NullInt64
	if err := q.QueryRowContext(ctx, query, parentID.String()).Scan(&last); err != nil {
		return 0, fmt.Errorf("next position: %w", err)
	}
	if !last.Valid {
		return 0, nil
	}
	return int(last.Int64) + 1, nil
}

func requireAffected(res sql.Result, sentinel error, id any) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %v", sentinel, id)
	}
	return nil
}

func scanWorkout(s scanner) (models.Workout, error) {
	var (
		w                     models.Workout
		id, created, modified string
		ended                 sql.NullString
	)
	if err := s.Scan(&id, &w.Name, &w.Notes, &created, &modified, &ended); err != nil {
		return models.Workout{}, err
	}

	var err error
	if w.ID, err = uuid.Parse(id); err != nil {
		return models.Workout{}, fmt.Errorf("parse workout ID: %w", err)
	}
	if w.CreatedAt, err = parseTime(created); err != nil {
		return models.Workout{}, err
	}
	if w.ModifiedAt, err = parseTime(modified); err != nil {
		return models.Workout{}, err
	}
	if w.EndedAt, err = parseNullTime(ended); err != nil {
		return models.Workout{}, err
	}
	return w, nil
}

func scanWorkoutExercise(s scanner) (models.WorkoutExercise, error) {
	var (
		we            models.WorkoutExercise
		id, workoutID string
		notes         sql.NullString
	)
	if err := s.Scan(&id, &workoutID, &we.ExerciseID, &we.Order, &notes); err != nil {
		return models.WorkoutExercise{}, err
	}

	var err error
	if we.ID, err = uuid.Parse(id); err != nil {
		return models.WorkoutExercise{}, fmt.Errorf("parse workout exercise ID: %w", err)
	}
	if we.WorkoutID, err = uuid.Parse(workoutID); err != nil {
		return models.WorkoutExercise{}, fmt.Errorf("parse workout ID: %w", err)
	}
	we.Notes = stringPtr(notes)
	return we, nil
}
