// ABOUTME: Exercise catalog reads, full-text search, and bulk import.
// ABOUTME: Search pages through the FTS5 index in stable name order.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/harperreed/lift/internal/models"
)

const closestNamesLimit = 3

const exerciseSummaryColumns = `e.id, e.name, e.force, e.level, e.mechanic, e.equipment, e.category, e.frequency,
	(SELECT group_concat(pm.muscle_group, '|') FROM exercise_primary_muscles pm WHERE pm.exercise_id = e.id)`

// ExerciseFilter narrows FindExercises. Empty fields match everything.
type ExerciseFilter struct {
	Muscles   []models.MuscleGroup
	Level     models.Level
	Equipment models.Equipment
	Category  models.Category
	Limit     int
}

// matchAllPrefixes turns free text into an FTS5 query that requires every
// word as a prefix. It returns "" when text has no searchable words.
func matchAllPrefixes(text string) string {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	terms := make([]string, 0, len(words))
	for _, w := range words {
		terms = append(terms, `"`+strings.ReplaceAll(w, `"`, `""`)+`"*`)
	}
	return strings.Join(terms, " ")
}

func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

// SearchExercises returns one page of exercises ordered by name. Empty text
// lists the whole catalog; otherwise every word must prefix-match the name.
func (d *DB) SearchExercises(ctx context.Context, text string, limit, offset int) ([]models.ExerciseSummary, error) {
	var (
		query string
		args  []any
	)
	if strings.TrimSpace(text) == "" {
		query = `SELECT ` + exerciseSummaryColumns + ` FROM exercises e
			ORDER BY e.name ASC, e.id ASC LIMIT ? OFFSET ?`
		args = []any{sqlLimit(limit), offset}
	} else {
		pattern := matchAllPrefixes(text)
		if pattern == "" {
			return nil, nil
		}
		query = `SELECT ` + exerciseSummaryColumns + ` FROM exercises e
			WHERE e.rowid IN (SELECT rowid FROM exercise_fts WHERE exercise_fts MATCH ?)
			ORDER BY e.name ASC, e.id ASC LIMIT ? OFFSET ?`
		args = []any{pattern, sqlLimit(limit), offset}
	}

	rows, err := d.reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search exercises: %w", err)
	}
	defer rows.Close()
	return scanExerciseSummaries(rows)
}

// ClosestExerciseNames returns up to three catalog names matching text.
func (d *DB) ClosestExerciseNames(ctx context.Context, text string) ([]string, error) {
	summaries, err := d.SearchExercises(ctx, text, closestNamesLimit, 0)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(summaries))
	for _, s := range summaries {
		names = append(names, s.Name)
	}
	return names, nil
}

// GetExercise returns the bare catalog row.
func (d *DB) GetExercise(ctx context.Context, id string) (*models.Exercise, error) {
	row := d.reader.QueryRowContext(ctx, `
		SELECT id, name, force, level, mechanic, equipment, category, frequency
		FROM exercises WHERE id = ?`, id)
	e, err := scanExercise(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("get exercise", ErrExerciseNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get exercise: %w", err)
	}
	return e, nil
}

// ExerciseName returns the display name for an exercise id.
func (d *DB) ExerciseName(ctx context.Context, id string) (string, error) {
	var name string
	err := d.reader.QueryRowContext(ctx, `SELECT name FROM exercises WHERE id = ?`, id).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", notFound("exercise name", ErrExerciseNotFound, id)
	}
	if err != nil {
		return "", fmt.Errorf("exercise name: %w", err)
	}
	return name, nil
}

// GetExerciseDetail returns an exercise with muscles, instructions, and images.
func (d *DB) GetExerciseDetail(ctx context.Context, id string) (*models.ExerciseDetail, error) {
	e, err := d.GetExercise(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &models.ExerciseDetail{Exercise: *e}
	if detail.PrimaryMuscles, err = d.musclesFor(ctx, TablePrimaryMuscles, id); err != nil {
		return nil, err
	}
	if detail.SecondaryMuscles, err = d.musclesFor(ctx, TableSecondaryMuscles, id); err != nil {
		return nil, err
	}
	if detail.Instructions, err = d.orderedStrings(ctx,
		`SELECT instruction FROM exercise_instructions WHERE exercise_id = ? ORDER BY step_number`, id); err != nil {
		return nil, fmt.Errorf("list instructions: %w", err)
	}
	if detail.Images, err = d.orderedStrings(ctx,
		`SELECT image_path FROM exercise_images WHERE exercise_id = ? ORDER BY order_index`, id); err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	return detail, nil
}

func (d *DB) musclesFor(ctx context.Context, table, exerciseID string) ([]models.MuscleGroup, error) {
	names, err := d.orderedStrings(ctx,
		`SELECT muscle_group FROM `+table+` WHERE exercise_id = ? ORDER BY muscle_group`, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	groups := make([]models.MuscleGroup, 0, len(names))
	for _, n := range names {
		groups = append(groups, models.MuscleGroup(n))
	}
	return groups, nil
}

func (d *DB) orderedStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := d.reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ExercisesForMuscle lists exercises that train muscle as a primary mover.
func (d *DB) ExercisesForMuscle(ctx context.Context, muscle models.MuscleGroup) ([]models.ExerciseSummary, error) {
	return d.FindExercises(ctx, ExerciseFilter{Muscles: []models.MuscleGroup{muscle}})
}

// FindExercises filters the catalog by primary muscle, level, equipment,
// and category. Results are ordered by descending frequency, then name.
func (d *DB) FindExercises(ctx context.Context, f ExerciseFilter) ([]models.ExerciseSummary, error) {
	var (
		where []string
		args  []any
	)
	if len(f.Muscles) > 0 {
		placeholders := make([]string, len(f.Muscles))
		for i, m := range f.Muscles {
			placeholders[i] = "?"
			args = append(args, string(m))
		}
		where = append(where, `e.id IN (SELECT exercise_id FROM exercise_primary_muscles
			WHERE muscle_group IN (`+strings.Join(placeholders, ", ")+`))`)
	}
	if f.Level != "" {
		where = append(where, "e.level = ?")
		args = append(args, string(f.Level))
	}
	if f.Equipment != "" {
		where = append(where, "e.equipment = ?")
		args = append(args, string(f.Equipment))
	}
	if f.Category != "" {
		where = append(where, "e.category = ?")
		args = append(args, string(f.Category))
	}

	query := `SELECT ` + exerciseSummaryColumns + ` FROM exercises e`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY e.frequency DESC, e.name ASC, e.id ASC LIMIT ?"
	args = append(args, sqlLimit(f.Limit))

	rows, err := d.reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find exercises: %w", err)
	}
	defer rows.Close()
	return scanExerciseSummaries(rows)
}

// ImportExercises inserts seeds and their related rows in one transaction.
// Any invalid seed or failed insert rolls back the whole batch.
func (d *DB) ImportExercises(ctx context.Context, seeds []models.ExerciseSeed) (int, error) {
	err := d.withTx(ctx, "import exercises", catalogTables, func(tx *sql.Tx) error {
		for i, seed := range seeds {
			if err := insertSeed(ctx, tx, seed); err != nil {
				return fmt.Errorf("exercise %d (%s): %w", i, seed.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	d.log.WithField("count", len(seeds)).Info("imported exercise catalog")
	return len(seeds), nil
}

func insertSeed(ctx context.Context, tx *sql.Tx, seed models.ExerciseSeed) error {
	if err := validateSeed(seed); err != nil {
		return err
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO exercises (id, name, force, level, mechanic, equipment, category)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		seed.ID, seed.Name, nullString(seed.Force), seed.Level,
		nullString(seed.Mechanic), nullString(seed.Equipment), seed.Category,
	)
	if err != nil {
		return fmt.Errorf("insert exercise: %w", err)
	}

	for _, m := range seed.PrimaryMuscles {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO exercise_primary_muscles (exercise_id, muscle_group) VALUES (?, ?)`, seed.ID, m); err != nil {
			return fmt.Errorf("insert primary muscle %s: %w", m, err)
		}
	}
	for _, m := range seed.SecondaryMuscles {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO exercise_secondary_muscles (exercise_id, muscle_group) VALUES (?, ?)`, seed.ID, m); err != nil {
			return fmt.Errorf("insert secondary muscle %s: %w", m, err)
		}
	}
	for i, text := range seed.Instructions {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO exercise_instructions (exercise_id, step_number, instruction) VALUES (?, ?, ?)`,
			seed.ID, i, text); err != nil {
			return fmt.Errorf("insert instruction %d: %w", i, err)
		}
	}
	for i, path := range seed.Images {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO exercise_images (exercise_id, order_index, image_path) VALUES (?, ?, ?)`,
			seed.ID, i, path); err != nil {
			return fmt.Errorf("insert image %d: %w", i, err)
		}
	}
	return nil
}

func validateSeed(seed models.ExerciseSeed) error {
	switch {
	case seed.ID == "" || seed.Name == "":
		return errors.New("id and name are required")
	case !models.IsValidLevel(seed.Level):
		return fmt.Errorf("invalid level %q", seed.Level)
	case !models.IsValidCategory(seed.Category):
		return fmt.Errorf("invalid category %q", seed.Category)
	case seed.Force != nil && !models.IsValidForce(*seed.Force):
		return fmt.Errorf("invalid force %q", *seed.Force)
	case seed.Mechanic != nil && !models.IsValidMechanic(*seed.Mechanic):
		return fmt.Errorf("invalid mechanic %q", *seed.Mechanic)
	case seed.Equipment != nil && !models.IsValidEquipment(*seed.Equipment):
		return fmt.Errorf("invalid equipment %q", *seed.Equipment)
	}
	for _, m := range append(append([]string{}, seed.PrimaryMuscles...), seed.SecondaryMuscles...) {
		if !models.IsValidMuscleGroup(m) {
			return fmt.Errorf("invalid muscle group %q", m)
		}
	}
	return nil
}

// DeleteExercises removes catalog entries and everything that references them.
func (d *DB) DeleteExercises(ctx context.Context, ids []string) error {
	tables := append(append([]string{}, catalogTables...),
		TableWorkoutExercises, TableExerciseSets, TableTemplateExercises, TableTemplateSets)
	return d.withTx(ctx, "delete exercises", tables, func(tx *sql.Tx) error {
		for _, id := range ids {
			if _, err := tx.ExecContext(ctx, `DELETE FROM exercises WHERE id = ?`, id); err != nil {
				return fmt.Errorf("delete exercise %s: %w", id, err)
			}
		}
		return nil
	})
}

// CountExercises returns the catalog size.
func (d *DB) CountExercises(ctx context.Context) (int, error) {
	var n int
	if err := d.reader.QueryRowContext(ctx, `SELECT COUNT(*) FROM exercises`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count exercises: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExercise(s scanner) (*models.Exercise, error) {
	return scanExerciseRow(s)
}

// scanExerciseRow reads the eight exercise columns followed by extra.
func scanExerciseRow(s scanner, extra ...any) (*models.Exercise, error) {
	var (
		e         models.Exercise
		force     sql.NullString
		mechanic  sql.NullString
		equipment sql.NullString
		level     string
		category  string
	)
	dest := append([]any{&e.ID, &e.Name, &force, &level, &mechanic, &equipment, &category, &e.Frequency}, extra...)
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}
	e.Level = models.Level(level)
	e.Category = models.Category(category)
	if force.Valid {
		f := models.Force(force.String)
		e.Force = &f
	}
	if mechanic.Valid {
		m := models.Mechanic(mechanic.String)
		e.Mechanic = &m
	}
	if equipment.Valid {
		eq := models.Equipment(equipment.String)
		e.Equipment = &eq
	}
	return &e, nil
}

func scanExerciseSummaries(rows *sql.Rows) ([]models.ExerciseSummary, error) {
	var out []models.ExerciseSummary
	for rows.Next() {
		var muscles sql.NullString
		e, err := scanExerciseRow(rows, &muscles)
		if err != nil {
			return nil, fmt.Errorf("scan exercise: %w", err)
		}

		summary := models.ExerciseSummary{Exercise: *e, PrimaryMuscles: []models.MuscleGroup{}}
		if muscles.Valid && muscles.String != "" {
			for _, m := range strings.Split(muscles.String, "|") {
				summary.PrimaryMuscles = append(summary.PrimaryMuscles, models.MuscleGroup(m))
			}
			models.SortMuscleGroups(summary.PrimaryMuscles)
		}
		out = append(out, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exercises: %w", err)
	}
	return out, nil
}
