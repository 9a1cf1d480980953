// ABOUTME: Workout template, template exercise, and prescribed set operations.
// ABOUTME: Mirrors the workout aggregate with rep targets stored as fixed or range.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/lift/internal/models"
)

var templateTables = []string{TableTemplates, TableTemplateExercises, TableTemplateSets}

const (
	templateColumns    = `id, name, notes, created_at, modified_at`
	templateSetColumns = `id, template_exercise_id, rep_kind, rep_min, rep_max, weight, set_type, rpe, notes, position`
)

// CreateTemplate inserts an empty template.
func (d *DB) CreateTemplate(ctx context.Context, name, notes string) (models.Template, error) {
	t := models.NewTemplate(name, notes)
	err := d.withTx(ctx, "create template", []string{TableTemplates}, func(tx *sql.Tx) error {
		return upsertTemplate(ctx, tx, t)
	})
	if err != nil {
		return models.Template{}, err
	}
	return t, nil
}

// GetTemplate retrieves a template by ID.
func (d *DB) GetTemplate(ctx context.Context, id uuid.UUID) (models.Template, error) {
	return getTemplate(ctx, d.reader, id)
}

func getTemplate(ctx context.Context, q querier, id uuid.UUID) (models.Template, error) {
	row := q.QueryRowContext(ctx, `SELECT `+templateColumns+` FROM workout_templates WHERE id = ?`, id.String())
	t, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Template{}, notFound("get template", ErrTemplateNotFound, id)
	}
	if err != nil {
		return models.Template{}, fmt.Errorf("get template: %w", err)
	}
	return t, nil
}

// ListTemplates returns every template in creation order.
func (d *DB) ListTemplates(ctx context.Context) ([]models.Template, error) {
	rows, err := d.reader.QueryContext(ctx, `
		SELECT `+templateColumns+` FROM workout_templates ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var out []models.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// UpdateTemplate saves name and notes, touching the modification date.
func (d *DB) UpdateTemplate(ctx context.Context, t models.Template) (models.Template, error) {
	t.ModifiedAt = time.Now().UTC()
	err := d.withTx(ctx, "update template", []string{TableTemplates}, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE workout_templates SET name = ?, notes = ?, modified_at = ? WHERE id = ?`,
			t.Name, t.Notes, formatTime(t.ModifiedAt), t.ID.String())
		if err != nil {
			return fmt.Errorf("update template: %w", err)
		}
		return requireAffected(res, ErrTemplateNotFound, t.ID)
	})
	if err != nil {
		return models.Template{}, err
	}
	return t, nil
}

// DeleteTemplate removes a template; its exercises and sets cascade.
func (d *DB) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	return d.withTx(ctx, "delete template", templateTables, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM workout_templates WHERE id = ?`, id.String())
		if err != nil {
			return fmt.Errorf("delete template: %w", err)
		}
		return requireAffected(res, ErrTemplateNotFound, id)
	})
}

// AddExercisesToTemplate appends exercises after the current last position,
// keeping the order of ids.
func (d *DB) AddExercisesToTemplate(ctx context.Context, templateID uuid.UUID, ids []string) ([]models.TemplateExercise, error) {
	full, err := d.AddExercisesToTemplateWithSets(ctx, templateID, ids, nil)
	if err != nil {
		return nil, err
	}
	added := make([]models.TemplateExercise, 0, len(full))
	for _, fte := range full {
		added = append(added, fte.Exercise)
	}
	return added, nil
}

// AddExercisesToTemplateWithSets appends exercises like AddExercisesToTemplate
// and gives each a copy of the prescription in sets, all in one transaction.
func (d *DB) AddExercisesToTemplateWithSets(ctx context.Context, templateID uuid.UUID, ids []string, sets []models.PrescribedSet) ([]models.FullTemplateExercise, error) {
	var added []models.FullTemplateExercise
	err := d.withTx(ctx, "add exercises to template", templateTables, func(tx *sql.Tx) error {
		if _, err := getTemplate(ctx, tx, templateID); err != nil {
			return err
		}
		next, err := nextPosition(ctx, tx, `SELECT MAX(position) FROM template_exercises WHERE template_id = ?`, templateID)
		if err != nil {
			return err
		}
		for i, exerciseID := range ids {
			te := models.TemplateExercise{
				ID:         uuid.New(),
				TemplateID: templateID,
				ExerciseID: exerciseID,
				Order:      next + i,
			}
			if err := upsertTemplateExercise(ctx, tx, te); err != nil {
				return err
			}

			prescribed := make([]models.PrescribedSet, 0, len(sets))
			for j, s := range sets {
				s.ID = uuid.New()
				s.TemplateExerciseID = te.ID
				s.Order = j
				if err := upsertTemplateSet(ctx, tx, s); err != nil {
					return err
				}
				prescribed = append(prescribed, s)
			}
			added = append(added, models.FullTemplateExercise{Exercise: te, Sets: prescribed})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// GetTemplateExercise retrieves a template exercise by ID.
func (d *DB) GetTemplateExercise(ctx context.Context, id uuid.UUID) (models.TemplateExercise, error) {
	return getTemplateExercise(ctx, d.reader, id)
}

func getTemplateExercise(ctx context.Context, q querier, id uuid.UUID) (models.TemplateExercise, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, template_id, exercise_id, position, notes
		FROM template_exercises WHERE id = ?`, id.String())
	te, err := scanTemplateExercise(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.TemplateExercise{}, notFound("get template exercise", ErrTemplateExerciseNotFound, id)
	}
	if err != nil {
		return models.TemplateExercise{}, fmt.Errorf("get template exercise: %w", err)
	}
	return te, nil
}

// AddTemplateSet appends a prescribed set, copying the last prescription.
func (d *DB) AddTemplateSet(ctx context.Context, templateExerciseID uuid.UUID) (models.PrescribedSet, error) {
	var set models.PrescribedSet
	err := d.withTx(ctx, "add template set", []string{TableTemplateSets}, func(tx *sql.Tx) error {
		if _, err := getTemplateExercise(ctx, tx, templateExerciseID); err != nil {
			return err
		}
		sets, err := listTemplateSets(ctx, tx, templateExerciseID)
		if err != nil {
			return err
		}
		set = models.NextPrescribedSet(templateExerciseID, sets)
		return upsertTemplateSet(ctx, tx, set)
	})
	if err != nil {
		return models.PrescribedSet{}, err
	}
	return set, nil
}

// UpdateTemplateSet saves an existing prescribed set.
func (d *DB) UpdateTemplateSet(ctx context.Context, set models.PrescribedSet) error {
	return d.withTx(ctx, "update template set", []string{TableTemplateSets}, func(tx *sql.Tx) error {
		if _, err := getTemplateSet(ctx, tx, set.ID); err != nil {
			return err
		}
		return upsertTemplateSet(ctx, tx, set)
	})
}

// DeleteTemplateSet removes a prescribed set and closes the position gap.
func (d *DB) DeleteTemplateSet(ctx context.Context, set models.PrescribedSet) error {
	return d.withTx(ctx, "delete template set", []string{TableTemplateSets}, func(tx *sql.Tx) error {
		stored, err := getTemplateSet(ctx, tx, set.ID)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM template_sets WHERE id = ?`, stored.ID.String()); err != nil {
			return fmt.Errorf("delete template set: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE template_sets SET position = position - 1
			WHERE template_exercise_id = ? AND position > ?`,
			stored.TemplateExerciseID.String(), stored.Order)
		if err != nil {
			return fmt.Errorf("reorder template sets: %w", err)
		}
		return nil
	})
}

func getTemplateSet(ctx context.Context, q querier, id uuid.UUID) (models.PrescribedSet, error) {
	row := q.QueryRowContext(ctx, `SELECT `+templateSetColumns+` FROM template_sets WHERE id = ?`, id.String())
	s, err := scanTemplateSet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PrescribedSet{}, notFound("get template set", ErrSetNotFound, id)
	}
	if err != nil {
		return models.PrescribedSet{}, fmt.Errorf("get template set: %w", err)
	}
	return s, nil
}

func listTemplateExercises(ctx context.Context, q querier, templateID uuid.UUID) ([]models.TemplateExercise, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, template_id, exercise_id, position, notes
		FROM template_exercises WHERE template_id = ?
		ORDER BY position ASC`, templateID.String())
	if err != nil {
		return nil, fmt.Errorf("list template exercises: %w", err)
	}
	defer rows.Close()

	var out []models.TemplateExercise
	for rows.Next() {
		te, err := scanTemplateExercise(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template exercise: %w", err)
		}
		out = append(out, te)
	}
	return out, rows.Err()
}

func listTemplateSets(ctx context.Context, q querier, templateExerciseID uuid.UUID) ([]models.PrescribedSet, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+templateSetColumns+` FROM template_sets
		WHERE template_exercise_id = ?
		ORDER BY position ASC`, templateExerciseID.String())
	if err != nil {
		return nil, fmt.Errorf("list template sets: %w", err)
	}
	defer rows.Close()

	sets := []models.PrescribedSet{}
	for rows.Next() {
		s, err := scanTemplateSet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template set: %w", err)
		}
		sets = append(sets, s)
	}
	return sets, rows.Err()
}

func upsertTemplate(ctx context.Context, q querier, t models.Template) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO workout_templates (`+templateColumns+`)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			notes = excluded.notes,
			modified_at = excluded.modified_at`,
		t.ID.String(), t.Name, t.Notes, formatTime(t.CreatedAt), formatTime(t.ModifiedAt),
	)
	if err != nil {
		return fmt.Errorf("save template: %w", err)
	}
	return nil
}

func upsertTemplateExercise(ctx context.Context, q querier, te models.TemplateExercise) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO template_exercises (id, template_id, exercise_id, position, notes)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			template_id = excluded.template_id,
			exercise_id = excluded.exercise_id,
			position = excluded.position,
			notes = excluded.notes`,
		te.ID.String(), te.TemplateID.String(), te.ExerciseID, te.Order, nullString(te.Notes),
	)
	if err != nil {
		return fmt.Errorf("save template exercise %s: %w", te.ExerciseID, err)
	}
	return nil
}

func upsertTemplateSet(ctx context.Context, q querier, s models.PrescribedSet) error {
	kind := s.Reps.Kind
	if kind == "" {
		kind = models.RepKindFixed
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO template_sets (`+templateSetColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			template_exercise_id = excluded.template_exercise_id,
			rep_kind = excluded.rep_kind,
			rep_min = excluded.rep_min,
			rep_max = excluded.rep_max,
			weight = excluded.weight,
			set_type = excluded.set_type,
			rpe = excluded.rpe,
			notes = excluded.notes,
			position = excluded.position`,
		s.ID.String(), s.TemplateExerciseID.String(), string(kind),
		nullInt(s.Reps.Min), nullInt(s.Reps.Max), nullFloat(s.Weight), string(s.Type),
		nullInt(s.RPE), nullString(s.Notes), s.Order,
	)
	if err != nil {
		return fmt.Errorf("save template set: %w", err)
	}
	return nil
}

func scanTemplate(s scanner) (models.Template, error) {
	var (
		t                     models.Template
		id, created, modified string
	)
	if err := s.Scan(&id, &t.Name, &t.Notes, &created, &modified); err != nil {
		return models.Template{}, err
	}

	var err error
	if t.ID, err = uuid.Parse(id); err != nil {
		return models.Template{}, fmt.Errorf("parse template ID: %w", err)
	}
	if t.CreatedAt, err = parseTime(created); err != nil {
		return models.Template{}, err
	}
	if t.ModifiedAt, err = parseTime(modified); err != nil {
		return models.Template{}, err
	}
	return t, nil
}

func scanTemplateExercise(s scanner) (models.TemplateExercise, error) {
	var (
		te             models.TemplateExercise
		id, templateID string
		notes          sql.NullString
	)
	if err := s.Scan(&id, &templateID, &te.ExerciseID, &te.Order, &notes); err != nil {
		return models.TemplateExercise{}, err
	}

	var err error
	if te.ID, err = uuid.Parse(id); err != nil {
		return models.TemplateExercise{}, fmt.Errorf("parse template exercise ID: %w", err)
	}
	if te.TemplateID, err = uuid.Parse(templateID); err != nil {
		return models.TemplateExercise{}, fmt.Errorf("parse template ID: %w", err)
	}
	te.Notes = stringPtr(notes)
	return te, nil
}

func scanTemplateSet(s scanner) (models.PrescribedSet, error) {
	var (
		set            models.PrescribedSet
		id, parentID   string
		kind, setType  string
		repMin, repMax sql.NullInt64
		weight         sql.NullFloat64
		rpe            sql.NullInt64
		notes          sql.NullString
	)
	if err := s.Scan(&id, &parentID, &kind, &repMin, &repMax, &weight, &setType, &rpe, &notes, &set.Order); err != nil {
		return models.PrescribedSet{}, err
	}

	var err error
	if set.ID, err = uuid.Parse(id); err != nil {
		return models.PrescribedSet{}, fmt.Errorf("parse template set ID: %w", err)
	}
	if set.TemplateExerciseID, err = uuid.Parse(parentID); err != nil {
		return models.PrescribedSet{}, fmt.Errorf("parse template exercise ID: %w", err)
	}
	set.Reps = models.RepType{Kind: models.RepKind(kind), Min: intPtr(repMin), Max: intPtr(repMax)}
	set.Weight = floatPtr(weight)
	set.Type = models.SetType(setType)
	set.RPE = intPtr(rpe)
	set.Notes = stringPtr(notes)
	return set, nil
}
