// ABOUTME: SQLite schema definition for the exercise catalog and workout aggregates.
// ABOUTME: Tables, indices, the FTS5 exercise index, and frequency triggers.
package storage

// Table names, used as change feed keys.
const (
	TableExercises         = "exercises"
	TablePrimaryMuscles    = "exercise_primary_muscles"
	TableSecondaryMuscles  = "exercise_secondary_muscles"
	TableInstructions      = "exercise_instructions"
	TableImages            = "exercise_images"
	TableWorkouts          = "workouts"
	TableWorkoutExercises  = "workout_exercises"
	TableExerciseSets      = "exercise_sets"
	TableTemplates         = "workout_templates"
	TableTemplateExercises = "template_exercises"
	TableTemplateSets      = "template_sets"
)

// catalogTables are every table a catalog import writes.
var catalogTables = []string{
	TableExercises, TablePrimaryMuscles, TableSecondaryMuscles, TableInstructions, TableImages,
}

const schemaV1 = `
CREATE TABLE exercises (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	force TEXT,
	level TEXT NOT NULL,
	mechanic TEXT,
	equipment TEXT,
	category TEXT NOT NULL,
	frequency INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE exercise_primary_muscles (
	exercise_id TEXT NOT NULL REFERENCES exercises(id) ON DELETE CASCADE,
	muscle_group TEXT NOT NULL,
	PRIMARY KEY (exercise_id, muscle_group)
);

CREATE TABLE exercise_secondary_muscles (
	exercise_id TEXT NOT NULL REFERENCES exercises(id) ON DELETE CASCADE,
	muscle_group TEXT NOT NULL,
	PRIMARY KEY (exercise_id, muscle_group)
);

CREATE TABLE exercise_instructions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	exercise_id TEXT NOT NULL REFERENCES exercises(id) ON DELETE CASCADE,
	step_number INTEGER NOT NULL,
	instruction TEXT NOT NULL,
	UNIQUE (exercise_id, step_number)
);

CREATE TABLE exercise_images (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	exercise_id TEXT NOT NULL REFERENCES exercises(id) ON DELETE CASCADE,
	order_index INTEGER NOT NULL,
	image_path TEXT NOT NULL,
	UNIQUE (exercise_id, order_index)
);

CREATE TABLE workouts (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	notes TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	modified_at TEXT NOT NULL,
	ended_at TEXT
);

CREATE TABLE workout_exercises (
	id TEXT PRIMARY KEY,
	workout_id TEXT NOT NULL REFERENCES workouts(id) ON DELETE CASCADE,
	exercise_id TEXT NOT NULL REFERENCES exercises(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	notes TEXT
);

CREATE TABLE exercise_sets (
	id TEXT PRIMARY KEY,
	workout_exercise_id TEXT NOT NULL REFERENCES workout_exercises(id) ON DELETE CASCADE,
	reps INTEGER NOT NULL DEFAULT 0,
	weight REAL NOT NULL DEFAULT 0,
	set_type TEXT NOT NULL DEFAULT 'working',
	rpe INTEGER,
	notes TEXT,
	position INTEGER NOT NULL,
	is_done INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE workout_templates (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	notes TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	modified_at TEXT NOT NULL
);

CREATE TABLE template_exercises (
	id TEXT PRIMARY KEY,
	template_id TEXT NOT NULL REFERENCES workout_templates(id) ON DELETE CASCADE,
	exercise_id TEXT NOT NULL REFERENCES exercises(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	notes TEXT
);

CREATE TABLE template_sets (
	id TEXT PRIMARY KEY,
	template_exercise_id TEXT NOT NULL REFERENCES template_exercises(id) ON DELETE CASCADE,
	rep_kind TEXT NOT NULL CHECK (rep_kind IN ('reps', 'range')),
	rep_min INTEGER,
	rep_max INTEGER,
	weight REAL,
	set_type TEXT NOT NULL DEFAULT 'working',
	rpe INTEGER,
	notes TEXT,
	position INTEGER NOT NULL
);

CREATE INDEX idx_exercises_name ON exercises(name);
CREATE INDEX idx_exercises_category ON exercises(category);
CREATE INDEX idx_exercises_equipment ON exercises(equipment);
CREATE INDEX idx_primary_muscles_group ON exercise_primary_muscles(muscle_group);
CREATE INDEX idx_secondary_muscles_group ON exercise_secondary_muscles(muscle_group);
CREATE INDEX idx_workouts_created_at ON workouts(created_at);
CREATE INDEX idx_workout_exercises_workout ON workout_exercises(workout_id);
CREATE INDEX idx_workout_exercises_exercise ON workout_exercises(exercise_id);
CREATE INDEX idx_exercise_sets_workout_exercise ON exercise_sets(workout_exercise_id);
CREATE INDEX idx_template_exercises_template ON template_exercises(template_id);
CREATE INDEX idx_template_exercises_exercise ON template_exercises(exercise_id);
CREATE INDEX idx_template_sets_template_exercise ON template_sets(template_exercise_id);

CREATE VIRTUAL TABLE exercise_fts USING fts5(
	id UNINDEXED,
	name,
	content='exercises',
	content_rowid='rowid',
	tokenize='porter unicode61'
);

CREATE TRIGGER exercises_fts_ai AFTER INSERT ON exercises BEGIN
	INSERT INTO exercise_fts(rowid, id, name) VALUES (new.rowid, new.id, new.name);
END;

CREATE TRIGGER exercises_fts_ad AFTER DELETE ON exercises BEGIN
	INSERT INTO exercise_fts(exercise_fts, rowid, id, name) VALUES ('delete', old.rowid, old.id, old.name);
END;

CREATE TRIGGER exercises_fts_au AFTER UPDATE OF id, name ON exercises BEGIN
	INSERT INTO exercise_fts(exercise_fts, rowid, id, name) VALUES ('delete', old.rowid, old.id, old.name);
	INSERT INTO exercise_fts(rowid, id, name) VALUES (new.rowid, new.id, new.name);
END;

CREATE TRIGGER workout_exercises_frequency_ai AFTER INSERT ON workout_exercises BEGIN
	UPDATE exercises SET frequency = frequency + 1 WHERE id = new.exercise_id;
END;

CREATE TRIGGER workout_exercises_frequency_ad AFTER DELETE ON workout_exercises BEGIN
	UPDATE exercises SET frequency = MAX(frequency - 1, 0) WHERE id = old.exercise_id;
END;

CREATE TRIGGER workout_exercises_frequency_au AFTER UPDATE OF exercise_id ON workout_exercises
WHEN old.exercise_id != new.exercise_id BEGIN
	UPDATE exercises SET frequency = MAX(frequency - 1, 0) WHERE id = old.exercise_id;
	UPDATE exercises SET frequency = frequency + 1 WHERE id = new.exercise_id;
END;
`
