// ABOUTME: Bundled exercise catalog and the one-time bulk import workflow.
// ABOUTME: A persisted flag guards the import; failures reset it so the next launch retries.
package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/harperreed/lift/internal/models"
	"github.com/harperreed/lift/internal/storage"
	"github.com/sirupsen/logrus"
)

// ImportCompletedKey is the preference flag set after a successful import.
const ImportCompletedKey = "initial_exercise_import_completed"

//go:embed exercises.json
var seedJSON []byte

// ErrEmptySeed is returned when a seed file decodes to no exercises.
var ErrEmptySeed = errors.New("exercise seed is empty")

// Importer writes catalog seeds in one transaction.
type Importer interface {
	ImportExercises(ctx context.Context, seeds []models.ExerciseSeed) (int, error)
}

// Flags persists boolean preferences outside the database.
type Flags interface {
	Bool(key string) (bool, error)
	SetBool(key string, v bool) error
}

// Load decodes the bundled catalog.
func Load() ([]models.ExerciseSeed, error) {
	return Decode(seedJSON)
}

// Decode parses a catalog seed JSON array.
func Decode(data []byte) ([]models.ExerciseSeed, error) {
	var seeds []models.ExerciseSeed
	if err := json.Unmarshal(data, &seeds); err != nil {
		return nil, fmt.Errorf("decode exercise seed: %w", err)
	}
	if len(seeds) == 0 {
		return nil, ErrEmptySeed
	}
	return seeds, nil
}

// EnsureImported imports the bundled catalog unless the completion flag is
// already set. It returns the number of exercises imported, which is zero
// when the import was skipped.
func EnsureImported(ctx context.Context, store Importer, flags Flags, log *logrus.Entry) (int, error) {
	done, err := flags.Bool(ImportCompletedKey)
	if err != nil {
		return 0, storage.ImportError("read import flag", err)
	}
	if done {
		log.Debug("exercise catalog already imported, skipping")
		return 0, nil
	}

	seeds, err := Load()
	if err != nil {
		return 0, fail(flags, log, err)
	}
	return Import(ctx, store, flags, seeds, log)
}

// Import writes seeds and records completion. On failure nothing is kept,
// the flag is reset to false, and a storage.KindImport error is returned.
func Import(ctx context.Context, store Importer, flags Flags, seeds []models.ExerciseSeed, log *logrus.Entry) (int, error) {
	log.WithField("count", len(seeds)).Info("starting exercise catalog import")

	n, err := store.ImportExercises(ctx, seeds)
	if err != nil {
		return 0, fail(flags, log, err)
	}
	if err := flags.SetBool(ImportCompletedKey, true); err != nil {
		return n, storage.ImportError("record import completion", err)
	}
	return n, nil
}

func fail(flags Flags, log *logrus.Entry, err error) error {
	log.WithError(err).Error("exercise catalog import failed")
	if ferr := flags.SetBool(ImportCompletedKey, false); ferr != nil {
		log.WithError(ferr).Warn("failed to reset import flag")
	}
	return storage.ImportError("import exercise catalog", err)
}
