// ABOUTME: Versioned schema migrations tracked with PRAGMA user_version.
// ABOUTME: Each pending step runs in one transaction; re-running is a no-op.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"
)

// migration is one ordered schema step.
type migration struct {
	version int
	name    string
	ddl     string
}

var migrations = []migration{
	{version: 1, name: "initial schema", ddl: schemaV1},
}

func latestVersion() int {
	return migrations[len(migrations)-1].version
}

func schemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

// migrate applies every migration newer than the stored version.
// A store written by a newer binary is rejected.
func migrate(ctx context.Context, db *sql.DB, log *logrus.Entry) error {
	current, err := schemaVersion(ctx, db)
	if err != nil {
		return err
	}
	if current > latestVersion() {
		return fmt.Errorf("schema version %d is newer than supported version %d", current, latestVersion())
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := applyMigration(ctx, db, m); err != nil {
			return err
		}
		log.WithFields(logrus.Fields{"version": m.version, "name": m.name}).Info("applied schema migration")
	}
	return nil
}

func applyMigration(ctx context.Context, db *sql.DB, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %d: %w", m.version, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, m.ddl); err != nil {
		return fmt.Errorf("apply migration %d (%s): %w", m.version, m.name, err)
	}
	// PRAGMA does not accept bound parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
		return fmt.Errorf("record schema version %d: %w", m.version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %d: %w", m.version, err)
	}
	return nil
}
