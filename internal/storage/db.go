// ABOUTME: SQLite database connection and lifecycle management.
// ABOUTME: One serialized writer connection plus a read-only pool, modernc.org/sqlite (pure Go).
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// timeFormat is fixed width so that text comparison orders like time.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Options tunes how a store is opened.
type Options struct {
	// EraseOnSchemaChange deletes the file and recreates it when the stored
	// schema version differs from the latest one. Development use only.
	EraseOnSchemaChange bool
	// BusyTimeout is how long a connection waits on a locked database.
	BusyTimeout time.Duration
}

// DB is the embedded workout store.
type DB struct {
	writer *sql.DB
	reader *sql.DB
	dbPath string
	feed   *Feed
	log    *logrus.Entry
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open opens or creates the store at dbPath and migrates it to the latest schema.
// Any failure is fatal: the returned error has KindFatal.
func Open(ctx context.Context, dbPath string, opts Options) (*DB, error) {
	if opts.BusyTimeout == 0 {
		opts.BusyTimeout = 5 * time.Second
	}

	// Ensure parent directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fatal("open", fmt.Errorf("create data directory: %w", err))
	}

	d, err := openPools(dbPath, opts)
	if err != nil {
		return nil, fatal("open", err)
	}

	if opts.EraseOnSchemaChange {
		version, err := schemaVersion(ctx, d.writer)
		if err != nil {
			_ = d.Close()
			return nil, fatal("open", err)
		}
		if version != 0 && version != latestVersion() {
			d.log.WithField("version", version).Warn("schema changed, erasing database")
			_ = d.Close()
			if err := removeDatabaseFiles(dbPath); err != nil {
				return nil, fatal("open", err)
			}
			if d, err = openPools(dbPath, opts); err != nil {
				return nil, fatal("open", err)
			}
		}
	}

	// Set file permissions
	if err := os.Chmod(dbPath, 0600); err != nil && !os.IsNotExist(err) {
		_ = d.Close()
		return nil, fatal("open", fmt.Errorf("set database permissions: %w", err))
	}

	if err := migrate(ctx, d.writer, d.log); err != nil {
		_ = d.Close()
		return nil, fatal("migrate", err)
	}

	return d, nil
}

func openPools(dbPath string, opts Options) (*DB, error) {
	writer, err := sql.Open("sqlite", dsn(dbPath, opts, false))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection serializes every write.
	writer.SetMaxOpenConns(1)

	// The writer creates the file and switches it to WAL before readers attach.
	if err := writer.Ping(); err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}

	reader, err := sql.Open("sqlite", dsn(dbPath, opts, true))
	if err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("open read pool: %w", err)
	}

	return &DB{
		writer: writer,
		reader: reader,
		dbPath: dbPath,
		feed:   NewFeed(),
		log:    logrus.WithField("component", "storage"),
	}, nil
}

// dsn builds a connection string whose pragmas apply to every pooled connection.
func dsn(dbPath string, opts Options, readOnly bool) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", opts.BusyTimeout.Milliseconds()))
	q.Add("_pragma", "synchronous(NORMAL)")
	if readOnly {
		q.Add("_pragma", "query_only(1)")
	} else {
		q.Set("_txlock", "immediate")
	}
	return dbPath + "?" + q.Encode()
}

func removeDatabaseFiles(dbPath string) error {
	for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", p, err)
		}
	}
	return nil
}

// DataDir returns the default data directory following XDG spec.
func DataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "lift")
}

// DefaultDBPath returns the default database path following XDG spec.
func DefaultDBPath() string {
	return filepath.Join(DataDir(), "lift.db")
}

// Path returns the database file location.
func (d *DB) Path() string {
	return d.dbPath
}

// Feed returns the change feed that is notified after every committed write.
func (d *DB) Feed() *Feed {
	return d.feed
}

// Close closes both connection pools.
func (d *DB) Close() error {
	var firstErr error
	if d.reader != nil {
		if err := d.reader.Close(); err != nil {
			firstErr = err
		}
	}
	if d.writer != nil {
		if err := d.writer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// withTx runs fn in one write transaction and publishes tables to the change
// feed after a successful commit. Any error rolls everything back.
func (d *DB) withTx(ctx context.Context, op string, tables []string, fn func(tx *sql.Tx) error) error {
	tx, err := d.writer.BeginTx(ctx, nil)
	if err != nil {
		return txFailure(op, fmt.Errorf("begin transaction: %w", err))
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return txFailure(op, err)
	}
	if err := tx.Commit(); err != nil {
		return txFailure(op, fmt.Errorf("commit: %w", err))
	}

	d.feed.publish(tables...)
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}

func formatNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

func intPtr(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	i := int(ni.Int64)
	return &i
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func floatPtr(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	f := nf.Float64
	return &f
}
