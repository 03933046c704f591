package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLite is a Store backed by a local SQLite file.
type SQLite struct {
	sql *sql.DB
}

// OpenSQLite opens (and creates if needed) the archive at path.
func OpenSQLite(path string) (*SQLite, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS snapshots (
  id            INTEGER PRIMARY KEY,
  semester      TEXT    NOT NULL,
  last_modified INTEGER NOT NULL,
  parsed_at     INTEGER NOT NULL,
  digest        TEXT    NOT NULL,
  courses       INTEGER NOT NULL,
  pruned        INTEGER NOT NULL,
  xml           BLOB    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_semester ON snapshots(semester, last_modified);
`); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("failed to create archive schema: %w", err)
	}

	return &SQLite{sql: db}, nil
}

// Close closes the database.
func (d *SQLite) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}

	return d.sql.Close()
}

// Save implements Store.
func (d *SQLite) Save(ctx context.Context, s *Snapshot) (id int64, err error) {
	tx, err := d.sql.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, err
	}

	defer func() {
		if err != nil && !errors.Is(err, ErrUnchanged) {
			_ = tx.Rollback()
		}
	}()

	var (
		latestID     int64
		latestDigest string
	)

	err = tx.QueryRowContext(ctx,
		`SELECT id, digest FROM snapshots WHERE semester = ? ORDER BY last_modified DESC, id DESC LIMIT 1`,
		s.Semester,
	).Scan(&latestID, &latestDigest)

	switch {
	case err == nil && latestDigest == s.Digest:
		_ = tx.Rollback()

		return latestID, ErrUnchanged
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return 0, err
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots(semester, last_modified, parsed_at, digest, courses, pruned, xml) VALUES(?,?,?,?,?,?,?)`,
		s.Semester, toMillis(s.LastModified), toMillis(s.ParsedAt), s.Digest, s.Courses, s.Pruned, s.XML,
	)
	if err != nil {
		return 0, err
	}

	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}

	s.ID = id

	return id, nil
}

// Latest implements Store.
func (d *SQLite) Latest(ctx context.Context, semester string) (*Snapshot, error) {
	row := d.sql.QueryRowContext(ctx,
		`SELECT id, semester, last_modified, parsed_at, digest, courses, pruned, xml
		   FROM snapshots WHERE semester = ? ORDER BY last_modified DESC, id DESC LIMIT 1`,
		semester,
	)

	return scanSnapshot(row)
}

// Get implements Store.
func (d *SQLite) Get(ctx context.Context, id int64) (*Snapshot, error) {
	row := d.sql.QueryRowContext(ctx,
		`SELECT id, semester, last_modified, parsed_at, digest, courses, pruned, xml FROM snapshots WHERE id = ?`,
		id,
	)

	return scanSnapshot(row)
}

// List implements Store.
func (d *SQLite) List(ctx context.Context, semester string, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := d.sql.QueryContext(ctx,
		`SELECT id, semester, last_modified, parsed_at, digest, courses, pruned
		   FROM snapshots WHERE semester = ? ORDER BY last_modified DESC, id DESC LIMIT ?`,
		semester, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Snapshot

	for rows.Next() {
		var (
			s                      Snapshot
			lastModified, parsedAt int64
		)

		if err := rows.Scan(&s.ID, &s.Semester, &lastModified, &parsedAt, &s.Digest, &s.Courses, &s.Pruned); err != nil {
			return nil, err
		}

		s.LastModified = fromMillis(lastModified)
		s.ParsedAt = fromMillis(parsedAt)
		out = append(out, s)
	}

	return out, rows.Err()
}

func scanSnapshot(row *sql.Row) (*Snapshot, error) {
	var (
		s                      Snapshot
		lastModified, parsedAt int64
	)

	err := row.Scan(&s.ID, &s.Semester, &lastModified, &parsedAt, &s.Digest, &s.Courses, &s.Pruned, &s.XML)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	s.LastModified = fromMillis(lastModified)
	s.ParsedAt = fromMillis(parsedAt)

	return &s, nil
}
