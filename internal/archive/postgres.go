package archive

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS snapshots (
  id            BIGSERIAL   PRIMARY KEY,
  semester      TEXT        NOT NULL,
  last_modified TIMESTAMPTZ NOT NULL,
  parsed_at     TIMESTAMPTZ NOT NULL,
  digest        TEXT        NOT NULL,
  courses       INTEGER     NOT NULL,
  pruned        INTEGER     NOT NULL,
  xml           BYTEA       NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_snapshots_semester ON snapshots(semester, last_modified)`,
}

// Postgres is a Store backed by a PostgreSQL connection pool.
type Postgres struct {
	Pool *pgxpool.Pool
}

// OpenPostgres connects to dsn and ensures the schema exists.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()

		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	batch := pgx.Batch{}
	for _, stmt := range postgresSchema {
		batch.Queue(stmt)
	}

	if err := pool.SendBatch(ctx, &batch).Close(); err != nil {
		pool.Close()

		return nil, fmt.Errorf("failed to create archive schema: %w", err)
	}

	return &Postgres{Pool: pool}, nil
}

// Close closes the pool.
func (d *Postgres) Close() error {
	if d != nil && d.Pool != nil {
		d.Pool.Close()
	}

	return nil
}

// Save implements Store.
func (d *Postgres) Save(ctx context.Context, s *Snapshot) (int64, error) {
	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Serialise concurrent saves of the same semester.
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, s.Semester); err != nil {
		return 0, err
	}

	var (
		latestID     int64
		latestDigest string
	)

	err = tx.QueryRow(ctx,
		`SELECT id, digest FROM snapshots WHERE semester = $1 ORDER BY last_modified DESC, id DESC LIMIT 1`,
		s.Semester,
	).Scan(&latestID, &latestDigest)

	switch {
	case err == nil && latestDigest == s.Digest:
		return latestID, ErrUnchanged
	case err != nil && !errors.Is(err, pgx.ErrNoRows):
		return 0, err
	}

	var id int64

	err = tx.QueryRow(ctx,
		`INSERT INTO snapshots(semester, last_modified, parsed_at, digest, courses, pruned, xml)
		 VALUES($1,$2,$3,$4,$5,$6,$7) RETURNING id`,
		s.Semester, s.LastModified.UTC(), s.ParsedAt.UTC(), s.Digest, s.Courses, s.Pruned, s.XML,
	).Scan(&id)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}

	s.ID = id

	return id, nil
}

// Latest implements Store.
func (d *Postgres) Latest(ctx context.Context, semester string) (*Snapshot, error) {
	row := d.Pool.QueryRow(ctx,
		`SELECT id, semester, last_modified, parsed_at, digest, courses, pruned, xml
		   FROM snapshots WHERE semester = $1 ORDER BY last_modified DESC, id DESC LIMIT 1`,
		semester,
	)

	return scanPgSnapshot(row)
}

// Get implements Store.
func (d *Postgres) Get(ctx context.Context, id int64) (*Snapshot, error) {
	row := d.Pool.QueryRow(ctx,
		`SELECT id, semester, last_modified, parsed_at, digest, courses, pruned, xml FROM snapshots WHERE id = $1`,
		id,
	)

	return scanPgSnapshot(row)
}

// List implements Store.
func (d *Postgres) List(ctx context.Context, semester string, limit int) ([]Snapshot, error) {
	var limitArg any
	if limit > 0 {
		limitArg = limit
	}

	rows, err := d.Pool.Query(ctx,
		`SELECT id, semester, last_modified, parsed_at, digest, courses, pruned
		   FROM snapshots WHERE semester = $1 ORDER BY last_modified DESC, id DESC LIMIT $2`,
		semester, limitArg,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Snapshot

	for rows.Next() {
		var s Snapshot
		if err := rows.Scan(&s.ID, &s.Semester, &s.LastModified, &s.ParsedAt, &s.Digest, &s.Courses, &s.Pruned); err != nil {
			return nil, err
		}

		s.LastModified = s.LastModified.UTC()
		s.ParsedAt = s.ParsedAt.UTC()
		out = append(out, s)
	}

	return out, rows.Err()
}

func scanPgSnapshot(row pgx.Row) (*Snapshot, error) {
	var s Snapshot

	err := row.Scan(&s.ID, &s.Semester, &s.LastModified, &s.ParsedAt, &s.Digest, &s.Courses, &s.Pruned, &s.XML)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	s.LastModified = s.LastModified.UTC()
	s.ParsedAt = s.ParsedAt.UTC()

	return &s, nil
}
