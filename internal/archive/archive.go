// Package archive stores converted schedb documents per semester so they can
// be served, compared and used to skip unchanged feeds.
package archive

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Archive errors.
var (
	ErrNotFound      = errors.New("snapshot not found")
	ErrUnchanged     = errors.New("snapshot unchanged since latest")
	ErrUnknownDriver = errors.New("unknown archive driver")
)

// Snapshot is one converted document. LastModified is the source feed's
// modification time; ParsedAt is when the conversion ran.
type Snapshot struct {
	LastModified time.Time `json:"lastModified"`
	ParsedAt     time.Time `json:"parsedAt"`
	Semester     string    `json:"semester"`
	Digest       string    `json:"digest"`
	XML          []byte    `json:"-"`
	ID           int64     `json:"id"`
	Courses      int       `json:"courses"`
	Pruned       int       `json:"pruned"`
}

// Store persists snapshots.
type Store interface {
	// Save inserts s unless its digest equals the semester's latest
	// snapshot, in which case it returns that snapshot's id and ErrUnchanged.
	Save(ctx context.Context, s *Snapshot) (int64, error)
	// Latest returns the most recent snapshot of a semester by source
	// modification time.
	Latest(ctx context.Context, semester string) (*Snapshot, error)
	Get(ctx context.Context, id int64) (*Snapshot, error)
	// List returns snapshot headers, newest first, without XML.
	List(ctx context.Context, semester string, limit int) ([]Snapshot, error)
	Close() error
}

// Open connects to the store selected by driver ("sqlite" or "postgres").
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "sqlite":
		return OpenSQLite(dsn)
	case "postgres":
		return OpenPostgres(ctx, dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}

	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}

	return time.UnixMilli(ms).UTC()
}
