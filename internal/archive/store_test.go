package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

// runStoreContract exercises the behaviour every Store must share.
func runStoreContract(t *testing.T, store Store) {
	t.Helper()

	ctx := context.Background()
	semester := fmt.Sprintf("t%d", time.Now().UnixNano()%1_000_000_000)

	if _, err := store.Latest(ctx, semester); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Latest() on empty semester error = %v, want ErrNotFound", err)
	}

	firstModified := time.Date(2011, 1, 5, 9, 0, 0, 0, time.UTC)
	secondModified := firstModified.Add(24 * time.Hour)
	parsed := firstModified.Add(time.Minute)

	first := &Snapshot{
		Semester:     semester,
		LastModified: firstModified,
		ParsedAt:     parsed,
		Digest:       "aaa",
		Courses:      2,
		Pruned:       1,
		XML:          []byte("<schedb/>"),
	}

	id1, err := store.Save(ctx, first)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if first.ID != id1 {
		t.Errorf("Save() did not set ID: got %d, want %d", first.ID, id1)
	}

	same := &Snapshot{Semester: semester, LastModified: secondModified, ParsedAt: parsed, Digest: "aaa", XML: []byte("<schedb/>")}

	id, err := store.Save(ctx, same)
	if !errors.Is(err, ErrUnchanged) {
		t.Fatalf("Save() with same digest error = %v, want ErrUnchanged", err)
	}

	if id != id1 {
		t.Errorf("Save() with same digest returned id %d, want %d", id, id1)
	}

	id2, err := store.Save(ctx, &Snapshot{
		Semester:     semester,
		LastModified: secondModified,
		ParsedAt:     parsed,
		Digest:       "bbb",
		Courses:      3,
		XML:          []byte("<schedb>b</schedb>"),
	})
	if err != nil {
		t.Fatalf("Save() second error = %v", err)
	}

	latest, err := store.Latest(ctx, semester)
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}

	if latest.ID != id2 || latest.Digest != "bbb" {
		t.Errorf("Latest() = id %d digest %q, want id %d digest bbb", latest.ID, latest.Digest, id2)
	}

	if !latest.LastModified.Equal(secondModified) {
		t.Errorf("Latest().LastModified = %v, want %v", latest.LastModified, secondModified)
	}

	got, err := store.Get(ctx, id1)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if !bytes.Equal(got.XML, []byte("<schedb/>")) {
		t.Errorf("Get().XML = %q", got.XML)
	}

	if got.Courses != 2 || got.Pruned != 1 {
		t.Errorf("Get() counts = %d/%d, want 2/1", got.Courses, got.Pruned)
	}

	if !got.ParsedAt.Equal(parsed) {
		t.Errorf("Get().ParsedAt = %v, want %v", got.ParsedAt, parsed)
	}

	list, err := store.List(ctx, semester, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if len(list) != 2 {
		t.Fatalf("List() returned %d snapshots, want 2", len(list))
	}

	if list[0].ID != id2 || list[1].ID != id1 {
		t.Errorf("List() order = [%d %d], want [%d %d]", list[0].ID, list[1].ID, id2, id1)
	}

	if list[0].XML != nil {
		t.Error("List() should not load XML")
	}

	limited, err := store.List(ctx, semester, 1)
	if err != nil {
		t.Fatalf("List(limit 1) error = %v", err)
	}

	if len(limited) != 1 {
		t.Errorf("List(limit 1) returned %d snapshots", len(limited))
	}

	if _, err := store.Get(ctx, id2+1_000_000); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() missing id error = %v, want ErrNotFound", err)
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "x")
	if !errors.Is(err, ErrUnknownDriver) {
		t.Errorf("Open() error = %v, want ErrUnknownDriver", err)
	}
}
