package archive

import (
	"bytes"
	"context"
	"fmt"
	"reflect"
	"sort"

	"schedconv/internal/models"
	"schedconv/internal/normalizer"
)

// Diff lists course-level differences between two schedb documents.
type Diff struct {
	From    int64              `json:"from,omitempty"`
	To      int64              `json:"to,omitempty"`
	Added   []models.CourseKey `json:"added"`
	Removed []models.CourseKey `json:"removed"`
	Changed []models.CourseKey `json:"changed"`
}

// Empty reports whether the documents have the same courses.
func (d *Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// Compare matches courses by department and number. A course is changed when
// any attribute, section or period differs.
func Compare(from, to *models.Schedb) *Diff {
	before := from.Courses()
	after := to.Courses()

	d := &Diff{
		Added:   []models.CourseKey{},
		Removed: []models.CourseKey{},
		Changed: []models.CourseKey{},
	}

	for key, course := range after {
		old, ok := before[key]

		switch {
		case !ok:
			d.Added = append(d.Added, key)
		case !reflect.DeepEqual(old, course):
			d.Changed = append(d.Changed, key)
		}
	}

	for key := range before {
		if _, ok := after[key]; !ok {
			d.Removed = append(d.Removed, key)
		}
	}

	sortKeys(d.Added)
	sortKeys(d.Removed)
	sortKeys(d.Changed)

	return d
}

// CompareSnapshots loads two archived snapshots and compares them.
func CompareSnapshots(ctx context.Context, store Store, fromID, toID int64) (*Diff, error) {
	from, err := loadDocument(ctx, store, fromID)
	if err != nil {
		return nil, err
	}

	to, err := loadDocument(ctx, store, toID)
	if err != nil {
		return nil, err
	}

	d := Compare(from, to)
	d.From = fromID
	d.To = toID

	return d, nil
}

func loadDocument(ctx context.Context, store Store, id int64) (*models.Schedb, error) {
	snap, err := store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("snapshot %d: %w", id, err)
	}

	doc, err := normalizer.DecodeSchedb(bytes.NewReader(snap.XML))
	if err != nil {
		return nil, fmt.Errorf("snapshot %d: %w", id, err)
	}

	return doc, nil
}

func sortKeys(keys []models.CourseKey) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Dept != keys[j].Dept {
			return keys[i].Dept < keys[j].Dept
		}

		return keys[i].Number < keys[j].Number
	})
}
