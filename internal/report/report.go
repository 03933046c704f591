package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"schedconv/internal/archive"
	"schedconv/internal/normalizer"
	"schedconv/pkg/metadata"
)

const timeLayout = "2006-01-02 15:04:05"

// Conversion writes the summary of one conversion: counts, output size and
// digest, courses per department, and the pruned courses with reasons.
func Conversion(w io.Writer, res *normalizer.Result, meta metadata.Metadata) error {
	pruned := len(res.Pruned)

	if _, err := fmt.Fprintf(w,
		"## Conversion %s\n\n- Courses read: %d\n- Courses kept: %d\n- Courses pruned: %d\n- Output: %s (sha256 %s)\n\n",
		meta.Semester, res.CoursesRead, res.CoursesKept(), pruned, meta.HumanSize(), meta.ShortDigest(),
	); err != nil {
		return err
	}

	depts := NewTable("Dept", "Name", "Courses")
	for _, dept := range res.Document.Departments {
		depts.Add(dept.Abbrev, dept.Name, strconv.Itoa(len(dept.Courses)))
	}

	if _, err := io.WriteString(w, depts.String()); err != nil {
		return err
	}

	if pruned == 0 {
		return nil
	}

	prunedTable := NewTable("Course", "Reason")
	for _, p := range res.Pruned {
		prunedTable.Add(p.Key.String(), p.Reason)
	}

	_, err := io.WriteString(w, "\n### Pruned\n\n"+prunedTable.String())

	return err
}

// History writes the archived snapshots of a semester, newest first.
func History(w io.Writer, semester string, snaps []archive.Snapshot) error {
	if len(snaps) == 0 {
		_, err := fmt.Fprintf(w, "No snapshots for %s.\n", semester)
		return err
	}

	table := NewTable("ID", "Last modified", "Parsed", "Courses", "Pruned", "Digest")
	for _, s := range snaps {
		table.Add(
			strconv.FormatInt(s.ID, 10),
			formatTime(s.LastModified),
			formatTime(s.ParsedAt),
			strconv.Itoa(s.Courses),
			strconv.Itoa(s.Pruned),
			metadata.Metadata{Digest: s.Digest}.ShortDigest(),
		)
	}

	_, err := fmt.Fprintf(w, "## History %s\n\n%s", semester, table.String())

	return err
}

// Diff writes the course changes between two snapshots.
func Diff(w io.Writer, d *archive.Diff) error {
	if _, err := fmt.Fprintf(w, "## Diff %d..%d\n\n", d.From, d.To); err != nil {
		return err
	}

	if d.Empty() {
		_, err := io.WriteString(w, "No course changes.\n")
		return err
	}

	table := NewTable("Change", "Course")
	for _, k := range d.Added {
		table.Add("added", k.String())
	}

	for _, k := range d.Removed {
		table.Add("removed", k.String())
	}

	for _, k := range d.Changed {
		table.Add("changed", k.String())
	}

	_, err := io.WriteString(w, table.String())

	return err
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}

	return t.UTC().Format(timeLayout)
}
