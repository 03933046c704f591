package main

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"schedconv/internal/archive"
	"schedconv/internal/config"
	"schedconv/internal/logger"
	"schedconv/internal/normalizer"
)

const feedV1 = `<?xml version="1.0" encoding="UTF-8"?>
<CourseDB timestamp="1294236000000">
  <COURSE dept="CSCI" num="1200" name="DATA STRUCTURES" credmin="4" credmax="4" gradetype="">
    <SECTION crn="40123" num="01" seats="150">
      <PERIOD type="LEC" start="1000" end="1150" instructor="Cutler">
        <DAY>0</DAY>
        <DAY>3</DAY>
      </PERIOD>
    </SECTION>
  </COURSE>
  <COURSE dept="MATH" num="1010" name="CALCULUS I" credmin="4" credmax="4" gradetype="">
    <SECTION crn="40500" num="01" seats="200">
      <PERIOD type="LEC" start="TBA" end="TBA" instructor="Staff"/>
    </SECTION>
  </COURSE>
</CourseDB>
`

const feedV2 = `<?xml version="1.0" encoding="UTF-8"?>
<CourseDB>
  <COURSE dept="CSCI" num="1200" name="DATA STRUCTURES" credmin="4" credmax="4" gradetype="">
    <SECTION crn="40123" num="01" seats="150">
      <PERIOD type="LEC" start="1200" end="1350" instructor="Cutler">
        <DAY>0</DAY>
        <DAY>3</DAY>
      </PERIOD>
    </SECTION>
  </COURSE>
  <COURSE dept="PHYS" num="1100" name="PHYSICS I" credmin="4" credmax="4" gradetype="">
    <SECTION crn="40600" num="01" seats="100">
      <PERIOD type="LAB" start="1400" end="1550" instructor="Staff">
        <DAY>1</DAY>
      </PERIOD>
    </SECTION>
  </COURSE>
</CourseDB>
`

func newTestApp(t *testing.T) (*App, *bytes.Buffer, string) {
	t.Helper()

	dir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.Archive.Driver = "sqlite"
	cfg.Archive.DSN = filepath.Join(dir, "archive.sqlite")
	cfg.Output.Path = filepath.Join(dir, "out", "201101.xml")
	cfg.Source.Semester = "201101"

	var out bytes.Buffer

	return &App{cfg: cfg, log: logger.Nop(), out: &out}, &out, dir
}

func writeFeed(t *testing.T, path, content string, modified time.Time) {
	t.Helper()

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing feed: %v", err)
	}

	if err := os.Chtimes(path, modified, modified); err != nil {
		t.Fatalf("setting feed mtime: %v", err)
	}
}

func snapshots(t *testing.T, a *App) []archive.Snapshot {
	t.Helper()

	store, err := a.openArchive(context.Background())
	if err != nil {
		t.Fatalf("openArchive() error = %v", err)
	}
	defer store.Close()

	snaps, err := store.List(context.Background(), "201101", 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	return snaps
}

func TestConvert(t *testing.T) {
	a, out, dir := newTestApp(t)
	input := filepath.Join(dir, "201101-feed.xml")
	writeFeed(t, input, feedV1, time.Date(2011, 1, 5, 9, 0, 0, 0, time.UTC))

	err := a.convert(context.Background(), convertOptions{input: input, archive: true, report: true})
	if err != nil {
		t.Fatalf("convert() error = %v", err)
	}

	data, err := os.ReadFile(a.cfg.Output.Path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}

	if !strings.HasPrefix(string(data), xml.Header) {
		t.Errorf("output does not start with the XML header:\n%s", data)
	}

	if !strings.Contains(string(data), `<dept abbrev="MATH" name="Mathematics"></dept>`) {
		t.Errorf("pruned course's department should be kept empty:\n%s", data)
	}

	for _, want := range []string{"- Courses read: 2", "- Courses kept: 1", "| MATH-1010 |"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("report missing %q:\n%s", want, out.String())
		}
	}

	snaps := snapshots(t, a)
	if len(snaps) != 1 {
		t.Fatalf("archived %d snapshots, want 1", len(snaps))
	}

	// The feed's own timestamp wins over the file's mtime.
	if want := time.UnixMilli(1294236000000).UTC(); !snaps[0].LastModified.Equal(want) {
		t.Errorf("LastModified = %v, want %v", snaps[0].LastModified, want)
	}

	if snaps[0].Courses != 1 || snaps[0].Pruned != 1 {
		t.Errorf("snapshot counts = %d/%d, want 1/1", snaps[0].Courses, snaps[0].Pruned)
	}

	// Converting the same feed again does not add a snapshot.
	if err := a.convert(context.Background(), convertOptions{input: input, archive: true}); err != nil {
		t.Fatalf("second convert() error = %v", err)
	}

	if got := len(snapshots(t, a)); got != 1 {
		t.Errorf("archived %d snapshots after identical conversion, want 1", got)
	}
}

func TestConvert_UnknownDepartmentFails(t *testing.T) {
	a, _, dir := newTestApp(t)
	input := filepath.Join(dir, "bad.xml")
	writeFeed(t, input, `<CourseDB><COURSE dept="XXXX" num="1"/></CourseDB>`, time.Now())

	err := a.convert(context.Background(), convertOptions{input: input})
	if !errors.Is(err, normalizer.ErrUnknownDepartment) {
		t.Errorf("convert() error = %v, want ErrUnknownDepartment", err)
	}

	if _, statErr := os.Stat(a.cfg.Output.Path); !os.IsNotExist(statErr) {
		t.Errorf("output written despite failure: %v", statErr)
	}
}

func TestConvert_NoInput(t *testing.T) {
	a, _, _ := newTestApp(t)

	if err := a.convert(context.Background(), convertOptions{}); err == nil {
		t.Error("convert() without input should fail")
	}
}

func TestFetch_SkipsUnchangedFeed(t *testing.T) {
	a, out, dir := newTestApp(t)
	ctx := context.Background()

	a.cfg.Source.File = filepath.Join(dir, "feed.xml")
	writeFeed(t, a.cfg.Source.File, feedV1, time.Date(2011, 1, 5, 9, 0, 0, 0, time.UTC))

	if err := a.fetch(ctx, fetchOptions{}); err != nil {
		t.Fatalf("fetch() error = %v", err)
	}

	if err := a.fetch(ctx, fetchOptions{}); err != nil {
		t.Fatalf("second fetch() error = %v", err)
	}

	if got := len(snapshots(t, a)); got != 1 {
		t.Fatalf("archived %d snapshots for an unchanged feed, want 1", got)
	}

	writeFeed(t, a.cfg.Source.File, feedV2, time.Date(2011, 1, 6, 9, 0, 0, 0, time.UTC))

	if err := a.fetch(ctx, fetchOptions{}); err != nil {
		t.Fatalf("fetch() of new feed error = %v", err)
	}

	snaps := snapshots(t, a)
	if len(snaps) != 2 {
		t.Fatalf("archived %d snapshots, want 2", len(snaps))
	}

	if err := a.diff(ctx, snaps[1].ID, snaps[0].ID); err != nil {
		t.Fatalf("diff() error = %v", err)
	}

	for _, want := range []string{"| added   | PHYS-1100 |", "| changed | CSCI-1200 |"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("diff output missing %q:\n%s", want, out.String())
		}
	}

	out.Reset()

	if err := a.history(ctx, "", 0); err != nil {
		t.Fatalf("history() error = %v", err)
	}

	if !strings.Contains(out.String(), "## History 201101") || !strings.Contains(out.String(), "2011-01-06 09:00:00") {
		t.Errorf("history output:\n%s", out.String())
	}
}

func TestHistory_InvalidSemester(t *testing.T) {
	a, _, _ := newTestApp(t)

	err := a.history(context.Background(), "fall", 0)
	if !errors.Is(err, config.ErrInvalidSemester) {
		t.Errorf("history() error = %v, want ErrInvalidSemester", err)
	}
}

func TestDepartments(t *testing.T) {
	a, out, _ := newTestApp(t)

	if err := a.departments(); err != nil {
		t.Fatalf("departments() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 44+2 {
		t.Errorf("departments() printed %d lines, want 46", len(lines))
	}

	if !strings.Contains(out.String(), "Interdisciplinary Humanities and Social Science") {
		t.Errorf("departments() missing IHSS name:\n%s", out.String())
	}
}

func TestCheck(t *testing.T) {
	a, out, dir := newTestApp(t)
	input := filepath.Join(dir, "feed.xml")
	writeFeed(t, input, feedV1, time.Now())

	if err := a.convert(context.Background(), convertOptions{input: input, archive: true}); err != nil {
		t.Fatalf("convert() error = %v", err)
	}

	if err := a.check(context.Background(), "", 0); err != nil {
		t.Fatalf("check() of converted output error = %v\n%s", err, out.String())
	}

	if !strings.HasPrefix(out.String(), "VALID |") {
		t.Errorf("check() output = %q", out.String())
	}

	snaps := snapshots(t, a)
	if err := a.check(context.Background(), "", snaps[0].ID); err != nil {
		t.Errorf("check() of archived snapshot error = %v", err)
	}

	bad := filepath.Join(dir, "bad.xml")
	if err := os.WriteFile(bad, []byte(`<schedb generated="now" minutes-per-block="30"></schedb>`), 0644); err != nil {
		t.Fatalf("writing bad doc: %v", err)
	}

	out.Reset()

	err := a.check(context.Background(), bad, 0)
	if !errors.Is(err, errInvalidDocument) {
		t.Errorf("check() error = %v, want errInvalidDocument", err)
	}

	if !strings.Contains(out.String(), "| schedb | generated | now   |") {
		t.Errorf("check() output missing error table:\n%s", out.String())
	}
}

func TestWatch_StopsOnCancel(t *testing.T) {
	a, _, dir := newTestApp(t)
	a.cfg.Source.File = filepath.Join(dir, "feed.xml")
	writeFeed(t, a.cfg.Source.File, feedV1, time.Date(2011, 1, 5, 9, 0, 0, 0, time.UTC))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- a.watch(ctx, 10*time.Millisecond, fetchOptions{}) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("watch() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch() did not stop after cancel")
	}

	if got := len(snapshots(t, a)); got != 1 {
		t.Errorf("watch archived %d snapshots of an unchanged feed, want 1", got)
	}
}

func TestWatch_RejectsNonPositiveInterval(t *testing.T) {
	a, _, _ := newTestApp(t)

	for _, interval := range []time.Duration{0, -time.Second} {
		err := a.watch(context.Background(), interval, fetchOptions{})
		if !errors.Is(err, errInvalidInterval) {
			t.Errorf("watch(%s) error = %v, want errInvalidInterval", interval, err)
		}
	}

	cfgPath := filepath.Join(t.TempDir(), "schedconv.yaml")
	if err := os.WriteFile(cfgPath, []byte("logging:\n  level: error\n"), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	rootCmd.SetArgs([]string{"--config", cfgPath, "watch", "--interval", "0"})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})

	if err := rootCmd.Execute(); !errors.Is(err, errInvalidInterval) {
		t.Errorf("watch --interval 0 error = %v, want errInvalidInterval", err)
	}
}

func TestConvert_LeavesUnchangedOutputAlone(t *testing.T) {
	a, _, dir := newTestApp(t)
	input := filepath.Join(dir, "feed.xml")
	writeFeed(t, input, feedV1, time.Now())

	if err := a.convert(context.Background(), convertOptions{input: input}); err != nil {
		t.Fatalf("convert() error = %v", err)
	}

	old := time.Date(2011, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := os.Chtimes(a.cfg.Output.Path, old, old); err != nil {
		t.Fatalf("Chtimes() error = %v", err)
	}

	if err := a.convert(context.Background(), convertOptions{input: input}); err != nil {
		t.Fatalf("second convert() error = %v", err)
	}

	info, err := os.Stat(a.cfg.Output.Path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}

	if !info.ModTime().Equal(old) {
		t.Errorf("unchanged output was rewritten (mtime %v)", info.ModTime())
	}

	writeFeed(t, input, feedV2, time.Now())

	if err := a.convert(context.Background(), convertOptions{input: input}); err != nil {
		t.Fatalf("third convert() error = %v", err)
	}

	data, err := os.ReadFile(a.cfg.Output.Path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}

	if !strings.Contains(string(data), `abbrev="PHYS"`) {
		t.Errorf("changed output was not rewritten:\n%s", data)
	}
}

func TestInitConfig(t *testing.T) {
	a, _, dir := newTestApp(t)
	path := filepath.Join(dir, "schedconv.yaml")

	if err := a.initConfig(path, false); err != nil {
		t.Fatalf("initConfig() error = %v", err)
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() of written file error = %v", err)
	}

	if cfg.Source.Semester != config.DefaultConfig().Source.Semester {
		t.Errorf("Semester = %q, want default", cfg.Source.Semester)
	}

	if err := a.initConfig(path, false); !errors.Is(err, errConfigExists) {
		t.Errorf("initConfig() over existing file error = %v, want errConfigExists", err)
	}

	if err := a.initConfig(path, true); err != nil {
		t.Errorf("initConfig(force) error = %v", err)
	}
}
