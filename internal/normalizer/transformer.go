package normalizer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"schedconv/internal/logger"
	"schedconv/internal/models"
)

// ErrNilCatalog is returned when Transform is called without a feed.
var ErrNilCatalog = errors.New("nil catalog")

// generatedLayout matches C's ctime(), which the scheduler expects.
const generatedLayout = time.ANSIC

// PrunedCourse records a course left out of the output and why.
type PrunedCourse struct {
	Key    models.CourseKey
	Reason string
}

// Result is a built schedb tree together with conversion statistics.
// Published is the feed's own timestamp, zero when absent or malformed.
type Result struct {
	Published   time.Time
	Document    *models.Schedb
	Pruned      []PrunedCourse
	CoursesRead int
}

// CoursesKept returns the number of courses that made it into the output.
func (r *Result) CoursesKept() int {
	return r.Document.CourseCount()
}

// Transformer builds a schedb tree from a registrar catalog.
type Transformer struct {
	validator *Validator
	log       *logger.Logger
	now       func() time.Time
}

// NewTransformer creates a transformer that stamps output with the wall clock
// and discards log output.
func NewTransformer() *Transformer {
	return NewTransformerWithDeps(NewValidator(), logger.Nop(), time.Now)
}

// NewTransformerWithDeps creates a transformer with injected dependencies.
func NewTransformerWithDeps(validator *Validator, log *logger.Logger, now func() time.Time) *Transformer {
	return &Transformer{
		validator: validator,
		log:       log,
		now:       now,
	}
}

// Transform walks the catalog in source order. Departments are created on
// first sight and kept even if none of their courses survive; a course is
// attached only once all of its periods have valid times.
func (t *Transformer) Transform(catalog *models.Catalog) (*Result, error) {
	if catalog == nil {
		return nil, ErrNilCatalog
	}

	doc := &models.Schedb{
		Generated:       t.now().Format(generatedLayout),
		MinutesPerBlock: models.MinutesPerBlock,
	}

	result := &Result{
		Published:   parseEpochMillis(catalog.Timestamp),
		Document:    doc,
		CoursesRead: len(catalog.Courses),
	}

	departments := make(map[string]*models.Department)

	for i := range catalog.Courses {
		src := &catalog.Courses[i]

		dept, err := t.department(doc, departments, src.Dept)
		if err != nil {
			return nil, fmt.Errorf("course %s: %w", src.Key(), err)
		}

		course, err := t.buildCourse(src)
		if errors.Is(err, ErrUnparseableTime) {
			t.log.Debug("pruning course", "course", src.Key().String(), "reason", err.Error())
			result.Pruned = append(result.Pruned, PrunedCourse{Key: src.Key(), Reason: err.Error()})

			continue
		}

		if err != nil {
			return nil, fmt.Errorf("course %s: %w", src.Key(), err)
		}

		dept.Courses = append(dept.Courses, course)
	}

	return result, nil
}

func (t *Transformer) department(doc *models.Schedb, seen map[string]*models.Department, code string) (*models.Department, error) {
	if dept, ok := seen[code]; ok {
		return dept, nil
	}

	name, err := DepartmentName(code)
	if err != nil {
		return nil, err
	}

	dept := &models.Department{Abbrev: code, Name: name}
	seen[code] = dept
	doc.Departments = append(doc.Departments, dept)

	return dept, nil
}

// buildCourse stops a section at its first period with an unparseable time
// but keeps building later sections, so their lookup errors still surface.
// The course is reported as ErrUnparseableTime once every section is done.
func (t *Transformer) buildCourse(src *models.FeedCourse) (*models.Course, error) {
	course := &models.Course{
		Number:     src.Num,
		Name:       src.Name,
		MinCredits: src.CredMin,
		MaxCredits: src.CredMax,
		GradeType:  GradeTypeLabel(src.GradeType),
	}

	var failed error

	for i := range src.Sections {
		srcSection := &src.Sections[i]

		section := &models.Section{
			CRN:    srcSection.CRN,
			Number: srcSection.Num,
			Seats:  srcSection.Seats,
		}

		for j := range srcSection.Periods {
			period, err := t.buildPeriod(&srcSection.Periods[j])
			if errors.Is(err, ErrUnparseableTime) {
				if failed == nil {
					failed = fmt.Errorf("section %s: %w", srcSection.CRN, err)
				}

				break
			}

			if err != nil {
				return nil, fmt.Errorf("section %s: %w", srcSection.CRN, err)
			}

			section.Periods = append(section.Periods, period)
		}

		course.Sections = append(course.Sections, section)
	}

	if failed != nil {
		return nil, failed
	}

	return course, nil
}

func (t *Transformer) buildPeriod(src *models.FeedPeriod) (*models.Period, error) {
	times, err := t.validator.CheckPeriod(src)
	if err != nil {
		return nil, err
	}

	label, err := MeetingTypeLabel(src.Type)
	if err != nil {
		return nil, err
	}

	days := make([]string, 0, len(src.Days))

	for _, text := range src.Days {
		day, dayErr := ParseWeekday(text)
		if dayErr != nil {
			return nil, dayErr
		}

		days = append(days, day)
	}

	return &models.Period{
		Type:      label,
		Professor: src.Instructor,
		Starts:    times.Starts,
		Ends:      times.Ends,
		Days:      strings.Join(days, ","),
	}, nil
}

func parseEpochMillis(raw string) time.Time {
	ms, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || ms <= 0 {
		return time.Time{}
	}

	return time.UnixMilli(ms).UTC()
}
