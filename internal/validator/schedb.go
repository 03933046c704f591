// Package validator checks generated schedb documents before they are handed
// to the scheduler.
package validator

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"schedconv/internal/models"
	"schedconv/internal/normalizer"
)

var clockPattern = regexp.MustCompile(`^(0[1-9]|1[0-2]):[0-5]\d (AM|PM)$`)

// ValidationError represents a validation error with its location.
type ValidationError struct {
	Path    string
	Field   string
	Value   string
	Message string
}

func (e ValidationError) String() string {
	if e.Value == "" {
		return fmt.Sprintf("%s [%s]: %s", e.Path, e.Field, e.Message)
	}

	return fmt.Sprintf("%s [%s]: %s (found %q)", e.Path, e.Field, e.Message, e.Value)
}

// ValidationResult contains validation results.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []string
	Stats    ValidationStats
	IsValid  bool
}

// ValidationStats counts the nodes that were checked.
type ValidationStats struct {
	Departments      int
	EmptyDepartments int
	Courses          int
	Sections         int
	Periods          int
}

// Validate checks a schedb document for the shape the scheduler relies on.
func Validate(doc *models.Schedb) *ValidationResult {
	result := &ValidationResult{}

	if doc.MinutesPerBlock != models.MinutesPerBlock {
		result.addError("schedb", "minutes-per-block", doc.MinutesPerBlock, "must be "+models.MinutesPerBlock)
	}

	if _, err := time.Parse(time.ANSIC, doc.Generated); err != nil {
		result.addError("schedb", "generated", doc.Generated, "not a ctime timestamp")
	}

	seen := make(map[string]bool, len(doc.Departments))

	for _, dept := range doc.Departments {
		result.Stats.Departments++

		path := "dept " + dept.Abbrev

		if seen[dept.Abbrev] {
			result.addError(path, "abbrev", dept.Abbrev, "duplicate department")
		}

		seen[dept.Abbrev] = true

		name, err := normalizer.DepartmentName(dept.Abbrev)

		switch {
		case err != nil:
			result.addError(path, "abbrev", dept.Abbrev, "unknown department")
		case name != dept.Name:
			result.addError(path, "name", dept.Name, "expected "+name)
		}

		if len(dept.Courses) == 0 {
			result.Stats.EmptyDepartments++
		}

		result.checkCourses(dept)
	}

	result.IsValid = len(result.Errors) == 0

	return result
}

func (r *ValidationResult) checkCourses(dept *models.Department) {
	numbers := make(map[string]bool, len(dept.Courses))

	for _, course := range dept.Courses {
		r.Stats.Courses++

		key := models.CourseKey{Dept: dept.Abbrev, Number: course.Number}
		path := "course " + key.String()

		if numbers[course.Number] {
			r.Warnings = append(r.Warnings, fmt.Sprintf("%s appears more than once", path))
		}

		numbers[course.Number] = true

		if course.GradeType == "" {
			r.addError(path, "grade-type", "", "missing grade type")
		}

		for _, section := range course.Sections {
			r.Stats.Sections++

			for i, period := range section.Periods {
				r.Stats.Periods++
				r.checkPeriod(fmt.Sprintf("%s section %s period %d", path, section.Number, i+1), period)
			}
		}
	}
}

func (r *ValidationResult) checkPeriod(path string, p *models.Period) {
	if !normalizer.IsMeetingTypeLabel(p.Type) {
		r.addError(path, "type", p.Type, "unknown meeting type")
	}

	starts, startsOK := clockMinutes(p.Starts)
	if !startsOK {
		r.addError(path, "starts", p.Starts, "expected hh:mm AM|PM")
	}

	ends, endsOK := clockMinutes(p.Ends)
	if !endsOK {
		r.addError(path, "ends", p.Ends, "expected hh:mm AM|PM")
	}

	if startsOK && endsOK && ends <= starts {
		r.Warnings = append(r.Warnings, fmt.Sprintf("%s ends at or before it starts (%s-%s)", path, p.Starts, p.Ends))
	}

	if p.Days == "" {
		return
	}

	days := make(map[string]bool)

	for _, day := range strings.Split(p.Days, ",") {
		if _, ok := normalizer.WeekdayIndex(day); !ok {
			r.addError(path, "days", day, "unknown weekday")
		} else if days[day] {
			r.addError(path, "days", day, "duplicate weekday")
		}

		days[day] = true
	}
}

func (r *ValidationResult) addError(path, field, value, message string) {
	r.Errors = append(r.Errors, ValidationError{Path: path, Field: field, Value: value, Message: message})
}

// clockMinutes converts "hh:mm AM|PM" to minutes after midnight.
func clockMinutes(s string) (int, bool) {
	if !clockPattern.MatchString(s) {
		return 0, false
	}

	t, err := time.Parse("03:04 PM", s)
	if err != nil {
		return 0, false
	}

	return t.Hour()*60 + t.Minute(), true
}

// String returns a one-line summary of the result.
func (r *ValidationResult) String() string {
	status := "VALID"
	if !r.IsValid {
		status = "INVALID"
	}

	return fmt.Sprintf(
		"%s | Departments: %d (%d empty) | Courses: %d | Sections: %d | Periods: %d | Errors: %d | Warnings: %d",
		status,
		r.Stats.Departments,
		r.Stats.EmptyDepartments,
		r.Stats.Courses,
		r.Stats.Sections,
		r.Stats.Periods,
		len(r.Errors),
		len(r.Warnings),
	)
}
