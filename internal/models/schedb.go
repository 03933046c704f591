// Package models defines the registrar feed and schedb document structures.
package models

import (
	"encoding/xml"
	"fmt"
)

// MinutesPerBlock is the fixed scheduling granularity written to every schedb.
const MinutesPerBlock = "30"

// Schedb is the root of the "old" format consumed by the scheduler.
type Schedb struct {
	XMLName         xml.Name      `xml:"schedb"`
	Generated       string        `xml:"generated,attr"`
	MinutesPerBlock string        `xml:"minutes-per-block,attr"`
	Departments     []*Department `xml:"dept"`
}

// Department groups every course sharing an abbreviation.
type Department struct {
	Abbrev  string    `xml:"abbrev,attr"`
	Name    string    `xml:"name,attr"`
	Courses []*Course `xml:"course"`
}

// Course is a course node.
type Course struct {
	Number     string     `xml:"number,attr"`
	Name       string     `xml:"name,attr"`
	MinCredits string     `xml:"min-credits,attr"`
	MaxCredits string     `xml:"max-credits,attr"`
	GradeType  string     `xml:"grade-type,attr"`
	Sections   []*Section `xml:"section"`
}

// Section is a section node.
type Section struct {
	CRN     string    `xml:"crn,attr"`
	Number  string    `xml:"number,attr"`
	Seats   string    `xml:"seats,attr"`
	Periods []*Period `xml:"period"`
}

// Period is one weekly meeting slot. Days is a comma-joined list of
// three-letter weekday labels in source order.
type Period struct {
	Type      string `xml:"type,attr"`
	Professor string `xml:"professor,attr"`
	Starts    string `xml:"starts,attr"`
	Ends      string `xml:"ends,attr"`
	Days      string `xml:"days,attr"`
}

// CourseKey identifies a course by department abbreviation and number.
type CourseKey struct {
	Dept   string `json:"dept"`
	Number string `json:"number"`
}

// String returns the "DEPT-NUMBER" form used in logs and reports.
func (k CourseKey) String() string {
	return fmt.Sprintf("%s-%s", k.Dept, k.Number)
}

// CourseCount returns the number of course nodes across all departments.
func (s *Schedb) CourseCount() int {
	total := 0
	for _, dept := range s.Departments {
		total += len(dept.Courses)
	}

	return total
}

// Courses indexes every course by its key.
func (s *Schedb) Courses() map[CourseKey]*Course {
	index := make(map[CourseKey]*Course, s.CourseCount())

	for _, dept := range s.Departments {
		for _, course := range dept.Courses {
			index[CourseKey{Dept: dept.Abbrev, Number: course.Number}] = course
		}
	}

	return index
}
