package normalizer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Lookup errors. These mean the tables are out of date relative to the feed
// and the run must stop.
var (
	ErrUnknownDepartment  = errors.New("unknown department code")
	ErrUnknownMeetingType = errors.New("unknown meeting type code")
	ErrUnknownWeekday     = errors.New("unknown weekday index")
)

// departmentNames maps registrar abbreviations to full department names.
// IHSS appears twice in the registrar's own listing; the later spelling is
// the one in effect.
var departmentNames = map[string]string{
	"ARCH": "Architecture",
	"ADMN": "Administration",
	"LGHT": "Lighting",
	"BMED": "Biomedical Engineering",
	"CHME": "Chemical Engineering",
	"CIVL": "Civil Engineering",
	"ECSE": "Electrical, Computer, and Systems Engineering",
	"ENGR": "General Engineering",
	"ENVE": "Environmental Engineering",
	"EPOW": "EPOW",
	"ESCI": "Engineering Science",
	"ISYE": "Industrial and Systems Engineering",
	"MANE": "Mechanical, Aerospace, and Nuclear Engineering",
	"MTLE": "Materials Science and Engineering",
	"ARTS": "Arts",
	"COMM": "Communication",
	"LANG": "Foreign Languages and Literature",
	"LITR": "Literature",
	"PHIL": "Philosophy",
	"STSH": "Science and Technology Studies (Humanities Courses)",
	"WRIT": "Writing",
	"COGS": "Cognitive Science",
	"ECON": "Economics",
	"IHSS": "Interdisciplinary Humanities and Social Science",
	"PSYC": "Psychology",
	"STSS": "Science and Technology Studies (Social Sciences Courses)",
	"ITWS": "Information Technology and Web Science",
	"MGMT": "Management",
	"ASTR": "Astronomy",
	"BCBP": "Biochemistry and Biophysics",
	"BIOL": "Biology",
	"CHEM": "Chemistry",
	"CISH": "Computer Science at Hartford",
	"CSCI": "Computer Science",
	"ISCI": "Interdisciplinary Science",
	"ERTH": "Earth and Environmental Science",
	"MATH": "Mathematics",
	"MATP": "Mathematical Programming, Probability, and Statistics",
	"PHYS": "Physics",
	"IENV": "Interdisciplinary Environmental Courses",
	"USAF": "Aerospace Studies (Air Force ROTC)",
	"USAR": "Military Science (Army ROTC)",
	"USNA": "Naval Science (Navy ROTC)",
	"NSST": "Natural Science for School Teachers",
}

// meetingTypeLabels maps feed meeting-type codes to schedb labels. A blank
// code is handled separately and means lecture.
var meetingTypeLabels = map[string]string{
	"LEC": "lecture",
	"LAB": "lab",
	"STU": "studio",
	"REC": "recitation",
	"SEM": "seminar",
	"TES": "test",
}

const defaultMeetingType = "lecture"

var weekdayLabels = [...]string{"mon", "tue", "wed", "thu", "fri"}

// DepartmentName returns the full name for a department abbreviation.
func DepartmentName(code string) (string, error) {
	name, ok := departmentNames[code]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownDepartment, code)
	}

	return name, nil
}

// MeetingTypeLabel returns the schedb label for a meeting-type code.
func MeetingTypeLabel(code string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return defaultMeetingType, nil
	}

	label, ok := meetingTypeLabels[code]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMeetingType, code)
	}

	return label, nil
}

// WeekdayLabel returns the three-letter label for a weekday index, Monday = 0.
func WeekdayLabel(index int) (string, error) {
	if index < 0 || index >= len(weekdayLabels) {
		return "", fmt.Errorf("%w: %d", ErrUnknownWeekday, index)
	}

	return weekdayLabels[index], nil
}

// ParseWeekday maps the text of a DAY element to its label.
func ParseWeekday(text string) (string, error) {
	index, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownWeekday, text)
	}

	return WeekdayLabel(index)
}

// Departments returns every known abbreviation. The order is unspecified.
func Departments() []string {
	codes := make([]string, 0, len(departmentNames))
	for code := range departmentNames {
		codes = append(codes, code)
	}

	return codes
}

// IsMeetingTypeLabel reports whether label is one MeetingTypeLabel produces.
func IsMeetingTypeLabel(label string) bool {
	for _, known := range meetingTypeLabels {
		if known == label {
			return true
		}
	}

	return false
}

// WeekdayIndex is the inverse of WeekdayLabel.
func WeekdayIndex(label string) (int, bool) {
	for i, known := range weekdayLabels {
		if known == label {
			return i, true
		}
	}

	return -1, false
}
