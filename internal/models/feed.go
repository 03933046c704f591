package models

// Catalog is the registrar's per-semester export ("new" format).
// The root element name varies between semesters, so it is not pinned.
type Catalog struct {
	Timestamp string       `xml:"timestamp,attr"`
	Courses   []FeedCourse `xml:"COURSE"`
}

// FeedCourse is a COURSE element.
type FeedCourse struct {
	Dept      string        `xml:"dept,attr"`
	Num       string        `xml:"num,attr"`
	Name      string        `xml:"name,attr"`
	CredMin   string        `xml:"credmin,attr"`
	CredMax   string        `xml:"credmax,attr"`
	GradeType string        `xml:"gradetype,attr"`
	Sections  []FeedSection `xml:"SECTION"`
}

// FeedSection is a SECTION element.
type FeedSection struct {
	CRN     string       `xml:"crn,attr"`
	Num     string       `xml:"num,attr"`
	Seats   string       `xml:"seats,attr"`
	Periods []FeedPeriod `xml:"PERIOD"`
}

// FeedPeriod is a PERIOD element. Start and End are HHMM integers or a
// placeholder such as "** TBA **".
type FeedPeriod struct {
	Type       string   `xml:"type,attr"`
	Start      string   `xml:"start,attr"`
	End        string   `xml:"end,attr"`
	Instructor string   `xml:"instructor,attr"`
	Days       []string `xml:"DAY"`
}

// Key identifies a course across both formats.
func (c *FeedCourse) Key() CourseKey {
	return CourseKey{Dept: c.Dept, Number: c.Num}
}
