package normalizer

import (
	"errors"
	"testing"
)

func TestDepartmentName(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"CSCI", "Computer Science"},
		{"ECSE", "Electrical, Computer, and Systems Engineering"},
		{"IHSS", "Interdisciplinary Humanities and Social Science"},
		{"USNA", "Naval Science (Navy ROTC)"},
		{"EPOW", "EPOW"},
	}

	for _, tt := range tests {
		got, err := DepartmentName(tt.code)
		if err != nil {
			t.Errorf("DepartmentName(%q) returned error: %v", tt.code, err)

			continue
		}

		if got != tt.want {
			t.Errorf("DepartmentName(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestDepartmentName_Unknown(t *testing.T) {
	for _, code := range []string{"XXXX", "csci", "", " CSCI"} {
		_, err := DepartmentName(code)
		if !errors.Is(err, ErrUnknownDepartment) {
			t.Errorf("DepartmentName(%q) error = %v, want ErrUnknownDepartment", code, err)
		}
	}
}

func TestDepartments(t *testing.T) {
	if got := len(Departments()); got != 44 {
		t.Errorf("Departments() has %d codes, want 44", got)
	}
}

func TestMeetingTypeLabel(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"LEC", "lecture"},
		{"LAB", "lab"},
		{"STU", "studio"},
		{"REC", "recitation"},
		{"SEM", "seminar"},
		{"TES", "test"},
		{"   ", "lecture"},
		{"", "lecture"},
		{"\t", "lecture"},
	}

	for _, tt := range tests {
		got, err := MeetingTypeLabel(tt.code)
		if err != nil {
			t.Errorf("MeetingTypeLabel(%q) returned error: %v", tt.code, err)

			continue
		}

		if got != tt.want {
			t.Errorf("MeetingTypeLabel(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestMeetingTypeLabel_Unknown(t *testing.T) {
	for _, code := range []string{"IND", "lec", "LECT"} {
		_, err := MeetingTypeLabel(code)
		if !errors.Is(err, ErrUnknownMeetingType) {
			t.Errorf("MeetingTypeLabel(%q) error = %v, want ErrUnknownMeetingType", code, err)
		}
	}
}

func TestWeekdayLabel(t *testing.T) {
	want := []string{"mon", "tue", "wed", "thu", "fri"}

	for i, label := range want {
		got, err := WeekdayLabel(i)
		if err != nil {
			t.Fatalf("WeekdayLabel(%d) returned error: %v", i, err)
		}

		if got != label {
			t.Errorf("WeekdayLabel(%d) = %q, want %q", i, got, label)
		}
	}

	for _, index := range []int{-1, 5, 6} {
		if _, err := WeekdayLabel(index); !errors.Is(err, ErrUnknownWeekday) {
			t.Errorf("WeekdayLabel(%d) error = %v, want ErrUnknownWeekday", index, err)
		}
	}
}

func TestParseWeekday(t *testing.T) {
	got, err := ParseWeekday(" 3\n")
	if err != nil {
		t.Fatalf("ParseWeekday returned error: %v", err)
	}

	if got != "thu" {
		t.Errorf("ParseWeekday = %q, want thu", got)
	}

	for _, text := range []string{"", "M", "7"} {
		if _, err := ParseWeekday(text); !errors.Is(err, ErrUnknownWeekday) {
			t.Errorf("ParseWeekday(%q) error = %v, want ErrUnknownWeekday", text, err)
		}
	}
}

func TestIsMeetingTypeLabel(t *testing.T) {
	for _, label := range []string{"lecture", "lab", "studio", "recitation", "seminar", "test"} {
		if !IsMeetingTypeLabel(label) {
			t.Errorf("IsMeetingTypeLabel(%q) = false", label)
		}
	}

	for _, label := range []string{"LEC", "", "Lecture"} {
		if IsMeetingTypeLabel(label) {
			t.Errorf("IsMeetingTypeLabel(%q) = true", label)
		}
	}
}

func TestWeekdayIndex(t *testing.T) {
	for i := 0; i < 5; i++ {
		label, err := WeekdayLabel(i)
		if err != nil {
			t.Fatalf("WeekdayLabel(%d) error = %v", i, err)
		}

		if got, ok := WeekdayIndex(label); !ok || got != i {
			t.Errorf("WeekdayIndex(%q) = %d, %v, want %d", label, got, ok, i)
		}
	}

	if _, ok := WeekdayIndex("sat"); ok {
		t.Error("WeekdayIndex(sat) should not be known")
	}
}
