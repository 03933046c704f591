package report

import (
	"testing"
)

func TestTable_String(t *testing.T) {
	tests := []struct {
		name     string
		header   []string
		rows     [][]string
		expected string
	}{
		{
			name:   "Basic table",
			header: []string{"Header 1", "Header 2"},
			rows:   [][]string{{"val 1", "val 2"}},
			expected: `| Header 1 | Header 2 |
| -------- | -------- |
| val 1    | val 2    |
`,
		},
		{
			name:   "Narrow columns keep three dashes",
			header: []string{"A", "B"},
			rows:   [][]string{{"x", "y"}},
			expected: `| A   | B   |
| --- | --- |
| x   | y   |
`,
		},
		{
			name:   "Trim spaces in cells",
			header: []string{"  Col A  ", "Col B"},
			rows:   [][]string{{"   val A   ", "val B"}},
			expected: `| Col A | Col B |
| ----- | ----- |
| val A | val B |
`,
		},
		{
			name:   "Wide characters",
			header: []string{"Name", "Dept"},
			rows:   [][]string{{"日本語", "LANG"}, {"abc", "CSCI"}},
			expected: `| Name   | Dept |
| ------ | ---- |
| 日本語 | LANG |
| abc    | CSCI |
`,
		},
		{
			name:   "Ragged rows",
			header: []string{"Col A", "Col B"},
			rows:   [][]string{{"only"}, {"a", "b", "extra"}},
			expected: `| Col A | Col B |       |
| ----- | ----- | ----- |
| only  |       |       |
| a     | b     | extra |
`,
		},
		{
			name:   "Pipes are escaped",
			header: []string{"Reason"},
			rows:   [][]string{{"a|b"}},
			expected: `| Reason |
| ------ |
| a\|b   |
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := NewTable(tt.header...)
			for _, row := range tt.rows {
				table.Add(row...)
			}

			if got := table.String(); got != tt.expected {
				t.Errorf("String() mismatch.\nExpected:\n%s\nGot:\n%s", tt.expected, got)
			}
		})
	}
}
