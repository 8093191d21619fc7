package extract

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// CSV result sheets put the header block in the first few rows and student
// data in fixed columns after the "Names" banner row.
const (
	csvHeaderRows = 8

	csvColName  = 0
	csvColRegNo = 1
	csvColDept  = 2
	csvColLevel = 3
	csvColCA    = 4
	csvColExam  = 5
	csvColTotal = 6
	csvColGrade = 7
	csvRowWidth = 8
)

// CSVExtractor reads the delimited-text result sheet format.
type CSVExtractor struct {
	Opts Options
}

func (e *CSVExtractor) Format() string { return "csv" }

// Extract reads the sheet, matching header labels in the first csvHeaderRows
// rows and fixed-position student rows after the results banner.
func (e *CSVExtractor) Extract(path string) (RawHeader, []RawRow, *Diagnostics, error) {
	f, err := os.Open(path)
	if err != nil {
		return RawHeader{}, nil, nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	// Header and data sections have different widths.
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return RawHeader{}, nil, nil, fmt.Errorf("read csv: %w", err)
	}

	diags := &Diagnostics{}
	header := parseTabularHeader(rows, csvHeaderRows)

	start := -1
	for i, row := range rows {
		if len(row) > 0 && strings.Contains(row[0], resultsMarker) {
			start = i + 1
			break
		}
	}
	if start == -1 {
		diags.skip(e.Format(), "results banner row not found")
		return header, nil, diags, nil
	}

	var raws []RawRow
	for _, row := range rows[start:] {
		if len(row) < csvRowWidth || !e.Opts.isRegNumber(row[csvColRegNo]) {
			continue
		}
		raws = append(raws, RawRow{
			Name:               strings.TrimSpace(row[csvColName]),
			RegistrationNumber: strings.TrimSpace(row[csvColRegNo]),
			Department:         strings.TrimSpace(row[csvColDept]),
			Level:              strings.TrimSpace(row[csvColLevel]),
			CA:                 strings.TrimSpace(row[csvColCA]),
			Exam:               strings.TrimSpace(row[csvColExam]),
			Total:              strings.TrimSpace(row[csvColTotal]),
			Grade:              strings.TrimSpace(row[csvColGrade]),
		})
	}
	diags.RowsExtracted = len(raws)

	return header, raws, diags, nil
}

// parseTabularHeader matches first-column labels over the leading rows of a
// row-oriented sheet. Which cell carries the value differs per label: the
// course title, department, faculty and lecturers sit in the second cell;
// the course code, unit, semester and session in the last.
func parseTabularHeader(rows [][]string, limit int) RawHeader {
	var h RawHeader
	if limit > len(rows) {
		limit = len(rows)
	}
	for _, row := range rows[:limit] {
		if len(row) < 2 {
			continue
		}
		first := strings.TrimSpace(row[0])
		last := strings.TrimSpace(row[len(row)-1])
		second := strings.TrimSpace(row[1])

		switch {
		case strings.Contains(first, labelCourseTitle):
			h.CourseTitle = second
		case strings.Contains(first, labelCourseCode):
			h.CourseCode = last
		case strings.Contains(first, labelCourseUnit):
			h.CourseUnit = last
		case strings.Contains(first, labelDepartment):
			h.Department = second
		case strings.Contains(first, labelFaculty):
			h.Faculty = second
		case strings.Contains(first, labelSemester):
			h.Semester = last
		case strings.Contains(first, labelSession):
			h.Session = last
		case strings.Contains(first, labelLecturers):
			h.Lecturers = second
		}
	}
	return h
}
