package extract

import (
	"strconv"
	"strings"

	"github.com/supersonicwisd1/result-processing-system/pkg/contracts/domain"
)

// defaultLevel is the academic level recorded when a sheet does not carry
// one; the institution's result sheets currently only cover this level.
const defaultLevel = "100"

// NormalizeHeader reconciles the raw header fields from any extractor into
// the canonical course header. A course unit that does not parse as an
// integer defaults to 0 rather than failing the document. Cross-checking
// the header against already-stored courses is the caller's concern.
func NormalizeHeader(raw RawHeader) domain.CourseHeader {
	unit := 0
	if v, err := strconv.Atoi(strings.TrimSpace(raw.CourseUnit)); err == nil {
		unit = v
	}

	return domain.CourseHeader{
		CourseCode:  strings.TrimSpace(raw.CourseCode),
		CourseTitle: strings.TrimSpace(raw.CourseTitle),
		CourseUnit:  unit,
		Department:  strings.TrimSpace(raw.Department),
		Faculty:     strings.TrimSpace(raw.Faculty),
		Semester:    strings.TrimSpace(raw.Semester),
		Session:     strings.TrimSpace(raw.Session),
		Lecturers:   strings.TrimSpace(raw.Lecturers),
		Level:       defaultLevel,
	}
}
