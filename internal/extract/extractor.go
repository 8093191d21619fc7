package extract

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Header field labels shared by every format. A header row is recognized by
// matching its first cell against one of these; which cell holds the value
// differs per label and per format.
const (
	labelCourseTitle = "Title of Course"
	labelCourseCode  = "Course Code"
	labelCourseUnit  = "Course Unit"
	labelExamDate    = "Examination Date"
	labelDepartment  = "Department"
	labelFaculty     = "Faculty"
	labelSemester    = "Semester"
	labelSession     = "Session"
	labelLecturers   = "Name of Lecturers"

	// resultsMarker introduces the student data section in every format.
	resultsMarker = "Names"
)

// regNumberRe matches the institutional registration number shape, an
// admission year and a serial separated by a slash, e.g. "2019/243001".
var regNumberRe = regexp.MustCompile(`^\d{4}/\d+$`)

// RawHeader holds the unparsed header fields recovered from one document.
// All fields are strings exactly as read; NormalizeHeader coerces them.
type RawHeader struct {
	CourseTitle string
	CourseCode  string
	CourseUnit  string
	Department  string
	Faculty     string
	Semester    string
	Session     string
	Lecturers   string
}

// RawRow is one student row as read positionally from a document, prior to
// validation. It lives only between extraction and coercion.
type RawRow struct {
	Name               string
	RegistrationNumber string
	Department         string
	Level              string
	CA                 string
	Exam               string
	Total              string
	Grade              string
}

// Diagnostics reports what happened to the rows of one extraction call.
// Skipped rows carry a human-readable reason; they are never part of the
// returned row slice.
type Diagnostics struct {
	RowsExtracted int
	RowsSkipped   int
	Problems      []string
}

func (d *Diagnostics) skip(format string, reason string) {
	d.RowsSkipped++
	d.Problems = append(d.Problems, fmt.Sprintf("%s: %s", format, reason))
}

// Options tunes extraction behavior shared by all extractors.
type Options struct {
	// LegacyYearPrefix, when non-empty, restores the legacy behavior of
	// recognizing registration numbers by a literal year prefix such as
	// "2019/" instead of by shape. Only needed for byte parity with
	// output produced by the old import path.
	LegacyYearPrefix string
}

// isRegNumber reports whether a token looks like a registration number
// under the configured matching mode.
func (o Options) isRegNumber(s string) bool {
	s = strings.TrimSpace(s)
	if o.LegacyYearPrefix != "" {
		return strings.Contains(s, o.LegacyYearPrefix)
	}
	return regNumberRe.MatchString(s)
}

// Extractor recovers a raw header and raw student rows from one file.
//
// Implementations absorb row-level failures into the Diagnostics and only
// return an error for file-level problems, in which case the header and
// rows are empty.
type Extractor interface {
	// Format names the input format, e.g. "docx".
	Format() string
	Extract(path string) (RawHeader, []RawRow, *Diagnostics, error)
}

// ErrUnsupportedFormat is returned by ForFile for extensions outside the
// four supported formats.
type ErrUnsupportedFormat struct {
	Ext string
}

func (e *ErrUnsupportedFormat) Error() string {
	return fmt.Sprintf("unsupported file format %q (supported: .docx, .pdf, .csv, .xlsx)", e.Ext)
}

// ForFile selects the extractor for a file by its extension.
func ForFile(path string, opts Options) (Extractor, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".docx":
		return &DocxExtractor{Opts: opts}, nil
	case ".pdf":
		return &PDFExtractor{Opts: opts}, nil
	case ".csv":
		return &CSVExtractor{Opts: opts}, nil
	case ".xlsx":
		return &XLSXExtractor{Opts: opts}, nil
	default:
		return nil, &ErrUnsupportedFormat{Ext: filepath.Ext(path)}
	}
}

// SupportedExtensions lists the file extensions the dispatcher accepts.
func SupportedExtensions() []string {
	return []string{".docx", ".pdf", ".csv", ".xlsx"}
}
