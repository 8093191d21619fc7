package domain

import (
	"time"
)

// Grade letters recognized by the institution's result sheets.
const (
	GradeA = "A"
	GradeB = "B"
	GradeC = "C"
	GradeD = "D"
	GradeE = "E"
	GradeF = "F"
)

// KnownGrades is the closed set of letter grades a score row may carry.
var KnownGrades = map[string]bool{
	GradeA: true,
	GradeB: true,
	GradeC: true,
	GradeD: true,
	GradeE: true,
	GradeF: true,
}

// CourseHeader is the canonical header block recovered from one result
// document, regardless of source format.
type CourseHeader struct {
	CourseCode  string `json:"course_code" db:"course_code" validate:"required"`
	CourseTitle string `json:"course_title" db:"course_title"`
	CourseUnit  int    `json:"course_unit" db:"course_unit" validate:"min=0"`
	Department  string `json:"department" db:"department"`
	Faculty     string `json:"faculty" db:"faculty"`
	Semester    string `json:"semester" db:"semester"`
	Session     string `json:"session" db:"session"`
	Lecturers   string `json:"lecturers,omitempty" db:"lecturers"`
	Level       string `json:"level,omitempty" db:"level"`
}

// SemesterKey combines session and semester into the unique key for one
// semester instance, e.g. "2023/2024 First".
func (h CourseHeader) SemesterKey() string {
	return h.Session + " " + h.Semester
}

// ScoreRecord is one student's canonical score row for a course.
//
// TotalScore is stored as given by the source document even when it
// disagrees with ContinuousAssessment+ExamScore; no reconciliation is
// performed.
type ScoreRecord struct {
	RegistrationNumber   string  `json:"registration_number" db:"registration_number" validate:"required"`
	StudentName          string  `json:"student_name" db:"student_name" validate:"required"`
	StudentDepartment    string  `json:"student_department" db:"student_department"`
	Level                string  `json:"level,omitempty" db:"level"`
	ContinuousAssessment float64 `json:"continuous_assessment" db:"continuous_assessment" validate:"min=0"`
	ExamScore            float64 `json:"exam_score" db:"exam_score" validate:"min=0"`
	TotalScore           float64 `json:"total_score" db:"total_score" validate:"min=0"`
	Grade                string  `json:"grade" db:"grade" validate:"required,oneof=A B C D E F"`
}

// Student is the identity entity keyed by registration number. The
// decision to insert or reuse an existing row belongs to the store.
type Student struct {
	ID                 int64     `json:"id" db:"id"`
	RegistrationNumber string    `json:"registration_number" db:"registration_number"`
	Name               string    `json:"name" db:"name"`
	Department         string    `json:"department" db:"department"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
}

// Course is the identity entity keyed by course code.
type Course struct {
	ID         int64     `json:"id" db:"id"`
	Code       string    `json:"code" db:"code"`
	Title      string    `json:"title" db:"title"`
	Unit       int       `json:"unit" db:"unit"`
	Department string    `json:"department" db:"department"`
	Faculty    string    `json:"faculty" db:"faculty"`
	Level      string    `json:"level" db:"level"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Semester is the identity entity keyed by its full "session semester" name.
type Semester struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// StoredScore is a score row joined with its course and semester as fetched
// from the store, ready for aggregation.
type StoredScore struct {
	ID                   int64   `json:"id" db:"id"`
	RegistrationNumber   string  `json:"registration_number" db:"registration_number"`
	StudentName          string  `json:"student_name" db:"student_name"`
	StudentDepartment    string  `json:"student_department" db:"student_department"`
	CourseCode           string  `json:"course_code" db:"course_code"`
	CourseTitle          string  `json:"course_title" db:"course_title"`
	CourseUnit           int     `json:"course_unit" db:"course_unit"`
	CourseLevel          string  `json:"course_level" db:"course_level"`
	SemesterName         string  `json:"semester_name" db:"semester_name"`
	ContinuousAssessment float64 `json:"continuous_assessment" db:"continuous_assessment"`
	ExamScore            float64 `json:"exam_score" db:"exam_score"`
	TotalScore           float64 `json:"total_score" db:"total_score"`
	Grade                string  `json:"grade" db:"grade"`
}

// UploadMeta is provenance metadata attached by the caller to a batch of
// extracted records; the extractors never derive it themselves.
type UploadMeta struct {
	OriginalFilename string    `json:"original_filename"`
	UploadedAt       time.Time `json:"uploaded_at"`
	UploaderID       int64     `json:"uploader_id"`
}
