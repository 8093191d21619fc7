package domain

// CourseContribution is one course's line in a semester report, carrying the
// grade point it contributed to the semester totals.
type CourseContribution struct {
	CourseCode           string  `json:"course_code"`
	CourseTitle          string  `json:"course_title"`
	CourseUnit           int     `json:"course_unit"`
	Level                string  `json:"level,omitempty"`
	Semester             string  `json:"semester"`
	ContinuousAssessment float64 `json:"continuous_assessment"`
	ExamScore            float64 `json:"exam_score"`
	TotalScore           float64 `json:"total_score"`
	Grade                string  `json:"grade"`
	Point                float64 `json:"point"`
}

// SemesterReport holds one semester's totals and GPA. Courses appear in
// input order, which is the order results were fetched from the store.
type SemesterReport struct {
	TotalCreditEarned int                  `json:"total_credit_earned"`
	TotalGradePoint   float64              `json:"total_grade_point"`
	GPA               float64              `json:"GPA"`
	Courses           []CourseContribution `json:"courses"`
}

// SessionReport groups semester reports under one academic session.
type SessionReport struct {
	Session             string                     `json:"session"`
	OverallCreditEarned int                        `json:"overall_credit_earned"`
	OverallGradePoint   float64                    `json:"overall_grade_point"`
	BySemester          map[string]*SemesterReport `json:"results_by_semester"`
}

// Transcript is the full aggregation report for one student: every session
// on record plus cumulative totals and the CGPA rounded to two decimals.
type Transcript struct {
	StudentName        string           `json:"student_name"`
	RegistrationNumber string           `json:"registration_number"`
	Session            string           `json:"session"`
	TotalCreditEarned  int              `json:"total_credit_earned"`
	TotalGradePoint    float64          `json:"total_grade_point"`
	CGPA               float64          `json:"cgpa"`
	Sessions           []*SessionReport `json:"results"`
}
