package grading

import (
	"math"
	"strings"

	"github.com/supersonicwisd1/result-processing-system/pkg/contracts/domain"
)

// Report is the outcome of folding a set of stored scores: results grouped
// by session then semester, plus running grand totals across everything.
type Report struct {
	Sessions          map[string]*domain.SessionReport
	TotalCreditEarned int
	TotalGradePoint   float64
	// Skipped counts records whose semester name did not contain a
	// session/semester separator and were left out of the grouping.
	Skipped int
}

// Aggregate folds stored score records into per-semester GPA buckets grouped
// by academic session.
//
// The semester name is split on the first space only: "2023/2024 First"
// yields session "2023/2024" and semester "First", and a semester label with
// embedded spaces ("First Semester") stays intact. Records whose name has no
// space cannot be grouped and are skipped, never dropped silently mid-fold.
// Course contributions are appended in input order.
func Aggregate(scores []domain.StoredScore) *Report {
	r := &Report{Sessions: make(map[string]*domain.SessionReport)}

	for _, s := range scores {
		session, semester, ok := splitSemesterKey(s.SemesterName)
		if !ok {
			r.Skipped++
			continue
		}

		sess := r.Sessions[session]
		if sess == nil {
			sess = &domain.SessionReport{
				Session:    session,
				BySemester: make(map[string]*domain.SemesterReport),
			}
			r.Sessions[session] = sess
		}

		sem := sess.BySemester[semester]
		if sem == nil {
			sem = &domain.SemesterReport{}
			sess.BySemester[semester] = sem
		}

		point := Point(s.Grade, s.CourseUnit)

		sem.TotalCreditEarned += s.CourseUnit
		sem.TotalGradePoint += point
		r.TotalCreditEarned += s.CourseUnit
		r.TotalGradePoint += point

		sem.Courses = append(sem.Courses, domain.CourseContribution{
			CourseCode:           s.CourseCode,
			CourseTitle:          s.CourseTitle,
			CourseUnit:           s.CourseUnit,
			Level:                s.CourseLevel,
			Semester:             semester,
			ContinuousAssessment: s.ContinuousAssessment,
			ExamScore:            s.ExamScore,
			TotalScore:           s.TotalScore,
			Grade:                s.Grade,
			Point:                point,
		})
	}

	// GPA per semester, then session totals derived as sums of their
	// semesters rather than tracked incrementally.
	for _, sess := range r.Sessions {
		for _, sem := range sess.BySemester {
			if sem.TotalCreditEarned > 0 {
				sem.GPA = sem.TotalGradePoint / float64(sem.TotalCreditEarned)
			}
			sess.OverallCreditEarned += sem.TotalCreditEarned
			sess.OverallGradePoint += sem.TotalGradePoint
		}
	}

	return r
}

// CGPA returns the cumulative GPA across all aggregated records, rounded to
// two decimal places, or 0 when no credit has been earned.
func (r *Report) CGPA() float64 {
	if r.TotalCreditEarned == 0 {
		return 0
	}
	return math.Round(r.TotalGradePoint/float64(r.TotalCreditEarned)*100) / 100
}

// splitSemesterKey splits a stored semester name into session and semester
// labels on the first space.
func splitSemesterKey(name string) (session, semester string, ok bool) {
	parts := strings.SplitN(strings.TrimSpace(name), " ", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
