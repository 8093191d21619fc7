// Package grading computes grade points, semester GPA and cumulative CGPA
// from stored score records.
package grading

// gradePoints maps each letter grade to its point value on the 0-5 scale.
// Immutable after process start; never mutated at runtime.
var gradePoints = map[string]float64{
	"A": 5,
	"B": 4,
	"C": 3,
	"D": 2,
	"E": 1,
	"F": 0,
}

// Point returns the weighted grade point for a grade and course unit.
// An unrecognized grade contributes 0 points: the row keeps its credit
// weight in GPA denominators but earns nothing ("unknown = no credit").
func Point(grade string, courseUnit int) float64 {
	return gradePoints[grade] * float64(courseUnit)
}
