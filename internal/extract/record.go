package extract

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/supersonicwisd1/result-processing-system/pkg/contracts/domain"
)

// CoerceRow type-checks one raw row against the canonical score record
// shape. A failure concerns only this row; the caller skips it and carries
// on with the rest of the batch.
//
// The total score is taken as given even when it disagrees with CA+exam;
// the sheets are the system of record and no reconciliation is attempted.
func CoerceRow(raw RawRow, hdr domain.CourseHeader) (domain.ScoreRecord, error) {
	regNo := strings.TrimSpace(raw.RegistrationNumber)
	if regNo == "" {
		return domain.ScoreRecord{}, fmt.Errorf("missing registration number")
	}

	name := strings.TrimSpace(raw.Name)
	if name == "" {
		return domain.ScoreRecord{}, fmt.Errorf("missing student name for %s", regNo)
	}

	ca, err := parseScore(raw.CA, "continuous assessment")
	if err != nil {
		return domain.ScoreRecord{}, fmt.Errorf("%s: %w", regNo, err)
	}
	exam, err := parseScore(raw.Exam, "exam score")
	if err != nil {
		return domain.ScoreRecord{}, fmt.Errorf("%s: %w", regNo, err)
	}
	total, err := parseScore(raw.Total, "total score")
	if err != nil {
		return domain.ScoreRecord{}, fmt.Errorf("%s: %w", regNo, err)
	}

	grade := strings.TrimSpace(raw.Grade)
	if !domain.KnownGrades[grade] {
		return domain.ScoreRecord{}, fmt.Errorf("%s: unrecognized grade %q", regNo, grade)
	}

	dept := strings.TrimSpace(raw.Department)
	if dept == "" {
		dept = hdr.Department
	}
	level := strings.TrimSpace(raw.Level)
	if level == "" {
		level = hdr.Level
	}

	return domain.ScoreRecord{
		RegistrationNumber:   regNo,
		StudentName:          name,
		StudentDepartment:    dept,
		Level:                level,
		ContinuousAssessment: ca,
		ExamScore:            exam,
		TotalScore:           total,
		Grade:                grade,
	}, nil
}

// CoerceRows runs CoerceRow over a batch, dropping failed rows into the
// diagnostics. Rows are independent: one bad row never affects another.
func CoerceRows(raws []RawRow, hdr domain.CourseHeader, format string) ([]domain.ScoreRecord, *Diagnostics) {
	diags := &Diagnostics{}
	records := make([]domain.ScoreRecord, 0, len(raws))
	for _, raw := range raws {
		rec, err := CoerceRow(raw, hdr)
		if err != nil {
			diags.skip(format, err.Error())
			continue
		}
		records = append(records, rec)
	}
	diags.RowsExtracted = len(records)
	return records, diags
}

func parseScore(s, field string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", field, strings.TrimSpace(s))
	}
	return v, nil
}
