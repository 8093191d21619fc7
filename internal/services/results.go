// Package services holds the orchestration layer between transport and the
// extraction, grading and storage packages.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/go-playground/validator/v10"

	"github.com/supersonicwisd1/result-processing-system/internal/extract"
	"github.com/supersonicwisd1/result-processing-system/internal/grading"
	"github.com/supersonicwisd1/result-processing-system/internal/store"
	"github.com/supersonicwisd1/result-processing-system/pkg/contracts/domain"
)

// ErrStudentNotFound is returned when a transcript is requested for an
// unknown registration number.
var ErrStudentNotFound = errors.New("services: student not found")

// ErrNoRecords is returned when a file yields a header but not a single
// usable score row.
var ErrNoRecords = errors.New("services: no usable score rows in file")

// ResultService orchestrates the upload pipeline and result queries.
type ResultService struct {
	store    *store.Store
	opts     extract.Options
	logger   *slog.Logger
	validate *validator.Validate
}

// NewResultService creates a result service.
func NewResultService(st *store.Store, opts extract.Options, logger *slog.Logger) *ResultService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResultService{
		store:    st,
		opts:     opts,
		logger:   logger,
		validate: validator.New(),
	}
}

// UploadOutcome summarizes one processed result sheet. Row-level failures
// surface here as diagnostics; they never abort the batch.
type UploadOutcome struct {
	Header        domain.CourseHeader `json:"header"`
	SemesterName  string              `json:"semester_name"`
	RecordsStored int                 `json:"records_stored"`
	RowsSkipped   int                 `json:"rows_skipped"`
	Problems      []string            `json:"problems,omitempty"`
}

// ProcessUpload runs the full pipeline over one file: extract, normalize,
// coerce, then persist every valid row. The file-level contract is strict
// (unreadable file or empty header is an error) while row-level problems
// are absorbed into the outcome.
func (s *ResultService) ProcessUpload(ctx context.Context, path string, meta domain.UploadMeta) (*UploadOutcome, error) {
	ex, err := extract.ForFile(path, s.opts)
	if err != nil {
		return nil, err
	}

	rawHdr, rawRows, extractDiags, err := ex.Extract(path)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", ex.Format(), err)
	}

	hdr := extract.NormalizeHeader(rawHdr)
	if err := s.validate.Struct(hdr); err != nil {
		return nil, fmt.Errorf("invalid course header: %w", err)
	}

	records, coerceDiags := extract.CoerceRows(rawRows, hdr, ex.Format())
	outcome := &UploadOutcome{
		Header:       hdr,
		SemesterName: hdr.SemesterKey(),
		RowsSkipped:  extractDiags.RowsSkipped + coerceDiags.RowsSkipped,
		Problems:     append(extractDiags.Problems, coerceDiags.Problems...),
	}
	if len(records) == 0 {
		return outcome, ErrNoRecords
	}

	courseID, err := s.store.GetOrCreateCourse(ctx, hdr)
	if err != nil {
		return nil, err
	}
	semesterID, err := s.store.GetOrCreateSemester(ctx, hdr.SemesterKey())
	if err != nil {
		return nil, err
	}

	for _, rec := range records {
		studentID, err := s.store.GetOrCreateStudent(ctx, rec.RegistrationNumber, rec.StudentName, rec.StudentDepartment)
		if err != nil {
			return nil, err
		}
		if _, err := s.store.UpsertScore(ctx, studentID, courseID, semesterID, meta.UploaderID, rec); err != nil {
			return nil, err
		}
		outcome.RecordsStored++
	}

	s.logger.InfoContext(ctx, "result sheet processed",
		slog.String("file", meta.OriginalFilename),
		slog.String("course", hdr.CourseCode),
		slog.String("semester", hdr.SemesterKey()),
		slog.Int("stored", outcome.RecordsStored),
		slog.Int("skipped", outcome.RowsSkipped))

	s.audit(ctx, meta.UploaderID, "upload", "scores", courseID,
		fmt.Sprintf("%s: %d rows stored, %d skipped", meta.OriginalFilename, outcome.RecordsStored, outcome.RowsSkipped))

	return outcome, nil
}

// SubmitScores persists manually submitted records under one course header,
// bypassing file extraction. Records are validated individually; a bad
// record is skipped and reported, same as a bad row in a sheet.
func (s *ResultService) SubmitScores(ctx context.Context, hdr domain.CourseHeader, records []domain.ScoreRecord, uploaderID int64) (*UploadOutcome, error) {
	if err := s.validate.Struct(hdr); err != nil {
		return nil, fmt.Errorf("invalid course header: %w", err)
	}

	outcome := &UploadOutcome{Header: hdr, SemesterName: hdr.SemesterKey()}
	valid := make([]domain.ScoreRecord, 0, len(records))
	for _, rec := range records {
		if err := s.validate.Struct(rec); err != nil {
			outcome.RowsSkipped++
			outcome.Problems = append(outcome.Problems, fmt.Sprintf("submit: %s: %v", rec.RegistrationNumber, err))
			continue
		}
		valid = append(valid, rec)
	}
	if len(valid) == 0 {
		return outcome, ErrNoRecords
	}

	courseID, err := s.store.GetOrCreateCourse(ctx, hdr)
	if err != nil {
		return nil, err
	}
	semesterID, err := s.store.GetOrCreateSemester(ctx, hdr.SemesterKey())
	if err != nil {
		return nil, err
	}
	for _, rec := range valid {
		studentID, err := s.store.GetOrCreateStudent(ctx, rec.RegistrationNumber, rec.StudentName, rec.StudentDepartment)
		if err != nil {
			return nil, err
		}
		if _, err := s.store.UpsertScore(ctx, studentID, courseID, semesterID, uploaderID, rec); err != nil {
			return nil, err
		}
		outcome.RecordsStored++
	}

	s.audit(ctx, uploaderID, "submit", "scores", courseID,
		fmt.Sprintf("%s: %d rows stored, %d skipped", hdr.CourseCode, outcome.RecordsStored, outcome.RowsSkipped))
	return outcome, nil
}

// Transcript builds the full aggregation report for one student. Sessions
// are ordered by session label so the output is deterministic.
func (s *ResultService) Transcript(ctx context.Context, regNumber string) (*domain.Transcript, error) {
	student, err := s.store.StudentByRegistration(ctx, regNumber)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrStudentNotFound
	}
	if err != nil {
		return nil, err
	}

	scores, err := s.store.ScoresByRegistration(ctx, regNumber)
	if err != nil {
		return nil, err
	}

	report := grading.Aggregate(scores)

	sessions := make([]*domain.SessionReport, 0, len(report.Sessions))
	for _, sess := range report.Sessions {
		sessions = append(sessions, sess)
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].Session < sessions[j].Session })

	t := &domain.Transcript{
		StudentName:        student.Name,
		RegistrationNumber: student.RegistrationNumber,
		TotalCreditEarned:  report.TotalCreditEarned,
		TotalGradePoint:    report.TotalGradePoint,
		CGPA:               report.CGPA(),
		Sessions:           sessions,
	}
	if len(sessions) > 0 {
		t.Session = sessions[len(sessions)-1].Session
	}
	return t, nil
}

// ResultsByCourse returns the stored scores for one course in one semester.
func (s *ResultService) ResultsByCourse(ctx context.Context, courseCode, semesterName string) ([]domain.StoredScore, error) {
	return s.store.ScoresByCourse(ctx, courseCode, semesterName)
}

// ResultsByDepartment returns the stored scores for one department and
// level in one semester.
func (s *ResultService) ResultsByDepartment(ctx context.Context, department, level, semesterName string) ([]domain.StoredScore, error) {
	return s.store.ScoresByDepartment(ctx, department, level, semesterName)
}

// UpdateScore overwrites one score row and records the change.
func (s *ResultService) UpdateScore(ctx context.Context, actorID, scoreID int64, ca, exam, total float64, grade string) error {
	if !domain.KnownGrades[grade] {
		return fmt.Errorf("unrecognized grade %q", grade)
	}
	if err := s.store.UpdateScore(ctx, scoreID, ca, exam, total, grade); err != nil {
		return err
	}
	s.audit(ctx, actorID, "update", "scores", scoreID, fmt.Sprintf("grade=%s total=%.1f", grade, total))
	return nil
}

// DeleteScore removes one score row and records the deletion.
func (s *ResultService) DeleteScore(ctx context.Context, actorID, scoreID int64) error {
	if err := s.store.DeleteScore(ctx, scoreID); err != nil {
		return err
	}
	s.audit(ctx, actorID, "delete", "scores", scoreID, "")
	return nil
}

func (s *ResultService) audit(ctx context.Context, userID int64, action, resource string, resourceID int64, details string) {
	err := s.store.RecordAction(ctx, domain.ActionLog{
		UserID: userID, Action: action, Resource: resource, ResourceID: resourceID, Details: details,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "audit write failed", slog.String("action", action), slog.String("error", err.Error()))
	}
}
