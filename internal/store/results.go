package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/supersonicwisd1/result-processing-system/pkg/contracts/domain"
)

// GetOrCreateStudent returns the id of the student with the given
// registration number, inserting a new row when none exists. Name and
// department on an existing row are refreshed when the incoming values are
// non-empty, so later sheets with fuller data win.
func (s *Store) GetOrCreateStudent(ctx context.Context, regNumber, name, department string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM students WHERE registration_number = ?`, regNumber).Scan(&id)
	switch {
	case err == nil:
		if name != "" || department != "" {
			_, err = s.db.ExecContext(ctx,
				`UPDATE students SET
					name = CASE WHEN ? != '' THEN ? ELSE name END,
					department = CASE WHEN ? != '' THEN ? ELSE department END
				 WHERE id = ?`,
				name, name, department, department, id)
			if err != nil {
				return 0, fmt.Errorf("refresh student: %w", err)
			}
		}
		return id, nil
	case errors.Is(err, sql.ErrNoRows):
		return s.lastInsertID(ctx,
			`INSERT INTO students (registration_number, name, department) VALUES (?, ?, ?)`,
			regNumber, name, department)
	default:
		return 0, fmt.Errorf("lookup student: %w", err)
	}
}

// GetOrCreateCourse returns the id of the course with the header's code,
// inserting a new row when none exists.
func (s *Store) GetOrCreateCourse(ctx context.Context, hdr domain.CourseHeader) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM courses WHERE code = ?`, hdr.CourseCode).Scan(&id)
	switch {
	case err == nil:
		return id, nil
	case errors.Is(err, sql.ErrNoRows):
		return s.lastInsertID(ctx,
			`INSERT INTO courses (code, title, unit, department, faculty, level) VALUES (?, ?, ?, ?, ?, ?)`,
			hdr.CourseCode, hdr.CourseTitle, hdr.CourseUnit, hdr.Department, hdr.Faculty, hdr.Level)
	default:
		return 0, fmt.Errorf("lookup course: %w", err)
	}
}

// GetOrCreateSemester returns the id of the semester with the given full
// name ("<session> <semester>"), inserting a new row when none exists.
func (s *Store) GetOrCreateSemester(ctx context.Context, name string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM semesters WHERE name = ?`, name).Scan(&id)
	switch {
	case err == nil:
		return id, nil
	case errors.Is(err, sql.ErrNoRows):
		return s.lastInsertID(ctx, `INSERT INTO semesters (name) VALUES (?)`, name)
	default:
		return 0, fmt.Errorf("lookup semester: %w", err)
	}
}

// UpsertScore inserts a score row for (student, course, semester) or
// replaces the scores and grade on the existing row.
func (s *Store) UpsertScore(ctx context.Context, studentID, courseID, semesterID, uploaderID int64, rec domain.ScoreRecord) (int64, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scores (student_id, course_id, semester_id, continuous_assessment, exam_score, total_score, grade, level, uploaded_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(student_id, course_id, semester_id) DO UPDATE SET
			continuous_assessment = excluded.continuous_assessment,
			exam_score = excluded.exam_score,
			total_score = excluded.total_score,
			grade = excluded.grade,
			level = excluded.level,
			uploaded_by = excluded.uploaded_by`,
		studentID, courseID, semesterID,
		rec.ContinuousAssessment, rec.ExamScore, rec.TotalScore, rec.Grade, rec.Level, uploaderID)
	if err != nil {
		return 0, fmt.Errorf("upsert score: %w", err)
	}

	var id int64
	err = s.db.QueryRowContext(ctx,
		`SELECT id FROM scores WHERE student_id = ? AND course_id = ? AND semester_id = ?`,
		studentID, courseID, semesterID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("read back score id: %w", err)
	}
	return id, nil
}

const storedScoreSelect = `
SELECT sc.id, st.registration_number, st.name, st.department,
       c.code, c.title, c.unit, c.level,
       sem.name,
       sc.continuous_assessment, sc.exam_score, sc.total_score, sc.grade
FROM scores sc
JOIN students st ON st.id = sc.student_id
JOIN courses c ON c.id = sc.course_id
JOIN semesters sem ON sem.id = sc.semester_id`

func (s *Store) queryStoredScores(ctx context.Context, query string, args ...interface{}) ([]domain.StoredScore, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}
	defer rows.Close()

	var out []domain.StoredScore
	for rows.Next() {
		var sc domain.StoredScore
		if err := rows.Scan(
			&sc.ID, &sc.RegistrationNumber, &sc.StudentName, &sc.StudentDepartment,
			&sc.CourseCode, &sc.CourseTitle, &sc.CourseUnit, &sc.CourseLevel,
			&sc.SemesterName,
			&sc.ContinuousAssessment, &sc.ExamScore, &sc.TotalScore, &sc.Grade,
		); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// ScoresByRegistration returns every stored score for one student, oldest
// semester rows first by insertion order.
func (s *Store) ScoresByRegistration(ctx context.Context, regNumber string) ([]domain.StoredScore, error) {
	return s.queryStoredScores(ctx,
		storedScoreSelect+` WHERE st.registration_number = ? ORDER BY sc.id`, regNumber)
}

// ScoresByCourse returns every stored score for a course in one semester.
func (s *Store) ScoresByCourse(ctx context.Context, courseCode, semesterName string) ([]domain.StoredScore, error) {
	return s.queryStoredScores(ctx,
		storedScoreSelect+` WHERE c.code = ? AND sem.name = ? ORDER BY st.registration_number`,
		courseCode, semesterName)
}

// ScoresByDepartment returns stored scores for all students of a department
// at a given level in one semester.
func (s *Store) ScoresByDepartment(ctx context.Context, department, level, semesterName string) ([]domain.StoredScore, error) {
	return s.queryStoredScores(ctx,
		storedScoreSelect+` WHERE st.department = ? AND sc.level = ? AND sem.name = ?
		 ORDER BY st.registration_number`,
		department, level, semesterName)
}

// UpdateScore overwrites the scores and grade on one row.
func (s *Store) UpdateScore(ctx context.Context, scoreID int64, ca, exam, total float64, grade string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE scores SET continuous_assessment = ?, exam_score = ?, total_score = ?, grade = ? WHERE id = ?`,
		ca, exam, total, grade, scoreID)
	if err != nil {
		return fmt.Errorf("update score: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteScore removes one score row.
func (s *Store) DeleteScore(ctx context.Context, scoreID int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM scores WHERE id = ?`, scoreID)
	if err != nil {
		return fmt.Errorf("delete score: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// StudentByRegistration fetches one student row.
func (s *Store) StudentByRegistration(ctx context.Context, regNumber string) (*domain.Student, error) {
	var st domain.Student
	err := s.db.QueryRowContext(ctx,
		`SELECT id, registration_number, name, department, created_at FROM students WHERE registration_number = ?`,
		regNumber).Scan(&st.ID, &st.RegistrationNumber, &st.Name, &st.Department, &st.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup student: %w", err)
	}
	return &st, nil
}

// CourseByCode fetches one course row.
func (s *Store) CourseByCode(ctx context.Context, code string) (*domain.Course, error) {
	var c domain.Course
	err := s.db.QueryRowContext(ctx,
		`SELECT id, code, title, unit, department, faculty, level, created_at FROM courses WHERE code = ?`,
		code).Scan(&c.ID, &c.Code, &c.Title, &c.Unit, &c.Department, &c.Faculty, &c.Level, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup course: %w", err)
	}
	return &c, nil
}
