package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supersonicwisd1/result-processing-system/pkg/contracts/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testHeader() domain.CourseHeader {
	return domain.CourseHeader{
		CourseCode:  "CSC101",
		CourseTitle: "Introduction to Computer Science",
		CourseUnit:  3,
		Department:  "Computer Science",
		Faculty:     "Physical Sciences",
		Semester:    "First",
		Session:     "2023/2024",
		Level:       "100",
	}
}

func TestGetOrCreateStudent_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id1, err := s.GetOrCreateStudent(ctx, "2023/1001", "Ada Obi", "Computer Science")
	require.NoError(t, err)
	id2, err := s.GetOrCreateStudent(ctx, "2023/1001", "Ada Obi", "Computer Science")
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	id3, err := s.GetOrCreateStudent(ctx, "2023/1002", "Bola Eze", "Physics")
	require.NoError(t, err)
	assert.NotEqual(t, id1, id3)
}

func TestGetOrCreateStudent_RefreshesNonEmptyFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.GetOrCreateStudent(ctx, "2023/1001", "Ada Obi", "")
	require.NoError(t, err)

	// A later sheet supplies the department; an empty name must not erase
	// the stored one.
	_, err = s.GetOrCreateStudent(ctx, "2023/1001", "", "Computer Science")
	require.NoError(t, err)

	st, err := s.StudentByRegistration(ctx, "2023/1001")
	require.NoError(t, err)
	assert.Equal(t, id, st.ID)
	assert.Equal(t, "Ada Obi", st.Name)
	assert.Equal(t, "Computer Science", st.Department)
}

func TestGetOrCreateCourseAndSemester(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cid1, err := s.GetOrCreateCourse(ctx, testHeader())
	require.NoError(t, err)
	cid2, err := s.GetOrCreateCourse(ctx, testHeader())
	require.NoError(t, err)
	assert.Equal(t, cid1, cid2)

	c, err := s.CourseByCode(ctx, "CSC101")
	require.NoError(t, err)
	assert.Equal(t, 3, c.Unit)

	sid1, err := s.GetOrCreateSemester(ctx, "2023/2024 First")
	require.NoError(t, err)
	sid2, err := s.GetOrCreateSemester(ctx, "2023/2024 First")
	require.NoError(t, err)
	assert.Equal(t, sid1, sid2)
}

func seedScore(t *testing.T, s *Store, regNumber string, rec domain.ScoreRecord) int64 {
	t.Helper()
	ctx := context.Background()
	stID, err := s.GetOrCreateStudent(ctx, regNumber, rec.StudentName, rec.StudentDepartment)
	require.NoError(t, err)
	cID, err := s.GetOrCreateCourse(ctx, testHeader())
	require.NoError(t, err)
	semID, err := s.GetOrCreateSemester(ctx, "2023/2024 First")
	require.NoError(t, err)
	id, err := s.UpsertScore(ctx, stID, cID, semID, 1, rec)
	require.NoError(t, err)
	return id
}

func TestUpsertScore_ReuploadOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := domain.ScoreRecord{
		StudentName: "Ada Obi", StudentDepartment: "Computer Science", Level: "100",
		ContinuousAssessment: 20, ExamScore: 50, TotalScore: 70, Grade: "B",
	}
	id1 := seedScore(t, s, "2023/1001", rec)

	rec.ExamScore = 60
	rec.TotalScore = 80
	rec.Grade = "A"
	id2 := seedScore(t, s, "2023/1001", rec)
	assert.Equal(t, id1, id2)

	scores, err := s.ScoresByRegistration(ctx, "2023/1001")
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, 80.0, scores[0].TotalScore)
	assert.Equal(t, "A", scores[0].Grade)
}

func TestScoresByRegistration_JoinsCourseAndSemester(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedScore(t, s, "2023/1001", domain.ScoreRecord{
		StudentName: "Ada Obi", StudentDepartment: "Computer Science", Level: "100",
		ContinuousAssessment: 25, ExamScore: 55, TotalScore: 80, Grade: "A",
	})

	scores, err := s.ScoresByRegistration(ctx, "2023/1001")
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, "CSC101", scores[0].CourseCode)
	assert.Equal(t, 3, scores[0].CourseUnit)
	assert.Equal(t, "2023/2024 First", scores[0].SemesterName)
}

func TestScoresByCourseAndByDepartment(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedScore(t, s, "2023/1001", domain.ScoreRecord{
		StudentName: "Ada Obi", StudentDepartment: "Computer Science", Level: "100",
		TotalScore: 80, Grade: "A",
	})
	seedScore(t, s, "2023/1002", domain.ScoreRecord{
		StudentName: "Bola Eze", StudentDepartment: "Physics", Level: "100",
		TotalScore: 60, Grade: "C",
	})

	byCourse, err := s.ScoresByCourse(ctx, "CSC101", "2023/2024 First")
	require.NoError(t, err)
	assert.Len(t, byCourse, 2)

	byDept, err := s.ScoresByDepartment(ctx, "Computer Science", "100", "2023/2024 First")
	require.NoError(t, err)
	require.Len(t, byDept, 1)
	assert.Equal(t, "2023/1001", byDept[0].RegistrationNumber)

	none, err := s.ScoresByCourse(ctx, "CSC101", "2024/2025 First")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUpdateAndDeleteScore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id := seedScore(t, s, "2023/1001", domain.ScoreRecord{
		StudentName: "Ada Obi", TotalScore: 70, Grade: "B",
	})

	require.NoError(t, s.UpdateScore(ctx, id, 30, 55, 85, "A"))
	scores, err := s.ScoresByRegistration(ctx, "2023/1001")
	require.NoError(t, err)
	assert.Equal(t, 85.0, scores[0].TotalScore)

	require.NoError(t, s.DeleteScore(ctx, id))
	assert.ErrorIs(t, s.DeleteScore(ctx, id), ErrNotFound)
	assert.ErrorIs(t, s.UpdateScore(ctx, id, 0, 0, 0, "F"), ErrNotFound)
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := &domain.User{Username: "examoff", PasswordHash: "x", Role: domain.RoleExamOfficer}
	require.NoError(t, s.CreateUser(ctx, u))
	assert.NotZero(t, u.ID)

	dup := &domain.User{Username: "examoff", PasswordHash: "y", Role: domain.RoleLecturer}
	assert.ErrorIs(t, s.CreateUser(ctx, dup), ErrDuplicateUser)
}

func TestTokens_ResolveAndExpire(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := &domain.User{Username: "hod", PasswordHash: "x", Role: domain.RoleHOD}
	require.NoError(t, s.CreateUser(ctx, u))

	now := time.Now().UTC()
	require.NoError(t, s.CreateToken(ctx, "tok-live", u.ID, now.Add(time.Hour)))
	require.NoError(t, s.CreateToken(ctx, "tok-dead", u.ID, now.Add(-time.Hour)))

	got, err := s.UserByToken(ctx, "tok-live", now)
	require.NoError(t, err)
	assert.Equal(t, "hod", got.Username)

	_, err = s.UserByToken(ctx, "tok-dead", now)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.UserByToken(ctx, "tok-unknown", now)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.DeleteToken(ctx, "tok-live"))
	_, err = s.UserByToken(ctx, "tok-live", now)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordAction_And_RecentActions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordAction(ctx, domain.ActionLog{
		UserID: 1, Action: "upload", Resource: "scores", Details: "CSC101",
	}))
	require.NoError(t, s.RecordAction(ctx, domain.ActionLog{
		UserID: 1, Action: "delete", Resource: "scores", ResourceID: 7,
	}))

	actions, err := s.RecentActions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Equal(t, "delete", actions[0].Action)
	assert.Equal(t, int64(7), actions[0].ResourceID)
}
