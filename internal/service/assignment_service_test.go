package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crestwood-digital/school-admin-api/internal/models"
	appErrors "github.com/crestwood-digital/school-admin-api/pkg/errors"
)

type assignmentRepoStub struct {
	assignments map[int64]*models.Assignment
	created     *models.Assignment
	submitted   *models.AssignmentSubmission
}

func newAssignmentRepoStub() *assignmentRepoStub {
	return &assignmentRepoStub{assignments: make(map[int64]*models.Assignment)}
}

func (s *assignmentRepoStub) Create(ctx context.Context, assignment *models.Assignment) error {
	assignment.ID = 1
	s.created = assignment
	s.assignments[assignment.ID] = assignment
	return nil
}

func (s *assignmentRepoStub) FindByID(ctx context.Context, id int64) (*models.Assignment, error) {
	assignment, ok := s.assignments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return assignment, nil
}

func (s *assignmentRepoStub) ListByClass(ctx context.Context, classID int64) ([]models.Assignment, error) {
	return nil, nil
}

func (s *assignmentRepoStub) CreateSubmission(ctx context.Context, submission *models.AssignmentSubmission) error {
	submission.ID = 1
	s.submitted = submission
	return nil
}

func (s *assignmentRepoStub) FindSubmissionByID(ctx context.Context, id int64) (*models.AssignmentSubmission, error) {
	return nil, sql.ErrNoRows
}

func (s *assignmentRepoStub) GradeSubmission(ctx context.Context, id int64, marks int, feedback string, gradedBy int64, gradedAt time.Time) error {
	return nil
}

func (s *assignmentRepoStub) ListSubmissions(ctx context.Context, assignmentID int64) ([]models.AssignmentSubmission, error) {
	return nil, nil
}

// profileDirectoryStub maps account ids to student and teacher profiles.
type profileDirectoryStub struct {
	students map[int64]*models.Student
	teachers map[int64]*models.Teacher
}

func (s *profileDirectoryStub) FindStudentByUserID(ctx context.Context, userID int64) (*models.Student, error) {
	st, ok := s.students[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return st, nil
}

func (s *profileDirectoryStub) FindTeacherByUserID(ctx context.Context, userID int64) (*models.Teacher, error) {
	te, ok := s.teachers[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return te, nil
}

func TestAssignmentServiceCreateRecordsTeacherProfile(t *testing.T) {
	repo := newAssignmentRepoStub()
	profiles := &profileDirectoryStub{teachers: map[int64]*models.Teacher{
		12: {ID: 3, UserID: 12},
	}}
	svc := NewAssignmentService(repo, profiles, nil, nil)

	assignment, err := svc.Create(context.Background(), 12, AssignmentRequest{
		Title:     "Essay",
		SubjectID: 2,
		ClassID:   5,
		DueDate:   "2026-09-15",
		MaxMarks:  100,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), assignment.TeacherID)
}

func TestAssignmentServiceCreateWithoutTeacherProfile(t *testing.T) {
	repo := newAssignmentRepoStub()
	profiles := &profileDirectoryStub{teachers: map[int64]*models.Teacher{}}
	svc := NewAssignmentService(repo, profiles, nil, nil)

	_, err := svc.Create(context.Background(), 12, AssignmentRequest{
		Title:     "Essay",
		SubjectID: 2,
		ClassID:   5,
		DueDate:   "2026-09-15",
		MaxMarks:  100,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Status, appErrors.FromError(err).Status)
	assert.Nil(t, repo.created)
}

func TestAssignmentServiceSubmitRecordsStudentProfile(t *testing.T) {
	repo := newAssignmentRepoStub()
	repo.assignments[4] = &models.Assignment{ID: 4, MaxMarks: 100}
	profiles := &profileDirectoryStub{students: map[int64]*models.Student{
		42: {ID: 7, UserID: 42},
	}}
	svc := NewAssignmentService(repo, profiles, nil, nil)

	submission, err := svc.Submit(context.Background(), 42, SubmissionRequest{
		AssignmentID:   4,
		SubmissionText: "answer",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), submission.StudentID)
}

func TestAssignmentServiceSubmitWithoutStudentProfile(t *testing.T) {
	repo := newAssignmentRepoStub()
	repo.assignments[4] = &models.Assignment{ID: 4, MaxMarks: 100}
	profiles := &profileDirectoryStub{students: map[int64]*models.Student{}}
	svc := NewAssignmentService(repo, profiles, nil, nil)

	_, err := svc.Submit(context.Background(), 42, SubmissionRequest{
		AssignmentID:   4,
		SubmissionText: "answer",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Status, appErrors.FromError(err).Status)
	assert.Nil(t, repo.submitted)
}
