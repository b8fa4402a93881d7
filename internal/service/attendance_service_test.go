package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crestwood-digital/school-admin-api/internal/models"
	appErrors "github.com/crestwood-digital/school-admin-api/pkg/errors"
)

type attendanceRepoStub struct {
	marked []models.Attendance
}

func (s *attendanceRepoStub) MarkBatch(ctx context.Context, records []models.Attendance) error {
	s.marked = records
	return nil
}

func (s *attendanceRepoStub) ListByClassDate(ctx context.Context, classID int64, date time.Time) ([]models.Attendance, error) {
	return nil, nil
}

func (s *attendanceRepoStub) ListByStudent(ctx context.Context, studentID int64) ([]models.Attendance, error) {
	return nil, nil
}

func TestAttendanceServiceMarkBatch(t *testing.T) {
	repo := &attendanceRepoStub{}
	svc := NewAttendanceService(repo, nil, nil, nil)

	records, err := svc.MarkBatch(context.Background(), 9, AttendanceBatchRequest{
		ClassID: 3,
		Date:    "2026-09-01",
		Entries: []AttendanceEntry{
			{StudentID: 1, Status: "present"},
			{StudentID: 2, Status: "late"},
		},
	})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, models.AttendanceLate, records[1].Status)
	assert.Equal(t, int64(9), records[0].MarkedBy)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), records[0].Date)
	assert.Len(t, repo.marked, 2)
}

func TestAttendanceServiceMarkBatchInvalidStatusRejectsAll(t *testing.T) {
	repo := &attendanceRepoStub{}
	svc := NewAttendanceService(repo, nil, nil, nil)

	_, err := svc.MarkBatch(context.Background(), 9, AttendanceBatchRequest{
		ClassID: 3,
		Entries: []AttendanceEntry{
			{StudentID: 1, Status: "present"},
			{StudentID: 2, Status: "vacationing"},
		},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Status, appErrors.FromError(err).Status)
	assert.Empty(t, repo.marked)
}

func TestAttendanceServiceMarkBatchEmpty(t *testing.T) {
	svc := NewAttendanceService(&attendanceRepoStub{}, nil, nil, nil)

	_, err := svc.MarkBatch(context.Background(), 9, AttendanceBatchRequest{ClassID: 3})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Status, appErrors.FromError(err).Status)
}

func TestAttendanceServiceMarkBatchDefaultsToToday(t *testing.T) {
	repo := &attendanceRepoStub{}
	svc := NewAttendanceService(repo, nil, nil, nil)

	records, err := svc.MarkBatch(context.Background(), 9, AttendanceBatchRequest{
		ClassID: 3,
		Entries: []AttendanceEntry{{StudentID: 1, Status: "absent"}},
	})
	require.NoError(t, err)
	now := time.Now().UTC()
	want := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	assert.Equal(t, want, records[0].Date)
}

func TestAttendanceServiceListByStudentCrossStudentForbidden(t *testing.T) {
	students := &studentDirectoryStub{students: map[int64]*models.Student{
		42: {ID: 7, UserID: 42},
	}}
	svc := NewAttendanceService(&attendanceRepoStub{}, students, nil, nil)

	_, err := svc.ListByStudent(context.Background(), 42, models.RoleStudent, 9)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Status, appErrors.FromError(err).Status)

	_, err = svc.ListByStudent(context.Background(), 42, models.RoleStudent, 7)
	require.NoError(t, err)
}
