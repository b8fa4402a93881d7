package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/crestwood-digital/school-admin-api/internal/models"
	appErrors "github.com/crestwood-digital/school-admin-api/pkg/errors"
)

type attendanceRepository interface {
	MarkBatch(ctx context.Context, records []models.Attendance) error
	ListByClassDate(ctx context.Context, classID int64, date time.Time) ([]models.Attendance, error)
	ListByStudent(ctx context.Context, studentID int64) ([]models.Attendance, error)
}

// AttendanceEntry is a single student's status within a batch.
type AttendanceEntry struct {
	StudentID int64  `json:"student_id" validate:"required,gt=0"`
	Status    string `json:"status" validate:"required"`
}

// AttendanceBatchRequest marks a whole class for one date. Date defaults
// to today when empty.
type AttendanceBatchRequest struct {
	ClassID   int64             `json:"class_id" validate:"required,gt=0"`
	SubjectID *int64            `json:"subject_id"`
	Date      string            `json:"date"`
	Entries   []AttendanceEntry `json:"entries" validate:"required,min=1,dive"`
}

// AttendanceService records and reports student attendance.
type AttendanceService struct {
	repo      attendanceRepository
	students  studentDirectory
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs an AttendanceService instance.
func NewAttendanceService(repo attendanceRepository, students studentDirectory, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AttendanceService{repo: repo, students: students, validator: validate, logger: logger}
}

// MarkBatch persists a class attendance sheet atomically. One invalid
// status rejects the whole batch.
func (s *AttendanceService) MarkBatch(ctx context.Context, markedBy int64, req AttendanceBatchRequest) ([]models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "class_id and at least one entry are required")
	}

	date := parseDateOr(req.Date, today())
	now := time.Now().UTC()

	records := make([]models.Attendance, 0, len(req.Entries))
	for _, entry := range req.Entries {
		if !models.ValidAttendanceStatus(entry.Status) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "status must be present, absent or late")
		}
		records = append(records, models.Attendance{
			StudentID: entry.StudentID,
			ClassID:   req.ClassID,
			SubjectID: req.SubjectID,
			Date:      date,
			Status:    models.AttendanceStatus(entry.Status),
			MarkedBy:  markedBy,
			MarkedAt:  now,
		})
	}

	if err := s.repo.MarkBatch(ctx, records); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark attendance")
	}
	return records, nil
}

// ListByClassDate returns the attendance sheet for a class on a date.
func (s *AttendanceService) ListByClassDate(ctx context.Context, classID int64, rawDate string) ([]models.Attendance, error) {
	if classID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class_id is required")
	}
	date := parseDateOr(rawDate, today())
	records, err := s.repo.ListByClassDate(ctx, classID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return records, nil
}

// ListByStudent returns a student's attendance history, newest first.
// Administrative roles may read any student; everyone else only their
// own profile.
func (s *AttendanceService) ListByStudent(ctx context.Context, actorUserID int64, actorRole models.UserRole, studentID int64) ([]models.Attendance, error) {
	if studentID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student_id is required")
	}
	if err := authorizeStudentScope(ctx, s.students, actorUserID, actorRole, studentID); err != nil {
		return nil, err
	}
	records, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return records, nil
}
