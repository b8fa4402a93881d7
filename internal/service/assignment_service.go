package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/crestwood-digital/school-admin-api/internal/models"
	appErrors "github.com/crestwood-digital/school-admin-api/pkg/errors"
)

type assignmentRepository interface {
	Create(ctx context.Context, assignment *models.Assignment) error
	FindByID(ctx context.Context, id int64) (*models.Assignment, error)
	ListByClass(ctx context.Context, classID int64) ([]models.Assignment, error)
	CreateSubmission(ctx context.Context, submission *models.AssignmentSubmission) error
	FindSubmissionByID(ctx context.Context, id int64) (*models.AssignmentSubmission, error)
	GradeSubmission(ctx context.Context, id int64, marks int, feedback string, gradedBy int64, gradedAt time.Time) error
	ListSubmissions(ctx context.Context, assignmentID int64) ([]models.AssignmentSubmission, error)
}

type profileDirectory interface {
	FindStudentByUserID(ctx context.Context, userID int64) (*models.Student, error)
	FindTeacherByUserID(ctx context.Context, userID int64) (*models.Teacher, error)
}

// AssignmentRequest carries new coursework for a class.
type AssignmentRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	SubjectID   int64  `json:"subject_id" validate:"required,gt=0"`
	ClassID     int64  `json:"class_id" validate:"required,gt=0"`
	DueDate     string `json:"due_date" validate:"required"`
	MaxMarks    int    `json:"max_marks" validate:"required,gt=0"`
}

// SubmissionRequest carries a student's answer.
type SubmissionRequest struct {
	AssignmentID   int64  `json:"assignment_id" validate:"required,gt=0"`
	SubmissionText string `json:"submission_text" validate:"required"`
}

// GradeRequest carries a teacher's grading of a submission.
type GradeRequest struct {
	MarksObtained int    `json:"marks_obtained" validate:"gte=0"`
	Feedback      string `json:"feedback"`
}

// AssignmentService manages coursework, submissions and grading.
type AssignmentService struct {
	repo      assignmentRepository
	profiles  profileDirectory
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssignmentService constructs an AssignmentService instance.
func NewAssignmentService(repo assignmentRepository, profiles profileDirectory, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AssignmentService{repo: repo, profiles: profiles, validator: validate, logger: logger}
}

// Create issues coursework to a class. The author is recorded by
// teacher profile, so the caller's account must carry one.
func (s *AssignmentService) Create(ctx context.Context, actorUserID int64, req AssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "title, subject_id, class_id, due_date and max_marks are required")
	}

	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "due_date must be YYYY-MM-DD")
	}

	teacher, err := s.profiles.FindTeacherByUserID(ctx, actorUserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "a teacher profile is required to create assignments")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve teacher profile")
	}

	assignment := &models.Assignment{
		Title:       req.Title,
		Description: req.Description,
		TeacherID:   teacher.ID,
		SubjectID:   req.SubjectID,
		ClassID:     req.ClassID,
		DueDate:     dueDate,
		MaxMarks:    req.MaxMarks,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}
	return assignment, nil
}

// Get returns one assignment by id.
func (s *AssignmentService) Get(ctx context.Context, id int64) (*models.Assignment, error) {
	assignment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	return assignment, nil
}

// ListByClass returns a class's assignments, newest due date first.
func (s *AssignmentService) ListByClass(ctx context.Context, classID int64) ([]models.Assignment, error) {
	if classID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class_id is required")
	}
	assignments, err := s.repo.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return assignments, nil
}

// Submit records a student's answer to an assignment. The submission is
// keyed by the caller's student profile.
func (s *AssignmentService) Submit(ctx context.Context, actorUserID int64, req SubmissionRequest) (*models.AssignmentSubmission, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "assignment_id and submission_text are required")
	}

	if _, err := s.Get(ctx, req.AssignmentID); err != nil {
		return nil, err
	}

	student, err := s.profiles.FindStudentByUserID(ctx, actorUserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "a student profile is required to submit")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve student profile")
	}

	submission := &models.AssignmentSubmission{
		AssignmentID:   req.AssignmentID,
		StudentID:      student.ID,
		SubmissionText: req.SubmissionText,
		SubmittedAt:    time.Now().UTC(),
	}
	if err := s.repo.CreateSubmission(ctx, submission); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create submission")
	}
	return submission, nil
}

// Grade records marks and feedback for a submission. Marks above the
// assignment's maximum are rejected.
func (s *AssignmentService) Grade(ctx context.Context, gradedBy, submissionID int64, req GradeRequest) (*models.AssignmentSubmission, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "marks_obtained must not be negative")
	}

	submission, err := s.repo.FindSubmissionByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
	}

	assignment, err := s.Get(ctx, submission.AssignmentID)
	if err != nil {
		return nil, err
	}
	if req.MarksObtained > assignment.MaxMarks {
		return nil, appErrors.Clone(appErrors.ErrValidation, "marks_obtained exceeds the assignment's max_marks")
	}

	gradedAt := time.Now().UTC()
	if err := s.repo.GradeSubmission(ctx, submissionID, req.MarksObtained, req.Feedback, gradedBy, gradedAt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to grade submission")
	}

	submission.MarksObtained = &req.MarksObtained
	submission.Feedback = req.Feedback
	submission.GradedBy = &gradedBy
	submission.GradedAt = &gradedAt
	return submission, nil
}

// ListSubmissions returns all submissions for an assignment.
func (s *AssignmentService) ListSubmissions(ctx context.Context, assignmentID int64) ([]models.AssignmentSubmission, error) {
	if _, err := s.Get(ctx, assignmentID); err != nil {
		return nil, err
	}
	submissions, err := s.repo.ListSubmissions(ctx, assignmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submissions")
	}
	return submissions, nil
}
