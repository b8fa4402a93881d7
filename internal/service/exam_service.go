package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/crestwood-digital/school-admin-api/internal/models"
	"github.com/crestwood-digital/school-admin-api/internal/repository"
	appErrors "github.com/crestwood-digital/school-admin-api/pkg/errors"
	"github.com/crestwood-digital/school-admin-api/pkg/export"
)

type examRepository interface {
	Create(ctx context.Context, exam *models.Exam) error
	FindByID(ctx context.Context, id int64) (*models.Exam, error)
	ListByClass(ctx context.Context, classID int64) ([]models.Exam, error)
	CreateResult(ctx context.Context, result *models.ExamResult) error
	ListResults(ctx context.Context, examID int64) ([]models.ExamResultRow, error)
}

// ExamRequest schedules an examination.
type ExamRequest struct {
	Name            string `json:"name" validate:"required"`
	ExamType        string `json:"exam_type" validate:"required"`
	SubjectID       int64  `json:"subject_id" validate:"required,gt=0"`
	ClassID         int64  `json:"class_id" validate:"required,gt=0"`
	ExamDate        string `json:"exam_date" validate:"required"`
	DurationMinutes int    `json:"duration_minutes" validate:"required,gt=0"`
	MaxMarks        int    `json:"max_marks" validate:"required,gt=0"`
}

// ExamResultRequest records a student's marks.
type ExamResultRequest struct {
	StudentID     int64  `json:"student_id" validate:"required,gt=0"`
	MarksObtained int    `json:"marks_obtained" validate:"gte=0"`
	Remarks       string `json:"remarks"`
}

// ExamService manages exams, results and result-sheet exports.
type ExamService struct {
	repo      examRepository
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewExamService constructs an ExamService instance.
func NewExamService(repo examRepository, csv *export.CSVExporter, pdf *export.PDFExporter, validate *validator.Validate, logger *zap.Logger) *ExamService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ExamService{repo: repo, csv: csv, pdf: pdf, validator: validate, logger: logger}
}

// Create schedules an exam authored by the acting user.
func (s *ExamService) Create(ctx context.Context, createdBy int64, req ExamRequest) (*models.Exam, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "name, exam_type, subject_id, class_id, exam_date, duration_minutes and max_marks are required")
	}

	examDate, err := time.Parse("2006-01-02", req.ExamDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "exam_date must be YYYY-MM-DD")
	}

	exam := &models.Exam{
		Name:            req.Name,
		ExamType:        req.ExamType,
		SubjectID:       req.SubjectID,
		ClassID:         req.ClassID,
		ExamDate:        examDate,
		DurationMinutes: req.DurationMinutes,
		MaxMarks:        req.MaxMarks,
		CreatedBy:       createdBy,
	}
	if err := s.repo.Create(ctx, exam); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create exam")
	}
	return exam, nil
}

// Get returns one exam by id.
func (s *ExamService) Get(ctx context.Context, id int64) (*models.Exam, error) {
	exam, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}
	return exam, nil
}

// ListByClass returns a class's exams, most recent first.
func (s *ExamService) ListByClass(ctx context.Context, classID int64) ([]models.Exam, error) {
	if classID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class_id is required")
	}
	exams, err := s.repo.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list exams")
	}
	return exams, nil
}

// RecordResult stores a student's marks for an exam. The grade letter is
// derived from the mark percentage.
func (s *ExamService) RecordResult(ctx context.Context, examID int64, req ExamResultRequest) (*models.ExamResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "student_id is required and marks_obtained must not be negative")
	}

	exam, err := s.Get(ctx, examID)
	if err != nil {
		return nil, err
	}
	if req.MarksObtained > exam.MaxMarks {
		return nil, appErrors.Clone(appErrors.ErrValidation, "marks_obtained exceeds the exam's max_marks")
	}

	result := &models.ExamResult{
		ExamID:        examID,
		StudentID:     req.StudentID,
		MarksObtained: req.MarksObtained,
		Grade:         gradeFor(req.MarksObtained, exam.MaxMarks),
		Remarks:       req.Remarks,
	}
	if err := s.repo.CreateResult(ctx, result); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "result already recorded for this student")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record result")
	}
	return result, nil
}

// ListResults returns all recorded results for an exam with student
// identity attached.
func (s *ExamService) ListResults(ctx context.Context, examID int64) ([]models.ExamResultRow, error) {
	if _, err := s.Get(ctx, examID); err != nil {
		return nil, err
	}
	results, err := s.repo.ListResults(ctx, examID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list results")
	}
	return results, nil
}

// ExportResults renders the result sheet in the requested format. The
// returned content type matches the payload.
func (s *ExamService) ExportResults(ctx context.Context, examID int64, format string) ([]byte, string, error) {
	exam, err := s.Get(ctx, examID)
	if err != nil {
		return nil, "", err
	}
	results, err := s.repo.ListResults(ctx, examID)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list results")
	}

	dataset := resultDataset(results)
	switch format {
	case "", "csv":
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return payload, "text/csv", nil
	case "pdf":
		title := fmt.Sprintf("%s (%s) result sheet", exam.Name, exam.ExamType)
		payload, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

func resultDataset(results []models.ExamResultRow) export.Dataset {
	headers := []string{"student_code", "first_name", "last_name", "marks_obtained", "grade", "remarks"}
	rows := make([]map[string]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, map[string]string{
			"student_code":   r.StudentCode,
			"first_name":     r.FirstName,
			"last_name":      r.LastName,
			"marks_obtained": strconv.Itoa(r.MarksObtained),
			"grade":          r.Grade,
			"remarks":        r.Remarks,
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func gradeFor(marks, maxMarks int) string {
	if maxMarks <= 0 {
		return "F"
	}
	pct := marks * 100 / maxMarks
	switch {
	case pct >= 90:
		return "A+"
	case pct >= 80:
		return "A"
	case pct >= 70:
		return "B"
	case pct >= 60:
		return "C"
	case pct >= 50:
		return "D"
	default:
		return "F"
	}
}
