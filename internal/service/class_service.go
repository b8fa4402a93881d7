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

type classRepository interface {
	ListAcademicYears(ctx context.Context) ([]models.AcademicYear, error)
	CreateAcademicYear(ctx context.Context, year *models.AcademicYear) error
	ListClasses(ctx context.Context, academicYearID int64) ([]models.Class, error)
	FindClassByID(ctx context.Context, id int64) (*models.Class, error)
	CreateClass(ctx context.Context, class *models.Class) error
	SetClassTeacher(ctx context.Context, classID, teacherID int64) error
}

// AcademicYearRequest carries a new academic year.
type AcademicYearRequest struct {
	Name      string `json:"name" validate:"required"`
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
	IsCurrent bool   `json:"is_current"`
}

// ClassRequest carries a new class.
type ClassRequest struct {
	Name           string `json:"name" validate:"required"`
	Section        string `json:"section" validate:"required"`
	AcademicYearID int64  `json:"academic_year_id" validate:"required,gt=0"`
}

// ClassService manages academic years and classes.
type ClassService struct {
	repo      classRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService constructs a ClassService instance.
func NewClassService(repo classRepository, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ClassService{repo: repo, validator: validate, logger: logger}
}

// ListAcademicYears returns all academic years, newest first.
func (s *ClassService) ListAcademicYears(ctx context.Context) ([]models.AcademicYear, error) {
	years, err := s.repo.ListAcademicYears(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list academic years")
	}
	return years, nil
}

// CreateAcademicYear registers a new academic year.
func (s *ClassService) CreateAcademicYear(ctx context.Context, req AcademicYearRequest) (*models.AcademicYear, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "name, start_date and end_date are required")
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start_date must be YYYY-MM-DD")
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must be YYYY-MM-DD")
	}
	if !end.After(start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must be after start_date")
	}

	year := &models.AcademicYear{Name: req.Name, StartDate: start, EndDate: end, IsCurrent: req.IsCurrent}
	if err := s.repo.CreateAcademicYear(ctx, year); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create academic year")
	}
	return year, nil
}

// ListClasses returns classes, optionally scoped to one academic year.
func (s *ClassService) ListClasses(ctx context.Context, academicYearID int64) ([]models.Class, error) {
	classes, err := s.repo.ListClasses(ctx, academicYearID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	return classes, nil
}

// GetClass returns one class by id.
func (s *ClassService) GetClass(ctx context.Context, id int64) (*models.Class, error) {
	class, err := s.repo.FindClassByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	return class, nil
}

// CreateClass registers a class under an academic year.
func (s *ClassService) CreateClass(ctx context.Context, req ClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "name, section and academic_year_id are required")
	}

	class := &models.Class{Name: req.Name, Section: req.Section, AcademicYearID: req.AcademicYearID}
	if err := s.repo.CreateClass(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class")
	}
	return class, nil
}

// AssignClassTeacher designates a teacher as class teacher.
func (s *ClassService) AssignClassTeacher(ctx context.Context, classID, teacherID int64) error {
	if teacherID <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "teacher_id is required")
	}
	if _, err := s.GetClass(ctx, classID); err != nil {
		return err
	}
	if err := s.repo.SetClassTeacher(ctx, classID, teacherID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign class teacher")
	}
	return nil
}
