package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/crestwood-digital/school-admin-api/internal/models"
)

// ClassRepository handles persistence for academic years and classes.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository creates a new repository instance.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// ListAcademicYears returns every academic year, newest first.
func (r *ClassRepository) ListAcademicYears(ctx context.Context) ([]models.AcademicYear, error) {
	const query = `SELECT id, name, start_date, end_date, is_current FROM academic_years ORDER BY start_date DESC`
	var years []models.AcademicYear
	if err := r.db.SelectContext(ctx, &years, query); err != nil {
		return nil, fmt.Errorf("list academic years: %w", err)
	}
	return years, nil
}

// CreateAcademicYear persists a new academic year.
func (r *ClassRepository) CreateAcademicYear(ctx context.Context, year *models.AcademicYear) error {
	const query = `INSERT INTO academic_years (name, start_date, end_date, is_current) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := r.db.GetContext(ctx, &year.ID, query, year.Name, year.StartDate, year.EndDate, year.IsCurrent); err != nil {
		return fmt.Errorf("create academic year: %w", err)
	}
	return nil
}

// ListClasses returns classes, optionally scoped to an academic year.
func (r *ClassRepository) ListClasses(ctx context.Context, academicYearID int64) ([]models.Class, error) {
	query := `SELECT id, name, section, academic_year_id, class_teacher_id FROM classes`
	var args []interface{}
	if academicYearID > 0 {
		query += ` WHERE academic_year_id = $1`
		args = append(args, academicYearID)
	}
	query += ` ORDER BY id ASC`

	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes, query, args...); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}

// FindClassByID returns a class by id.
func (r *ClassRepository) FindClassByID(ctx context.Context, id int64) (*models.Class, error) {
	const query = `SELECT id, name, section, academic_year_id, class_teacher_id FROM classes WHERE id = $1 LIMIT 1`
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		return nil, err
	}
	return &class, nil
}

// CreateClass persists a new class.
func (r *ClassRepository) CreateClass(ctx context.Context, class *models.Class) error {
	const query = `INSERT INTO classes (name, section, academic_year_id, class_teacher_id) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := r.db.GetContext(ctx, &class.ID, query, class.Name, class.Section, class.AcademicYearID, class.ClassTeacherID); err != nil {
		return fmt.Errorf("create class: %w", err)
	}
	return nil
}

// SetClassTeacher designates the class teacher.
func (r *ClassRepository) SetClassTeacher(ctx context.Context, classID, teacherID int64) error {
	const query = `UPDATE classes SET class_teacher_id = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, classID, teacherID); err != nil {
		return fmt.Errorf("set class teacher: %w", err)
	}
	return nil
}
