package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/crestwood-digital/school-admin-api/internal/models"
)

// ExamRepository handles persistence for exams and results.
type ExamRepository struct {
	db *sqlx.DB
}

// NewExamRepository creates a new repository instance.
func NewExamRepository(db *sqlx.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

// Create persists a new exam.
func (r *ExamRepository) Create(ctx context.Context, exam *models.Exam) error {
	const query = `INSERT INTO exams (name, exam_type, subject_id, class_id, exam_date, duration_minutes, max_marks, created_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	if err := r.db.GetContext(ctx, &exam.ID, query, exam.Name, exam.ExamType, exam.SubjectID, exam.ClassID, exam.ExamDate, exam.DurationMinutes, exam.MaxMarks, exam.CreatedBy); err != nil {
		return fmt.Errorf("create exam: %w", err)
	}
	return nil
}

// FindByID returns an exam by id.
func (r *ExamRepository) FindByID(ctx context.Context, id int64) (*models.Exam, error) {
	const query = `SELECT id, name, exam_type, subject_id, class_id, exam_date, duration_minutes, max_marks, created_by FROM exams WHERE id = $1 LIMIT 1`
	var exam models.Exam
	if err := r.db.GetContext(ctx, &exam, query, id); err != nil {
		return nil, err
	}
	return &exam, nil
}

// ListByClass returns a class's exams ordered by date.
func (r *ExamRepository) ListByClass(ctx context.Context, classID int64) ([]models.Exam, error) {
	const query = `SELECT id, name, exam_type, subject_id, class_id, exam_date, duration_minutes, max_marks, created_by FROM exams WHERE class_id = $1 ORDER BY exam_date ASC`
	var exams []models.Exam
	if err := r.db.SelectContext(ctx, &exams, query, classID); err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}
	return exams, nil
}

// CreateResult records marks for a student.
func (r *ExamRepository) CreateResult(ctx context.Context, result *models.ExamResult) error {
	const query = `INSERT INTO exam_results (exam_id, student_id, marks_obtained, grade, remarks)
VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := r.db.GetContext(ctx, &result.ID, query, result.ExamID, result.StudentID, result.MarksObtained, result.Grade, result.Remarks); err != nil {
		return fmt.Errorf("create exam result: %w", err)
	}
	return nil
}

// ListResults returns an exam's results joined with student identity,
// ordered by student code for stable sheets.
func (r *ExamRepository) ListResults(ctx context.Context, examID int64) ([]models.ExamResultRow, error) {
	const query = `SELECT er.id, er.exam_id, er.student_id, er.marks_obtained, er.grade, er.remarks,
s.student_id AS student_code, s.first_name, s.last_name
FROM exam_results er JOIN students s ON er.student_id = s.id
WHERE er.exam_id = $1 ORDER BY s.student_id ASC`
	var rows []models.ExamResultRow
	if err := r.db.SelectContext(ctx, &rows, query, examID); err != nil {
		return nil, fmt.Errorf("list exam results: %w", err)
	}
	return rows, nil
}
