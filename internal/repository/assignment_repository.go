package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/crestwood-digital/school-admin-api/internal/models"
)

// AssignmentRepository handles persistence for assignments and their
// submissions.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository creates a new repository instance.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Create persists a new assignment.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO assignments (title, description, teacher_id, subject_id, class_id, due_date, max_marks, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	if err := r.db.GetContext(ctx, &assignment.ID, query, assignment.Title, assignment.Description, assignment.TeacherID, assignment.SubjectID, assignment.ClassID, assignment.DueDate, assignment.MaxMarks, assignment.CreatedAt); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// FindByID returns an assignment by id.
func (r *AssignmentRepository) FindByID(ctx context.Context, id int64) (*models.Assignment, error) {
	const query = `SELECT id, title, description, teacher_id, subject_id, class_id, due_date, max_marks, created_at FROM assignments WHERE id = $1 LIMIT 1`
	var assignment models.Assignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// ListByClass returns a class's assignments, newest first.
func (r *AssignmentRepository) ListByClass(ctx context.Context, classID int64) ([]models.Assignment, error) {
	const query = `SELECT id, title, description, teacher_id, subject_id, class_id, due_date, max_marks, created_at FROM assignments WHERE class_id = $1 ORDER BY created_at DESC`
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, classID); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}

// CreateSubmission persists a student's submission.
func (r *AssignmentRepository) CreateSubmission(ctx context.Context, submission *models.AssignmentSubmission) error {
	if submission.SubmittedAt.IsZero() {
		submission.SubmittedAt = time.Now().UTC()
	}
	const query = `INSERT INTO assignment_submissions (assignment_id, student_id, submission_text, submitted_at)
VALUES ($1, $2, $3, $4) RETURNING id`
	if err := r.db.GetContext(ctx, &submission.ID, query, submission.AssignmentID, submission.StudentID, submission.SubmissionText, submission.SubmittedAt); err != nil {
		return fmt.Errorf("create submission: %w", err)
	}
	return nil
}

// FindSubmissionByID returns a submission by id.
func (r *AssignmentRepository) FindSubmissionByID(ctx context.Context, id int64) (*models.AssignmentSubmission, error) {
	const query = `SELECT id, assignment_id, student_id, submission_text, submitted_at, marks_obtained, feedback, graded_by, graded_at FROM assignment_submissions WHERE id = $1 LIMIT 1`
	var submission models.AssignmentSubmission
	if err := r.db.GetContext(ctx, &submission, query, id); err != nil {
		return nil, err
	}
	return &submission, nil
}

// GradeSubmission records marks and feedback for a submission.
func (r *AssignmentRepository) GradeSubmission(ctx context.Context, id int64, marks int, feedback string, gradedBy int64, gradedAt time.Time) error {
	const query = `UPDATE assignment_submissions SET marks_obtained = $2, feedback = $3, graded_by = $4, graded_at = $5 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, marks, feedback, gradedBy, gradedAt); err != nil {
		return fmt.Errorf("grade submission: %w", err)
	}
	return nil
}

// ListSubmissions returns the submissions for an assignment.
func (r *AssignmentRepository) ListSubmissions(ctx context.Context, assignmentID int64) ([]models.AssignmentSubmission, error) {
	const query = `SELECT id, assignment_id, student_id, submission_text, submitted_at, marks_obtained, feedback, graded_by, graded_at FROM assignment_submissions WHERE assignment_id = $1 ORDER BY submitted_at ASC`
	var submissions []models.AssignmentSubmission
	if err := r.db.SelectContext(ctx, &submissions, query, assignmentID); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return submissions, nil
}
