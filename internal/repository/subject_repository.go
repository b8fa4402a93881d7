package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/crestwood-digital/school-admin-api/internal/models"
)

// SubjectRepository handles persistence for subjects and teaching
// assignments.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository creates a new repository instance.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// List returns all subjects ordered by code.
func (r *SubjectRepository) List(ctx context.Context) ([]models.Subject, error) {
	const query = `SELECT id, name, code, description FROM subjects ORDER BY code ASC`
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// FindByID returns a subject by id.
func (r *SubjectRepository) FindByID(ctx context.Context, id int64) (*models.Subject, error) {
	const query = `SELECT id, name, code, description FROM subjects WHERE id = $1 LIMIT 1`
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		return nil, err
	}
	return &subject, nil
}

// ExistsByCode checks uniqueness of subject code.
func (r *SubjectRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	const query = `SELECT 1 FROM subjects WHERE LOWER(code) = LOWER($1) LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, code); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check subject code: %w", err)
	}
	return true, nil
}

// Create persists a new subject.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	const query = `INSERT INTO subjects (name, code, description) VALUES ($1, $2, $3) RETURNING id`
	if err := r.db.GetContext(ctx, &subject.ID, query, subject.Name, subject.Code, subject.Description); err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}

// AssignTeacher maps a teacher to teach a subject for a class.
func (r *SubjectRepository) AssignTeacher(ctx context.Context, assignment *models.TeacherSubject) error {
	const query = `INSERT INTO teacher_subjects (teacher_id, subject_id, class_id) VALUES ($1, $2, $3) RETURNING id`
	if err := r.db.GetContext(ctx, &assignment.ID, query, assignment.TeacherID, assignment.SubjectID, assignment.ClassID); err != nil {
		return fmt.Errorf("assign teacher subject: %w", err)
	}
	return nil
}

// ListAssignments returns the teaching assignments for a class.
func (r *SubjectRepository) ListAssignments(ctx context.Context, classID int64) ([]models.TeacherSubject, error) {
	const query = `SELECT id, teacher_id, subject_id, class_id FROM teacher_subjects WHERE class_id = $1 ORDER BY id ASC`
	var assignments []models.TeacherSubject
	if err := r.db.SelectContext(ctx, &assignments, query, classID); err != nil {
		return nil, fmt.Errorf("list teacher subjects: %w", err)
	}
	return assignments, nil
}
