package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/crestwood-digital/school-admin-api/internal/models"
)

// AttendanceRepository handles persistence for attendance records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository creates a new repository instance.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// MarkBatch inserts a set of attendance records atomically; a failing
// row rolls back the whole batch.
func (r *AttendanceRepository) MarkBatch(ctx context.Context, records []models.Attendance) (err error) {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin attendance transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `INSERT INTO attendance (student_id, class_id, subject_id, date, status, marked_by, marked_at)
VALUES (:student_id, :class_id, :subject_id, :date, :status, :marked_by, :marked_at)`
	for i := range records {
		if records[i].MarkedAt.IsZero() {
			records[i].MarkedAt = time.Now().UTC()
		}
		if _, err = tx.NamedExecContext(ctx, query, records[i]); err != nil {
			return fmt.Errorf("insert attendance: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit attendance transaction: %w", err)
	}
	return nil
}

// ListByClassDate returns the attendance sheet for a class on a date.
func (r *AttendanceRepository) ListByClassDate(ctx context.Context, classID int64, date time.Time) ([]models.Attendance, error) {
	const query = `SELECT id, student_id, class_id, subject_id, date, status, marked_by, marked_at FROM attendance WHERE class_id = $1 AND date = $2 ORDER BY student_id ASC`
	var records []models.Attendance
	if err := r.db.SelectContext(ctx, &records, query, classID, date); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return records, nil
}

// ListByStudent returns one student's attendance history, newest first.
func (r *AttendanceRepository) ListByStudent(ctx context.Context, studentID int64) ([]models.Attendance, error) {
	const query = `SELECT id, student_id, class_id, subject_id, date, status, marked_by, marked_at FROM attendance WHERE student_id = $1 ORDER BY date DESC`
	var records []models.Attendance
	if err := r.db.SelectContext(ctx, &records, query, studentID); err != nil {
		return nil, fmt.Errorf("list student attendance: %w", err)
	}
	return records, nil
}
