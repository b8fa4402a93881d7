package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/crestwood-digital/school-admin-api/internal/models"
)

// FeeRepository handles persistence for student fees.
type FeeRepository struct {
	db *sqlx.DB
}

// NewFeeRepository creates a new repository instance.
func NewFeeRepository(db *sqlx.DB) *FeeRepository {
	return &FeeRepository{db: db}
}

// Create persists a new fee charge.
func (r *FeeRepository) Create(ctx context.Context, fee *models.Fee) error {
	const query = `INSERT INTO fees (student_id, fee_type, amount, due_date, academic_year_id, month, is_paid, paid_amount)
VALUES ($1, $2, $3, $4, $5, $6, FALSE, 0) RETURNING id`
	if err := r.db.GetContext(ctx, &fee.ID, query, fee.StudentID, fee.FeeType, fee.Amount, fee.DueDate, fee.AcademicYearID, fee.Month); err != nil {
		return fmt.Errorf("create fee: %w", err)
	}
	return nil
}

// FindByID returns a fee by id.
func (r *FeeRepository) FindByID(ctx context.Context, id int64) (*models.Fee, error) {
	const query = `SELECT id, student_id, fee_type, amount, due_date, academic_year_id, month, is_paid, paid_amount, payment_date, payment_method, transaction_id FROM fees WHERE id = $1 LIMIT 1`
	var fee models.Fee
	if err := r.db.GetContext(ctx, &fee, query, id); err != nil {
		return nil, err
	}
	return &fee, nil
}

// ListByStudent returns a student's fees ordered by due date.
func (r *FeeRepository) ListByStudent(ctx context.Context, studentID int64) ([]models.Fee, error) {
	const query = `SELECT id, student_id, fee_type, amount, due_date, academic_year_id, month, is_paid, paid_amount, payment_date, payment_method, transaction_id FROM fees WHERE student_id = $1 ORDER BY due_date ASC`
	var fees []models.Fee
	if err := r.db.SelectContext(ctx, &fees, query, studentID); err != nil {
		return nil, fmt.Errorf("list fees: %w", err)
	}
	return fees, nil
}

// RecordPayment marks a fee paid with the settlement details.
func (r *FeeRepository) RecordPayment(ctx context.Context, id int64, paidAmount float64, method, transactionID string, paymentDate time.Time) error {
	const query = `UPDATE fees SET is_paid = TRUE, paid_amount = $2, payment_method = $3, transaction_id = $4, payment_date = $5 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, paidAmount, method, transactionID, paymentDate); err != nil {
		return fmt.Errorf("record payment: %w", err)
	}
	return nil
}
