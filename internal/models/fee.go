package models

import "time"

// Fee is a charge raised against a student for an academic year.
type Fee struct {
	ID             int64      `db:"id" json:"id"`
	StudentID      int64      `db:"student_id" json:"student_id"`
	FeeType        string     `db:"fee_type" json:"fee_type"`
	Amount         float64    `db:"amount" json:"amount"`
	DueDate        time.Time  `db:"due_date" json:"due_date"`
	AcademicYearID int64      `db:"academic_year_id" json:"academic_year_id"`
	Month          string     `db:"month" json:"month"`
	IsPaid         bool       `db:"is_paid" json:"is_paid"`
	PaidAmount     float64    `db:"paid_amount" json:"paid_amount"`
	PaymentDate    *time.Time `db:"payment_date" json:"payment_date,omitempty"`
	PaymentMethod  string     `db:"payment_method" json:"payment_method"`
	TransactionID  string     `db:"transaction_id" json:"transaction_id"`
}
