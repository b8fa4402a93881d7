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

type feeRepository interface {
	Create(ctx context.Context, fee *models.Fee) error
	FindByID(ctx context.Context, id int64) (*models.Fee, error)
	ListByStudent(ctx context.Context, studentID int64) ([]models.Fee, error)
	RecordPayment(ctx context.Context, id int64, paidAmount float64, method, transactionID string, paymentDate time.Time) error
}

type studentDirectory interface {
	FindStudentByUserID(ctx context.Context, userID int64) (*models.Student, error)
}

// authorizeStudentScope lets administrative roles through and limits
// everyone else to the student profile owned by their own account.
func authorizeStudentScope(ctx context.Context, students studentDirectory, actorUserID int64, actorRole models.UserRole, studentID int64) error {
	if actorRole == models.RoleAdmin || actorRole == models.RolePrincipal {
		return nil
	}
	student, err := students.FindStudentByUserID(ctx, actorUserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrForbidden, "no student profile for this account")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve student profile")
	}
	if student.ID != studentID {
		return appErrors.Clone(appErrors.ErrForbidden, "cannot view another student's records")
	}
	return nil
}

// FeeRequest raises a charge against a student.
type FeeRequest struct {
	StudentID      int64   `json:"student_id" validate:"required,gt=0"`
	FeeType        string  `json:"fee_type" validate:"required"`
	Amount         float64 `json:"amount" validate:"required,gt=0"`
	DueDate        string  `json:"due_date" validate:"required"`
	AcademicYearID int64   `json:"academic_year_id" validate:"required,gt=0"`
	Month          string  `json:"month"`
}

// PaymentRequest settles a fee.
type PaymentRequest struct {
	PaidAmount    float64 `json:"paid_amount" validate:"required,gt=0"`
	PaymentMethod string  `json:"payment_method" validate:"required"`
	TransactionID string  `json:"transaction_id"`
}

// FeeService manages fee charges and payments.
type FeeService struct {
	repo      feeRepository
	students  studentDirectory
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFeeService constructs a FeeService instance.
func NewFeeService(repo feeRepository, students studentDirectory, validate *validator.Validate, logger *zap.Logger) *FeeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &FeeService{repo: repo, students: students, validator: validate, logger: logger}
}

// Create raises a fee charge. New charges start unpaid.
func (s *FeeService) Create(ctx context.Context, req FeeRequest) (*models.Fee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "student_id, fee_type, amount, due_date and academic_year_id are required")
	}

	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "due_date must be YYYY-MM-DD")
	}

	fee := &models.Fee{
		StudentID:      req.StudentID,
		FeeType:        req.FeeType,
		Amount:         req.Amount,
		DueDate:        dueDate,
		AcademicYearID: req.AcademicYearID,
		Month:          req.Month,
	}
	if err := s.repo.Create(ctx, fee); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create fee")
	}
	return fee, nil
}

// Get returns one fee by id.
func (s *FeeService) Get(ctx context.Context, id int64) (*models.Fee, error) {
	fee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "fee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load fee")
	}
	return fee, nil
}

// ListByStudent returns a student's fee charges, most recent due first.
// Administrative roles may read any student; everyone else only their
// own profile.
func (s *FeeService) ListByStudent(ctx context.Context, actorUserID int64, actorRole models.UserRole, studentID int64) ([]models.Fee, error) {
	if studentID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student_id is required")
	}
	if err := authorizeStudentScope(ctx, s.students, actorUserID, actorRole, studentID); err != nil {
		return nil, err
	}
	fees, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list fees")
	}
	return fees, nil
}

// Pay settles a fee. Paying an already-settled fee is rejected, as is a
// payment below the charged amount.
func (s *FeeService) Pay(ctx context.Context, id int64, req PaymentRequest) (*models.Fee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "paid_amount and payment_method are required")
	}

	fee, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if fee.IsPaid {
		return nil, appErrors.Clone(appErrors.ErrConflict, "fee is already paid")
	}
	if req.PaidAmount < fee.Amount {
		return nil, appErrors.Clone(appErrors.ErrValidation, "paid_amount is less than the charged amount")
	}

	paymentDate := time.Now().UTC()
	if err := s.repo.RecordPayment(ctx, id, req.PaidAmount, req.PaymentMethod, req.TransactionID, paymentDate); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record payment")
	}

	fee.IsPaid = true
	fee.PaidAmount = req.PaidAmount
	fee.PaymentDate = &paymentDate
	fee.PaymentMethod = req.PaymentMethod
	fee.TransactionID = req.TransactionID
	return fee, nil
}
