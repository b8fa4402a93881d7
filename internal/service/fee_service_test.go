package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crestwood-digital/school-admin-api/internal/models"
	appErrors "github.com/crestwood-digital/school-admin-api/pkg/errors"
)

type feeRepoStub struct {
	fees        map[int64]*models.Fee
	created     *models.Fee
	paymentMade bool
}

func newFeeRepoStub() *feeRepoStub {
	return &feeRepoStub{fees: make(map[int64]*models.Fee)}
}

// studentDirectoryStub maps account ids to student profiles.
type studentDirectoryStub struct {
	students map[int64]*models.Student
}

func (s *studentDirectoryStub) FindStudentByUserID(ctx context.Context, userID int64) (*models.Student, error) {
	st, ok := s.students[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return st, nil
}

func (s *feeRepoStub) Create(ctx context.Context, fee *models.Fee) error {
	fee.ID = 1
	s.created = fee
	s.fees[fee.ID] = fee
	return nil
}

func (s *feeRepoStub) FindByID(ctx context.Context, id int64) (*models.Fee, error) {
	fee, ok := s.fees[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return fee, nil
}

func (s *feeRepoStub) ListByStudent(ctx context.Context, studentID int64) ([]models.Fee, error) {
	return nil, nil
}

func (s *feeRepoStub) RecordPayment(ctx context.Context, id int64, paidAmount float64, method, transactionID string, paymentDate time.Time) error {
	s.paymentMade = true
	return nil
}

func TestFeeServiceCreateStartsUnpaid(t *testing.T) {
	repo := newFeeRepoStub()
	svc := NewFeeService(repo, nil, nil, nil)

	fee, err := svc.Create(context.Background(), FeeRequest{
		StudentID:      4,
		FeeType:        "tuition",
		Amount:         250,
		DueDate:        "2026-10-01",
		AcademicYearID: 1,
		Month:          "October",
	})
	require.NoError(t, err)
	assert.False(t, fee.IsPaid)
	assert.Zero(t, fee.PaidAmount)
}

func TestFeeServicePaySettles(t *testing.T) {
	repo := newFeeRepoStub()
	repo.fees[1] = &models.Fee{ID: 1, Amount: 250}
	svc := NewFeeService(repo, nil, nil, nil)

	fee, err := svc.Pay(context.Background(), 1, PaymentRequest{PaidAmount: 250, PaymentMethod: "card", TransactionID: "tx-1"})
	require.NoError(t, err)
	assert.True(t, fee.IsPaid)
	assert.Equal(t, 250.0, fee.PaidAmount)
	require.NotNil(t, fee.PaymentDate)
	assert.True(t, repo.paymentMade)
}

func TestFeeServicePayAlreadyPaid(t *testing.T) {
	repo := newFeeRepoStub()
	repo.fees[1] = &models.Fee{ID: 1, Amount: 250, IsPaid: true}
	svc := NewFeeService(repo, nil, nil, nil)

	_, err := svc.Pay(context.Background(), 1, PaymentRequest{PaidAmount: 250, PaymentMethod: "card"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Status, appErrors.FromError(err).Status)
	assert.False(t, repo.paymentMade)
}

func TestFeeServicePayBelowAmount(t *testing.T) {
	repo := newFeeRepoStub()
	repo.fees[1] = &models.Fee{ID: 1, Amount: 250}
	svc := NewFeeService(repo, nil, nil, nil)

	_, err := svc.Pay(context.Background(), 1, PaymentRequest{PaidAmount: 100, PaymentMethod: "card"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Status, appErrors.FromError(err).Status)
	assert.False(t, repo.paymentMade)
}

func TestFeeServiceListByStudentOwner(t *testing.T) {
	repo := newFeeRepoStub()
	students := &studentDirectoryStub{students: map[int64]*models.Student{
		42: {ID: 7, UserID: 42},
	}}
	svc := NewFeeService(repo, students, nil, nil)

	_, err := svc.ListByStudent(context.Background(), 42, models.RoleStudent, 7)
	require.NoError(t, err)
}

func TestFeeServiceListByStudentCrossStudentForbidden(t *testing.T) {
	repo := newFeeRepoStub()
	students := &studentDirectoryStub{students: map[int64]*models.Student{
		42: {ID: 7, UserID: 42},
	}}
	svc := NewFeeService(repo, students, nil, nil)

	_, err := svc.ListByStudent(context.Background(), 42, models.RoleStudent, 9)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Status, appErrors.FromError(err).Status)
}

func TestFeeServiceListByStudentAdminBypassesScope(t *testing.T) {
	repo := newFeeRepoStub()
	students := &studentDirectoryStub{students: map[int64]*models.Student{}}
	svc := NewFeeService(repo, students, nil, nil)

	_, err := svc.ListByStudent(context.Background(), 1, models.RoleAdmin, 9)
	require.NoError(t, err)
}

func TestFeeServiceListByStudentNoProfileForbidden(t *testing.T) {
	repo := newFeeRepoStub()
	students := &studentDirectoryStub{students: map[int64]*models.Student{}}
	svc := NewFeeService(repo, students, nil, nil)

	_, err := svc.ListByStudent(context.Background(), 42, models.RoleParent, 9)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Status, appErrors.FromError(err).Status)
}
