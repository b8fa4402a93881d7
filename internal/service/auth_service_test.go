package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/crestwood-digital/school-admin-api/internal/models"
	"github.com/crestwood-digital/school-admin-api/internal/session"
	appErrors "github.com/crestwood-digital/school-admin-api/pkg/errors"
)

type authRepoStub struct {
	usersByEmail map[string]*models.User
	usersByID    map[int64]*models.User
	students     map[int64]*models.Student
	teachers     map[int64]*models.Teacher
	parents      map[int64]*models.Parent

	createdUser    *models.User
	createdProfile models.Profile
	updatedHash    string
	auditLogs      []models.AuditLog
	nextID         int64
}

func newAuthRepoStub() *authRepoStub {
	return &authRepoStub{
		usersByEmail: make(map[string]*models.User),
		usersByID:    make(map[int64]*models.User),
		students:     make(map[int64]*models.Student),
		teachers:     make(map[int64]*models.Teacher),
		parents:      make(map[int64]*models.Parent),
		nextID:       1,
	}
}

func (s *authRepoStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := s.usersByEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (s *authRepoStub) FindByID(ctx context.Context, id int64) (*models.User, error) {
	user, ok := s.usersByID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (s *authRepoStub) CreateWithProfile(ctx context.Context, user *models.User, buildProfile func(userID int64) models.Profile) error {
	user.ID = s.nextID
	s.nextID++
	s.createdUser = user
	s.usersByEmail[user.Email] = user
	s.usersByID[user.ID] = user
	if buildProfile != nil {
		s.createdProfile = buildProfile(user.ID)
	}
	return nil
}

func (s *authRepoStub) FindStudentByUserID(ctx context.Context, userID int64) (*models.Student, error) {
	st, ok := s.students[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return st, nil
}

func (s *authRepoStub) FindTeacherByUserID(ctx context.Context, userID int64) (*models.Teacher, error) {
	te, ok := s.teachers[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return te, nil
}

func (s *authRepoStub) FindParentByUserID(ctx context.Context, userID int64) (*models.Parent, error) {
	pa, ok := s.parents[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return pa, nil
}

func (s *authRepoStub) UpdatePassword(ctx context.Context, id int64, passwordHash string, updatedAt time.Time) error {
	s.updatedHash = passwordHash
	if user, ok := s.usersByID[id]; ok {
		user.PasswordHash = passwordHash
	}
	return nil
}

func (s *authRepoStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	s.auditLogs = append(s.auditLogs, *log)
	return nil
}

type sessionManagerStub struct {
	established int
	destroyed   []string
	token       string
	err         error
}

func (s *sessionManagerStub) Establish(ctx context.Context, user *models.User) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.established++
	return s.token, nil
}

func (s *sessionManagerStub) Destroy(ctx context.Context, id string) error {
	s.destroyed = append(s.destroyed, id)
	return nil
}

func hashPassword(t *testing.T, plain string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthServiceRegisterHashesPassword(t *testing.T) {
	repo := newAuthRepoStub()
	svc := NewAuthService(repo, &sessionManagerStub{}, nil, nil, AuthConfig{DefaultClassID: 1})

	user, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "Admin@School.Test",
		Password: "supersecret",
		Role:     "admin",
	})
	require.NoError(t, err)

	assert.Equal(t, "admin@school.test", user.Email)
	assert.NotEqual(t, "supersecret", user.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("supersecret")))
	assert.True(t, user.Active)
	assert.Nil(t, repo.createdProfile)
}

func TestAuthServiceRegisterStudentDefaults(t *testing.T) {
	repo := newAuthRepoStub()
	repo.nextID = 7
	svc := NewAuthService(repo, &sessionManagerStub{}, nil, nil, AuthConfig{DefaultClassID: 3})

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "student@school.test",
		Password: "supersecret",
		Role:     "student",
	})
	require.NoError(t, err)

	student, ok := repo.createdProfile.(*models.Student)
	require.True(t, ok)
	assert.Equal(t, "STU000007", student.StudentID)
	assert.Equal(t, int64(3), student.ClassID)
	assert.False(t, student.AdmissionDate.IsZero())
}

func TestAuthServiceRegisterTeacherCode(t *testing.T) {
	repo := newAuthRepoStub()
	repo.nextID = 12
	svc := NewAuthService(repo, &sessionManagerStub{}, nil, nil, AuthConfig{})

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "teacher@school.test",
		Password: "supersecret",
		Role:     "teacher",
		Profile:  &models.ProfilePayload{HireDate: "2024-08-01"},
	})
	require.NoError(t, err)

	teacher, ok := repo.createdProfile.(*models.Teacher)
	require.True(t, ok)
	assert.Equal(t, "TEA000012", teacher.EmployeeID)
	assert.Equal(t, time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC), teacher.HireDate)
}

func TestAuthServiceRegisterDuplicateEmail(t *testing.T) {
	repo := newAuthRepoStub()
	repo.usersByEmail["taken@school.test"] = &models.User{ID: 1, Email: "taken@school.test"}
	svc := NewAuthService(repo, &sessionManagerStub{}, nil, nil, AuthConfig{})

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "taken@school.test",
		Password: "supersecret",
		Role:     "parent",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Status, appErrors.FromError(err).Status)
}

func TestAuthServiceRegisterInvalidRole(t *testing.T) {
	svc := NewAuthService(newAuthRepoStub(), &sessionManagerStub{}, nil, nil, AuthConfig{})

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "x@school.test",
		Password: "supersecret",
		Role:     "superuser",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Status, appErrors.FromError(err).Status)
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	repo := newAuthRepoStub()
	repo.usersByEmail["t@school.test"] = &models.User{
		ID:           5,
		Email:        "t@school.test",
		PasswordHash: hashPassword(t, "correcthorse"),
		Role:         models.RoleTeacher,
		Active:       true,
	}
	repo.teachers[5] = &models.Teacher{ID: 2, UserID: 5, EmployeeID: "TEA000005"}
	sessions := &sessionManagerStub{token: "signed-token"}
	svc := NewAuthService(repo, sessions, nil, nil, AuthConfig{})

	res, token, err := svc.Login(context.Background(), models.LoginRequest{Email: "t@school.test", Password: "correcthorse"})
	require.NoError(t, err)
	assert.Equal(t, "signed-token", token)
	assert.Equal(t, int64(5), res.User.ID)
	teacher, ok := res.Profile.(*models.Teacher)
	require.True(t, ok)
	assert.Equal(t, "TEA000005", teacher.EmployeeID)
	assert.Equal(t, 1, sessions.established)
	require.Len(t, repo.auditLogs, 1)
	assert.Equal(t, models.AuditActionLogin, repo.auditLogs[0].Action)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	repo := newAuthRepoStub()
	repo.usersByEmail["t@school.test"] = &models.User{
		ID:           5,
		Email:        "t@school.test",
		PasswordHash: hashPassword(t, "correcthorse"),
		Active:       true,
	}
	sessions := &sessionManagerStub{token: "signed-token"}
	svc := NewAuthService(repo, sessions, nil, nil, AuthConfig{})

	_, _, err := svc.Login(context.Background(), models.LoginRequest{Email: "t@school.test", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
	assert.Zero(t, sessions.established)
}

func TestAuthServiceLoginUnknownEmailSameError(t *testing.T) {
	svc := NewAuthService(newAuthRepoStub(), &sessionManagerStub{}, nil, nil, AuthConfig{})

	_, _, err := svc.Login(context.Background(), models.LoginRequest{Email: "ghost@school.test", Password: "whatever"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginInactiveAccount(t *testing.T) {
	repo := newAuthRepoStub()
	repo.usersByEmail["gone@school.test"] = &models.User{
		ID:           8,
		Email:        "gone@school.test",
		PasswordHash: hashPassword(t, "correcthorse"),
		Active:       false,
	}
	sessions := &sessionManagerStub{token: "signed-token"}
	svc := NewAuthService(repo, sessions, nil, nil, AuthConfig{})

	_, _, err := svc.Login(context.Background(), models.LoginRequest{Email: "gone@school.test", Password: "correcthorse"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErr.Code)
	assert.Zero(t, sessions.established)
}

func TestAuthServiceLogoutDestroysSession(t *testing.T) {
	repo := newAuthRepoStub()
	sessions := &sessionManagerStub{}
	svc := NewAuthService(repo, sessions, nil, nil, AuthConfig{})

	err := svc.Logout(context.Background(), &session.Session{ID: "sid-1", UserID: 5}, models.LoginRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"sid-1"}, sessions.destroyed)
}

func TestAuthServiceChangePasswordWrongCurrent(t *testing.T) {
	repo := newAuthRepoStub()
	original := hashPassword(t, "oldpassword")
	repo.usersByID[3] = &models.User{ID: 3, PasswordHash: original, Active: true}
	svc := NewAuthService(repo, &sessionManagerStub{}, nil, nil, AuthConfig{})

	err := svc.ChangePassword(context.Background(), 3, models.ChangePasswordRequest{
		CurrentPassword: "nottheone",
		NewPassword:     "newpassword",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidPassword.Code, appErr.Code)
	assert.Equal(t, appErrors.ErrInvalidPassword.Status, appErr.Status)
	assert.Equal(t, original, repo.usersByID[3].PasswordHash)
	assert.Empty(t, repo.updatedHash)
}

func TestAuthServiceChangePasswordSuccess(t *testing.T) {
	repo := newAuthRepoStub()
	repo.usersByID[3] = &models.User{ID: 3, PasswordHash: hashPassword(t, "oldpassword"), Active: true}
	svc := NewAuthService(repo, &sessionManagerStub{}, nil, nil, AuthConfig{})

	err := svc.ChangePassword(context.Background(), 3, models.ChangePasswordRequest{
		CurrentPassword: "oldpassword",
		NewPassword:     "newpassword",
	})
	require.NoError(t, err)
	require.NotEmpty(t, repo.updatedHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.updatedHash), []byte("newpassword")))
}

func TestAuthServiceCurrentUserGone(t *testing.T) {
	svc := NewAuthService(newAuthRepoStub(), &sessionManagerStub{}, nil, nil, AuthConfig{})

	_, err := svc.CurrentUser(context.Background(), 99)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Status, appErrors.FromError(err).Status)
}
