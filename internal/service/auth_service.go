package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/crestwood-digital/school-admin-api/internal/models"
	"github.com/crestwood-digital/school-admin-api/internal/repository"
	"github.com/crestwood-digital/school-admin-api/internal/session"
	appErrors "github.com/crestwood-digital/school-admin-api/pkg/errors"
)

type authUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	CreateWithProfile(ctx context.Context, user *models.User, buildProfile func(userID int64) models.Profile) error
	FindStudentByUserID(ctx context.Context, userID int64) (*models.Student, error)
	FindTeacherByUserID(ctx context.Context, userID int64) (*models.Teacher, error)
	FindParentByUserID(ctx context.Context, userID int64) (*models.Parent, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string, updatedAt time.Time) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type sessionManager interface {
	Establish(ctx context.Context, user *models.User) (string, error)
	Destroy(ctx context.Context, id string) error
}

// AuthConfig carries domain defaults applied during registration.
type AuthConfig struct {
	DefaultClassID int64
}

// AuthService provides registration, login and session-bound account
// operations.
type AuthService struct {
	repo      authUserRepository
	sessions  sessionManager
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authUserRepository, sessions sessionManager, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{repo: repo, sessions: sessions, validator: validate, logger: logger, config: config}
}

// Register creates an account and its role profile atomically. Admin and
// principal accounts own no profile row.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "email, password and role are required")
	}

	role, ok := models.ParseRole(req.Role)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid role")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email uniqueness")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(passwordHash),
		Role:         role,
		Active:       true,
	}

	if err := s.repo.CreateWithProfile(ctx, user, s.profileBuilder(role, req.Profile)); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register user")
	}

	return user, nil
}

// profileBuilder returns the deferred profile constructor for the role,
// or nil for administrative roles. Missing fields fall back to
// documented defaults: generated STU/TEA codes, today's date, the
// configured fallback class.
func (s *AuthService) profileBuilder(role models.UserRole, payload *models.ProfilePayload) func(userID int64) models.Profile {
	if role.Administrative() {
		return nil
	}
	p := payload
	if p == nil {
		p = &models.ProfilePayload{}
	}

	switch role {
	case models.RoleStudent:
		return func(userID int64) models.Profile {
			studentID := p.StudentID
			if studentID == "" {
				studentID = fmt.Sprintf("STU%06d", userID)
			}
			classID := p.ClassID
			if classID == 0 {
				classID = s.config.DefaultClassID
			}
			return &models.Student{
				UserID:        userID,
				StudentID:     studentID,
				FirstName:     p.FirstName,
				LastName:      p.LastName,
				DateOfBirth:   parseDateOr(p.DateOfBirth, today()),
				Gender:        p.Gender,
				Phone:         p.Phone,
				Address:       p.Address,
				AdmissionDate: parseDateOr(p.AdmissionDate, today()),
				ClassID:       classID,
			}
		}
	case models.RoleTeacher:
		return func(userID int64) models.Profile {
			employeeID := p.EmployeeID
			if employeeID == "" {
				employeeID = fmt.Sprintf("TEA%06d", userID)
			}
			return &models.Teacher{
				UserID:        userID,
				EmployeeID:    employeeID,
				FirstName:     p.FirstName,
				LastName:      p.LastName,
				Phone:         p.Phone,
				Address:       p.Address,
				DateOfBirth:   parseDatePtr(p.DateOfBirth),
				HireDate:      parseDateOr(p.HireDate, today()),
				Qualification: p.Qualification,
			}
		}
	default:
		return func(userID int64) models.Profile {
			return &models.Parent{
				UserID:     userID,
				FirstName:  p.FirstName,
				LastName:   p.LastName,
				Phone:      p.Phone,
				Address:    p.Address,
				Occupation: p.Occupation,
			}
		}
	}
}

// Login verifies credentials and establishes a session. The returned
// token is delivered to the client as a cookie by the handler.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthenticatedUser, string, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "email and password are required")
	}

	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}

	if !user.Active {
		return nil, "", appErrors.Clone(appErrors.ErrInactiveAccount, "account is deactivated")
	}

	token, err := s.sessions.Establish(ctx, user)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to establish session")
	}

	profile, err := s.profileFor(ctx, user)
	if err != nil {
		return nil, "", err
	}

	if err := s.repo.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &user.ID,
		Action:     models.AuditActionLogin,
		Resource:   "auth",
		ResourceID: &user.ID,
		NewValues:  []byte(`{"status":"success"}`),
		IPAddress:  req.IP,
		UserAgent:  req.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to record login audit log", zap.Error(err))
	}

	return &models.AuthenticatedUser{User: user, Profile: profile}, token, nil
}

// Logout destroys the server-side session record. The handler clears the
// cookie; a repeated logout fails the authentication gate upstream.
func (s *AuthService) Logout(ctx context.Context, sess *session.Session, meta models.LoginRequest) error {
	if err := s.sessions.Destroy(ctx, sess.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to destroy session")
	}

	if err := s.repo.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &sess.UserID,
		Action:     models.AuditActionLogout,
		Resource:   "auth",
		ResourceID: &sess.UserID,
		NewValues:  []byte(`{"status":"logout"}`),
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to record logout audit log", zap.Error(err))
	}

	return nil
}

// CurrentUser loads the session owner's account and profile.
func (s *AuthService) CurrentUser(ctx context.Context, userID int64) (*models.AuthenticatedUser, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	profile, err := s.profileFor(ctx, user)
	if err != nil {
		return nil, err
	}
	return &models.AuthenticatedUser{User: user, Profile: profile}, nil
}

// ChangePassword verifies the current password before persisting a new
// hash. The stored hash is untouched when verification fails.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, req models.ChangePasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "current password and new password are required")
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return appErrors.Clone(appErrors.ErrInvalidPassword, "current password is incorrect")
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	if err := s.repo.UpdatePassword(ctx, userID, string(newHash), time.Now().UTC()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update password")
	}

	if err := s.repo.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &userID,
		Action:     models.AuditActionPasswordChange,
		Resource:   "auth",
		ResourceID: &userID,
		NewValues:  []byte(`{"status":"changed"}`),
	}); err != nil {
		s.logger.Warn("failed to record password change audit log", zap.Error(err))
	}

	return nil
}

func (s *AuthService) profileFor(ctx context.Context, user *models.User) (models.Profile, error) {
	var (
		profile models.Profile
		err     error
	)
	switch user.Role {
	case models.RoleStudent:
		profile, err = s.repo.FindStudentByUserID(ctx, user.ID)
	case models.RoleTeacher:
		profile, err = s.repo.FindTeacherByUserID(ctx, user.ID)
	case models.RoleParent:
		profile, err = s.repo.FindParentByUserID(ctx, user.ID)
	default:
		return nil, nil
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}
	return profile, nil
}

func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func parseDateOr(raw string, fallback time.Time) time.Time {
	if raw == "" {
		return fallback
	}
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return fallback
	}
	return d
}

func parseDatePtr(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil
	}
	return &d
}
