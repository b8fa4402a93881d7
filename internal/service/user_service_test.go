package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crestwood-digital/school-admin-api/internal/models"
	appErrors "github.com/crestwood-digital/school-admin-api/pkg/errors"
)

type userRepoStub struct {
	users      map[int64]*models.User
	list       []models.User
	total      int
	dependents int
	emailTaken bool

	gotFilter models.UserFilter
	updated   *models.User
	deletedID int64
	auditLogs []models.AuditLog
}

func newUserRepoStub() *userRepoStub {
	return &userRepoStub{users: make(map[int64]*models.User)}
}

func (s *userRepoStub) FindByID(ctx context.Context, id int64) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (s *userRepoStub) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	s.gotFilter = filter
	return s.list, s.total, nil
}

func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	s.updated = user
	return nil
}

func (s *userRepoStub) ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error) {
	return s.emailTaken, nil
}

func (s *userRepoStub) CountDependents(ctx context.Context, userID int64) (int, error) {
	return s.dependents, nil
}

func (s *userRepoStub) DeleteWithProfile(ctx context.Context, userID int64) error {
	s.deletedID = userID
	return nil
}

func (s *userRepoStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	s.auditLogs = append(s.auditLogs, *log)
	return nil
}

func TestUserServiceListPagination(t *testing.T) {
	repo := newUserRepoStub()
	repo.list = []models.User{{ID: 3}, {ID: 4}}
	repo.total = 4
	svc := NewUserService(repo, nil, nil)

	users, pagination, err := svc.List(context.Background(), "", 2, 2)
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, 2, pagination.Page)
	assert.Equal(t, 2, pagination.PerPage)
	assert.Equal(t, 4, pagination.Total)
	assert.Equal(t, 2, pagination.Pages)
}

func TestUserServiceListPagesRoundsUp(t *testing.T) {
	repo := newUserRepoStub()
	repo.total = 5
	svc := NewUserService(repo, nil, nil)

	_, pagination, err := svc.List(context.Background(), "", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, pagination.Pages)
}

func TestUserServiceListRoleFilter(t *testing.T) {
	repo := newUserRepoStub()
	svc := NewUserService(repo, nil, nil)

	_, _, err := svc.List(context.Background(), "teacher", 1, 20)
	require.NoError(t, err)
	require.NotNil(t, repo.gotFilter.Role)
	assert.Equal(t, models.RoleTeacher, *repo.gotFilter.Role)
}

func TestUserServiceListInvalidRole(t *testing.T) {
	svc := NewUserService(newUserRepoStub(), nil, nil)

	_, _, err := svc.List(context.Background(), "wizard", 1, 20)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Status, appErrors.FromError(err).Status)
}

func TestUserServiceUpdateEmailConflict(t *testing.T) {
	repo := newUserRepoStub()
	repo.users[2] = &models.User{ID: 2, Email: "old@school.test", Role: models.RoleTeacher}
	repo.emailTaken = true
	svc := NewUserService(repo, nil, nil)

	email := "new@school.test"
	_, err := svc.Update(context.Background(), 1, 2, UserUpdateRequest{Email: &email})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Status, appErrors.FromError(err).Status)
	assert.Nil(t, repo.updated)
}

func TestUserServiceUpdateDeactivates(t *testing.T) {
	repo := newUserRepoStub()
	repo.users[2] = &models.User{ID: 2, Email: "t@school.test", Role: models.RoleTeacher, Active: true}
	svc := NewUserService(repo, nil, nil)

	inactive := false
	user, err := svc.Update(context.Background(), 1, 2, UserUpdateRequest{IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, user.Active)
	require.NotNil(t, repo.updated)
	require.Len(t, repo.auditLogs, 1)
	assert.Equal(t, models.AuditActionUserUpdate, repo.auditLogs[0].Action)
}

func TestUserServiceDeleteSelf(t *testing.T) {
	repo := newUserRepoStub()
	repo.users[1] = &models.User{ID: 1}
	svc := NewUserService(repo, nil, nil)

	err := svc.Delete(context.Background(), 1, 1)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Status, appErrors.FromError(err).Status)
	assert.Zero(t, repo.deletedID)
}

func TestUserServiceDeleteWithDependents(t *testing.T) {
	repo := newUserRepoStub()
	repo.users[2] = &models.User{ID: 2}
	repo.dependents = 3
	svc := NewUserService(repo, nil, nil)

	err := svc.Delete(context.Background(), 1, 2)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Status, appErrors.FromError(err).Status)
	assert.Zero(t, repo.deletedID)
}

func TestUserServiceDeleteSuccess(t *testing.T) {
	repo := newUserRepoStub()
	repo.users[2] = &models.User{ID: 2}
	svc := NewUserService(repo, nil, nil)

	err := svc.Delete(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), repo.deletedID)
	require.Len(t, repo.auditLogs, 1)
	assert.Equal(t, models.AuditActionUserDelete, repo.auditLogs[0].Action)
}

func TestUserServiceGetNotFound(t *testing.T) {
	svc := NewUserService(newUserRepoStub(), nil, nil)

	_, err := svc.Get(context.Background(), 404)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Status, appErrors.FromError(err).Status)
}
