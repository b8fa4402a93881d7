package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/crestwood-digital/school-admin-api/internal/middleware"
	"github.com/crestwood-digital/school-admin-api/internal/models"
	"github.com/crestwood-digital/school-admin-api/internal/service"
	"github.com/crestwood-digital/school-admin-api/internal/session"
)

type authRepoStub struct {
	user *models.User
}

func (s *authRepoStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, sql.ErrNoRows
	}
	return s.user, nil
}

func (s *authRepoStub) FindByID(ctx context.Context, id int64) (*models.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, sql.ErrNoRows
	}
	return s.user, nil
}

func (s *authRepoStub) CreateWithProfile(ctx context.Context, user *models.User, buildProfile func(userID int64) models.Profile) error {
	user.ID = 1
	return nil
}

func (s *authRepoStub) FindStudentByUserID(ctx context.Context, userID int64) (*models.Student, error) {
	return nil, sql.ErrNoRows
}

func (s *authRepoStub) FindTeacherByUserID(ctx context.Context, userID int64) (*models.Teacher, error) {
	return nil, sql.ErrNoRows
}

func (s *authRepoStub) FindParentByUserID(ctx context.Context, userID int64) (*models.Parent, error) {
	return nil, sql.ErrNoRows
}

func (s *authRepoStub) UpdatePassword(ctx context.Context, id int64, passwordHash string, updatedAt time.Time) error {
	return nil
}

func (s *authRepoStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	return nil
}

type memorySessionStore struct {
	records map[string]session.Data
}

func newMemorySessionStore() *memorySessionStore {
	return &memorySessionStore{records: make(map[string]session.Data)}
}

func (m *memorySessionStore) Save(ctx context.Context, id string, data session.Data, ttl time.Duration) error {
	m.records[id] = data
	return nil
}

func (m *memorySessionStore) Load(ctx context.Context, id string) (*session.Data, error) {
	data, ok := m.records[id]
	if !ok {
		return nil, session.ErrNotFound
	}
	return &data, nil
}

func (m *memorySessionStore) Delete(ctx context.Context, id string) error {
	delete(m.records, id)
	return nil
}

func newAuthTestEnv(t *testing.T, repo *authRepoStub) (*AuthHandler, *session.Manager, *memorySessionStore) {
	t.Helper()
	store := newMemorySessionStore()
	sessions := session.NewManager(store, session.Config{
		Secret:     "test_secret",
		TTL:        time.Hour,
		CookieName: "school_session",
	})
	svc := service.NewAuthService(repo, sessions, nil, nil, service.AuthConfig{DefaultClassID: 1})
	return NewAuthHandler(svc, sessions, service.NewMetricsService()), sessions, store
}

func TestAuthHandlerLoginSetsCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hash, err := bcrypt.GenerateFromPassword([]byte("correcthorse"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &authRepoStub{user: &models.User{
		ID:           5,
		Email:        "t@school.test",
		PasswordHash: string(hash),
		Role:         models.RoleTeacher,
		Active:       true,
	}}
	handler, _, store := newAuthTestEnv(t, repo)

	router := gin.New()
	router.POST("/login", handler.Login)

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"t@school.test","password":"correcthorse"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)
	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "school_session", cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Len(t, store.records, 1)

	var envelope struct {
		Data struct {
			User models.User `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.Equal(t, "t@school.test", envelope.Data.User.Email)
}

func TestAuthHandlerLoginBadCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _, store := newAuthTestEnv(t, &authRepoStub{})

	router := gin.New()
	router.POST("/login", handler.Login)

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"ghost@school.test","password":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Empty(t, recorder.Result().Cookies())
	assert.Empty(t, store.records)
}

func TestAuthHandlerLogoutClearsSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hash, err := bcrypt.GenerateFromPassword([]byte("correcthorse"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &authRepoStub{user: &models.User{
		ID:           5,
		Email:        "t@school.test",
		PasswordHash: string(hash),
		Role:         models.RoleTeacher,
		Active:       true,
	}}
	handler, sessions, store := newAuthTestEnv(t, repo)

	token, err := sessions.Establish(context.Background(), repo.user)
	require.NoError(t, err)
	require.Len(t, store.records, 1)

	router := gin.New()
	router.POST("/logout", middleware.Authenticate(sessions), handler.Logout)

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: "school_session", Value: token})
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Empty(t, store.records)

	// token is now dead even though it has not expired
	recorder = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: "school_session", Value: token})
	router.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestAuthHandlerMeRequiresSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, sessions, _ := newAuthTestEnv(t, &authRepoStub{})

	router := gin.New()
	router.GET("/me", middleware.Authenticate(sessions), handler.Me)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}
