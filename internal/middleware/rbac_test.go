package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/crestwood-digital/school-admin-api/internal/models"
	"github.com/crestwood-digital/school-admin-api/internal/session"
)

type roleSourceStub struct {
	users map[int64]*models.User
}

func (s *roleSourceStub) FindByID(ctx context.Context, id int64) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func rbacRouter(users *roleSourceStub, sess *session.Session, roles ...models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/",
		func(c *gin.Context) {
			if sess != nil {
				c.Set(ContextUserKey, sess)
			}
			c.Next()
		},
		RequireRoles(users, roles...),
		func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		},
	)
	return router
}

func TestRequireRolesAllows(t *testing.T) {
	users := &roleSourceStub{users: map[int64]*models.User{
		5: {ID: 5, Role: models.RoleAdmin, Active: true},
	}}
	router := rbacRouter(users, &session.Session{ID: "s1", UserID: 5, Role: models.RoleAdmin}, models.RoleAdmin)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, recorder.Code)
}

func TestRequireRolesWrongRoleForbidden(t *testing.T) {
	users := &roleSourceStub{users: map[int64]*models.User{
		5: {ID: 5, Role: models.RoleTeacher, Active: true},
	}}
	router := rbacRouter(users, &session.Session{ID: "s1", UserID: 5, Role: models.RoleTeacher}, models.RoleAdmin)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestRequireRolesNoSessionUnauthorized(t *testing.T) {
	users := &roleSourceStub{users: map[int64]*models.User{}}
	router := rbacRouter(users, nil, models.RoleAdmin)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestRequireRolesAccountGoneForbidden(t *testing.T) {
	users := &roleSourceStub{users: map[int64]*models.User{}}
	router := rbacRouter(users, &session.Session{ID: "s1", UserID: 99, Role: models.RoleAdmin}, models.RoleAdmin)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestRequireRolesDeactivatedUnauthorized(t *testing.T) {
	users := &roleSourceStub{users: map[int64]*models.User{
		5: {ID: 5, Role: models.RoleAdmin, Active: false},
	}}
	router := rbacRouter(users, &session.Session{ID: "s1", UserID: 5, Role: models.RoleAdmin}, models.RoleAdmin)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

// Role changes take effect on the next request because the account row,
// not the session hint, decides access.
func TestRequireRolesUsesFreshRole(t *testing.T) {
	users := &roleSourceStub{users: map[int64]*models.User{
		5: {ID: 5, Role: models.RoleStudent, Active: true},
	}}
	router := rbacRouter(users, &session.Session{ID: "s1", UserID: 5, Role: models.RoleAdmin}, models.RoleAdmin)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestRequireRolesStoresFreshRole(t *testing.T) {
	users := &roleSourceStub{users: map[int64]*models.User{
		5: {ID: 5, Role: models.RoleStudent, Active: true},
	}}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	var seen models.UserRole
	router.GET("/",
		func(c *gin.Context) {
			// session still carries the pre-demotion role
			c.Set(ContextUserKey, &session.Session{ID: "s1", UserID: 5, Role: models.RoleAdmin})
		},
		RequireRoles(users, models.RoleStudent),
		func(c *gin.Context) {
			role, ok := CurrentRole(c)
			assert.True(t, ok)
			seen = role
			c.Status(http.StatusNoContent)
		},
	)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Equal(t, models.RoleStudent, seen)
}
