package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/crestwood-digital/school-admin-api/internal/models"
	"github.com/crestwood-digital/school-admin-api/internal/session"
	appErrors "github.com/crestwood-digital/school-admin-api/pkg/errors"
	"github.com/crestwood-digital/school-admin-api/pkg/response"
)

// ContextUserKey is the gin context key storing the resolved session.
const ContextUserKey = "currentSession"

// ContextRoleKey is the gin context key storing the role re-read from
// the user row by the role gate. It supersedes the role cached in the
// session record.
const ContextRoleKey = "currentRole"

// Authenticate protects routes by requiring a valid session cookie.
func Authenticate(manager *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(manager.CookieName())
		if err != nil || token == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required"))
			c.Abort()
			return
		}

		sess, err := manager.Resolve(c.Request.Context(), token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, sess)
		c.Next()
	}
}

// CurrentSession extracts the resolved session from the gin context.
func CurrentSession(c *gin.Context) (*session.Session, bool) {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	sess, ok := value.(*session.Session)
	return sess, ok
}

// CurrentRole returns the role the role gate read from the user row.
func CurrentRole(c *gin.Context) (models.UserRole, bool) {
	value, exists := c.Get(ContextRoleKey)
	if !exists {
		return "", false
	}
	role, ok := value.(models.UserRole)
	return role, ok
}
