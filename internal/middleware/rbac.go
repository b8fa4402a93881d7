package middleware

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/crestwood-digital/school-admin-api/internal/models"
	appErrors "github.com/crestwood-digital/school-admin-api/pkg/errors"
	"github.com/crestwood-digital/school-admin-api/pkg/response"
)

type roleSource interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

// RequireRoles enforces role-based access control. The role stored in
// the session is only a hint; the account row is re-read so role
// changes and deactivations take effect on the next request.
func RequireRoles(users roleSource, roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		sess, ok := CurrentSession(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		user, err := users.FindByID(c.Request.Context(), sess.UserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "account no longer exists"))
			} else {
				response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify account"))
			}
			c.Abort()
			return
		}

		if !user.Active {
			response.Error(c, appErrors.Clone(appErrors.ErrInactiveAccount, "account is deactivated"))
			c.Abort()
			return
		}

		if _, ok := allowed[user.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}

		c.Set(ContextRoleKey, user.Role)
		c.Next()
	}
}
