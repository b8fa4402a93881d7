package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/crestwood-digital/school-admin-api/internal/middleware"
	"github.com/crestwood-digital/school-admin-api/internal/models"
	"github.com/crestwood-digital/school-admin-api/internal/session"
	appErrors "github.com/crestwood-digital/school-admin-api/pkg/errors"
)

func sessionFromContext(c *gin.Context) *session.Session {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		return nil
	}
	return sess
}

// actorRole prefers the role the role gate re-read from the user row
// over the one cached in the session record.
func actorRole(c *gin.Context, sess *session.Session) models.UserRole {
	if role, ok := middleware.CurrentRole(c); ok {
		return role
	}
	return sess.Role
}

func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid "+name+" parameter")
	}
	return id, nil
}

func queryInt64(c *gin.Context, name string) int64 {
	raw := c.Query(name)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
